package editing

import (
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

// VertexHit is one terrain vertex touched by a brush footprint.
type VertexHit struct {
	Key      terrain.LandblockKey
	Index    int
	Distance float32
}

// Footprint computes the set of vertices a brush stroke touches. The
// renderer supplies a picking-aware implementation; GridFootprint is the
// plain world-grid fallback used headless.
type Footprint interface {
	Affected(center geom.Vec3, radius float32) []VertexHit
}

// GridFootprint is a circular brush over the world vertex grid. Vertices
// shared between adjacent landblocks (edge columns and rows) are reported
// once per owning landblock so seams stay consistent when painted.
type GridFootprint struct{}

// Affected returns every vertex within radius of center, in row-major
// scan order.
func (GridFootprint) Affected(center geom.Vec3, radius float32) []VertexHit {
	if radius < 0 {
		return nil
	}

	// Global vertex grid: one vertex every CellLength units, indices
	// 0..(256*CellsPerEdge) on each axis.
	const maxVertex = 256 * terrain.CellsPerEdge

	c := center.XY()
	minX := gridFloor(c.X - radius)
	maxX := gridCeil(c.X + radius)
	minY := gridFloor(c.Y - radius)
	maxY := gridCeil(c.Y + radius)

	var hits []VertexHit
	for gx := minX; gx <= maxX; gx++ {
		if gx < 0 || gx > maxVertex {
			continue
		}
		for gy := minY; gy <= maxY; gy++ {
			if gy < 0 || gy > maxVertex {
				continue
			}
			pos := geom.Vec2{X: float32(gx) * terrain.CellLength, Y: float32(gy) * terrain.CellLength}
			dist := pos.Distance(c)
			if dist > radius {
				continue
			}
			hits = appendOwners(hits, gx, gy, dist)
		}
	}
	return hits
}

// appendOwners emits the hit once for every landblock that owns a copy of
// the global vertex. Interior vertices have one owner; edge vertices two;
// corners four.
func appendOwners(hits []VertexHit, gx, gy int, dist float32) []VertexHit {
	for _, ox := range ownerSplits(gx) {
		for _, oy := range ownerSplits(gy) {
			hits = append(hits, VertexHit{
				Key:      terrain.MakeKey(uint8(ox.block), uint8(oy.block)),
				Index:    terrain.VertexIndex(ox.vertex, oy.vertex),
				Distance: dist,
			})
		}
	}
	return hits
}

type ownerSplit struct {
	block  int // landblock grid coordinate
	vertex int // vertex column/row within that landblock
}

// ownerSplits maps a global vertex coordinate to the landblocks holding a
// copy of it on that axis.
func ownerSplits(g int) []ownerSplit {
	block := g / terrain.CellsPerEdge
	vertex := g % terrain.CellsPerEdge

	var out []ownerSplit
	if block <= 255 {
		out = append(out, ownerSplit{block: block, vertex: vertex})
	}
	// The first column of this landblock is also the last column of the
	// previous one.
	if vertex == 0 && block > 0 && block-1 <= 255 {
		out = append(out, ownerSplit{block: block - 1, vertex: terrain.CellsPerEdge})
	}
	return out
}

func gridFloor(v float32) int {
	return int(v / terrain.CellLength)
}

func gridCeil(v float32) int {
	g := int(v / terrain.CellLength)
	if float32(g)*terrain.CellLength < v {
		g++
	}
	return g
}
