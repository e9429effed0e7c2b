package editing

import (
	"testing"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

func TestFootprintSingleVertex(t *testing.T) {
	// Dead on an interior vertex with a sub-spacing radius.
	center := geom.Vec3{X: 96, Y: 96} // landblock (0,0), vertex (4,4)
	hits := GridFootprint{}.Affected(center, 1)

	if len(hits) != 1 {
		t.Fatalf("got %d hits, want 1: %v", len(hits), hits)
	}
	want := VertexHit{Key: terrain.MakeKey(0, 0), Index: terrain.VertexIndex(4, 4)}
	if hits[0].Key != want.Key || hits[0].Index != want.Index {
		t.Errorf("hit = %+v, want %+v", hits[0], want)
	}
	if hits[0].Distance != 0 {
		t.Errorf("distance = %v, want 0", hits[0].Distance)
	}
}

func TestFootprintSeamVertexHasTwoOwners(t *testing.T) {
	// A vertex on the boundary between landblocks (0,0) and (1,0) is the
	// last column of the first and the first column of the second; both
	// copies must be painted to keep the seam consistent.
	center := geom.Vec3{X: terrain.LandblockLength, Y: 96}
	hits := GridFootprint{}.Affected(center, 1)

	if len(hits) != 2 {
		t.Fatalf("got %d hits, want 2: %v", len(hits), hits)
	}

	owners := make(map[terrain.LandblockKey]int)
	for _, h := range hits {
		owners[h.Key] = h.Index
	}
	if idx, ok := owners[terrain.MakeKey(1, 0)]; !ok || idx != terrain.VertexIndex(0, 4) {
		t.Errorf("right landblock hit = %v, %v", idx, ok)
	}
	if idx, ok := owners[terrain.MakeKey(0, 0)]; !ok || idx != terrain.VertexIndex(terrain.CellsPerEdge, 4) {
		t.Errorf("left landblock hit = %v, %v", idx, ok)
	}
}

func TestFootprintRadiusCoversNeighbors(t *testing.T) {
	// Radius of one cell from an interior vertex: center plus the 4
	// orthogonal neighbors (diagonals are sqrt(2) cells away).
	center := geom.Vec3{X: 96, Y: 96}
	hits := GridFootprint{}.Affected(center, terrain.CellLength)

	if len(hits) != 5 {
		t.Errorf("got %d hits, want 5: %v", len(hits), hits)
	}
}

func TestFootprintNegativeRadius(t *testing.T) {
	if hits := (GridFootprint{}).Affected(geom.Vec3{X: 96, Y: 96}, -1); hits != nil {
		t.Errorf("negative radius produced hits: %v", hits)
	}
}

func TestFootprintOffGridClipped(t *testing.T) {
	// Near the world origin the footprint clips to the grid instead of
	// emitting negative coordinates.
	hits := GridFootprint{}.Affected(geom.Vec3{X: 0, Y: 0}, terrain.CellLength)
	for _, h := range hits {
		if h.Index < 0 || h.Index >= terrain.LandblockVertices {
			t.Errorf("out of range index in %+v", h)
		}
	}
	if len(hits) != 3 {
		t.Errorf("got %d hits at origin, want 3 (center + 2 neighbors)", len(hits))
	}
}
