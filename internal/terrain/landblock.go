// Package terrain implements the layered terrain data model: packed vertex
// entries, sparse per-layer stores, the layer tree, and height sampling.
package terrain

import (
	"fmt"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

// World grid constants. A landblock is a 192x192 unit tile holding an
// 8x8 cell grid with 9x9 vertices.
const (
	VertsPerEdge      = 9
	CellsPerEdge      = 8
	LandblockVertices = VertsPerEdge * VertsPerEdge // 81
	LandblockLength   = 192.0
	CellLength        = LandblockLength / CellsPerEdge // 24
)

// LandblockKey identifies a landblock on the 256x256 world grid.
// The high byte is the X coordinate, the low byte is Y.
type LandblockKey uint16

// MakeKey builds a key from grid coordinates.
func MakeKey(x, y uint8) LandblockKey {
	return LandblockKey(uint16(x)<<8 | uint16(y))
}

// X returns the grid X coordinate.
func (k LandblockKey) X() uint8 { return uint8(k >> 8) }

// Y returns the grid Y coordinate.
func (k LandblockKey) Y() uint8 { return uint8(k) }

// Origin returns the world-space position of the landblock's (0,0) corner.
func (k LandblockKey) Origin() geom.Vec2 {
	return geom.Vec2{
		X: float32(k.X()) * LandblockLength,
		Y: float32(k.Y()) * LandblockLength,
	}
}

// TerrainRecordID returns the archive ID of the landblock's terrain record.
func (k LandblockKey) TerrainRecordID() uint32 {
	return uint32(k)<<16 | 0xFFFF
}

// InfoRecordID returns the archive ID of the landblock's metadata record
// (static object placement).
func (k LandblockKey) InfoRecordID() uint32 {
	return uint32(k)<<16 | 0xFFFE
}

// String formats the key the way the client tooling prints landblocks.
func (k LandblockKey) String() string {
	return fmt.Sprintf("%04X", uint16(k))
}

// KeyForPosition returns the landblock containing a world-space position.
// ok is false when the position lies outside the world grid.
func KeyForPosition(pos geom.Vec2) (LandblockKey, bool) {
	if pos.X < 0 || pos.Y < 0 {
		return 0, false
	}
	x := int(pos.X / LandblockLength)
	y := int(pos.Y / LandblockLength)
	if x > 255 || y > 255 {
		return 0, false
	}
	return MakeKey(uint8(x), uint8(y)), true
}

// VertexIndex maps a (col, row) vertex coordinate to its index in the
// dense 81-entry array. Columns are the X axis.
func VertexIndex(col, row int) int {
	return col*VertsPerEdge + row
}
