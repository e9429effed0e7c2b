package terrain

import (
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

// System ties the terrain model together for an editing session: the
// source archive (world geometry), the base terrain document's store, the
// currently visible layer stores, and the region height table.
//
// Visible layers are ordered bottom to top: later stores in the slice
// override earlier ones in the live view.
type System struct {
	archive dat.Store
	base    *Store
	visible []*Store
	heights *HeightTable
}

// NewSystem builds a terrain system. The archive and base store are
// required collaborators; passing nil is a caller bug and panics.
func NewSystem(archive dat.Store, base *Store, heights *HeightTable) *System {
	if archive == nil {
		panic("terrain: NewSystem called with nil archive")
	}
	if base == nil {
		panic("terrain: NewSystem called with nil base store")
	}
	if heights == nil {
		heights = DefaultHeightTable()
	}
	return &System{archive: archive, base: base, heights: heights}
}

// LoadHeightTable reads the region descriptor's height table from an
// archive, falling back to the stock table when the record is absent.
func LoadHeightTable(store dat.Store) *HeightTable {
	var rec RegionRecord
	if !store.TryGet(&rec) {
		return DefaultHeightTable()
	}
	t := rec.Heights
	return &t
}

// Base returns the base terrain document's store.
func (s *System) Base() *Store { return s.base }

// Heights returns the active height lookup table.
func (s *System) Heights() *HeightTable { return s.heights }

// SetVisibleLayers replaces the visible layer stores, bottom to top.
func (s *System) SetVisibleLayers(layers []*Store) {
	s.visible = layers
}

// LandblockExists reports whether the landblock is part of the archive's
// world geometry.
func (s *System) LandblockExists(key LandblockKey) bool {
	rec := LandblockRecord{Key: key}
	return s.archive.TryGet(&rec)
}

// baseline fetches the archive's terrain record for a landblock as a
// dense entry array, or nil when the landblock does not exist.
func (s *System) baseline(key LandblockKey) []Entry {
	rec := LandblockRecord{Key: key}
	if !s.archive.TryGet(&rec) {
		return nil
	}
	return rec.Entries()
}

// BaseLandblockTerrain materializes the dense terrain of a landblock from
// the archive baseline plus the base document's edits, ignoring layers.
// Returns nil when the landblock does not exist in the world geometry.
func (s *System) BaseLandblockTerrain(key LandblockKey) []Entry {
	return s.base.Materialize(key, s.baseline(key))
}

// LandblockTerrain materializes the live-view dense terrain of a
// landblock: archive baseline, base document edits, then each visible
// layer bottom to top, honoring per-vertex field masks. Returns nil when
// the landblock does not exist.
func (s *System) LandblockTerrain(key LandblockKey) []Entry {
	dense := s.BaseLandblockTerrain(key)
	if dense == nil {
		return nil
	}
	for _, layer := range s.visible {
		for index, packed := range layer.LandblockValues(key) {
			if index < 0 || index >= LandblockVertices {
				continue
			}
			dense[index] = dense[index].Merge(EntryFromUint32(packed), layer.Mask(key, index))
		}
	}
	return dense
}

// SampleHeight bilinearly samples ground height at a world position,
// using the live-view terrain of the landblock under the position.
// ok is false when the position is off the world grid.
func (s *System) SampleHeight(x, y float32) (float32, bool) {
	key, ok := KeyForPosition(geom.Vec2{X: x, Y: y})
	if !ok {
		return 0, false
	}
	dense := s.LandblockTerrain(key)
	if dense == nil {
		return 0, false
	}
	origin := key.Origin()
	return s.heights.SampleHeight(dense, x-origin.X, y-origin.Y), true
}
