package terrain

// Store is the sparse terrain data of one layer (or of the base terrain
// document): per landblock, only the vertices the layer touches, plus an
// optional per-vertex field-ownership mask. A vertex with no explicit mask
// is treated as claiming all four fields (legacy data semantics).
//
// Invariant: every vertex present in FieldMasks is also present in
// Landblocks for the same landblock.
type Store struct {
	Landblocks map[LandblockKey]map[int]uint32
	FieldMasks map[LandblockKey]map[int]FieldMask
}

// NewStore returns an empty sparse store.
func NewStore() *Store {
	return &Store{
		Landblocks: make(map[LandblockKey]map[int]uint32),
		FieldMasks: make(map[LandblockKey]map[int]FieldMask),
	}
}

// Value returns the packed entry this store holds for a vertex, if any.
func (s *Store) Value(key LandblockKey, index int) (uint32, bool) {
	v, ok := s.Landblocks[key][index]
	return v, ok
}

// Set writes a single packed entry. Bulk edits should go through
// UpdateBatch so dirty tracking sees them as one unit.
func (s *Store) Set(key LandblockKey, index int, packed uint32) {
	lb := s.Landblocks[key]
	if lb == nil {
		lb = make(map[int]uint32)
		s.Landblocks[key] = lb
	}
	lb[index] = packed
}

// Remove drops a vertex and its mask from the store.
func (s *Store) Remove(key LandblockKey, index int) {
	if lb, ok := s.Landblocks[key]; ok {
		delete(lb, index)
		if len(lb) == 0 {
			delete(s.Landblocks, key)
		}
	}
	if masks, ok := s.FieldMasks[key]; ok {
		delete(masks, index)
		if len(masks) == 0 {
			delete(s.FieldMasks, key)
		}
	}
}

// Mask returns the field-ownership mask for a vertex. Vertices without an
// explicit mask claim all fields.
func (s *Store) Mask(key LandblockKey, index int) FieldMask {
	if m, ok := s.FieldMasks[key][index]; ok {
		return m
	}
	return MaskAll
}

// ExplicitMask returns the explicitly recorded mask for a vertex, with
// ok false when the vertex relies on the legacy all-fields default.
func (s *Store) ExplicitMask(key LandblockKey, index int) (FieldMask, bool) {
	m, ok := s.FieldMasks[key][index]
	return m, ok
}

// SetMask records an explicit field-ownership mask for a vertex. Returns
// false if the store holds no entry for that vertex; a mask may only
// narrow ownership of data that exists.
func (s *Store) SetMask(key LandblockKey, index int, mask FieldMask) bool {
	if _, ok := s.Landblocks[key][index]; !ok {
		return false
	}
	masks := s.FieldMasks[key]
	if masks == nil {
		masks = make(map[int]FieldMask)
		s.FieldMasks[key] = masks
	}
	masks[index] = mask & MaskAll
	return true
}

// LandblockValues returns this store's sparse vertex map for a landblock,
// or nil when the layer never touched it. The map is shared, not copied.
func (s *Store) LandblockValues(key LandblockKey) map[int]uint32 {
	return s.Landblocks[key]
}

// UpdateBatch applies a multi-landblock set of vertex writes as one unit
// and returns the keys of landblocks that actually changed. Writes whose
// value already matches the stored one are skipped so untouched landblocks
// are not reported dirty.
func (s *Store) UpdateBatch(changes map[LandblockKey]map[int]uint32) map[LandblockKey]struct{} {
	touched := make(map[LandblockKey]struct{})
	for key, verts := range changes {
		for index, packed := range verts {
			if cur, ok := s.Value(key, index); ok && cur == packed {
				continue
			}
			s.Set(key, index, packed)
			touched[key] = struct{}{}
		}
	}
	return touched
}

// Materialize applies this store's sparse overrides for a landblock atop
// the supplied baseline and returns the dense 81-entry result. The
// baseline is not modified. A nil baseline yields nil: the landblock does
// not exist in the world geometry.
func (s *Store) Materialize(key LandblockKey, baseline []Entry) []Entry {
	if baseline == nil {
		return nil
	}
	dense := make([]Entry, LandblockVertices)
	copy(dense, baseline)
	for index, packed := range s.Landblocks[key] {
		if index >= 0 && index < LandblockVertices {
			dense[index] = EntryFromUint32(packed)
		}
	}
	return dense
}
