package terrain

import "testing"

func TestStoreUpdateBatchSkipsNoops(t *testing.T) {
	s := NewStore()
	key := MakeKey(1, 1)
	s.Set(key, 40, 123)

	touched := s.UpdateBatch(map[LandblockKey]map[int]uint32{
		key: {40: 123}, // same value, must not be reported
	})
	if len(touched) != 0 {
		t.Errorf("no-op batch touched %d landblocks, want 0", len(touched))
	}
}

func TestStoreUpdateBatchTouchedSet(t *testing.T) {
	s := NewStore()
	a := MakeKey(1, 1)
	b := MakeKey(2, 2)
	s.Set(a, 0, 7)

	touched := s.UpdateBatch(map[LandblockKey]map[int]uint32{
		a: {0: 7, 1: 9}, // one no-op, one real write
		b: {5: 11},
	})

	if _, ok := touched[a]; !ok {
		t.Error("landblock a not reported touched")
	}
	if _, ok := touched[b]; !ok {
		t.Error("landblock b not reported touched")
	}
	if v, _ := s.Value(a, 1); v != 9 {
		t.Errorf("a[1] = %d, want 9", v)
	}
	if v, _ := s.Value(b, 5); v != 11 {
		t.Errorf("b[5] = %d, want 11", v)
	}
}

func TestStoreMaskDefaultsToAll(t *testing.T) {
	s := NewStore()
	key := MakeKey(3, 3)
	s.Set(key, 10, 1)

	if m := s.Mask(key, 10); m != MaskAll {
		t.Errorf("unset mask = %04b, want All", m)
	}
}

func TestStoreSetMaskRequiresEntry(t *testing.T) {
	s := NewStore()
	key := MakeKey(3, 3)

	if s.SetMask(key, 10, MaskHeight) {
		t.Error("SetMask succeeded for a vertex with no entry")
	}

	s.Set(key, 10, 1)
	if !s.SetMask(key, 10, MaskHeight|MaskType) {
		t.Fatal("SetMask failed for an existing vertex")
	}
	if m := s.Mask(key, 10); m != MaskHeight|MaskType {
		t.Errorf("mask = %04b, want Height|Type", m)
	}
}

func TestStoreRemoveDropsMask(t *testing.T) {
	s := NewStore()
	key := MakeKey(4, 4)
	s.Set(key, 2, 5)
	s.SetMask(key, 2, MaskRoad)

	s.Remove(key, 2)

	if _, ok := s.Value(key, 2); ok {
		t.Error("entry survived Remove")
	}
	if m := s.Mask(key, 2); m != MaskAll {
		t.Errorf("mask after Remove = %04b, want default All", m)
	}
	if len(s.Landblocks) != 0 || len(s.FieldMasks) != 0 {
		t.Error("empty landblock maps were not pruned")
	}
}

func TestStoreMaterialize(t *testing.T) {
	s := NewStore()
	key := MakeKey(5, 5)

	baseline := make([]Entry, LandblockVertices)
	for i := range baseline {
		baseline[i] = NewEntry(0, 0, 1, 10)
	}

	s.Set(key, 40, NewEntry(2, 0, 1, 50).ToUint32())
	dense := s.Materialize(key, baseline)

	if dense[40].Height != 50 || dense[40].Road != 2 {
		t.Errorf("override vertex = %+v", dense[40])
	}
	if dense[0].Height != 10 {
		t.Errorf("untouched vertex = %+v, want baseline", dense[0])
	}
	if baseline[40].Height != 10 {
		t.Error("Materialize modified the baseline slice")
	}
}

func TestStoreMaterializeNilBaseline(t *testing.T) {
	s := NewStore()
	if dense := s.Materialize(MakeKey(9, 9), nil); dense != nil {
		t.Error("Materialize(nil baseline) should be nil: landblock absent from geometry")
	}
}
