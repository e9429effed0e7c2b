package document

import (
	"path/filepath"
	"testing"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return m
}

func TestManagerCreatesByPrefix(t *testing.T) {
	m := newTestManager(t)

	if _, err := m.Terrain(); err != nil {
		t.Errorf("Terrain() failed: %v", err)
	}
	if _, err := m.Layer("layer:test"); err != nil {
		t.Errorf("Layer() failed: %v", err)
	}
	if _, err := m.LandblockObjects(terrain.MakeKey(1, 2)); err != nil {
		t.Errorf("LandblockObjects() failed: %v", err)
	}
	if _, err := m.Dungeon(0x01D90100); err != nil {
		t.Errorf("Dungeon() failed: %v", err)
	}
	if _, err := m.PortalTable(); err != nil {
		t.Errorf("PortalTable() failed: %v", err)
	}

	if _, err := m.GetOrCreateDocument("bogus:xyz"); err == nil {
		t.Error("expected error for unknown document id")
	}

	if got := len(m.ActiveDocs()); got != 5 {
		t.Errorf("ActiveDocs() has %d docs, want 5", got)
	}
}

func TestManagerCachesDocuments(t *testing.T) {
	m := newTestManager(t)

	a, _ := m.Terrain()
	b, _ := m.Terrain()
	if a != b {
		t.Error("GetOrCreateDocument returned a new instance for a cached id")
	}
}

func TestNewLayerGeneratesUniqueIDs(t *testing.T) {
	m := newTestManager(t)
	a, _ := m.NewLayer()
	b, _ := m.NewLayer()
	if a.DocumentID() == b.DocumentID() {
		t.Error("NewLayer returned duplicate document ids")
	}
}

func TestObjectsDocumentSaveToDats(t *testing.T) {
	m := newTestManager(t)
	key := terrain.MakeKey(3, 4)
	doc, _ := m.LandblockObjects(key)
	doc.Add(StaticObject{
		ID:          0x02000123,
		IsSetup:     true,
		Origin:      geom.Vec3{X: 100, Y: 50, Z: 12},
		Orientation: geom.QuatIdentity(),
		Scale:       geom.Vec3{X: 1, Y: 1, Z: 1},
	})

	archive := dat.NewMemory()
	if !doc.SaveToDats(archive, 0) {
		t.Fatal("SaveToDats failed")
	}

	rec := &LandblockInfoRecord{Key: key}
	if !archive.TryGet(rec) {
		t.Fatal("info record missing from archive")
	}
	if len(rec.Objects) != 1 || rec.Objects[0].ID != 0x02000123 || !rec.Objects[0].IsSetup {
		t.Errorf("decoded objects = %+v", rec.Objects)
	}
	if rec.Objects[0].Origin != (geom.Vec3{X: 100, Y: 50, Z: 12}) {
		t.Errorf("origin = %v", rec.Objects[0].Origin)
	}
}

func TestObjectsDocumentRemoveInsert(t *testing.T) {
	m := newTestManager(t)
	doc, _ := m.LandblockObjects(terrain.MakeKey(0, 0))
	doc.Add(StaticObject{ID: 1})
	doc.Add(StaticObject{ID: 2})
	doc.Add(StaticObject{ID: 3})

	removed, ok := doc.RemoveAt(1)
	if !ok || removed.ID != 2 {
		t.Fatalf("RemoveAt(1) = %+v, %v", removed, ok)
	}
	if len(doc.Objects) != 2 || doc.Objects[1].ID != 3 {
		t.Errorf("after remove: %+v", doc.Objects)
	}

	if !doc.InsertAt(1, removed) {
		t.Fatal("InsertAt failed")
	}
	if doc.Objects[1].ID != 2 {
		t.Errorf("after reinsert: %+v", doc.Objects)
	}
}

func TestStoreEncodeDecodeRoundTrip(t *testing.T) {
	s := terrain.NewStore()
	key := terrain.MakeKey(10, 20)
	s.Set(key, 5, 0xDEAD)
	s.Set(key, 40, 0xBEEF)
	s.SetMask(key, 5, terrain.MaskHeight|terrain.MaskRoad)

	data, err := encodeStore(s)
	if err != nil {
		t.Fatalf("encodeStore failed: %v", err)
	}

	decoded := terrain.NewStore()
	if err := decodeStore(decoded, data); err != nil {
		t.Fatalf("decodeStore failed: %v", err)
	}

	if v, _ := decoded.Value(key, 5); v != 0xDEAD {
		t.Errorf("vertex 5 = %X", v)
	}
	if v, _ := decoded.Value(key, 40); v != 0xBEEF {
		t.Errorf("vertex 40 = %X", v)
	}
	if m := decoded.Mask(key, 5); m != terrain.MaskHeight|terrain.MaskRoad {
		t.Errorf("mask = %04b", m)
	}
	if m := decoded.Mask(key, 40); m != terrain.MaskAll {
		t.Errorf("unset mask = %04b, want All", m)
	}
}

func TestProjectPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	layer, _ := m.Layer("layer:persisted")
	key := terrain.MakeKey(7, 7)
	layer.Store.Set(key, 12, 42)
	layer.MarkDirty()
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewManager(path)
	if err != nil {
		t.Fatalf("reopening manager failed: %v", err)
	}
	defer reopened.Close()

	layer2, err := reopened.Layer("layer:persisted")
	if err != nil {
		t.Fatalf("loading persisted layer failed: %v", err)
	}
	if v, ok := layer2.Store.Value(key, 12); !ok || v != 42 {
		t.Errorf("persisted value = %v, %v; want 42", v, ok)
	}
}

func TestStoredIDs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.db")

	m, err := NewManager(path)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	for _, id := range []string{"layer:b", "layer:a", TerrainDocID} {
		doc, err := m.GetOrCreateDocument(id)
		if err != nil {
			t.Fatalf("GetOrCreateDocument(%q) failed: %v", id, err)
		}
		doc.MarkDirty()
	}
	if err := m.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := NewManager(path)
	if err != nil {
		t.Fatalf("reopening manager failed: %v", err)
	}
	defer reopened.Close()

	layers, err := reopened.StoredIDs(LayerDocPrefix)
	if err != nil {
		t.Fatalf("StoredIDs failed: %v", err)
	}
	if len(layers) != 2 || layers[0] != "layer:a" || layers[1] != "layer:b" {
		t.Errorf("layer ids = %v", layers)
	}

	all, err := reopened.StoredIDs("")
	if err != nil {
		t.Fatalf("StoredIDs failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("stored ids = %v, want 3 entries", all)
	}
}

func TestStoredIDsWithoutDatabase(t *testing.T) {
	m, err := NewManager("")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	ids, err := m.StoredIDs("")
	if err != nil || ids != nil {
		t.Errorf("ids = %v, err = %v; want none", ids, err)
	}
}
