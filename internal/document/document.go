// Package document manages the editor's in-memory documents: the base
// terrain document, named layer documents, per-landblock static object
// documents, and the dungeon/portal blobs. Documents are created on demand
// by string ID and persist into a SQLite project database so an editing
// session survives restarts.
package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
)

// Well-known document IDs and prefixes.
const (
	TerrainDocID     = "terrain"
	PortalTableDocID = "portals"
	LayerDocPrefix   = "layer:"
	ObjectsDocPrefix = "landblock:"
	DungeonDocPrefix = "dungeon:"
)

// ErrUnknownDocumentID is returned for IDs no factory recognizes.
var ErrUnknownDocumentID = errors.New("unknown document id")

// Document is a unit of editable, persistable state.
type Document interface {
	DocumentID() string
	Dirty() bool
	MarkDirty()
	ClearDirty()

	// SaveToDats writes the document's edits into the output archive.
	SaveToDats(store dat.Store, iteration int32) bool

	encode() ([]byte, error)
	decode(data []byte) error
}

// Manager creates and caches documents by ID. One Manager per open
// project; all access happens on the editing thread.
type Manager struct {
	db    *projectDB // nil when the project has no backing database
	docs  map[string]Document
	order []string
}

// NewManager opens (or creates) the project database at path. An empty
// path runs the manager purely in memory.
func NewManager(path string) (*Manager, error) {
	m := &Manager{docs: make(map[string]Document)}
	if path != "" {
		db, err := openProjectDB(path)
		if err != nil {
			return nil, fmt.Errorf("opening project database: %w", err)
		}
		m.db = db
	}
	return m, nil
}

// Close flushes dirty documents and closes the project database.
func (m *Manager) Close() error {
	if m.db == nil {
		return nil
	}
	if err := m.SaveAll(); err != nil {
		m.db.close()
		return err
	}
	return m.db.close()
}

// GetOrCreateDocument returns the cached document for id, creating (and
// loading persisted state for) it on first use.
func (m *Manager) GetOrCreateDocument(id string) (Document, error) {
	if doc, ok := m.docs[id]; ok {
		return doc, nil
	}

	doc, err := newDocument(id)
	if err != nil {
		return nil, err
	}

	if m.db != nil {
		data, found, err := m.db.load(id)
		if err != nil {
			return nil, fmt.Errorf("loading document %q: %w", id, err)
		}
		if found {
			if err := doc.decode(data); err != nil {
				return nil, fmt.Errorf("decoding document %q: %w", id, err)
			}
		}
	}

	m.docs[id] = doc
	m.order = append(m.order, id)
	return doc, nil
}

// ActiveDocs returns every resident document in creation order. The
// export sweep walks this list.
func (m *Manager) ActiveDocs() []Document {
	out := make([]Document, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.docs[id])
	}
	return out
}

// StoredIDs returns the IDs of every document persisted in the project
// database that starts with prefix. An empty prefix matches everything;
// a manager with no database has no stored documents.
func (m *Manager) StoredIDs(prefix string) ([]string, error) {
	if m.db == nil {
		return nil, nil
	}
	ids, err := m.db.listIDs()
	if err != nil {
		return nil, fmt.Errorf("listing stored documents: %w", err)
	}
	if prefix == "" {
		return ids, nil
	}
	filtered := ids[:0]
	for _, id := range ids {
		if strings.HasPrefix(id, prefix) {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// SaveAll persists every dirty resident document to the project database.
func (m *Manager) SaveAll() error {
	if m.db == nil {
		return nil
	}
	for _, id := range m.order {
		doc := m.docs[id]
		if !doc.Dirty() {
			continue
		}
		data, err := doc.encode()
		if err != nil {
			return fmt.Errorf("encoding document %q: %w", id, err)
		}
		if err := m.db.save(id, kindOf(id), data); err != nil {
			return fmt.Errorf("saving document %q: %w", id, err)
		}
		doc.ClearDirty()
	}
	return nil
}

// Terrain returns the base terrain document.
func (m *Manager) Terrain() (*TerrainDocument, error) {
	doc, err := m.GetOrCreateDocument(TerrainDocID)
	if err != nil {
		return nil, err
	}
	return doc.(*TerrainDocument), nil
}

// Layer returns the layer document with the given ID.
func (m *Manager) Layer(id string) (*LayerDocument, error) {
	if !strings.HasPrefix(id, LayerDocPrefix) {
		return nil, fmt.Errorf("%w: %q is not a layer document", ErrUnknownDocumentID, id)
	}
	doc, err := m.GetOrCreateDocument(id)
	if err != nil {
		return nil, err
	}
	return doc.(*LayerDocument), nil
}

// NewLayer creates a fresh layer document with a generated ID.
func (m *Manager) NewLayer() (*LayerDocument, error) {
	return m.Layer(LayerDocPrefix + uuid.NewString())
}

// LandblockObjects returns the static object document for a landblock.
func (m *Manager) LandblockObjects(key terrain.LandblockKey) (*ObjectsDocument, error) {
	doc, err := m.GetOrCreateDocument(fmt.Sprintf("%s%04X", ObjectsDocPrefix, uint16(key)))
	if err != nil {
		return nil, err
	}
	return doc.(*ObjectsDocument), nil
}

// Dungeon returns the dungeon document for an archive record ID.
func (m *Manager) Dungeon(recordID uint32) (*BlobDocument, error) {
	doc, err := m.GetOrCreateDocument(fmt.Sprintf("%s%08X", DungeonDocPrefix, recordID))
	if err != nil {
		return nil, err
	}
	return doc.(*BlobDocument), nil
}

// PortalTable returns the portal destination table document.
func (m *Manager) PortalTable() (*BlobDocument, error) {
	doc, err := m.GetOrCreateDocument(PortalTableDocID)
	if err != nil {
		return nil, err
	}
	return doc.(*BlobDocument), nil
}

// newDocument builds an empty document for an ID based on its prefix.
func newDocument(id string) (Document, error) {
	switch {
	case id == TerrainDocID:
		return &TerrainDocument{baseDoc: baseDoc{id: id}, Store: terrain.NewStore()}, nil
	case id == PortalTableDocID:
		return &BlobDocument{baseDoc: baseDoc{id: id}, recordID: PortalTableRecordID, kind: dat.KindPortalTable}, nil
	case strings.HasPrefix(id, LayerDocPrefix):
		return &LayerDocument{baseDoc: baseDoc{id: id}, Store: terrain.NewStore()}, nil
	case strings.HasPrefix(id, ObjectsDocPrefix):
		key, err := parseLandblockKey(strings.TrimPrefix(id, ObjectsDocPrefix))
		if err != nil {
			return nil, err
		}
		return &ObjectsDocument{baseDoc: baseDoc{id: id}, Key: key}, nil
	case strings.HasPrefix(id, DungeonDocPrefix):
		recID, err := strconv.ParseUint(strings.TrimPrefix(id, DungeonDocPrefix), 16, 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentID, id)
		}
		return &BlobDocument{baseDoc: baseDoc{id: id}, recordID: uint32(recID), kind: dat.KindDungeon}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownDocumentID, id)
}

func kindOf(id string) string {
	switch {
	case id == TerrainDocID:
		return "terrain"
	case id == PortalTableDocID:
		return "portals"
	case strings.HasPrefix(id, LayerDocPrefix):
		return "layer"
	case strings.HasPrefix(id, ObjectsDocPrefix):
		return "objects"
	case strings.HasPrefix(id, DungeonDocPrefix):
		return "dungeon"
	}
	return "unknown"
}

func parseLandblockKey(s string) (terrain.LandblockKey, error) {
	v, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: bad landblock key %q", ErrUnknownDocumentID, s)
	}
	return terrain.LandblockKey(v), nil
}

// baseDoc carries the ID and dirty flag shared by all document kinds.
type baseDoc struct {
	id    string
	dirty bool
}

func (d *baseDoc) DocumentID() string { return d.id }
func (d *baseDoc) Dirty() bool        { return d.dirty }
func (d *baseDoc) MarkDirty()         { d.dirty = true }
func (d *baseDoc) ClearDirty()        { d.dirty = false }
