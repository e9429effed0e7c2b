// Package export composites the editing session's documents back into a
// distributable archive. The source archive is copied first and all writes
// go to the copy; the session's own files are never modified.
package export

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/document"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
)

// ErrNothingToExport is returned when no terrain edits exist and no
// resident document writes records of its own.
var ErrNothingToExport = errors.New("nothing to export")

// TextureExportFunc regenerates derived texture records in the output
// archive. Texture generation is best effort: a panic or error here is
// logged and the rest of the export stands.
type TextureExportFunc func(out dat.Store) error

// Exporter writes a full archive export. All fields except Log and
// Textures are required.
type Exporter struct {
	System *terrain.System
	Tree   *terrain.LayerTree
	Docs   *document.Manager
	Source *dat.Archive

	Textures TextureExportFunc
	Log      *zap.Logger
}

// Result reports what an export actually wrote. Failed holds the
// landblocks whose records could not be saved; the rest of the export is
// still valid.
type Result struct {
	OutputPath string
	Landblocks int
	Documents  int
	Failed     []terrain.LandblockKey
}

// ExportDats copies the source archive into dir and composites every
// edited landblock into the copy at the given iteration (0 keeps the
// archive's current iteration).
//
// Compositing is field granular. For each vertex the export-flagged
// layers are visited in priority order; a layer writes only the fields of
// its mask that no higher-priority layer has already claimed. Fields no
// layer claims fall through to the base terrain document, then to the
// source archive.
func (e *Exporter) ExportDats(dir string, iteration int32) (*Result, error) {
	log := e.Log
	if log == nil {
		log = zap.NewNop()
	}

	layers, err := e.exportStores()
	if err != nil {
		return nil, err
	}

	keys := e.editedLandblocks(layers)
	if len(keys) == 0 && !e.hasDirectSavers() {
		return nil, ErrNothingToExport
	}

	out, err := e.Source.CopyTo(dir)
	if err != nil {
		return nil, fmt.Errorf("copying source archive: %w", err)
	}
	result := &Result{OutputPath: dir}

	for _, key := range keys {
		dense := e.composite(key, layers)
		if dense == nil {
			// Edits against a landblock the geometry no longer has.
			log.Warn("skipping landblock absent from world geometry",
				zap.Stringer("landblock", key))
			result.Failed = append(result.Failed, key)
			continue
		}
		if !out.TrySave(terrain.NewLandblockRecord(key, dense), iteration) {
			log.Error("failed to save landblock terrain record",
				zap.Stringer("landblock", key))
			result.Failed = append(result.Failed, key)
			continue
		}
		result.Landblocks++
	}

	// Non-terrain documents (static objects, dungeons, portals) write
	// their own records.
	for _, doc := range e.Docs.ActiveDocs() {
		if doc.SaveToDats(out, iteration) {
			result.Documents++
		}
	}

	e.runTextureExport(out, log)

	if iteration != 0 {
		out.SetIteration(iteration)
	}

	log.Info("export finished",
		zap.String("dir", dir),
		zap.Int("landblocks", result.Landblocks),
		zap.Int("documents", result.Documents),
		zap.Int("failed", len(result.Failed)))
	return result, nil
}

// hasDirectSavers reports whether any resident document writes its own
// archive records. Terrain and layer documents only reach the archive
// through the compositor, so a session holding nothing else and no
// terrain edits has no export to do.
func (e *Exporter) hasDirectSavers() bool {
	for _, doc := range e.Docs.ActiveDocs() {
		switch doc.(type) {
		case *document.TerrainDocument, *document.LayerDocument:
		default:
			return true
		}
	}
	return false
}

// exportStores resolves the export-flagged leaf layers to their backing
// stores, highest priority first.
func (e *Exporter) exportStores() ([]*terrain.Store, error) {
	nodes := e.Tree.CollectExportLayers()
	stores := make([]*terrain.Store, 0, len(nodes))
	for _, n := range nodes {
		doc, err := e.Docs.Layer(n.DocumentID)
		if err != nil {
			return nil, fmt.Errorf("resolving layer %q: %w", n.Name, err)
		}
		stores = append(stores, doc.Store)
	}
	return stores, nil
}

// editedLandblocks returns the sorted union of landblocks touched by the
// base terrain document or any export layer.
func (e *Exporter) editedLandblocks(layers []*terrain.Store) []terrain.LandblockKey {
	set := make(map[terrain.LandblockKey]struct{})
	for key := range e.System.Base().Landblocks {
		set[key] = struct{}{}
	}
	for _, layer := range layers {
		for key := range layer.Landblocks {
			set[key] = struct{}{}
		}
	}

	keys := make([]terrain.LandblockKey, 0, len(set))
	for key := range set {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// composite builds the dense export terrain for one landblock. Returns
// nil when the landblock does not exist in the world geometry.
func (e *Exporter) composite(key terrain.LandblockKey, layers []*terrain.Store) []terrain.Entry {
	dense := e.System.BaseLandblockTerrain(key)
	if dense == nil {
		return nil
	}

	// Per-vertex record of fields already claimed by a higher-priority
	// layer. Each layer takes only what is still unclaimed.
	var resolved [terrain.LandblockVertices]terrain.FieldMask
	for _, layer := range layers {
		for index, packed := range layer.LandblockValues(key) {
			if index < 0 || index >= terrain.LandblockVertices {
				continue
			}
			mask := layer.Mask(key, index)
			unclaimed := mask &^ resolved[index]
			if unclaimed == terrain.MaskNone {
				continue
			}
			dense[index] = dense[index].Merge(terrain.EntryFromUint32(packed), unclaimed)
			resolved[index] |= mask
		}
	}
	return dense
}

// runTextureExport invokes the texture callback, fencing off panics so a
// bad texture generator cannot take down an otherwise finished export.
func (e *Exporter) runTextureExport(out dat.Store, log *zap.Logger) {
	if e.Textures == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			log.Error("texture export panicked", zap.Any("panic", r))
		}
	}()
	if err := e.Textures(out); err != nil {
		log.Error("texture export failed", zap.Error(err))
	}
}

// ParseIteration parses a user-supplied iteration argument. "current"
// (or an empty string) keeps the source archive's iteration.
func ParseIteration(s string) (int32, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" || s == "current" {
		return 0, nil
	}
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad iteration %q: %w", s, err)
	}
	return int32(v), nil
}
