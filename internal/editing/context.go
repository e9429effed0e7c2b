// Package editing implements the undoable terrain editing session: the
// editing context, brush-stroke commands, static object commands, the
// object height follower and the bounded undo history.
package editing

import (
	"sort"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/document"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
)

// Context is the session-scoped editing state: the terrain system, the
// active layer (nil paints the base terrain document), the document
// manager, the object selection, and the dirty-landblock tracker that
// drives re-render and re-save.
//
// All mutation happens on the single editing thread. The caller keeps the
// system's visible layer list in sync with the active layer.
type Context struct {
	System *terrain.System
	Docs   *document.Manager
	Brush  Footprint

	activeLayer *terrain.Store
	selection   Selection
	dirty       map[terrain.LandblockKey]struct{}
}

// Selection identifies the picked static object, if any.
type Selection struct {
	Landblock terrain.LandblockKey
	Index     int
	Valid     bool
}

// NewContext builds an editing context. The system and document manager
// are required collaborators; nil is a caller bug and panics.
func NewContext(system *terrain.System, docs *document.Manager) *Context {
	if system == nil {
		panic("editing: NewContext called with nil terrain system")
	}
	if docs == nil {
		panic("editing: NewContext called with nil document manager")
	}
	return &Context{
		System: system,
		Docs:   docs,
		Brush:  GridFootprint{},
		dirty:  make(map[terrain.LandblockKey]struct{}),
	}
}

// SetActiveLayer directs subsequent brush strokes at a layer store.
// Passing nil paints the base terrain document.
func (c *Context) SetActiveLayer(layer *terrain.Store) {
	c.activeLayer = layer
}

// ActiveLayer returns the current stroke target layer, nil for base.
func (c *Context) ActiveLayer() *terrain.Store { return c.activeLayer }

// target returns the store strokes write to.
func (c *Context) target() *terrain.Store {
	if c.activeLayer != nil {
		return c.activeLayer
	}
	return c.System.Base()
}

// paintingLayer reports whether strokes target a layer rather than base.
// Only layer stores carry field-ownership masks.
func (c *Context) paintingLayer() bool { return c.activeLayer != nil }

// Select picks a static object.
func (c *Context) Select(key terrain.LandblockKey, index int) {
	c.selection = Selection{Landblock: key, Index: index, Valid: true}
}

// ClearSelection drops the pick.
func (c *Context) ClearSelection() { c.selection = Selection{} }

// Selected returns the current selection.
func (c *Context) Selected() Selection { return c.selection }

// MarkDirty records one changed landblock.
func (c *Context) MarkDirty(key terrain.LandblockKey) {
	c.dirty[key] = struct{}{}
}

func (c *Context) markDirtySet(keys map[terrain.LandblockKey]struct{}) {
	for key := range keys {
		c.dirty[key] = struct{}{}
	}
}

// DirtyLandblocks returns the changed landblocks in key order.
func (c *Context) DirtyLandblocks() []terrain.LandblockKey {
	out := make([]terrain.LandblockKey, 0, len(c.dirty))
	for key := range c.dirty {
		out = append(out, key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ClearDirty resets the tracker, typically after a re-render or save.
func (c *Context) ClearDirty() {
	c.dirty = make(map[terrain.LandblockKey]struct{})
}
