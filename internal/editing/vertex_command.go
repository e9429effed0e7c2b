package editing

import (
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

// vertexChange is one recorded vertex edit: enough to apply and to invert.
type vertexChange struct {
	index     int
	original  uint32 // packed entry before the stroke
	updated   uint32
	wasAbsent bool // target store had no entry for this vertex yet
}

// VertexChangeCommand is the shared implementation of the four terrain
// brush commands (height, road, type, scenery). A command is built, fed a
// stroke via CollectChanges (or explicit targets via CollectChangesAt),
// then executed. The recorded original values make Undo exact.
//
// Static object height deltas are computed once, on the first execution,
// and reused on every later undo/redo: recomputing after objects have
// already moved would double-apply the delta.
type VertexChangeCommand struct {
	ctx   *Context
	field terrain.FieldMask
	name  string

	changes    map[terrain.LandblockKey][]vertexChange
	denseCache map[terrain.LandblockKey][]terrain.Entry

	objectsComputed bool
	objectChanges   map[terrain.LandblockKey][]objectChange
}

// NewHeightChange builds a height brush command.
func NewHeightChange(ctx *Context) *VertexChangeCommand {
	return newVertexChange(ctx, terrain.MaskHeight, "height change")
}

// NewRoadChange builds a road paint command.
func NewRoadChange(ctx *Context) *VertexChangeCommand {
	return newVertexChange(ctx, terrain.MaskRoad, "road change")
}

// NewTypeChange builds a ground type paint command.
func NewTypeChange(ctx *Context) *VertexChangeCommand {
	return newVertexChange(ctx, terrain.MaskType, "type change")
}

// NewSceneryChange builds a scenery paint command.
func NewSceneryChange(ctx *Context) *VertexChangeCommand {
	return newVertexChange(ctx, terrain.MaskScenery, "scenery change")
}

func newVertexChange(ctx *Context, field terrain.FieldMask, name string) *VertexChangeCommand {
	if ctx == nil {
		panic("editing: vertex change command with nil context")
	}
	return &VertexChangeCommand{
		ctx:        ctx,
		field:      field,
		name:       name,
		changes:    make(map[terrain.LandblockKey][]vertexChange),
		denseCache: make(map[terrain.LandblockKey][]terrain.Entry),
	}
}

// Name implements Command.
func (c *VertexChangeCommand) Name() string { return c.name }

// CollectChanges records the vertex edits of one brush stroke. Within a
// landblock each vertex is recorded at most once; when overlapping brush
// samples touch a vertex twice, the first occurrence wins. Vertices whose
// field already matches the target are skipped so no useless undo entries
// are recorded.
func (c *VertexChangeCommand) CollectChanges(center geom.Vec3, radius float32, target uint8) {
	seen := make(map[terrain.LandblockKey]map[int]bool)
	for _, hit := range c.ctx.Brush.Affected(center, radius) {
		verts := seen[hit.Key]
		if verts == nil {
			verts = make(map[int]bool)
			seen[hit.Key] = verts
		}
		if verts[hit.Index] {
			continue
		}
		verts[hit.Index] = true
		c.collectOne(hit.Key, hit.Index, target)
	}
}

// CollectChangesAt records edits for an explicit vertex set, bypassing the
// brush footprint. Stamp paste and scripted edits use this path.
func (c *VertexChangeCommand) CollectChangesAt(targets map[terrain.LandblockKey]map[int]uint8) {
	for key, verts := range targets {
		for index, target := range verts {
			c.collectOne(key, index, target)
		}
	}
}

func (c *VertexChangeCommand) collectOne(key terrain.LandblockKey, index int, target uint8) {
	if index < 0 || index >= terrain.LandblockVertices {
		return
	}
	dense := c.dense(key)
	if dense == nil {
		return
	}

	current := dense[index]
	want := c.field.Truncate(target)
	if current.FieldValue(c.field) == want {
		return
	}

	_, present := c.ctx.target().Value(key, index)
	c.changes[key] = append(c.changes[key], vertexChange{
		index:     index,
		original:  current.ToUint32(),
		updated:   current.WithField(c.field, target).ToUint32(),
		wasAbsent: !present,
	})
}

// dense fetches the landblock's current dense terrain, cached for the
// lifetime of the collection pass.
func (c *VertexChangeCommand) dense(key terrain.LandblockKey) []terrain.Entry {
	if dense, ok := c.denseCache[key]; ok {
		return dense
	}
	dense := c.ctx.System.LandblockTerrain(key)
	c.denseCache[key] = dense
	return dense
}

// Execute applies the recorded changes. Reports false only when the
// command recorded no changes at all.
func (c *VertexChangeCommand) Execute() bool { return c.apply(false) }

// Undo restores the recorded original values; vertices the store did not
// hold before the stroke are removed outright.
func (c *VertexChangeCommand) Undo() bool { return c.apply(true) }

func (c *VertexChangeCommand) apply(isUndo bool) bool {
	if len(c.changes) == 0 {
		return false
	}

	store := c.ctx.target()
	batch := make(map[terrain.LandblockKey]map[int]uint32)
	for key, list := range c.changes {
		for _, ch := range list {
			if isUndo && ch.wasAbsent {
				// The store never held this vertex: undo removes the
				// entry (and with it any claimed field mask) rather
				// than writing the merged view's snapshot back.
				if _, ok := store.Value(key, ch.index); ok {
					store.Remove(key, ch.index)
					c.ctx.MarkDirty(key)
				}
				continue
			}
			value := ch.updated
			if isUndo {
				value = ch.original
			}
			if cur, ok := store.Value(key, ch.index); ok && cur == value {
				continue
			}
			verts := batch[key]
			if verts == nil {
				verts = make(map[int]uint32)
				batch[key] = verts
			}
			verts[ch.index] = value
		}
	}

	touched := store.UpdateBatch(batch)
	c.ctx.markDirtySet(touched)

	// Claiming is idempotent, and undo drops the masks of vertices it
	// removes, so a redo has to claim them again.
	if !isUndo {
		c.claimMasks(store)
	}

	if !c.objectsComputed {
		c.objectChanges = c.computeObjectChanges()
		c.objectsComputed = true
	}
	c.applyObjectChanges(isUndo)

	return true
}

// claimMasks narrows a layer's field ownership to what was actually
// painted. Vertices the layer already held keep their wider claim; base
// terrain carries no masks at all.
func (c *VertexChangeCommand) claimMasks(store *terrain.Store) {
	if !c.ctx.paintingLayer() {
		return
	}
	for key, list := range c.changes {
		for _, ch := range list {
			if ch.wasAbsent {
				store.SetMask(key, ch.index, c.field)
				continue
			}
			if m, ok := store.ExplicitMask(key, ch.index); ok {
				store.SetMask(key, ch.index, m|c.field)
			}
		}
	}
}
