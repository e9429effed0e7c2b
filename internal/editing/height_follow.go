package editing

import (
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
)

// heightFollowThreshold filters out numeric noise: smaller Z deltas do
// not move objects and record no undo entries.
const heightFollowThreshold = 0.001

// objectChange records one static object's Z follow: the exact original
// and the exact target, so undo/redo assign rather than accumulate.
type objectChange struct {
	index     int
	originalZ float32
	newZ      float32
}

// computeObjectChanges diffs ground height under every static object on
// the edited landblocks, before vs after the stroke. Called on the first
// execution only: by then the store already holds the painted values, so
// the pre-stroke terrain is reconstructed in memory from the recorded
// originals rather than re-queried.
func (c *VertexChangeCommand) computeObjectChanges() map[terrain.LandblockKey][]objectChange {
	out := make(map[terrain.LandblockKey][]objectChange)
	if c.field != terrain.MaskHeight {
		return out
	}

	heights := c.ctx.System.Heights()
	for key, list := range c.changes {
		newDense := c.ctx.System.LandblockTerrain(key)
		if newDense == nil {
			continue
		}

		origDense := make([]terrain.Entry, len(newDense))
		copy(origDense, newDense)
		for _, ch := range list {
			origDense[ch.index] = terrain.EntryFromUint32(ch.original)
		}

		doc, err := c.ctx.Docs.LandblockObjects(key)
		if err != nil {
			continue
		}

		origin := key.Origin()
		for i, obj := range doc.Objects {
			localX := obj.Origin.X - origin.X
			localY := obj.Origin.Y - origin.Y
			if localX < 0 || localX > terrain.LandblockLength ||
				localY < 0 || localY > terrain.LandblockLength {
				continue
			}

			oldZ := heights.SampleHeight(origDense, localX, localY)
			newZ := heights.SampleHeight(newDense, localX, localY)
			delta := newZ - oldZ
			if delta < heightFollowThreshold && delta > -heightFollowThreshold {
				continue
			}

			out[key] = append(out[key], objectChange{
				index:     i,
				originalZ: obj.Origin.Z,
				newZ:      obj.Origin.Z + delta,
			})
		}
	}
	return out
}

// applyObjectChanges moves the followed objects to their recorded target
// (or original, when undoing) Z positions.
func (c *VertexChangeCommand) applyObjectChanges(isUndo bool) {
	for key, list := range c.objectChanges {
		doc, err := c.ctx.Docs.LandblockObjects(key)
		if err != nil {
			continue
		}
		for _, ch := range list {
			if ch.index < 0 || ch.index >= len(doc.Objects) {
				continue
			}
			z := ch.newZ
			if isUndo {
				z = ch.originalZ
			}
			doc.Objects[ch.index].Origin.Z = z
		}
		doc.MarkDirty()
		c.ctx.MarkDirty(key)
	}
}
