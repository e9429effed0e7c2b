package stamp

import (
	"fmt"
	"time"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/editing"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

// Capture copies a whole landblock's live-view terrain and static objects
// into a stamp. Object origins are stored relative to the landblock
// origin so the stamp pastes anywhere.
func Capture(ctx *editing.Context, key terrain.LandblockKey, name, description string) (*Stamp, error) {
	dense := ctx.System.LandblockTerrain(key)
	if dense == nil {
		return nil, fmt.Errorf("landblock %s does not exist in the world geometry", key)
	}

	s := &Stamp{
		Name:         name,
		Description:  description,
		Created:      time.Now().UTC(),
		Width:        terrain.VertsPerEdge,
		Height:       terrain.VertsPerEdge,
		Origin:       key.Origin(),
		SourceBlock:  key,
		Heights:      make([]byte, terrain.LandblockVertices),
		TerrainTypes: make([]uint16, terrain.LandblockVertices),
	}
	// Stamp arrays are row-major; the dense array is column-major.
	for col := 0; col < terrain.VertsPerEdge; col++ {
		for row := 0; row < terrain.VertsPerEdge; row++ {
			e := dense[terrain.VertexIndex(col, row)]
			i := row*terrain.VertsPerEdge + col
			s.Heights[i] = e.Height
			s.TerrainTypes[i] = uint16(e.Type)
		}
	}

	doc, err := ctx.Docs.LandblockObjects(key)
	if err != nil {
		return nil, err
	}
	origin := key.Origin()
	for _, obj := range doc.Objects {
		rel := obj
		rel.Origin = obj.Origin.Sub(geom.Vec3{X: origin.X, Y: origin.Y})
		s.Objects = append(s.Objects, rel)
	}

	return s, nil
}

// Paste builds a single undoable command that writes the stamp's heights,
// terrain types and objects onto the target landblock. Stamps wider than
// one landblock cannot be pasted in one step.
func (s *Stamp) Paste(ctx *editing.Context, target terrain.LandblockKey) (editing.Command, error) {
	if !s.IsValid() {
		return nil, fmt.Errorf("stamp %q has inconsistent dimensions", s.Name)
	}
	if s.Width > terrain.VertsPerEdge || s.Height > terrain.VertsPerEdge {
		return nil, fmt.Errorf("%w: %dx%d", ErrStampTooLarge, s.Width, s.Height)
	}

	heightTargets := make(map[int]uint8)
	typeTargets := make(map[int]uint8)
	for col := 0; col < int(s.Width); col++ {
		for row := 0; row < int(s.Height); row++ {
			src := row*int(s.Width) + col
			dst := terrain.VertexIndex(col, row)
			heightTargets[dst] = s.Heights[src]
			typeTargets[dst] = uint8(s.TerrainTypes[src])
		}
	}

	heights := editing.NewHeightChange(ctx)
	heights.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{target: heightTargets})
	types := editing.NewTypeChange(ctx)
	types.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{target: typeTargets})

	commands := []editing.Command{heights, types}

	if len(s.Objects) > 0 {
		doc, err := ctx.Docs.LandblockObjects(target)
		if err != nil {
			return nil, err
		}
		origin := target.Origin()
		for _, obj := range s.Objects {
			placed := obj
			placed.Origin = obj.Origin.Add(geom.Vec3{X: origin.X, Y: origin.Y})
			commands = append(commands, editing.NewAddObject(ctx, doc, placed))
		}
	}

	return editing.NewCompound(fmt.Sprintf("paste stamp %q", s.Name), commands...), nil
}
