package editing

import (
	"testing"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/document"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

// testWorld is a one-landblock editing session over an in-memory archive.
type testWorld struct {
	ctx *Context
	key terrain.LandblockKey
}

func newTestWorld(t *testing.T, key terrain.LandblockKey, height uint8) *testWorld {
	t.Helper()

	dense := make([]terrain.Entry, terrain.LandblockVertices)
	for i := range dense {
		dense[i] = terrain.NewEntry(0, 0, 0, height)
	}

	archive := dat.NewMemory()
	if !archive.TrySave(terrain.NewLandblockRecord(key, dense), 0) {
		t.Fatal("seeding archive failed")
	}

	docs, err := document.NewManager("")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}

	sys := terrain.NewSystem(archive, terrain.NewStore(), nil)
	return &testWorld{ctx: NewContext(sys, docs), key: key}
}

func (w *testWorld) heightAt(t *testing.T, index int) uint8 {
	t.Helper()
	dense := w.ctx.System.LandblockTerrain(w.key)
	if dense == nil {
		t.Fatal("landblock missing")
	}
	return dense[index].Height
}

func TestPaintHeightAndUndo(t *testing.T) {
	// Landblock 0x0001, vertex 40, original height 10.
	w := newTestWorld(t, terrain.MakeKey(0, 1), 10)

	cmd := NewHeightChange(w.ctx)
	cmd.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{
		w.key: {40: 50},
	})

	if !cmd.Execute() {
		t.Fatal("Execute reported no work")
	}
	if got := w.heightAt(t, 40); got != 50 {
		t.Errorf("height after paint = %d, want 50", got)
	}

	if !cmd.Undo() {
		t.Fatal("Undo reported no work")
	}
	if got := w.heightAt(t, 40); got != 10 {
		t.Errorf("height after undo = %d, want 10", got)
	}
}

func TestPaintWithBrushStroke(t *testing.T) {
	w := newTestWorld(t, terrain.MakeKey(0, 1), 10)

	// Vertex 40 is (col 4, row 4): local (96, 96), world Y offset 192.
	center := geom.Vec3{X: 96, Y: 192 + 96}
	cmd := NewHeightChange(w.ctx)
	cmd.CollectChanges(center, 1.0, 50)

	if !cmd.Execute() {
		t.Fatal("Execute reported no work")
	}
	if got := w.heightAt(t, 40); got != 50 {
		t.Errorf("height at stroke center = %d, want 50", got)
	}
	if got := w.heightAt(t, 0); got != 10 {
		t.Errorf("height outside brush = %d, want untouched 10", got)
	}
}

func TestNoopStrokeReportsFailure(t *testing.T) {
	w := newTestWorld(t, terrain.MakeKey(0, 1), 10)

	cmd := NewHeightChange(w.ctx)
	// Target equals the current value everywhere: nothing collected.
	cmd.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{
		w.key: {40: 10},
	})

	if cmd.Execute() {
		t.Error("Execute reported work for an all-noop stroke")
	}
	if len(w.ctx.DirtyLandblocks()) != 0 {
		t.Error("noop stroke marked landblocks dirty")
	}
}

func TestExecuteIsIdempotent(t *testing.T) {
	w := newTestWorld(t, terrain.MakeKey(0, 1), 10)

	cmd := NewHeightChange(w.ctx)
	cmd.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{w.key: {40: 50}})

	cmd.Execute()
	first := w.heightAt(t, 40)
	cmd.Execute() // repeated without undo: second call no-ops on the store
	if got := w.heightAt(t, 40); got != first {
		t.Errorf("second Execute changed state: %d -> %d", first, got)
	}

	cmd.Undo()
	cmd.Undo()
	if got := w.heightAt(t, 40); got != 10 {
		t.Errorf("double Undo left height %d, want 10", got)
	}
}

// doubleHit reports the same vertex twice, as overlapping brush samples do.
type doubleHit struct {
	key   terrain.LandblockKey
	index int
}

func (d doubleHit) Affected(center geom.Vec3, radius float32) []VertexHit {
	return []VertexHit{
		{Key: d.key, Index: d.index, Distance: 0},
		{Key: d.key, Index: d.index, Distance: 0.5},
	}
}

func TestStrokeDedupFirstOccurrenceWins(t *testing.T) {
	w := newTestWorld(t, terrain.MakeKey(0, 1), 10)
	w.ctx.Brush = doubleHit{key: w.key, index: 7}

	cmd := NewHeightChange(w.ctx)
	cmd.CollectChanges(geom.Vec3{}, 5, 50)

	if got := len(cmd.changes[w.key]); got != 1 {
		t.Fatalf("recorded %d changes for vertex 7, want 1", got)
	}
	ch := cmd.changes[w.key][0]
	if ch.index != 7 {
		t.Errorf("recorded index = %d, want 7", ch.index)
	}
	if terrain.EntryFromUint32(ch.original).Height != 10 {
		t.Errorf("recorded original height = %d, want 10", terrain.EntryFromUint32(ch.original).Height)
	}
}

func TestLayerPaintClaimsPaintedField(t *testing.T) {
	w := newTestWorld(t, terrain.MakeKey(0, 1), 10)

	layer := terrain.NewStore()
	w.ctx.SetActiveLayer(layer)
	w.ctx.System.SetVisibleLayers([]*terrain.Store{layer})

	cmd := NewHeightChange(w.ctx)
	cmd.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{w.key: {40: 50}})
	if !cmd.Execute() {
		t.Fatal("Execute reported no work")
	}

	if m := layer.Mask(w.key, 40); m != terrain.MaskHeight {
		t.Errorf("fresh layer vertex mask = %04b, want Height only", m)
	}

	// Painting a second field on the same vertex widens the claim.
	road := NewRoadChange(w.ctx)
	road.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{w.key: {40: 3}})
	if !road.Execute() {
		t.Fatal("road Execute reported no work")
	}
	if m := layer.Mask(w.key, 40); m != terrain.MaskHeight|terrain.MaskRoad {
		t.Errorf("widened mask = %04b, want Height|Road", m)
	}
}

func TestUndoRemovesFreshLayerVertices(t *testing.T) {
	w := newTestWorld(t, terrain.MakeKey(0, 1), 10)

	layer := terrain.NewStore()
	w.ctx.SetActiveLayer(layer)
	w.ctx.System.SetVisibleLayers([]*terrain.Store{layer})

	cmd := NewHeightChange(w.ctx)
	cmd.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{w.key: {40: 50}})
	if !cmd.Execute() {
		t.Fatal("Execute reported no work")
	}
	if _, ok := layer.Value(w.key, 40); !ok {
		t.Fatal("layer holds no entry after paint")
	}

	if !cmd.Undo() {
		t.Fatal("Undo reported no work")
	}

	// The layer never held vertex 40 before the stroke: undoing must
	// remove the entry and its field claim, not write a snapshot of the
	// merged view back into the layer.
	if _, ok := layer.Value(w.key, 40); ok {
		t.Error("undone layer still holds an entry for vertex 40")
	}
	if m, ok := layer.ExplicitMask(w.key, 40); ok {
		t.Errorf("undone layer still claims mask %04b for vertex 40", m)
	}
	if got := w.heightAt(t, 40); got != 10 {
		t.Errorf("height after undo = %d, want base 10", got)
	}

	// Redo restores both the value and the claim.
	if !cmd.Execute() {
		t.Fatal("redo Execute reported no work")
	}
	if got := w.heightAt(t, 40); got != 50 {
		t.Errorf("height after redo = %d, want 50", got)
	}
	if m := layer.Mask(w.key, 40); m != terrain.MaskHeight {
		t.Errorf("mask after redo = %04b, want Height only", m)
	}
}

func TestDirtyTracking(t *testing.T) {
	w := newTestWorld(t, terrain.MakeKey(0, 1), 10)

	cmd := NewHeightChange(w.ctx)
	cmd.CollectChangesAt(map[terrain.LandblockKey]map[int]uint8{w.key: {40: 50}})
	cmd.Execute()

	dirty := w.ctx.DirtyLandblocks()
	if len(dirty) != 1 || dirty[0] != w.key {
		t.Errorf("dirty = %v, want [%v]", dirty, w.key)
	}

	w.ctx.ClearDirty()
	if len(w.ctx.DirtyLandblocks()) != 0 {
		t.Error("ClearDirty left dirty landblocks")
	}
}
