package stamp

import (
	"testing"

	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/document"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/editing"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/internal/terrain"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/dat"
	"github.com/trevis/WorldBuilder-ACME-Edition-sub004/pkg/geom"
)

func seedLandblock(t *testing.T, archive *dat.Archive, key terrain.LandblockKey, height uint8) {
	t.Helper()
	dense := make([]terrain.Entry, terrain.LandblockVertices)
	for i := range dense {
		dense[i] = terrain.NewEntry(0, 0, 0, height)
	}
	if !archive.TrySave(terrain.NewLandblockRecord(key, dense), 0) {
		t.Fatal("seeding archive failed")
	}
}

func newEditingContext(t *testing.T, archive *dat.Archive) *editing.Context {
	t.Helper()
	docs, err := document.NewManager("")
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	return editing.NewContext(terrain.NewSystem(archive, terrain.NewStore(), nil), docs)
}

func TestCapturePasteRoundTrip(t *testing.T) {
	archive := dat.NewMemory()
	src := terrain.MakeKey(1, 1)
	dst := terrain.MakeKey(2, 2)
	seedLandblock(t, archive, src, 30)
	seedLandblock(t, archive, dst, 10)

	ctx := newEditingContext(t, archive)

	// Put an object on the source landblock before capture.
	srcDoc, _ := ctx.Docs.LandblockObjects(src)
	srcOrigin := src.Origin()
	srcDoc.Add(document.StaticObject{
		ID:     0x02000042,
		Origin: geom.Vec3{X: srcOrigin.X + 96, Y: srcOrigin.Y + 48, Z: 60},
		Scale:  geom.Vec3{X: 1, Y: 1, Z: 1},
	})

	s, err := Capture(ctx, src, "copy", "")
	if err != nil {
		t.Fatalf("Capture failed: %v", err)
	}
	if !s.IsValid() {
		t.Fatal("captured stamp is invalid")
	}
	if s.Heights[0] != 30 {
		t.Errorf("captured height = %d, want 30", s.Heights[0])
	}
	if s.Objects[0].Origin.X != 96 {
		t.Errorf("object origin not made relative: %v", s.Objects[0].Origin)
	}

	cmd, err := s.Paste(ctx, dst)
	if err != nil {
		t.Fatalf("Paste failed: %v", err)
	}
	if !cmd.Execute() {
		t.Fatal("paste command did no work")
	}

	dense := ctx.System.LandblockTerrain(dst)
	if dense[40].Height != 30 {
		t.Errorf("pasted height = %d, want 30", dense[40].Height)
	}

	dstDoc, _ := ctx.Docs.LandblockObjects(dst)
	if len(dstDoc.Objects) != 1 {
		t.Fatalf("pasted objects = %d, want 1", len(dstDoc.Objects))
	}
	dstOrigin := dst.Origin()
	if dstDoc.Objects[0].Origin.X != dstOrigin.X+96 {
		t.Errorf("pasted object X = %v, want %v", dstDoc.Objects[0].Origin.X, dstOrigin.X+96)
	}

	// The whole paste is one undo step.
	if !cmd.Undo() {
		t.Fatal("paste undo did no work")
	}
	dense = ctx.System.LandblockTerrain(dst)
	if dense[40].Height != 10 {
		t.Errorf("height after undo = %d, want 10", dense[40].Height)
	}
	if len(dstDoc.Objects) != 0 {
		t.Errorf("objects after undo = %d, want 0", len(dstDoc.Objects))
	}
}

func TestCaptureMissingLandblock(t *testing.T) {
	ctx := newEditingContext(t, dat.NewMemory())
	if _, err := Capture(ctx, terrain.MakeKey(9, 9), "x", ""); err == nil {
		t.Error("expected error for a landblock absent from geometry")
	}
}

func TestPasteRejectsOversizedStamp(t *testing.T) {
	ctx := newEditingContext(t, dat.NewMemory())
	s := testStamp()
	s.Width = 12
	s.Height = 12
	s.Heights = make([]byte, 144)
	s.TerrainTypes = make([]uint16, 144)

	if _, err := s.Paste(ctx, terrain.MakeKey(0, 0)); err == nil {
		t.Error("expected error for oversized stamp")
	}
}
