package terrain

import "testing"

func TestCollectExportLayersOrder(t *testing.T) {
	tree := NewLayerTree()
	g, _ := tree.AddGroup(-1, "edits")
	tree.AddLayer(g, "roads", "layer:roads")
	tree.AddLayer(g, "heights", "layer:heights")
	tree.AddLayer(-1, "bottom", "layer:bottom")

	layers := tree.CollectExportLayers()
	want := []string{"roads", "heights", "bottom"}
	if len(layers) != len(want) {
		t.Fatalf("got %d layers, want %d", len(layers), len(want))
	}
	for i, name := range want {
		if layers[i].Name != name {
			t.Errorf("layers[%d] = %q, want %q", i, layers[i].Name, name)
		}
	}
}

func TestExportFlagInheritance(t *testing.T) {
	tree := NewLayerTree()
	g, _ := tree.AddGroup(-1, "disabled group")
	child, _ := tree.AddLayer(g, "child", "layer:child")

	// Child stays flagged for export; the group opt-out must still
	// exclude it.
	tree.SetExport(g, false)
	tree.SetExport(child, true)

	if layers := tree.CollectExportLayers(); len(layers) != 0 {
		t.Errorf("collected %d layers from a non-export group, want 0", len(layers))
	}
}

func TestExportSkipsUnflaggedLeaf(t *testing.T) {
	tree := NewLayerTree()
	a, _ := tree.AddLayer(-1, "a", "layer:a")
	tree.AddLayer(-1, "b", "layer:b")
	tree.SetExport(a, false)

	layers := tree.CollectExportLayers()
	if len(layers) != 1 || layers[0].Name != "b" {
		t.Errorf("got %v, want just layer b", layers)
	}
}

func TestAddLayerUnderLeafFails(t *testing.T) {
	tree := NewLayerTree()
	leaf, _ := tree.AddLayer(-1, "leaf", "layer:leaf")
	if _, err := tree.AddLayer(leaf, "nested", "layer:nested"); err != ErrNotAGroup {
		t.Errorf("err = %v, want ErrNotAGroup", err)
	}
}

func TestMoveRejectsCycle(t *testing.T) {
	tree := NewLayerTree()
	outer, _ := tree.AddGroup(-1, "outer")
	inner, _ := tree.AddGroup(outer, "inner")

	if err := tree.Move(outer, inner); err != ErrCycle {
		t.Errorf("moving an ancestor under its descendant: err = %v, want ErrCycle", err)
	}
	if err := tree.Move(outer, outer); err != ErrCycle {
		t.Errorf("moving a node under itself: err = %v, want ErrCycle", err)
	}
}

func TestMoveReorders(t *testing.T) {
	tree := NewLayerTree()
	g, _ := tree.AddGroup(-1, "group")
	l, _ := tree.AddLayer(-1, "floater", "layer:f")

	if err := tree.Move(l, g); err != nil {
		t.Fatalf("Move failed: %v", err)
	}

	layers := tree.CollectExportLayers()
	if len(layers) != 1 || layers[0].Name != "floater" {
		t.Errorf("after move, collected %v", layers)
	}
}
