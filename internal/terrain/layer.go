package terrain

import "errors"

// Layer tree errors.
var (
	ErrNotAGroup    = errors.New("layer tree: parent is not a group")
	ErrBadNodeIndex = errors.New("layer tree: node index out of range")
	ErrCycle        = errors.New("layer tree: move would create a cycle")
)

// noParent marks a root node.
const noParent = -1

// LayerNode is one node of the layer tree: either a group (ordered
// children, no document) or a leaf layer backed by a layer document.
type LayerNode struct {
	Name       string
	IsExport   bool
	DocumentID string // leaf layers only

	group    bool
	parent   int
	children []int
}

// IsGroup reports whether the node is a group.
func (n *LayerNode) IsGroup() bool { return n.group }

// LayerTree is an ordered tree of layer groups and layers, stored as an
// arena of nodes with explicit indices. Sibling order is significant:
// within any sibling list, earlier nodes composite above later ones.
type LayerTree struct {
	nodes []LayerNode
	roots []int
}

// NewLayerTree returns an empty tree.
func NewLayerTree() *LayerTree {
	return &LayerTree{}
}

// Len returns the number of nodes in the arena.
func (t *LayerTree) Len() int { return len(t.nodes) }

// Node returns the node at an arena index.
func (t *LayerTree) Node(i int) (*LayerNode, error) {
	if i < 0 || i >= len(t.nodes) {
		return nil, ErrBadNodeIndex
	}
	return &t.nodes[i], nil
}

// AddGroup appends a group under parent (noParent semantics: parent < 0
// adds a root). Returns the new node's arena index.
func (t *LayerTree) AddGroup(parent int, name string) (int, error) {
	return t.add(parent, LayerNode{Name: name, IsExport: true, group: true})
}

// AddLayer appends a leaf layer under parent, backed by the given
// layer document.
func (t *LayerTree) AddLayer(parent int, name, documentID string) (int, error) {
	return t.add(parent, LayerNode{Name: name, IsExport: true, DocumentID: documentID})
}

func (t *LayerTree) add(parent int, node LayerNode) (int, error) {
	if parent >= 0 {
		if parent >= len(t.nodes) {
			return 0, ErrBadNodeIndex
		}
		if !t.nodes[parent].group {
			return 0, ErrNotAGroup
		}
	}

	node.parent = noParent
	idx := len(t.nodes)
	t.nodes = append(t.nodes, node)

	if parent < 0 {
		t.roots = append(t.roots, idx)
	} else {
		t.nodes[idx].parent = parent
		t.nodes[parent].children = append(t.nodes[parent].children, idx)
	}
	return idx, nil
}

// Move reparents a node. Rejects moves that would make a node its own
// ancestor, which is what keeps traversal cycle-free.
func (t *LayerTree) Move(node, newParent int) error {
	if node < 0 || node >= len(t.nodes) {
		return ErrBadNodeIndex
	}
	if newParent >= 0 {
		if newParent >= len(t.nodes) {
			return ErrBadNodeIndex
		}
		if !t.nodes[newParent].group {
			return ErrNotAGroup
		}
		// Walk ancestors of the target; node must not be among them.
		for a := newParent; a != noParent; a = t.nodes[a].parent {
			if a == node {
				return ErrCycle
			}
		}
	}

	t.detach(node)
	if newParent < 0 {
		t.nodes[node].parent = noParent
		t.roots = append(t.roots, node)
	} else {
		t.nodes[node].parent = newParent
		t.nodes[newParent].children = append(t.nodes[newParent].children, node)
	}
	return nil
}

func (t *LayerTree) detach(node int) {
	p := t.nodes[node].parent
	if p == noParent {
		t.roots = removeIndex(t.roots, node)
		return
	}
	t.nodes[p].children = removeIndex(t.nodes[p].children, node)
}

func removeIndex(list []int, v int) []int {
	for i, x := range list {
		if x == v {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}

// SetExport toggles a node's participation in export compositing. Opting a
// group out excludes its whole subtree regardless of descendant flags.
func (t *LayerTree) SetExport(node int, export bool) error {
	if node < 0 || node >= len(t.nodes) {
		return ErrBadNodeIndex
	}
	t.nodes[node].IsExport = export
	return nil
}

// CollectExportLayers returns the export-flagged leaf layers in
// compositing priority order: depth-first pre-order, skipping any subtree
// whose root has IsExport false. Earlier layers in the result win any
// field they claim. Traversal is iterative with an explicit stack.
func (t *LayerTree) CollectExportLayers() []*LayerNode {
	var out []*LayerNode

	stack := make([]int, 0, len(t.roots))
	for i := len(t.roots) - 1; i >= 0; i-- {
		stack = append(stack, t.roots[i])
	}

	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		n := &t.nodes[idx]
		if !n.IsExport {
			continue
		}
		if !n.group {
			out = append(out, n)
			continue
		}
		for i := len(n.children) - 1; i >= 0; i-- {
			stack = append(stack, n.children[i])
		}
	}
	return out
}
