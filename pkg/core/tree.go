package core

import (
	"github.com/go-drift/fiber/pkg/errors"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// ComponentNode is a node of the reconciled logical tree. Element-backed
// nodes carry the element type name as Tag and no Update handler.
type ComponentNode struct {
	ID     ID
	Tag    string
	Key    string
	Update UpdateFunc
	// Parent is the parent's identity, 0 for the root.
	Parent ID
	// Children are indices into the owning tree.
	Children []int
	// ChildrenByKey maps keyed children to their identities.
	ChildrenByKey map[string]ID
	// Element is true when the node was produced by an element payload.
	Element bool
}

// ComponentTree is an arena of component nodes addressed by index. Each
// reconciliation pass produces a new tree; identities persist across trees.
type ComponentTree struct {
	Nodes []ComponentNode
	index map[ID]int
}

func newComponentTree() *ComponentTree {
	return &ComponentTree{index: make(map[ID]int)}
}

// Len returns the number of nodes.
func (t *ComponentTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Root returns the root node, or nil for an empty tree.
func (t *ComponentTree) Root() *ComponentNode {
	if t.Len() == 0 {
		return nil
	}
	return &t.Nodes[0]
}

// At returns the node at index i.
func (t *ComponentTree) At(i int) *ComponentNode {
	return &t.Nodes[i]
}

// Lookup returns the node with the given identity.
func (t *ComponentTree) Lookup(id ID) (*ComponentNode, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.Nodes[i], true
}

// Contains reports whether id is present in the tree.
func (t *ComponentTree) Contains(id ID) bool {
	_, ok := t.Lookup(id)
	return ok
}

// IDs returns the set of identities in the tree.
func (t *ComponentTree) IDs() IDSet {
	set := make(IDSet, t.Len())
	if t == nil {
		return set
	}
	for i := range t.Nodes {
		set[t.Nodes[i].ID] = struct{}{}
	}
	return set
}

// add appends a node under parent (-1 for the root) and registers its key.
func (t *ComponentTree) add(id ID, tag, key string, update UpdateFunc, parent int, element bool) int {
	if _, dup := t.index[id]; dup {
		errors.Violation("core.Reconcile", tag, "identity %d assigned twice in one pass", id)
	}
	node := ComponentNode{ID: id, Tag: tag, Key: key, Update: update, Element: element}
	idx := len(t.Nodes)
	if parent >= 0 {
		p := &t.Nodes[parent]
		node.Parent = p.ID
		if key != "" {
			if p.ChildrenByKey == nil {
				p.ChildrenByKey = make(map[string]ID)
			}
			if _, dup := p.ChildrenByKey[key]; dup {
				errors.Violation("core.Reconcile", p.Tag, "duplicate key %q among siblings", key)
			}
			p.ChildrenByKey[key] = id
		}
		p.Children = append(p.Children, idx)
	}
	t.Nodes = append(t.Nodes, node)
	t.index[id] = idx
	return idx
}

// ElementNode is a node of the geometric tree. Box is the absolute layout
// box, filled in by the layout solver.
type ElementNode struct {
	ID       ID
	Element  Element
	Parent   int
	Children []int
	Box      graphics.Rect
}

// ElementTree is an arena of element nodes. It is rebuilt from scratch on
// every pass; only identities and element state carry over.
type ElementTree struct {
	Nodes []ElementNode
	index map[ID]int
}

func newElementTree() *ElementTree {
	return &ElementTree{index: make(map[ID]int)}
}

// Len returns the number of nodes.
func (t *ElementTree) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Nodes)
}

// Root returns the root element, or nil for an empty tree.
func (t *ElementTree) Root() *ElementNode {
	if t.Len() == 0 {
		return nil
	}
	return &t.Nodes[0]
}

// At returns the node at index i.
func (t *ElementTree) At(i int) *ElementNode {
	return &t.Nodes[i]
}

// Lookup returns the element with the given identity.
func (t *ElementTree) Lookup(id ID) (*ElementNode, bool) {
	if t == nil {
		return nil, false
	}
	i, ok := t.index[id]
	if !ok {
		return nil, false
	}
	return &t.Nodes[i], true
}

// IDs returns the set of identities in the tree.
func (t *ElementTree) IDs() IDSet {
	set := make(IDSet, t.Len())
	if t == nil {
		return set
	}
	for i := range t.Nodes {
		set[t.Nodes[i].ID] = struct{}{}
	}
	return set
}

func (t *ElementTree) add(id ID, el Element, parent int) int {
	idx := len(t.Nodes)
	t.Nodes = append(t.Nodes, ElementNode{ID: id, Element: el, Parent: parent})
	if parent >= 0 {
		t.Nodes[parent].Children = append(t.Nodes[parent].Children, idx)
	}
	t.index[id] = idx
	return idx
}

// Paint draws every element in tree order: a node before its children.
// Containers that clip or scroll push a clip layer around their children.
func (t *ElementTree) Paint(r rendering.Renderer, states *Store) {
	if t.Len() == 0 {
		return
	}
	type frame struct {
		idx  int
		exit bool
	}
	stack := []frame{{idx: 0}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		node := &t.Nodes[f.idx]
		clips := node.Element.Style().Overflow != OverflowVisible
		if f.exit {
			if clips {
				r.PopClip()
			}
			continue
		}
		var state any
		if states != nil {
			state, _ = states.Get(node.ID)
		}
		node.Element.Draw(r, node.Box, state)
		if clips {
			r.PushClip(node.Box)
			stack = append(stack, frame{idx: f.idx, exit: true})
		}
		for i := len(node.Children) - 1; i >= 0; i-- {
			stack = append(stack, frame{idx: node.Children[i]})
		}
	}
}
