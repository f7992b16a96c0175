package core

import (
	"time"

	"github.com/go-drift/fiber/pkg/errors"
)

// visit is one pending entry of the reconciliation work list.
type visit struct {
	node *Node
	// elementParent and componentParent are arena indices in the trees being
	// built, -1 at the root.
	elementParent   int
	componentParent int
	// candidate is the node of the previous tree this node may reuse.
	candidate *ComponentNode
}

type reconciler struct {
	prev        *ComponentTree
	ids         *IDAllocator
	components  *Store
	elements    *Store
	tree        *ComponentTree
	elementTree *ElementTree
}

// Reconcile builds a new component tree and element tree from root, reusing
// identities from prev where a new node is judged to be the same logical
// node. State entries are created for new identities; collecting entries
// for identities that disappeared is left to the caller (see
// [BuildOwner.Rebuild]).
//
// The walk uses an explicit work list rather than recursion. Children are
// matched to previous children by key when both sides carry the same
// non-empty key, then by position. A type tag mismatch always mints a new
// identity, and the previous subtree under that position is discarded.
func Reconcile(root *Node, prev *ComponentTree, ids *IDAllocator, components, elements *Store) (*ComponentTree, *ElementTree) {
	r := &reconciler{
		prev:        prev,
		ids:         ids,
		components:  components,
		elements:    elements,
		tree:        newComponentTree(),
		elementTree: newElementTree(),
	}
	if root == nil {
		return r.tree, r.elementTree
	}

	stack := []visit{{node: root, elementParent: -1, componentParent: -1, candidate: prev.Root()}}
	for len(stack) > 0 {
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		switch v.node.Kind {
		case KindElement:
			stack = r.visitElement(v, stack)
		case KindComponent:
			stack = r.visitComponent(v, stack)
		default:
			errors.Violation("core.Reconcile", "", "node kind %d is neither element nor component", v.node.Kind)
		}
	}
	return r.tree, r.elementTree
}

func (r *reconciler) visitElement(v visit, stack []visit) []visit {
	if v.node.Element == nil {
		errors.Violation("core.Reconcile", "", "element node without an element")
	}
	el := v.node.Element.Clone()
	tag := el.TypeName()

	reused := r.reusable(v.candidate, tag)
	id := r.identity(reused)

	elementIdx := r.elementTree.add(id, el, v.elementParent)
	componentIdx := r.tree.add(id, tag, v.node.Key, nil, v.componentParent, true)
	r.elements.GetOrCreate(id, el.DefaultState)

	children := v.node.Children
	for i := len(children) - 1; i >= 0; i-- {
		stack = append(stack, visit{
			node:            children[i],
			elementParent:   elementIdx,
			componentParent: componentIdx,
			candidate:       r.match(reused, children[i].Key, i),
		})
	}
	return stack
}

func (r *reconciler) visitComponent(v visit, stack []visit) []visit {
	c := v.node.Component
	if c == nil || c.View == nil {
		tag := ""
		if c != nil {
			tag = c.Tag
		}
		errors.Violation("core.Reconcile", tag, "component has no view function")
	}
	tag := c.TagName()
	key := v.node.Key

	// A keyed component keeps its identity when it moves within the same
	// parent, found through the previous parent's key map.
	var reused *ComponentNode
	if key != "" && v.componentParent >= 0 {
		parentID := r.tree.At(v.componentParent).ID
		if prevParent, ok := r.prev.Lookup(parentID); ok {
			if keyed, ok := prevParent.ChildrenByKey[key]; ok {
				if n, ok := r.prev.Lookup(keyed); ok {
					reused = r.reusable(n, tag)
				}
			}
		}
	}
	if reused == nil {
		reused = r.reusable(v.candidate, tag)
	}
	id := r.identity(reused)

	componentIdx := r.tree.add(id, tag, key, c.Update, v.componentParent, false)
	state := r.components.GetOrCreate(id, c.DefaultState)

	child := r.view(c, tag, id, state, v.node)
	if child == nil {
		return stack
	}
	var candidate *ComponentNode
	if reused != nil && len(reused.Children) > 0 {
		candidate = r.prev.At(reused.Children[0])
	}
	return append(stack, visit{
		node:            child,
		elementParent:   v.elementParent,
		componentParent: componentIdx,
		candidate:       candidate,
	})
}

// reusable returns candidate if a node with the given tag may take over its
// identity in this pass.
func (r *reconciler) reusable(candidate *ComponentNode, tag string) *ComponentNode {
	if candidate == nil || candidate.Tag != tag {
		return nil
	}
	if r.tree.Contains(candidate.ID) {
		return nil
	}
	return candidate
}

func (r *reconciler) identity(reused *ComponentNode) ID {
	if reused != nil {
		return reused.ID
	}
	return r.ids.Next()
}

// match picks the previous child a new child at index i with the given key
// is compared against. A keyed previous child is only reachable through its
// key, so a positional match never steals the identity of a node that moved.
func (r *reconciler) match(prevParent *ComponentNode, key string, i int) *ComponentNode {
	if prevParent == nil {
		return nil
	}
	if key != "" {
		if id, ok := prevParent.ChildrenByKey[key]; ok {
			if n, ok := r.prev.Lookup(id); ok {
				return n
			}
		}
	}
	if i >= len(prevParent.Children) {
		return nil
	}
	n := r.prev.At(prevParent.Children[i])
	if n.Key != "" && n.Key != key {
		return nil
	}
	return n
}

// view runs the component's view function. Panics other than contract
// violations are reported and render nothing for this pass.
func (r *reconciler) view(c *Component, tag string, id ID, state any, n *Node) (child *Node) {
	defer func() {
		if rec := recover(); rec != nil {
			if errors.IsContract(rec) {
				panic(rec)
			}
			errors.ReportViewError(&errors.ViewError{
				Tag:        tag,
				ID:         uint64(id),
				Recovered:  rec,
				StackTrace: errors.CaptureStack(),
				Timestamp:  time.Now(),
			})
			child = nil
		}
	}()
	return c.View(state, n.Props, n.Children, id)
}
