package core

import (
	"time"
)

// RebuildStats describes one reconciliation pass.
type RebuildStats struct {
	Nodes     int
	Elements  int
	Minted    int
	Collected int
	Duration  time.Duration
}

// BuildOwner owns the reconciled trees and both state stores, and runs
// reconciliation followed by state collection. It is not safe for concurrent
// use; the engine worker is its only caller.
type BuildOwner struct {
	ids         *IDAllocator
	components  *Store
	elements    *Store
	tree        *ComponentTree
	elementTree *ElementTree
	dirty       bool

	// OnNeedsFrame is called when the owner transitions to dirty, so an
	// on-demand platform can schedule a frame.
	OnNeedsFrame func()
}

// NewBuildOwner creates a BuildOwner minting identities from ids.
func NewBuildOwner(ids *IDAllocator) *BuildOwner {
	return &BuildOwner{
		ids:        ids,
		components: NewStore(),
		elements:   NewStore(),
		dirty:      true,
	}
}

// MarkNeedsBuild flags that state changed and the next frame must reconcile.
func (b *BuildOwner) MarkNeedsBuild() {
	if b.dirty {
		return
	}
	b.dirty = true
	if b.OnNeedsFrame != nil {
		b.OnNeedsFrame()
	}
}

// NeedsBuild reports whether a rebuild is pending.
func (b *BuildOwner) NeedsBuild() bool {
	return b.dirty
}

// Rebuild reconciles root against the current tree, then drops state for
// every identity that did not survive. Collection happens exactly once per
// pass, before the next pass can begin.
func (b *BuildOwner) Rebuild(root *Node) RebuildStats {
	start := time.Now()
	before := b.ids.Last()

	old := b.tree.IDs()
	tree, elementTree := Reconcile(root, b.tree, b.ids, b.components, b.elements)
	next := tree.IDs()
	collected := b.components.RemoveUnused(old, next)
	collected += b.elements.RemoveUnused(old, next)

	b.tree = tree
	b.elementTree = elementTree
	b.dirty = false

	return RebuildStats{
		Nodes:     tree.Len(),
		Elements:  elementTree.Len(),
		Minted:    int(b.ids.Last() - before),
		Collected: collected,
		Duration:  time.Since(start),
	}
}

// Tree returns the current component tree (nil before the first rebuild).
func (b *BuildOwner) Tree() *ComponentTree {
	return b.tree
}

// ElementTree returns the current element tree (nil before the first rebuild).
func (b *BuildOwner) ElementTree() *ElementTree {
	return b.elementTree
}

// ComponentStates returns the component state store.
func (b *BuildOwner) ComponentStates() *Store {
	return b.components
}

// ElementStates returns the element interaction state store.
func (b *BuildOwner) ElementStates() *Store {
	return b.elements
}

// IDs returns the identity allocator.
func (b *BuildOwner) IDs() *IDAllocator {
	return b.ids
}
