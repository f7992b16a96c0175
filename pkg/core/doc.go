// Package core provides the node model, state stores and reconciler.
//
// Applications describe the UI each frame as a tree of [Node] values. A node
// is either a component (a function of state, props and children that returns
// another node) or an element (a concrete drawable such as a container or a
// text run). Nodes are immutable and disposable: a fresh tree is produced every
// frame.
//
// # Reconciliation
//
// [Reconcile] walks a fresh node tree alongside the previous
// [ComponentTree] and decides, node by node, whether the new node is the same
// logical node as one rendered before. Matching nodes keep their [ID], and
// with it their entries in the component and element [Store]. Everything
// else receives a freshly minted ID:
//
//	ids := core.NewIDAllocator()
//	owner := core.NewBuildOwner(ids)
//	owner.Rebuild(root)          // first frame: every node is new
//	owner.Rebuild(root)          // same tree: every ID is reused
//
// Children are matched by key first and by position second. A node whose
// type tag differs from the candidate always gets a new ID, which resets its
// state and the state of its whole subtree.
//
// # Components
//
// [Stateful] builds a [Component] over a typed state value:
//
//	counter := core.Stateful("demo.counter",
//	    func() int { return 0 },
//	    func(count *int, _ any, _ []*core.Node, _ core.ID) *core.Node {
//	        return core.Elem(widgets.Text{Content: strconv.Itoa(*count)})
//	    },
//	    func(count *int, ev core.Event) core.Update {
//	        if p, ok := ev.(core.PointerEvent); ok && p.Phase == core.PointerDown {
//	            *count++
//	            return core.Stop()
//	        }
//	        return core.Continue()
//	    },
//	)
//
// # Ownership
//
// Trees and stores are owned by a single goroutine (the application worker
// in package engine). Only the [IDAllocator] is safe for concurrent use.
package core
