package engine

import (
	"github.com/go-drift/fiber/pkg/core"
)

// Job is queued asynchronous work, tagged with the identity of the component
// whose handler returned it.
type Job struct {
	Owner core.ID
	Task  core.Task
}

// UpdateQueue collects work returned by update handlers until the next
// ProcessQueue tick. It is owned by the worker.
type UpdateQueue struct {
	jobs []Job
}

// Push appends a job.
func (q *UpdateQueue) Push(owner core.ID, task core.Task) {
	q.jobs = append(q.jobs, Job{Owner: owner, Task: task})
}

// Len returns the number of pending jobs.
func (q *UpdateQueue) Len() int {
	return len(q.jobs)
}

// Drain removes and returns all pending jobs in queue order.
func (q *UpdateQueue) Drain() []Job {
	jobs := q.jobs
	q.jobs = nil
	return jobs
}

// Bubble delivers ev to target and then to each ancestor, following parent
// links, until a handler stops propagation. Nodes without an update handler
// are skipped. Work returned by a handler is pushed onto queue rather than
// run. It reports whether the event propagated past the root, and how many
// handlers ran. An unknown target is a miss and runs nothing.
func Bubble(components *core.ComponentTree, target core.ID, ev core.Event, states *core.Store, queue *UpdateQueue) (propagated bool, handled int) {
	node, ok := components.Lookup(target)
	if !ok {
		return true, 0
	}
	for {
		if node.Update != nil {
			state, _ := states.Get(node.ID)
			upd := node.Update(state, ev)
			handled++
			if upd.Work != nil {
				queue.Push(node.ID, upd.Work)
			}
			if !upd.Propagate {
				return false, handled
			}
		}
		if node.Parent == 0 {
			return true, handled
		}
		node, ok = components.Lookup(node.Parent)
		if !ok {
			return true, handled
		}
	}
}

// offerToElements lets the element at target and then its element ancestors
// handle ev. It returns the event that should continue to component
// handlers, nil when an element consumed it, and whether any element
// reacted (consumed or replaced the event).
func offerToElements(elements *core.ElementTree, target core.ID, ev core.Event, states *core.Store) (core.Event, bool) {
	el, ok := elements.Lookup(target)
	if !ok {
		return ev, false
	}
	for {
		if in, ok := el.Element.(core.Interactive); ok {
			state, _ := states.Get(el.ID)
			out := in.HandleEvent(state, ev)
			if out == nil {
				return nil, true
			}
			if out != ev {
				return out, true
			}
		}
		if el.Parent < 0 {
			return ev, false
		}
		el = elements.At(el.Parent)
	}
}
