package testing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/engine"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/layout"
	"github.com/go-drift/fiber/pkg/rendering"
)

const (
	// DefaultTestWidth is the default width of the test surface, in cells.
	DefaultTestWidth = 80
	// DefaultTestHeight is the default height of the test surface, in cells.
	DefaultTestHeight = 24
)

// ErrSettleTimeout is returned when Settle exceeds its timeout.
var ErrSettleTimeout = errors.New("Settle timed out: queued work did not finish")

// wakeRecorder stands in for a platform loop. Wake-ups are serviced by the
// tester itself, so it only remembers that one arrived.
type wakeRecorder struct {
	redraws int
	ticks   int
}

func (w *wakeRecorder) RequestRedraw() { w.redraws++ }
func (w *wakeRecorder) RequestTick()   { w.ticks++ }

// Tester runs a worker without a platform loop. Layout uses terminal cells
// (one unit per column, one per line) so positions are easy to reason about.
type Tester struct {
	worker   *engine.Worker
	recorder *rendering.PictureRecorder
	waker    *wakeRecorder
	ids      *core.IDAllocator
	size     graphics.Size
	mounted  bool
	running  int
}

// NewTester creates a tester with a default surface.
func NewTester() *Tester {
	t := &Tester{
		recorder: &rendering.PictureRecorder{},
		waker:    &wakeRecorder{},
		ids:      core.NewIDAllocator(),
		size:     graphics.Size{Width: DefaultTestWidth, Height: DefaultTestHeight},
	}
	t.worker = engine.NewWorker(engine.NewCoordinator(1), engine.WorkerConfig{
		Solver:   layout.NewFlow(layout.CellMeasurer{}),
		Renderer: t.recorder,
		Waker:    t.waker,
		IDs:      t.ids,
	})
	return t
}

// NewTesterWithT creates a tester whose started jobs are awaited when the
// test ends.
func NewTesterWithT(t *testing.T) *Tester {
	tester := NewTester()
	t.Cleanup(tester.worker.Wait)
	return tester
}

// SetSize sets the surface size. Takes effect on the next Pump.
func (t *Tester) SetSize(size graphics.Size) {
	t.size = size
	if t.mounted {
		t.worker.Process(core.ResizeEvent{Size: size})
	}
}

// Pump reconciles root against the current trees and runs one frame. The
// first call creates the surface.
func (t *Tester) Pump(root *core.Node) {
	t.worker.SetRoot(root)
	if !t.mounted {
		t.mounted = true
		t.worker.Process(engine.SurfaceCreated{Size: t.size})
		return
	}
	t.worker.Process(engine.Redraw{})
}

// Redraw runs one frame without changing the root.
func (t *Tester) Redraw() {
	t.worker.Process(engine.Redraw{})
}

// Send delivers a pointer or key event as a platform would.
func (t *Tester) Send(ev core.Event) {
	t.worker.Process(ev)
}

// Settle runs queued jobs and applies their results until no work is queued
// or running. Returns ErrSettleTimeout if work is still outstanding after
// timeout.
func (t *Tester) Settle(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	for {
		if queued := t.worker.Queued(); queued > 0 {
			t.running += queued
			t.worker.Process(engine.ProcessQueue{})
		}
		if t.running == 0 {
			return nil
		}
		if err := t.worker.AwaitCompletion(ctx); err != nil {
			return ErrSettleTimeout
		}
		t.running--
		if t.worker.Owner().NeedsBuild() {
			t.worker.Process(engine.Redraw{})
		}
	}
}

// Worker returns the underlying worker.
func (t *Tester) Worker() *engine.Worker {
	return t.worker
}

// Tree returns the current component tree.
func (t *Tester) Tree() *core.ComponentTree {
	return t.worker.Owner().Tree()
}

// Elements returns the current element tree.
func (t *Tester) Elements() *core.ElementTree {
	return t.worker.Owner().ElementTree()
}

// IDs returns the identities of the current component tree in tree order.
func (t *Tester) IDs() []core.ID {
	tree := t.Tree()
	out := make([]core.ID, tree.Len())
	for i := range out {
		out[i] = tree.At(i).ID
	}
	return out
}

// ComponentStates returns the component state store.
func (t *Tester) ComponentStates() *core.Store {
	return t.worker.Owner().ComponentStates()
}

// ElementStates returns the element state store.
func (t *Tester) ElementStates() *core.Store {
	return t.worker.Owner().ElementStates()
}

// Box returns the layout box of the element with the given identity.
func (t *Tester) Box(id core.ID) (graphics.Rect, bool) {
	n, ok := t.Elements().Lookup(id)
	if !ok {
		return graphics.Rect{}, false
	}
	return n.Box, true
}

// Focus returns the identity key events are routed to.
func (t *Tester) Focus() core.ID {
	return t.worker.Focus()
}

// LastFrame returns the most recent frame's paint commands.
func (t *Tester) LastFrame() *rendering.DisplayList {
	return t.recorder.Last()
}

// Frames returns the number of frames painted so far.
func (t *Tester) Frames() int {
	return t.recorder.Frames()
}

// Find evaluates a finder against the current trees.
func (t *Tester) Find(finder Finder) FinderResult {
	if t.Tree().Len() == 0 {
		return FinderResult{finder: finder}
	}
	return FinderResult{
		ids:    finder.Evaluate(t.Tree(), t.Elements()),
		finder: finder,
	}
}

// StateOf returns the component state of the first match of finder, typed
// as *S. It fails the test if nothing matches or the state has another type.
func StateOf[S any](t testing.TB, tester *Tester, finder Finder) *S {
	t.Helper()
	result := tester.Find(finder)
	if !result.Exists() {
		t.Fatalf("StateOf: finder matched nothing: %s", finder.Description())
	}
	id := result.First()
	state, _ := tester.ComponentStates().Get(id)
	if state == nil {
		state, _ = tester.ElementStates().Get(id)
	}
	s, ok := state.(*S)
	if !ok {
		var want *S
		t.Fatalf("StateOf: state of %d is %T, want %T", id, state, want)
	}
	return s
}
