package engine

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/fiber/pkg/core"
	fibererrors "github.com/go-drift/fiber/pkg/errors"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/layout"
	"github.com/go-drift/fiber/pkg/rendering"
	"github.com/go-drift/fiber/pkg/widgets"
)

type fakeWaker struct {
	redraws atomic.Int32
	ticks   atomic.Int32
}

func (w *fakeWaker) RequestRedraw() { w.redraws.Add(1) }
func (w *fakeWaker) RequestTick()   { w.ticks.Add(1) }

type workerHarness struct {
	worker *Worker
	waker  *fakeWaker
	reg    *prometheus.Registry
	rec    *rendering.PictureRecorder
}

func newWorkerHarness(t *testing.T, root *core.Node) *workerHarness {
	t.Helper()
	h := &workerHarness{
		waker: &fakeWaker{},
		reg:   prometheus.NewRegistry(),
		rec:   &rendering.PictureRecorder{},
	}
	h.worker = NewWorker(NewCoordinator(8), WorkerConfig{
		Root:     root,
		Solver:   layout.NewFlow(layout.CellMeasurer{}),
		Renderer: h.rec,
		Waker:    h.waker,
		Metrics:  NewMetrics(h.reg),
	})
	h.worker.Process(SurfaceCreated{Size: graphics.Size{Width: 20, Height: 10}})
	return h
}

func (h *workerHarness) counter(t *testing.T, name string) float64 {
	t.Helper()
	families, err := h.reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func tap(x, y float64) core.PointerEvent {
	return core.PointerEvent{Phase: core.PointerDown, Position: graphics.Offset{X: x, Y: y}}
}

type loader struct {
	Value  int
	Err    error
	Clicks int
}

func TestWorker_AsyncWorkDeliveredAsMessage(t *testing.T) {
	release := make(chan struct{})
	comp := core.Stateful("loader",
		func() loader { return loader{} },
		func(s *loader, _ any, _ []*core.Node, _ core.ID) *core.Node {
			return core.Elem(widgets.Text{Content: "load"})
		},
		func(s *loader, ev core.Event) core.Update {
			switch ev := ev.(type) {
			case core.PointerEvent:
				s.Clicks++
				return core.StopWith(func(ctx context.Context) (any, error) {
					<-release
					return 42, nil
				})
			case core.Message:
				s.Value, _ = ev.Value.(int)
				s.Err = ev.Err
			}
			return core.Stop()
		},
	)
	h := newWorkerHarness(t, core.Comp(comp, nil))

	h.worker.Process(tap(1, 0))
	if h.waker.ticks.Load() != 1 {
		t.Fatalf("expected a tick request after queuing work, got %d", h.waker.ticks.Load())
	}
	h.worker.Process(ProcessQueue{})
	close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.worker.AwaitCompletion(ctx); err != nil {
		t.Fatalf("AwaitCompletion: %v", err)
	}

	owner := h.worker.Owner()
	st, _ := owner.ComponentStates().Get(owner.Tree().Root().ID)
	got := st.(*loader)
	if got.Value != 42 || got.Err != nil || got.Clicks != 1 {
		t.Errorf("state = %+v, want Value 42 after one click", got)
	}
	if h.waker.redraws.Load() != 1 {
		t.Errorf("completion should request one redraw, got %d", h.waker.redraws.Load())
	}
	if v := h.counter(t, "fiber_jobs_completed_total"); v != 1 {
		t.Errorf("jobs completed = %v, want 1", v)
	}
}

func TestWorker_AsyncErrorDeliveredToHandler(t *testing.T) {
	boom := errors.New("boom")
	comp := core.Stateful("failing",
		func() loader { return loader{} },
		func(*loader, any, []*core.Node, core.ID) *core.Node { return core.Elem(widgets.Text{Content: "x"}) },
		func(s *loader, ev core.Event) core.Update {
			if msg, ok := ev.(core.Message); ok {
				s.Err = msg.Err
				return core.Stop()
			}
			return core.StopWith(func(context.Context) (any, error) { return nil, boom })
		},
	)
	h := newWorkerHarness(t, core.Comp(comp, nil))
	h.worker.Process(tap(0, 0))
	h.worker.Process(ProcessQueue{})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.worker.AwaitCompletion(ctx); err != nil {
		t.Fatal(err)
	}
	owner := h.worker.Owner()
	st, _ := owner.ComponentStates().Get(owner.Tree().Root().ID)
	if !errors.Is(st.(*loader).Err, boom) {
		t.Errorf("Err = %v, want boom", st.(*loader).Err)
	}
}

type shell struct{ Show bool }

func TestWorker_CompletionForUnmountedComponentIsDropped(t *testing.T) {
	release := make(chan struct{})
	var childUpdates atomic.Int32
	child := core.Stateful("child",
		func() loader { return loader{} },
		func(*loader, any, []*core.Node, core.ID) *core.Node { return core.Elem(widgets.Text{Content: "child"}) },
		func(s *loader, ev core.Event) core.Update {
			childUpdates.Add(1)
			return core.StopWith(func(context.Context) (any, error) {
				<-release
				return 1, nil
			})
		},
	)
	app := core.Stateful("app",
		func() shell { return shell{Show: true} },
		func(s *shell, _ any, _ []*core.Node, _ core.ID) *core.Node {
			if s.Show {
				return core.Elem(widgets.Container{}, core.Comp(child, nil))
			}
			return core.Elem(widgets.Container{}, core.Elem(widgets.Text{Content: "gone"}))
		},
		nil,
	)
	h := newWorkerHarness(t, core.Comp(app, nil))
	owner := h.worker.Owner()
	childID := owner.Tree().At(2).ID

	h.worker.Process(tap(1, 0))
	h.worker.Process(ProcessQueue{})

	// Unmount the child while its work is in flight.
	st, _ := owner.ComponentStates().Get(owner.Tree().Root().ID)
	st.(*shell).Show = false
	owner.MarkNeedsBuild()
	h.worker.Process(Redraw{})
	if owner.ComponentStates().Has(childID) {
		t.Fatal("child state should be collected once it unmounts")
	}

	var debug []string
	fibererrors.SetHandler(&debugHandler{lines: &debug})
	t.Cleanup(func() { fibererrors.SetHandler(nil) })

	close(release)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.worker.AwaitCompletion(ctx); err != nil {
		t.Fatal(err)
	}

	if n := childUpdates.Load(); n != 1 {
		t.Errorf("child handler ran %d times, want only the click", n)
	}
	if owner.ComponentStates().Has(childID) {
		t.Error("a dropped completion must not resurrect state")
	}
	if v := h.counter(t, "fiber_jobs_dropped_total"); v != 1 {
		t.Errorf("jobs dropped = %v, want 1", v)
	}
	if len(debug) != 1 {
		t.Errorf("expected one debug line, got %v", debug)
	}
}

type debugHandler struct {
	fibererrors.LogHandler
	lines *[]string
}

func (h *debugHandler) Debug(msg string) { *h.lines = append(*h.lines, msg) }

func TestWorker_FocusRoutesKeysAndSubmitBubbles(t *testing.T) {
	var submitted []string
	form := core.Stateful("form",
		func() struct{} { return struct{}{} },
		func(*struct{}, any, []*core.Node, core.ID) *core.Node {
			return core.Elem(widgets.Container{},
				core.Elem(widgets.TextInput{Width: 10, ClearOnSubmit: true}),
			)
		},
		func(_ *struct{}, ev core.Event) core.Update {
			if s, ok := ev.(core.SubmitEvent); ok {
				submitted = append(submitted, s.Value)
			}
			return core.Stop()
		},
	)
	h := newWorkerHarness(t, core.Comp(form, nil))

	h.worker.Process(tap(2, 0))
	inputID := h.worker.Owner().Tree().At(2).ID
	if h.worker.Focus() != inputID {
		t.Fatalf("focus = %d, want the input %d", h.worker.Focus(), inputID)
	}
	for _, r := range "hi" {
		h.worker.Process(core.KeyEvent{Key: core.KeyRune, Rune: r})
	}
	h.worker.Process(core.KeyEvent{Key: core.KeyEnter})

	if len(submitted) != 1 || submitted[0] != "hi" {
		t.Errorf("submitted = %v, want [hi]", submitted)
	}
	st, _ := h.worker.Owner().ElementStates().Get(inputID)
	if st.(*widgets.TextInputState).Text() != "" {
		t.Error("input should be cleared after submit")
	}
}

func TestWorker_KeysWithoutFocusStartAtRoot(t *testing.T) {
	var keys []rune
	shortcuts := core.Stateful("shortcuts",
		func() struct{} { return struct{}{} },
		func(*struct{}, any, []*core.Node, core.ID) *core.Node {
			return core.Elem(widgets.Container{}, core.Elem(widgets.Text{Content: "r to reset"}))
		},
		func(_ *struct{}, ev core.Event) core.Update {
			if k, ok := ev.(core.KeyEvent); ok {
				keys = append(keys, k.Rune)
			}
			return core.Stop()
		},
	)

	tests := []struct {
		name       string
		setup      func(h *workerHarness)
		wantMisses float64
	}{
		{"before any pointer down", func(*workerHarness) {}, 0},
		{"after a pointer miss", func(h *workerHarness) { h.worker.Process(tap(50, 50)) }, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys = nil
			h := newWorkerHarness(t, core.Comp(shortcuts, nil))
			tt.setup(h)
			if h.worker.Focus() != 0 {
				t.Fatalf("focus = %d, want none", h.worker.Focus())
			}
			h.worker.Process(core.KeyEvent{Key: core.KeyRune, Rune: 'r'})
			if len(keys) != 1 || keys[0] != 'r' {
				t.Errorf("keys = %q, want [r]", keys)
			}
			if v := h.counter(t, "fiber_dispatch_misses_total"); v != tt.wantMisses {
				t.Errorf("misses = %v, want %v", v, tt.wantMisses)
			}
		})
	}
}

func TestWorker_KeysWithEmptyTreeMiss(t *testing.T) {
	h := newWorkerHarness(t, nil)
	h.worker.Process(core.KeyEvent{Key: core.KeyRune, Rune: 'r'})
	if v := h.counter(t, "fiber_dispatch_misses_total"); v != 1 {
		t.Errorf("misses = %v, want 1", v)
	}
}

func TestWorker_WheelScrollsContainer(t *testing.T) {
	var updates int
	page := core.Stateful("page",
		func() struct{} { return struct{}{} },
		func(*struct{}, any, []*core.Node, core.ID) *core.Node {
			return core.Elem(widgets.Container{},
				core.Elem(widgets.Container{Height: 2, Overflow: core.OverflowScroll},
					core.Elem(widgets.Text{Content: "1"}),
					core.Elem(widgets.Text{Content: "2"}),
					core.Elem(widgets.Text{Content: "3"}),
				),
			)
		},
		func(*struct{}, core.Event) core.Update {
			updates++
			return core.Stop()
		},
	)
	h := newWorkerHarness(t, core.Comp(page, nil))
	h.worker.Process(core.PointerEvent{
		Phase:    core.PointerScroll,
		Position: graphics.Offset{X: 0, Y: 0},
		Delta:    graphics.Offset{Y: 1},
	})
	if updates != 0 {
		t.Errorf("component saw a wheel event the container consumed")
	}
	texts := h.rec.Last().Texts()
	if len(texts) == 0 {
		t.Fatal("expected a repaint after scrolling")
	}
	scroller := h.worker.Owner().ElementTree().At(1)
	first := h.worker.Owner().ElementTree().At(scroller.Children[0])
	if first.Box.Top != -1 {
		t.Errorf("first row top = %v, want -1", first.Box.Top)
	}
}

func TestWorker_RunAcksAndStops(t *testing.T) {
	coord := NewCoordinator(4)
	w := NewWorker(coord, WorkerConfig{
		Root:   core.Elem(widgets.Text{Content: "hello"}),
		Solver: layout.NewFlow(layout.CellMeasurer{}),
	})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	wait, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := coord.SendAndWait(wait, SurfaceCreated{Size: graphics.Size{Width: 8, Height: 1}}); err != nil {
		t.Fatalf("SendAndWait: %v", err)
	}
	snap := w.Snapshot()
	if snap == nil || len(snap.Elements) != 1 || snap.Elements[0].Type != "text" {
		t.Fatalf("snapshot after ack = %+v", snap)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run = %v, want nil on cancel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop")
	}
}

func TestWorker_RunReturnsStopError(t *testing.T) {
	panicky := core.Stateful("panicky",
		func() struct{} { return struct{}{} },
		func(*struct{}, any, []*core.Node, core.ID) *core.Node {
			return core.Elem(widgets.Container{Width: 1, Height: 1})
		},
		func(*struct{}, core.Event) core.Update { panic("update failed") },
	)
	tests := []struct {
		name     string
		root     *core.Node
		after    core.Event
		wantKind fibererrors.ErrorKind
	}{
		{
			name: "duplicate keys are a contract violation",
			root: core.Elem(widgets.Container{},
				core.Elem(widgets.Text{}).WithKey("dup"),
				core.Elem(widgets.Text{}).WithKey("dup"),
			),
			wantKind: fibererrors.KindContract,
		},
		{
			name:     "update handler panic",
			root:     core.Comp(panicky, nil),
			after:    tap(0, 0),
			wantKind: fibererrors.KindPanic,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coord := NewCoordinator(4)
			w := NewWorker(coord, WorkerConfig{Root: tt.root, Solver: layout.NewFlow(layout.CellMeasurer{})})
			done := make(chan error, 1)
			go func() { done <- w.Run(context.Background()) }()

			coord.Send(context.Background(), SurfaceCreated{Size: graphics.Size{Width: 1, Height: 1}})
			if tt.after != nil {
				coord.Send(context.Background(), tt.after)
			}
			select {
			case err := <-done:
				var fe *fibererrors.FiberError
				if !errors.As(err, &fe) || fe.Kind != tt.wantKind {
					t.Fatalf("Run = %v, want a %s FiberError", err, tt.wantKind)
				}
				var ce *fibererrors.ContractError
				if got := errors.As(err, &ce); got != (tt.wantKind == fibererrors.KindContract) {
					t.Errorf("errors.As(ContractError) = %v", got)
				}
			case <-time.After(2 * time.Second):
				t.Fatal("Run did not stop")
			}
		})
	}
}
