package engine

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/go-drift/fiber/pkg/core"
	fibererrors "github.com/go-drift/fiber/pkg/errors"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/layout"
	"github.com/go-drift/fiber/pkg/rendering"
)

// Waker is implemented by the platform loop so the worker can ask for a
// redraw or a queue tick. Both calls must return without blocking.
type Waker interface {
	RequestRedraw()
	RequestTick()
}

// WorkerConfig configures a [Worker]. Zero fields get defaults: a pixel
// Flow solver, no renderer, fresh identities, metrics on a private registry.
type WorkerConfig struct {
	Root     *core.Node
	Solver   layout.Solver
	Renderer rendering.Renderer
	Waker    Waker
	IDs      *core.IDAllocator
	Metrics  *Metrics
	Trace    *FrameTraceBuffer
}

type completion struct {
	owner core.ID
	msg   core.Message
}

// Worker owns the reconciled trees and both state stores. All tree access
// happens on the goroutine running [Worker.Run] (or, in tests, the goroutine
// calling [Worker.Process]).
type Worker struct {
	coord    *Coordinator
	root     *core.Node
	owner    *core.BuildOwner
	solver   layout.Solver
	renderer rendering.Renderer
	waker    Waker
	metrics  *Metrics
	trace    *FrameTraceBuffer

	viewport graphics.Size
	focus    core.ID
	queue    UpdateQueue

	base        context.Context
	completions chan completion
	inflight    sync.WaitGroup

	frames   uint64
	snapshot atomic.Pointer[Snapshot]
}

// NewWorker creates a worker reading from coord.
func NewWorker(coord *Coordinator, cfg WorkerConfig) *Worker {
	if cfg.IDs == nil {
		cfg.IDs = core.NewIDAllocator()
	}
	if cfg.Solver == nil {
		cfg.Solver = layout.NewFlow(layout.NewPixelMeasurer())
	}
	if cfg.Metrics == nil {
		cfg.Metrics = NewMetrics(prometheus.NewRegistry())
	}
	if cfg.Trace == nil {
		cfg.Trace = NewFrameTraceBuffer(0, 0)
	}
	return &Worker{
		coord:       coord,
		root:        cfg.Root,
		owner:       core.NewBuildOwner(cfg.IDs),
		solver:      cfg.Solver,
		renderer:    cfg.Renderer,
		waker:       cfg.Waker,
		metrics:     cfg.Metrics,
		trace:       cfg.Trace,
		base:        context.Background(),
		completions: make(chan completion, 64),
	}
}

// Run processes envelopes and job completions until ctx is done or the
// coordinator is closed. A panic while processing an envelope (including a
// contract violation) stops the worker and is returned as an error.
func (w *Worker) Run(ctx context.Context) (err error) {
	w.base = ctx
	defer func() {
		if r := recover(); r != nil {
			err = stopError(r)
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-w.coord.Done():
			return nil
		case env := <-w.coord.Inbox():
			w.Process(env.Event)
			if env.WaitForAck {
				w.coord.Ack(env.Seq)
			}
		case c := <-w.completions:
			w.complete(c)
		}
	}
}

// Process handles one event to completion: dispatch, then rebuild, layout
// and paint when something changed.
func (w *Worker) Process(ev any) {
	switch ev := ev.(type) {
	case SurfaceCreated:
		w.viewport = ev.Size
		w.frame(0)
	case core.ResizeEvent:
		w.viewport = ev.Size
		w.frame(0)
	case Redraw:
		w.frame(0)
	case ProcessQueue:
		w.startJobs()
	case core.PointerEvent:
		start := time.Now()
		w.dispatchPointer(ev)
		w.afterDispatch(time.Since(start))
	case core.KeyEvent:
		start := time.Now()
		w.dispatchKey(ev)
		w.afterDispatch(time.Since(start))
	default:
		fibererrors.Report(&fibererrors.FiberError{
			Op:        "engine.Worker.Process",
			Kind:      fibererrors.KindPlatform,
			Err:       fmt.Errorf("unsupported event %T", ev),
			Timestamp: time.Now(),
		})
	}
}

func (w *Worker) afterDispatch(d time.Duration) {
	if w.owner.NeedsBuild() {
		w.frame(d)
	}
	if w.queue.Len() > 0 && w.waker != nil {
		w.waker.RequestTick()
	}
}

func (w *Worker) dispatchPointer(ev core.PointerEvent) {
	fib, ok := HitTest(ev.Position, w.owner.Tree(), w.owner.ElementTree())
	if !ok {
		w.metrics.DispatchMisses.Inc()
		return
	}
	if ev.Phase == core.PointerDown {
		w.focus = fib.Component.ID
	}
	w.dispatch(fib.Component.ID, ev, "pointer_"+ev.Phase.String())
}

// dispatchKey routes ev to the focused node. Without a mounted focus it
// starts at the root element, or the root component when nothing drew.
func (w *Worker) dispatchKey(ev core.KeyEvent) {
	target := w.focus
	if target == 0 || !w.owner.Tree().Contains(target) {
		target = w.keyRoot()
	}
	if target == 0 {
		w.metrics.DispatchMisses.Inc()
		return
	}
	w.dispatch(target, ev, "key")
}

func (w *Worker) keyRoot() core.ID {
	if root := w.owner.ElementTree().Root(); root != nil {
		return root.ID
	}
	if root := w.owner.Tree().Root(); root != nil {
		return root.ID
	}
	return 0
}

// dispatch offers ev to the target element and its element ancestors, then
// bubbles whatever is left through the component tree.
func (w *Worker) dispatch(target core.ID, ev core.Event, kind string) {
	w.metrics.Dispatches.WithLabelValues(kind).Inc()
	out, reacted := offerToElements(w.owner.ElementTree(), target, ev, w.owner.ElementStates())
	if reacted {
		w.owner.MarkNeedsBuild()
	}
	if out == nil {
		return
	}
	_, handled := Bubble(w.owner.Tree(), target, out, w.owner.ComponentStates(), &w.queue)
	if handled > 0 {
		w.owner.MarkNeedsBuild()
	}
}

func (w *Worker) frame(dispatch time.Duration) {
	start := time.Now()
	sample := FrameSample{
		Timestamp: start.UnixMilli(),
		Phases:    FramePhaseTimings{DispatchMs: durationToMillis(dispatch)},
	}

	if w.owner.NeedsBuild() {
		stats := w.owner.Rebuild(w.root)
		w.metrics.Reconciles.Inc()
		w.metrics.ReconcileDuration.Observe(stats.Duration.Seconds())
		w.metrics.IdentitiesMinted.Add(float64(stats.Minted))
		w.metrics.StatesCollected.Add(float64(stats.Collected))
		sample.Rebuilt = true
		sample.Phases.BuildMs = durationToMillis(stats.Duration)
		sample.Counts.Minted = stats.Minted
		sample.Counts.Collected = stats.Collected
	}
	elements := w.owner.ElementTree()

	layoutStart := time.Now()
	w.solver.Layout(elements, w.owner.ElementStates(), w.viewport)
	sample.Phases.LayoutMs = durationToMillis(time.Since(layoutStart))

	paintStart := time.Now()
	if w.renderer != nil {
		fr, framed := w.renderer.(rendering.FrameRenderer)
		if framed {
			fr.BeginFrame(w.viewport)
		}
		elements.Paint(w.renderer, w.owner.ElementStates())
		if framed {
			fr.EndFrame()
		}
	}
	sample.Phases.PaintMs = durationToMillis(time.Since(paintStart))

	total := dispatch + time.Since(start)
	sample.FrameMs = durationToMillis(total)
	sample.Counts.ComponentNodes = w.owner.Tree().Len()
	sample.Counts.ElementNodes = elements.Len()
	sample.Counts.QueuedJobs = w.queue.Len()
	w.trace.Add(sample, total)

	w.frames++
	w.metrics.Frames.Inc()
	w.metrics.LiveNodes.Set(float64(w.owner.Tree().Len()))
	w.snapshot.Store(newSnapshot(w.frames, w.owner))
}

// startJobs runs every queued job on its own goroutine.
func (w *Worker) startJobs() {
	for _, job := range w.queue.Drain() {
		w.metrics.JobsStarted.Inc()
		w.inflight.Add(1)
		go w.run(job)
	}
}

func (w *Worker) run(job Job) {
	defer w.inflight.Done()
	c := completion{owner: job.Owner}
	func() {
		defer fibererrors.Recover("engine.Job", func(r any) {
			c.msg = core.Message{Err: &fibererrors.FiberError{
				Op:        "engine.Job",
				Kind:      fibererrors.KindAsync,
				Err:       fmt.Errorf("task panicked: %v", r),
				Timestamp: time.Now(),
			}}
		})
		value, err := job.Task(w.base)
		c.msg = core.Message{Value: value, Err: err}
	}()
	select {
	case w.completions <- c:
	case <-w.base.Done():
	case <-w.coord.Done():
	}
}

// complete delivers a job's result to the component that queued it. The
// result is dropped when that identity is no longer mounted: identities are
// never reused, so its state is already gone.
func (w *Worker) complete(c completion) {
	node, ok := w.owner.Tree().Lookup(c.owner)
	if !ok || node.Update == nil {
		w.metrics.JobsDropped.Inc()
		fibererrors.Debugf("dropping completion for unmounted component %d", c.owner)
		return
	}
	state, _ := w.owner.ComponentStates().Get(c.owner)
	upd := node.Update(state, c.msg)
	if upd.Work != nil {
		w.queue.Push(c.owner, upd.Work)
	}
	w.metrics.JobsCompleted.Inc()
	w.owner.MarkNeedsBuild()
	if w.waker != nil {
		w.waker.RequestRedraw()
		if w.queue.Len() > 0 {
			w.waker.RequestTick()
		}
	}
}

// AwaitCompletion blocks until one job finishes and applies its result on
// the calling goroutine. It is for driving a worker without [Worker.Run].
func (w *Worker) AwaitCompletion(ctx context.Context) error {
	select {
	case c := <-w.completions:
		w.complete(c)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Wait blocks until every started job has posted its completion (or given
// up because the worker stopped).
func (w *Worker) Wait() {
	w.inflight.Wait()
}

// SetRoot replaces the root node; the next frame reconciles it against the
// current trees. Only safe on the worker goroutine.
func (w *Worker) SetRoot(root *core.Node) {
	w.root = root
	w.owner.MarkNeedsBuild()
}

// Queued returns the number of jobs waiting for the next [ProcessQueue].
func (w *Worker) Queued() int {
	return w.queue.Len()
}

// Owner returns the build owner. Only safe on the worker goroutine.
func (w *Worker) Owner() *core.BuildOwner {
	return w.owner
}

// Focus returns the identity key events are routed to, 0 for none.
func (w *Worker) Focus() core.ID {
	return w.focus
}

// Snapshot returns the trees as of the last frame. Safe from any goroutine.
func (w *Worker) Snapshot() *Snapshot {
	return w.snapshot.Load()
}

// Trace returns the frame trace buffer.
func (w *Worker) Trace() *FrameTraceBuffer {
	return w.trace
}

// stopError turns a panic that stopped the worker into a FiberError. A
// contract violation keeps its ContractError reachable through Unwrap.
func stopError(r any) error {
	fe := &fibererrors.FiberError{
		Op:         "engine.Worker.Run",
		Kind:       fibererrors.KindPanic,
		Err:        fmt.Errorf("%v", r),
		StackTrace: fibererrors.CaptureStack(),
		Timestamp:  time.Now(),
	}
	if ce, ok := r.(*fibererrors.ContractError); ok {
		fe.Kind = fibererrors.KindContract
		fe.Err = ce
	}
	return fe
}
