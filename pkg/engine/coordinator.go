package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/go-drift/fiber/pkg/graphics"
)

// SurfaceCreated is sent once the platform has a surface to draw on.
type SurfaceCreated struct {
	Size graphics.Size
}

// Redraw asks the worker to produce a frame.
type Redraw struct{}

// ProcessQueue asks the worker to start all queued update work.
type ProcessQueue struct{}

// Envelope carries one platform event to the worker. Event is a
// [core.PointerEvent], [core.KeyEvent], [core.ResizeEvent], [SurfaceCreated],
// [Redraw] or [ProcessQueue].
type Envelope struct {
	Seq        uint64
	WaitForAck bool
	Event      any
}

// Ack tells the platform that the envelope with Seq has been fully processed.
type Ack struct {
	Seq uint64
}

// Coordinator is the channel pair between the platform loop and the worker.
// Envelopes are delivered in the order they were sent.
type Coordinator struct {
	inbox chan Envelope
	acks  chan Ack
	seq   atomic.Uint64
	// waitMu keeps one SendAndWait in flight, so the next ack read belongs
	// to it (or to an earlier, abandoned wait).
	waitMu    sync.Mutex
	done      chan struct{}
	closeOnce sync.Once
}

// NewCoordinator returns a coordinator whose inbox holds up to buffer
// undelivered envelopes.
func NewCoordinator(buffer int) *Coordinator {
	return &Coordinator{
		inbox: make(chan Envelope, buffer),
		acks:  make(chan Ack, 1),
		done:  make(chan struct{}),
	}
}

// ErrClosed is returned when sending on a closed coordinator.
var ErrClosed = errors.New("engine: coordinator closed")

// Send posts ev without waiting for it to be processed. It blocks only while
// the inbox is full.
func (c *Coordinator) Send(ctx context.Context, ev any) (uint64, error) {
	return c.post(ctx, ev, false)
}

// TrySend posts ev if the inbox has room and reports whether it did. It is
// meant for coalescable ticks like [Redraw].
func (c *Coordinator) TrySend(ev any) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.inbox <- Envelope{Seq: c.seq.Add(1), Event: ev}:
		return true
	default:
		return false
	}
}

// SendAndWait posts ev and blocks until the worker acknowledges it or ctx is
// done. The caller waits on the ack channel only; it never observes the
// worker's internal state.
func (c *Coordinator) SendAndWait(ctx context.Context, ev any) error {
	c.waitMu.Lock()
	defer c.waitMu.Unlock()

	seq, err := c.post(ctx, ev, true)
	if err != nil {
		return err
	}
	for {
		select {
		case ack := <-c.acks:
			if ack.Seq == seq {
				return nil
			}
			if ack.Seq > seq {
				return fmt.Errorf("engine: ack %d arrived while waiting for %d", ack.Seq, seq)
			}
			// Stale ack from a wait that gave up; keep waiting.
		case <-c.done:
			return ErrClosed
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Coordinator) post(ctx context.Context, ev any, wait bool) (uint64, error) {
	select {
	case <-c.done:
		return 0, ErrClosed
	default:
	}
	env := Envelope{Seq: c.seq.Add(1), WaitForAck: wait, Event: ev}
	select {
	case c.inbox <- env:
		return env.Seq, nil
	case <-c.done:
		return 0, ErrClosed
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

// Inbox is the worker's end of the platform-to-worker channel.
func (c *Coordinator) Inbox() <-chan Envelope {
	return c.inbox
}

// Ack is called by the worker after processing an envelope that asked for
// one. A previous ack nobody collected is replaced, so the worker never
// blocks on a platform that stopped waiting.
func (c *Coordinator) Ack(seq uint64) {
	for {
		select {
		case c.acks <- Ack{Seq: seq}:
			return
		default:
		}
		select {
		case <-c.acks:
		default:
		}
	}
}

// Done is closed by [Coordinator.Close].
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

// Close tells the worker to stop. Sends after Close fail with [ErrClosed];
// envelopes still in the inbox are discarded.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}
