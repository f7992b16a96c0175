// Package platform provides the loops that own input and the drawing
// surface: [Headless] replays a scripted event list, [Terminal] drives a
// tcell screen.
//
// A platform never touches the trees. It forwards input to the worker
// through an [engine.Coordinator], waiting for the ack on input that must be
// observed before the next event, and answers the worker's wake-ups by
// posting [engine.Redraw] and [engine.ProcessQueue] ticks.
package platform

import (
	"context"

	"github.com/go-drift/fiber/pkg/engine"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// Platform is a platform loop.
type Platform interface {
	engine.Waker
	// Renderer is the sink the worker paints into.
	Renderer() rendering.Renderer
	// Measurer measures text in the surface's units.
	Measurer() graphics.TextMeasurer
	// Run blocks until the loop exits or ctx is done.
	Run(ctx context.Context, coord *engine.Coordinator) error
}

// wakeups coalesces worker requests: any number of RequestRedraw calls
// before the loop services them produce a single Redraw.
type wakeups struct {
	redraw chan struct{}
	tick   chan struct{}
}

func newWakeups() wakeups {
	return wakeups{
		redraw: make(chan struct{}, 1),
		tick:   make(chan struct{}, 1),
	}
}

func (w wakeups) RequestRedraw() {
	select {
	case w.redraw <- struct{}{}:
	default:
	}
}

func (w wakeups) RequestTick() {
	select {
	case w.tick <- struct{}{}:
	default:
	}
}

// service posts the tick matching a wake-up. Redraws are dropped when the
// inbox is full, since a redraw is already pending then.
func (w wakeups) service(ctx context.Context, coord *engine.Coordinator, redraw bool) error {
	if redraw {
		coord.TrySend(engine.Redraw{})
		return nil
	}
	_, err := coord.Send(ctx, engine.ProcessQueue{})
	return err
}
