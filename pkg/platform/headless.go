package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/engine"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/layout"
	"github.com/go-drift/fiber/pkg/rendering"
)

const defaultIdle = 50 * time.Millisecond

// Headless is a platform without a screen. It creates a surface of Size,
// replays Events in order and then keeps servicing wake-ups until none
// arrive for Idle. Frames are recorded and can be inspected afterwards.
type Headless struct {
	Size   graphics.Size
	Events []core.Event
	Idle   time.Duration

	wakeups
	recorder *rendering.PictureRecorder
	measurer graphics.TextMeasurer
}

// NewHeadless returns a headless platform with a pixel measurer.
func NewHeadless(size graphics.Size, events ...core.Event) *Headless {
	return &Headless{
		Size:     size,
		Events:   events,
		wakeups:  newWakeups(),
		recorder: &rendering.PictureRecorder{},
		measurer: layout.NewPixelMeasurer(),
	}
}

func (h *Headless) Renderer() rendering.Renderer { return h.recorder }

func (h *Headless) Measurer() graphics.TextMeasurer { return h.measurer }

// LastFrame returns the most recently painted frame, or nil.
func (h *Headless) LastFrame() *rendering.DisplayList { return h.recorder.Last() }

// Frames returns the number of painted frames.
func (h *Headless) Frames() int { return h.recorder.Frames() }

func (h *Headless) Run(ctx context.Context, coord *engine.Coordinator) error {
	defer coord.Close()

	if err := coord.SendAndWait(ctx, engine.SurfaceCreated{Size: h.Size}); err != nil {
		return fmt.Errorf("headless: surface: %w", err)
	}
	for _, ev := range h.Events {
		if err := h.drain(ctx, coord); err != nil {
			return err
		}
		if err := coord.SendAndWait(ctx, ev); err != nil {
			return fmt.Errorf("headless: %T: %w", ev, err)
		}
	}

	idle := h.Idle
	if idle <= 0 {
		idle = defaultIdle
	}
	timer := time.NewTimer(idle)
	defer timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.C:
			return nil
		case <-h.redraw:
			h.service(ctx, coord, true)
		case <-h.tick:
			if err := h.service(ctx, coord, false); err != nil {
				return err
			}
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(idle)
	}
}

// drain services wake-ups that are already pending, without waiting.
func (h *Headless) drain(ctx context.Context, coord *engine.Coordinator) error {
	for {
		select {
		case <-h.redraw:
			h.service(ctx, coord, true)
		case <-h.tick:
			if err := h.service(ctx, coord, false); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}
