package platform

import (
	"context"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/engine"
	fibererrors "github.com/go-drift/fiber/pkg/errors"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/layout"
	"github.com/go-drift/fiber/pkg/rendering"
)

// Terminal runs the UI on a tcell screen, one layout unit per cell. Ctrl+C
// ends the loop.
type Terminal struct {
	wakeups
	screen   tcell.Screen
	renderer *ScreenRenderer
	pointer  pointerTracker
}

// NewTerminal opens the controlling terminal.
func NewTerminal() (*Terminal, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, &fibererrors.FiberError{
			Op:        "platform.NewTerminal",
			Kind:      fibererrors.KindPlatform,
			Err:       err,
			Timestamp: time.Now(),
		}
	}
	return NewTerminalWithScreen(screen), nil
}

// NewTerminalWithScreen uses an existing screen, such as a
// [tcell.SimulationScreen] in tests.
func NewTerminalWithScreen(screen tcell.Screen) *Terminal {
	return &Terminal{
		wakeups:  newWakeups(),
		screen:   screen,
		renderer: NewScreenRenderer(screen),
	}
}

func (t *Terminal) Renderer() rendering.Renderer { return t.renderer }

func (t *Terminal) Measurer() graphics.TextMeasurer { return layout.CellMeasurer{} }

func (t *Terminal) Run(ctx context.Context, coord *engine.Coordinator) error {
	defer coord.Close()

	if err := t.screen.Init(); err != nil {
		return &fibererrors.FiberError{
			Op:        "platform.Terminal.Run",
			Kind:      fibererrors.KindInit,
			Err:       err,
			Timestamp: time.Now(),
		}
	}
	defer t.screen.Fini()
	t.screen.EnableMouse()
	t.screen.HideCursor()

	w, h := t.screen.Size()
	if err := coord.SendAndWait(ctx, engine.SurfaceCreated{Size: cells(w, h)}); err != nil {
		return fmt.Errorf("terminal: surface: %w", err)
	}

	events := make(chan tcell.Event, 16)
	quit := make(chan struct{})
	defer close(quit)
	go t.poll(events, quit)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.redraw:
			t.service(ctx, coord, true)
		case <-t.tick:
			if err := t.service(ctx, coord, false); err != nil {
				return err
			}
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if isQuit(ev) {
				return nil
			}
			if _, resized := ev.(*tcell.EventResize); resized {
				t.screen.Sync()
			}
			out := t.convert(ev)
			if out == nil {
				continue
			}
			if err := coord.SendAndWait(ctx, out); err != nil {
				return fmt.Errorf("terminal: %T: %w", out, err)
			}
		}
	}
}

// poll pumps screen events into events. PollEvent returns nil once the
// screen is finalized.
func (t *Terminal) poll(events chan<- tcell.Event, quit <-chan struct{}) {
	defer close(events)
	for {
		ev := t.screen.PollEvent()
		if ev == nil {
			return
		}
		select {
		case events <- ev:
		case <-quit:
			return
		}
	}
}

func isQuit(ev tcell.Event) bool {
	k, ok := ev.(*tcell.EventKey)
	return ok && k.Key() == tcell.KeyCtrlC
}

// convert maps a tcell event to a runtime event, or nil for events the
// runtime does not use.
func (t *Terminal) convert(ev tcell.Event) core.Event {
	switch e := ev.(type) {
	case *tcell.EventResize:
		w, h := e.Size()
		return core.ResizeEvent{Size: cells(w, h)}
	case *tcell.EventKey:
		return convertKey(e)
	case *tcell.EventMouse:
		return t.pointer.convert(e)
	}
	return nil
}

func cells(w, h int) graphics.Size {
	return graphics.Size{Width: float64(w), Height: float64(h)}
}

var keyMap = map[tcell.Key]core.Key{
	tcell.KeyEnter:      core.KeyEnter,
	tcell.KeyBackspace:  core.KeyBackspace,
	tcell.KeyBackspace2: core.KeyBackspace,
	tcell.KeyDelete:     core.KeyDelete,
	tcell.KeyLeft:       core.KeyLeft,
	tcell.KeyRight:      core.KeyRight,
	tcell.KeyHome:       core.KeyHome,
	tcell.KeyEnd:        core.KeyEnd,
	tcell.KeyTab:        core.KeyTab,
	tcell.KeyEscape:     core.KeyEscape,
}

func convertKey(e *tcell.EventKey) core.Event {
	if e.Key() == tcell.KeyRune {
		return core.KeyEvent{Key: core.KeyRune, Rune: e.Rune()}
	}
	if k, ok := keyMap[e.Key()]; ok {
		return core.KeyEvent{Key: k}
	}
	return nil
}

// pointerTracker turns tcell's button-state mouse events into pointer
// phases by remembering whether the primary button was held.
type pointerTracker struct {
	down bool
}

func (p *pointerTracker) convert(e *tcell.EventMouse) core.Event {
	x, y := e.Position()
	pos := graphics.Offset{X: float64(x), Y: float64(y)}
	buttons := e.Buttons()

	switch {
	case buttons&tcell.WheelUp != 0:
		return core.PointerEvent{Phase: core.PointerScroll, Position: pos, Delta: graphics.Offset{Y: -1}}
	case buttons&tcell.WheelDown != 0:
		return core.PointerEvent{Phase: core.PointerScroll, Position: pos, Delta: graphics.Offset{Y: 1}}
	case buttons&tcell.WheelLeft != 0:
		return core.PointerEvent{Phase: core.PointerScroll, Position: pos, Delta: graphics.Offset{X: -1}}
	case buttons&tcell.WheelRight != 0:
		return core.PointerEvent{Phase: core.PointerScroll, Position: pos, Delta: graphics.Offset{X: 1}}
	}

	pressed := buttons&tcell.Button1 != 0
	switch {
	case pressed && !p.down:
		p.down = true
		return core.PointerEvent{Phase: core.PointerDown, Position: pos}
	case !pressed && p.down:
		p.down = false
		return core.PointerEvent{Phase: core.PointerUp, Position: pos}
	case pressed:
		return core.PointerEvent{Phase: core.PointerMove, Position: pos}
	}
	return nil
}
