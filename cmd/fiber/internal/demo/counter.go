package demo

import (
	"context"
	"fmt"
	"time"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/widgets"
)

// saveDelay stands in for a slow backend.
var saveDelay = 10 * time.Millisecond

type counterState struct {
	Count  int
	Saved  int
	Saving bool
	Err    string
}

func (s *counterState) status() string {
	switch {
	case s.Saving:
		return "saving..."
	case s.Err != "":
		return "save failed: " + s.Err
	case s.Saved > 0:
		return fmt.Sprintf("saved %d", s.Saved)
	default:
		return "not saved"
	}
}

var counter = core.Stateful("demo.counter",
	func() counterState { return counterState{} },
	func(s *counterState, _ any, _ []*core.Node, _ core.ID) *core.Node {
		return core.Elem(widgets.Container{},
			core.Elem(widgets.Text{Content: fmt.Sprintf("count: %d", s.Count), Bold: true}),
			core.Elem(widgets.Text{Content: "tap +1, '-' -1, r reset, s save", Color: graphics.RGB(0x88, 0x88, 0x88)}),
			core.Elem(widgets.Text{Content: s.status()}),
		)
	},
	func(s *counterState, ev core.Event) core.Update {
		switch ev := ev.(type) {
		case core.PointerEvent:
			if ev.Phase == core.PointerDown {
				s.Count++
				return core.Stop()
			}
		case core.KeyEvent:
			if ev.Key != core.KeyRune {
				return core.Continue()
			}
			switch ev.Rune {
			case '-':
				s.Count--
			case 'r':
				s.Count = 0
			case 's':
				s.Saving = true
				return core.StopWith(save(s.Count))
			default:
				return core.Continue()
			}
			return core.Stop()
		case core.Message:
			s.Saving = false
			if ev.Err != nil {
				s.Err = ev.Err.Error()
				return core.Stop()
			}
			s.Err = ""
			s.Saved, _ = ev.Value.(int)
			return core.Stop()
		}
		return core.Continue()
	},
)

func save(n int) core.Task {
	return func(ctx context.Context) (any, error) {
		select {
		case <-time.After(saveDelay):
			return n, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Counter counts taps and saves the count asynchronously.
func Counter() Demo {
	return Demo{
		Name:  "counter",
		Short: "tap to count, save in the background",
		Root: func(graphics.TextMeasurer) *core.Node {
			return core.Comp(counter, nil)
		},
		Script: func(m graphics.TextMeasurer) []core.Event {
			y := m.LineHeight() / 2
			return []core.Event{
				tap(1, y), release(1, y),
				tap(1, y), release(1, y),
				tap(1, y), release(1, y),
				core.KeyEvent{Key: core.KeyRune, Rune: '-'},
				core.KeyEvent{Key: core.KeyRune, Rune: 's'},
			}
		},
	}
}
