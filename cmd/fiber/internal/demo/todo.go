package demo

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/widgets"
)

const visibleItems = 5

type todoState struct {
	Items []string
	Saved int
}

type itemState struct {
	Done bool
}

// item is keyed by its text, so its done flag follows it when the list
// changes around it.
var item = core.Stateful("demo.todo.item",
	func() itemState { return itemState{} },
	func(s *itemState, props any, _ []*core.Node, _ core.ID) *core.Node {
		mark := "[ ] "
		if s.Done {
			mark = "[x] "
		}
		return core.Elem(widgets.Text{Content: mark + core.PropsAs[string]("demo.todo.item", props)})
	},
	func(s *itemState, ev core.Event) core.Update {
		if pe, ok := ev.(core.PointerEvent); ok && pe.Phase == core.PointerDown {
			s.Done = !s.Done
			return core.Stop()
		}
		return core.Continue()
	},
)

func todoList(m graphics.TextMeasurer) *core.Component {
	inputWidth := m.MeasureText(strings.Repeat("m", 24)).Width
	listHeight := m.LineHeight() * visibleItems
	return core.Stateful("demo.todo",
		func() todoState { return todoState{} },
		func(s *todoState, _ any, _ []*core.Node, _ core.ID) *core.Node {
			items := make([]*core.Node, len(s.Items))
			for i, text := range s.Items {
				items[i] = core.Comp(item, text).WithKey(text)
			}
			return core.Elem(widgets.Container{},
				core.Elem(widgets.TextInput{
					Placeholder:   "what needs doing?",
					Width:         inputWidth,
					Background:    graphics.RGB(0x30, 0x30, 0x30),
					ClearOnSubmit: true,
				}),
				core.Elem(widgets.Text{Content: fmt.Sprintf("%d items, %d saved", len(s.Items), s.Saved)}),
				core.Elem(widgets.Container{Height: listHeight, Overflow: core.OverflowScroll}, items...),
			)
		},
		func(s *todoState, ev core.Event) core.Update {
			switch ev := ev.(type) {
			case core.SubmitEvent:
				text := strings.TrimSpace(ev.Value)
				if text == "" || slices.Contains(s.Items, text) {
					return core.Stop()
				}
				s.Items = append(s.Items, text)
				return core.StopWith(persist(len(s.Items)))
			case core.Message:
				if n, ok := ev.Value.(int); ok && ev.Err == nil {
					s.Saved = max(s.Saved, n)
				}
				return core.Stop()
			}
			return core.Continue()
		},
	)
}

func persist(n int) core.Task {
	return func(ctx context.Context) (any, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return n, nil
	}
}

// Todo is a list fed by a text input, with items that toggle on tap.
func Todo() Demo {
	return Demo{
		Name:  "todo",
		Short: "text input, keyed list, scrolling",
		Root: func(m graphics.TextMeasurer) *core.Node {
			return core.Comp(todoList(m), nil)
		},
		Script: func(m graphics.TextMeasurer) []core.Event {
			lh := m.LineHeight()
			events := []core.Event{tap(1, lh/2), release(1, lh/2)}
			events = append(events, typed("milk")...)
			events = append(events, core.KeyEvent{Key: core.KeyEnter})
			events = append(events, typed("eggs")...)
			events = append(events, core.KeyEvent{Key: core.KeyEnter})
			// The list starts below the input and the summary line.
			first := 2*lh + lh/2
			return append(events, tap(1, first), release(1, first))
		},
	}
}
