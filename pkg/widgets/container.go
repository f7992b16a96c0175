package widgets

import (
	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// Container stacks its children along Direction, separated by Gap and inset
// by Padding. Without explicit Width/Height it sizes to its children.
//
// With Overflow set to [core.OverflowScroll], children beyond the box are
// clipped and wheel input scrolls them:
//
//	Container{Height: 8, Overflow: core.OverflowScroll}
type Container struct {
	Width     float64
	Height    float64
	Padding   graphics.EdgeInsets
	Gap       float64
	Direction core.Axis
	Overflow  core.Overflow
	Color     graphics.Color
}

func (c Container) TypeName() string { return "container" }

func (c Container) Clone() core.Element { return c }

func (c Container) Style() core.Style {
	return core.Style{
		Width:      c.Width,
		Height:     c.Height,
		Padding:    c.Padding,
		Gap:        c.Gap,
		Direction:  c.Direction,
		Overflow:   c.Overflow,
		Background: c.Color,
	}
}

// DefaultState returns a fresh [*ScrollState]. Every container carries one so
// that toggling Overflow does not change the state type behind an identity.
func (c Container) DefaultState() any {
	return &ScrollState{}
}

func (c Container) Draw(r rendering.Renderer, box graphics.Rect, _ any) {
	if !c.Color.IsTransparent() {
		r.FillRect(box, c.Color)
	}
}

// HandleEvent scrolls a scrollable container on wheel input. Other events,
// and wheel input that cannot move the content, keep bubbling.
func (c Container) HandleEvent(state any, ev core.Event) core.Event {
	pe, ok := ev.(core.PointerEvent)
	if !ok || pe.Phase != core.PointerScroll || c.Overflow != core.OverflowScroll {
		return ev
	}
	s := core.StateAs[ScrollState](c.TypeName(), state)
	delta := pe.Delta.Y
	if c.Direction == core.AxisHorizontal {
		delta = pe.Delta.X
	}
	if !s.ScrollBy(delta) {
		return ev
	}
	return nil
}
