package layout

import (
	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
)

// Solver computes the box of every element in tree for the given viewport.
// Element state is passed so scrollable containers can read and clamp their
// offsets.
type Solver interface {
	Layout(tree *core.ElementTree, states *core.Store, viewport graphics.Size)
}

// ExtentReceiver is implemented by element state that wants to know how far
// its content extends beyond the box, such as a scroll position.
type ExtentReceiver interface {
	SetExtent(axis core.Axis, content, viewport float64)
}

// Flow is a single-pass stacking solver. Each container lays its children
// out one after another along its Direction, separated by Gap and inset by
// Padding; cross-axis sizes are the children's own. A container without an
// explicit Width/Height hugs its content, except the root, which fills the
// viewport.
type Flow struct {
	Measurer graphics.TextMeasurer
}

// NewFlow returns a Flow solver measuring text with m.
func NewFlow(m graphics.TextMeasurer) *Flow {
	return &Flow{Measurer: m}
}

// Layout implements [Solver]. The element arena is in pre-order, so walking
// it backwards visits every child before its parent and forwards visits every
// parent before its children; neither pass recurses.
func (f *Flow) Layout(tree *core.ElementTree, states *core.Store, viewport graphics.Size) {
	n := tree.Len()
	if n == 0 {
		return
	}
	avail := make([]float64, n)
	sizes := make([]graphics.Size, n)
	content := make([]graphics.Size, n)

	for i := 0; i < n; i++ {
		node := tree.At(i)
		style := node.Element.Style()
		width := viewport.Width
		if node.Parent >= 0 {
			width = avail[node.Parent]
		}
		if style.Width > 0 {
			width = style.Width
		}
		avail[i] = max(width-style.Padding.Horizontal(), 0)
	}

	for i := n - 1; i >= 0; i-- {
		node := tree.At(i)
		style := node.Element.Style()
		state := stateOf(states, node.ID)

		var size graphics.Size
		if sizer, ok := node.Element.(core.IntrinsicSizer); ok && len(node.Children) == 0 {
			size = sizer.IntrinsicSize(f.Measurer, state, avail[i])
		} else {
			c := stack(style, node.Children, sizes)
			content[i] = c
			size = graphics.Size{
				Width:  c.Width + style.Padding.Horizontal(),
				Height: c.Height + style.Padding.Vertical(),
			}
		}
		if i == 0 {
			size = viewport
		}
		if style.Width > 0 {
			size.Width = style.Width
		}
		if style.Height > 0 {
			size.Height = style.Height
		}
		sizes[i] = size
	}

	for i := 0; i < n; i++ {
		node := tree.At(i)
		if node.Parent < 0 {
			node.Box = graphics.RectFromLTWH(0, 0, sizes[i].Width, sizes[i].Height)
		}
		if len(node.Children) == 0 {
			continue
		}
		style := node.Element.Style()
		inner := node.Box.Deflate(style.Padding)
		origin := inner.Origin()

		if style.Overflow == core.OverflowScroll {
			if recv, ok := stateOf(states, node.ID).(ExtentReceiver); ok {
				if style.Direction == core.AxisHorizontal {
					recv.SetExtent(style.Direction, content[i].Width, inner.Width())
				} else {
					recv.SetExtent(style.Direction, content[i].Height, inner.Height())
				}
			}
			if p, ok := stateOf(states, node.ID).(core.ScrollOffsetProvider); ok {
				origin = origin.Add(p.ScrollOffset())
			}
		}

		for _, c := range node.Children {
			s := sizes[c]
			tree.At(c).Box = graphics.RectFromLTWH(origin.X, origin.Y, s.Width, s.Height)
			if style.Direction == core.AxisHorizontal {
				origin.X += s.Width + style.Gap
			} else {
				origin.Y += s.Height + style.Gap
			}
		}
	}
}

// stack returns the extent of children laid out along style.Direction.
func stack(style core.Style, children []int, sizes []graphics.Size) graphics.Size {
	var out graphics.Size
	for k, c := range children {
		s := sizes[c]
		gap := 0.0
		if k > 0 {
			gap = style.Gap
		}
		if style.Direction == core.AxisHorizontal {
			out.Width += s.Width + gap
			out.Height = max(out.Height, s.Height)
		} else {
			out.Height += s.Height + gap
			out.Width = max(out.Width, s.Width)
		}
	}
	return out
}

func stateOf(states *core.Store, id core.ID) any {
	if states == nil {
		return nil
	}
	s, _ := states.Get(id)
	return s
}
