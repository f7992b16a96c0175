package widgets

import (
	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// Text displays a single line of text.
type Text struct {
	Content string
	Color   graphics.Color
	Bold    bool
}

func (t Text) TypeName() string { return "text" }

func (t Text) Clone() core.Element { return t }

func (t Text) Style() core.Style { return core.Style{Foreground: t.Color} }

func (t Text) DefaultState() any { return nil }

// IntrinsicSize measures the content. Text is not wrapped; a line wider than
// maxWidth is clipped by its container.
func (t Text) IntrinsicSize(m graphics.TextMeasurer, _ any, _ float64) graphics.Size {
	size := m.MeasureText(t.Content)
	size.Height = max(size.Height, m.LineHeight())
	return size
}

func (t Text) Draw(r rendering.Renderer, box graphics.Rect, _ any) {
	if t.Content == "" {
		return
	}
	r.DrawText(box.Origin(), t.Content, rendering.TextStyle{Color: t.Color, Bold: t.Bold})
}
