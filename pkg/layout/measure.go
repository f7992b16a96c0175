package layout

import (
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/go-drift/fiber/pkg/graphics"
)

// PixelMeasurer measures text in pixels with a fixed bitmap face.
type PixelMeasurer struct {
	Face font.Face
}

// NewPixelMeasurer returns a measurer using the 7x13 basic font.
func NewPixelMeasurer() *PixelMeasurer {
	return &PixelMeasurer{Face: basicfont.Face7x13}
}

func (m *PixelMeasurer) MeasureText(text string) graphics.Size {
	adv := font.MeasureString(m.Face, text)
	return graphics.Size{Width: float64(adv.Ceil()), Height: m.LineHeight()}
}

func (m *PixelMeasurer) LineHeight() float64 {
	return float64(m.Face.Metrics().Height.Ceil())
}

// CellMeasurer measures text in terminal cells. East Asian wide runes take
// two cells.
type CellMeasurer struct{}

func (CellMeasurer) MeasureText(text string) graphics.Size {
	return graphics.Size{Width: float64(runewidth.StringWidth(text)), Height: 1}
}

func (CellMeasurer) LineHeight() float64 { return 1 }
