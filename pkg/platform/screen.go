package platform

import (
	"image"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"

	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// ScreenRenderer paints into a tcell screen, one layout unit per cell.
// Positions are truncated to whole cells.
type ScreenRenderer struct {
	screen tcell.Screen
	clips  []image.Rectangle
}

// NewScreenRenderer returns a renderer drawing onto screen.
func NewScreenRenderer(screen tcell.Screen) *ScreenRenderer {
	return &ScreenRenderer{screen: screen}
}

var _ rendering.FrameRenderer = (*ScreenRenderer)(nil)

func (s *ScreenRenderer) BeginFrame(graphics.Size) {
	s.clips = s.clips[:0]
	s.screen.Clear()
}

func (s *ScreenRenderer) EndFrame() {
	s.screen.Show()
}

func (s *ScreenRenderer) FillRect(rect graphics.Rect, color graphics.Color) {
	if color.IsTransparent() {
		return
	}
	style := tcell.StyleDefault.Background(toTcell(color))
	area := s.visible(cellRect(rect))
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			s.screen.SetContent(x, y, ' ', nil, style)
		}
	}
}

func (s *ScreenRenderer) DrawText(origin graphics.Offset, text string, style rendering.TextStyle) {
	x, y := int(origin.X), int(origin.Y)
	area := s.visible(image.Rect(x, y, x+runewidth.StringWidth(text), y+1))
	for _, r := range text {
		w := runewidth.RuneWidth(r)
		if w == 0 {
			continue
		}
		if image.Pt(x, y).In(area) {
			s.screen.SetContent(x, y, r, nil, s.cellStyle(x, y, style))
		}
		x += w
	}
}

// cellStyle applies style over the cell's existing background, so text drawn
// on a filled box keeps the fill.
func (s *ScreenRenderer) cellStyle(x, y int, style rendering.TextStyle) tcell.Style {
	_, _, existing, _ := s.screen.GetContent(x, y)
	out := existing.Foreground(toTcell(style.Color)).Bold(style.Bold).Underline(style.Underline)
	if !style.Background.IsTransparent() {
		out = out.Background(toTcell(style.Background))
	}
	return out
}

// DrawImage approximates img with one background-colored cell per unit,
// sampling the pixel under each cell center.
func (s *ScreenRenderer) DrawImage(rect graphics.Rect, img image.Image) {
	target := cellRect(rect)
	if target.Empty() || img == nil {
		return
	}
	bounds := img.Bounds()
	area := s.visible(target)
	for y := area.Min.Y; y < area.Max.Y; y++ {
		for x := area.Min.X; x < area.Max.X; x++ {
			px := bounds.Min.X + (2*(x-target.Min.X)+1)*bounds.Dx()/(2*target.Dx())
			py := bounds.Min.Y + (2*(y-target.Min.Y)+1)*bounds.Dy()/(2*target.Dy())
			r, g, b, a := img.At(px, py).RGBA()
			if a == 0 {
				continue
			}
			c := tcell.NewRGBColor(int32(r>>8), int32(g>>8), int32(b>>8))
			s.screen.SetContent(x, y, ' ', nil, tcell.StyleDefault.Background(c))
		}
	}
}

func (s *ScreenRenderer) PushClip(rect graphics.Rect) {
	s.clips = append(s.clips, s.visible(cellRect(rect)))
}

func (s *ScreenRenderer) PopClip() {
	if len(s.clips) > 0 {
		s.clips = s.clips[:len(s.clips)-1]
	}
}

// visible intersects r with the screen and the innermost clip.
func (s *ScreenRenderer) visible(r image.Rectangle) image.Rectangle {
	w, h := s.screen.Size()
	r = r.Intersect(image.Rect(0, 0, w, h))
	if n := len(s.clips); n > 0 {
		r = r.Intersect(s.clips[n-1])
	}
	return r
}

func cellRect(r graphics.Rect) image.Rectangle {
	return image.Rect(int(r.Left), int(r.Top), int(r.Right), int(r.Bottom))
}

func toTcell(c graphics.Color) tcell.Color {
	if c.IsTransparent() {
		return tcell.ColorDefault
	}
	r, g, b := c.RGB8()
	return tcell.NewRGBColor(int32(r), int32(g), int32(b))
}
