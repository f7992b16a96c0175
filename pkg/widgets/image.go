package widgets

import (
	"image"
	"math"

	"golang.org/x/image/draw"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// Image draws a bitmap scaled to its box. Width and Height override the
// source dimensions when non-zero; setting only one keeps the aspect ratio.
type Image struct {
	Source image.Image
	Width  float64
	Height float64
}

func (i Image) TypeName() string { return "image" }

func (i Image) Clone() core.Element { return i }

func (i Image) Style() core.Style { return core.Style{} }

func (i Image) DefaultState() any { return nil }

func (i Image) IntrinsicSize(_ graphics.TextMeasurer, _ any, _ float64) graphics.Size {
	if i.Source == nil {
		return graphics.Size{Width: i.Width, Height: i.Height}
	}
	b := i.Source.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	switch {
	case i.Width > 0 && i.Height > 0:
		return graphics.Size{Width: i.Width, Height: i.Height}
	case i.Width > 0 && w > 0:
		return graphics.Size{Width: i.Width, Height: h * i.Width / w}
	case i.Height > 0 && h > 0:
		return graphics.Size{Width: w * i.Height / h, Height: i.Height}
	}
	return graphics.Size{Width: w, Height: h}
}

func (i Image) Draw(r rendering.Renderer, box graphics.Rect, _ any) {
	if i.Source == nil || box.IsEmpty() {
		return
	}
	r.DrawImage(box, Scale(i.Source, box.Size()))
}

// Scale resamples src to size (rounded to whole pixels). The source is
// returned unchanged when it already has that size.
func Scale(src image.Image, size graphics.Size) image.Image {
	w, h := int(math.Round(size.Width)), int(math.Round(size.Height))
	b := src.Bounds()
	if w <= 0 || h <= 0 || (b.Dx() == w && b.Dy() == h) {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)
	return dst
}
