// Package rendering defines the draw-command sink elements paint into, and a
// recorder that captures commands as a replayable display list.
package rendering

import (
	"image"

	"github.com/go-drift/fiber/pkg/graphics"
)

// TextStyle describes how a text run is drawn.
type TextStyle struct {
	Color      graphics.Color
	Background graphics.Color
	Bold       bool
	Underline  bool
}

// Renderer accepts primitive draw commands. The runtime never inspects it.
type Renderer interface {
	FillRect(rect graphics.Rect, color graphics.Color)
	DrawText(origin graphics.Offset, text string, style TextStyle)
	DrawImage(rect graphics.Rect, img image.Image)
	PushClip(rect graphics.Rect)
	PopClip()
}

// FrameRenderer is implemented by renderers that need to know frame
// boundaries, such as a terminal screen that must be cleared and flushed.
type FrameRenderer interface {
	Renderer
	BeginFrame(size graphics.Size)
	EndFrame()
}
