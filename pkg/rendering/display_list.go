package rendering

import (
	"fmt"
	"image"
	"strings"

	"github.com/go-drift/fiber/pkg/graphics"
)

// OpKind identifies a recorded draw command.
type OpKind uint8

const (
	OpFillRect OpKind = iota
	OpDrawText
	OpDrawImage
	OpPushClip
	OpPopClip
)

func (k OpKind) String() string {
	switch k {
	case OpFillRect:
		return "fillRect"
	case OpDrawText:
		return "drawText"
	case OpDrawImage:
		return "drawImage"
	case OpPushClip:
		return "pushClip"
	case OpPopClip:
		return "popClip"
	default:
		return "unknown"
	}
}

// Op is one recorded draw command. Only the fields relevant to Kind are set.
type Op struct {
	Kind  OpKind
	Rect  graphics.Rect
	Color graphics.Color
	At    graphics.Offset
	Text  string
	Style TextStyle
	Image image.Image
}

func (o Op) String() string {
	switch o.Kind {
	case OpFillRect:
		return fmt.Sprintf("fillRect(%s, #%08x)", formatRect(o.Rect), uint32(o.Color))
	case OpDrawText:
		return fmt.Sprintf("drawText(%g,%g %q)", o.At.X, o.At.Y, o.Text)
	case OpDrawImage:
		return fmt.Sprintf("drawImage(%s)", formatRect(o.Rect))
	case OpPushClip:
		return fmt.Sprintf("pushClip(%s)", formatRect(o.Rect))
	default:
		return o.Kind.String() + "()"
	}
}

func formatRect(r graphics.Rect) string {
	return fmt.Sprintf("%g,%g %gx%g", r.Left, r.Top, r.Width(), r.Height())
}

// DisplayList is an immutable list of draw commands. It can be replayed onto
// any Renderer.
type DisplayList struct {
	ops  []Op
	size graphics.Size
}

// Ops returns the recorded commands.
func (d *DisplayList) Ops() []Op {
	return d.ops
}

// Size returns the frame size recorded with the list.
func (d *DisplayList) Size() graphics.Size {
	return d.size
}

// Paint replays the recorded commands onto r.
func (d *DisplayList) Paint(r Renderer) {
	for _, op := range d.ops {
		switch op.Kind {
		case OpFillRect:
			r.FillRect(op.Rect, op.Color)
		case OpDrawText:
			r.DrawText(op.At, op.Text, op.Style)
		case OpDrawImage:
			r.DrawImage(op.Rect, op.Image)
		case OpPushClip:
			r.PushClip(op.Rect)
		case OpPopClip:
			r.PopClip()
		}
	}
}

// Texts returns the strings of every text command, in order.
func (d *DisplayList) Texts() []string {
	var out []string
	for _, op := range d.ops {
		if op.Kind == OpDrawText {
			out = append(out, op.Text)
		}
	}
	return out
}

func (d *DisplayList) String() string {
	lines := make([]string, len(d.ops))
	for i, op := range d.ops {
		lines[i] = op.String()
	}
	return strings.Join(lines, "\n")
}

// PictureRecorder is a FrameRenderer that records each frame into a
// DisplayList. Commands outside BeginFrame/EndFrame are dropped.
type PictureRecorder struct {
	ops       []Op
	size      graphics.Size
	recording bool
	last      *DisplayList
	frames    int
}

// BeginFrame starts recording a new frame.
func (r *PictureRecorder) BeginFrame(size graphics.Size) {
	r.ops = r.ops[:0]
	r.size = size
	r.recording = true
}

// EndFrame finishes the frame and keeps its display list.
func (r *PictureRecorder) EndFrame() {
	if !r.recording {
		return
	}
	r.recording = false
	ops := make([]Op, len(r.ops))
	copy(ops, r.ops)
	r.last = &DisplayList{ops: ops, size: r.size}
	r.frames++
}

// Last returns the most recently completed frame, or nil.
func (r *PictureRecorder) Last() *DisplayList {
	return r.last
}

// Frames returns the number of completed frames.
func (r *PictureRecorder) Frames() int {
	return r.frames
}

func (r *PictureRecorder) append(op Op) {
	if !r.recording {
		return
	}
	r.ops = append(r.ops, op)
}

func (r *PictureRecorder) FillRect(rect graphics.Rect, color graphics.Color) {
	r.append(Op{Kind: OpFillRect, Rect: rect, Color: color})
}

func (r *PictureRecorder) DrawText(origin graphics.Offset, text string, style TextStyle) {
	r.append(Op{Kind: OpDrawText, At: origin, Text: text, Style: style})
}

func (r *PictureRecorder) DrawImage(rect graphics.Rect, img image.Image) {
	r.append(Op{Kind: OpDrawImage, Rect: rect, Image: img})
}

func (r *PictureRecorder) PushClip(rect graphics.Rect) {
	r.append(Op{Kind: OpPushClip, Rect: rect})
}

func (r *PictureRecorder) PopClip() {
	r.append(Op{Kind: OpPopClip})
}
