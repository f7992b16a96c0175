package widgets

import (
	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// TextInput is a single-line editable field. The text being edited lives in
// its [*TextInputState], so it survives re-renders of the surrounding
// components. Key events reach it when it holds focus (it was the target of
// the last pointer-down).
//
// Enter raises a [core.SubmitEvent] carrying the current value, which bubbles
// to the components above the input.
type TextInput struct {
	Placeholder string
	Width       float64
	Color       graphics.Color
	Background  graphics.Color
	// ClearOnSubmit empties the field after Enter.
	ClearOnSubmit bool
}

// TextInputState holds the value and the cursor position, in runes.
type TextInputState struct {
	Value  []rune
	Cursor int
}

// Text returns the current value.
func (s *TextInputState) Text() string { return string(s.Value) }

// SetText replaces the value and moves the cursor to the end.
func (s *TextInputState) SetText(text string) {
	s.Value = []rune(text)
	s.Cursor = len(s.Value)
}

func (s *TextInputState) insert(r rune) {
	s.Value = append(s.Value, 0)
	copy(s.Value[s.Cursor+1:], s.Value[s.Cursor:])
	s.Value[s.Cursor] = r
	s.Cursor++
}

func (s *TextInputState) deleteAt(i int) bool {
	if i < 0 || i >= len(s.Value) {
		return false
	}
	s.Value = append(s.Value[:i], s.Value[i+1:]...)
	return true
}

func (t TextInput) TypeName() string { return "text-input" }

func (t TextInput) Clone() core.Element { return t }

func (t TextInput) Style() core.Style {
	return core.Style{Width: t.Width, Background: t.Background, Foreground: t.Color}
}

func (t TextInput) DefaultState() any { return &TextInputState{} }

// IntrinsicSize is one line high. Without an explicit width the field fits
// its content plus room for the cursor.
func (t TextInput) IntrinsicSize(m graphics.TextMeasurer, state any, maxWidth float64) graphics.Size {
	h := m.LineHeight()
	if t.Width > 0 {
		return graphics.Size{Width: t.Width, Height: h}
	}
	s := core.StateAs[TextInputState](t.TypeName(), state)
	shown := s.Text()
	if shown == "" {
		shown = t.Placeholder
	}
	w := m.MeasureText(shown).Width + m.MeasureText(" ").Width
	if maxWidth > 0 {
		w = min(w, maxWidth)
	}
	return graphics.Size{Width: w, Height: h}
}

func (t TextInput) Draw(r rendering.Renderer, box graphics.Rect, state any) {
	if !t.Background.IsTransparent() {
		r.FillRect(box, t.Background)
	}
	s := core.StateAs[TextInputState](t.TypeName(), state)
	if len(s.Value) == 0 {
		if t.Placeholder != "" {
			r.DrawText(box.Origin(), t.Placeholder, rendering.TextStyle{Color: t.Color})
		}
		return
	}
	r.DrawText(box.Origin(), s.Text(), rendering.TextStyle{Color: t.Color, Underline: true})
}

// HandleEvent edits the value on key input.
func (t TextInput) HandleEvent(state any, ev core.Event) core.Event {
	ke, ok := ev.(core.KeyEvent)
	if !ok {
		return ev
	}
	s := core.StateAs[TextInputState](t.TypeName(), state)
	switch ke.Key {
	case core.KeyRune:
		s.insert(ke.Rune)
	case core.KeyBackspace:
		if s.deleteAt(s.Cursor - 1) {
			s.Cursor--
		}
	case core.KeyDelete:
		s.deleteAt(s.Cursor)
	case core.KeyLeft:
		s.Cursor = max(s.Cursor-1, 0)
	case core.KeyRight:
		s.Cursor = min(s.Cursor+1, len(s.Value))
	case core.KeyHome:
		s.Cursor = 0
	case core.KeyEnd:
		s.Cursor = len(s.Value)
	case core.KeyEnter:
		submit := core.SubmitEvent{Value: s.Text()}
		if t.ClearOnSubmit {
			s.SetText("")
		}
		return submit
	default:
		return ev
	}
	return nil
}
