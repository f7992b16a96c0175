package testing

import (
	"fmt"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
)

// center returns the center of the first element matched by finder. A
// component match resolves to the nearest element below it.
func (t *Tester) center(op string, finder Finder) (graphics.Offset, error) {
	result := t.Find(finder)
	if !result.Exists() {
		return graphics.Offset{}, fmt.Errorf("%s: finder matched no nodes: %s", op, finder.Description())
	}
	box, ok := t.elementBox(result.First())
	if !ok {
		return graphics.Offset{}, fmt.Errorf("%s: node has no element: %s", op, finder.Description())
	}
	return graphics.Offset{
		X: box.Left + box.Width()/2,
		Y: box.Top + box.Height()/2,
	}, nil
}

func (t *Tester) elementBox(id core.ID) (graphics.Rect, bool) {
	tree := t.Tree()
	for {
		if box, ok := t.Box(id); ok {
			return box, true
		}
		n, ok := tree.Lookup(id)
		if !ok || len(n.Children) == 0 {
			return graphics.Rect{}, false
		}
		id = tree.At(n.Children[0]).ID
	}
}

// Tap simulates a tap at the center of the first node matched by finder.
func (t *Tester) Tap(finder Finder) error {
	pos, err := t.center("Tap", finder)
	if err != nil {
		return err
	}
	t.TapAt(pos)
	return nil
}

// TapAt sends a pointer down and up at pos.
func (t *Tester) TapAt(pos graphics.Offset) {
	t.Send(core.PointerEvent{Phase: core.PointerDown, Position: pos})
	t.Send(core.PointerEvent{Phase: core.PointerUp, Position: pos})
}

// DragFrom sends a down at start, a move to start+delta, then an up.
func (t *Tester) DragFrom(start, delta graphics.Offset) {
	end := start.Add(delta)
	t.Send(core.PointerEvent{Phase: core.PointerDown, Position: start})
	t.Send(core.PointerEvent{Phase: core.PointerMove, Position: end})
	t.Send(core.PointerEvent{Phase: core.PointerUp, Position: end})
}

// Scroll sends a wheel event with delta at the center of the first node
// matched by finder.
func (t *Tester) Scroll(finder Finder, delta graphics.Offset) error {
	pos, err := t.center("Scroll", finder)
	if err != nil {
		return err
	}
	t.Send(core.PointerEvent{Phase: core.PointerScroll, Position: pos, Delta: delta})
	return nil
}

// EnterText taps the first node matched by finder to focus it, then types
// text one rune at a time.
func (t *Tester) EnterText(finder Finder, text string) error {
	if err := t.Tap(finder); err != nil {
		return err
	}
	t.TypeText(text)
	return nil
}

// TypeText sends one rune key event per rune to the focused node.
func (t *Tester) TypeText(text string) {
	for _, r := range text {
		t.Send(core.KeyEvent{Key: core.KeyRune, Rune: r})
	}
}

// PressKey sends a non-printable key to the focused node, or to the root
// when nothing has focus.
func (t *Tester) PressKey(key core.Key) {
	t.Send(core.KeyEvent{Key: key})
}
