// Package demo holds the applications the fiber command can run.
package demo

import (
	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
)

// Demo is a runnable application. Sizes depend on the platform's units, so
// both the tree and the scripted input are built from its measurer.
type Demo struct {
	Name  string
	Short string
	Root  func(m graphics.TextMeasurer) *core.Node
	// Script is the input replayed on the headless platform.
	Script func(m graphics.TextMeasurer) []core.Event
}

// All returns every demo, in listing order.
func All() []Demo {
	return []Demo{Counter(), Todo()}
}

// Lookup finds a demo by name.
func Lookup(name string) (Demo, bool) {
	for _, d := range All() {
		if d.Name == name {
			return d, true
		}
	}
	return Demo{}, false
}

func tap(x, y float64) core.PointerEvent {
	return core.PointerEvent{Phase: core.PointerDown, Position: graphics.Offset{X: x, Y: y}}
}

func release(x, y float64) core.PointerEvent {
	return core.PointerEvent{Phase: core.PointerUp, Position: graphics.Offset{X: x, Y: y}}
}

func typed(text string) []core.Event {
	out := make([]core.Event, 0, len(text))
	for _, r := range text {
		out = append(out, core.KeyEvent{Key: core.KeyRune, Rune: r})
	}
	return out
}
