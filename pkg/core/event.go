package core

import (
	"context"

	"github.com/go-drift/fiber/pkg/graphics"
)

// Event is delivered to elements and component update handlers. The set of
// event types is closed.
type Event interface {
	event()
}

// PointerPhase is the kind of pointer input.
type PointerPhase uint8

const (
	PointerDown PointerPhase = iota
	PointerMove
	PointerUp
	PointerScroll
)

func (p PointerPhase) String() string {
	switch p {
	case PointerDown:
		return "down"
	case PointerMove:
		return "move"
	case PointerUp:
		return "up"
	case PointerScroll:
		return "scroll"
	default:
		return "unknown"
	}
}

// PointerEvent is a pointer action at a position in logical coordinates.
// Delta is set for scroll events.
type PointerEvent struct {
	Phase    PointerPhase
	Position graphics.Offset
	Delta    graphics.Offset
}

// Key identifies a non-printable key; printable input uses KeyRune.
type Key uint8

const (
	KeyRune Key = iota
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyTab
	KeyEscape
)

// KeyEvent is keyboard input, routed to the focused node.
type KeyEvent struct {
	Key  Key
	Rune rune
}

// ResizeEvent reports a new surface size.
type ResizeEvent struct {
	Size graphics.Size
}

// Message carries the result of queued asynchronous work back to the
// component that issued it. Err is set when the work failed; the runtime
// does not interpret either field.
type Message struct {
	Value any
	Err   error
}

// SubmitEvent is raised by a text input when Enter is pressed, and bubbles
// to the components above it in place of the key event.
type SubmitEvent struct {
	Value string
}

func (PointerEvent) event() {}
func (KeyEvent) event()     {}
func (ResizeEvent) event()  {}
func (Message) event()      {}
func (SubmitEvent) event()  {}

// Task is deferred asynchronous work returned from an update handler. It
// runs on its own goroutine; its result is delivered as a [Message].
type Task func(ctx context.Context) (any, error)

// Update is the result of an update handler.
type Update struct {
	// Propagate continues bubbling to the next ancestor.
	Propagate bool
	// Work, if set, is queued and run asynchronously.
	Work Task
}

// Continue lets the event keep bubbling.
func Continue() Update { return Update{Propagate: true} }

// Stop consumes the event.
func Stop() Update { return Update{} }

// StopWith consumes the event and queues work.
func StopWith(work Task) Update { return Update{Work: work} }
