package core

import (
	"reflect"
	"runtime"

	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

// NodeKind tags the payload of a [Node].
type NodeKind uint8

const (
	// KindElement nodes carry a concrete [Element].
	KindElement NodeKind = iota + 1
	// KindComponent nodes carry a [Component].
	KindComponent
)

func (k NodeKind) String() string {
	switch k {
	case KindElement:
		return "element"
	case KindComponent:
		return "component"
	default:
		return "invalid"
	}
}

// Node is one entry of a declared UI tree. Nodes are never mutated after
// construction and are not retained by the runtime between frames.
type Node struct {
	// Key is a stable identity hint, unique among siblings when non-empty.
	Key string
	// Kind selects which of Component or Element is set.
	Kind      NodeKind
	Component *Component
	Element   Element
	// Props is passed to the component view function.
	Props    any
	Children []*Node
}

// Elem returns an element node.
func Elem(el Element, children ...*Node) *Node {
	return &Node{Kind: KindElement, Element: el, Children: children}
}

// Comp returns a component node.
func Comp(c *Component, props any, children ...*Node) *Node {
	return &Node{Kind: KindComponent, Component: c, Props: props, Children: children}
}

// WithKey returns a copy of n carrying key.
func (n *Node) WithKey(key string) *Node {
	cp := *n
	cp.Key = key
	return &cp
}

// ViewFunc renders a component. It receives the component's stored state,
// its props and children, and its identity, and returns the subtree to
// reconcile in its place. A nil result renders nothing.
type ViewFunc func(state any, props any, children []*Node, id ID) *Node

// UpdateFunc handles an event that targets a component or bubbles through it.
type UpdateFunc func(state any, ev Event) Update

// Component is a function of state, props and children, plus the handler
// that mutates that state.
type Component struct {
	// Tag identifies the component type. Nodes with different tags never
	// share an identity. Empty means the qualified name of View.
	Tag string
	// View is required.
	View ViewFunc
	// Update may be nil for components that do not handle events.
	Update UpdateFunc
	// DefaultState constructs the state on first mount. Nil stores a nil state.
	DefaultState func() any
}

// TagName returns Tag, or the qualified name of the view function.
func (c *Component) TagName() string {
	if c.Tag != "" {
		return c.Tag
	}
	if c.View == nil {
		return ""
	}
	if fn := runtime.FuncForPC(reflect.ValueOf(c.View).Pointer()); fn != nil {
		return fn.Name()
	}
	return ""
}

// Axis is the direction a container stacks its children.
type Axis uint8

const (
	AxisVertical Axis = iota
	AxisHorizontal
)

// Overflow controls how a container treats children that exceed its box.
type Overflow uint8

const (
	OverflowVisible Overflow = iota
	OverflowClip
	OverflowScroll
)

// Style is the subset of styling the runtime reads. Width and Height of zero
// mean "size to content" (or fill, for the root).
type Style struct {
	Width      float64
	Height     float64
	Padding    graphics.EdgeInsets
	Gap        float64
	Direction  Axis
	Overflow   Overflow
	Background graphics.Color
	Foreground graphics.Color
}

// Element is a concrete drawable, layoutable node.
type Element interface {
	// TypeName is the element's type tag.
	TypeName() string
	// Clone returns an independent copy owned by the element tree.
	Clone() Element
	// Style returns the element's style.
	Style() Style
	// DefaultState constructs element-local interaction state. May return nil.
	DefaultState() any
	// Draw submits draw commands for the element's own content.
	Draw(r rendering.Renderer, box graphics.Rect, state any)
}

// IntrinsicSizer is implemented by leaf elements whose size comes from their
// content (text, images). The layout solver calls it with the available width.
type IntrinsicSizer interface {
	IntrinsicSize(m graphics.TextMeasurer, state any, maxWidth float64) graphics.Size
}

// Interactive is implemented by elements that own interaction state. The
// hit (or focused) element sees each event before component handlers do. It
// returns the event that continues bubbling, which may be ev itself, a
// replacement such as a [SubmitEvent], or nil when the event is consumed.
type Interactive interface {
	HandleEvent(state any, ev Event) Event
}

// ScrollOffsetProvider is implemented by element state that shifts the
// content of a scrollable container.
type ScrollOffsetProvider interface {
	ScrollOffset() graphics.Offset
}
