package core

import "github.com/go-drift/fiber/pkg/errors"

// Stateful builds a component over a typed state S. The stored state is a
// *S created from init on first mount; view and update receive it directly:
//
//	todo := core.Stateful("todo.list",
//	    func() todoState { return todoState{} },
//	    func(s *todoState, props any, children []*core.Node, id core.ID) *core.Node { ... },
//	    func(s *todoState, ev core.Event) core.Update { ... },
//	)
//
// update may be nil. Reaching view or update with a state of another type is
// a contract violation.
func Stateful[S any](
	tag string,
	init func() S,
	view func(state *S, props any, children []*Node, id ID) *Node,
	update func(state *S, ev Event) Update,
) *Component {
	c := &Component{
		Tag: tag,
		View: func(state any, props any, children []*Node, id ID) *Node {
			return view(StateAs[S](tag, state), props, children, id)
		},
		DefaultState: func() any {
			var s S
			if init != nil {
				s = init()
			}
			return &s
		},
	}
	if update != nil {
		c.Update = func(state any, ev Event) Update {
			return update(StateAs[S](tag, state), ev)
		}
	}
	return c
}

// Stateless builds a component without state.
func Stateless(tag string, view func(props any, children []*Node) *Node) *Component {
	return &Component{
		Tag: tag,
		View: func(_ any, props any, children []*Node, _ ID) *Node {
			return view(props, children)
		},
	}
}

// StateAs downcasts an opaque state value. A mismatch means the component's
// declared state type disagrees with its runtime use and panics with a
// contract violation.
func StateAs[S any](tag string, state any) *S {
	s, ok := state.(*S)
	if !ok {
		var want *S
		errors.Violation("core.StateAs", tag, "state is %T, want %T", state, want)
	}
	return s
}

// PropsAs downcasts props, returning the zero value when props is nil.
// Any other mismatch is a contract violation.
func PropsAs[P any](tag string, props any) P {
	if props == nil {
		var zero P
		return zero
	}
	p, ok := props.(P)
	if !ok {
		var want P
		errors.Violation("core.PropsAs", tag, "props are %T, want %T", props, want)
	}
	return p
}
