// Package widgets provides the concrete element types: Container, Text,
// Image and TextInput.
//
// Elements are plain values. The reconciler clones them into the element
// tree on every pass, so anything that must survive a re-render (scroll
// position, the text being edited) lives in element state instead:
//
//	core.Elem(widgets.Container{Overflow: core.OverflowScroll, Height: 10},
//	    core.Elem(widgets.Text{Content: "first"}),
//	    core.Elem(widgets.Text{Content: "second"}),
//	)
//
// The state of a scrolling container is a [*ScrollState]; the state of a
// text input is a [*TextInputState].
package widgets
