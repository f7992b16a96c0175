package core_test

import (
	"fmt"

	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
	"github.com/go-drift/fiber/pkg/rendering"
)

type word struct{ text string }

func (w word) TypeName() string                            { return "word" }
func (w word) Clone() core.Element                         { return w }
func (w word) Style() core.Style                           { return core.Style{} }
func (w word) DefaultState() any                           { return nil }
func (w word) Draw(rendering.Renderer, graphics.Rect, any) {}

// This example shows identities surviving a re-render and state for a
// removed node being collected.
func ExampleBuildOwner_Rebuild() {
	owner := core.NewBuildOwner(core.NewIDAllocator())

	owner.Rebuild(core.Elem(word{"list"}, core.Elem(word{"Foo"}), core.Elem(word{"Bar"})))
	fmt.Println(owner.Tree().IDs().Sorted())

	stats := owner.Rebuild(core.Elem(word{"list"}, core.Elem(word{"Bar"})))
	fmt.Println(owner.Tree().IDs().Sorted(), stats.Minted)

	// Output:
	// [1 2 3]
	// [1 2] 0
}

// This example shows a typed stateful component.
func ExampleStateful() {
	counter := core.Stateful("counter",
		func() int { return 3 },
		func(n *int, _ any, _ []*core.Node, id core.ID) *core.Node {
			return core.Elem(word{fmt.Sprintf("count=%d", *n)})
		},
		nil,
	)

	owner := core.NewBuildOwner(core.NewIDAllocator())
	owner.Rebuild(core.Comp(counter, nil))
	state, _ := owner.ComponentStates().Get(owner.Tree().Root().ID)
	fmt.Println(*state.(*int))

	// Output:
	// 3
}
