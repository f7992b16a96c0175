package engine

import (
	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
)

// Fiber pairs a component node with the element sharing its identity. It is
// only valid for the trees it was built from.
type Fiber struct {
	Component *core.ComponentNode
	Element   *core.ElementNode
}

// HitTest returns the fiber of the element under point: the last match of a
// level-order walk, which is the deepest and, among siblings, the most
// recently painted element containing the point. Children of a clipping
// container that does not contain the point are never considered.
func HitTest(point graphics.Offset, components *core.ComponentTree, elements *core.ElementTree) (Fiber, bool) {
	var (
		hit   Fiber
		found bool
	)
	if components.Len() == 0 {
		return hit, false
	}
	queue := []int{0}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		node := components.At(idx)

		if el, ok := elements.Lookup(node.ID); ok {
			inside := el.Box.Contains(point)
			if inside {
				hit, found = Fiber{Component: node, Element: el}, true
			}
			if !inside && el.Element.Style().Overflow != core.OverflowVisible {
				continue
			}
		}
		queue = append(queue, node.Children...)
	}
	return hit, found
}
