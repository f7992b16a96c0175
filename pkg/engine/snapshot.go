package engine

import (
	"github.com/go-drift/fiber/pkg/core"
)

// Snapshot is an immutable copy of the trees taken after a frame, for
// readers outside the worker goroutine.
type Snapshot struct {
	Frame      uint64          `json:"frame"`
	Components []ComponentInfo `json:"components"`
	Elements   []ElementInfo   `json:"elements"`
	States     StateCounts     `json:"states"`
}

// ComponentInfo describes one component tree node.
type ComponentInfo struct {
	ID       core.ID   `json:"id"`
	Tag      string    `json:"tag"`
	Key      string    `json:"key,omitempty"`
	Parent   core.ID   `json:"parent,omitempty"`
	Children []core.ID `json:"children,omitempty"`
	Element  bool      `json:"element,omitempty"`
	Handler  bool      `json:"handler,omitempty"`
}

// ElementInfo describes one element tree node and its layout box.
type ElementInfo struct {
	ID   core.ID   `json:"id"`
	Type string    `json:"type"`
	Box  SafeRect  `json:"box"`
	Kids []core.ID `json:"children,omitempty"`
}

// StateCounts reports the size of both state stores.
type StateCounts struct {
	Components int `json:"components"`
	Elements   int `json:"elements"`
}

func newSnapshot(frame uint64, owner *core.BuildOwner) *Snapshot {
	tree := owner.Tree()
	elements := owner.ElementTree()
	s := &Snapshot{
		Frame:      frame,
		Components: make([]ComponentInfo, tree.Len()),
		Elements:   make([]ElementInfo, elements.Len()),
		States: StateCounts{
			Components: owner.ComponentStates().Len(),
			Elements:   owner.ElementStates().Len(),
		},
	}
	for i := range s.Components {
		n := tree.At(i)
		info := ComponentInfo{
			ID:      n.ID,
			Tag:     n.Tag,
			Key:     n.Key,
			Parent:  n.Parent,
			Element: n.Element,
			Handler: n.Update != nil,
		}
		for _, c := range n.Children {
			info.Children = append(info.Children, tree.At(c).ID)
		}
		s.Components[i] = info
	}
	for i := range s.Elements {
		n := elements.At(i)
		info := ElementInfo{
			ID:   n.ID,
			Type: n.Element.TypeName(),
			Box: SafeRect{
				Left:   SafeFloat(n.Box.Left),
				Top:    SafeFloat(n.Box.Top),
				Width:  SafeFloat(n.Box.Width()),
				Height: SafeFloat(n.Box.Height()),
			},
		}
		for _, c := range n.Children {
			info.Kids = append(info.Kids, elements.At(c).ID)
		}
		s.Elements[i] = info
	}
	return s
}
