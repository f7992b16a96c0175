package widgets

import (
	"github.com/go-drift/fiber/pkg/core"
	"github.com/go-drift/fiber/pkg/graphics"
)

// ScrollState is the element state of a [Container]. Offset is clamped to
// [0, Max]; Max is refreshed by the layout solver on every frame.
type ScrollState struct {
	Axis   core.Axis
	Offset float64
	Max    float64
}

// SetExtent records the content and viewport extents along axis and clamps
// the current offset.
func (s *ScrollState) SetExtent(axis core.Axis, content, viewport float64) {
	s.Axis = axis
	s.Max = max(content-viewport, 0)
	s.Offset = clamp(s.Offset, 0, s.Max)
}

// ScrollBy moves the offset by delta and reports whether it changed.
func (s *ScrollState) ScrollBy(delta float64) bool {
	next := clamp(s.Offset+delta, 0, s.Max)
	if next == s.Offset {
		return false
	}
	s.Offset = next
	return true
}

// ScrollOffset returns the translation applied to the container's children.
func (s *ScrollState) ScrollOffset() graphics.Offset {
	if s.Axis == core.AxisHorizontal {
		return graphics.Offset{X: -s.Offset}
	}
	return graphics.Offset{Y: -s.Offset}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
