package graphics

// TextMeasurer reports the extent of a single line of text. The layout
// solver supplies one to intrinsically sized leaves.
type TextMeasurer interface {
	MeasureText(text string) Size
	LineHeight() float64
}
