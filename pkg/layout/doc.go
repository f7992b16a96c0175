// Package layout positions the element tree. A [Solver] writes an absolute
// box into every [core.ElementNode]; [Flow] is the solver the runtime uses by
// default, stacking children along each container's direction.
//
// Leaves with content-derived size implement [core.IntrinsicSizer] and are
// measured with a [graphics.TextMeasurer]: [PixelMeasurer] for pixel
// surfaces, [CellMeasurer] for terminal cells.
package layout
