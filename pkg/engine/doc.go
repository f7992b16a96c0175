// Package engine dispatches input into the reconciled trees and runs the
// application worker.
//
// The platform loop and the worker talk over a [Coordinator]: the platform
// posts [Envelope]s and, for input that must be observed before it moves on
// (resize, pointer, key, surface creation), blocks until the worker acks.
// The worker owns the [core.BuildOwner] and both state stores; nothing else
// touches them.
//
// Within the worker, [HitTest] finds the element under a pointer, the hit
// element gets the first look at the event, and [Bubble] then walks the
// component tree upward invoking update handlers. Work returned by handlers
// is queued on an [UpdateQueue] and run off the worker when the platform
// sends a [ProcessQueue] tick.
package engine
