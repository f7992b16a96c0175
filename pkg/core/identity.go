package core

import (
	"slices"
	"sync/atomic"
)

// ID names a logical UI node across frames. The zero ID is never allocated
// and means "no node".
type ID uint64

// IDAllocator mints identities. IDs are strictly increasing and never
// reused for the lifetime of the allocator; a restarted process starts again
// from 1. Reusing an ID would corrupt the previous/next set difference used to
// collect state, so there is no way to roll the counter back.
type IDAllocator struct {
	last atomic.Uint64
}

// NewIDAllocator returns an allocator whose first ID is 1.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// Next returns a fresh ID. Safe for concurrent use.
func (a *IDAllocator) Next() ID {
	return ID(a.last.Add(1))
}

// Last returns the most recently minted ID, or 0 if none.
func (a *IDAllocator) Last() ID {
	return ID(a.last.Load())
}

// IDSet is a set of identities.
type IDSet map[ID]struct{}

// Has reports whether id is in the set.
func (s IDSet) Has(id ID) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in ascending order.
func (s IDSet) Sorted() []ID {
	out := make([]ID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}
