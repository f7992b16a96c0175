package core

import "slices"

// Store maps identities to opaque state. Two stores exist per [BuildOwner]:
// component state and element interaction state. A Store is not safe for
// concurrent use.
type Store struct {
	entries map[ID]any
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{entries: make(map[ID]any)}
}

// GetOrCreate returns the state for id, constructing it with ctor on first
// use. A nil ctor stores a nil state; the entry still exists.
func (s *Store) GetOrCreate(id ID, ctor func() any) any {
	if v, ok := s.entries[id]; ok {
		return v
	}
	var v any
	if ctor != nil {
		v = ctor()
	}
	s.entries[id] = v
	return v
}

// Get returns the state for id.
func (s *Store) Get(id ID) (any, bool) {
	v, ok := s.entries[id]
	return v, ok
}

// Has reports whether an entry exists for id.
func (s *Store) Has(id ID) bool {
	_, ok := s.entries[id]
	return ok
}

// Len returns the number of entries.
func (s *Store) Len() int {
	return len(s.entries)
}

// IDs returns the stored identities in ascending order.
func (s *Store) IDs() []ID {
	out := make([]ID, 0, len(s.entries))
	for id := range s.entries {
		out = append(out, id)
	}
	slices.Sort(out)
	return out
}

// RemoveUnused drops the entries for identities in old but not in next and
// returns how many were removed. It must run once per frame, after
// reconciliation and before the next pass.
func (s *Store) RemoveUnused(old, next IDSet) int {
	removed := 0
	for id := range old {
		if next.Has(id) {
			continue
		}
		if _, ok := s.entries[id]; ok {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}
