package optimistic

// Effect applies an optimistic change to one record and returns the undo for
// it. ok is false when the record is not in the store; nothing changed then.
//
// The undo closure is the only thing holding a snapshot of the prior state.
// The dispatcher drops it when the mutation settles.
type Effect[T any, ID comparable] func(s *Store[T, ID], id ID) (undo func(), ok bool)

// Flip is for self-inverse changes: applying fn twice restores the record.
func Flip[T any, ID comparable](fn func(T) T) Effect[T, ID] {
	return func(s *Store[T, ID], id ID) (func(), bool) {
		if !s.ApplyOptimistic(id, fn) {
			return nil, false
		}
		return func() { s.Rollback(id, fn) }, true
	}
}

// Replace is for changes that are not their own inverse. The undo puts back
// the record as it was before fn ran.
func Replace[T any, ID comparable](fn func(T) T) Effect[T, ID] {
	return func(s *Store[T, ID], id ID) (func(), bool) {
		prev, ok := s.Get(id)
		if !ok {
			return nil, false
		}
		s.ApplyOptimistic(id, fn)
		return func() {
			s.Rollback(id, func(T) T { return prev })
		}, true
	}
}

// Remove takes the record out of the list; the undo restores it in place.
func Remove[T any, ID comparable]() Effect[T, ID] {
	return func(s *Store[T, ID], id ID) (func(), bool) {
		snap, ok := s.Remove(id)
		if !ok {
			return nil, false
		}
		return func() { s.Restore(snap) }, true
	}
}
