package optimistic

import "sync"

// Store holds the rendered records of one list, in display order.
type Store[T any, ID comparable] struct {
	idOf func(T) ID

	mu       sync.RWMutex
	items    []T
	version  uint64
	onChange func()
}

// Snapshot is a removed record and the position it was removed from.
type Snapshot[T any] struct {
	Item  T
	Index int
}

func NewStore[T any, ID comparable](idOf func(T) ID, items []T) *Store[T, ID] {
	return &Store[T, ID]{
		idOf:  idOf,
		items: append([]T(nil), items...),
	}
}

// OnChange registers a hook run after every change (outside the store lock).
func (s *Store[T, ID]) OnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Items returns a copy of the records.
func (s *Store[T, ID]) Items() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]T(nil), s.items...)
}

func (s *Store[T, ID]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// changes counts the mutations of the store so far.
func (s *Store[T, ID]) changes() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

func (s *Store[T, ID]) Get(id ID) (T, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.indexLocked(id); i >= 0 {
		return s.items[i], true
	}
	var zero T
	return zero, false
}

// ApplyOptimistic replaces the record for id with transform(record).
func (s *Store[T, ID]) ApplyOptimistic(id ID, transform func(T) T) bool {
	return s.update(id, transform)
}

// Rollback re-applies the inverse of an earlier transform.
func (s *Store[T, ID]) Rollback(id ID, inverse func(T) T) bool {
	return s.update(id, inverse)
}

// Remove drops the record for id and returns what is needed to put it back.
func (s *Store[T, ID]) Remove(id ID) (Snapshot[T], bool) {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return Snapshot[T]{}, false
	}
	snap := Snapshot[T]{Item: s.items[i], Index: i}
	s.items = append(s.items[:i:i], s.items[i+1:]...)
	hook := s.bumpLocked()
	s.mu.Unlock()
	notify(hook)
	return snap, true
}

// Restore reinserts a removed record at its old position (clamped to the
// current length). It does nothing if the id is already present again.
func (s *Store[T, ID]) Restore(snap Snapshot[T]) bool {
	s.mu.Lock()
	if s.indexLocked(s.idOf(snap.Item)) >= 0 {
		s.mu.Unlock()
		return false
	}
	i := snap.Index
	if i < 0 {
		i = 0
	}
	if i > len(s.items) {
		i = len(s.items)
	}
	items := make([]T, 0, len(s.items)+1)
	items = append(items, s.items[:i]...)
	items = append(items, snap.Item)
	items = append(items, s.items[i:]...)
	s.items = items
	hook := s.bumpLocked()
	s.mu.Unlock()
	notify(hook)
	return true
}

// Put replaces the record with the same id, or appends it.
func (s *Store[T, ID]) Put(item T) {
	s.mu.Lock()
	if i := s.indexLocked(s.idOf(item)); i >= 0 {
		s.items[i] = item
	} else {
		s.items = append(s.items, item)
	}
	hook := s.bumpLocked()
	s.mu.Unlock()
	notify(hook)
}

// ReplaceAll swaps in authoritative records wholesale.
func (s *Store[T, ID]) ReplaceAll(items []T) {
	s.mu.Lock()
	s.items = append([]T(nil), items...)
	hook := s.bumpLocked()
	s.mu.Unlock()
	notify(hook)
}

func (s *Store[T, ID]) update(id ID, fn func(T) T) bool {
	s.mu.Lock()
	i := s.indexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.items[i] = fn(s.items[i])
	hook := s.bumpLocked()
	s.mu.Unlock()
	notify(hook)
	return true
}

func (s *Store[T, ID]) indexLocked(id ID) int {
	for i, it := range s.items {
		if s.idOf(it) == id {
			return i
		}
	}
	return -1
}

func (s *Store[T, ID]) bumpLocked() func() {
	s.version++
	return s.onChange
}

func notify(hook func()) {
	if hook != nil {
		hook()
	}
}
