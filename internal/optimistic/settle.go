package optimistic

import (
	"context"
	"io"
	"log/slog"
	"sync"
)

// FetchFunc loads the authoritative records for a list.
type FetchFunc[T any] func(ctx context.Context) ([]T, error)

// Settler defers and coalesces reconciliation fetches for one list.
//
// Requests only mark a fetch as wanted. A fetch starts when nothing is running
// and no mutation of the list is in flight, and its result is applied only if
// that is still true when it comes back and nobody asked again meanwhile.
// Otherwise the request stays pending and the next Start picks it up.
type Settler[T any, ID comparable] struct {
	store *Store[T, ID]
	fetch FetchFunc[T]
	log   *slog.Logger
	list  string

	// busy reports mutations in flight; started counts mutations begun.
	busy    func() bool
	started func() uint64

	mu       sync.Mutex
	pending  bool
	running  bool
	requests uint64
	applied  uint64
}

// Ticket identifies one started fetch.
type Ticket struct {
	requests uint64
	started  uint64
}

func NewSettler[T any, ID comparable](store *Store[T, ID], fetch FetchFunc[T], list string, log *slog.Logger) *Settler[T, ID] {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Settler[T, ID]{
		store:   store,
		fetch:   fetch,
		log:     log,
		list:    list,
		busy:    func() bool { return false },
		started: func() uint64 { return 0 },
	}
}

// watch ties the settler to the dispatcher of the same list.
func (s *Settler[T, ID]) watch(d *Dispatcher[T, ID]) {
	s.busy = func() bool { return d.Inflight() > 0 }
	s.started = d.Started
}

// Request marks a reconciliation as wanted.
func (s *Settler[T, ID]) Request() {
	s.mu.Lock()
	s.pending = true
	s.requests++
	s.mu.Unlock()
}

func (s *Settler[T, ID]) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

// Ready reports whether Start would hand out a ticket now.
func (s *Settler[T, ID]) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readyLocked()
}

func (s *Settler[T, ID]) readyLocked() bool {
	return s.pending && !s.running && s.fetch != nil && !s.busy()
}

// Start claims the pending request. The caller must run Fetch and pass the
// result to Finish.
func (s *Settler[T, ID]) Start() (Ticket, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.readyLocked() {
		return Ticket{}, false
	}
	s.pending = false
	s.running = true
	return Ticket{requests: s.requests, started: s.started()}, true
}

func (s *Settler[T, ID]) Fetch(ctx context.Context) ([]T, error) {
	if s.fetch == nil {
		return s.store.Items(), nil
	}
	return s.fetch(ctx)
}

// Finish applies a fetch result if it is still safe to. It reports whether the
// store was replaced.
func (s *Settler[T, ID]) Finish(t Ticket, items []T, err error) bool {
	s.mu.Lock()
	s.running = false
	if err != nil {
		s.mu.Unlock()
		s.log.Warn("reconcile fetch failed", "list", s.list, "err", err)
		return false
	}
	if s.busy() || s.started() != t.started || s.requests != t.requests {
		// A mutation started or settled while fetching; this result may
		// predate it.
		s.pending = true
		s.mu.Unlock()
		return false
	}
	s.applied++
	s.mu.Unlock()

	s.store.ReplaceAll(items)
	return true
}

// Flush runs one reconciliation inline if one is due.
func (s *Settler[T, ID]) Flush(ctx context.Context) (bool, error) {
	t, ok := s.Start()
	if !ok {
		return false, nil
	}
	items, err := s.Fetch(ctx)
	return s.Finish(t, items, err), err
}

// appliedCount returns how many fetch results replaced the store.
func (s *Settler[T, ID]) appliedCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}
