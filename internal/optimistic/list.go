package optimistic

import (
	"context"
	"log/slog"
)

// List is the optimistic machinery for one collection of records.
type List[T any, ID comparable] struct {
	Name       string
	Guard      *Guard[ID]
	Store      *Store[T, ID]
	Dispatcher *Dispatcher[T, ID]
	Settler    *Settler[T, ID]
}

type ListOpts struct {
	Logger   *slog.Logger
	Observer Observer
}

// NewList wires a guard, store, dispatcher and settler for one list. fetch
// may be nil for lists that are never reconciled.
func NewList[T any, ID comparable](name string, idOf func(T) ID, items []T, fetch FetchFunc[T], opts ListOpts) *List[T, ID] {
	st := NewStore(idOf, items)
	g := NewGuard[ID]()
	se := NewSettler(st, fetch, name, opts.Logger)
	d := NewDispatcher(g, st, se, DispatcherOpts{List: name, Logger: opts.Logger, Observer: opts.Observer})
	se.watch(d)
	return &List[T, ID]{Name: name, Guard: g, Store: st, Dispatcher: d, Settler: se}
}

// Hydrate replaces the records with a fresh fetch, outside the settle cycle.
func (l *List[T, ID]) Hydrate(ctx context.Context) error {
	items, err := l.Settler.Fetch(ctx)
	if err != nil {
		return err
	}
	l.Store.ReplaceAll(items)
	return nil
}

func (l *List[T, ID]) Items() []T { return l.Store.Items() }

func (l *List[T, ID]) IsPending(id ID) bool { return l.Guard.IsPending(id) }

func (l *List[T, ID]) Dispatch(ctx context.Context, a Action[T, ID]) (Outcome, error) {
	return l.Dispatcher.Dispatch(ctx, a)
}

func (l *List[T, ID]) Close() { l.Dispatcher.Close() }
