package optimistic

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Policy decides how an action interacts with the per-entity lock.
type Policy int

const (
	// Exclusive actions lock the entity until they settle. A second action on
	// the same entity is swallowed meanwhile.
	Exclusive Policy = iota
	// Supersede actions do not lock. A newer one may start while an older one
	// is in flight; only the newest response counts. Used for upserts where
	// the last write for the key wins anyway (mood for today, daily focus).
	Supersede
)

// Outcome is how a dispatched action ended.
type Outcome string

const (
	Skipped    Outcome = "skipped"
	Committed  Outcome = "committed"
	RolledBack Outcome = "rolled_back"
	Stale      Outcome = "stale"
)

// Action is one user-initiated mutation of one entity.
type Action[T any, ID comparable] struct {
	Name string
	ID   ID

	// Effect is applied before the call. Nil means no visible anticipation.
	Effect Effect[T, ID]

	// Call performs the mutation against the server.
	Call func(ctx context.Context) error

	// OnSuccess runs when the call succeeded and is still the latest.
	OnSuccess func(s *Store[T, ID])

	Policy Policy
}

// Observer is told about every finished action.
type Observer interface {
	ObserveMutation(list, action string, outcome Outcome, kind ErrorKind, took time.Duration)
}

type DispatcherOpts struct {
	List     string
	Logger   *slog.Logger
	Observer Observer
}

// Dispatcher runs actions for one list.
type Dispatcher[T any, ID comparable] struct {
	list     string
	guard    *Guard[ID]
	store    *Store[T, ID]
	settle   *Settler[T, ID]
	log      *slog.Logger
	observer Observer

	// beginMu keeps sequence order, apply order and inflight registration
	// the same when Begin is called from several goroutines.
	beginMu sync.Mutex

	mu       sync.Mutex
	inflight map[ID]*Pending[T, ID]
	started  uint64
	closed   bool
}

func NewDispatcher[T any, ID comparable](guard *Guard[ID], store *Store[T, ID], settle *Settler[T, ID], opts DispatcherOpts) *Dispatcher[T, ID] {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dispatcher[T, ID]{
		list:     opts.List,
		guard:    guard,
		store:    store,
		settle:   settle,
		log:      log,
		observer: opts.Observer,
		inflight: map[ID]*Pending[T, ID]{},
	}
}

// Pending is an action that passed the guard and has not settled yet.
type Pending[T any, ID comparable] struct {
	ID  ID
	Seq uint64

	action  Action[T, ID]
	ctx     context.Context
	cancel  context.CancelFunc
	undo    func()
	started time.Time
	settled bool
}

func (p *Pending[T, ID]) Name() string { return p.action.Name }

// Begin runs the synchronous front half of an action: guard check, sequence,
// lock and optimistic apply. It returns false if the entity is locked. It is
// safe to call from several goroutines.
func (d *Dispatcher[T, ID]) Begin(ctx context.Context, a Action[T, ID]) (*Pending[T, ID], bool) {
	d.beginMu.Lock()
	defer d.beginMu.Unlock()

	seq, ok := d.guard.begin(a.ID, a.Policy == Exclusive)
	if !ok {
		d.observe(a.Name, Skipped, "", 0)
		return nil, false
	}

	p := &Pending[T, ID]{ID: a.ID, Seq: seq, action: a, started: time.Now()}
	p.ctx, p.cancel = context.WithCancel(ctx)
	if a.Effect != nil {
		if undo, applied := a.Effect(d.store, a.ID); applied {
			p.undo = undo
		}
	}

	d.mu.Lock()
	if prev := d.inflight[a.ID]; prev != nil {
		// Superseded: abort the older request; its response is discarded by
		// sequence anyway.
		prev.cancel()
	}
	d.inflight[a.ID] = p
	d.started++
	if d.closed {
		p.cancel()
	}
	d.mu.Unlock()
	return p, true
}

// Run performs the server call. It is the only blocking step and may run on
// any goroutine.
func (p *Pending[T, ID]) Run() (err error) {
	if p.action.Call == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = &PanicError{Action: p.action.Name, Value: r}
		}
	}()
	return p.action.Call(p.ctx)
}

// Settle runs the back half of an action with the result of Run.
func (d *Dispatcher[T, ID]) Settle(p *Pending[T, ID], callErr error) Outcome {
	if p == nil || p.settled {
		return Skipped
	}
	p.settled = true
	p.cancel()
	undo := p.undo
	p.undo = nil
	took := time.Since(p.started)

	if !d.guard.IsLatest(p.ID, p.Seq) {
		d.log.Debug("discarded stale mutation result", "list", d.list, "action", p.action.Name, "id", p.ID, "seq", p.Seq)
		d.observe(p.action.Name, Stale, "", took)
		return Stale
	}

	d.mu.Lock()
	if d.inflight[p.ID] == p {
		delete(d.inflight, p.ID)
	}
	d.mu.Unlock()

	var outcome Outcome
	var kind ErrorKind
	if callErr != nil {
		if undo != nil {
			undo()
		}
		kind = Classify(callErr)
		d.log.Warn("mutation failed; reverted", "list", d.list, "action", p.action.Name, "id", p.ID, "seq", p.Seq, "kind", kind, "err", callErr)
		outcome = RolledBack
	} else {
		if p.action.OnSuccess != nil {
			p.action.OnSuccess(d.store)
		}
		outcome = Committed
	}

	d.guard.Unlock(p.ID)
	if d.settle != nil {
		d.settle.Request()
	}
	d.observe(p.action.Name, outcome, kind, took)
	return outcome
}

// Dispatch runs an action start to finish on the calling goroutine.
func (d *Dispatcher[T, ID]) Dispatch(ctx context.Context, a Action[T, ID]) (Outcome, error) {
	p, ok := d.Begin(ctx, a)
	if !ok {
		return Skipped, nil
	}
	err := p.Run()
	return d.Settle(p, err), err
}

// Inflight returns the number of entities with an unsettled mutation.
func (d *Dispatcher[T, ID]) Inflight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.inflight)
}

// Started returns how many actions have passed the guard so far.
func (d *Dispatcher[T, ID]) Started() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.started
}

// Close aborts every in-flight call. Their results still need to be passed to
// Settle for the entities to unlock.
func (d *Dispatcher[T, ID]) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	for _, p := range d.inflight {
		p.cancel()
	}
}

func (d *Dispatcher[T, ID]) observe(action string, outcome Outcome, kind ErrorKind, took time.Duration) {
	if d.observer != nil {
		d.observer.ObserveMutation(d.list, action, outcome, kind, took)
	}
}
