package optimistic

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("http %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []Outcome
	kinds    []ErrorKind
}

func (o *recordingObserver) ObserveMutation(_, _ string, outcome Outcome, kind ErrorKind, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, outcome)
	o.kinds = append(o.kinds, kind)
}

func newTestList(items []rec, fetch FetchFunc[rec]) (*List[rec, string], *recordingObserver) {
	obs := &recordingObserver{}
	return NewList("test", recID, items, fetch, ListOpts{Observer: obs}), obs
}

func toggle(id string, call func(ctx context.Context) error) Action[rec, string] {
	return Action[rec, string]{Name: "toggle", ID: id, Effect: Flip[rec, string](flipDone), Call: call}
}

func setMood(id, mood string, call func(ctx context.Context) error) Action[rec, string] {
	return Action[rec, string]{
		Name: "mood",
		ID:   id,
		Effect: Replace[rec, string](func(r rec) rec {
			r.Mood = mood
			return r
		}),
		Call:   call,
		Policy: Supersede,
	}
}

func ok(context.Context) error { return nil }

func TestDispatch_FailedToggleRevertsAndUnlocks(t *testing.T) {
	l, obs := newTestList([]rec{{ID: "h1"}}, nil)

	var seen bool
	out, err := l.Dispatch(context.Background(), toggle("h1", func(context.Context) error {
		got, _ := l.Store.Get("h1")
		seen = got.Done
		assert.True(t, l.IsPending("h1"))
		return statusErr(500)
	}))

	require.Error(t, err)
	assert.Equal(t, RolledBack, out)
	assert.True(t, seen, "optimistic value visible while in flight")
	got, _ := l.Store.Get("h1")
	assert.False(t, got.Done)
	assert.False(t, l.IsPending("h1"))
	assert.Equal(t, []ErrorKind{KindRejected}, obs.kinds)
}

func TestDispatch_TransportFailureTreatedLikeRejection(t *testing.T) {
	l, obs := newTestList([]rec{{ID: "h1", Done: true}}, nil)

	out, _ := l.Dispatch(context.Background(), toggle("h1", func(context.Context) error {
		return errors.New("connection refused")
	}))

	assert.Equal(t, RolledBack, out)
	got, _ := l.Store.Get("h1")
	assert.True(t, got.Done)
	assert.Equal(t, []ErrorKind{KindTransport}, obs.kinds)
}

func TestDispatch_SecondActionWhilePendingIsNoop(t *testing.T) {
	l, obs := newTestList([]rec{{ID: "t1"}}, nil)
	calls := 0
	call := func(context.Context) error { calls++; return nil }

	p, began := l.Dispatcher.Begin(context.Background(), toggle("t1", call))
	require.True(t, began)
	version := l.Store.changes()

	_, again := l.Dispatcher.Begin(context.Background(), toggle("t1", call))
	assert.False(t, again)
	assert.Equal(t, uint64(1), l.Guard.current("t1"))
	assert.Equal(t, version, l.Store.changes())
	assert.Equal(t, 0, calls)

	assert.Equal(t, Committed, l.Dispatcher.Settle(p, p.Run()))
	assert.Equal(t, 1, calls)
	assert.Equal(t, []Outcome{Skipped, Committed}, obs.outcomes)
}

func TestDispatch_TwoSequentialTogglesFlipTwice(t *testing.T) {
	l, _ := newTestList([]rec{{ID: "t1"}}, nil)

	out1, _ := l.Dispatch(context.Background(), toggle("t1", ok))
	got, _ := l.Store.Get("t1")
	assert.True(t, got.Done)

	out2, _ := l.Dispatch(context.Background(), toggle("t1", ok))
	got, _ = l.Store.Get("t1")

	assert.Equal(t, Committed, out1)
	assert.Equal(t, Committed, out2)
	assert.False(t, got.Done)
	assert.Equal(t, uint64(2), l.Guard.current("t1"))
}

func TestDispatch_ConvertIgnoresDoubleClickAndRemovesOnSuccess(t *testing.T) {
	l, _ := newTestList([]rec{{ID: "c0"}, {ID: "c1"}}, nil)
	created := 0
	convert := Action[rec, string]{
		Name: "convert",
		ID:   "c1",
		Call: func(context.Context) error { created++; return nil },
		OnSuccess: func(s *Store[rec, string]) {
			s.Remove("c1")
		},
	}

	p, began := l.Dispatcher.Begin(context.Background(), convert)
	require.True(t, began)
	assert.Equal(t, 2, l.Store.Len(), "no anticipation for convert")

	_, again := l.Dispatcher.Begin(context.Background(), convert)
	assert.False(t, again)

	assert.Equal(t, Committed, l.Dispatcher.Settle(p, p.Run()))
	assert.Equal(t, 1, created)
	assert.Equal(t, []string{"c0"}, ids(l.Items()))
}

func TestDispatch_LateResponseForSupersededMoodIsDiscarded(t *testing.T) {
	l, obs := newTestList([]rec{{ID: "today", Mood: "neutral"}}, nil)
	ctx := context.Background()

	var firstCtxErr error
	p1, ok1 := l.Dispatcher.Begin(ctx, setMood("today", "great", func(ctx context.Context) error {
		firstCtxErr = ctx.Err()
		return ctx.Err()
	}))
	require.True(t, ok1)

	p2, ok2 := l.Dispatcher.Begin(ctx, setMood("today", "good", ok))
	require.True(t, ok2)

	assert.Equal(t, Committed, l.Dispatcher.Settle(p2, p2.Run()))
	assert.Equal(t, Stale, l.Dispatcher.Settle(p1, p1.Run()))

	assert.ErrorIs(t, firstCtxErr, context.Canceled, "superseded request is aborted")
	got, _ := l.Store.Get("today")
	assert.Equal(t, "good", got.Mood)
	assert.Equal(t, []Outcome{Committed, Stale}, obs.outcomes)
	assert.Equal(t, 0, l.Dispatcher.Inflight())
}

func TestDispatch_StaleResultHasNoEffectEitherWay(t *testing.T) {
	for _, staleErr := range []error{nil, statusErr(500)} {
		t.Run(fmt.Sprint(staleErr), func(t *testing.T) {
			l, _ := newTestList([]rec{{ID: "m", Mood: "low"}}, nil)
			ctx := context.Background()

			p1, _ := l.Dispatcher.Begin(ctx, setMood("m", "great", ok))
			p2, _ := l.Dispatcher.Begin(ctx, setMood("m", "good", ok))
			version := l.Store.changes()
			requested := l.Settler.Pending()

			assert.Equal(t, Stale, l.Dispatcher.Settle(p1, staleErr))
			assert.Equal(t, version, l.Store.changes())
			assert.Equal(t, requested, l.Settler.Pending())

			l.Dispatcher.Settle(p2, nil)
			got, _ := l.Store.Get("m")
			assert.Equal(t, "good", got.Mood)
		})
	}
}

func TestDispatch_SupersedeSwallowedWhileExclusivePending(t *testing.T) {
	l, _ := newTestList([]rec{{ID: "x"}}, nil)
	p, _ := l.Dispatcher.Begin(context.Background(), toggle("x", ok))

	_, began := l.Dispatcher.Begin(context.Background(), setMood("x", "great", ok))
	assert.False(t, began)

	l.Dispatcher.Settle(p, nil)
	assert.False(t, l.IsPending("x"))
}

func TestDispatch_PanickingCallStillUnlocks(t *testing.T) {
	l, _ := newTestList([]rec{{ID: "a"}}, nil)

	out, err := l.Dispatch(context.Background(), toggle("a", func(context.Context) error {
		panic("boom")
	}))

	var pe *PanicError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, RolledBack, out)
	assert.False(t, l.IsPending("a"))
	got, _ := l.Store.Get("a")
	assert.False(t, got.Done)
}

func TestDispatch_EveryLockIsReleased(t *testing.T) {
	results := []error{nil, statusErr(404), errors.New("eof"), context.Canceled}
	l, _ := newTestList([]rec{{ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}, nil)

	for i, id := range []string{"a", "b", "c", "d"} {
		res := results[i]
		l.Dispatch(context.Background(), toggle(id, func(context.Context) error { return res }))
	}

	assert.Equal(t, 0, l.Guard.Pending())
	assert.Equal(t, 0, l.Dispatcher.Inflight())
}

func TestDispatch_DeleteFailureRestoresPosition(t *testing.T) {
	l, _ := newTestList([]rec{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}, nil)

	out, _ := l.Dispatch(context.Background(), Action[rec, string]{
		Name:   "delete",
		ID:     "t2",
		Effect: Remove[rec, string](),
		Call:   func(context.Context) error { return statusErr(502) },
	})

	assert.Equal(t, RolledBack, out)
	assert.Equal(t, []string{"t1", "t2", "t3"}, ids(l.Items()))
}

func TestDispatch_CloseCancelsInflight(t *testing.T) {
	l, _ := newTestList([]rec{{ID: "a"}}, nil)
	p, _ := l.Dispatcher.Begin(context.Background(), toggle("a", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))

	l.Close()
	err := p.Run()

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, RolledBack, l.Dispatcher.Settle(p, err))
	assert.False(t, l.IsPending("a"))
}

func TestDispatch_SettleTwiceIsIgnored(t *testing.T) {
	l, obs := newTestList([]rec{{ID: "a"}}, nil)
	p, _ := l.Dispatcher.Begin(context.Background(), toggle("a", ok))

	l.Dispatcher.Settle(p, nil)
	assert.Equal(t, Skipped, l.Dispatcher.Settle(p, statusErr(500)))

	got, _ := l.Store.Get("a")
	assert.True(t, got.Done)
	assert.Equal(t, []Outcome{Committed}, obs.outcomes)
}

func TestDispatch_IndependentEntities(t *testing.T) {
	l, _ := newTestList([]rec{{ID: "a"}, {ID: "b"}}, nil)
	ctx := context.Background()

	pa, _ := l.Dispatcher.Begin(ctx, toggle("a", ok))
	pb, began := l.Dispatcher.Begin(ctx, toggle("b", ok))
	require.True(t, began)
	assert.Equal(t, 2, l.Dispatcher.Inflight())

	l.Dispatcher.Settle(pb, statusErr(500))
	l.Dispatcher.Settle(pa, nil)

	a, _ := l.Store.Get("a")
	b, _ := l.Store.Get("b")
	assert.True(t, a.Done)
	assert.False(t, b.Done)
}

func TestDispatch_ConcurrentSupersedeKeepsNewestAlive(t *testing.T) {
	l, _ := newTestList([]rec{{ID: "today"}}, nil)
	ctx := context.Background()
	call := func(ctx context.Context) error { return ctx.Err() }

	const n = 32
	pending := make([]*Pending[rec, string], n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, began := l.Dispatcher.Begin(ctx, setMood("today", fmt.Sprint(i), call))
			assert.True(t, began)
			pending[i] = p
		}(i)
	}
	wg.Wait()

	newest := 0
	for i, p := range pending {
		require.NotNil(t, p)
		if p.Seq > pending[newest].Seq {
			newest = i
		}
	}
	assert.Equal(t, 1, l.Dispatcher.Inflight())
	got, _ := l.Store.Get("today")
	assert.Equal(t, fmt.Sprint(newest), got.Mood, "newest apply is the visible one")

	counts := map[Outcome]int{}
	for _, p := range pending {
		counts[l.Dispatcher.Settle(p, p.Run())]++
	}
	assert.Equal(t, map[Outcome]int{Committed: 1, Stale: n - 1}, counts)
	got, _ = l.Store.Get("today")
	assert.Equal(t, fmt.Sprint(newest), got.Mood)
}
