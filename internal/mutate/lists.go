// Package mutate binds the optimistic lists to the API client. The dashboard
// and the CLI build their mutations here so both go through the same guard,
// store and settle cycle.
package mutate

import (
	"context"
	"log/slog"

	"protanni/internal/api"
	"protanni/internal/clock"
	"protanni/internal/model"
	"protanni/internal/optimistic"
	"protanni/internal/viewstate"
)

const (
	ListTasks  = "tasks"
	ListHabits = "habits"
	ListInbox  = "inbox"
	ListMood   = "mood"
	ListFocus  = "focus"
)

type (
	TaskList    = optimistic.List[model.Task, string]
	HabitList   = optimistic.List[model.Habit, string]
	CaptureList = optimistic.List[model.Capture, string]
	MoodList    = optimistic.List[model.MoodCheckin, string]
	FocusList   = optimistic.List[model.DailyFocus, string]
)

type Options struct {
	Logger   *slog.Logger
	Observer optimistic.Observer
	Clock    clock.Clock
	Timezone string
	// View returns the current filters. It is read on every fetch, possibly
	// from another goroutine. Nil means defaults.
	View func() viewstate.State
}

// Lists is one optimistic list per dashboard tab. The Today tab is backed by
// two lists, since mood and focus are separate entities on the server.
type Lists struct {
	client *api.Client
	clock  clock.Clock
	tz     string
	view   func() viewstate.State

	Tasks  *TaskList
	Habits *HabitList
	Inbox  *CaptureList
	Mood   *MoodList
	Focus  *FocusList
}

func NewLists(c *api.Client, opts Options) *Lists {
	l := &Lists{client: c, clock: opts.Clock, tz: opts.Timezone, view: opts.View}
	if l.clock == nil {
		l.clock = clock.System{}
	}
	if l.view == nil {
		l.view = func() viewstate.State { return *viewstate.Default() }
	}
	lo := optimistic.ListOpts{Logger: opts.Logger, Observer: opts.Observer}
	l.Tasks = optimistic.NewList(ListTasks, func(t model.Task) string { return t.ID }, nil, l.fetchTasks, lo)
	l.Habits = optimistic.NewList(ListHabits, func(h model.Habit) string { return h.ID }, nil, l.fetchHabits, lo)
	l.Inbox = optimistic.NewList(ListInbox, func(c model.Capture) string { return c.ID }, nil, l.fetchCaptures, lo)
	l.Mood = optimistic.NewList(ListMood, func(m model.MoodCheckin) string { return model.MoodID(m.CheckinDate) }, nil, l.fetchMood, lo)
	l.Focus = optimistic.NewList(ListFocus, func(model.DailyFocus) string { return model.FocusID }, nil, l.fetchFocus, lo)
	return l
}

func (l *Lists) Client() *api.Client { return l.client }

// Date is today's key in the configured timezone.
func (l *Lists) Date() string { return clock.Today(l.clock, l.tz) }

func (l *Lists) fetchTasks(ctx context.Context) ([]model.Task, error) {
	v := l.view()
	tasks, err := l.client.Tasks(ctx, v.TaskQuery().Get("area"))
	if err != nil {
		return nil, err
	}
	return v.FilterTasks(tasks), nil
}

func (l *Lists) fetchHabits(ctx context.Context) ([]model.Habit, error) {
	return l.client.Habits(ctx)
}

// fetchCaptures asks for one status when filters go to the server, and for
// every status otherwise so the local filter has something to work on.
func (l *Lists) fetchCaptures(ctx context.Context) ([]model.Capture, error) {
	v := l.view()
	if status := v.CaptureQuery().Get("status"); status != "" {
		return l.client.Captures(ctx, model.CaptureStatus(status))
	}
	var all []model.Capture
	for _, s := range []model.CaptureStatus{model.CaptureInbox, model.CaptureProcessed, model.CaptureArchived} {
		cs, err := l.client.Captures(ctx, s)
		if err != nil {
			return nil, err
		}
		all = append(all, cs...)
	}
	return v.FilterCaptures(all), nil
}

// fetchMood always yields a record for today, blank when there is no
// check-in yet, so a first pick has something to apply to.
func (l *Lists) fetchMood(ctx context.Context) ([]model.MoodCheckin, error) {
	m, err := l.client.Mood(ctx)
	if err != nil {
		return nil, err
	}
	date := l.Date()
	if m == nil || m.CheckinDate != date {
		return []model.MoodCheckin{{CheckinDate: date}}, nil
	}
	return []model.MoodCheckin{*m}, nil
}

func (l *Lists) fetchFocus(ctx context.Context) ([]model.DailyFocus, error) {
	f, err := l.client.DailyFocus(ctx)
	if err != nil {
		return nil, err
	}
	return []model.DailyFocus{f}, nil
}

// Today joins the mood and focus records for display. ok is false until the
// focus list has loaded.
func (l *Lists) Today() (t model.Today, ok bool) {
	t.Date = l.Date()
	if m, found := l.Mood.Store.Get(model.MoodID(t.Date)); found && m.Mood != "" {
		t.Mood = &m
	}
	t.Focus, ok = l.Focus.Store.Get(model.FocusID)
	return t, ok
}

// HydrateToday loads the two lists behind the Today tab.
func (l *Lists) HydrateToday(ctx context.Context) error {
	if err := l.Mood.Hydrate(ctx); err != nil {
		return err
	}
	return l.Focus.Hydrate(ctx)
}

// TodayPending reports whether a mood or focus call is in flight.
func (l *Lists) TodayPending() bool {
	return l.Mood.Dispatcher.Inflight() > 0 || l.Focus.Dispatcher.Inflight() > 0
}

// Hydrate loads every list.
func (l *Lists) Hydrate(ctx context.Context) error {
	if err := l.Tasks.Hydrate(ctx); err != nil {
		return err
	}
	if err := l.Habits.Hydrate(ctx); err != nil {
		return err
	}
	if err := l.Inbox.Hydrate(ctx); err != nil {
		return err
	}
	return l.HydrateToday(ctx)
}

// Close aborts in-flight calls on every list.
func (l *Lists) Close() {
	l.Tasks.Close()
	l.Habits.Close()
	l.Inbox.Close()
	l.Mood.Close()
	l.Focus.Close()
}

// Apply runs a against a hydrated list start to finish and then reconciles
// the list once. It is the one-shot path used by CLI commands.
func Apply[T any](ctx context.Context, l *optimistic.List[T, string], kind string, a optimistic.Action[T, string]) (optimistic.Outcome, error) {
	if _, ok := l.Store.Get(a.ID); !ok {
		return optimistic.Skipped, NotFoundError{Kind: kind, ID: a.ID}
	}
	outcome, err := l.Dispatch(ctx, a)
	if err != nil {
		return outcome, err
	}
	if _, err := l.Settler.Flush(ctx); err != nil {
		return outcome, err
	}
	return outcome, nil
}
