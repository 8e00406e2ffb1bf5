package tui

import (
	"context"

	"protanni/internal/optimistic"

	tea "github.com/charmbracelet/bubbletea"
)

// beginMutation runs the synchronous half of an action inside Update and
// returns the command that performs the call. A nil command means the entity
// was locked and the action was dropped.
func beginMutation[T any](ctx context.Context, l *optimistic.List[T, string], a optimistic.Action[T, string]) tea.Cmd {
	p, ok := l.Dispatcher.Begin(ctx, a)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		err := p.Run()
		return mutationDoneMsg{
			action: p.Name(),
			err:    err,
			settle: func() optimistic.Outcome { return l.Dispatcher.Settle(p, err) },
		}
	}
}

// startSettle hands out a reconcile fetch for l if one is due.
func startSettle[T any](ctx context.Context, l *optimistic.List[T, string]) tea.Cmd {
	t, ok := l.Settler.Start()
	if !ok {
		return nil
	}
	return func() tea.Msg {
		items, err := l.Settler.Fetch(ctx)
		return settleDoneMsg{
			list:   l.Name,
			err:    err,
			finish: func() bool { return l.Settler.Finish(t, items, err) },
		}
	}
}
