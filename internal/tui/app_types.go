package tui

import (
	"time"

	"protanni/internal/model"
	"protanni/internal/optimistic"
)

type tab int

const (
	tabToday tab = iota
	tabTasks
	tabHabits
	tabInbox
	tabReview
)

var tabNames = []string{"Today", "Tasks", "Habits", "Inbox", "Review"}

func (t tab) String() string { return tabNames[t] }

func parseTab(s string) tab {
	for i, n := range tabNames {
		if n == s {
			return tab(i)
		}
	}
	return tabToday
}

type inputKind int

const (
	inputNone inputKind = iota
	inputTask
	inputHabit
	inputCapture
	inputFocus
)

const (
	settleInterval           = 300 * time.Millisecond
	minibufferAutoClearAfter = 4 * time.Second
)

type settleTickMsg struct{}

// mutationDoneMsg carries a finished server call back to the update loop,
// where settle applies its result.
type mutationDoneMsg struct {
	action string
	err    error
	settle func() optimistic.Outcome
}

// settleDoneMsg carries a reconcile fetch back to the update loop.
type settleDoneMsg struct {
	list   string
	err    error
	finish func() bool
}

type createdMsg struct {
	what string
	err  error
}

type reviewMsg struct {
	review model.WeeklyReview
	err    error
}
