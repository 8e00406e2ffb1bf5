package mutate

import (
	"context"
	"strings"
	"time"

	"protanni/internal/api"
	"protanni/internal/model"
	"protanni/internal/optimistic"
	"protanni/internal/viewstate"
)

type (
	TaskAction    = optimistic.Action[model.Task, string]
	HabitAction   = optimistic.Action[model.Habit, string]
	CaptureAction = optimistic.Action[model.Capture, string]
	MoodAction    = optimistic.Action[model.MoodCheckin, string]
	FocusAction   = optimistic.Action[model.DailyFocus, string]
)

// ToggleTask flips a task between todo and done. The undo restores the exact
// prior record, completion time included.
func (l *Lists) ToggleTask(id string) TaskAction {
	return TaskAction{
		Name:   "toggle task",
		ID:     id,
		Effect: optimistic.Replace[model.Task, string](model.Task.ToggleDone),
		Call: func(ctx context.Context) error {
			_, err := l.client.ToggleTask(ctx, id)
			return err
		},
	}
}

func (l *Lists) DeleteTask(id string) TaskAction {
	return TaskAction{
		Name:   "delete task",
		ID:     id,
		Effect: optimistic.Remove[model.Task, string](),
		Call:   func(ctx context.Context) error { return l.client.DeleteTask(ctx, id) },
	}
}

func (l *Lists) ToggleHabit(id string) HabitAction {
	return HabitAction{
		Name:   "toggle habit",
		ID:     id,
		Effect: optimistic.Flip[model.Habit, string](model.Habit.ToggleDone),
		Call: func(ctx context.Context) error {
			_, err := l.client.ToggleHabit(ctx, id)
			return err
		},
	}
}

func (l *Lists) DeleteHabit(id string) HabitAction {
	return HabitAction{
		Name:   "delete habit",
		ID:     id,
		Effect: optimistic.Remove[model.Habit, string](),
		Call:   func(ctx context.Context) error { return l.client.DeleteHabit(ctx, id) },
	}
}

// ArchiveCapture drops the capture from the current inbox view.
func (l *Lists) ArchiveCapture(id string) CaptureAction {
	return CaptureAction{
		Name:   "archive capture",
		ID:     id,
		Effect: l.leaveView(model.CaptureArchived),
		Call:   func(ctx context.Context) error { return l.client.ArchiveCapture(ctx, id) },
	}
}

func (l *Lists) RestoreCapture(id string) CaptureAction {
	return CaptureAction{
		Name:   "restore capture",
		ID:     id,
		Effect: l.leaveView(model.CaptureInbox),
		Call:   func(ctx context.Context) error { return l.client.RestoreCapture(ctx, id) },
	}
}

// ConvertCapture turns a capture into a task. Nothing moves until the server
// has created the task: the capture stays listed (locked) while the call runs.
// On success it leaves the view, the task list is asked to reconcile so the
// new task shows up there, and onTask (if set) gets the new task id.
func (l *Lists) ConvertCapture(id string, onTask func(taskID string)) CaptureAction {
	var taskID string
	processed := l.leaveView(model.CaptureProcessed)
	return CaptureAction{
		Name: "convert capture",
		ID:   id,
		Call: func(ctx context.Context) error {
			var err error
			taskID, err = l.client.ConvertCapture(ctx, id)
			return err
		},
		OnSuccess: func(s *optimistic.Store[model.Capture, string]) {
			processed(s, id)
			l.Tasks.Settler.Request()
			if onTask != nil {
				onTask(taskID)
			}
		},
	}
}

// leaveView moves a capture to status: it is removed when the view no longer
// shows that status, otherwise updated in place.
func (l *Lists) leaveView(status model.CaptureStatus) optimistic.Effect[model.Capture, string] {
	v := l.view()
	if v.Sync == viewstate.SyncLocal && v.CaptureStatus == string(status) {
		return optimistic.Replace[model.Capture, string](func(c model.Capture) model.Capture {
			c.Status = status
			return c
		})
	}
	return optimistic.Remove[model.Capture, string]()
}

// SetMood records today's mood. Later picks supersede earlier ones. The
// check-in is keyed by date, so it never contends with a focus edit.
func (l *Lists) SetMood(level model.MoodLevel) MoodAction {
	date := l.Date()
	id := model.MoodID(date)
	var saved model.MoodCheckin
	return MoodAction{
		Name:   "set mood",
		ID:     id,
		Policy: optimistic.Supersede,
		Effect: optimistic.Replace[model.MoodCheckin, string](func(m model.MoodCheckin) model.MoodCheckin {
			m.Mood = level
			return m
		}),
		Call: func(ctx context.Context) error {
			var err error
			saved, err = l.client.SetMood(ctx, api.MoodRequest{Mood: level, CheckinDate: date})
			return err
		},
		OnSuccess: func(s *optimistic.Store[model.MoodCheckin, string]) {
			saved.CheckinDate = date
			s.ApplyOptimistic(id, func(model.MoodCheckin) model.MoodCheckin { return saved })
		},
	}
}

// SetFocus stores the daily focus line; blank clears it.
func (l *Lists) SetFocus(text string) FocusAction {
	text = strings.TrimSpace(text)
	return FocusAction{
		Name:   "set focus",
		ID:     model.FocusID,
		Policy: optimistic.Supersede,
		Effect: optimistic.Replace[model.DailyFocus, string](func(model.DailyFocus) model.DailyFocus {
			now := time.Now().UTC()
			return model.DailyFocus{Text: text, UpdatedAt: &now, IsToday: text != ""}
		}),
		Call: func(ctx context.Context) error { return l.client.SetDailyFocus(ctx, text) },
	}
}
