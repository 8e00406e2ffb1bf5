package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"protanni/internal/clock"
	"protanni/internal/model"
)

var testNow = time.Date(2025, 6, 4, 9, 0, 0, 0, time.UTC) // Wednesday

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), DriverSQLite, filepath.Join(t.TempDir(), "test.sqlite"), Options{Clock: clock.Fixed{T: testNow}})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func mustUser(t *testing.T, db *DB) model.User {
	t.Helper()
	u, err := db.CreateUser(context.Background(), "Ada", "UTC")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

func TestRebind(t *testing.T) {
	t.Parallel()

	pg := &DB{driver: DriverPostgres}
	if got := pg.rebind("SELECT a FROM t WHERE x = ? AND y = ?"); got != "SELECT a FROM t WHERE x = $1 AND y = $2" {
		t.Fatalf("rebind: %q", got)
	}
	lite := &DB{driver: DriverSQLite}
	if got := lite.rebind("x = ?"); got != "x = ?" {
		t.Fatalf("sqlite should be unchanged: %q", got)
	}
}

func TestOpen_UnknownDriver(t *testing.T) {
	t.Parallel()

	if _, err := Open(context.Background(), "oracle", "x", Options{}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestCreateUser_Validates(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()

	if _, err := db.CreateUser(ctx, " ", "UTC"); !isValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if _, err := db.CreateUser(ctx, "Bob", "Mars/Olympus"); !isValidation(err) {
		t.Fatalf("expected validation error for tz, got %v", err)
	}
	u, err := db.CreateUser(ctx, "Bob", "")
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.Timezone != "UTC" {
		t.Fatalf("expected UTC fallback, got %q", u.Timezone)
	}
	users, err := db.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("ListUsers: %v %v", users, err)
	}
}

func TestTasks_ToggleAndSoftDelete(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	u := mustUser(t, db)

	task, err := db.CreateTask(ctx, u.ID, "  write report ", "WORK")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Title != "write report" || task.Area != model.AreaWork || task.Status != model.TaskTodo || task.Priority != model.PriorityMedium {
		t.Fatalf("unexpected task: %+v", task)
	}
	if _, err := db.CreateTask(ctx, u.ID, "no area", "garden"); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	st, err := db.ToggleTask(ctx, u.ID, task.ID)
	if err != nil || st != model.TaskDone {
		t.Fatalf("toggle 1: %v %v", st, err)
	}
	got, _ := db.GetTask(ctx, u.ID, task.ID)
	if got.CompletedAt == nil || !got.CompletedAt.Equal(testNow) {
		t.Fatalf("expected completed_at=%v, got %v", testNow, got.CompletedAt)
	}
	st, _ = db.ToggleTask(ctx, u.ID, task.ID)
	if st != model.TaskTodo {
		t.Fatalf("toggle 2: %v", st)
	}
	got, _ = db.GetTask(ctx, u.ID, task.ID)
	if got.CompletedAt != nil {
		t.Fatalf("completed_at should be cleared")
	}

	work, _ := db.ListTasks(ctx, u.ID, model.AreaWork)
	if len(work) != 1 {
		t.Fatalf("area filter: %+v", work)
	}
	all, _ := db.ListTasks(ctx, u.ID, "")
	if len(all) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(all))
	}

	if err := db.DeleteTask(ctx, u.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if err := db.DeleteTask(ctx, u.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("second delete should be not found, got %v", err)
	}
	if _, err := db.ToggleTask(ctx, u.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle deleted should be not found, got %v", err)
	}
	all, _ = db.ListTasks(ctx, u.ID, "")
	if len(all) != 1 {
		t.Fatalf("deleted task still listed: %+v", all)
	}
}

func TestTasks_ScopedByUser(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	a := mustUser(t, db)
	b := mustUser(t, db)

	task, _ := db.CreateTask(ctx, a.ID, "mine", "")
	if _, err := db.ToggleTask(ctx, b.ID, task.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("other user must not toggle, got %v", err)
	}
	list, _ := db.ListTasks(ctx, b.ID, "")
	if len(list) != 0 {
		t.Fatalf("other user sees tasks: %+v", list)
	}
}

func TestHabits_ToggleIsPerDay(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	u := mustUser(t, db)

	h, err := db.CreateHabit(ctx, u.ID, "Stretch", "", "")
	if err != nil {
		t.Fatalf("CreateHabit: %v", err)
	}
	if h.Frequency != model.FrequencyDaily {
		t.Fatalf("expected daily default, got %q", h.Frequency)
	}

	done, err := db.ToggleHabit(ctx, u.ID, h.ID, "2025-06-04")
	if err != nil || !done {
		t.Fatalf("toggle on: %v %v", done, err)
	}
	list, _ := db.ListHabits(ctx, u.ID, "2025-06-04")
	if len(list) != 1 || !list[0].DoneToday {
		t.Fatalf("expected done today: %+v", list)
	}
	list, _ = db.ListHabits(ctx, u.ID, "2025-06-05")
	if list[0].DoneToday {
		t.Fatalf("tomorrow should not be done")
	}

	done, _ = db.ToggleHabit(ctx, u.ID, h.ID, "2025-06-04")
	if done {
		t.Fatalf("second toggle should undo")
	}

	if err := db.DeleteHabit(ctx, u.ID, h.ID); err != nil {
		t.Fatalf("DeleteHabit: %v", err)
	}
	if _, err := db.ToggleHabit(ctx, u.ID, h.ID, "2025-06-04"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("toggle on deleted habit: %v", err)
	}
	list, _ = db.ListHabits(ctx, u.ID, "2025-06-04")
	if len(list) != 0 {
		t.Fatalf("deleted habit listed")
	}
}

func TestCaptures_ArchiveRestoreConvert(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	u := mustUser(t, db)

	c, err := db.CreateCapture(ctx, u.ID, "call the dentist", "")
	if err != nil {
		t.Fatalf("CreateCapture: %v", err)
	}
	if c.Type != model.CaptureNote || c.Status != model.CaptureInbox {
		t.Fatalf("unexpected capture: %+v", c)
	}
	if _, err := db.CreateCapture(ctx, u.ID, "x", "bogus"); !isValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}

	if err := db.ArchiveCapture(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("ArchiveCapture: %v", err)
	}
	inbox, _ := db.ListCaptures(ctx, u.ID, "")
	archived, _ := db.ListCaptures(ctx, u.ID, model.CaptureArchived)
	if len(inbox) != 0 || len(archived) != 1 || archived[0].ArchivedAt == nil {
		t.Fatalf("archive: inbox=%+v archived=%+v", inbox, archived)
	}
	if _, err := db.ConvertCapture(ctx, u.ID, c.ID); !isValidation(err) {
		t.Fatalf("converting archived capture should fail validation, got %v", err)
	}

	if err := db.RestoreCapture(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("RestoreCapture: %v", err)
	}
	taskID, err := db.ConvertCapture(ctx, u.ID, c.ID)
	if err != nil {
		t.Fatalf("ConvertCapture: %v", err)
	}
	task, err := db.GetTask(ctx, u.ID, taskID)
	if err != nil || task.Title != "call the dentist" {
		t.Fatalf("converted task: %+v %v", task, err)
	}
	got, _ := db.GetCapture(ctx, u.ID, c.ID)
	if got.Status != model.CaptureProcessed || got.LinkedTaskID == nil || *got.LinkedTaskID != taskID {
		t.Fatalf("capture after convert: %+v", got)
	}
	if _, err := db.ConvertCapture(ctx, u.ID, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMood_UpsertLastWriteWins(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	u := mustUser(t, db)

	if m, err := db.GetMood(ctx, u.ID, "2025-06-04"); err != nil || m != nil {
		t.Fatalf("expected no mood yet: %v %v", m, err)
	}
	energy := 4
	first, err := db.UpsertMood(ctx, u.ID, MoodInput{CheckinDate: "2025-06-04", Mood: model.MoodGreat, EnergyLevel: &energy})
	if err != nil {
		t.Fatalf("UpsertMood: %v", err)
	}
	second, err := db.UpsertMood(ctx, u.ID, MoodInput{CheckinDate: "2025-06-04", Mood: model.MoodGood})
	if err != nil {
		t.Fatalf("UpsertMood: %v", err)
	}
	if second.ID != first.ID || second.Mood != model.MoodGood || second.EnergyLevel != nil {
		t.Fatalf("expected same row overwritten: first=%+v second=%+v", first, second)
	}
	if _, err := db.UpsertMood(ctx, u.ID, MoodInput{CheckinDate: "2025-06-04", Mood: "meh"}); !isValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestDailyFocus(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	u := mustUser(t, db)

	f, err := db.DailyFocus(ctx, u.ID)
	if err != nil || f.Text != "" || f.IsToday {
		t.Fatalf("initial focus: %+v %v", f, err)
	}
	if err := db.SetDailyFocus(ctx, u.ID, "  ship it  "); err != nil {
		t.Fatalf("SetDailyFocus: %v", err)
	}
	f, _ = db.DailyFocus(ctx, u.ID)
	if f.Text != "ship it" || !f.IsToday {
		t.Fatalf("focus: %+v", f)
	}
	if err := db.SetDailyFocus(ctx, u.ID, ""); err != nil {
		t.Fatalf("clear: %v", err)
	}
	p, _ := db.GetProfile(ctx, u.ID)
	if p.DailyFocusText != nil {
		t.Fatalf("empty focus should be stored as null")
	}
	if err := db.SetDailyFocus(ctx, "ghost", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestSessions(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	u := mustUser(t, db)

	if err := db.SaveSession(ctx, "h1", u.ID, testNow.Add(time.Hour)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := db.SaveSession(ctx, "h2", u.ID, testNow.Add(-time.Hour)); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if id, err := db.LookupSession(ctx, "h1"); err != nil || id != u.ID {
		t.Fatalf("lookup: %q %v", id, err)
	}
	if _, err := db.LookupSession(ctx, "h2"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expired session should be not found, got %v", err)
	}
	_ = db.RevokeSession(ctx, "h1")
	if _, err := db.LookupSession(ctx, "h1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("revoked session should be not found, got %v", err)
	}
}

func TestWeeklyReview(t *testing.T) {
	t.Parallel()
	db := openTestDB(t)
	ctx := context.Background()
	u := mustUser(t, db)
	week := clock.WeekOf(clock.Fixed{T: testNow}, "UTC")

	h, _ := db.CreateHabit(ctx, u.ID, "Walk", "", model.FrequencyDaily)
	_, _ = db.ToggleHabit(ctx, u.ID, h.ID, "2025-06-02")
	_, _ = db.ToggleHabit(ctx, u.ID, h.ID, "2025-06-04")
	_, _ = db.ToggleHabit(ctx, u.ID, h.ID, "2025-05-30") // previous week

	task, _ := db.CreateTask(ctx, u.ID, "t", "body")
	_, _ = db.ToggleTask(ctx, u.ID, task.ID) // completed at testNow (Wed)

	_, _ = db.UpsertMood(ctx, u.ID, MoodInput{CheckinDate: "2025-06-02", Mood: model.MoodLow})
	_, _ = db.UpsertMood(ctx, u.ID, MoodInput{CheckinDate: "2025-06-03", Mood: model.MoodGood})
	_, _ = db.UpsertMood(ctx, u.ID, MoodInput{CheckinDate: "2025-06-06", Mood: model.MoodGood})

	r, err := db.WeeklyReview(ctx, u.ID, "UTC", week)
	if err != nil {
		t.Fatalf("WeeklyReview: %v", err)
	}
	if r.WeekStart != "2025-06-02" || r.WeekEnd != "2025-06-08" {
		t.Fatalf("week bounds: %s..%s", r.WeekStart, r.WeekEnd)
	}
	if r.HabitCompletions != 2 || r.TasksCompleted != 1 {
		t.Fatalf("counts: habits=%d tasks=%d", r.HabitCompletions, r.TasksCompleted)
	}
	// Mon (habit+mood), Tue (mood), Wed (habit+task), Fri (mood).
	if r.DaysShowedUp != 4 {
		t.Fatalf("days showed up: %d (%+v)", r.DaysShowedUp, r.Days)
	}
	if r.DominantMood != model.MoodGood {
		t.Fatalf("dominant mood: %q", r.DominantMood)
	}
	if len(r.AreasTouched) != 1 || r.AreasTouched[0] != model.AreaBody {
		t.Fatalf("areas: %+v", r.AreasTouched)
	}
}

func TestDominantMoodTieGoesBrighter(t *testing.T) {
	t.Parallel()

	got := dominantMood(map[string]int{"low": 2, "good": 2, "neutral": 1})
	if got != model.MoodGood {
		t.Fatalf("got %q", got)
	}
	if dominantMood(nil) != "" {
		t.Fatalf("expected empty")
	}
}

func isValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}
