package model

import "testing"

func TestParseMood(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   any
		want MoodLevel
	}{
		{"great", MoodGreat},
		{" Very_Low ", MoodVeryLow},
		{MoodLow, MoodLow},
		{1, MoodGreat},
		{5, MoodVeryLow},
		{2.0, MoodGood},
		{"3", MoodNeutral},
		{"4", MoodLow},
		{0, MoodNeutral},
		{6, MoodNeutral},
		{2.5, MoodNeutral},
		{"meh", MoodNeutral},
		{nil, MoodNeutral},
	}
	for _, tc := range cases {
		if got := ParseMood(tc.in); got != tc.want {
			t.Fatalf("ParseMood(%#v)=%q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMoodScore(t *testing.T) {
	t.Parallel()

	if MoodGreat.Score() != 1 || MoodVeryLow.Score() != 5 {
		t.Fatalf("unexpected scores: great=%d very_low=%d", MoodGreat.Score(), MoodVeryLow.Score())
	}
	if MoodLevel("nope").Score() != 0 {
		t.Fatalf("expected 0 for unknown level")
	}
}

func TestTaskToggleDone(t *testing.T) {
	t.Parallel()

	task := Task{ID: "t1", Status: TaskTodo}
	done := task.ToggleDone()
	if done.Status != TaskDone || done.CompletedAt == nil {
		t.Fatalf("expected done with completion time, got %+v", done)
	}
	back := done.ToggleDone()
	if back.Status != TaskTodo || back.CompletedAt != nil {
		t.Fatalf("expected todo without completion time, got %+v", back)
	}

	doing := Task{Status: TaskDoing}.ToggleDone()
	if doing.Status != TaskDone {
		t.Fatalf("doing should toggle to done, got %q", doing.Status)
	}
}

func TestHabitToggleDoneIsSelfInverse(t *testing.T) {
	t.Parallel()

	h := Habit{ID: "h1"}
	if h.ToggleDone().ToggleDone() != h {
		t.Fatalf("double toggle should restore habit")
	}
}

func TestTaskTitleFromCapture(t *testing.T) {
	t.Parallel()

	long := make([]rune, 250)
	for i := range long {
		long[i] = 'é'
	}
	got := TaskTitleFromCapture(string(long))
	if n := len([]rune(got)); n != ConvertedTaskTitleMax {
		t.Fatalf("expected %d runes, got %d", ConvertedTaskTitleMax, n)
	}
	if TaskTitleFromCapture("short") != "short" {
		t.Fatalf("short content should be unchanged")
	}
}

func TestLabel(t *testing.T) {
	t.Parallel()

	if got := Label(MoodVeryLow); got != "Very Low" {
		t.Fatalf("Label(very_low)=%q", got)
	}
	if got := Label(AreaWork); got != "Work" {
		t.Fatalf("Label(work)=%q", got)
	}
	if got := Label(Area("")); got != "" {
		t.Fatalf("Label(\"\")=%q", got)
	}
}
