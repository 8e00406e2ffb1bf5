package model

import "time"

type TaskStatus string

const (
	TaskTodo     TaskStatus = "todo"
	TaskDoing    TaskStatus = "doing"
	TaskDone     TaskStatus = "done"
	TaskArchived TaskStatus = "archived"
)

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// Area is the life area a task is filed under. Empty means unfiled.
type Area string

const (
	AreaWork     Area = "work"
	AreaPersonal Area = "personal"
	AreaMind     Area = "mind"
	AreaBody     Area = "body"
)

var Areas = []Area{AreaWork, AreaPersonal, AreaMind, AreaBody}

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"user_id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      TaskStatus `json:"status"`
	Priority    Priority   `json:"priority"`
	Area        Area       `json:"area,omitempty"`
	DueDate     *string    `json:"due_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	IsDeleted   bool       `json:"is_deleted,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (t Task) Done() bool { return t.Status == TaskDone }

// ToggleDone flips todo and done. The completion time is only a client-side
// guess; the server sets the real one.
func (t Task) ToggleDone() Task {
	if t.Status == TaskDone {
		t.Status = TaskTodo
		t.CompletedAt = nil
		return t
	}
	t.Status = TaskDone
	now := time.Now().UTC()
	t.CompletedAt = &now
	return t
}

type HabitFrequency string

const (
	FrequencyDaily   HabitFrequency = "daily"
	FrequencyWeekly  HabitFrequency = "weekly"
	FrequencyMonthly HabitFrequency = "monthly"
	FrequencyCustom  HabitFrequency = "custom"
)

type Habit struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id,omitempty"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Frequency   HabitFrequency `json:"frequency"`
	IsActive    bool           `json:"is_active"`
	DoneToday   bool           `json:"done_today"`
	CreatedAt   time.Time      `json:"created_at"`
}

func (h Habit) ToggleDone() Habit {
	h.DoneToday = !h.DoneToday
	return h
}

type CaptureStatus string

const (
	CaptureInbox     CaptureStatus = "inbox"
	CaptureProcessed CaptureStatus = "processed"
	CaptureArchived  CaptureStatus = "archived"
)

type CaptureType string

const (
	CaptureNote    CaptureType = "note"
	CaptureTask    CaptureType = "task"
	CaptureGoal    CaptureType = "goal"
	CaptureProject CaptureType = "project"
	CaptureJournal CaptureType = "journal"
	CaptureHabit   CaptureType = "habit"
	CaptureEvent   CaptureType = "event"
	CaptureIdea    CaptureType = "idea"
	CaptureLink    CaptureType = "link"
	CaptureOther   CaptureType = "other"
)

var CaptureTypes = []CaptureType{
	CaptureNote, CaptureTask, CaptureGoal, CaptureProject, CaptureJournal,
	CaptureHabit, CaptureEvent, CaptureIdea, CaptureLink, CaptureOther,
}

type Capture struct {
	ID           string        `json:"id"`
	UserID       string        `json:"user_id,omitempty"`
	Content      string        `json:"content"`
	Type         CaptureType   `json:"type"`
	Status       CaptureStatus `json:"status"`
	LinkedTaskID *string       `json:"linked_task_id,omitempty"`
	ArchivedAt   *time.Time    `json:"archived_at,omitempty"`
	ProcessedAt  *time.Time    `json:"processed_at,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
}

// ConvertedTaskTitleMax bounds the title of a task created from a capture.
const ConvertedTaskTitleMax = 200

// TaskTitleFromCapture truncates content to ConvertedTaskTitleMax runes.
func TaskTitleFromCapture(content string) string {
	r := []rune(content)
	if len(r) > ConvertedTaskTitleMax {
		r = r[:ConvertedTaskTitleMax]
	}
	return string(r)
}

type User struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	Timezone    string    `json:"timezone"`
	CreatedAt   time.Time `json:"created_at"`
}

type Profile struct {
	UserID              string     `json:"user_id"`
	DisplayName         string     `json:"display_name"`
	Timezone            string     `json:"timezone"`
	DailyFocusText      *string    `json:"daily_focus_text,omitempty"`
	DailyFocusUpdatedAt *time.Time `json:"daily_focus_updated_at,omitempty"`
}

// DailyFocus is the focus line as shown for today.
type DailyFocus struct {
	Text      string     `json:"text"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	IsToday   bool       `json:"is_today"`
}

// FocusID is the record id of the daily focus. There is one per user.
const FocusID = "focus"

// MoodID keys a mood check-in by its local date.
func MoodID(date string) string { return "mood:" + date }

// Today is what the Today tab shows: the mood for Date and the focus line.
type Today struct {
	Date  string       `json:"date"`
	Mood  *MoodCheckin `json:"mood,omitempty"`
	Focus DailyFocus   `json:"focus"`
}

type WeeklyReview struct {
	WeekStart         string         `json:"week_start"`
	WeekEnd           string         `json:"week_end"`
	Days              []ReviewDay    `json:"days"`
	DaysShowedUp      int            `json:"days_showed_up"`
	HabitCompletions  int            `json:"habit_completions"`
	TasksCompleted    int            `json:"tasks_completed"`
	CapturesProcessed int            `json:"captures_processed"`
	AreasTouched      []Area         `json:"areas_touched"`
	DominantMood      MoodLevel      `json:"dominant_mood,omitempty"`
	MoodCounts        map[string]int `json:"mood_counts"`
}

// ReviewDay is one local day of a weekly review.
type ReviewDay struct {
	Date             string    `json:"date"`
	HabitCompletions int       `json:"habit_completions"`
	TasksCompleted   int       `json:"tasks_completed"`
	Mood             MoodLevel `json:"mood,omitempty"`
}

// ShowedUp is true if anything at all was logged on the day.
func (d ReviewDay) ShowedUp() bool {
	return d.HabitCompletions > 0 || d.TasksCompleted > 0 || d.Mood != ""
}
