package api

import (
	"context"
	"net/http"
	"net/url"

	"protanni/internal/model"
)

func (c *Client) Habits(ctx context.Context) ([]model.Habit, error) {
	var out struct {
		Habits []model.Habit `json:"habits"`
	}
	err := c.do(ctx, http.MethodGet, "/api/habits", nil, nil, &out)
	return out.Habits, err
}

func (c *Client) CreateHabit(ctx context.Context, name, description string, freq model.HabitFrequency) (model.Habit, error) {
	var out struct {
		Habit model.Habit `json:"habit"`
	}
	body := map[string]any{"name": name}
	if description != "" {
		body["description"] = description
	}
	if freq != "" {
		body["frequency"] = freq
	}
	err := c.do(ctx, http.MethodPost, "/api/habits", nil, body, &out)
	return out.Habit, err
}

// ToggleHabit returns whether the habit is done today after the toggle.
func (c *Client) ToggleHabit(ctx context.Context, id string) (bool, error) {
	var out struct {
		Done bool `json:"done"`
	}
	err := c.do(ctx, http.MethodPost, "/api/habits/toggle", nil, map[string]string{"habitId": id}, &out)
	return out.Done, err
}

func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/habits/delete", nil, map[string]string{"habitId": id}, nil)
}

// Tasks lists tasks; an empty area lists all of them.
func (c *Client) Tasks(ctx context.Context, area string) ([]model.Task, error) {
	var q url.Values
	if area != "" {
		q = url.Values{"area": {area}}
	}
	var out struct {
		Tasks []model.Task `json:"tasks"`
	}
	err := c.do(ctx, http.MethodGet, "/api/tasks", q, nil, &out)
	return out.Tasks, err
}

func (c *Client) CreateTask(ctx context.Context, title, area string) (model.Task, error) {
	var out struct {
		Task model.Task `json:"task"`
	}
	body := map[string]string{"title": title}
	if area != "" {
		body["area"] = area
	}
	err := c.do(ctx, http.MethodPost, "/api/tasks", nil, body, &out)
	return out.Task, err
}

func (c *Client) ToggleTask(ctx context.Context, id string) (model.TaskStatus, error) {
	var out struct {
		Status model.TaskStatus `json:"status"`
	}
	err := c.do(ctx, http.MethodPost, "/api/tasks/toggle", nil, map[string]string{"taskId": id}, &out)
	return out.Status, err
}

func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/tasks/delete", nil, map[string]string{"taskId": id}, nil)
}

// Captures lists captures in status; empty means inbox.
func (c *Client) Captures(ctx context.Context, status model.CaptureStatus) ([]model.Capture, error) {
	var q url.Values
	if status != "" {
		q = url.Values{"status": {string(status)}}
	}
	var out struct {
		Captures []model.Capture `json:"captures"`
	}
	err := c.do(ctx, http.MethodGet, "/api/captures", q, nil, &out)
	return out.Captures, err
}

func (c *Client) CreateCapture(ctx context.Context, content string, typ model.CaptureType) (model.Capture, error) {
	var out struct {
		Capture model.Capture `json:"capture"`
	}
	body := map[string]string{"content": content}
	if typ != "" {
		body["type"] = string(typ)
	}
	err := c.do(ctx, http.MethodPost, "/api/captures", nil, body, &out)
	return out.Capture, err
}

func (c *Client) ArchiveCapture(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/captures/archive", nil, map[string]string{"captureId": id}, nil)
}

func (c *Client) RestoreCapture(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodPost, "/api/captures/restore", nil, map[string]string{"captureId": id}, nil)
}

// ConvertCapture turns an inbox capture into a task and returns the task id.
func (c *Client) ConvertCapture(ctx context.Context, id string) (string, error) {
	var out struct {
		TaskID string `json:"taskId"`
	}
	err := c.do(ctx, http.MethodPost, "/api/captures/convert-to-task", nil, map[string]string{"captureId": id}, &out)
	return out.TaskID, err
}

// Mood returns today's check-in, or nil if there is none yet.
func (c *Client) Mood(ctx context.Context) (*model.MoodCheckin, error) {
	var out struct {
		Checkin *model.MoodCheckin `json:"checkin"`
	}
	err := c.do(ctx, http.MethodGet, "/api/mood", nil, nil, &out)
	return out.Checkin, err
}

type MoodRequest struct {
	Mood        model.MoodLevel `json:"mood"`
	Note        *string         `json:"note,omitempty"`
	EnergyLevel *int            `json:"energy_level,omitempty"`
	StressLevel *int            `json:"stress_level,omitempty"`
	CheckinDate string          `json:"checkin_date,omitempty"`
}

func (c *Client) SetMood(ctx context.Context, req MoodRequest) (model.MoodCheckin, error) {
	var out struct {
		Checkin model.MoodCheckin `json:"checkin"`
	}
	err := c.do(ctx, http.MethodPost, "/api/mood", nil, req, &out)
	return out.Checkin, err
}

func (c *Client) DailyFocus(ctx context.Context) (model.DailyFocus, error) {
	var out model.DailyFocus
	err := c.do(ctx, http.MethodGet, "/api/profile/daily-focus", nil, nil, &out)
	return out, err
}

func (c *Client) SetDailyFocus(ctx context.Context, text string) error {
	return c.do(ctx, http.MethodPost, "/api/profile/daily-focus", nil, map[string]string{"text": text}, nil)
}

// Today fetches mood and focus together. Date is left for the caller.
func (c *Client) Today(ctx context.Context) (model.Today, error) {
	var t model.Today
	mood, err := c.Mood(ctx)
	if err != nil {
		return t, err
	}
	focus, err := c.DailyFocus(ctx)
	if err != nil {
		return t, err
	}
	t.Mood = mood
	t.Focus = focus
	return t, nil
}

func (c *Client) WeeklyReview(ctx context.Context) (model.WeeklyReview, error) {
	var out struct {
		Review model.WeeklyReview `json:"review"`
	}
	err := c.do(ctx, http.MethodGet, "/api/review/weekly", nil, nil, &out)
	return out.Review, err
}
