package server

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"protanni/internal/clock"
	"protanni/internal/model"
	"protanni/internal/statusutil"
	"protanni/internal/store"
)

func requireID(id, field string) error {
	if strings.TrimSpace(id) == "" {
		return failf(CodeValidationError, "%s is required", field)
	}
	return nil
}

// habits

func (s *Server) listHabits(r *http.Request, p model.Profile) (int, any, error) {
	habits, err := s.db.ListHabits(r.Context(), p.UserID, clock.Today(s.clock, p.Timezone))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"habits": habits}, nil
}

func (s *Server) createHabit(r *http.Request, p model.Profile) (int, any, error) {
	var req struct {
		Name        string               `json:"name"`
		Description string               `json:"description"`
		Frequency   model.HabitFrequency `json:"frequency"`
	}
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	h, err := s.db.CreateHabit(r.Context(), p.UserID, req.Name, req.Description, req.Frequency)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, map[string]any{"habit": h}, nil
}

type habitRef struct {
	HabitID string `json:"habitId"`
}

func (s *Server) toggleHabit(r *http.Request, p model.Profile) (int, any, error) {
	var req habitRef
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	if err := requireID(req.HabitID, "habitId"); err != nil {
		return 0, nil, err
	}
	done, err := s.db.ToggleHabit(r.Context(), p.UserID, req.HabitID, clock.Today(s.clock, p.Timezone))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"done": done}, nil
}

func (s *Server) deleteHabit(r *http.Request, p model.Profile) (int, any, error) {
	var req habitRef
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	if err := requireID(req.HabitID, "habitId"); err != nil {
		return 0, nil, err
	}
	if err := s.db.DeleteHabit(r.Context(), p.UserID, req.HabitID); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"ok": true}, nil
}

// tasks

func (s *Server) listTasks(r *http.Request, p model.Profile) (int, any, error) {
	area := statusutil.NormalizeArea(r.URL.Query().Get("area"))
	tasks, err := s.db.ListTasks(r.Context(), p.UserID, area)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"tasks": tasks}, nil
}

func (s *Server) createTask(r *http.Request, p model.Profile) (int, any, error) {
	var req struct {
		Title string `json:"title"`
		Area  string `json:"area"`
	}
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	t, err := s.db.CreateTask(r.Context(), p.UserID, req.Title, req.Area)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, map[string]any{"task": t}, nil
}

type taskRef struct {
	TaskID string `json:"taskId"`
}

func (s *Server) toggleTask(r *http.Request, p model.Profile) (int, any, error) {
	var req taskRef
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	if err := requireID(req.TaskID, "taskId"); err != nil {
		return 0, nil, err
	}
	status, err := s.db.ToggleTask(r.Context(), p.UserID, req.TaskID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"status": status}, nil
}

func (s *Server) deleteTask(r *http.Request, p model.Profile) (int, any, error) {
	var req taskRef
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	if err := requireID(req.TaskID, "taskId"); err != nil {
		return 0, nil, err
	}
	if err := s.db.DeleteTask(r.Context(), p.UserID, req.TaskID); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"ok": true}, nil
}

// captures

func (s *Server) listCaptures(r *http.Request, p model.Profile) (int, any, error) {
	status, err := statusutil.NormalizeCaptureStatus(r.URL.Query().Get("status"))
	if err != nil {
		return 0, nil, failf(CodeValidationError, "%s", err.Error())
	}
	captures, err := s.db.ListCaptures(r.Context(), p.UserID, status)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"captures": captures}, nil
}

func (s *Server) createCapture(r *http.Request, p model.Profile) (int, any, error) {
	var req struct {
		Content string            `json:"content"`
		Type    model.CaptureType `json:"type"`
	}
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	c, err := s.db.CreateCapture(r.Context(), p.UserID, req.Content, req.Type)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusCreated, map[string]any{"capture": c}, nil
}

type captureRef struct {
	CaptureID string `json:"captureId"`
}

func (s *Server) decodeCaptureRef(r *http.Request) (string, error) {
	var req captureRef
	if err := decodeBody(r, &req); err != nil {
		return "", err
	}
	return req.CaptureID, requireID(req.CaptureID, "captureId")
}

func (s *Server) archiveCapture(r *http.Request, p model.Profile) (int, any, error) {
	id, err := s.decodeCaptureRef(r)
	if err != nil {
		return 0, nil, err
	}
	if err := s.db.ArchiveCapture(r.Context(), p.UserID, id); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"ok": true}, nil
}

func (s *Server) restoreCapture(r *http.Request, p model.Profile) (int, any, error) {
	id, err := s.decodeCaptureRef(r)
	if err != nil {
		return 0, nil, err
	}
	if err := s.db.RestoreCapture(r.Context(), p.UserID, id); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"ok": true}, nil
}

func (s *Server) convertCapture(r *http.Request, p model.Profile) (int, any, error) {
	id, err := s.decodeCaptureRef(r)
	if err != nil {
		return 0, nil, err
	}
	taskID, err := s.db.ConvertCapture(r.Context(), p.UserID, id)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"taskId": taskID}, nil
}

// mood

func (s *Server) getMood(r *http.Request, p model.Profile) (int, any, error) {
	m, err := s.db.GetMood(r.Context(), p.UserID, clock.Today(s.clock, p.Timezone))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"checkin": m}, nil
}

func (s *Server) upsertMood(r *http.Request, p model.Profile) (int, any, error) {
	var req struct {
		Mood        json.RawMessage `json:"mood"`
		Note        *string         `json:"note"`
		EnergyLevel *int            `json:"energy_level"`
		StressLevel *int            `json:"stress_level"`
		CheckinDate string          `json:"checkin_date"`
	}
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	var raw any
	if len(req.Mood) > 0 {
		if err := json.Unmarshal(req.Mood, &raw); err != nil {
			return 0, nil, failf(CodeValidationError, "invalid mood")
		}
	}
	day := req.CheckinDate
	if _, err := time.Parse(clock.DateLayout, day); err != nil {
		day = clock.Today(s.clock, p.Timezone)
	}
	m, err := s.db.UpsertMood(r.Context(), p.UserID, store.MoodInput{
		CheckinDate: day,
		Mood:        model.ParseMood(raw),
		Note:        req.Note,
		EnergyLevel: req.EnergyLevel,
		StressLevel: req.StressLevel,
	})
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"checkin": m}, nil
}

// focus

func (s *Server) getFocus(r *http.Request, p model.Profile) (int, any, error) {
	f, err := s.db.DailyFocus(r.Context(), p.UserID)
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, f, nil
}

func (s *Server) setFocus(r *http.Request, p model.Profile) (int, any, error) {
	var req struct {
		Text string `json:"text"`
	}
	if err := decodeBody(r, &req); err != nil {
		return 0, nil, err
	}
	if err := s.db.SetDailyFocus(r.Context(), p.UserID, req.Text); err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"ok": true}, nil
}

// review

func (s *Server) weeklyReview(r *http.Request, p model.Profile) (int, any, error) {
	review, err := s.db.WeeklyReview(r.Context(), p.UserID, p.Timezone, clock.WeekOf(s.clock, p.Timezone))
	if err != nil {
		return 0, nil, err
	}
	return http.StatusOK, map[string]any{"review": review}, nil
}
