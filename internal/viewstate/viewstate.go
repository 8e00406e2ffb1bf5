// Package viewstate holds the list filters shared by the tasks and inbox views
// and decides how they reach the server.
package viewstate

import (
	"encoding/json"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"protanni/internal/config"
	"protanni/internal/model"
	"protanni/internal/statusutil"
)

const fileName = "viewstate.json"

// SyncPolicy controls whether filters are sent to the server.
type SyncPolicy string

const (
	// SyncURL mirrors filters into the list query (?area=, ?status=).
	SyncURL SyncPolicy = "url"
	// SyncLocal fetches everything and filters client side.
	SyncLocal SyncPolicy = "local"
)

// All is the filter value that removes the filter.
const All = "all"

// State stores the filters. It is best effort: callers should tolerate
// missing or invalid data.
type State struct {
	Version       int        `json:"version"`
	Area          string     `json:"area,omitempty"`
	CaptureStatus string     `json:"capture_status,omitempty"`
	Sync          SyncPolicy `json:"sync,omitempty"`
	Tab           string     `json:"tab,omitempty"`
}

func Default() *State {
	return &State{Version: 1, Area: All, CaptureStatus: string(model.CaptureInbox), Sync: SyncURL}
}

func (s *State) normalize() {
	if s.Version == 0 {
		s.Version = 1
	}
	s.Area = strings.ToLower(strings.TrimSpace(s.Area))
	if s.Area == "" || !validArea(s.Area) {
		s.Area = All
	}
	if !statusutil.ValidCaptureStatus(s.CaptureStatus) {
		s.CaptureStatus = string(model.CaptureInbox)
	}
	if s.Sync != SyncLocal {
		s.Sync = SyncURL
	}
}

func validArea(a string) bool {
	if a == All {
		return true
	}
	for _, x := range model.Areas {
		if string(x) == a {
			return true
		}
	}
	return false
}

// CycleArea advances the area filter: all -> work -> personal -> mind -> body -> all.
func (s *State) CycleArea() {
	order := []string{All}
	for _, a := range model.Areas {
		order = append(order, string(a))
	}
	for i, a := range order {
		if a == s.Area {
			s.Area = order[(i+1)%len(order)]
			return
		}
	}
	s.Area = All
}

// SetArea sets the area filter; unknown values reset to all.
func (s *State) SetArea(a string) {
	s.Area = a
	s.normalize()
}

// TaskQuery returns the query for the task list fetch.
func (s *State) TaskQuery() url.Values {
	q := url.Values{}
	if s.Sync == SyncURL && s.Area != All {
		q.Set("area", s.Area)
	}
	return q
}

// CaptureQuery returns the query for the capture list fetch.
func (s *State) CaptureQuery() url.Values {
	q := url.Values{}
	if s.Sync == SyncURL {
		q.Set("status", s.CaptureStatus)
	}
	return q
}

// FilterTasks applies the area filter locally. With SyncURL the server has
// already filtered and this is a no-op.
func (s *State) FilterTasks(tasks []model.Task) []model.Task {
	if s.Sync == SyncURL || s.Area == All {
		return tasks
	}
	out := make([]model.Task, 0, len(tasks))
	for _, t := range tasks {
		if string(t.Area) == s.Area {
			out = append(out, t)
		}
	}
	return out
}

func (s *State) FilterCaptures(cs []model.Capture) []model.Capture {
	if s.Sync == SyncURL {
		return cs
	}
	out := make([]model.Capture, 0, len(cs))
	for _, c := range cs {
		if string(c.Status) == s.CaptureStatus {
			out = append(out, c)
		}
	}
	return out
}

func path() (string, error) {
	dir, err := config.Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

func Load() (*State, error) {
	p, err := path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var st State
	if err := json.Unmarshal(b, &st); err != nil {
		// Best-effort; if corrupted, treat as missing.
		return Default(), nil
	}
	st.normalize()
	return &st, nil
}

func Save(st *State) error {
	if st == nil {
		return nil
	}
	st.normalize()
	p, err := path()
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return config.AtomicWriteFile(dir, "viewstate.json.*.tmp", p, b, 0o644)
}
