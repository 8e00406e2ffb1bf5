// Package statusutil normalizes the enum-like values that arrive as free text
// from flags, query strings and request bodies.
package statusutil

import (
	"fmt"
	"strings"

	"protanni/internal/model"
)

var captureStatuses = []model.CaptureStatus{model.CaptureInbox, model.CaptureProcessed, model.CaptureArchived}

// NormalizeArea lowercases a; unknown areas become "" (unfiled).
func NormalizeArea(a string) model.Area {
	a = strings.ToLower(strings.TrimSpace(a))
	for _, x := range model.Areas {
		if string(x) == a {
			return x
		}
	}
	return ""
}

// NormalizeCaptureStatus accepts any case; empty means inbox.
func NormalizeCaptureStatus(s string) (model.CaptureStatus, error) {
	st := model.CaptureStatus(strings.ToLower(strings.TrimSpace(s)))
	if st == "" {
		return model.CaptureInbox, nil
	}
	if ValidCaptureStatus(string(st)) {
		return st, nil
	}
	return "", fmt.Errorf("unknown capture status: %s (expected %s)", s, join(captureStatuses))
}

func ValidCaptureStatus(s string) bool {
	for _, x := range captureStatuses {
		if string(x) == s {
			return true
		}
	}
	return false
}

// NormalizeCaptureType accepts any case; empty means note.
func NormalizeCaptureType(s string) (model.CaptureType, error) {
	typ := model.CaptureType(strings.ToLower(strings.TrimSpace(s)))
	if typ == "" {
		return model.CaptureNote, nil
	}
	for _, x := range model.CaptureTypes {
		if x == typ {
			return typ, nil
		}
	}
	return "", fmt.Errorf("unknown capture type: %s", s)
}

func join[S ~string](vs []S) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = string(v)
	}
	return strings.Join(parts, "|")
}
