package model

import (
	"strconv"
	"strings"
	"time"
)

type MoodLevel string

const (
	MoodGreat   MoodLevel = "great"
	MoodGood    MoodLevel = "good"
	MoodNeutral MoodLevel = "neutral"
	MoodLow     MoodLevel = "low"
	MoodVeryLow MoodLevel = "very_low"
)

// MoodLevels in picker order; index+1 is the numeric score (1 = great).
var MoodLevels = []MoodLevel{MoodGreat, MoodGood, MoodNeutral, MoodLow, MoodVeryLow}

type MoodCheckin struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id,omitempty"`
	CheckinDate string    `json:"checkin_date"`
	Mood        MoodLevel `json:"mood"`
	Note        *string   `json:"note,omitempty"`
	EnergyLevel *int      `json:"energy_level,omitempty"`
	StressLevel *int      `json:"stress_level,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func (m MoodLevel) Valid() bool {
	for _, l := range MoodLevels {
		if l == m {
			return true
		}
	}
	return false
}

// Score returns 1 (great) .. 5 (very low), or 0 for an unknown level.
func (m MoodLevel) Score() int {
	for i, l := range MoodLevels {
		if l == m {
			return i + 1
		}
	}
	return 0
}

// ParseMood accepts a level name, a 1..5 score (number or numeric string) and
// falls back to neutral for anything else.
func ParseMood(v any) MoodLevel {
	switch x := v.(type) {
	case MoodLevel:
		if x.Valid() {
			return x
		}
		return ParseMood(string(x))
	case string:
		s := strings.TrimSpace(strings.ToLower(x))
		if l := MoodLevel(s); l.Valid() {
			return l
		}
		if n, err := strconv.ParseFloat(s, 64); err == nil {
			return moodFromScore(n)
		}
	case int:
		return moodFromScore(float64(x))
	case float64:
		return moodFromScore(x)
	}
	return MoodNeutral
}

func moodFromScore(n float64) MoodLevel {
	i := int(n)
	if float64(i) != n || i < 1 || i > len(MoodLevels) {
		return MoodNeutral
	}
	return MoodLevels[i-1]
}
