package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"protanni/internal/model"
)

// MoodInput is one check-in write. CheckinDate must be a YYYY-MM-DD key.
type MoodInput struct {
	CheckinDate string
	Mood        model.MoodLevel
	Note        *string
	EnergyLevel *int
	StressLevel *int
}

const moodColumns = `id, user_id, checkin_date, mood, note, energy_level, stress_level, created_at_unixms`

func scanMood(sc interface{ Scan(...any) error }) (model.MoodCheckin, error) {
	var (
		m       model.MoodCheckin
		note    sql.NullString
		energy  sql.NullInt64
		stress  sql.NullInt64
		created int64
	)
	if err := sc.Scan(&m.ID, &m.UserID, &m.CheckinDate, &m.Mood, &note, &energy, &stress, &created); err != nil {
		return model.MoodCheckin{}, err
	}
	m.Note = strPtr(note)
	m.EnergyLevel = intPtr(energy)
	m.StressLevel = intPtr(stress)
	m.CreatedAt = fromMs(created)
	return m, nil
}

// GetMood returns the check-in for a day, or nil if there is none.
func (d *DB) GetMood(ctx context.Context, userID, day string) (*model.MoodCheckin, error) {
	m, err := scanMood(d.queryRow(ctx, d.sql, `SELECT `+moodColumns+` FROM mood_checkins WHERE user_id = ? AND checkin_date = ?`, userID, day))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// UpsertMood writes the check-in for (user, day); the last write wins.
func (d *DB) UpsertMood(ctx context.Context, userID string, in MoodInput) (model.MoodCheckin, error) {
	day := strings.TrimSpace(in.CheckinDate)
	if day == "" {
		return model.MoodCheckin{}, errInvalid("checkin_date is required")
	}
	if !in.Mood.Valid() {
		return model.MoodCheckin{}, errInvalid("unknown mood: %s", in.Mood)
	}
	now := toMs(d.now())
	_, err := d.exec(ctx, d.sql, `INSERT INTO mood_checkins(id, user_id, checkin_date, mood, note, energy_level, stress_level, created_at_unixms, updated_at_unixms)
		VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, checkin_date) DO UPDATE SET
			mood = excluded.mood,
			note = excluded.note,
			energy_level = excluded.energy_level,
			stress_level = excluded.stress_level,
			updated_at_unixms = excluded.updated_at_unixms`,
		newID(), userID, day, string(in.Mood), nullString(in.Note), nullInt(in.EnergyLevel), nullInt(in.StressLevel), now, now)
	if err != nil {
		return model.MoodCheckin{}, err
	}
	m, err := d.GetMood(ctx, userID, day)
	if err != nil {
		return model.MoodCheckin{}, err
	}
	if m == nil {
		return model.MoodCheckin{}, errNotFound("mood checkin", day)
	}
	return *m, nil
}
