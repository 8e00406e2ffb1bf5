package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"protanni/internal/model"
)

// ListHabits returns active habits, newest first, with DoneToday set from the
// logs of the given local day.
func (d *DB) ListHabits(ctx context.Context, userID, today string) ([]model.Habit, error) {
	rows, err := d.query(ctx, d.sql, `SELECT h.id, h.user_id, h.name, h.description, h.frequency, h.is_active, h.created_at_unixms,
			CASE WHEN l.id IS NULL THEN 0 ELSE 1 END
		FROM habits h
		LEFT JOIN habit_logs l ON l.habit_id = h.id AND l.log_date = ?
		WHERE h.user_id = ? AND h.is_active = 1
		ORDER BY h.created_at_unixms DESC, h.id`, today, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Habit{}
	for rows.Next() {
		var (
			h       model.Habit
			active  int
			created int64
			done    int
		)
		if err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Description, &h.Frequency, &active, &created, &done); err != nil {
			return nil, err
		}
		h.IsActive = active != 0
		h.CreatedAt = fromMs(created)
		h.DoneToday = done != 0
		out = append(out, h)
	}
	return out, rows.Err()
}

func (d *DB) CreateHabit(ctx context.Context, userID, name, description string, freq model.HabitFrequency) (model.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Habit{}, errInvalid("name is required")
	}
	switch freq {
	case model.FrequencyDaily, model.FrequencyWeekly, model.FrequencyMonthly, model.FrequencyCustom:
	case "":
		freq = model.FrequencyDaily
	default:
		return model.Habit{}, errInvalid("unknown frequency: %s", freq)
	}
	now := d.now()
	h := model.Habit{
		ID:          newID(),
		UserID:      userID,
		Name:        name,
		Description: strings.TrimSpace(description),
		Frequency:   freq,
		IsActive:    true,
		CreatedAt:   now,
	}
	_, err := d.exec(ctx, d.sql, `INSERT INTO habits(id, user_id, name, description, frequency, is_active, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?, 1, ?, ?)`,
		h.ID, h.UserID, h.Name, h.Description, string(h.Frequency), toMs(now), toMs(now))
	if err != nil {
		return model.Habit{}, err
	}
	return h, nil
}

// ToggleHabit adds or removes the log for today and returns whether the habit
// is now done.
func (d *DB) ToggleHabit(ctx context.Context, userID, habitID, today string) (bool, error) {
	var done bool
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		var active int
		err := d.queryRow(ctx, tx, `SELECT is_active FROM habits WHERE id = ? AND user_id = ?`, habitID, userID).Scan(&active)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && active == 0) {
			return errNotFound("habit", habitID)
		}
		if err != nil {
			return err
		}

		var logID string
		err = d.queryRow(ctx, tx, `SELECT id FROM habit_logs WHERE habit_id = ? AND user_id = ? AND log_date = ?`, habitID, userID, today).Scan(&logID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			_, err = d.exec(ctx, tx, `INSERT INTO habit_logs(id, user_id, habit_id, log_date, created_at_unixms) VALUES(?, ?, ?, ?, ?)`,
				newID(), userID, habitID, today, toMs(d.now()))
			done = true
			return err
		case err != nil:
			return err
		default:
			_, err = d.exec(ctx, tx, `DELETE FROM habit_logs WHERE id = ?`, logID)
			done = false
			return err
		}
	})
	return done, err
}

// DeleteHabit soft-deletes a habit; its logs stay for the review.
func (d *DB) DeleteHabit(ctx context.Context, userID, habitID string) error {
	res, err := d.exec(ctx, d.sql, `UPDATE habits SET is_active = 0, updated_at_unixms = ? WHERE id = ? AND user_id = ? AND is_active = 1`,
		toMs(d.now()), habitID, userID)
	if err != nil {
		return err
	}
	return mustAffect(res, "habit", habitID)
}
