package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"protanni/internal/clock"
	"protanni/internal/model"
)

func (d *DB) CreateUser(ctx context.Context, name, tz string) (model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.User{}, errInvalid("name is required")
	}
	tz = strings.TrimSpace(tz)
	if tz == "" {
		tz = clock.DefaultTZ
	}
	if !clock.ValidTZ(tz) {
		return model.User{}, errInvalid("unknown timezone: %s", tz)
	}
	u := model.User{ID: newID(), DisplayName: name, Timezone: tz, CreatedAt: d.now()}
	_, err := d.exec(ctx, d.sql, `INSERT INTO users(id, display_name, timezone, created_at_unixms) VALUES(?, ?, ?, ?)`,
		u.ID, u.DisplayName, u.Timezone, toMs(u.CreatedAt))
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

func (d *DB) GetProfile(ctx context.Context, userID string) (model.Profile, error) {
	var (
		p         model.Profile
		focus     sql.NullString
		focusAtMs sql.NullInt64
	)
	err := d.queryRow(ctx, d.sql, `SELECT id, display_name, timezone, daily_focus_text, daily_focus_updated_at_unixms FROM users WHERE id = ?`, userID).
		Scan(&p.UserID, &p.DisplayName, &p.Timezone, &focus, &focusAtMs)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Profile{}, errNotFound("user", userID)
	}
	if err != nil {
		return model.Profile{}, err
	}
	p.DailyFocusText = strPtr(focus)
	p.DailyFocusUpdatedAt = msPtr(focusAtMs)
	return p, nil
}

func (d *DB) ListUsers(ctx context.Context) ([]model.User, error) {
	rows, err := d.query(ctx, d.sql, `SELECT id, display_name, timezone, created_at_unixms FROM users ORDER BY created_at_unixms`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.User
	for rows.Next() {
		var (
			u  model.User
			ms int64
		)
		if err := rows.Scan(&u.ID, &u.DisplayName, &u.Timezone, &ms); err != nil {
			return nil, err
		}
		u.CreatedAt = fromMs(ms)
		out = append(out, u)
	}
	return out, rows.Err()
}

// SetDailyFocus stores the focus line; blank text clears it.
func (d *DB) SetDailyFocus(ctx context.Context, userID, text string) error {
	text = strings.TrimSpace(text)
	var val sql.NullString
	if text != "" {
		val = sql.NullString{String: text, Valid: true}
	}
	res, err := d.exec(ctx, d.sql, `UPDATE users SET daily_focus_text = ?, daily_focus_updated_at_unixms = ? WHERE id = ?`,
		val, toMs(d.now()), userID)
	if err != nil {
		return err
	}
	return mustAffect(res, "user", userID)
}

// DailyFocus returns the focus line with whether it was set on the user's today.
func (d *DB) DailyFocus(ctx context.Context, userID string) (model.DailyFocus, error) {
	p, err := d.GetProfile(ctx, userID)
	if err != nil {
		return model.DailyFocus{}, err
	}
	f := model.DailyFocus{UpdatedAt: p.DailyFocusUpdatedAt}
	if p.DailyFocusText != nil {
		f.Text = *p.DailyFocusText
	}
	if p.DailyFocusUpdatedAt != nil {
		f.IsToday = clock.IsToday(d.clock, p.Timezone, *p.DailyFocusUpdatedAt)
	}
	return f, nil
}

func (d *DB) SaveSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := d.exec(ctx, d.sql, `INSERT INTO sessions(token_hash, user_id, created_at_unixms, expires_at_unixms) VALUES(?, ?, ?, ?)`,
		tokenHash, userID, toMs(d.now()), toMs(expiresAt))
	return err
}

// LookupSession returns the user id for an unexpired session.
func (d *DB) LookupSession(ctx context.Context, tokenHash string) (string, error) {
	var userID string
	err := d.queryRow(ctx, d.sql, `SELECT user_id FROM sessions WHERE token_hash = ? AND expires_at_unixms > ?`, tokenHash, toMs(d.now())).
		Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", errNotFound("session", "")
	}
	return userID, err
}

func (d *DB) RevokeSession(ctx context.Context, tokenHash string) error {
	_, err := d.exec(ctx, d.sql, `DELETE FROM sessions WHERE token_hash = ?`, tokenHash)
	return err
}

func mustAffect(res sql.Result, kind, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errNotFound(kind, id)
	}
	return nil
}
