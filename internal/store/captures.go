package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"protanni/internal/model"
	"protanni/internal/statusutil"
)

const captureColumns = `id, user_id, content, type, status, linked_task_id, archived_at_unixms, processed_at_unixms, created_at_unixms`

func scanCapture(sc interface{ Scan(...any) error }) (model.Capture, error) {
	var (
		c         model.Capture
		linked    sql.NullString
		archived  sql.NullInt64
		processed sql.NullInt64
		created   int64
	)
	if err := sc.Scan(&c.ID, &c.UserID, &c.Content, &c.Type, &c.Status, &linked, &archived, &processed, &created); err != nil {
		return model.Capture{}, err
	}
	c.LinkedTaskID = strPtr(linked)
	c.ArchivedAt = msPtr(archived)
	c.ProcessedAt = msPtr(processed)
	c.CreatedAt = fromMs(created)
	return c, nil
}

// ListCaptures returns captures in one status, newest first. Empty status
// means inbox.
func (d *DB) ListCaptures(ctx context.Context, userID string, status model.CaptureStatus) ([]model.Capture, error) {
	if status == "" {
		status = model.CaptureInbox
	}
	rows, err := d.query(ctx, d.sql, `SELECT `+captureColumns+` FROM captures WHERE user_id = ? AND status = ? ORDER BY created_at_unixms DESC, id`,
		userID, string(status))
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Capture{}
	for rows.Next() {
		c, err := scanCapture(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (d *DB) GetCapture(ctx context.Context, userID, captureID string) (model.Capture, error) {
	return d.getCapture(ctx, d.sql, userID, captureID)
}

func (d *DB) getCapture(ctx context.Context, q querier, userID, captureID string) (model.Capture, error) {
	c, err := scanCapture(d.queryRow(ctx, q, `SELECT `+captureColumns+` FROM captures WHERE id = ? AND user_id = ?`, captureID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Capture{}, errNotFound("capture", captureID)
	}
	return c, err
}

func (d *DB) CreateCapture(ctx context.Context, userID, content string, typ model.CaptureType) (model.Capture, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return model.Capture{}, errInvalid("content is required")
	}
	typ, err := statusutil.NormalizeCaptureType(string(typ))
	if err != nil {
		return model.Capture{}, errInvalid("%s", err.Error())
	}
	now := d.now()
	c := model.Capture{ID: newID(), UserID: userID, Content: content, Type: typ, Status: model.CaptureInbox, CreatedAt: now}
	_, err = d.exec(ctx, d.sql, `INSERT INTO captures(id, user_id, content, type, status, created_at_unixms, updated_at_unixms) VALUES(?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.UserID, c.Content, string(c.Type), string(c.Status), toMs(now), toMs(now))
	if err != nil {
		return model.Capture{}, err
	}
	return c, nil
}

// ArchiveCapture moves a capture to archived.
func (d *DB) ArchiveCapture(ctx context.Context, userID, captureID string) error {
	now := toMs(d.now())
	res, err := d.exec(ctx, d.sql, `UPDATE captures SET status = ?, archived_at_unixms = ?, updated_at_unixms = ? WHERE id = ? AND user_id = ?`,
		string(model.CaptureArchived), now, now, captureID, userID)
	if err != nil {
		return err
	}
	return mustAffect(res, "capture", captureID)
}

// RestoreCapture moves a capture back to the inbox.
func (d *DB) RestoreCapture(ctx context.Context, userID, captureID string) error {
	res, err := d.exec(ctx, d.sql, `UPDATE captures SET status = ?, archived_at_unixms = NULL, updated_at_unixms = ? WHERE id = ? AND user_id = ?`,
		string(model.CaptureInbox), toMs(d.now()), captureID, userID)
	if err != nil {
		return err
	}
	return mustAffect(res, "capture", captureID)
}

// ConvertCapture creates a task from an inbox capture, marks the capture
// processed and links it. It returns the new task id.
func (d *DB) ConvertCapture(ctx context.Context, userID, captureID string) (string, error) {
	var taskID string
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		c, err := d.getCapture(ctx, tx, userID, captureID)
		if err != nil {
			return err
		}
		if c.Status != model.CaptureInbox {
			return errInvalid("capture must be inbox to convert")
		}
		t, err := d.createTask(ctx, tx, userID, model.TaskTitleFromCapture(c.Content), "")
		if err != nil {
			return err
		}
		now := toMs(d.now())
		if _, err := d.exec(ctx, tx, `UPDATE captures SET status = ?, processed_at_unixms = ?, linked_task_id = ?, updated_at_unixms = ? WHERE id = ? AND user_id = ?`,
			string(model.CaptureProcessed), now, t.ID, now, captureID, userID); err != nil {
			return err
		}
		taskID = t.ID
		return nil
	})
	return taskID, err
}
