package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"protanni/internal/model"
	"protanni/internal/statusutil"
)

const taskColumns = `id, user_id, title, description, status, priority, area, due_date, completed_at_unixms, is_deleted, created_at_unixms, updated_at_unixms`

func scanTask(sc interface{ Scan(...any) error }) (model.Task, error) {
	var (
		t           model.Task
		area        sql.NullString
		due         sql.NullString
		completedAt sql.NullInt64
		deleted     int
		created     int64
		updated     int64
	)
	if err := sc.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &area, &due, &completedAt, &deleted, &created, &updated); err != nil {
		return model.Task{}, err
	}
	t.Area = model.Area(area.String)
	t.DueDate = strPtr(due)
	t.CompletedAt = msPtr(completedAt)
	t.IsDeleted = deleted != 0
	t.CreatedAt = fromMs(created)
	t.UpdatedAt = fromMs(updated)
	return t, nil
}

// ListTasks returns live tasks, newest first. A non-empty area filters.
func (d *DB) ListTasks(ctx context.Context, userID string, area model.Area) ([]model.Task, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? AND is_deleted = 0 AND status <> ?`
	args := []any{userID, string(model.TaskArchived)}
	if area != "" {
		q += ` AND area = ?`
		args = append(args, string(area))
	}
	q += ` ORDER BY created_at_unixms DESC, id`
	rows, err := d.query(ctx, d.sql, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (d *DB) GetTask(ctx context.Context, userID, taskID string) (model.Task, error) {
	t, err := scanTask(d.queryRow(ctx, d.sql, `SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`, taskID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Task{}, errNotFound("task", taskID)
	}
	return t, err
}

func (d *DB) CreateTask(ctx context.Context, userID, title, area string) (model.Task, error) {
	return d.createTask(ctx, d.sql, userID, title, statusutil.NormalizeArea(area))
}

func (d *DB) createTask(ctx context.Context, q querier, userID, title string, area model.Area) (model.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return model.Task{}, errInvalid("title is required")
	}
	now := d.now()
	t := model.Task{
		ID:        newID(),
		UserID:    userID,
		Title:     title,
		Status:    model.TaskTodo,
		Priority:  model.PriorityMedium,
		Area:      area,
		CreatedAt: now,
		UpdatedAt: now,
	}
	var areaVal sql.NullString
	if area != "" {
		areaVal = sql.NullString{String: string(area), Valid: true}
	}
	_, err := d.exec(ctx, q, `INSERT INTO tasks(`+taskColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, t.Title, "", string(t.Status), string(t.Priority), areaVal, nil, nil, 0, toMs(now), toMs(now))
	if err != nil {
		return model.Task{}, err
	}
	return t, nil
}

// ToggleTask flips todo and done (anything not done becomes done) and returns
// the new status.
func (d *DB) ToggleTask(ctx context.Context, userID, taskID string) (model.TaskStatus, error) {
	var next model.TaskStatus
	err := d.inTx(ctx, func(tx *sql.Tx) error {
		var cur string
		err := d.queryRow(ctx, tx, `SELECT status FROM tasks WHERE id = ? AND user_id = ? AND is_deleted = 0`, taskID, userID).Scan(&cur)
		if errors.Is(err, sql.ErrNoRows) {
			return errNotFound("task", taskID)
		}
		if err != nil {
			return err
		}
		now := d.now()
		var completed sql.NullInt64
		if model.TaskStatus(cur) == model.TaskDone {
			next = model.TaskTodo
		} else {
			next = model.TaskDone
			completed = sql.NullInt64{Int64: toMs(now), Valid: true}
		}
		_, err = d.exec(ctx, tx, `UPDATE tasks SET status = ?, completed_at_unixms = ?, updated_at_unixms = ? WHERE id = ? AND user_id = ?`,
			string(next), completed, toMs(now), taskID, userID)
		return err
	})
	return next, err
}

// DeleteTask soft-deletes a task.
func (d *DB) DeleteTask(ctx context.Context, userID, taskID string) error {
	now := toMs(d.now())
	res, err := d.exec(ctx, d.sql, `UPDATE tasks SET is_deleted = 1, deleted_at_unixms = ?, updated_at_unixms = ? WHERE id = ? AND user_id = ? AND is_deleted = 0`,
		now, now, taskID, userID)
	if err != nil {
		return err
	}
	return mustAffect(res, "task", taskID)
}
