package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AndriyMV/task-manager-bot/types"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// SQLiteStore is the single-file alternative to PostgresStore for
// local deployments. Timestamps are set in Go and stored in UTC.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteStore(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		path = "taskgram.db"
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, `PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, err
	}
	if err := goose.UpContext(ctx, db, "migrations/sqlite"); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) CreateTask(ctx context.Context, task *types.Task) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO tasks (user_id, title, description, status, priority, due_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`, task.UserID, task.Title, task.Description, task.Status, task.Priority, nullableTime(task.DueDate), now, now)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	task.ID = id
	task.CreatedAt = now
	task.UpdatedAt = now
	return nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}

const taskColumns = `id, user_id, title, COALESCE(description, ''), status, priority, due_date, created_at, updated_at`

func scanTask(row interface{ Scan(...interface{}) error }) (*types.Task, error) {
	var t types.Task
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &due, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if due.Valid {
		d := due.Time
		t.DueDate = &d
	}
	return &t, nil
}

func (s *SQLiteStore) GetTask(ctx context.Context, id int64) (*types.Task, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	return scanTask(s.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id))
}

func (s *SQLiteStore) ListTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	clauses := []string{"1=1"}
	args := []interface{}{}
	if filter.UserID != 0 {
		clauses = append(clauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Priority != "" {
		clauses = append(clauses, "priority = ?")
		args = append(args, filter.Priority)
	}
	if filter.DueFrom != nil {
		clauses = append(clauses, "due_date >= ?")
		args = append(args, *filter.DueFrom)
	}
	if filter.DueTo != nil {
		clauses = append(clauses, "due_date <= ?")
		args = append(args, *filter.DueTo)
	}
	if filter.Query != "" {
		clauses = append(clauses, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		q := "%" + strings.ToLower(filter.Query) + "%"
		args = append(args, q, q)
	}

	rows, err := s.db.QueryContext(ctx, `
SELECT `+taskColumns+` FROM tasks
WHERE `+strings.Join(clauses, " AND ")+`
ORDER BY created_at DESC, id DESC
`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*types.Task, 0)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (s *SQLiteStore) UpdateTask(ctx context.Context, id int64, patch types.TaskPatch) (*types.Task, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	set := []string{"updated_at = ?"}
	args := []interface{}{s.now()}
	if patch.Title != nil {
		set = append(set, "title = ?")
		args = append(args, *patch.Title)
	}
	if patch.Description != nil {
		set = append(set, "description = ?")
		args = append(args, *patch.Description)
	}
	if patch.Status != nil {
		set = append(set, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.Priority != nil {
		set = append(set, "priority = ?")
		args = append(args, *patch.Priority)
	}
	if patch.DueDate != nil {
		set = append(set, "due_date = ?")
		args = append(args, *patch.DueDate)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx, fmt.Sprintf(`UPDATE tasks SET %s WHERE id = ?`, strings.Join(set, ", ")), args...)
	if err != nil {
		return nil, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, types.ErrNotFound
	}
	return s.GetTask(ctx, id)
}

func (s *SQLiteStore) DeleteTask(ctx context.Context, id int64) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) CreateAttachment(ctx context.Context, att *types.Attachment) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	now := s.now()
	res, err := s.db.ExecContext(ctx, `
INSERT INTO attachments (task_id, type, file_id, file_url, original_name, mime_type, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, att.TaskID, att.Type, att.FileID, att.FileURL, att.OriginalName, att.MimeType, now)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "foreign key") {
			return types.ErrNotFound
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	att.ID = id
	att.CreatedAt = now
	return nil
}

func (s *SQLiteStore) ListAttachments(ctx context.Context, taskID int64) ([]*types.Attachment, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `
SELECT id, task_id, type, COALESCE(file_id, ''), COALESCE(file_url, ''), COALESCE(original_name, ''), COALESCE(mime_type, ''), created_at
FROM attachments
WHERE task_id = ?
ORDER BY id
`, taskID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	atts := make([]*types.Attachment, 0)
	for rows.Next() {
		var a types.Attachment
		if err := rows.Scan(&a.ID, &a.TaskID, &a.Type, &a.FileID, &a.FileURL, &a.OriginalName, &a.MimeType, &a.CreatedAt); err != nil {
			return nil, err
		}
		atts = append(atts, &a)
	}
	return atts, rows.Err()
}

func (s *SQLiteStore) DeleteAttachment(ctx context.Context, id int64) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	res, err := s.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) UpsertUser(ctx context.Context, user types.User) (*types.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	now := s.now()
	_, err := s.db.ExecContext(ctx, `
INSERT INTO users (telegram_id, username, first_name, last_name, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT (telegram_id) DO UPDATE SET
  username = excluded.username,
  first_name = excluded.first_name,
  last_name = excluded.last_name,
  updated_at = excluded.updated_at
`, user.TelegramID, strings.TrimSpace(user.Username), strings.TrimSpace(user.FirstName), strings.TrimSpace(user.LastName), now, now)
	if err != nil {
		return nil, err
	}
	return s.GetUserByTelegramID(ctx, user.TelegramID)
}

func (s *SQLiteStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (*types.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	var u types.User
	err := s.db.QueryRowContext(ctx, `
SELECT id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), created_at, updated_at
FROM users
WHERE telegram_id = ?
`, telegramID).Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	var u types.User
	err := s.db.QueryRowContext(ctx, `
SELECT id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), created_at, updated_at
FROM users
WHERE id = ?
`, id).Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
