package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AndriyMV/task-manager-bot/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	dsn = strings.TrimSpace(dsn)
	if dsn == "" {
		dsn = buildPostgresDSNFromEnv()
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := &PostgresStore{pool: pool}
	if err := s.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func buildPostgresDSNFromEnv() string {
	host := strings.TrimSpace(os.Getenv("POSTGRES_HOST"))
	if host == "" {
		host = "localhost"
	}
	port := strings.TrimSpace(os.Getenv("POSTGRES_PORT"))
	if port == "" {
		port = "5432"
	}
	db := strings.TrimSpace(os.Getenv("POSTGRES_DB"))
	if db == "" {
		db = "taskgram"
	}
	user := strings.TrimSpace(os.Getenv("POSTGRES_USER"))
	if user == "" {
		user = "taskgram"
	}
	pass := os.Getenv("POSTGRES_PASSWORD")
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", urlEscape(user), urlEscape(pass), host, port, db)
}

func urlEscape(s string) string {
	r := strings.NewReplacer(
		"%", "%25",
		":", "%3A",
		"/", "%2F",
		"@", "%40",
		"?", "%3F",
		"#", "%23",
		"[", "%5B",
		"]", "%5D",
	)
	return r.Replace(s)
}

func (s *PostgresStore) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDB(*s.pool.Config().ConnConfig)
	defer db.Close()

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.UpContext(ctx, db, "migrations/postgres")
}

func opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, 5*time.Second)
}

func (s *PostgresStore) CreateTask(ctx context.Context, task *types.Task) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	return s.pool.QueryRow(ctx, `
INSERT INTO tasks (user_id, title, description, status, priority, due_date)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at, updated_at
`, task.UserID, task.Title, task.Description, task.Status, task.Priority, task.DueDate).
		Scan(&task.ID, &task.CreatedAt, &task.UpdatedAt)
}

func (s *PostgresStore) GetTask(ctx context.Context, id int64) (*types.Task, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	var t types.Task
	err := s.pool.QueryRow(ctx, `
SELECT id, user_id, title, COALESCE(description, ''), status, priority, due_date, created_at, updated_at
FROM tasks
WHERE id = $1
`, id).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) ListTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	where := []string{"TRUE"}
	args := []interface{}{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.UserID != 0 {
		where = append(where, "user_id = "+arg(filter.UserID))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(filter.Status))
	}
	if filter.Priority != "" {
		where = append(where, "priority = "+arg(filter.Priority))
	}
	if filter.DueFrom != nil {
		where = append(where, "due_date >= "+arg(*filter.DueFrom))
	}
	if filter.DueTo != nil {
		where = append(where, "due_date <= "+arg(*filter.DueTo))
	}
	if filter.Query != "" {
		p := arg("%" + filter.Query + "%")
		where = append(where, "(title ILIKE "+p+" OR description ILIKE "+p+")")
	}

	rows, err := s.pool.Query(ctx, `
SELECT id, user_id, title, COALESCE(description, ''), status, priority, due_date, created_at, updated_at
FROM tasks
WHERE `+strings.Join(where, " AND ")+`
ORDER BY created_at DESC, id DESC
`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*types.Task, 0)
	for rows.Next() {
		var t types.Task
		if err := rows.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		tasks = append(tasks, &t)
	}
	return tasks, rows.Err()
}

func (s *PostgresStore) UpdateTask(ctx context.Context, id int64, patch types.TaskPatch) (*types.Task, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()

	set := []string{"updated_at = NOW()"}
	args := []interface{}{id}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if patch.Title != nil {
		set = append(set, "title = "+arg(*patch.Title))
	}
	if patch.Description != nil {
		set = append(set, "description = "+arg(*patch.Description))
	}
	if patch.Status != nil {
		set = append(set, "status = "+arg(*patch.Status))
	}
	if patch.Priority != nil {
		set = append(set, "priority = "+arg(*patch.Priority))
	}
	if patch.DueDate != nil {
		set = append(set, "due_date = "+arg(*patch.DueDate))
	}

	var t types.Task
	err := s.pool.QueryRow(ctx, `
UPDATE tasks
SET `+strings.Join(set, ", ")+`
WHERE id = $1
RETURNING id, user_id, title, COALESCE(description, ''), status, priority, due_date, created_at, updated_at
`, args...).Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.CreatedAt, &t.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *PostgresStore) DeleteTask(ctx context.Context, id int64) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) CreateAttachment(ctx context.Context, att *types.Attachment) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	err := s.pool.QueryRow(ctx, `
INSERT INTO attachments (task_id, type, file_id, file_url, original_name, mime_type)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, created_at
`, att.TaskID, att.Type, att.FileID, att.FileURL, att.OriginalName, att.MimeType).
		Scan(&att.ID, &att.CreatedAt)
	if err != nil && strings.Contains(err.Error(), "foreign key") {
		return types.ErrNotFound
	}
	return err
}

func (s *PostgresStore) ListAttachments(ctx context.Context, taskID int64) ([]*types.Attachment, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	rows, err := s.pool.Query(ctx, `
SELECT id, task_id, type, COALESCE(file_id, ''), COALESCE(file_url, ''), COALESCE(original_name, ''), COALESCE(mime_type, ''), created_at
FROM attachments
WHERE task_id = $1
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

func (s *PostgresStore) DeleteAttachment(ctx context.Context, id int64) error {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	tag, err := s.pool.Exec(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) UpsertUser(ctx context.Context, user types.User) (*types.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	var u types.User
	err := s.pool.QueryRow(ctx, `
INSERT INTO users (telegram_id, username, first_name, last_name)
VALUES ($1, $2, $3, $4)
ON CONFLICT (telegram_id) DO UPDATE SET
  username = EXCLUDED.username,
  first_name = EXCLUDED.first_name,
  last_name = EXCLUDED.last_name,
  updated_at = NOW()
RETURNING id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), created_at, updated_at
`, user.TelegramID, strings.TrimSpace(user.Username), strings.TrimSpace(user.FirstName), strings.TrimSpace(user.LastName)).
		Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByTelegramID(ctx context.Context, telegramID int64) (*types.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	var u types.User
	err := s.pool.QueryRow(ctx, `
SELECT id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), created_at, updated_at
FROM users
WHERE telegram_id = $1
`, telegramID).Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id int64) (*types.User, error) {
	ctx, cancel := opCtx(ctx)
	defer cancel()
	var u types.User
	err := s.pool.QueryRow(ctx, `
SELECT id, telegram_id, COALESCE(username, ''), COALESCE(first_name, ''), COALESCE(last_name, ''), created_at, updated_at
FROM users
WHERE id = $1
`, id).Scan(&u.ID, &u.TelegramID, &u.Username, &u.FirstName, &u.LastName, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, types.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
