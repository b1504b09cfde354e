package types

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("not found")

const MaxTitleLength = 255

type Task struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"user_id"`
	Title       string       `json:"title"`
	Description string       `json:"description,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

type Attachment struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	Type         string    `json:"type"`
	FileID       string    `json:"file_id,omitempty"`
	FileURL      string    `json:"file_url,omitempty"`
	OriginalName string    `json:"original_name,omitempty"`
	MimeType     string    `json:"mime_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// TaskFilter narrows ListTasks. Zero-valued fields are ignored;
// set fields combine with AND semantics. Query matches title or
// description case-insensitively.
type TaskFilter struct {
	UserID   int64
	Status   TaskStatus
	Priority TaskPriority
	DueFrom  *time.Time
	DueTo    *time.Time
	Query    string
}

// TaskPatch is a partial update; nil fields are left untouched.
type TaskPatch struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
}

// TaskStore is the repository contract shared by the API handlers,
// the dialogue dispatcher and the HTTP bridge client. Lists are
// returned newest first.
type TaskStore interface {
	CreateTask(ctx context.Context, task *Task) error
	GetTask(ctx context.Context, id int64) (*Task, error)
	ListTasks(ctx context.Context, filter TaskFilter) ([]*Task, error)
	UpdateTask(ctx context.Context, id int64, patch TaskPatch) (*Task, error)
	DeleteTask(ctx context.Context, id int64) error

	CreateAttachment(ctx context.Context, att *Attachment) error
	ListAttachments(ctx context.Context, taskID int64) ([]*Attachment, error)
	DeleteAttachment(ctx context.Context, id int64) error
}
