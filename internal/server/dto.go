package server

import (
	"time"

	"github.com/AndriyMV/task-manager-bot/types"
)

type TaskResponse struct {
	ID          int64      `json:"id"`
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status" enum:"pending,in_progress,completed,cancelled"`
	Priority    string     `json:"priority" enum:"low,medium,high"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func taskResponse(t *types.Task) TaskResponse {
	return TaskResponse{
		ID:          t.ID,
		UserID:      t.UserID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func taskResponses(tasks []*types.Task) []TaskResponse {
	out := make([]TaskResponse, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, taskResponse(t))
	}
	return out
}

// Enum and length checks happen in the handlers so violations use the
// 422 validation envelope instead of huma's schema errors.
type CreateTaskRequest struct {
	UserID      int64      `json:"user_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      string     `json:"status,omitempty"`
	Priority    string     `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

type AttachmentResponse struct {
	ID           int64     `json:"id"`
	TaskID       int64     `json:"task_id"`
	Type         string    `json:"type"`
	FileID       string    `json:"file_id,omitempty"`
	FileURL      string    `json:"file_url,omitempty"`
	OriginalName string    `json:"original_name,omitempty"`
	MimeType     string    `json:"mime_type,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func attachmentResponse(a *types.Attachment) AttachmentResponse {
	return AttachmentResponse{
		ID:           a.ID,
		TaskID:       a.TaskID,
		Type:         a.Type,
		FileID:       a.FileID,
		FileURL:      a.FileURL,
		OriginalName: a.OriginalName,
		MimeType:     a.MimeType,
		CreatedAt:    a.CreatedAt,
	}
}

type CreateAttachmentRequest struct {
	Type         string `json:"type"`
	FileID       string `json:"file_id,omitempty"`
	FileURL      string `json:"file_url,omitempty"`
	OriginalName string `json:"original_name,omitempty"`
	MimeType     string `json:"mime_type,omitempty"`
}

type UpsertUserRequest struct {
	TelegramID int64  `json:"telegram_id" minimum:"1"`
	Username   string `json:"username,omitempty"`
	FirstName  string `json:"first_name,omitempty"`
	LastName   string `json:"last_name,omitempty"`
}

type UserResponse struct {
	ID         int64     `json:"id"`
	TelegramID int64     `json:"telegram_id"`
	Username   string    `json:"username,omitempty"`
	FirstName  string    `json:"first_name,omitempty"`
	LastName   string    `json:"last_name,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func userResponse(u *types.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		TelegramID: u.TelegramID,
		Username:   u.Username,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}
