// Package taskapi is the HTTP bridge to the task API. The client
// implements types.TaskStore, so callers that can reach the database
// directly and callers that go over the wire are interchangeable. User
// registration is exposed as UpsertUser, mirroring POST /users.
package taskapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/AndriyMV/task-manager-bot/types"
)

type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for a base URL like "http://localhost:8080/api".
func New(baseURL string) *Client {
	return &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// APIError wraps non-2xx responses, carrying the decoded envelope.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
}

func (c *Client) do(ctx context.Context, method, endpoint string, body any, out any) error {
	u := strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(endpoint, "/")
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, u, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		if resp.StatusCode == http.StatusNotFound {
			return types.ErrNotFound
		}
		b, _ := io.ReadAll(resp.Body)
		var envelope struct {
			Error struct {
				Code    string `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		_ = json.Unmarshal(b, &envelope)
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
		}
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

type taskBody struct {
	UserID      int64      `json:"user_id,omitempty"`
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
}

func (c *Client) CreateTask(ctx context.Context, task *types.Task) error {
	body := map[string]any{
		"user_id":  task.UserID,
		"title":    task.Title,
		"status":   string(task.Status),
		"priority": string(task.Priority),
	}
	if task.Description != "" {
		body["description"] = task.Description
	}
	if task.DueDate != nil {
		body["due_date"] = task.DueDate
	}
	var created types.Task
	if err := c.do(ctx, http.MethodPost, "tasks", body, &created); err != nil {
		return err
	}
	*task = created
	return nil
}

func (c *Client) GetTask(ctx context.Context, id int64) (*types.Task, error) {
	var task types.Task
	if err := c.do(ctx, http.MethodGet, "tasks/"+formatID(id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) ListTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	values := url.Values{}
	if filter.UserID != 0 {
		values.Set("user_id", formatID(filter.UserID))
	}
	if filter.Status != "" {
		values.Set("status", string(filter.Status))
	}
	if filter.Priority != "" {
		values.Set("priority", string(filter.Priority))
	}
	if filter.DueFrom != nil {
		values.Set("due_from", filter.DueFrom.Format(time.RFC3339))
	}
	if filter.DueTo != nil {
		values.Set("due_to", filter.DueTo.Format(time.RFC3339))
	}
	if filter.Query != "" {
		values.Set("q", filter.Query)
	}
	endpoint := "tasks"
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}
	var body struct {
		Tasks []*types.Task `json:"tasks"`
	}
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &body); err != nil {
		return nil, err
	}
	return body.Tasks, nil
}

func (c *Client) UpdateTask(ctx context.Context, id int64, patch types.TaskPatch) (*types.Task, error) {
	body := taskBody{
		Title:       patch.Title,
		Description: patch.Description,
		DueDate:     patch.DueDate,
	}
	if patch.Status != nil {
		s := string(*patch.Status)
		body.Status = &s
	}
	if patch.Priority != nil {
		p := string(*patch.Priority)
		body.Priority = &p
	}
	var task types.Task
	if err := c.do(ctx, http.MethodPut, "tasks/"+formatID(id), body, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "tasks/"+formatID(id), nil, nil)
}

func (c *Client) CreateAttachment(ctx context.Context, att *types.Attachment) error {
	body := map[string]any{
		"type": att.Type,
	}
	if att.FileID != "" {
		body["file_id"] = att.FileID
	}
	if att.FileURL != "" {
		body["file_url"] = att.FileURL
	}
	if att.OriginalName != "" {
		body["original_name"] = att.OriginalName
	}
	if att.MimeType != "" {
		body["mime_type"] = att.MimeType
	}
	var created types.Attachment
	if err := c.do(ctx, http.MethodPost, "tasks/"+formatID(att.TaskID)+"/attachments", body, &created); err != nil {
		return err
	}
	*att = created
	return nil
}

func (c *Client) ListAttachments(ctx context.Context, taskID int64) ([]*types.Attachment, error) {
	var body struct {
		Attachments []*types.Attachment `json:"attachments"`
	}
	if err := c.do(ctx, http.MethodGet, "tasks/"+formatID(taskID)+"/attachments", nil, &body); err != nil {
		return nil, err
	}
	return body.Attachments, nil
}

func (c *Client) DeleteAttachment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "attachments/"+formatID(id), nil, nil)
}

func (c *Client) UpsertUser(ctx context.Context, user types.User) (*types.User, error) {
	body := map[string]any{
		"telegram_id": user.TelegramID,
	}
	if user.Username != "" {
		body["username"] = user.Username
	}
	if user.FirstName != "" {
		body["first_name"] = user.FirstName
	}
	if user.LastName != "" {
		body["last_name"] = user.LastName
	}
	var stored types.User
	if err := c.do(ctx, http.MethodPost, "users", body, &stored); err != nil {
		return nil, err
	}
	return &stored, nil
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
