package taskapi

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AndriyMV/task-manager-bot/internal/server"
	"github.com/AndriyMV/task-manager-bot/store"
	"github.com/AndriyMV/task-manager-bot/types"
)

// The client is exercised against the real handler so both ends of the
// bridge stay in sync.
func newBridge(t *testing.T) (*Client, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	srv := httptest.NewServer(server.New(server.Config{Tasks: st, Users: st, BasePath: "/api"}))
	t.Cleanup(srv.Close)
	return New(srv.URL + "/api"), st
}

func TestClientTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	client, _ := newBridge(t)

	user, err := client.UpsertUser(ctx, types.User{TelegramID: 7, FirstName: "Оля"})
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}

	due := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	task := &types.Task{
		UserID:   user.ID,
		Title:    "Через міст",
		Status:   types.StatusPending,
		Priority: types.PriorityHigh,
		DueDate:  &due,
	}
	if err := client.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("create did not backfill the task id")
	}

	fetched, err := client.GetTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if fetched.Title != task.Title || fetched.Priority != types.PriorityHigh {
		t.Errorf("fetched = %+v", fetched)
	}
	if fetched.DueDate == nil || !fetched.DueDate.Equal(due) {
		t.Errorf("due date = %v, want %v", fetched.DueDate, due)
	}

	status := types.StatusCompleted
	updated, err := client.UpdateTask(ctx, task.ID, types.TaskPatch{Status: &status})
	if err != nil {
		t.Fatalf("update task: %v", err)
	}
	if updated.Status != types.StatusCompleted {
		t.Errorf("status = %s", updated.Status)
	}

	list, err := client.ListTasks(ctx, types.TaskFilter{UserID: user.ID, Status: types.StatusCompleted})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(list) != 1 || list[0].ID != task.ID {
		t.Errorf("list = %+v", list)
	}

	if err := client.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := client.GetTask(ctx, task.ID); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("get after delete: %v, want ErrNotFound", err)
	}
}

func TestClientAttachments(t *testing.T) {
	ctx := context.Background()
	client, _ := newBridge(t)

	user, err := client.UpsertUser(ctx, types.User{TelegramID: 8})
	if err != nil {
		t.Fatalf("upsert user: %v", err)
	}
	task := &types.Task{UserID: user.ID, Title: "З вкладенням", Status: types.StatusPending, Priority: types.PriorityMedium}
	if err := client.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	att := &types.Attachment{TaskID: task.ID, Type: "photo", FileID: "AgACAgI"}
	if err := client.CreateAttachment(ctx, att); err != nil {
		t.Fatalf("create attachment: %v", err)
	}
	if att.ID == 0 {
		t.Fatal("create did not backfill the attachment id")
	}

	list, err := client.ListAttachments(ctx, task.ID)
	if err != nil {
		t.Fatalf("list attachments: %v", err)
	}
	if len(list) != 1 || list[0].FileID != "AgACAgI" {
		t.Errorf("attachments = %+v", list)
	}

	if err := client.DeleteAttachment(ctx, att.ID); err != nil {
		t.Fatalf("delete attachment: %v", err)
	}
}

func TestClientSurfacesValidationErrors(t *testing.T) {
	ctx := context.Background()
	client, _ := newBridge(t)

	err := client.CreateTask(ctx, &types.Task{UserID: 1, Status: types.StatusPending, Priority: types.PriorityLow})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.StatusCode != 422 || apiErr.Code != "validation_failed" {
		t.Errorf("apiErr = %+v", apiErr)
	}
}
