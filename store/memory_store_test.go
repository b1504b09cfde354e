package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AndriyMV/task-manager-bot/types"
)

func seedTasks(t *testing.T, s *MemoryStore) []*types.Task {
	t.Helper()
	ctx := context.Background()
	due := time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC)
	tasks := []*types.Task{
		{UserID: 1, Title: "Купити хліб", Status: types.StatusPending, Priority: types.PriorityLow},
		{UserID: 1, Title: "Звіт", Description: "річний звіт для бухгалтерії", Status: types.StatusCompleted, Priority: types.PriorityHigh, DueDate: &due},
		{UserID: 2, Title: "Чужа задача", Status: types.StatusPending, Priority: types.PriorityMedium},
	}
	for _, task := range tasks {
		if err := s.CreateTask(ctx, task); err != nil {
			t.Fatal(err)
		}
	}
	return tasks
}

func TestMemoryStoreListFilters(t *testing.T) {
	s := NewMemoryStore()
	seedTasks(t, s)
	ctx := context.Background()

	cases := []struct {
		name   string
		filter types.TaskFilter
		want   []string
	}{
		{"by user", types.TaskFilter{UserID: 1}, []string{"Звіт", "Купити хліб"}},
		{"by status", types.TaskFilter{Status: types.StatusPending}, []string{"Чужа задача", "Купити хліб"}},
		{"user and priority", types.TaskFilter{UserID: 1, Priority: types.PriorityHigh}, []string{"Звіт"}},
		{"query on title", types.TaskFilter{Query: "хліб"}, []string{"Купити хліб"}},
		{"query on description", types.TaskFilter{Query: "БУХГАЛТЕР"}, []string{"Звіт"}},
		{"query misses", types.TaskFilter{Query: "нічого"}, nil},
		{
			"due range",
			types.TaskFilter{
				DueFrom: timePtr(time.Date(2025, 3, 15, 0, 0, 0, 0, time.UTC)),
				DueTo:   timePtr(time.Date(2025, 3, 15, 23, 59, 59, 0, time.UTC)),
			},
			[]string{"Звіт"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := s.ListTasks(ctx, tc.filter)
			if err != nil {
				t.Fatal(err)
			}
			if len(got) != len(tc.want) {
				t.Fatalf("got %d tasks, want %d", len(got), len(tc.want))
			}
			for i, title := range tc.want {
				if got[i].Title != title {
					t.Errorf("task %d = %q, want %q", i, got[i].Title, title)
				}
			}
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestMemoryStoreOrdering(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	i := 0
	s.now = func() time.Time {
		// First two tasks share a timestamp, the third is newer.
		if i < 2 {
			i++
			return base
		}
		return base.Add(time.Hour)
	}
	ctx := context.Background()
	for _, title := range []string{"перша", "друга", "третя"} {
		if err := s.CreateTask(ctx, &types.Task{UserID: 1, Title: title, Status: types.StatusPending, Priority: types.PriorityLow}); err != nil {
			t.Fatal(err)
		}
	}
	got, err := s.ListTasks(ctx, types.TaskFilter{})
	if err != nil {
		t.Fatal(err)
	}
	want := []string{"третя", "друга", "перша"}
	for i, title := range want {
		if got[i].Title != title {
			t.Errorf("position %d = %q, want %q", i, got[i].Title, title)
		}
	}
}

func TestMemoryStoreUpdatePatchSemantics(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	task := &types.Task{UserID: 1, Title: "Початкова", Description: "опис", Status: types.StatusPending, Priority: types.PriorityLow}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}

	status := types.StatusInProgress
	updated, err := s.UpdateTask(ctx, task.ID, types.TaskPatch{Status: &status})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != types.StatusInProgress {
		t.Errorf("status = %s", updated.Status)
	}
	if updated.Title != "Початкова" || updated.Description != "опис" {
		t.Errorf("patch touched unrelated fields: %+v", updated)
	}

	if _, err := s.UpdateTask(ctx, 9999, types.TaskPatch{Status: &status}); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("update missing task: %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreDeleteSweepsAttachments(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	task := &types.Task{UserID: 1, Title: "З вкладеннями", Status: types.StatusPending, Priority: types.PriorityLow}
	if err := s.CreateTask(ctx, task); err != nil {
		t.Fatal(err)
	}
	att := &types.Attachment{TaskID: task.ID, Type: "document", FileID: "f1"}
	if err := s.CreateAttachment(ctx, att); err != nil {
		t.Fatal(err)
	}

	if err := s.DeleteTask(ctx, task.ID); err != nil {
		t.Fatal(err)
	}
	list, err := s.ListAttachments(ctx, task.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 0 {
		t.Errorf("attachments survived task delete: %+v", list)
	}
}

func TestMemoryStoreUpsertUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.UpsertUser(ctx, types.User{TelegramID: 42, FirstName: "Олена"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.UpsertUser(ctx, types.User{TelegramID: 42, FirstName: "Олена", Username: "olena"})
	if err != nil {
		t.Fatal(err)
	}
	if second.ID != first.ID {
		t.Errorf("upsert created a new row: %d then %d", first.ID, second.ID)
	}
	if second.Username != "olena" {
		t.Errorf("upsert did not refresh fields: %+v", second)
	}

	byID, err := s.GetUserByID(ctx, first.ID)
	if err != nil || byID.TelegramID != 42 {
		t.Errorf("GetUserByID = %+v, %v", byID, err)
	}
	if _, err := s.GetUserByTelegramID(ctx, 404); !errors.Is(err, types.ErrNotFound) {
		t.Errorf("missing user: %v, want ErrNotFound", err)
	}
}
