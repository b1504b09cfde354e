package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/AndriyMV/task-manager-bot/types"
)

// MemoryStore implements types.TaskStore and types.UserStore without
// external services. Used for tests and STORAGE=memory runs.
type MemoryStore struct {
	mu          sync.RWMutex
	nextID      int64
	tasks       map[int64]*types.Task
	users       map[int64]*types.User
	attachments map[int64]*types.Attachment
	now         func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID:      1,
		tasks:       make(map[int64]*types.Task),
		users:       make(map[int64]*types.User),
		attachments: make(map[int64]*types.Attachment),
		now:         time.Now,
	}
}

func (s *MemoryStore) id() int64 {
	id := s.nextID
	s.nextID++
	return id
}

func (s *MemoryStore) CreateTask(_ context.Context, task *types.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	task.ID = s.id()
	task.CreatedAt = now
	task.UpdatedAt = now
	clone := *task
	s.tasks[task.ID] = &clone
	return nil
}

func (s *MemoryStore) GetTask(_ context.Context, id int64) (*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	clone := *task
	return &clone, nil
}

func (s *MemoryStore) ListTasks(_ context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*types.Task, 0)
	for _, task := range s.tasks {
		if !matchTask(task, filter) {
			continue
		}
		clone := *task
		result = append(result, &clone)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID > result[j].ID
		}
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func matchTask(task *types.Task, f types.TaskFilter) bool {
	if f.UserID != 0 && task.UserID != f.UserID {
		return false
	}
	if f.Status != "" && task.Status != f.Status {
		return false
	}
	if f.Priority != "" && task.Priority != f.Priority {
		return false
	}
	if f.DueFrom != nil && (task.DueDate == nil || task.DueDate.Before(*f.DueFrom)) {
		return false
	}
	if f.DueTo != nil && (task.DueDate == nil || task.DueDate.After(*f.DueTo)) {
		return false
	}
	if f.Query != "" {
		q := strings.ToLower(f.Query)
		if !strings.Contains(strings.ToLower(task.Title), q) &&
			!strings.Contains(strings.ToLower(task.Description), q) {
			return false
		}
	}
	return true
}

func (s *MemoryStore) UpdateTask(_ context.Context, id int64, patch types.TaskPatch) (*types.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	if patch.Title != nil {
		task.Title = *patch.Title
	}
	if patch.Description != nil {
		task.Description = *patch.Description
	}
	if patch.Status != nil {
		task.Status = *patch.Status
	}
	if patch.Priority != nil {
		task.Priority = *patch.Priority
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		task.DueDate = &due
	}
	task.UpdatedAt = s.now()
	clone := *task
	return &clone, nil
}

func (s *MemoryStore) DeleteTask(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.tasks, id)
	for attID, att := range s.attachments {
		if att.TaskID == id {
			delete(s.attachments, attID)
		}
	}
	return nil
}

func (s *MemoryStore) CreateAttachment(_ context.Context, att *types.Attachment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[att.TaskID]; !ok {
		return types.ErrNotFound
	}
	att.ID = s.id()
	att.CreatedAt = s.now()
	clone := *att
	s.attachments[att.ID] = &clone
	return nil
}

func (s *MemoryStore) ListAttachments(_ context.Context, taskID int64) ([]*types.Attachment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]*types.Attachment, 0)
	for _, att := range s.attachments {
		if att.TaskID == taskID {
			clone := *att
			result = append(result, &clone)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (s *MemoryStore) DeleteAttachment(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.attachments[id]; !ok {
		return types.ErrNotFound
	}
	delete(s.attachments, id)
	return nil
}

func (s *MemoryStore) UpsertUser(_ context.Context, user types.User) (*types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for _, existing := range s.users {
		if existing.TelegramID == user.TelegramID {
			existing.Username = user.Username
			existing.FirstName = user.FirstName
			existing.LastName = user.LastName
			existing.UpdatedAt = now
			clone := *existing
			return &clone, nil
		}
	}
	user.ID = s.id()
	user.CreatedAt = now
	user.UpdatedAt = now
	clone := user
	s.users[user.ID] = &clone
	result := user
	return &result, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id int64) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, types.ErrNotFound
	}
	clone := *user
	return &clone, nil
}

func (s *MemoryStore) GetUserByTelegramID(_ context.Context, telegramID int64) (*types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, user := range s.users {
		if user.TelegramID == telegramID {
			clone := *user
			return &clone, nil
		}
	}
	return nil, types.ErrNotFound
}
