package store

import (
	"context"
	"testing"
	"time"
)

func TestMemorySessionStoreIsolatesChats(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(0)

	if err := s.Set(ctx, 1, "prompt", "awaiting_task_title"); err != nil {
		t.Fatal(err)
	}
	if v, ok, _ := s.Get(ctx, 1, "prompt"); !ok || v != "awaiting_task_title" {
		t.Errorf("chat 1 prompt = %q, %v", v, ok)
	}
	if _, ok, _ := s.Get(ctx, 2, "prompt"); ok {
		t.Error("chat 2 sees chat 1 state")
	}

	if err := s.Forget(ctx, 1, "prompt"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, 1, "prompt"); ok {
		t.Error("forgotten key still present")
	}
}

func TestMemorySessionStoreExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(300 * time.Second)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.Set(ctx, 1, "task_title", "Купити молоко"); err != nil {
		t.Fatal(err)
	}
	now = now.Add(299 * time.Second)
	if v, ok, _ := s.Get(ctx, 1, "task_title"); !ok || v != "Купити молоко" {
		t.Errorf("value gone before ttl: %q, %v", v, ok)
	}

	now = now.Add(2 * time.Second)
	if _, ok, _ := s.Get(ctx, 1, "task_title"); ok {
		t.Error("value survived past ttl")
	}
}

func TestMemorySessionStoreWriteExtendsTTL(t *testing.T) {
	ctx := context.Background()
	s := NewMemorySessionStore(300 * time.Second)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	_ = s.Set(ctx, 1, "task_title", "Перше")
	now = now.Add(200 * time.Second)
	_ = s.Set(ctx, 1, "task_description", "Друге")

	// The first key rides on the refreshed session deadline.
	now = now.Add(200 * time.Second)
	if _, ok, _ := s.Get(ctx, 1, "task_title"); !ok {
		t.Error("write did not extend the session deadline")
	}
}
