package store

import (
	"context"
	"sync"
	"time"
)

type sessionEntry struct {
	values    map[string]string
	expiresAt time.Time
}

// MemorySessionStore is the cache-backed session variant: per-chat
// flag maps with an optional expiry, gone on restart. Suitable for
// short single-flow dialogues and for tests.
type MemorySessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[int64]*sessionEntry
	now      func() time.Time
}

func NewMemorySessionStore(ttl time.Duration) *MemorySessionStore {
	return &MemorySessionStore{
		ttl:      ttl,
		sessions: make(map[int64]*sessionEntry),
		now:      time.Now,
	}
}

func (s *MemorySessionStore) entry(chatID int64) *sessionEntry {
	e, ok := s.sessions[chatID]
	if ok && (s.ttl == 0 || e.expiresAt.After(s.now())) {
		return e
	}
	e = &sessionEntry{values: make(map[string]string)}
	s.sessions[chatID] = e
	return e
}

func (s *MemorySessionStore) Get(_ context.Context, chatID int64, key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.entry(chatID).values[key]
	return v, ok, nil
}

func (s *MemorySessionStore) Set(_ context.Context, chatID int64, key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(chatID)
	e.values[key] = value
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}
	return nil
}

func (s *MemorySessionStore) Forget(_ context.Context, chatID int64, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(chatID)
	for _, k := range keys {
		delete(e.values, k)
	}
	return nil
}
