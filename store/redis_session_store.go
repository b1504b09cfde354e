package store

import (
	"context"
	"fmt"
	"time"
)

// RedisSessionStore keeps one flag map per chat. Entries survive
// process restarts; ttl 0 means no expiry, a positive ttl gives the
// time-boxed variant used for short-lived flows.
type RedisSessionStore struct {
	client *RedisClient
	ttl    time.Duration
}

func NewRedisSessionStore(client *RedisClient, ttl time.Duration) *RedisSessionStore {
	return &RedisSessionStore{client: client, ttl: ttl}
}

func (s *RedisSessionStore) sessionKey(chatID int64) string {
	return s.client.key("session", fmt.Sprintf("%d", chatID))
}

func (s *RedisSessionStore) load(ctx context.Context, chatID int64) map[string]string {
	var values map[string]string
	if err := s.client.Get(ctx, s.sessionKey(chatID), &values); err != nil || values == nil {
		return make(map[string]string)
	}
	return values
}

func (s *RedisSessionStore) Get(ctx context.Context, chatID int64, key string) (string, bool, error) {
	values := s.load(ctx, chatID)
	v, ok := values[key]
	return v, ok, nil
}

func (s *RedisSessionStore) Set(ctx context.Context, chatID int64, key, value string) error {
	values := s.load(ctx, chatID)
	values[key] = value
	return s.client.Set(ctx, s.sessionKey(chatID), values, s.ttl)
}

func (s *RedisSessionStore) Forget(ctx context.Context, chatID int64, keys ...string) error {
	values := s.load(ctx, chatID)
	for _, k := range keys {
		delete(values, k)
	}
	if len(values) == 0 {
		return s.client.Del(ctx, s.sessionKey(chatID))
	}
	return s.client.Set(ctx, s.sessionKey(chatID), values, s.ttl)
}
