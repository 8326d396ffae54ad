package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/napatw/lingothai/internal/lesson"
)

// LocalStore is the device-side key-value backend for session snapshots.
type LocalStore interface {
	Get(ctx context.Context, key lesson.Key) (*lesson.Snapshot, error)
	Set(ctx context.Context, snap *lesson.Snapshot) error
	Delete(ctx context.Context, key lesson.Key) error
}

// RedisStore keeps snapshots in Redis with a TTL so abandoned sessions
// eventually expire on their own.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

var _ LocalStore = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	return &RedisStore{client: client, ttl: ttl}
}

func (s *RedisStore) key(key lesson.Key) string {
	return fmt.Sprintf("lesson:snapshot:%s:%s", key.UserID, key.LessonID)
}

func (s *RedisStore) Get(ctx context.Context, key lesson.Key) (*lesson.Snapshot, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get snapshot: %w", err)
	}

	var snap lesson.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	return &snap, nil
}

func (s *RedisStore) Set(ctx context.Context, snap *lesson.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	return s.client.Set(ctx, s.key(snap.Key), data, s.ttl).Err()
}

func (s *RedisStore) Delete(ctx context.Context, key lesson.Key) error {
	return s.client.Del(ctx, s.key(key)).Err()
}
