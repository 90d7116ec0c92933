package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 12 * time.Hour
	keyPrefix  = "hc:session:"
)

var ErrSessionNotFound = errors.New("session not found")

// Store tracks which login sessions are still valid.
type Store interface {
	Issue(ctx context.Context, userID string, ttl time.Duration) (string, error)
	IsActive(ctx context.Context, userID, sessionID string) (bool, error)
	Revoke(ctx context.Context, userID, sessionID string) error
}

// kv is the subset of go-redis used by RedisStore.
type kv interface {
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps one key per session holding the owning user id.
type RedisStore struct {
	rdb kv
}

func NewRedisStore(rdb kv) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) Issue(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	sessionID := uuid.New().String()
	if err := s.rdb.Set(ctx, keyPrefix+sessionID, userID, ttl).Err(); err != nil {
		return "", err
	}
	return sessionID, nil
}

func (s *RedisStore) IsActive(ctx context.Context, userID, sessionID string) (bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return false, nil
	}
	owner, err := s.rdb.Get(ctx, keyPrefix+sessionID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return owner == userID, nil
}

func (s *RedisStore) Revoke(ctx context.Context, userID, sessionID string) error {
	active, err := s.IsActive(ctx, userID, sessionID)
	if err != nil {
		return err
	}
	if !active {
		return ErrSessionNotFound
	}
	return s.rdb.Del(ctx, keyPrefix+sessionID).Err()
}
