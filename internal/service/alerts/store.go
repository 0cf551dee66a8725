package alerts

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store tracks alert keys that were already dispatched. Seen marks the key
// and reports whether it was present before the call. Implementations must
// be safe for concurrent use: the scheduled monitor loop and manual
// triggers can race on the same key.
type Store interface {
	Seen(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
}

// MemoryStore is a mutex-guarded in-process Store with a per-key TTL, so
// repeated alerts resurface after the window instead of being suppressed
// for the whole process lifetime.
type MemoryStore struct {
	mu   sync.Mutex
	keys map[string]time.Time
	ttl  time.Duration
	now  func() time.Time
}

// NewMemoryStore creates an empty in-memory dedup store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		keys: make(map[string]time.Time),
		ttl:  ttl,
		now:  time.Now,
	}
}

// Seen implements Store.
func (s *MemoryStore) Seen(ctx context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.prune(now)

	if expiry, ok := s.keys[key]; ok && now.Before(expiry) {
		return true, nil
	}
	s.keys[key] = now.Add(s.ttl)
	return false, nil
}

// Clear implements Store.
func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = make(map[string]time.Time)
	return nil
}

// prune drops expired keys so the set stays bounded by the alert volume of
// one TTL window. Caller holds the lock.
func (s *MemoryStore) prune(now time.Time) {
	for key, expiry := range s.keys {
		if !now.Before(expiry) {
			delete(s.keys, key)
		}
	}
}

const redisKeyPrefix = "stockwatch:alert:"

// RedisStore is a redis-backed Store. Keys carry a TTL and survive process
// restarts, so a redeploy does not replay the day's alerts.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore wraps an existing redis client as a dedup store.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// Seen implements Store using SET NX, which is atomic across processes.
func (s *RedisStore) Seen(ctx context.Context, key string) (bool, error) {
	created, err := s.rdb.SetNX(ctx, redisKeyPrefix+key, 1, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx: %w", err)
	}
	return !created, nil
}

// Clear implements Store by dropping every alert key.
func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.rdb.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return fmt.Errorf("redis del %s: %w", iter.Val(), err)
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	return nil
}
