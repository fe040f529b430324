package pagination

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrNotFound indicates no page has been stored for the key yet
	ErrNotFound = errors.New("page not found")

	// ErrConflict indicates a concurrent writer kept winning the update race
	ErrConflict = errors.New("page update conflict")
)

// maxUpdateAttempts bounds optimistic transaction retries in RedisStore.
const maxUpdateAttempts = 5

// UpdateFunc computes the next page from the current one.
// Returning an error aborts the update without writing.
type UpdateFunc func(current int) (int, error)

// Store persists page numbers by key.
type Store interface {
	// Get returns the stored page or ErrNotFound.
	Get(ctx context.Context, key string) (int, error)

	// Update atomically applies fn to the stored page (DefaultPage when
	// absent) and stores the result.
	Update(ctx context.Context, key string, fn UpdateFunc) (int, error)

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error
}

// MemoryStore keeps pages in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	pages map[string]int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{pages: make(map[string]int)}
}

// Get implements Store.
func (s *MemoryStore) Get(_ context.Context, key string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	page, ok := s.pages[key]
	if !ok {
		return 0, ErrNotFound
	}
	return page, nil
}

// Update implements Store.
func (s *MemoryStore) Update(_ context.Context, key string, fn UpdateFunc) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.pages[key]
	if !ok {
		current = DefaultPage
	}

	next, err := fn(current)
	if err != nil {
		return current, err
	}
	s.pages[key] = next
	return next, nil
}

// Ping implements Store.
func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// RedisStore keeps pages in Redis so several server replicas share them.
type RedisStore struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewRedisStore creates a Redis-backed store. A ttl of 0 keeps keys forever.
func NewRedisStore(redisClient *redis.Client, ttl time.Duration) *RedisStore {
	if redisClient == nil {
		panic("redis client cannot be nil")
	}
	return &RedisStore{
		redis: redisClient,
		ttl:   ttl,
	}
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) (int, error) {
	page, err := s.redis.Get(ctx, key).Int()
	if err != nil {
		if err == redis.Nil {
			return 0, ErrNotFound
		}
		StoreErrors.WithLabelValues("get").Inc()
		return 0, fmt.Errorf("redis get: %w", err)
	}
	return page, nil
}

// Update implements Store using an optimistic WATCH/MULTI transaction.
func (s *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) (int, error) {
	var (
		result int
		fnErr  error
	)

	txf := func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, key).Int()
		if err == redis.Nil {
			current = DefaultPage
		} else if err != nil {
			return fmt.Errorf("redis get: %w", err)
		}

		next, err := fn(current)
		if err != nil {
			result, fnErr = current, err
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		result = next
		return nil
	}

	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		err := s.redis.Watch(ctx, txf, key)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if fnErr != nil {
			return result, fnErr
		}
		StoreErrors.WithLabelValues("update").Inc()
		return 0, fmt.Errorf("redis update: %w", err)
	}

	StoreErrors.WithLabelValues("update").Inc()
	return 0, fmt.Errorf("%w after %d attempts", ErrConflict, maxUpdateAttempts)
}

// Ping implements Store.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.redis.Ping(ctx).Err()
}
