package workspace

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisPrefix namespaces workspace keys.
const DefaultRedisPrefix = "jwtcodec:workspace"

var _ Store = (*RedisStore)(nil)

// RedisStore keeps snapshots under prefix:id with a native redis TTL, so
// Cleanup has nothing to do.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	closed atomic.Bool
}

// NewRedisStore wraps client. An empty prefix uses DefaultRedisPrefix.
func NewRedisStore(client redis.UniversalClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) key(id string) string {
	return s.prefix + ":" + id
}

func (s *RedisStore) Save(ctx context.Context, state *State, ttl time.Duration) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	data, err := marshalState(state)
	if err != nil {
		return err
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := s.client.Set(ctx, s.key(state.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("redis save workspace: %w", err)
	}
	return nil
}

func (s *RedisStore) Load(ctx context.Context, id string) (*State, error) {
	if s.closed.Load() {
		return nil, ErrStoreClosed
	}
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis load workspace: %w", err)
	}
	return unmarshalState(data)
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	if s.closed.Load() {
		return ErrStoreClosed
	}
	n, err := s.client.Del(ctx, s.key(id)).Result()
	if err != nil {
		return fmt.Errorf("redis delete workspace: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Cleanup is a no-op: redis expires keys itself.
func (s *RedisStore) Cleanup(context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}
	return 0, nil
}

// Size counts keys under the prefix with SCAN.
func (s *RedisStore) Size(ctx context.Context) (int, error) {
	if s.closed.Load() {
		return 0, ErrStoreClosed
	}

	var (
		cursor uint64
		count  int
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+":*", 256).Result()
		if err != nil {
			return 0, fmt.Errorf("redis scan workspaces: %w", err)
		}
		count += len(keys)
		cursor = next
		if cursor == 0 {
			return count, nil
		}
	}
}

func (s *RedisStore) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return s.client.Close()
}
