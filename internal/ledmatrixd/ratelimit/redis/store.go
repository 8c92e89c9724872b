// Package redis backs ratelimit.Store with a Redis counter per key,
// expiring at the limit's period.
package redis

import (
	"context"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/paviro/RPi-LED-Sign-Controller/internal/ledmatrixd/ratelimit"
)

// Store implements ratelimit.Store using Redis INCR/EXPIRE.
type Store struct {
	client *redis.Client
}

// NewStore wraps an already-connected Redis client.
func NewStore(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) keyStr(key ratelimit.LimitKey) string {
	return fmt.Sprintf("ledmatrixd:rate:%s:%s", key.Type, key.RemoteIP)
}

// Increment bumps the counter and (re)sets its expiry on every call, so a
// key idle past limit.Period resets to a fresh window on next use.
func (s *Store) Increment(ctx context.Context, key ratelimit.LimitKey, limit ratelimit.Limit) (int, error) {
	redisKey := s.keyStr(key)

	pipe := s.client.Pipeline()
	incrCmd := pipe.Incr(ctx, redisKey)
	pipe.Expire(ctx, redisKey, limit.Period)

	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
	}

	return int(incrCmd.Val()), nil
}

// Reset clears key's counter.
func (s *Store) Reset(ctx context.Context, key ratelimit.LimitKey) error {
	if err := s.client.Del(ctx, s.keyStr(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
	}
	return nil
}

// GetCount returns the current window's count for key without mutating it.
// Returns 0 for an unset key.
func (s *Store) GetCount(ctx context.Context, key ratelimit.LimitKey) (int, error) {
	val, err := s.client.Get(ctx, s.keyStr(key)).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ratelimit.ErrStoreError, err)
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid count value: %v", ratelimit.ErrStoreError, err)
	}
	return count, nil
}
