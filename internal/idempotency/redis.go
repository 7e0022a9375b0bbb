package idempotency

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	idempotencyKeyPrefix = "idem:"

	// pendingSentinel is the SETNX placeholder that marks a computation as
	// in flight on another instance.
	pendingSentinel = "\x00pending"

	// pendingTTL bounds how long a crashed winner can block the key.
	pendingTTL = 30 * time.Second

	pollInterval = 100 * time.Millisecond
	pollTimeout  = 5 * time.Second
)

// RedisStore is the shared idempotency store. The winner of SETNX on the
// pending placeholder computes; late arrivals poll for the stored result and
// fail closed if it does not appear in time.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates an idempotency store on the given redis client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (r *RedisStore) GetOrCompute(ctx context.Context, key string, fn ComputeFn) ([]byte, bool, error) {
	redisKey := idempotencyKeyPrefix + key

	value, err := r.client.Get(ctx, redisKey).Result()
	if err == nil && value != pendingSentinel {
		return []byte(value), true, nil
	}
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, false, fmt.Errorf("idempotency lookup: %w", err)
	}

	if errors.Is(err, redis.Nil) {
		acquired, err := r.client.SetNX(ctx, redisKey, pendingSentinel, pendingTTL).Result()
		if err != nil {
			return nil, false, fmt.Errorf("idempotency lock: %w", err)
		}
		if acquired {
			payload, err := fn()
			if err != nil {
				// release the key so a retry can run the computation again
				_ = r.client.Del(ctx, redisKey).Err()
				return nil, false, err
			}
			if err := r.client.Set(ctx, redisKey, payload, EntryTTL).Err(); err != nil {
				return nil, false, fmt.Errorf("idempotency store: %w", err)
			}
			return payload, false, nil
		}
	}

	// another caller holds the key: poll for its result
	return r.waitForResult(ctx, redisKey)
}

func (r *RedisStore) waitForResult(ctx context.Context, redisKey string) ([]byte, bool, error) {
	deadline := time.Now().Add(pollTimeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-ticker.C:
		}

		value, err := r.client.Get(ctx, redisKey).Result()
		if errors.Is(err, redis.Nil) {
			// the winner failed and released the key; the client should retry
			return nil, false, fmt.Errorf("idempotent computation failed on another instance")
		}
		if err != nil {
			return nil, false, fmt.Errorf("idempotency poll: %w", err)
		}
		if value != pendingSentinel {
			return []byte(value), true, nil
		}
		if time.Now().After(deadline) {
			return nil, false, fmt.Errorf("timed out waiting for idempotent result")
		}
	}
}
