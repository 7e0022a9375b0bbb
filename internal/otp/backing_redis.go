package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const otpKeyPrefix = "otp:code:"

// RedisBackingStore keeps OTP records in redis with native TTL expiry.
type RedisBackingStore struct {
	client *redis.Client
}

// NewRedisBackingStore creates an OTP backing store on the given redis client.
func NewRedisBackingStore(client *redis.Client) *RedisBackingStore {
	return &RedisBackingStore{client: client}
}

func (r *RedisBackingStore) Put(ctx context.Context, phone string, rec Record) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	// SET overwrites any prior record for the phone: last issuance wins.
	return r.client.Set(ctx, otpKeyPrefix+phone, payload, ttl).Err()
}

func (r *RedisBackingStore) Get(ctx context.Context, phone string) (*Record, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	payload, err := r.client.Get(ctx, otpKeyPrefix+phone).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal([]byte(payload), &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &rec, nil
}

func (r *RedisBackingStore) Delete(ctx context.Context, phone string) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return r.client.Del(ctx, otpKeyPrefix+phone).Err()
}
