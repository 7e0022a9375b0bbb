package otp

import (
	"context"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	sessionKeyPrefix = "otp:session:"

	// usedSentinel replaces the session value after a successful consume so a
	// replayed token is reported as "used" instead of "missing".
	usedSentinel = "\x00used"
)

// RedisSessionStore is the shared session store. Atomicity of Consume rests on
// GETDEL: of N concurrent consumers exactly one receives the stored phone.
// Expired sessions are evicted by redis itself and are indistinguishable from
// never-issued tokens, so they surface as "missing".
type RedisSessionStore struct {
	client *redis.Client
}

// NewRedisSessionStore creates a session store on the given redis client.
func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (r *RedisSessionStore) Create(ctx context.Context, phone string) (*Session, error) {
	token, err := newSessionToken()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	expiresAt := time.Now().Add(SessionTTL)
	if err := r.client.Set(ctx, sessionKeyPrefix+token, phone, SessionTTL).Err(); err != nil {
		return nil, err
	}

	return &Session{Token: token, Phone: phone, ExpiresAt: expiresAt}, nil
}

func (r *RedisSessionStore) Consume(ctx context.Context, token string) (ConsumeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	key := sessionKeyPrefix + token
	value, err := r.client.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return ConsumeResult{Reason: ReasonMissing}, nil
	}
	if err != nil {
		return ConsumeResult{Reason: ReasonMissing}, err
	}

	if value == usedSentinel {
		// GETDEL removed the tombstone; put it back for later replays.
		_ = r.client.Set(ctx, key, usedSentinel, SessionTTL).Err()
		return ConsumeResult{Reason: ReasonUsed}, nil
	}

	// Tombstone the consumed session for the remainder of its lifetime.
	if err := r.client.Set(ctx, key, usedSentinel, SessionTTL).Err(); err != nil {
		// The consume itself already succeeded; a lost tombstone only degrades
		// the replay error from "used" to "missing".
		return ConsumeResult{OK: true, Phone: value}, nil
	}

	return ConsumeResult{OK: true, Phone: value}, nil
}
