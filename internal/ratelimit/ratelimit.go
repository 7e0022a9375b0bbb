package ratelimit

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Decision is the outcome of a rate-limit check.
type Decision struct {
	Allowed   bool
	Remaining int
}

// Store is the backing counter store. Incr must atomically increment the
// counter for key within its current fixed window, creating the window with
// the given TTL on the first hit, and return the post-increment count.
type Store interface {
	Incr(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter is a fixed-window request counter. A caller near a window boundary
// may get up to 2×max requests through across two adjacent windows; that
// approximation is accepted in exchange for a single atomic INCR per check.
type Limiter struct {
	store Store
	log   *logrus.Logger
}

// NewLimiter creates a limiter on top of the given store.
func NewLimiter(store Store, log *logrus.Logger) *Limiter {
	return &Limiter{store: store, log: log}
}

// Allow counts one request against key and reports whether it fits within max
// for the current window. Store failures fail open: an unreachable counter
// must not take the booking form down, so the request is allowed and the
// failure logged.
func (l *Limiter) Allow(ctx context.Context, key string, window time.Duration, max int) Decision {
	count, err := l.store.Incr(ctx, key, window)
	if err != nil {
		l.log.WithFields(logrus.Fields{
			"key":   key,
			"error": err.Error(),
		}).Warn("rate limit store unreachable, failing open")
		return Decision{Allowed: true, Remaining: 0}
	}

	remaining := max - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return Decision{
		Allowed:   count <= int64(max),
		Remaining: remaining,
	}
}
