package idempotency

import (
	"context"
	"time"
)

// EntryTTL is how long a stored result keeps deduplicating retries. It bounds
// store growth; it is not a correctness window.
const EntryTTL = time.Hour

// ComputeFn produces the side-effecting result exactly once per key.
type ComputeFn func() ([]byte, error)

// Store deduplicates a compute-and-persist operation by caller-supplied key.
// GetOrCompute returns the stored payload and replayed=true when the key was
// already computed within the TTL window; otherwise it runs fn exactly once,
// stores its result, and returns it. Concurrent first-time calls with the same
// key observe the winner's result rather than recomputing — late arrivals wait
// for the in-flight computation.
type Store interface {
	GetOrCompute(ctx context.Context, key string, fn ComputeFn) (payload []byte, replayed bool, err error)
}
