// Package provider defines the storage abstraction used by greetcount.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly the
// same []byte that was previously passed to Set for a key. Counters are stored
// as whatever the configured codec produced (a decimal string by default), so a
// store that rewrites values breaks both decoding and atomic increments.
package provider

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrNotInteger is returned by Incr when the stored value is not a
	// non-negative decimal integer.
	ErrNotInteger = errors.New("provider: value is not an integer")
	// ErrOverflow is returned by Incr when the stored value is math.MaxInt64.
	ErrOverflow = errors.New("provider: increment would overflow")
)

// Provider is a minimal byte store with TTLs.
// Must be safe for concurrent use.
type Provider interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) on miss.
	// If an IO/remote error happens, return (nil, false, err).
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value with the given TTL. ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Del removes a key (best-effort).
	Del(ctx context.Context, key string) error

	// Close releases resources.
	Close(ctx context.Context) error
}

// Incrementer is implemented by stores with an atomic increment on decimal
// values. A missing key counts as 0, so the first Incr returns 1. Negative
// values are rejected with ErrNotInteger and the stored value is left as is.
type Incrementer interface {
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
}

// Pinger is implemented by stores that can report liveness of a remote backend.
type Pinger interface {
	Ping(ctx context.Context) error
}
