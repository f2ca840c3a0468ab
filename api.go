package greetcount

import (
	"context"
	"time"

	c "github.com/unkn0wn-root/greetcount/codec"
	pr "github.com/unkn0wn-root/greetcount/provider"
)

// Mode selects how a hit increments the stored counter.
type Mode int

const (
	// ModeReadModifyWrite reads, increments in process and writes back without
	// waiting. Concurrent hits on one key can lose updates.
	ModeReadModifyWrite Mode = iota
	// ModeAtomic increments inside the store. Requires a provider.Incrementer
	// and the decimal codec.
	ModeAtomic
)

func (m Mode) String() string {
	switch m {
	case ModeReadModifyWrite:
		return "rmw"
	case ModeAtomic:
		return "atomic"
	}
	return "unknown"
}

// MalformedPolicy decides what a hit does with a stored value the codec cannot decode.
type MalformedPolicy int

const (
	// ResetMalformed treats the value as 0; the hit reports 1 and overwrites it.
	ResetMalformed MalformedPolicy = iota
	// FailMalformed returns an error wrapping ErrMalformed.
	FailMalformed
)

// Counter is the per-key access counter served to request handlers.
type Counter interface {
	// Hit increments the counter for key and returns the new value.
	// A read failure is returned as is; the write-back is never reported.
	Hit(ctx context.Context, key string) (int64, error)

	// Ping checks the backing store when it supports it.
	Ping(ctx context.Context) error

	// Close waits for pending writes (bounded by ctx) and closes the provider.
	Close(ctx context.Context) error
}

// Options configure a Counter or an Accessor.
// Only Provider is required; others have sensible defaults.
type Options struct {
	Provider pr.Provider // required

	Codec        c.Codec[int64]  // nil => codec.Default() (decimal)
	Namespace    string          // optional key prefix
	Mode         Mode            // default ModeReadModifyWrite
	OnMalformed  MalformedPolicy // default ResetMalformed
	TTL          time.Duration   // counter expiry; 0 => never
	WriteTimeout time.Duration   // bound for fire-and-forget writes; 0 => 5s
	Logger       Logger          // nil => NopLogger
	Hooks        Hooks           // nil => NopHooks
}

func New(opts Options) (Counter, error) {
	return newCounter(opts)
}
