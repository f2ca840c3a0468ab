package greetcount

import (
	"context"
	"time"

	"github.com/unkn0wn-root/greetcount/internal/keys"
	pr "github.com/unkn0wn-root/greetcount/provider"
)

// Accessor reads and writes raw counter values.
// Get surfaces store failures; Set never reports anything to its caller.
type Accessor struct {
	provider     pr.Provider
	ns           string
	ttl          time.Duration
	writeTimeout time.Duration
	log          Logger
	hooks        Hooks
	writes       *writeQueue
}

// NewAccessor builds an Accessor from the Provider, Namespace, TTL,
// WriteTimeout, Logger and Hooks fields of opts.
func NewAccessor(opts Options) (*Accessor, error) {
	if opts.Provider == nil {
		return nil, ErrNoProvider
	}
	return &Accessor{
		provider:     opts.Provider,
		ns:           opts.Namespace,
		ttl:          opts.TTL,
		writeTimeout: coalesce[time.Duration](opts.WriteTimeout, defaultWriteTimeout),
		log:          coalesce[Logger](opts.Logger, NopLogger{}),
		hooks:        coalesce[Hooks](opts.Hooks, NopHooks{}),
		writes:       newWriteQueue(),
	}, nil
}

// Get returns the stored value for key, or defaultValue when the key is absent.
// Writes already issued for key are applied before the read.
func (a *Accessor) Get(ctx context.Context, key, defaultValue string) (string, error) {
	k := a.storageKey(key)
	if err := a.writes.wait(ctx, k); err != nil {
		return "", &KeyError{Op: "get", Key: key, Err: err}
	}
	raw, ok, err := a.provider.Get(ctx, k)
	if err != nil {
		a.hooks.ReadFailed(key, err)
		return "", &KeyError{Op: "get", Key: key, Err: err}
	}
	if !ok {
		return defaultValue, nil
	}
	return string(raw), nil
}

// Set issues a write of value for key and returns immediately. The write
// outlives ctx's cancellation but is bounded by the write timeout; its
// failure only reaches the hooks and the log.
func (a *Accessor) Set(ctx context.Context, key, value string) {
	k := a.storageKey(key)
	detached := context.WithoutCancel(ctx)
	queued := a.writes.enqueue(k, func() {
		wctx, cancel := context.WithTimeout(detached, a.writeTimeout)
		defer cancel()
		if err := a.provider.Set(wctx, k, []byte(value), a.ttl); err != nil {
			a.hooks.WriteFailed(key, err)
			a.log.Warn("counter write failed", Fields{"key": key, "err": err})
		}
	})
	if !queued {
		a.hooks.WriteFailed(key, ErrClosed)
		a.log.Debug("counter write dropped after close", Fields{"key": key})
	}
}

// Close waits for pending writes (bounded by ctx) and closes the provider.
func (a *Accessor) Close(ctx context.Context) error {
	if err := a.writes.close(ctx); err != nil {
		a.log.Warn("pending counter writes abandoned", Fields{"err": err})
	}
	return a.provider.Close(ctx)
}

func (a *Accessor) storageKey(key string) string {
	return keys.Storage(a.ns, key)
}
