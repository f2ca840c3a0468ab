package greetcount

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync/atomic"

	c "github.com/unkn0wn-root/greetcount/codec"
	pr "github.com/unkn0wn-root/greetcount/provider"
)

type counter struct {
	acc       *Accessor
	codec     c.Codec[int64]
	mode      Mode
	malformed MalformedPolicy
	incr      pr.Incrementer // set in ModeAtomic
	zero      string         // encoded 0, the default for absent keys
	log       Logger
	hooks     Hooks
	closed    atomic.Bool
}

func newCounter(opts Options) (*counter, error) {
	acc, err := NewAccessor(opts)
	if err != nil {
		return nil, err
	}

	ct := &counter{
		acc:       acc,
		codec:     opts.Codec,
		mode:      opts.Mode,
		malformed: opts.OnMalformed,
		log:       acc.log,
		hooks:     acc.hooks,
	}
	if ct.codec == nil {
		ct.codec = c.Default()
	}

	if ct.mode == ModeAtomic {
		incr, ok := opts.Provider.(pr.Incrementer)
		if !ok {
			return nil, ErrAtomicUnsupported
		}
		if !c.IsDecimal(ct.codec) {
			return nil, ErrAtomicCodec
		}
		ct.incr = incr
	}

	zero, err := ct.codec.Encode(0)
	if err != nil {
		return nil, fmt.Errorf("greetcount: encode default: %w", err)
	}
	ct.zero = string(zero)

	return ct, nil
}

func (ct *counter) Hit(ctx context.Context, key string) (int64, error) {
	if ct.closed.Load() {
		return 0, ErrClosed
	}
	if ct.mode == ModeAtomic {
		return ct.hitAtomic(ctx, key)
	}

	raw, err := ct.acc.Get(ctx, key, ct.zero)
	if err != nil {
		return 0, err
	}
	ct.log.Debug("counter read", Fields{"key": key, "value": raw})

	n, err := ct.codec.Decode([]byte(raw))
	if err != nil {
		if n, err = ct.onMalformed(key, err); err != nil {
			return 0, err
		}
	}
	if n == math.MaxInt64 {
		return 0, &KeyError{Op: "incr", Key: key, Err: ErrOverflow}
	}
	n++

	b, err := ct.codec.Encode(n)
	if err != nil {
		return 0, &KeyError{Op: "encode", Key: key, Err: err}
	}
	ct.acc.Set(ctx, key, string(b))

	ct.hooks.Counted(key, n)
	return n, nil
}

func (ct *counter) hitAtomic(ctx context.Context, key string) (int64, error) {
	k := ct.acc.storageKey(key)
	n, err := ct.incr.Incr(ctx, k, ct.acc.ttl)
	switch {
	case errors.Is(err, pr.ErrOverflow):
		return 0, &KeyError{Op: "incr", Key: key, Err: ErrOverflow}
	case errors.Is(err, pr.ErrNotInteger):
		if _, err := ct.onMalformed(key, err); err != nil {
			return 0, err
		}
		// restart the sequence: the value is unusable for INCR
		if err := ct.acc.provider.Set(ctx, k, []byte("1"), ct.acc.ttl); err != nil {
			return 0, &KeyError{Op: "reset", Key: key, Err: err}
		}
		n = 1
	case err != nil:
		ct.hooks.ReadFailed(key, err)
		return 0, &KeyError{Op: "incr", Key: key, Err: err}
	}

	ct.hooks.Counted(key, n)
	return n, nil
}

// onMalformed applies the malformed-value policy. Under ResetMalformed the
// counter restarts from 0.
func (ct *counter) onMalformed(key string, cause error) (int64, error) {
	ct.hooks.MalformedValue(key, cause)
	if ct.malformed == FailMalformed {
		return 0, &KeyError{Op: "decode", Key: key, Err: fmt.Errorf("%w: %w", ErrMalformed, cause)}
	}
	ct.log.Warn("malformed counter reset", Fields{"key": key, "err": cause})
	return 0, nil
}

func (ct *counter) Ping(ctx context.Context) error {
	if p, ok := ct.acc.provider.(pr.Pinger); ok {
		return p.Ping(ctx)
	}
	return nil
}

func (ct *counter) Close(ctx context.Context) error {
	if !ct.closed.CompareAndSwap(false, true) {
		return nil
	}
	return ct.acc.Close(ctx)
}
