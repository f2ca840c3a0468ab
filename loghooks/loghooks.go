// Package loghooks reports counter events through a greetcount.Logger.
package loghooks

import (
	"sync/atomic"

	"github.com/unkn0wn-root/greetcount"
)

type Options struct {
	// Sampling to avoid floods; 0/1 = log all. Counted defaults to off (0 means never).
	CountedEvery   uint64
	MalformedEvery uint64
}

type Hooks struct {
	l    greetcount.Logger
	opts Options

	countedCtr   atomic.Uint64
	malformedCtr atomic.Uint64
}

var _ greetcount.Hooks = (*Hooks)(nil)

func New(l greetcount.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) ReadFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Error("greetcount.read_failed", greetcount.Fields{"key": key, "err": err})
}

func (h *Hooks) WriteFailed(key string, err error) {
	if h.l == nil {
		return
	}
	h.l.Warn("greetcount.write_failed", greetcount.Fields{"key": key, "err": err})
}

func (h *Hooks) MalformedValue(key string, err error) {
	if h.l == nil || !sample(h.opts.MalformedEvery, &h.malformedCtr) {
		return
	}
	h.l.Warn("greetcount.malformed_value", greetcount.Fields{"key": key, "err": err})
}

func (h *Hooks) Counted(key string, n int64) {
	if h.l == nil || h.opts.CountedEvery == 0 || !sample(h.opts.CountedEvery, &h.countedCtr) {
		return
	}
	h.l.Debug("greetcount.counted", greetcount.Fields{"key": key, "count": n})
}
