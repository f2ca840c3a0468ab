// Package asynchook moves hook calls off the request path.
//
// usage:
//
//	raw := loghooks.New(logger, loghooks.Options{CountedEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	ctr, _ := greetcount.New(greetcount.Options{
//	    Provider: provider,
//	    Hooks:    hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/greetcount"
)

type Hooks struct {
	inner   greetcount.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	mu      sync.RWMutex
	closed  bool
	dropped atomic.Uint64
}

var _ greetcount.Hooks = (*Hooks)(nil)

func New(inner greetcount.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains queued events and stops the workers. Later events are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		h.mu.Lock()
		h.closed = true
		close(h.q)
		h.mu.Unlock()
		h.wg.Wait()
	})
}

// Dropped reports how many events were discarded because the queue was full or closed.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		h.dropped.Add(1)
		return
	}
	select {
	case h.q <- f:
	default: // drop
		h.dropped.Add(1)
	}
}

func (h *Hooks) ReadFailed(k string, err error)  { h.try(func() { h.inner.ReadFailed(k, err) }) }
func (h *Hooks) WriteFailed(k string, err error) { h.try(func() { h.inner.WriteFailed(k, err) }) }
func (h *Hooks) MalformedValue(k string, err error) {
	h.try(func() { h.inner.MalformedValue(k, err) })
}
func (h *Hooks) Counted(k string, n int64) { h.try(func() { h.inner.Counted(k, n) }) }
