// Package memory is an in-process Provider with atomic increments.
// It backs single-replica deployments and tests; counters are lost on restart.
package memory

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	pr "github.com/unkn0wn-root/greetcount/provider"
)

type entry struct {
	v   []byte
	exp time.Time // zero => no TTL
}

func (e entry) expired(now time.Time) bool {
	return !e.exp.IsZero() && now.After(e.exp)
}

// Store keeps values in a map guarded by a RWMutex.
// Optional cleanup loop prunes expired entries.
type Store struct {
	mu     sync.RWMutex
	m      map[string]entry
	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
}

var (
	_ pr.Provider    = (*Store)(nil)
	_ pr.Incrementer = (*Store)(nil)
)

// New returns an empty store. cleanupInterval <= 0 disables the background
// sweep; expired entries are then only dropped when read.
func New(cleanupInterval time.Duration) *Store {
	s := &Store{m: make(map[string]entry)}
	if cleanupInterval > 0 {
		s.ticker = time.NewTicker(cleanupInterval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.Cleanup()
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.m[key]
	s.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		return nil, false, nil
	}
	return append([]byte(nil), e.v...), true, nil
}

func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{v: append([]byte(nil), value...)}
	if ttl > 0 {
		e.exp = time.Now().Add(ttl)
	}
	s.mu.Lock()
	s.m[key] = e
	s.mu.Unlock()
	return nil
}

// Incr parses the stored decimal, adds one and stores it back under the
// write lock. Missing or expired keys start from 0.
func (s *Store) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	if e, ok := s.m[key]; ok && !e.expired(now) {
		v, err := strconv.ParseInt(string(e.v), 10, 64)
		switch {
		case err != nil || v < 0:
			return 0, pr.ErrNotInteger
		case v == math.MaxInt64:
			return 0, pr.ErrOverflow
		}
		n = v
	}
	n++

	e := entry{v: []byte(strconv.FormatInt(n, 10))}
	if ttl > 0 {
		e.exp = now.Add(ttl)
	}
	s.m[key] = e
	return n, nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.m, key)
	s.mu.Unlock()
	return nil
}

// Cleanup drops expired entries.
func (s *Store) Cleanup() {
	now := time.Now()

	s.mu.Lock()
	for k, e := range s.m {
		if e.expired(now) {
			delete(s.m, k)
		}
	}
	s.mu.Unlock()
}

// Len reports the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}

func (s *Store) Close(_ context.Context) error {
	s.once.Do(func() {
		if s.stopCh != nil {
			close(s.stopCh)
			s.ticker.Stop() // stop ticker before waiting
			s.wg.Wait()
		}
	})
	return nil
}
