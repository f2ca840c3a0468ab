// Package ristretto keeps counters in a process-local ristretto cache.
// Counters are lost on restart and are not shared between replicas.
package ristretto

import (
	"context"
	"errors"
	"time"

	rc "github.com/dgraph-io/ristretto"

	pr "github.com/unkn0wn-root/greetcount/provider"
)

var (
	ErrInvalidConfig = errors.New("ristretto: invalid config")
	// ErrRejected is returned when the admission policy drops a write.
	ErrRejected = errors.New("ristretto: write rejected")
)

type Store struct {
	cache *rc.Cache
}

var _ pr.Provider = (*Store)(nil)

// Config sizes the cache in counters. Every counter costs 1.
type Config struct {
	MaxCounters int64
	BufferItems int64 // 0 => 64
}

// DefaultConfig holds up to 1024 counters.
func DefaultConfig() Config {
	return Config{MaxCounters: 1 << 10}
}

func New(cfg Config) (*Store, error) {
	if cfg.MaxCounters <= 0 || cfg.BufferItems < 0 {
		return nil, ErrInvalidConfig
	}
	if cfg.BufferItems == 0 {
		cfg.BufferItems = 64
	}
	cache, err := rc.NewCache(&rc.Config{
		// ristretto recommends ten admission counters per stored item
		NumCounters: cfg.MaxCounters * 10,
		MaxCost:     cfg.MaxCounters,
		BufferItems: cfg.BufferItems,

		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Store{cache: cache}, nil
}

func (s *Store) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	raw, ok := v.(string)
	if !ok {
		s.cache.Del(key)
		return nil, false, nil
	}
	return []byte(raw), true, nil
}

// Set waits until the value is visible to Get, so a read following its own
// write never misses.
func (s *Store) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	if !s.cache.SetWithTTL(key, string(value), 1, ttl) {
		return ErrRejected
	}
	s.cache.Wait()
	return nil
}

func (s *Store) Del(_ context.Context, key string) error {
	s.cache.Del(key)
	return nil
}

func (s *Store) Close(_ context.Context) error {
	s.cache.Close()
	return nil
}
