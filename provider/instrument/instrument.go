// Package instrument wraps a Provider with prometheus counters and latency
// histograms per operation.
package instrument

import (
	"context"
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/greetcount/platform/metrics"
	pr "github.com/unkn0wn-root/greetcount/provider"
)

// Config carries the label values and collectors shared by all operations.
type Config struct {
	Component string
	Store     string
	ErrCount  kitmetrics.Counter
	HitCount  kitmetrics.Counter
	OpCount   kitmetrics.Counter
	OpLatency *prometheus.HistogramVec
}

const namespaceCache = "cache"

// NewConfig builds the collectors for a provider and registers them with reg.
func NewConfig(reg prometheus.Registerer, component, store string) Config {
	fieldKeys := []string{metrics.FieldComponent, metrics.FieldMethod, metrics.FieldStore}
	errCount, opCount, opLatency := metrics.KeyMetrics(reg, namespaceCache, fieldKeys...)

	return Config{
		Component: component,
		Store:     store,
		ErrCount:  errCount,
		HitCount:  metrics.HitCount(reg, namespaceCache, fieldKeys...),
		OpCount:   opCount,
		OpLatency: opLatency,
	}
}

type instrumented struct {
	Config
	next pr.Provider
}

type incrementer struct {
	*instrumented
	incr pr.Incrementer
}

type pinger struct {
	*instrumented
	ping pr.Pinger
}

type incrementPinger struct {
	*incrementer
	ping pr.Pinger
}

// Wrap returns next with every call tracked. Optional Incrementer and Pinger
// capabilities of next are preserved on the returned value.
func Wrap(next pr.Provider, cfg Config) pr.Provider {
	base := &instrumented{Config: cfg, next: next}

	incr, canIncr := next.(pr.Incrementer)
	ping, canPing := next.(pr.Pinger)

	switch {
	case canIncr && canPing:
		return &incrementPinger{incrementer: &incrementer{instrumented: base, incr: incr}, ping: ping}
	case canIncr:
		return &incrementer{instrumented: base, incr: incr}
	case canPing:
		return &pinger{instrumented: base, ping: ping}
	}
	return base
}

func (s *instrumented) Get(ctx context.Context, key string) (b []byte, ok bool, err error) {
	defer func(begin time.Time) {
		if ok {
			s.HitCount.With(s.labels("Get")...).Add(1)
		}
		s.track("Get", begin, err)
	}(time.Now())

	return s.next.Get(ctx, key)
}

func (s *instrumented) Set(ctx context.Context, key string, value []byte, ttl time.Duration) (err error) {
	defer func(begin time.Time) {
		s.track("Set", begin, err)
	}(time.Now())

	return s.next.Set(ctx, key, value, ttl)
}

func (s *instrumented) Del(ctx context.Context, key string) (err error) {
	defer func(begin time.Time) {
		s.track("Del", begin, err)
	}(time.Now())

	return s.next.Del(ctx, key)
}

func (s *instrumented) Close(ctx context.Context) error {
	return s.next.Close(ctx)
}

func (s *incrementer) Incr(ctx context.Context, key string, ttl time.Duration) (n int64, err error) {
	defer func(begin time.Time) {
		s.track("Incr", begin, err)
	}(time.Now())

	return s.incr.Incr(ctx, key, ttl)
}

func (s *pinger) Ping(ctx context.Context) error {
	return s.trackPing(ctx, s.ping)
}

func (s *incrementPinger) Ping(ctx context.Context) error {
	return s.trackPing(ctx, s.ping)
}

func (s *instrumented) trackPing(ctx context.Context, p pr.Pinger) (err error) {
	defer func(begin time.Time) {
		s.track("Ping", begin, err)
	}(time.Now())

	return p.Ping(ctx)
}

func (s *instrumented) labels(method string) []string {
	return []string{
		metrics.FieldComponent, s.Component,
		metrics.FieldMethod, method,
		metrics.FieldStore, s.Store,
	}
}

func (s *instrumented) track(method string, begin time.Time, err error) {
	if err != nil {
		s.ErrCount.With(s.labels(method)...).Add(1)
		return
	}

	s.OpCount.With(s.labels(method)...).Add(1)

	s.OpLatency.With(prometheus.Labels{
		metrics.FieldComponent: s.Component,
		metrics.FieldMethod:    method,
		metrics.FieldStore:     s.Store,
	}).Observe(time.Since(begin).Seconds())
}
