package instrument

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	pr "github.com/unkn0wn-root/greetcount/provider"
	"github.com/unkn0wn-root/greetcount/provider/memory"
)

type failingProvider struct{}

func (failingProvider) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errors.New("boom")
}
func (failingProvider) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("boom")
}
func (failingProvider) Del(context.Context, string) error { return nil }
func (failingProvider) Close(context.Context) error       { return nil }

func TestWrapTracksOpsHitsAndErrors(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()
	cfg := NewConfig(reg, "test", "memory")

	store := memory.New(0)
	p := Wrap(store, cfg)
	defer p.Close(ctx)

	if _, ok := p.(pr.Incrementer); !ok {
		t.Fatalf("Incrementer capability lost by Wrap")
	}
	if _, ok := p.(pr.Pinger); ok {
		t.Fatalf("memory store must not gain Pinger")
	}

	_, _, _ = p.Get(ctx, "/") // miss
	_ = p.Set(ctx, "/", []byte("1"), 0)
	_, _, _ = p.Get(ctx, "/") // hit

	n, err := testutil.GatherAndCount(reg, "cache_op_count", "cache_hit_count")
	if err != nil {
		t.Fatal(err)
	}
	// two label sets for op (Get, Set) and one for hit (Get)
	if n != 3 {
		t.Fatalf("series=%d want 3", n)
	}

	bad := Wrap(failingProvider{}, NewConfig(prometheus.NewRegistry(), "test", "fail"))
	if _, _, err := bad.Get(ctx, "/"); err == nil {
		t.Fatalf("expected error to pass through")
	}
	if _, ok := bad.(pr.Incrementer); ok {
		t.Fatalf("failingProvider must not gain Incrementer")
	}
}

type pingProvider struct {
	failingProvider
	err error
}

func (p pingProvider) Ping(context.Context) error { return p.err }

func TestWrapTracksPing(t *testing.T) {
	ctx := context.Background()
	reg := prometheus.NewRegistry()

	up := Wrap(pingProvider{}, NewConfig(reg, "test", "redis"))
	pinger, ok := up.(pr.Pinger)
	if !ok {
		t.Fatalf("Pinger capability lost by Wrap")
	}
	if err := pinger.Ping(ctx); err != nil {
		t.Fatal(err)
	}
	if n, err := testutil.GatherAndCount(reg, "cache_op_count"); err != nil || n != 1 {
		t.Fatalf("op series=%d err=%v want 1", n, err)
	}

	reg = prometheus.NewRegistry()
	down := Wrap(pingProvider{err: errors.New("down")}, NewConfig(reg, "test", "redis"))
	if err := down.(pr.Pinger).Ping(ctx); err == nil {
		t.Fatalf("expected ping error to pass through")
	}
	if n, err := testutil.GatherAndCount(reg, "cache_err_count"); err != nil || n != 1 {
		t.Fatalf("err series=%d err=%v want 1", n, err)
	}
}
