package ristretto

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(Config{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("err=%v want %v", err, ErrInvalidConfig)
	}
}

func TestSetIsVisibleToNextGet(t *testing.T) {
	ctx := context.Background()
	s, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close(ctx)

	if _, ok, err := s.Get(ctx, "/"); ok || err != nil {
		t.Fatalf("miss expected, got ok=%v err=%v", ok, err)
	}

	for _, v := range []string{"1", "2", "3"} {
		if err := s.Set(ctx, "/", []byte(v), time.Hour); err != nil {
			t.Fatal(err)
		}
		b, ok, err := s.Get(ctx, "/")
		if err != nil || !ok || string(b) != v {
			t.Fatalf("got=%q ok=%v err=%v want %q", b, ok, err, v)
		}
	}

	if err := s.Del(ctx, "/"); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := s.Get(ctx, "/"); ok {
		t.Fatal("key still present after Del")
	}
}
