package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/greetcount"
	"github.com/unkn0wn-root/greetcount/codec"
	"github.com/unkn0wn-root/greetcount/config"
	handler "github.com/unkn0wn-root/greetcount/handler/http"
	asynchook "github.com/unkn0wn-root/greetcount/hooks/async"
	"github.com/unkn0wn-root/greetcount/internal/server"
	"github.com/unkn0wn-root/greetcount/loghooks"
	pr "github.com/unkn0wn-root/greetcount/provider"
	"github.com/unkn0wn-root/greetcount/provider/bigcache"
	"github.com/unkn0wn-root/greetcount/provider/instrument"
	"github.com/unkn0wn-root/greetcount/provider/memory"
	"github.com/unkn0wn-root/greetcount/provider/redis"
	"github.com/unkn0wn-root/greetcount/provider/ristretto"
)

const component = "counter"

// Hook queue sizing.
const (
	hookWorkers  = 1
	hookQueueLen = 1024
)

const memoryCleanupInterval = time.Minute

func main() {
	cfg, err := config.FromEnv(os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, flush, err := server.NewLogger(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer flush()

	if err := run(cfg, logger); err != nil {
		logger.Error("counter failed", greetcount.Fields{"err": err, "lifecycle": "abort"})
		flush()
		os.Exit(1)
	}
}

func run(cfg config.Config, logger greetcount.Logger) error {
	store, err := newProvider(cfg)
	if err != nil {
		return fmt.Errorf("provider %s: %w", cfg.Store, err)
	}

	cdc, err := codec.ByName(cfg.Codec)
	if err != nil {
		return err
	}

	hooks := asynchook.New(
		loghooks.New(logger, loghooks.Options{MalformedEvery: 1}),
		hookWorkers,
		hookQueueLen,
	)

	ctr, err := greetcount.New(greetcount.Options{
		Provider:     instrument.Wrap(store, instrument.NewConfig(prometheus.DefaultRegisterer, component, cfg.Store)),
		Codec:        cdc,
		Namespace:    cfg.Namespace,
		Mode:         cfg.Mode,
		OnMalformed:  cfg.OnMalformed,
		TTL:          cfg.TTL,
		WriteTimeout: cfg.WriteTimeout,
		Logger:       logger,
		Hooks:        hooks,
	})
	if err != nil {
		hooks.Close()
		_ = store.Close(context.Background())
		return err
	}

	router := handler.CounterRouter(handler.Config{
		Component:     component,
		Counter:       ctr,
		OnReadFailure: cfg.OnReadFailure,
		Logger:        logger,
		Registerer:    prometheus.DefaultRegisterer,
		RateLimit:     cfg.RateLimit,
	})

	return server.Server{
		Component:     component,
		Addr:          cfg.Addr(),
		Handler:       router,
		TelemetryAddr: cfg.TelemetryAddr,
		Logger:        logger,
		OnStop: func(ctx context.Context) {
			if err := ctr.Close(ctx); err != nil {
				logger.Warn("counter close", greetcount.Fields{"err": err})
			}
			hooks.Close()
			if n := hooks.Dropped(); n > 0 {
				logger.Warn("hook events dropped", greetcount.Fields{"count": n})
			}
		},
	}.Run(context.Background())
}

func newProvider(cfg config.Config) (pr.Provider, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.New(memoryCleanupInterval), nil
	case config.StoreRistretto:
		return ristretto.New(ristretto.DefaultConfig())
	case config.StoreBigcache:
		return bigcache.New(bigcache.Config{LifeWindow: cfg.TTL})
	default:
		return redis.Dial(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB), nil
	}
}
