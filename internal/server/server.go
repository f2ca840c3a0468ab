// Package server holds the process plumbing shared by the binaries.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/unkn0wn-root/greetcount"
	"github.com/unkn0wn-root/greetcount/config"
	logruslog "github.com/unkn0wn-root/greetcount/log/logrus"
	slogger "github.com/unkn0wn-root/greetcount/log/slog"
	zaplog "github.com/unkn0wn-root/greetcount/log/zap"
)

// Timeouts.
const (
	defaultReadTimeout     = 2 * time.Second
	defaultShutdownTimeout = 10 * time.Second
	defaultStopTimeout     = 10 * time.Second
)

// NewLogger builds the logger selected by cfg. The returned func flushes it.
func NewLogger(cfg config.Config) (greetcount.Logger, func(), error) {
	switch cfg.LogBackend {
	case config.LogLogrus:
		l, err := logruslog.New(cfg.LogLevel)
		return l, func() {}, err
	case config.LogSlog:
		l, err := slogger.New(cfg.LogLevel)
		return l, func() {}, err
	default:
		l, err := zaplog.New(cfg.LogLevel)
		if err != nil {
			return nil, nil, err
		}
		return l, func() { _ = l.Sync() }, nil
	}
}

// Server runs an HTTP handler until SIGINT/SIGTERM and an optional telemetry
// listener next to it.
type Server struct {
	Component     string
	Addr          string
	Handler       http.Handler
	TelemetryAddr string               // empty disables /metrics
	Gatherer      prometheus.Gatherer  // nil => prometheus.DefaultGatherer
	Logger        greetcount.Logger
	OnStop        func(context.Context) // runs after the listener has stopped

	ShutdownTimeout time.Duration // grace for open requests; 0 => 10s
	StopTimeout     time.Duration // bound for OnStop; 0 => 10s
}

// Run blocks until ctx is done or a termination signal arrives, then shuts
// the listener down. Requests still open after the grace period are aborted.
func (s Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	begin := time.Now()

	if s.TelemetryAddr != "" {
		go s.telemetry(begin)
	}

	srv := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler,
		ReadHeaderTimeout: defaultReadTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	_, port, _ := net.SplitHostPort(s.Addr)
	s.Logger.Info("app started", greetcount.Fields{
		"component": s.Component,
		"port":      port,
		"duration":  time.Since(begin).Nanoseconds(),
		"lifecycle": "start",
		"listen":    s.Addr,
	})

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		s.Logger.Error("listener failed", greetcount.Fields{"err": err, "lifecycle": "abort"})
		return fmt.Errorf("listen %s: %w", s.Addr, err)
	case <-ctx.Done():
	}

	s.Logger.Info("shutting down", greetcount.Fields{"lifecycle": "stop"})

	sctx, cancel := context.WithTimeout(context.Background(), orDefault(s.ShutdownTimeout, defaultShutdownTimeout))
	defer cancel()

	if err := srv.Shutdown(sctx); err != nil {
		// hung requests never go idle; closing cancels their contexts
		s.Logger.Warn("forcing close", greetcount.Fields{"err": err})
		_ = srv.Close()
	}

	if s.OnStop != nil {
		// the shutdown grace may be spent; pending writes get their own budget
		stopCtx, stopCancel := context.WithTimeout(context.Background(), orDefault(s.StopTimeout, defaultStopTimeout))
		s.OnStop(stopCtx)
		stopCancel()
	}

	s.Logger.Info("app stopped", greetcount.Fields{
		"duration":  time.Since(begin).Nanoseconds(),
		"lifecycle": "stop",
	})
	return nil
}

func (s Server) telemetry(begin time.Time) {
	g := s.Gatherer
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(g, promhttp.HandlerOpts{}))

	s.Logger.Info("telemetry started", greetcount.Fields{
		"duration":  time.Since(begin).Nanoseconds(),
		"lifecycle": "start",
		"listen":    s.TelemetryAddr,
		"sub":       "telemetry",
	})

	if err := http.ListenAndServe(s.TelemetryAddr, mux); err != nil {
		s.Logger.Error("telemetry failed", greetcount.Fields{
			"err":       err,
			"lifecycle": "abort",
			"sub":       "telemetry",
		})
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
