package http

import (
	"context"
	"net/http"
	"strconv"
	"time"

	kitmetrics "github.com/go-kit/kit/metrics"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/unkn0wn-root/greetcount"
	"github.com/unkn0wn-root/greetcount/platform/metrics"
)

const statusAborted = "aborted"

// CtxPrepare stores the matched route name in the Context.
func CtxPrepare() Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			route := "unknown"

			if current := mux.CurrentRoute(r); current != nil {
				route = current.GetName()
			}

			next(routeInContext(ctx, route), w, r)
		}
	}
}

// Log emits one line per request. Requests aborted without a response are
// logged with status "aborted".
func Log(logger greetcount.Logger) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}

			defer func(begin time.Time) {
				logger.Debug("request", greetcount.Fields{
					"duration": time.Since(begin).String(),
					"method":   r.Method,
					"route":    routeFromContext(ctx),
					"status":   rec.label(),
				})
			}(time.Now())

			next(ctx, rec, r)
			rec.finish()
		}
	}
}

// Instrument counts requests and observes their latency per route and status.
func Instrument(
	component string,
	reqCount kitmetrics.Counter,
	reqLatency *prometheus.HistogramVec,
) Middleware {
	return func(next Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			rec := &statusRecorder{ResponseWriter: w}

			defer func(begin time.Time) {
				route := routeFromContext(ctx)
				status := rec.label()

				reqCount.With(
					metrics.FieldComponent, component,
					metrics.FieldMethod, r.Method,
					metrics.FieldRoute, route,
					metrics.FieldStatus, status,
				).Add(1)

				reqLatency.With(prometheus.Labels{
					metrics.FieldComponent: component,
					metrics.FieldMethod:    r.Method,
					metrics.FieldRoute:     route,
					metrics.FieldStatus:    status,
				}).Observe(time.Since(begin).Seconds())
			}(time.Now())

			next(ctx, rec, r)
			rec.finish()
		}
	}
}

// RateLimit rejects requests beyond limit per second with 429. A shared token
// bucket covers all routes.
func RateLimit(limit float64, burst int) Middleware {
	limiter := rate.NewLimiter(rate.Limit(limit), burst)

	return func(next Handler) Handler {
		return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				respondError(w, 0, wrapError(ErrLimitExceeded, "too many requests"))
				return
			}

			next(ctx, w, r)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// finish marks a handler that returned normally without writing anything.
func (s *statusRecorder) finish() {
	if s.status == 0 {
		s.status = http.StatusOK
	}
}

func (s *statusRecorder) label() string {
	if s.status == 0 {
		return statusAborted
	}
	return strconv.Itoa(s.status)
}
