// Package http serves the greeting and counting routes.
package http

import (
	"context"
	"encoding/json"
	"net/http"
)

// Handler is the service specific http.HandlerFunc expecting a context.Context.
type Handler func(context.Context, http.ResponseWriter, *http.Request)

// Middleware can be used to chain Handlers with different responsibilities.
type Middleware func(Handler) Handler

// Chain takes a varidatic number of Middlewares and returns a combined
// Middleware.
func Chain(ms ...Middleware) Middleware {
	return func(handler Handler) Handler {
		for i := len(ms) - 1; i >= 0; i-- {
			handler = ms[i](handler)
		}

		return handler
	}
}

// Wrap takes a Middleware and Handler and returns an http.HandlerFunc.
func Wrap(
	middleware Middleware,
	handler Handler,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		middleware(handler)(r.Context(), w, r)
	}
}

// Pinger reports liveness of a backing service.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health checks for liveliness of the cache and responds with status.
// A nil pinger reports a healthy service without dependencies.
func Health(cache Pinger) Handler {
	return func(ctx context.Context, w http.ResponseWriter, r *http.Request) {
		res := struct {
			Healthy  bool            `json:"healthy"`
			Services map[string]bool `json:"services"`
		}{
			Healthy:  true,
			Services: map[string]bool{},
		}

		if cache != nil {
			res.Services["cache"] = true

			if err := cache.Ping(ctx); err != nil {
				res.Healthy = false
				res.Services["cache"] = false

				respondJSON(w, http.StatusInternalServerError, &res)
				return
			}
		}

		respondJSON(w, http.StatusOK, &res)
	}
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func respondError(w http.ResponseWriter, code int, err error) {
	statusCode := http.StatusInternalServerError

	switch unwrapError(err) {
	case ErrLimitExceeded:
		statusCode = http.StatusTooManyRequests
	case ErrUnavailable:
		statusCode = http.StatusServiceUnavailable
	}

	if code == 0 {
		code = statusCode
	}

	respondJSON(w, statusCode, struct {
		Errors []apiError `json:"errors"`
	}{
		Errors: []apiError{
			{Code: code, Message: err.Error()},
		},
	})
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
