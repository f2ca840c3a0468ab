package http

import (
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/unkn0wn-root/greetcount"
	"github.com/unkn0wn-root/greetcount/platform/metrics"
)

const (
	routeHealth = "health"
	pathHealth  = "/health"
)

// Config wires the routers. Only Counter is required for CounterRouter.
type Config struct {
	Component     string
	Counter       greetcount.Counter
	Routes        []greetcount.Route // nil => greetcount.Routes()
	OnReadFailure FailurePolicy
	Logger        greetcount.Logger     // nil => NopLogger
	Registerer    prometheus.Registerer // nil => no request metrics
	RateLimit     float64               // requests per second; 0 disables
}

// GreeterRouter serves the static greeting on "/".
func GreeterRouter(cfg Config) *mux.Router {
	r := mux.NewRouter()
	mw := middlewares(cfg)

	r.Methods("GET").Path(greetcount.RouteBase.Path).Name(greetcount.RouteBase.Name).
		HandlerFunc(Wrap(mw, Greet(greetcount.RouteBase.Message)))
	r.Methods("GET").Path(pathHealth).Name(routeHealth).
		HandlerFunc(Wrap(mw, Health(nil)))

	return r
}

// CounterRouter serves a counting handler for every route.
func CounterRouter(cfg Config) *mux.Router {
	r := mux.NewRouter()
	mw := middlewares(cfg)

	routes := cfg.Routes
	if routes == nil {
		routes = greetcount.Routes()
	}
	for _, route := range routes {
		r.Methods("GET").Path(route.Path).Name(route.Name).
			HandlerFunc(Wrap(mw, Count(cfg.Counter, route, cfg.OnReadFailure, logger(cfg))))
	}
	r.Methods("GET").Path(pathHealth).Name(routeHealth).
		HandlerFunc(Wrap(mw, Health(cfg.Counter)))

	return r
}

func middlewares(cfg Config) Middleware {
	ms := []Middleware{
		CtxPrepare(),
		Log(logger(cfg)),
	}

	if cfg.Registerer != nil {
		reqCount, reqLatency := metrics.RequestMetrics(cfg.Registerer, "http")
		ms = append(ms, Instrument(cfg.Component, reqCount, reqLatency))
	}

	if cfg.RateLimit > 0 {
		burst := int(cfg.RateLimit)
		if burst < 1 {
			burst = 1
		}
		ms = append(ms, RateLimit(cfg.RateLimit, burst))
	}

	return Chain(ms...)
}

func logger(cfg Config) greetcount.Logger {
	if cfg.Logger == nil {
		return greetcount.NopLogger{}
	}
	return cfg.Logger
}
