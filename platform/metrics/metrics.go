// Package metrics holds the shared label names and metric constructors used by
// the HTTP handlers and the instrumented cache provider.
package metrics

import (
	"fmt"

	kitprometheus "github.com/go-kit/kit/metrics/prometheus"
	"github.com/prometheus/client_golang/prometheus"
)

// Field names for metric labels.
const (
	FieldComponent = "component"
	FieldMethod    = "method"
	FieldRoute     = "route"
	FieldStatus    = "status"
	FieldStore     = "store"
)

// Common metrics subsystems.
const (
	subsystemErr = "err"
	subsystemOp  = "op"
)

// BucketsCache are used for Histograms observing cache round-trips.
var BucketsCache = []float64{
	.0001,
	.0005,
	.001,
	.0025,
	.005,
	.01,
	.025,
	.05,
	.1,
	.25,
	.5,
	1,
}

// KeyMetrics returns the error counter, op counter and op latency histogram
// for namespace, registered with reg.
func KeyMetrics(
	reg prometheus.Registerer,
	namespace string,
	fieldKeys ...string,
) (*kitprometheus.Counter, *kitprometheus.Counter, *prometheus.HistogramVec) {
	errVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemErr,
		Name:      "count",
		Help:      fmt.Sprintf("Number of failed %s operations", namespace),
	}, fieldKeys)

	opVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: subsystemOp,
		Name:      "count",
		Help:      fmt.Sprintf("Number of %s operations performed", namespace),
	}, fieldKeys)

	opLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: subsystemOp,
		Name:      "latency_seconds",
		Help:      fmt.Sprintf("Distribution of %s op duration in seconds", namespace),
		Buckets:   BucketsCache,
	}, fieldKeys)

	reg.MustRegister(errVec, opVec, opLatency)

	return kitprometheus.NewCounter(errVec), kitprometheus.NewCounter(opVec), opLatency
}

// RequestMetrics returns the request counter and latency histogram used by
// the HTTP instrumentation middleware, registered with reg.
func RequestMetrics(reg prometheus.Registerer, namespace string) (*kitprometheus.Counter, *prometheus.HistogramVec) {
	fieldKeys := []string{FieldComponent, FieldMethod, FieldRoute, FieldStatus}

	reqVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "request",
		Name:      "count",
		Help:      "Number of HTTP requests served",
	}, fieldKeys)

	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "request",
		Name:      "latency_seconds",
		Help:      "Distribution of HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, fieldKeys)

	reg.MustRegister(reqVec, latency)

	return kitprometheus.NewCounter(reqVec), latency
}

// HitCount returns a counter of cache hits for namespace, registered with reg.
func HitCount(reg prometheus.Registerer, namespace string, fieldKeys ...string) *kitprometheus.Counter {
	hitVec := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "hit",
		Name:      "count",
		Help:      "Number of cache hits",
	}, fieldKeys)
	reg.MustRegister(hitVec)

	return kitprometheus.NewCounter(hitVec)
}
