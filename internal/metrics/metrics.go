// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserve_requests_total",
			Help: "Total number of suggestion requests by response source",
		},
		[]string{"source"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tripserve_request_duration_seconds",
			Help:    "Duration of suggestion requests in seconds",
			Buckets: []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		},
		[]string{"source"},
	)

	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserve_cache_lookups_total",
			Help: "Response cache lookups by result",
		},
		[]string{"result"},
	)

	IntentsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserve_intents_total",
			Help: "Matched requests by detected intent",
		},
		[]string{"intent"},
	)

	FallbackCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tripserve_fallback_calls_total",
			Help: "Calls to the fallback suggestion service by outcome",
		},
		[]string{"outcome"},
	)
)
