package planner

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	windowsGenerated prometheus.Counter
	windowsAvailable prometheus.Counter
	fetchLatency     *prometheus.HistogramVec
	fetchFailures    *prometheus.CounterVec
	bundlesRanked    prometheus.Counter
	plansEmpty       prometheus.Counter
	bookings         *prometheus.CounterVec
)

// newCollectors creates new metric collectors.
func newCollectors() (prometheus.Counter, prometheus.Counter, *prometheus.HistogramVec, *prometheus.CounterVec, prometheus.Counter, prometheus.Counter, *prometheus.CounterVec) {
	gen := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trip_windows_generated_total",
		Help: "Candidate windows produced by the window generator",
	})
	avail := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trip_windows_available_total",
		Help: "Windows surviving the calendar availability filter",
	})
	lat := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trip_fetch_latency_seconds",
		Help:    "Latency of settled offer queries including retries",
		Buckets: prometheus.DefBuckets,
	}, []string{"leg"})
	fail := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_fetch_failures_total",
		Help: "Offer queries that exhausted their retry budget",
	}, []string{"leg"})
	rank := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trip_bundles_ranked_total",
		Help: "Bundles surviving the budget filter across all runs",
	})
	empty := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "trip_plans_empty_total",
		Help: "Planning runs that produced no feasible plan",
	})
	book := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_bookings_total",
		Help: "Commit attempts by outcome",
	}, []string{"outcome"})
	return gen, avail, lat, fail, rank, empty, book
}

func init() {
	windowsGenerated, windowsAvailable, fetchLatency, fetchFailures, bundlesRanked, plansEmpty, bookings = newCollectors()
	MustRegisterMetrics(nil)
}

// MustRegisterMetrics registers planner metrics on the provided registry.
// If reg is nil, prometheus.DefaultRegisterer is used.
func MustRegisterMetrics(reg prometheus.Registerer) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(windowsGenerated, windowsAvailable, fetchLatency, fetchFailures, bundlesRanked, plansEmpty, bookings)
}

// ResetMetrics reinitializes metrics collectors for testing purposes and
// registers them on the provided registry if not nil.
func ResetMetrics(reg prometheus.Registerer) {
	windowsGenerated, windowsAvailable, fetchLatency, fetchFailures, bundlesRanked, plansEmpty, bookings = newCollectors()
	if reg != nil {
		MustRegisterMetrics(reg)
	}
}
