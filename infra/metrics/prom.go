package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/pverdier/tripsched/core/metrics"
)

// PromSink records planning events in Prometheus metrics.
type PromSink struct {
	fetches  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	bundles  prometheus.Histogram
	bookings *prometheus.CounterVec
}

// NewPromSink registers planning metrics on the default Prometheus
// registerer. The Prometheus server should be started separately.
func NewPromSink() (coremetrics.Sink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (coremetrics.Sink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_fetch_events_total",
		Help: "Total number of settled offer queries",
	}, []string{"leg", "outcome"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "trip_fetch_duration_seconds",
		Help:    "Time between a query start and its settled result, retries included",
		Buckets: prometheus.DefBuckets,
	}, []string{"leg"})
	bundles := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "trip_ranked_bundles",
		Help:    "Number of bundles surviving the budget filter per run",
		Buckets: prometheus.ExponentialBuckets(1, 2, 10),
	})
	bookings := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "trip_booking_attempts_total",
		Help: "Total number of booking attempts",
	}, []string{"outcome"})

	if err := reg.Register(fetches); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			fetches = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(latency); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			latency = are.ExistingCollector.(*prometheus.HistogramVec)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(bundles); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			bundles = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(bookings); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			bookings = are.ExistingCollector.(*prometheus.CounterVec)
		} else {
			return nil, err
		}
	}

	return &PromSink{fetches: fetches, latency: latency, bundles: bundles, bookings: bookings}, nil
}

// RecordFetchResult counts each settled query and observes its latency.
func (s *PromSink) RecordFetchResult(recs []coremetrics.FetchResult) error {
	for _, r := range recs {
		outcome := "ok"
		if r.Err != "" {
			outcome = "error"
		}
		s.fetches.WithLabelValues(r.Leg, outcome).Inc()
		s.latency.WithLabelValues(r.Leg).Observe(r.Latency.Seconds())
	}
	return nil
}

// RecordRankSummary observes the size of the ranked output.
func (s *PromSink) RecordRankSummary(sum coremetrics.RankSummary) error {
	s.bundles.Observe(float64(sum.Bundles))
	return nil
}

// RecordBooking counts the commit attempt by outcome.
func (s *PromSink) RecordBooking(ev coremetrics.BookingEvent) error {
	outcome := "error"
	switch {
	case ev.Committed:
		outcome = "committed"
	case ev.Conflict:
		outcome = "conflict"
	}
	s.bookings.WithLabelValues(outcome).Inc()
	return nil
}
