package metrics

import (
	"time"

	"github.com/pverdier/tripsched/core/model"
)

// FetchResult captures the settled outcome of one (window, leg) query cycle,
// including exhausted retries.
type FetchResult struct {
	RunID    string
	Window   model.DateWindow
	Leg      string // "flight" or "lodging"
	Offers   int
	Attempts int
	Err      string
	Latency  time.Duration
	Time     time.Time
}

// RankSummary describes the ranked output of one run. Mean and StdDev are
// computed over surviving bundle costs.
type RankSummary struct {
	RunID     string
	Windows   int
	Bundles   int
	Discarded int // bundles cut by the budget filter
	BestScore float64
	BestCost  float64
	Mean      float64
	StdDev    float64
	Currency  string
	Time      time.Time
}

// BookingEvent records a commit attempt.
type BookingEvent struct {
	RunID     string
	Window    model.DateWindow
	Committed bool
	Conflict  bool
	Err       string
	Time      time.Time
}

// Sink records planning events for observability purposes. Implementations
// must be safe for concurrent use.
type Sink interface {
	RecordFetchResult(results []FetchResult) error
	RecordRankSummary(s RankSummary) error
	RecordBooking(ev BookingEvent) error
}

// NopSink implements Sink with no-op methods.
type NopSink struct{}

func (NopSink) RecordFetchResult([]FetchResult) error { return nil }
func (NopSink) RecordRankSummary(RankSummary) error   { return nil }
func (NopSink) RecordBooking(BookingEvent) error      { return nil }
