package metrics

import coremetrics "github.com/pverdier/tripsched/core/metrics"

// MultiSink fans planning events out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordFetchResult forwards the records to all sinks, returning the first
// error encountered.
func (m *MultiSink) RecordFetchResult(recs []coremetrics.FetchResult) error {
	for _, s := range m.Sinks {
		if err := s.RecordFetchResult(recs); err != nil {
			return err
		}
	}
	return nil
}

// RecordRankSummary forwards the summary to all sinks.
func (m *MultiSink) RecordRankSummary(sum coremetrics.RankSummary) error {
	for _, s := range m.Sinks {
		if err := s.RecordRankSummary(sum); err != nil {
			return err
		}
	}
	return nil
}

// RecordBooking forwards the booking event to all sinks.
func (m *MultiSink) RecordBooking(ev coremetrics.BookingEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordBooking(ev); err != nil {
			return err
		}
	}
	return nil
}
