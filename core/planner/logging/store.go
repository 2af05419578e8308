package logging

import (
	"context"
	"time"

	"github.com/pverdier/tripsched/core/model"
)

// Record captures one planning run: the request, what survived each stage
// and the ranked outcome.
type Record struct {
	RunID     string               `json:"run_id"`
	Timestamp time.Time            `json:"timestamp"`
	Request   model.TripRequest    `json:"request"`
	Generated int                  `json:"generated"`
	Available int                  `json:"available"`
	Fetched   int                  `json:"fetched"`
	Ranked    []model.RankedBundle `json:"ranked"`
	Error     string               `json:"error,omitempty"`
}

// Query defines filters for retrieving records.
type Query struct {
	Start       time.Time
	End         time.Time
	RunID       string
	Destination string
}

// Store persists planning records and supports querying.
type Store interface {
	Append(ctx context.Context, rec Record) error
	Query(ctx context.Context, q Query) ([]Record, error)
	Close() error
}

// NopStore discards records.
type NopStore struct{}

func (NopStore) Append(context.Context, Record) error           { return nil }
func (NopStore) Query(context.Context, Query) ([]Record, error) { return nil, nil }
func (NopStore) Close() error                                   { return nil }

func (r Record) matches(q Query) bool {
	if !q.Start.IsZero() && r.Timestamp.Before(q.Start) {
		return false
	}
	if !q.End.IsZero() && r.Timestamp.After(q.End) {
		return false
	}
	if q.RunID != "" && r.RunID != q.RunID {
		return false
	}
	if q.Destination != "" && r.Request.Destination != q.Destination {
		return false
	}
	return true
}
