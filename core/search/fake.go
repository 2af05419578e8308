package search

import (
	"context"
	"sync/atomic"

	"github.com/pverdier/tripsched/core/model"
)

// StaticFlights returns the same offers for every window, with the offer
// nights and dates left untouched. FailFirst, when positive, makes that many
// initial calls fail with Err (ErrTimeout if unset) to exercise retries.
type StaticFlights struct {
	Offers    []model.FlightOffer
	Err       error
	FailFirst int32

	calls atomic.Int32
}

func (s *StaticFlights) SearchFlights(_ context.Context, _ model.DateWindow, _ Criteria) ([]model.FlightOffer, error) {
	n := s.calls.Add(1)
	if n <= s.FailFirst {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, ErrTimeout
	}
	out := make([]model.FlightOffer, len(s.Offers))
	copy(out, s.Offers)
	return out, nil
}

// Calls returns how many times the searcher was invoked.
func (s *StaticFlights) Calls() int { return int(s.calls.Load()) }

// StaticLodging mirrors StaticFlights for the lodging leg. Offers are
// re-priced to the queried window's night count.
type StaticLodging struct {
	Offers    []model.LodgingOffer
	Err       error
	FailFirst int32

	calls atomic.Int32
}

func (s *StaticLodging) SearchLodging(_ context.Context, w model.DateWindow, _ Criteria) ([]model.LodgingOffer, error) {
	n := s.calls.Add(1)
	if n <= s.FailFirst {
		if s.Err != nil {
			return nil, s.Err
		}
		return nil, ErrTimeout
	}
	out := make([]model.LodgingOffer, len(s.Offers))
	copy(out, s.Offers)
	for i := range out {
		out[i].Nights = w.Nights
	}
	return out, nil
}

// Calls returns how many times the searcher was invoked.
func (s *StaticLodging) Calls() int { return int(s.calls.Load()) }
