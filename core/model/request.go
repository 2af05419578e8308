package model

import (
	"fmt"
	"time"
)

// TripRequest is the structured input a planning run receives from its
// caller. Interpretation of free-text requests into these parameters is an
// upstream concern.
type TripRequest struct {
	Origin      string      // departure location, e.g. an airport or city code
	Destination string      // target location
	Nights      int         // desired stay length
	Budget      Money       // hard ceiling on total trip cost
	MaxPTODays  int         // weekdays the traveler will take off
	MonthsAhead int         // search horizon from today
	Today       time.Time   // current civil date; windows start strictly after
	Blackout    []time.Time // dates that must not fall inside any window
	Cabin       string      // preferred cabin class, optional
	MinRating   float64     // minimum lodging rating, optional
}

// Validate rejects malformed requests before any I/O happens.
func (r TripRequest) Validate() error {
	if r.Destination == "" {
		return fmt.Errorf("%w: destination is required", ErrInvalidInput)
	}
	if r.Nights < 1 {
		return fmt.Errorf("%w: nights must be at least 1, got %d", ErrInvalidInput, r.Nights)
	}
	if r.Budget.Amount <= 0 {
		return fmt.Errorf("%w: budget must be positive, got %s", ErrInvalidInput, r.Budget)
	}
	if r.Budget.Currency == "" {
		return fmt.Errorf("%w: budget currency is required", ErrInvalidInput)
	}
	if r.MaxPTODays < 0 {
		return fmt.Errorf("%w: max PTO days cannot be negative", ErrInvalidInput)
	}
	if r.MonthsAhead < 1 {
		return fmt.Errorf("%w: months ahead must be at least 1, got %d", ErrInvalidInput, r.MonthsAhead)
	}
	if r.Today.IsZero() {
		return fmt.Errorf("%w: today is required", ErrInvalidInput)
	}
	return nil
}
