// Package search defines the abstract offer-search capability. Flight and
// lodging searches share one interface; each leg is a distinct instance.
package search

import (
	"context"
	"errors"

	"github.com/pverdier/tripsched/core/model"
)

var (
	// ErrTimeout marks a query that did not complete in time.
	ErrTimeout = errors.New("search: timeout")
	// ErrRateLimited marks a transient throttling response.
	ErrRateLimited = errors.New("search: rate limited")
	// ErrUnauthenticated marks a permanent credential failure.
	ErrUnauthenticated = errors.New("search: unauthenticated")
)

// Criteria narrows a search beyond the date window.
type Criteria struct {
	Origin      string
	Destination string
	Cabin       string
	MinRating   float64
	Currency    string
}

// FlightSearcher queries priced flight offers for a window. An empty result
// is not an error.
type FlightSearcher interface {
	SearchFlights(ctx context.Context, w model.DateWindow, c Criteria) ([]model.FlightOffer, error)
}

// LodgingSearcher queries priced lodging offers for a window. An empty
// result is not an error.
type LodgingSearcher interface {
	SearchLodging(ctx context.Context, w model.DateWindow, c Criteria) ([]model.LodgingOffer, error)
}

// Transient reports whether a failed query may succeed on retry.
func Transient(err error) bool {
	return errors.Is(err, ErrTimeout) || errors.Is(err, ErrRateLimited)
}
