// Package calendar defines the abstract calendar capability the planner
// consumes. Concrete providers (Google Calendar, fakes) live under infra.
package calendar

import (
	"context"
	"errors"
	"time"

	"github.com/pverdier/tripsched/core/model"
)

var (
	// ErrUnauthenticated marks a permanent credential failure.
	ErrUnauthenticated = errors.New("calendar: unauthenticated")
	// ErrRateLimited marks a transient throttling response.
	ErrRateLimited = errors.New("calendar: rate limited")
	// ErrUnavailable marks a transient outage of the calendar source.
	ErrUnavailable = errors.New("calendar: unavailable")
)

// Availability is the calendar snapshot for a queried range: opaque busy
// intervals plus any all-day non-working markers (holidays) the source
// exposes.
type Availability struct {
	Busy       []model.BusyInterval
	NonWorking []time.Time
}

// ReservationDetails carries the write payload for a committed trip. The
// idempotency key is derived from the chosen bundle so a repeated write for
// the same choice cannot double-book.
type ReservationDetails struct {
	Summary        string
	Description    string
	IdempotencyKey string
}

// Port is the boundary capability for the traveler's home calendar.
type Port interface {
	// Availability returns busy intervals and non-working markers
	// overlapping [from, to).
	Availability(ctx context.Context, from, to time.Time) (Availability, error)
	// CreateReservation writes the trip to the calendar and returns the
	// provider's event reference.
	CreateReservation(ctx context.Context, w model.DateWindow, details ReservationDetails) (string, error)
}

// Transient reports whether the error is worth treating as a temporary
// condition of the calendar source.
func Transient(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrUnavailable)
}
