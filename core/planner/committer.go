package planner

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pverdier/tripsched/core/calendar"
	"github.com/pverdier/tripsched/core/model"
)

// Commit books the chosen bundle as a calendar reservation. Busy intervals
// are re-checked immediately before the write; if the calendar changed since
// the bundle's window was validated the commit fails with
// ErrBookingConflict. Exactly one write is performed and never retried here:
// a retried write could double-book. The idempotency key derived from the
// bundle lets the provider deduplicate a caller-level retry.
func Commit(ctx context.Context, port calendar.Port, b model.Bundle) (model.Reservation, error) {
	w := b.Window
	av, err := port.Availability(ctx, w.Start, w.End)
	if err != nil {
		return model.Reservation{}, &ProviderError{Op: "pre-commit availability check", Err: err}
	}
	for _, busy := range av.Busy {
		if busy.Hard && busy.OverlapsWorkday(w) {
			return model.Reservation{}, fmt.Errorf("%w: %s now conflicts with %q", ErrBookingConflict, w, busy.Summary)
		}
	}

	details := calendar.ReservationDetails{
		Summary: fmt.Sprintf("Trip to %s", b.Flight.Destination),
		Description: fmt.Sprintf("Flight %s (%s, %d stops), lodging %s (%s). Total %s.",
			b.Flight.ProviderRef, b.Flight.Airline, b.Flight.Stops,
			b.Lodging.Property, b.Lodging.ProviderRef, b.TotalCost()),
		IdempotencyKey: IdempotencyKey(b),
	}
	ref, err := port.CreateReservation(ctx, w, details)
	if err != nil {
		return model.Reservation{}, &ProviderError{Op: "reservation write", Err: err}
	}
	return model.Reservation{
		ID:          uuid.NewString(),
		Window:      w,
		Summary:     details.Summary,
		Description: details.Description,
		ProviderRef: ref,
		Created:     time.Now().UTC(),
	}, nil
}

// IdempotencyKey identifies a (window, bundle) choice. Two commits of the
// same choice produce the same key.
func IdempotencyKey(b model.Bundle) string {
	return fmt.Sprintf("%s|%s|%s", b.Window.Key(), b.Flight.ProviderRef, b.Lodging.ProviderRef)
}
