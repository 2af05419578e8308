package planner

import (
	"errors"
	"fmt"
)

var (
	// ErrCalendarUnavailable is returned when the calendar source is
	// unreachable for the whole run. The run aborts rather than proceeding
	// with unfiltered windows.
	ErrCalendarUnavailable = errors.New("planner: calendar unavailable")

	// ErrBookingConflict is returned when the calendar changed between
	// ranking and commit. It is surfaced, never retried automatically.
	ErrBookingConflict = errors.New("planner: booking conflict")
)

// ProviderError wraps a fatal provider failure that aborts the run.
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("planner: provider failure during %s: %v", e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }
