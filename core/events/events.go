// Package events defines the planning events emitted on the event bus.
//
// Available event types:
//   - RunStartedEvent: a planning run began
//   - WindowsEvent: window generation and filtering results
//   - FetchEvent: one window's fetch settled
//   - RankedEvent: ranking finished
//   - ReservationEvent: a bundle was committed to the calendar
package events

import (
	"time"

	"github.com/pverdier/tripsched/core/model"
)

// RunStartedEvent is published when a planning run begins.
type RunStartedEvent struct {
	RunID   string
	Request model.TripRequest
}

// WindowsEvent reports how many windows survived generation and the
// availability filter.
type WindowsEvent struct {
	RunID     string
	Generated int
	Available int
	Skipped   int
}

// FetchEvent is published when both legs for a window have settled.
type FetchEvent struct {
	RunID    string
	Window   model.DateWindow
	Flights  int
	Lodging  int
	Complete bool
	Err      error
	Latency  time.Duration
}

// RankedEvent is published once the full ranked sequence exists.
type RankedEvent struct {
	RunID   string
	Bundles int
	Best    *model.RankedBundle // nil when no feasible plan
}

// ReservationEvent is published after a successful calendar write.
type ReservationEvent struct {
	RunID       string
	Reservation model.Reservation
	TotalCost   model.Money
}
