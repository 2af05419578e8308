package model

import "time"

// Reservation is the committed outcome of a planning run. It is created once
// from exactly one chosen bundle and owns no further mutable state.
type Reservation struct {
	ID          string     `json:"id"`
	Window      DateWindow `json:"window"`
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	ProviderRef string     `json:"provider_ref"`
	Created     time.Time  `json:"created"`
}
