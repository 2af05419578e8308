package model

// Bundle is one complete trip option: a flight offer and a lodging offer
// applying to the same window, plus the time-off cost of that window.
// Bundles are built by the ranker from fetched offers and never mutated;
// the rank score is attached in RankedBundle, not merged in.
type Bundle struct {
	Flight  FlightOffer  `json:"flight"`
	Lodging LodgingOffer `json:"lodging"`
	Window  DateWindow   `json:"window"`
	PTO     TimeOffCost  `json:"pto"`
}

// TotalCost is the flight price plus the lodging nightly rate times nights.
func (b Bundle) TotalCost() Money {
	return b.Flight.Price.Add(b.Lodging.Total())
}

// RankedBundle pairs a bundle with its score. Lower scores rank better; the
// ranked output sequence is ordered best first.
type RankedBundle struct {
	Bundle Bundle  `json:"bundle"`
	Score  float64 `json:"score"`
}
