package model

import "fmt"

// Money is an amount tagged with its currency. A planning run operates in a
// single target currency; Add and Mul panic on currency mismatch because a
// mixed-currency bundle is a programming error, not a runtime condition.
type Money struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (m Money) Add(o Money) Money {
	if m.Currency != o.Currency {
		panic(fmt.Sprintf("currency mismatch: %s + %s", m.Currency, o.Currency))
	}
	return Money{Amount: m.Amount + o.Amount, Currency: m.Currency}
}

func (m Money) Mul(n int) Money {
	return Money{Amount: m.Amount * float64(n), Currency: m.Currency}
}

func (m Money) String() string {
	return fmt.Sprintf("%.2f %s", m.Amount, m.Currency)
}

// FlightOffer is a priced round-trip flight option returned by a search
// provider for a specific window.
type FlightOffer struct {
	Price       Money  `json:"price"`
	ProviderRef string `json:"provider_ref"`
	Origin      string `json:"origin"`
	Destination string `json:"destination"`
	Stops       int    `json:"stops"`
	Cabin       string `json:"cabin"`
	Airline     string `json:"airline,omitempty"`
}

// LodgingOffer is a priced stay option. Price is the nightly rate; Nights
// mirrors the window length so the total can be derived without it.
type LodgingOffer struct {
	Price       Money   `json:"price"`
	ProviderRef string  `json:"provider_ref"`
	Property    string  `json:"property"`
	Nights      int     `json:"nights"`
	Rating      float64 `json:"rating,omitempty"`
}

// Total returns the full lodging cost for the stay.
func (l LodgingOffer) Total() Money { return l.Price.Mul(l.Nights) }

// OfferSet groups the offers fetched for one window. A window contributes to
// ranking only when both legs are non-empty.
type OfferSet struct {
	Window  DateWindow
	PTO     TimeOffCost
	Flights []FlightOffer
	Lodging []LodgingOffer
}

// Complete reports whether both legs returned at least one offer.
func (s OfferSet) Complete() bool {
	return len(s.Flights) > 0 && len(s.Lodging) > 0
}
