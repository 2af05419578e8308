package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pverdier/tripsched/core/model"
)

func offerSet(t *testing.T, start time.Time, nights int, flights []model.FlightOffer, lodging []model.LodgingOffer) model.OfferSet {
	t.Helper()
	w := mustWindow(t, start, nights)
	for i := range lodging {
		lodging[i].Nights = nights
	}
	return model.OfferSet{Window: w, PTO: model.StaticTimeOffCost(w), Flights: flights, Lodging: lodging}
}

func TestRankBundlesBudgetCut(t *testing.T) {
	req := baseRequest()
	req.Budget = eur(500)
	sets := []model.OfferSet{offerSet(t, date(2024, time.January, 10), 4,
		[]model.FlightOffer{testFlight("FL-cheap", 100), testFlight("FL-dear", 400)},
		[]model.LodgingOffer{testLodging("HO", 80, 4)}, // 320 total
	)}

	ranked, stats := RankBundles(sets, req, ScoringConfig{CostWeight: 0.5, PTOWeight: 0.5})

	require.Len(t, ranked, 1)
	assert.Equal(t, "FL-cheap", ranked[0].Bundle.Flight.ProviderRef)
	assert.Equal(t, 1, stats.Discarded)
	assert.InDelta(t, 420, stats.Mean, 1e-9)
}

// All bundles over budget: empty ranked output, no error.
func TestRankBundlesNoFeasiblePlan(t *testing.T) {
	req := baseRequest()
	req.Budget = eur(100)
	sets := []model.OfferSet{offerSet(t, date(2024, time.January, 10), 4,
		[]model.FlightOffer{testFlight("FL", 400)},
		[]model.LodgingOffer{testLodging("HO", 80, 4)},
	)}

	ranked, stats := RankBundles(sets, req, ScoringConfig{CostWeight: 0.5, PTOWeight: 0.5})

	assert.Empty(t, ranked)
	assert.Equal(t, 1, stats.Discarded)
}

// A pricier weekend-heavy window can outrank a cheaper weekday one when the
// time-off weight dominates.
func TestRankBundlesPTOTradeoff(t *testing.T) {
	req := baseRequest()
	req.Budget = eur(1000)
	req.MaxPTODays = 5

	// Mon 2024-01-08 start: 4 weekdays. Fri 2024-01-12 start: 2 weekdays.
	weekday := offerSet(t, date(2024, time.January, 8), 4,
		[]model.FlightOffer{testFlight("FL-mon", 200)},
		[]model.LodgingOffer{testLodging("HO", 50, 4)}) // 400, PTO 4
	weekend := offerSet(t, date(2024, time.January, 12), 4,
		[]model.FlightOffer{testFlight("FL-fri", 300)},
		[]model.LodgingOffer{testLodging("HO", 50, 4)}) // 500, PTO 2

	ranked, _ := RankBundles([]model.OfferSet{weekday, weekend}, req, ScoringConfig{CostWeight: 0.2, PTOWeight: 0.8})
	require.Len(t, ranked, 2)
	assert.Equal(t, "FL-fri", ranked[0].Bundle.Flight.ProviderRef)

	// With cost dominating, the order flips.
	ranked, _ = RankBundles([]model.OfferSet{weekday, weekend}, req, ScoringConfig{CostWeight: 0.9, PTOWeight: 0.1})
	require.Len(t, ranked, 2)
	assert.Equal(t, "FL-mon", ranked[0].Bundle.Flight.ProviderRef)
}

func TestRankBundlesTieBreaks(t *testing.T) {
	req := baseRequest()
	req.Budget = eur(1000)
	req.MaxPTODays = 0 // PTO term drops out so equal costs give equal scores

	// Same total cost across two windows: earlier start wins.
	a := offerSet(t, date(2024, time.January, 17), 4,
		[]model.FlightOffer{testFlight("FL-late", 200)},
		[]model.LodgingOffer{testLodging("HO", 50, 4)})
	b := offerSet(t, date(2024, time.January, 10), 4,
		[]model.FlightOffer{testFlight("FL-early", 200)},
		[]model.LodgingOffer{testLodging("HO", 50, 4)})

	ranked, _ := RankBundles([]model.OfferSet{a, b}, req, ScoringConfig{CostWeight: 0.5, PTOWeight: 0.5})
	require.Len(t, ranked, 2)
	assert.Equal(t, "FL-early", ranked[0].Bundle.Flight.ProviderRef)
	assert.Equal(t, "FL-late", ranked[1].Bundle.Flight.ProviderRef)
}

func TestRankBundlesOrderedByScore(t *testing.T) {
	req := baseRequest()
	req.Budget = eur(2000)
	req.MaxPTODays = 5
	sets := []model.OfferSet{offerSet(t, date(2024, time.January, 10), 4,
		[]model.FlightOffer{testFlight("A", 300), testFlight("B", 150), testFlight("C", 450)},
		[]model.LodgingOffer{testLodging("H1", 60, 4), testLodging("H2", 110, 4)},
	)}

	ranked, stats := RankBundles(sets, req, ScoringConfig{CostWeight: 0.5, PTOWeight: 0.5})
	require.Len(t, ranked, 6)
	assert.Zero(t, stats.Discarded)
	for i := 1; i < len(ranked); i++ {
		assert.LessOrEqual(t, ranked[i-1].Score, ranked[i].Score, "out of order at %d", i)
	}
	assert.Greater(t, stats.StdDev, 0.0)
}

// Re-ranking the same input must reproduce the exact same sequence.
func TestRankBundlesDeterministic(t *testing.T) {
	req := baseRequest()
	req.Budget = eur(2000)
	req.MaxPTODays = 5
	var sets []model.OfferSet
	for i := 0; i < 4; i++ {
		sets = append(sets, offerSet(t, date(2024, time.January, 8+7*i), 4,
			[]model.FlightOffer{testFlight("A", 300), testFlight("B", 300)},
			[]model.LodgingOffer{testLodging("H1", 75, 4), testLodging("H2", 75, 4)},
		))
	}

	first, _ := RankBundles(sets, req, ScoringConfig{CostWeight: 0.5, PTOWeight: 0.5})
	second, _ := RankBundles(sets, req, ScoringConfig{CostWeight: 0.5, PTOWeight: 0.5})
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i], second[i], "rank diverged at %d", i)
	}
}

func TestNormalizeWeights(t *testing.T) {
	wc, wp := normalizeWeights(ScoringConfig{CostWeight: 3, PTOWeight: 1})
	assert.InDelta(t, 0.75, wc, 1e-9)
	assert.InDelta(t, 0.25, wp, 1e-9)

	wc, wp = normalizeWeights(ScoringConfig{})
	assert.Equal(t, 0.5, wc)
	assert.Equal(t, 0.5, wp)
}
