package planner

import (
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/pverdier/tripsched/core/model"
)

// RankStats summarizes one ranking pass: how many bundles the budget filter
// cut and the cost distribution of the survivors.
type RankStats struct {
	Discarded int
	Mean      float64
	StdDev    float64
}

// RankBundles forms the Cartesian product of flight and lodging offers per
// window, cuts bundles over budget, scores the rest and returns the full
// ordered sequence, best first. An empty result means no feasible plan and
// is not an error; the caller decides how to relax constraints.
//
// Scoring is a minimization: score = wc*cost/budget + wp*pto/maxPTO with the
// weights normalized to sum to one. Ties are broken by ascending total cost,
// then ascending start date, then insertion order; the sort is stable so the
// result never depends on map iteration or fetch completion order.
func RankBundles(sets []model.OfferSet, req model.TripRequest, cfg ScoringConfig) ([]model.RankedBundle, RankStats) {
	wc, wp := normalizeWeights(cfg)

	var (
		ranked []model.RankedBundle
		costs  []float64
		stats  RankStats
	)
	for _, set := range sets {
		if !set.Complete() {
			continue
		}
		for _, fl := range set.Flights {
			for _, lo := range set.Lodging {
				b := model.Bundle{Flight: fl, Lodging: lo, Window: set.Window, PTO: set.PTO}
				cost := b.TotalCost()
				if cost.Amount > req.Budget.Amount {
					stats.Discarded++
					continue
				}
				score := wc * cost.Amount / req.Budget.Amount
				if req.MaxPTODays > 0 {
					score += wp * float64(set.PTO) / float64(req.MaxPTODays)
				}
				ranked = append(ranked, model.RankedBundle{Bundle: b, Score: score})
				costs = append(costs, cost.Amount)
			}
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		ac, bc := a.Bundle.TotalCost().Amount, b.Bundle.TotalCost().Amount
		if ac != bc {
			return ac < bc
		}
		return a.Bundle.Window.Start.Before(b.Bundle.Window.Start)
	})

	if len(costs) > 0 {
		stats.Mean = stat.Mean(costs, nil)
		if len(costs) > 1 {
			stats.StdDev = stat.StdDev(costs, nil)
		}
	}
	return ranked, stats
}

func normalizeWeights(cfg ScoringConfig) (float64, float64) {
	sum := cfg.CostWeight + cfg.PTOWeight
	if sum <= 0 {
		return 0.5, 0.5
	}
	return cfg.CostWeight / sum, cfg.PTOWeight / sum
}
