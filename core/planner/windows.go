package planner

import (
	"time"

	"github.com/pverdier/tripsched/core/model"
)

// GenerateWindows enumerates every candidate window in the search horizon:
// one window of req.Nights per start date in (today, today+MonthsAhead],
// ascending by start date. Windows whose static weekday count exceeds the
// PTO budget, or which touch a blackout date, are dropped. Pure computation,
// no I/O; the same request always yields the same sequence.
func GenerateWindows(req model.TripRequest) []model.DateWindow {
	today := model.Midnight(req.Today)
	horizon := today.AddDate(0, req.MonthsAhead, 0)

	var out []model.DateWindow
	for start := today.AddDate(0, 0, 1); !start.After(horizon); start = start.AddDate(0, 0, 1) {
		w, err := model.NewDateWindow(start, req.Nights)
		if err != nil {
			return out
		}
		if int(model.StaticTimeOffCost(w)) > req.MaxPTODays {
			continue
		}
		if touchesBlackout(w, req.Blackout) {
			continue
		}
		out = append(out, w)
	}
	return out
}

func touchesBlackout(w model.DateWindow, blackout []time.Time) bool {
	for _, d := range blackout {
		if w.Contains(d) {
			return true
		}
	}
	return false
}
