package planner

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/pverdier/tripsched/core/calendar"
	"github.com/pverdier/tripsched/core/logger"
	"github.com/pverdier/tripsched/core/model"
)

// AvailableWindow is a candidate window that cleared the calendar check,
// with its refined time-off cost.
type AvailableWindow struct {
	Window model.DateWindow  `json:"window"`
	PTO    model.TimeOffCost `json:"pto"`
}

// FilterAvailability checks each window against the calendar and returns the
// survivors in input order with their refined PTO cost. Windows overlapping
// a hard commitment on a working day are discarded. A window whose calendar
// query fails is skipped without retry and logged as a diagnostic; a fatal
// credential error, or a run where every single query failed, aborts with an
// error instead of silently proceeding with unfiltered windows.
func FilterAvailability(ctx context.Context, port calendar.Port, windows []model.DateWindow, limit int, log logger.Logger) ([]AvailableWindow, error) {
	if len(windows) == 0 {
		return nil, nil
	}
	if limit <= 0 {
		limit = 1
	}

	type outcome struct {
		keep  bool
		pto   model.TimeOffCost
		err   error
		fatal bool
	}
	results := make([]outcome, len(windows))

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i, w := range windows {
		wg.Add(1)
		go func(i int, w model.DateWindow) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			av, err := port.Availability(ctx, w.Start, w.End)
			if err != nil {
				results[i] = outcome{err: err, fatal: errors.Is(err, calendar.ErrUnauthenticated)}
				return
			}
			for _, b := range av.Busy {
				if b.Hard && b.OverlapsWorkday(w) {
					results[i] = outcome{}
					return
				}
			}
			results[i] = outcome{keep: true, pto: model.RefinedTimeOffCost(w, av.NonWorking)}
		}(i, w)
	}
	wg.Wait()

	var (
		out      []AvailableWindow
		failures int
	)
	for i, r := range results {
		if r.fatal {
			return nil, &ProviderError{Op: "availability check", Err: r.err}
		}
		if r.err != nil {
			failures++
			log.Warnf("calendar check failed for %s, skipping window: %v", windows[i], r.err)
			continue
		}
		if r.keep {
			out = append(out, AvailableWindow{Window: windows[i], PTO: r.pto})
		}
	}
	if failures == len(windows) {
		return nil, fmt.Errorf("%w: all %d availability checks failed", ErrCalendarUnavailable, failures)
	}
	return out, nil
}
