package planner

import (
	"context"
	"sync"
	"time"

	"github.com/pverdier/tripsched/core/logger"
	coremetrics "github.com/pverdier/tripsched/core/metrics"
	"github.com/pverdier/tripsched/core/model"
	"github.com/pverdier/tripsched/core/search"
)

// Fetcher runs the concurrent offer queries for the surviving windows. Each
// (window, leg) pair is one task in a bounded pool; a transient failure is
// retried with exponential backoff up to the configured budget, and the
// whole phase runs under one cancellation scope.
type Fetcher struct {
	flights search.FlightSearcher
	lodging search.LodgingSearcher
	cfg     Config
	log     logger.Logger
}

// NewFetcher builds a fetcher from already-validated configuration.
func NewFetcher(flights search.FlightSearcher, lodging search.LodgingSearcher, cfg Config, log logger.Logger) *Fetcher {
	return &Fetcher{flights: flights, lodging: lodging, cfg: cfg, log: log}
}

type legResult struct {
	flights  []model.FlightOffer
	lodging  []model.LodgingOffer
	attempts int
	latency  time.Duration
	err      error
}

// Fetch queries both legs for every window and returns the complete offer
// sets in window order, plus the per-leg records for the metrics sink.
// Windows where either leg came back empty, errored out or was cancelled by
// the phase deadline are excluded, never fatal. Results are assembled only
// after every task settles, so the output is deterministic regardless of
// completion order.
func (f *Fetcher) Fetch(ctx context.Context, runID string, windows []AvailableWindow, c search.Criteria) ([]model.OfferSet, []coremetrics.FetchResult) {
	if len(windows) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, time.Duration(f.cfg.FetchTimeoutSeconds)*time.Second)
	defer cancel()

	flightRes := make([]legResult, len(windows))
	lodgingRes := make([]legResult, len(windows))

	sem := make(chan struct{}, f.cfg.MaxConcurrentFetches)
	var wg sync.WaitGroup
	for i, aw := range windows {
		wg.Add(1)
		go func(i int, w model.DateWindow) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			flightRes[i] = f.fetchFlights(ctx, w, c)
		}(i, aw.Window)

		wg.Add(1)
		go func(i int, w model.DateWindow) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			lodgingRes[i] = f.fetchLodging(ctx, w, c)
		}(i, aw.Window)
	}
	wg.Wait()

	var (
		sets []model.OfferSet
		recs []coremetrics.FetchResult
	)
	now := time.Now()
	for i, aw := range windows {
		fr, lr := flightRes[i], lodgingRes[i]
		recs = append(recs,
			fetchRecord(runID, aw.Window, "flight", len(fr.flights), fr, now),
			fetchRecord(runID, aw.Window, "lodging", len(lr.lodging), lr, now),
		)
		if fr.err != nil || lr.err != nil {
			f.log.Debugf("window %s excluded: flight err=%v lodging err=%v", aw.Window, fr.err, lr.err)
			continue
		}
		set := model.OfferSet{Window: aw.Window, PTO: aw.PTO, Flights: fr.flights, Lodging: lr.lodging}
		if !set.Complete() {
			f.log.Debugf("window %s excluded: %d flights, %d lodging offers", aw.Window, len(set.Flights), len(set.Lodging))
			continue
		}
		sets = append(sets, set)
	}
	return sets, recs
}

func fetchRecord(runID string, w model.DateWindow, leg string, offers int, r legResult, now time.Time) coremetrics.FetchResult {
	rec := coremetrics.FetchResult{
		RunID:    runID,
		Window:   w,
		Leg:      leg,
		Offers:   offers,
		Attempts: r.attempts,
		Latency:  r.latency,
		Time:     now,
	}
	if r.err != nil {
		rec.Err = r.err.Error()
	}
	return rec
}

func (f *Fetcher) fetchFlights(ctx context.Context, w model.DateWindow, c search.Criteria) legResult {
	var offers []model.FlightOffer
	attempts, latency, err := f.withRetry(ctx, "flight", w, func(qctx context.Context) error {
		var qerr error
		offers, qerr = f.flights.SearchFlights(qctx, w, c)
		return qerr
	})
	return legResult{flights: offers, attempts: attempts, latency: latency, err: err}
}

func (f *Fetcher) fetchLodging(ctx context.Context, w model.DateWindow, c search.Criteria) legResult {
	var offers []model.LodgingOffer
	attempts, latency, err := f.withRetry(ctx, "lodging", w, func(qctx context.Context) error {
		var qerr error
		offers, qerr = f.lodging.SearchLodging(qctx, w, c)
		return qerr
	})
	return legResult{lodging: offers, attempts: attempts, latency: latency, err: err}
}

// withRetry runs one provider query with a per-attempt timeout, retrying
// transient failures with doubling backoff. The phase context cancels both
// in-flight attempts and backoff sleeps.
func (f *Fetcher) withRetry(ctx context.Context, leg string, w model.DateWindow, fn func(context.Context) error) (int, time.Duration, error) {
	start := time.Now()
	backoff := time.Duration(f.cfg.BackoffMS) * time.Millisecond
	attempts := 0
	var err error
	for attempts <= f.cfg.MaxRetries {
		if cerr := ctx.Err(); cerr != nil {
			return attempts, time.Since(start), cerr
		}
		attempts++
		qctx, cancel := context.WithTimeout(ctx, time.Duration(f.cfg.QueryTimeoutSeconds)*time.Second)
		err = fn(qctx)
		cancel()
		if err == nil {
			fetchLatency.WithLabelValues(leg).Observe(time.Since(start).Seconds())
			return attempts, time.Since(start), nil
		}
		if !search.Transient(err) && ctx.Err() == nil {
			break
		}
		f.log.Warnf("%s query for %s failed (attempt %d/%d): %v", leg, w, attempts, f.cfg.MaxRetries+1, err)
		if attempts > f.cfg.MaxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return attempts, time.Since(start), ctx.Err()
		case <-time.After(backoff):
		}
		backoff *= 2
	}
	fetchFailures.WithLabelValues(leg).Inc()
	return attempts, time.Since(start), err
}
