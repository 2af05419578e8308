package planner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pverdier/tripsched/core/calendar"
	"github.com/pverdier/tripsched/core/events"
	"github.com/pverdier/tripsched/core/logger"
	coremetrics "github.com/pverdier/tripsched/core/metrics"
	"github.com/pverdier/tripsched/core/model"
	"github.com/pverdier/tripsched/core/monitoring"
	"github.com/pverdier/tripsched/core/notify"
	"github.com/pverdier/tripsched/core/planner/logging"
	"github.com/pverdier/tripsched/core/search"
	"github.com/pverdier/tripsched/internal/eventbus"
)

// Planner coordinates one planning pipeline: window generation, availability
// filtering, concurrent offer fetching and ranking, plus the commit of a
// chosen bundle. All state is per-run; the planner itself only holds shared
// read-mostly handles and may be used concurrently.
type Planner struct {
	cal      calendar.Port
	flights  search.FlightSearcher
	lodging  search.LodgingSearcher
	cfg      Config
	log      logger.Logger
	sink     coremetrics.Sink
	bus      eventbus.EventBus
	store    logging.Store
	mon      monitoring.Monitor
	notifier notify.Publisher
}

// Result is the outcome of one planning run.
type Result struct {
	RunID     string
	Request   model.TripRequest
	Generated int
	Available []AvailableWindow
	Ranked    []model.RankedBundle
	Stats     RankStats
}

// Feasible reports whether at least one bundle survived.
func (r *Result) Feasible() bool { return len(r.Ranked) > 0 }

// New creates a Planner. Calendar and both searchers are mandatory; sink,
// bus, store, monitor and notifier may be nil and default to no-ops.
func New(cal calendar.Port, flights search.FlightSearcher, lodging search.LodgingSearcher, cfg Config, log logger.Logger, opts ...Option) (*Planner, error) {
	if cal == nil || flights == nil || lodging == nil {
		return nil, fmt.Errorf("planner: nil port provided to New")
	}
	if log == nil {
		return nil, fmt.Errorf("planner: nil logger provided to New")
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("planner config: %w", err)
	}
	p := &Planner{
		cal:      cal,
		flights:  flights,
		lodging:  lodging,
		cfg:      cfg,
		log:      log,
		sink:     coremetrics.NopSink{},
		store:    logging.NopStore{},
		mon:      monitoring.NopMonitor{},
		notifier: notify.NopPublisher{},
	}
	for _, o := range opts {
		o(p)
	}
	return p, nil
}

// Option configures optional planner collaborators.
type Option func(*Planner)

func WithSink(s coremetrics.Sink) Option {
	return func(p *Planner) {
		if s != nil {
			p.sink = s
		}
	}
}

func WithBus(b eventbus.EventBus) Option {
	return func(p *Planner) { p.bus = b }
}

func WithStore(s logging.Store) Option {
	return func(p *Planner) {
		if s != nil {
			p.store = s
		}
	}
}

func WithMonitor(m monitoring.Monitor) Option {
	return func(p *Planner) {
		if m != nil {
			p.mon = m
		}
	}
}

func WithNotifier(n notify.Publisher) Option {
	return func(p *Planner) {
		if n != nil {
			p.notifier = n
		}
	}
}

// Plan runs the full pipeline for one request. The caller receives either a
// result (possibly with an empty ranked sequence, meaning no feasible plan)
// or a specific fatal error; never a partially-ranked state.
func (p *Planner) Plan(ctx context.Context, req model.TripRequest) (*Result, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	p.publish(events.RunStartedEvent{RunID: runID, Request: req})

	windows := GenerateWindows(req)
	windowsGenerated.Add(float64(len(windows)))
	p.log.Infof("run %s: %d candidate windows for %s", runID, len(windows), req.Destination)

	available, err := FilterAvailability(ctx, p.cal, windows, p.cfg.CalendarConcurrency, p.log)
	if err != nil {
		p.mon.CaptureException(err, map[string]string{"run_id": runID, "stage": "availability"})
		p.appendRecord(ctx, logging.Record{
			RunID: runID, Timestamp: time.Now().UTC(), Request: req,
			Generated: len(windows), Error: err.Error(),
		})
		return nil, err
	}
	windowsAvailable.Add(float64(len(available)))
	p.publish(events.WindowsEvent{
		RunID:     runID,
		Generated: len(windows),
		Available: len(available),
		Skipped:   len(windows) - len(available),
	})

	fetcher := NewFetcher(p.flights, p.lodging, p.cfg, p.log)
	criteria := search.Criteria{
		Origin:      req.Origin,
		Destination: req.Destination,
		Cabin:       req.Cabin,
		MinRating:   req.MinRating,
		Currency:    req.Budget.Currency,
	}
	sets, recs := fetcher.Fetch(ctx, runID, available, criteria)
	if err := p.sink.RecordFetchResult(recs); err != nil {
		p.log.Errorf("metrics error: %v", err)
	}
	p.publishFetchEvents(runID, sets, recs)

	ranked, stats := RankBundles(sets, req, p.cfg.Scoring)
	bundlesRanked.Add(float64(len(ranked)))
	if len(ranked) == 0 {
		plansEmpty.Inc()
	}

	res := &Result{
		RunID:     runID,
		Request:   req,
		Generated: len(windows),
		Available: available,
		Ranked:    ranked,
		Stats:     stats,
	}
	p.recordSummary(runID, req, res)
	p.publishRanked(runID, ranked)
	p.appendRecord(ctx, logging.Record{
		RunID:     runID,
		Timestamp: time.Now().UTC(),
		Request:   req,
		Generated: len(windows),
		Available: len(available),
		Fetched:   len(sets),
		Ranked:    ranked,
	})
	return res, nil
}

// Book commits the chosen bundle and announces the reservation. Booking
// conflicts and write failures are surfaced to the caller untouched.
func (p *Planner) Book(ctx context.Context, runID string, b model.Bundle) (model.Reservation, error) {
	r, err := Commit(ctx, p.cal, b)
	ev := coremetrics.BookingEvent{RunID: runID, Window: b.Window, Time: time.Now().UTC()}
	if err != nil {
		ev.Conflict = isConflict(err)
		ev.Err = err.Error()
		if ev.Conflict {
			bookings.WithLabelValues("conflict").Inc()
		} else {
			bookings.WithLabelValues("error").Inc()
			p.mon.CaptureException(err, map[string]string{"run_id": runID, "stage": "commit"})
		}
		if serr := p.sink.RecordBooking(ev); serr != nil {
			p.log.Errorf("metrics error: %v", serr)
		}
		return model.Reservation{}, err
	}
	ev.Committed = true
	bookings.WithLabelValues("committed").Inc()
	if serr := p.sink.RecordBooking(ev); serr != nil {
		p.log.Errorf("metrics error: %v", serr)
	}
	cost := b.TotalCost()
	p.publish(events.ReservationEvent{RunID: runID, Reservation: r, TotalCost: cost})
	if nerr := p.notifier.PublishReservation(ctx, r, cost); nerr != nil {
		p.log.Warnf("reservation notification failed: %v", nerr)
	}
	p.log.Infof("run %s: booked %s as %s", runID, b.Window, r.ProviderRef)
	return r, nil
}

func (p *Planner) publish(ev eventbus.Event) {
	if p.bus != nil {
		p.bus.Publish(ev)
	}
}

func (p *Planner) publishFetchEvents(runID string, sets []model.OfferSet, recs []coremetrics.FetchResult) {
	if p.bus == nil {
		return
	}
	complete := make(map[string]model.OfferSet, len(sets))
	for _, s := range sets {
		complete[s.Window.Key()] = s
	}
	seen := make(map[string]bool, len(recs)/2)
	for _, rec := range recs {
		if seen[rec.Window.Key()] {
			continue
		}
		seen[rec.Window.Key()] = true
		s, ok := complete[rec.Window.Key()]
		p.bus.Publish(events.FetchEvent{
			RunID:    runID,
			Window:   rec.Window,
			Flights:  len(s.Flights),
			Lodging:  len(s.Lodging),
			Complete: ok,
			Latency:  rec.Latency,
		})
	}
}

func (p *Planner) publishRanked(runID string, ranked []model.RankedBundle) {
	if p.bus == nil {
		return
	}
	ev := events.RankedEvent{RunID: runID, Bundles: len(ranked)}
	if len(ranked) > 0 {
		best := ranked[0]
		ev.Best = &best
	}
	p.bus.Publish(ev)
}

func (p *Planner) recordSummary(runID string, req model.TripRequest, res *Result) {
	s := coremetrics.RankSummary{
		RunID:     runID,
		Windows:   len(res.Available),
		Bundles:   len(res.Ranked),
		Discarded: res.Stats.Discarded,
		Mean:      res.Stats.Mean,
		StdDev:    res.Stats.StdDev,
		Currency:  req.Budget.Currency,
		Time:      time.Now().UTC(),
	}
	if len(res.Ranked) > 0 {
		s.BestScore = res.Ranked[0].Score
		s.BestCost = res.Ranked[0].Bundle.TotalCost().Amount
	}
	if err := p.sink.RecordRankSummary(s); err != nil {
		p.log.Errorf("metrics error: %v", err)
	}
}

func (p *Planner) appendRecord(ctx context.Context, rec logging.Record) {
	if err := p.store.Append(ctx, rec); err != nil {
		p.log.Errorf("plan log append failed: %v", err)
	}
}

func isConflict(err error) bool {
	return errors.Is(err, ErrBookingConflict)
}
