package planner

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pverdier/tripsched/core/calendar"
	"github.com/pverdier/tripsched/core/events"
	coremetrics "github.com/pverdier/tripsched/core/metrics"
	"github.com/pverdier/tripsched/core/model"
	"github.com/pverdier/tripsched/core/planner/logging"
	"github.com/pverdier/tripsched/core/search"
	"github.com/pverdier/tripsched/infra/logger"
	"github.com/pverdier/tripsched/internal/eventbus"
)

type captureSink struct {
	mu        sync.Mutex
	fetches   []coremetrics.FetchResult
	summaries []coremetrics.RankSummary
	bookings  []coremetrics.BookingEvent
}

func (c *captureSink) RecordFetchResult(recs []coremetrics.FetchResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fetches = append(c.fetches, recs...)
	return nil
}

func (c *captureSink) RecordRankSummary(s coremetrics.RankSummary) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.summaries = append(c.summaries, s)
	return nil
}

func (c *captureSink) RecordBooking(ev coremetrics.BookingEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bookings = append(c.bookings, ev)
	return nil
}

type memStore struct {
	mu   sync.Mutex
	recs []logging.Record
}

func (m *memStore) Append(_ context.Context, rec logging.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *memStore) Query(context.Context, logging.Query) ([]logging.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]logging.Record, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *memStore) Close() error { return nil }

func newTestPlanner(t *testing.T, cal calendar.Port, opts ...Option) *Planner {
	t.Helper()
	flights := &search.StaticFlights{Offers: []model.FlightOffer{testFlight("FL1", 200), testFlight("FL2", 320)}}
	lodging := &search.StaticLodging{Offers: []model.LodgingOffer{testLodging("HO1", 80, 0)}}
	p, err := New(cal, flights, lodging, testConfig(), logger.NopLogger{}, opts...)
	require.NoError(t, err)
	return p
}

func TestNewRejectsNilPorts(t *testing.T) {
	flights := &search.StaticFlights{}
	lodging := &search.StaticLodging{}
	_, err := New(nil, flights, lodging, testConfig(), logger.NopLogger{})
	assert.Error(t, err)
	_, err = New(&calendar.FakePort{}, flights, lodging, testConfig(), nil)
	assert.Error(t, err)
}

func TestPlanRejectsInvalidRequest(t *testing.T) {
	p := newTestPlanner(t, &calendar.FakePort{})
	req := baseRequest()
	req.Nights = 0
	_, err := p.Plan(context.Background(), req)
	assert.ErrorIs(t, err, model.ErrInvalidInput)
}

func TestPlanEndToEnd(t *testing.T) {
	sink := &captureSink{}
	store := &memStore{}
	p := newTestPlanner(t, &calendar.FakePort{}, WithSink(sink), WithStore(store))

	res, err := p.Plan(context.Background(), baseRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)
	assert.True(t, res.Feasible())
	assert.Greater(t, res.Generated, 0)
	assert.NotEmpty(t, res.Available)

	for i := 1; i < len(res.Ranked); i++ {
		assert.LessOrEqual(t, res.Ranked[i-1].Score, res.Ranked[i].Score)
	}
	for _, rb := range res.Ranked {
		assert.LessOrEqual(t, rb.Bundle.TotalCost().Amount, 1000.0)
	}

	assert.NotEmpty(t, sink.fetches)
	require.Len(t, sink.summaries, 1)
	assert.Equal(t, res.RunID, sink.summaries[0].RunID)
	assert.Equal(t, len(res.Ranked), sink.summaries[0].Bundles)

	recs, err := store.Query(context.Background(), logging.Query{})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, res.RunID, recs[0].RunID)
	assert.Equal(t, res.Generated, recs[0].Generated)
}

// Budget below any bundle: empty ranked result, nil error, summary recorded.
func TestPlanNoFeasiblePlan(t *testing.T) {
	sink := &captureSink{}
	p := newTestPlanner(t, &calendar.FakePort{}, WithSink(sink))

	req := baseRequest()
	req.Budget = eur(50)
	res, err := p.Plan(context.Background(), req)
	require.NoError(t, err)
	assert.False(t, res.Feasible())
	require.Len(t, sink.summaries, 1)
	assert.Zero(t, sink.summaries[0].Bundles)
}

func TestPlanCalendarOutage(t *testing.T) {
	store := &memStore{}
	p := newTestPlanner(t, &calendar.FakePort{Err: calendar.ErrUnavailable}, WithStore(store))

	_, err := p.Plan(context.Background(), baseRequest())
	require.ErrorIs(t, err, ErrCalendarUnavailable)

	recs, qerr := store.Query(context.Background(), logging.Query{})
	require.NoError(t, qerr)
	require.Len(t, recs, 1)
	assert.NotEmpty(t, recs[0].Error)
}

func TestPlanPublishesStageEvents(t *testing.T) {
	bus := eventbus.New()
	defer bus.Close()
	sub := bus.Subscribe(256)

	p := newTestPlanner(t, &calendar.FakePort{}, WithBus(bus))
	res, err := p.Plan(context.Background(), baseRequest())
	require.NoError(t, err)

	var started, windows, fetches, rankedEvents int
	for {
		select {
		case ev := <-sub:
			switch e := ev.(type) {
			case events.RunStartedEvent:
				started++
				assert.Equal(t, res.RunID, e.RunID)
			case events.WindowsEvent:
				windows++
				assert.Equal(t, res.Generated, e.Generated)
			case events.FetchEvent:
				fetches++
			case events.RankedEvent:
				rankedEvents++
				require.NotNil(t, e.Best)
				assert.Equal(t, res.Ranked[0], *e.Best)
			}
		default:
			assert.Equal(t, 1, started)
			assert.Equal(t, 1, windows)
			assert.Equal(t, len(res.Available), fetches)
			assert.Equal(t, 1, rankedEvents)
			return
		}
	}
}

func TestBookSuccess(t *testing.T) {
	sink := &captureSink{}
	cal := &calendar.FakePort{}
	p := newTestPlanner(t, cal, WithSink(sink))

	r, err := p.Book(context.Background(), "run-1", testBundle(t))
	require.NoError(t, err)
	assert.NotEmpty(t, r.ProviderRef)
	require.Len(t, cal.Created(), 1)

	require.Len(t, sink.bookings, 1)
	assert.True(t, sink.bookings[0].Committed)
	assert.False(t, sink.bookings[0].Conflict)
}

func TestBookConflict(t *testing.T) {
	sink := &captureSink{}
	b := testBundle(t)
	cal := &calendar.FakePort{
		Busy: []model.BusyInterval{{Start: b.Window.Start, End: b.Window.End, Hard: true, Summary: "standup"}},
	}
	p := newTestPlanner(t, cal, WithSink(sink))

	_, err := p.Book(context.Background(), "run-1", b)
	require.ErrorIs(t, err, ErrBookingConflict)
	assert.Empty(t, cal.Created())

	require.Len(t, sink.bookings, 1)
	assert.True(t, sink.bookings[0].Conflict)
	assert.False(t, sink.bookings[0].Committed)
}

func TestBookProviderFailure(t *testing.T) {
	sink := &captureSink{}
	p := newTestPlanner(t, &calendar.FakePort{Err: calendar.ErrUnavailable}, WithSink(sink))

	_, err := p.Book(context.Background(), "run-1", testBundle(t))
	var pe *ProviderError
	require.True(t, errors.As(err, &pe))

	require.Len(t, sink.bookings, 1)
	assert.False(t, sink.bookings[0].Committed)
	assert.NotEmpty(t, sink.bookings[0].Err)
}

// Two full runs over identical inputs rank identically.
func TestPlanDeterministicAcrossRuns(t *testing.T) {
	p := newTestPlanner(t, &calendar.FakePort{})

	a, err := p.Plan(context.Background(), baseRequest())
	require.NoError(t, err)
	b, err := p.Plan(context.Background(), baseRequest())
	require.NoError(t, err)

	require.Equal(t, len(a.Ranked), len(b.Ranked))
	for i := range a.Ranked {
		assert.Equal(t, a.Ranked[i], b.Ranked[i], "rank diverged at %d", i)
	}
}
