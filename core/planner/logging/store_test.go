package logging

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pverdier/tripsched/core/model"
)

func sampleRecord(runID, destination string, ts time.Time) Record {
	return Record{
		RunID:     runID,
		Timestamp: ts,
		Request: model.TripRequest{
			Origin:      "CDG",
			Destination: destination,
			Nights:      4,
			Budget:      model.Money{Amount: 1000, Currency: "EUR"},
			MonthsAhead: 1,
		},
		Generated: 20,
		Available: 12,
		Fetched:   10,
	}
}

func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store) {
	ctx := context.Background()
	base := time.Date(2024, time.May, 1, 12, 0, 0, 0, time.UTC)

	t.Run("append and query all", func(t *testing.T) {
		s := newStore(t)
		defer func() { assert.NoError(t, s.Close()) }()

		require.NoError(t, s.Append(ctx, sampleRecord("run-1", "LIS", base)))
		require.NoError(t, s.Append(ctx, sampleRecord("run-2", "OPO", base.Add(time.Hour))))

		recs, err := s.Query(ctx, Query{})
		require.NoError(t, err)
		require.Len(t, recs, 2)
		assert.Equal(t, "run-1", recs[0].RunID)
		assert.Equal(t, 12, recs[0].Available)
	})

	t.Run("filter by run id", func(t *testing.T) {
		s := newStore(t)
		defer func() { assert.NoError(t, s.Close()) }()

		require.NoError(t, s.Append(ctx, sampleRecord("run-1", "LIS", base)))
		require.NoError(t, s.Append(ctx, sampleRecord("run-2", "LIS", base)))

		recs, err := s.Query(ctx, Query{RunID: "run-2"})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "run-2", recs[0].RunID)
	})

	t.Run("filter by destination", func(t *testing.T) {
		s := newStore(t)
		defer func() { assert.NoError(t, s.Close()) }()

		require.NoError(t, s.Append(ctx, sampleRecord("run-1", "LIS", base)))
		require.NoError(t, s.Append(ctx, sampleRecord("run-2", "OPO", base)))

		recs, err := s.Query(ctx, Query{Destination: "OPO"})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, "OPO", recs[0].Request.Destination)
	})

	t.Run("filter by time range", func(t *testing.T) {
		s := newStore(t)
		defer func() { assert.NoError(t, s.Close()) }()

		for i := 0; i < 3; i++ {
			require.NoError(t, s.Append(ctx, sampleRecord("run", "LIS", base.Add(time.Duration(i)*time.Hour))))
		}

		recs, err := s.Query(ctx, Query{Start: base.Add(30 * time.Minute), End: base.Add(90 * time.Minute)})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, base.Add(time.Hour).Unix(), recs[0].Timestamp.Unix())
	})

	t.Run("empty store", func(t *testing.T) {
		s := newStore(t)
		defer func() { assert.NoError(t, s.Close()) }()

		recs, err := s.Query(ctx, Query{})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestJSONLStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		s, err := NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
		require.NoError(t, err)
		return s
	})
}

func TestSQLiteStore(t *testing.T) {
	runStoreSuite(t, func(t *testing.T) Store {
		s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "plans.db"))
		require.NoError(t, err)
		return s
	})
}

func TestJSONLStoreErrorRecord(t *testing.T) {
	s, err := NewJSONLStore(filepath.Join(t.TempDir(), "plans.jsonl"))
	require.NoError(t, err)
	defer func() { assert.NoError(t, s.Close()) }()

	rec := sampleRecord("run-err", "LIS", time.Now().UTC())
	rec.Error = "calendar provider unavailable"
	require.NoError(t, s.Append(context.Background(), rec))

	recs, err := s.Query(context.Background(), Query{RunID: "run-err"})
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "calendar provider unavailable", recs[0].Error)
}
