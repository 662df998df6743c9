package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/velodata/baacviz/internal/baac"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	require.NoError(t, s.Migrate(context.Background()))
	return s
}

func sampleTable() (*baac.Table, *baac.ExclusionReport) {
	records := []baac.Record{
		{
			AccidentID: "201900000001",
			PersonID:   "1",
			Date:       time.Date(2019, 7, 15, 0, 0, 0, 0, time.UTC),
			Year:       2019,
			Month:      time.July,
			Weekday:    time.Monday,
			Hour:       17,
			Department: "75",
			Severity:   baac.SeverityLight,
			Weather:    "Normal",
			Location:   geom.NewPointFlat(geom.XY, []float64{2.35, 48.85}),
			Age:        34,
			TimePeriod: baac.PeriodAfternoon,
		},
		{
			AccidentID: "202000000002",
			PersonID:   "2",
			Date:       time.Date(2020, 2, 2, 0, 0, 0, 0, time.UTC),
			Year:       2020,
			Month:      time.February,
			Weekday:    time.Sunday,
			Hour:       -1,
			Department: "33",
			Severity:   baac.SeverityFatal,
			Weather:    baac.Unknown,
			Age:        -1,
			TimePeriod: baac.PeriodUnknown,
			IsFatal:    true,
			IsSevere:   true,
			IsWeekend:  true,
		},
	}
	report := &baac.ExclusionReport{
		TotalRows: 3,
		Kept:      2,
		Reasons:   map[string]int{"missing_date": 1},
	}
	return baac.NewTable(records), report
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	table, report := sampleTable()
	id, err := s.Save(ctx, table, report)
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	loaded, loadedReport, snap, err := s.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, id, snap.ID)
	assert.Equal(t, 2, snap.RowCount)
	assert.Equal(t, report, loadedReport)
	require.Equal(t, table.Len(), loaded.Len())

	got := loaded.Records()
	want := table.Records()
	assert.Equal(t, want[0].AccidentID, got[0].AccidentID)
	assert.Equal(t, want[0].Severity, got[0].Severity)
	require.NotNil(t, got[0].Location)
	assert.InDelta(t, 2.35, got[0].Location.X(), 1e-9)
	assert.InDelta(t, 48.85, got[0].Location.Y(), 1e-9)

	// Unknown sentinels survive the round trip.
	assert.Equal(t, -1, got[1].Age)
	assert.Equal(t, -1, got[1].Hour)
	assert.Nil(t, got[1].Location)
	assert.Equal(t, baac.Unknown, got[1].Weather)
}

func TestLoadLatest_PicksNewest(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	table, report := sampleTable()
	_, err := s.Save(ctx, baac.NewTable(table.Records()[:1]), report)
	require.NoError(t, err)

	time.Sleep(10 * time.Millisecond)
	id2, err := s.Save(ctx, table, report)
	require.NoError(t, err)

	_, _, snap, err := s.LoadLatest(ctx)
	require.NoError(t, err)
	assert.Equal(t, id2, snap.ID)
	assert.Equal(t, 2, snap.RowCount)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, id2, list[0].ID)
}

func TestLoadLatest_Empty(t *testing.T) {
	s := newTestStore(t)
	_, _, _, err := s.LoadLatest(context.Background())
	assert.True(t, errors.Is(err, ErrNoSnapshot))
}
