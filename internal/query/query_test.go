package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/velodata/baacviz/internal/baac"
)

func rec(year int, dept string, sev baac.Severity, opts ...func(*baac.Record)) baac.Record {
	r := baac.Record{
		AccidentID:    "acc",
		PersonID:      "p",
		Date:          time.Date(year, time.June, 15, 0, 0, 0, 0, time.UTC),
		Year:          year,
		Department:    dept,
		Severity:      sev,
		Hour:          10,
		Weather:       "Normal",
		Lighting:      "Daylight",
		Agglomeration: "In built-up area",
		TimePeriod:    baac.PeriodMorning,
		Age:           30,
		IsFatal:       sev == baac.SeverityFatal,
		IsSevere:      sev == baac.SeverityFatal || sev == baac.SeverityHospitalized,
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func testTable() *baac.Table {
	return baac.NewTable([]baac.Record{
		rec(2019, "75", baac.SeverityFatal),
		rec(2020, "75", baac.SeverityLight),
		rec(2020, "33", baac.SeverityHospitalized, func(r *baac.Record) {
			r.Weather = "Light rain"
			r.Hour = 18
			r.TimePeriod = baac.PeriodEvening
			r.Agglomeration = "Outside built-up area"
		}),
		rec(2021, "33", baac.SeverityUnharmed, func(r *baac.Record) { r.Hour = -1 }),
	})
}

func TestApply_UnrestrictedReturnsAll(t *testing.T) {
	base := testTable()
	got := Apply(base, Criteria{})
	assert.Equal(t, base.Len(), got.Len())

	// Full year range with no other constraints is also the identity.
	got = Apply(base, Criteria{YearFrom: 2005, YearTo: 2023})
	assert.Equal(t, base.Len(), got.Len())
}

func TestApply_WorkedExample(t *testing.T) {
	base := baac.NewTable([]baac.Record{
		rec(2019, "75", baac.SeverityFatal),
		rec(2020, "75", baac.SeverityLight),
	})

	got := Apply(base, Criteria{YearFrom: 2019, YearTo: 2019})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, 2019, got.Records()[0].Year)
	assert.Equal(t, baac.SeverityFatal, got.Records()[0].Severity)

	groups, err := CountBy(got, DimSeverity)
	require.NoError(t, err)
	assert.Equal(t, []Group{{Key: "fatal", Count: 1}}, groups)
}

func TestApply_SingleYear(t *testing.T) {
	got := Apply(testTable(), Criteria{YearFrom: 2020, YearTo: 2020})
	require.Equal(t, 2, got.Len())
	for _, r := range got.Records() {
		assert.Equal(t, 2020, r.Year)
	}

	// Yearly counts sum to the subset's row count.
	groups, err := CountBy(got, DimYear)
	require.NoError(t, err)
	sum := 0
	for _, g := range groups {
		sum += g.Count
	}
	assert.Equal(t, got.Len(), sum)
}

func TestApply_SetFilters(t *testing.T) {
	base := testTable()

	got := Apply(base, Criteria{Departments: []string{"33"}})
	assert.Equal(t, 2, got.Len())

	got = Apply(base, Criteria{Severities: []baac.Severity{baac.SeverityFatal, baac.SeverityHospitalized}})
	assert.Equal(t, 2, got.Len())

	got = Apply(base, Criteria{Locations: []string{"Outside built-up area"}})
	assert.Equal(t, 1, got.Len())
}

func TestApply_BBox(t *testing.T) {
	paris := rec(2019, "75", baac.SeverityLight, func(r *baac.Record) {
		r.Location = geom.NewPointFlat(geom.XY, []float64{2.35, 48.85})
	})
	bordeaux := rec(2019, "33", baac.SeverityLight, func(r *baac.Record) {
		r.Location = geom.NewPointFlat(geom.XY, []float64{-0.58, 44.84})
	})
	noGPS := rec(2019, "75", baac.SeverityLight)
	base := baac.NewTable([]baac.Record{paris, bordeaux, noGPS})

	// Île-de-France-ish box.
	bbox := geom.NewBounds(geom.XY)
	bbox.Set(1.5, 48.0, 3.5, 49.5)

	got := Apply(base, Criteria{BBox: bbox})
	require.Equal(t, 1, got.Len())
	assert.Equal(t, "75", got.Records()[0].Department)
}

func TestApply_ZeroMatchIsNotAnError(t *testing.T) {
	got := Apply(testTable(), Criteria{Departments: []string{"2A"}})
	assert.Equal(t, 0, got.Len())

	for _, dim := range Dimensions {
		groups, err := CountBy(got, dim)
		require.NoError(t, err)
		assert.Empty(t, groups, "dimension %s", dim)
	}

	s := Summarize(got)
	assert.Equal(t, Summary{CommonPeriod: baac.PeriodUnknown}, s)
}

func TestCountBy_NaturalOrder(t *testing.T) {
	base := testTable()

	years, err := CountBy(base, DimYear)
	require.NoError(t, err)
	assert.Equal(t, []Group{{"2019", 1}, {"2020", 2}, {"2021", 1}}, years)

	weather, err := CountBy(base, DimWeather)
	require.NoError(t, err)
	assert.Equal(t, []Group{{"Light rain", 1}, {"Normal", 3}}, weather)

	hours, err := CountBy(base, DimHour)
	require.NoError(t, err)
	// Unknown hours are reported last, never dropped.
	assert.Equal(t, []Group{{"10", 2}, {"18", 1}, {"unknown", 1}}, hours)
}

func TestCountBy_UnknownDimension(t *testing.T) {
	_, err := CountBy(testTable(), "commune")
	assert.Error(t, err)
}

func TestTopN(t *testing.T) {
	groups := []Group{{"a", 2}, {"b", 5}, {"c", 2}, {"d", 1}}

	top := TopN(groups, 3)
	// Descending count; the a/c tie breaks by ascending key.
	assert.Equal(t, []Group{{"b", 5}, {"a", 2}, {"c", 2}}, top)

	// n <= 0 keeps everything, still frequency-sorted.
	all := TopN(groups, 0)
	assert.Len(t, all, 4)
	assert.Equal(t, Group{"b", 5}, all[0])

	// Input order is untouched.
	assert.Equal(t, Group{"a", 2}, groups[0])
}

func TestSummarize(t *testing.T) {
	s := Summarize(testTable())
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.Fatal)
	assert.Equal(t, 2, s.Severe)
	assert.InDelta(t, 30.0, s.MeanAge, 1e-9)
	assert.Equal(t, baac.PeriodMorning, s.CommonPeriod)
}

func TestCriteria_KeyCanonical(t *testing.T) {
	a := Criteria{YearFrom: 2019, Departments: []string{"75", "33"}, Severities: []baac.Severity{baac.SeverityFatal, baac.SeverityLight}}
	b := Criteria{YearFrom: 2019, Departments: []string{"33", "75"}, Severities: []baac.Severity{baac.SeverityLight, baac.SeverityFatal}}
	assert.Equal(t, a.Key(), b.Key())

	c := Criteria{YearFrom: 2020, Departments: []string{"33", "75"}}
	assert.NotEqual(t, a.Key(), c.Key())
}

func TestMemo(t *testing.T) {
	m := NewMemo(testTable())

	c := Criteria{Departments: []string{"75"}}
	first := m.Filter(c)
	assert.Equal(t, 2, first.Len())
	assert.Equal(t, 1, m.Size())

	// Same criteria, different member order: same memo entry, same table.
	second := m.Filter(Criteria{Departments: []string{"75"}})
	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Size())

	m.Filter(Criteria{YearFrom: 2020})
	assert.Equal(t, 2, m.Size())

	assert.Equal(t, 4, m.Base().Len())
}
