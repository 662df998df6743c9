package query

import (
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/velodata/baacviz/internal/baac"
)

// Group is one bucket of a grouped count.
type Group struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Dimensions the dashboard can group on.
const (
	DimYear           = "year"
	DimHour           = "hour"
	DimWeather        = "weather"
	DimDepartment     = "department"
	DimSeverity       = "severity"
	DimLighting       = "lighting"
	DimInfrastructure = "infrastructure"
)

// Dimensions lists the supported grouping dimensions.
var Dimensions = []string{
	DimYear, DimHour, DimWeather, DimDepartment,
	DimSeverity, DimLighting, DimInfrastructure,
}

// CountBy groups the table by the named dimension. Results are ordered by
// natural key order: chronological for year and hour, alphabetical for
// categorical dimensions. An empty table yields an empty (non-nil) slice.
func CountBy(t *baac.Table, dim string) ([]Group, error) {
	switch dim {
	case DimYear:
		return countByInt(t, func(r baac.Record) (int, bool) { return r.Year, true }), nil
	case DimHour:
		return countByInt(t, func(r baac.Record) (int, bool) { return r.Hour, r.Hour >= 0 }), nil
	case DimWeather:
		return countByLabel(t, func(r baac.Record) string { return r.Weather }), nil
	case DimDepartment:
		return countByLabel(t, func(r baac.Record) string { return r.Department }), nil
	case DimSeverity:
		return countByLabel(t, func(r baac.Record) string { return string(r.Severity) }), nil
	case DimLighting:
		return countByLabel(t, func(r baac.Record) string { return r.Lighting }), nil
	case DimInfrastructure:
		return countByLabel(t, func(r baac.Record) string { return r.Infrastructure }), nil
	default:
		return nil, eris.Errorf("query: unknown dimension %q", dim)
	}
}

// countByInt groups on an integer key in ascending order. Records whose key
// extractor reports false (unknown hour) are grouped under "unknown" last.
func countByInt(t *baac.Table, key func(baac.Record) (int, bool)) []Group {
	counts := make(map[int]int)
	unknown := 0
	for _, rec := range t.Records() {
		k, ok := key(rec)
		if !ok {
			unknown++
			continue
		}
		counts[k]++
	}

	keys := make([]int, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	groups := make([]Group, 0, len(keys)+1)
	for _, k := range keys {
		groups = append(groups, Group{Key: strconv.Itoa(k), Count: counts[k]})
	}
	if unknown > 0 {
		groups = append(groups, Group{Key: "unknown", Count: unknown})
	}
	return groups
}

// countByLabel groups on a string key in alphabetical order.
func countByLabel(t *baac.Table, key func(baac.Record) string) []Group {
	counts := make(map[string]int)
	for _, rec := range t.Records() {
		counts[key(rec)]++
	}

	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]Group, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, Group{Key: k, Count: counts[k]})
	}
	return groups
}

// TopN reorders groups by descending count, ties broken by ascending key,
// and keeps the first n. n <= 0 keeps everything.
func TopN(groups []Group, n int) []Group {
	out := append([]Group(nil), groups...)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Key < out[j].Key
	})
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Summary holds the headline figures for a filtered subset.
type Summary struct {
	Total        int             `json:"total"`
	Fatal        int             `json:"fatal"`
	Severe       int             `json:"severe"`
	MeanAge      float64         `json:"mean_age"` // over records with known age
	CommonPeriod baac.TimePeriod `json:"common_period"`
}

// Summarize computes the headline figures. On an empty table every figure is
// zero and CommonPeriod is unknown.
func Summarize(t *baac.Table) Summary {
	s := Summary{Total: t.Len(), CommonPeriod: baac.PeriodUnknown}

	ageSum, ageN := 0, 0
	periods := make(map[baac.TimePeriod]int)
	for _, rec := range t.Records() {
		if rec.IsFatal {
			s.Fatal++
		}
		if rec.IsSevere {
			s.Severe++
		}
		if rec.Age >= 0 {
			ageSum += rec.Age
			ageN++
		}
		if rec.TimePeriod != baac.PeriodUnknown {
			periods[rec.TimePeriod]++
		}
	}

	if ageN > 0 {
		s.MeanAge = float64(ageSum) / float64(ageN)
	}

	best := 0
	for _, p := range []baac.TimePeriod{baac.PeriodNight, baac.PeriodMorning, baac.PeriodAfternoon, baac.PeriodEvening} {
		if periods[p] > best {
			best = periods[p]
			s.CommonPeriod = p
		}
	}
	return s
}
