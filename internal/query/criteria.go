// Package query filters the cleaned accident table and computes the grouped
// counts the dashboard displays. All aggregations operate on the filtered
// subset so every displayed figure stays consistent with the active filters.
package query

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/velodata/baacviz/internal/baac"
)

// Criteria is the tuple of user-selected constraints. Zero-valued members
// are unrestricted: an empty department set matches every department, a zero
// year bound is open-ended.
type Criteria struct {
	YearFrom    int
	YearTo      int
	Departments []string
	Severities  []baac.Severity
	// Locations filters on the agglomeration label ("In built-up area",
	// "Outside built-up area").
	Locations []string
	// BBox restricts to records whose GPS point falls inside the bounds
	// (lon/lat order). Records without coordinates never match a bbox filter.
	BBox *geom.Bounds
}

// Key returns a canonical string for the criteria, used as the memoization
// key. Set members are sorted so logically equal criteria share a key.
func (c Criteria) Key() string {
	deps := append([]string(nil), c.Departments...)
	sort.Strings(deps)

	sevs := make([]string, 0, len(c.Severities))
	for _, s := range c.Severities {
		sevs = append(sevs, string(s))
	}
	sort.Strings(sevs)

	locs := append([]string(nil), c.Locations...)
	sort.Strings(locs)

	bbox := ""
	if c.BBox != nil {
		bbox = fmt.Sprintf("%g,%g,%g,%g",
			c.BBox.Min(0), c.BBox.Min(1), c.BBox.Max(0), c.BBox.Max(1))
	}

	return fmt.Sprintf("y=%d-%d|d=%s|s=%s|l=%s|b=%s",
		c.YearFrom, c.YearTo,
		strings.Join(deps, ","),
		strings.Join(sevs, ","),
		strings.Join(locs, ","),
		bbox,
	)
}

// Matches reports whether a record satisfies every active constraint.
func (c Criteria) Matches(rec baac.Record) bool {
	if c.YearFrom != 0 && rec.Year < c.YearFrom {
		return false
	}
	if c.YearTo != 0 && rec.Year > c.YearTo {
		return false
	}
	if len(c.Departments) > 0 && !containsString(c.Departments, rec.Department) {
		return false
	}
	if len(c.Severities) > 0 && !containsSeverity(c.Severities, rec.Severity) {
		return false
	}
	if len(c.Locations) > 0 && !containsString(c.Locations, rec.Agglomeration) {
		return false
	}
	if c.BBox != nil {
		if rec.Location == nil {
			return false
		}
		if !c.BBox.OverlapsPoint(geom.XY, rec.Location.Coords()) {
			return false
		}
	}
	return true
}

// ParseBBox parses a "minLon,minLat,maxLon,maxLat" string into bounds.
func ParseBBox(s string) (*geom.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, eris.Errorf("query: bbox %q: want minLon,minLat,maxLon,maxLat", s)
	}
	coords := make([]float64, 4)
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, eris.Wrapf(err, "query: bbox %q", s)
		}
		coords[i] = f
	}
	b := geom.NewBounds(geom.XY)
	b.Set(coords[0], coords[1], coords[2], coords[3])
	return b, nil
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsSeverity(set []baac.Severity, v baac.Severity) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
