package main

import (
	"github.com/spf13/cobra"

	"github.com/velodata/baacviz/internal/baac"
	"github.com/velodata/baacviz/internal/query"
)

// filterFlags is the shared set of filter flags on the stats and export
// commands. Unset flags leave the corresponding criteria member unrestricted.
type filterFlags struct {
	from       int
	to         int
	depts      []string
	severities []string
	locations  []string
	bbox       string
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVar(&f.from, "from", 0, "first accident year, inclusive")
	cmd.Flags().IntVar(&f.to, "to", 0, "last accident year, inclusive")
	cmd.Flags().StringSliceVar(&f.depts, "dept", nil, "department codes (e.g. 75,2A)")
	cmd.Flags().StringSliceVar(&f.severities, "severity", nil, "severities: unharmed, light, hospitalized, fatal")
	cmd.Flags().StringSliceVar(&f.locations, "loc", nil, "agglomeration labels")
	cmd.Flags().StringVar(&f.bbox, "bbox", "", "bounding box minLon,minLat,maxLon,maxLat")
}

func (f *filterFlags) criteria() (query.Criteria, error) {
	c := query.Criteria{
		YearFrom:    f.from,
		YearTo:      f.to,
		Departments: f.depts,
		Locations:   f.locations,
	}

	for _, s := range f.severities {
		sev, err := baac.ParseSeverity(s)
		if err != nil {
			return c, err
		}
		c.Severities = append(c.Severities, sev)
	}

	if f.bbox != "" {
		b, err := query.ParseBBox(f.bbox)
		if err != nil {
			return c, err
		}
		c.BBox = b
	}

	return c, nil
}
