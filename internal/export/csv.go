// Package export writes filtered subsets and aggregation tables to CSV and
// XLSX files for use outside the dashboard.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/velodata/baacviz/internal/baac"
)

// csvHeader is the column order of exported record files.
var csvHeader = []string{
	"accident_id", "person_id", "date", "year", "hour", "department",
	"commune", "severity", "lighting", "weather", "agglomeration",
	"intersection", "road_category", "surface", "infrastructure",
	"situation", "collision_type", "trip_purpose", "sex", "age",
	"time_period", "age_group", "season", "lat", "long",
}

// WriteCSV writes the table as UTF-8 CSV.
func WriteCSV(w io.Writer, t *baac.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return eris.Wrap(err, "export: write header")
	}

	for _, rec := range t.Records() {
		date := ""
		if !rec.Date.IsZero() {
			date = rec.Date.Format("2006-01-02")
		}
		hour, age := "", ""
		if rec.Hour >= 0 {
			hour = strconv.Itoa(rec.Hour)
		}
		if rec.Age >= 0 {
			age = strconv.Itoa(rec.Age)
		}
		lat, lng := "", ""
		if rec.Location != nil {
			lng = strconv.FormatFloat(rec.Location.X(), 'f', -1, 64)
			lat = strconv.FormatFloat(rec.Location.Y(), 'f', -1, 64)
		}

		row := []string{
			rec.AccidentID, rec.PersonID, date, strconv.Itoa(rec.Year), hour,
			rec.Department, rec.Commune, string(rec.Severity), rec.Lighting,
			rec.Weather, rec.Agglomeration, rec.Intersection, rec.RoadCategory,
			rec.Surface, rec.Infrastructure, rec.Situation, rec.CollisionType,
			rec.TripPurpose, rec.Sex, age, string(rec.TimePeriod),
			rec.AgeGroup, rec.Season, lat, lng,
		}
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush")
}
