package baac

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
)

// Field names accepted in PrepareOptions.RequiredFields. Which fields are
// strictly required is a policy decision, so it is configurable rather than
// hard-coded; these are the defaults.
const (
	FieldDate       = "date"
	FieldSeverity   = "severity"
	FieldDepartment = "department"
	FieldHour       = "hour"
)

// DefaultRequiredFields excludes a row when its date, severity, or department
// cannot be established.
var DefaultRequiredFields = []string{FieldDate, FieldSeverity, FieldDepartment}

// columnAliases maps raw BAAC export headers to the canonical names used
// internally. The full data.gouv.fr export and the annual ONISR files do not
// agree on all header names.
var columnAliases = map[string]string{
	"num_acc":    "accident_id",
	"vehiculeid": "person_id",
	"id_usager":  "person_id",
	"date":       "date",
	"an":         "year",
	"hrmn":       "hrmn",
	"dep":        "department",
	"com":        "commune",
	"lat":        "lat",
	"long":       "long",
	"grav":       "grav",
	"lum":        "lum",
	"atm":        "atm",
	"agg":        "agg",
	"int":        "int",
	"catr":       "catr",
	"surf":       "surf",
	"infra":      "infra",
	"situ":       "situ",
	"sexe":       "sexe",
	"trajet":     "trajet",
	"col":        "col",
	"age":        "age",
}

// PrepareOptions configures the cleaning stage.
type PrepareOptions struct {
	// RequiredFields lists the fields whose absence excludes a row.
	// Defaults to DefaultRequiredFields.
	RequiredFields []string
	// MinYear and MaxYear bound the accepted accident years, inclusive.
	// Defaults: 2005-2023, the period covered by the dataset.
	MinYear int
	MaxYear int
}

func (o PrepareOptions) withDefaults() PrepareOptions {
	if o.RequiredFields == nil {
		o.RequiredFields = DefaultRequiredFields
	}
	if o.MinYear == 0 {
		o.MinYear = 2005
	}
	if o.MaxYear == 0 {
		o.MaxYear = 2023
	}
	return o
}

// ExclusionReport counts rows dropped during preparation, by reason. Rows are
// never silently dropped; the report is part of the preparation output.
type ExclusionReport struct {
	TotalRows int            `json:"total_rows"`
	Kept      int            `json:"kept"`
	Reasons   map[string]int `json:"reasons"`
}

// Excluded returns the total number of excluded rows.
func (r *ExclusionReport) Excluded() int {
	return r.TotalRows - r.Kept
}

// ReasonKeys returns the exclusion reasons in alphabetical order.
func (r *ExclusionReport) ReasonKeys() []string {
	keys := make([]string, 0, len(r.Reasons))
	for k := range r.Reasons {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Prepare turns the raw table into the cleaned, immutable table. Pure and
// deterministic: the same raw input always yields the same table and the
// same exclusion counts.
//
// Steps, in order: canonical column mapping, type coercion, code decoding,
// derived-field computation, row validation.
func Prepare(raw *RawTable, opts PrepareOptions) (*Table, *ExclusionReport, error) {
	opts = opts.withDefaults()

	cols, err := indexColumns(raw.Header)
	if err != nil {
		return nil, nil, err
	}

	report := &ExclusionReport{
		TotalRows: len(raw.Rows),
		Reasons:   make(map[string]int),
	}

	records := make([]Record, 0, len(raw.Rows))
	for _, row := range raw.Rows {
		rec := buildRecord(row, cols)
		if reason := validate(rec, opts); reason != "" {
			report.Reasons[reason]++
			continue
		}
		records = append(records, rec)
	}
	report.Kept = len(records)

	zap.L().Info("baac: preparation complete",
		zap.Int("total", report.TotalRows),
		zap.Int("kept", report.Kept),
		zap.Int("excluded", report.Excluded()),
	)

	return NewTable(records), report, nil
}

// Validate re-applies the row-validation step to an already prepared table.
// Preparation is idempotent: validating its own output excludes nothing.
func Validate(t *Table, opts PrepareOptions) (*Table, *ExclusionReport) {
	opts = opts.withDefaults()

	report := &ExclusionReport{
		TotalRows: t.Len(),
		Reasons:   make(map[string]int),
	}
	records := make([]Record, 0, t.Len())
	for _, rec := range t.Records() {
		if reason := validate(rec, opts); reason != "" {
			report.Reasons[reason]++
			continue
		}
		records = append(records, rec)
	}
	report.Kept = len(records)
	return NewTable(records), report
}

// indexColumns maps canonical column names to their position in the header.
func indexColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int)
	for i, h := range header {
		name := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		if canonical, ok := columnAliases[name]; ok {
			cols[canonical] = i
		}
	}
	for _, required := range []string{"date", "grav", "department"} {
		if _, ok := cols[required]; !ok {
			return nil, eris.Errorf("baac: column %q missing from header", required)
		}
	}
	return cols, nil
}

func buildRecord(row []string, cols map[string]int) Record {
	get := func(name string) string {
		i, ok := cols[name]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}
	getInt := func(name string) (int, bool) {
		s := get(name)
		if s == "" {
			return 0, false
		}
		// Codes occasionally arrive as floats ("1.0") in the full export.
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return int(f), true
		}
		return 0, false
	}

	var rec Record
	rec.AccidentID = get("accident_id")
	rec.PersonID = get("person_id")
	rec.Commune = get("commune")
	rec.Department = normalizeDepartment(get("department"))

	if d, err := time.Parse("2006-01-02", get("date")); err == nil {
		rec.Date = d
		rec.Year = d.Year()
		rec.Month = d.Month()
		rec.Weekday = d.Weekday()
	} else if year, ok := getInt("year"); ok {
		rec.Year = year
	}

	rec.Hour = parseHour(get("hrmn"))

	gravCode, gravOK := getInt("grav")
	if gravOK {
		rec.Severity = SeverityFromCode(gravCode)
	} else {
		rec.Severity = SeverityUnknown
	}

	lumCode, lumOK := getInt("lum")
	atmCode, atmOK := getInt("atm")
	surfCode, surfOK := getInt("surf")
	infraCode, infraOK := getInt("infra")

	rec.Lighting = label(codes.Lighting, lumCode, lumOK)
	rec.Weather = label(codes.Weather, atmCode, atmOK)
	rec.Surface = label(codes.Surface, surfCode, surfOK)
	rec.Infrastructure = label(codes.Infrastructure, infraCode, infraOK)

	aggCode, aggOK := getInt("agg")
	rec.Agglomeration = label(codes.Agglomeration, aggCode, aggOK)
	intCode, intOK := getInt("int")
	rec.Intersection = label(codes.Intersection, intCode, intOK)
	catrCode, catrOK := getInt("catr")
	rec.RoadCategory = label(codes.RoadCategory, catrCode, catrOK)
	situCode, situOK := getInt("situ")
	rec.Situation = label(codes.Situation, situCode, situOK)
	colCode, colOK := getInt("col")
	rec.CollisionType = label(codes.Collision, colCode, colOK)
	trajetCode, trajetOK := getInt("trajet")
	rec.TripPurpose = label(codes.TripPurpose, trajetCode, trajetOK)
	sexCode, sexOK := getInt("sexe")
	rec.Sex = label(codes.Sex, sexCode, sexOK)

	rec.Age = -1
	if age, ok := getInt("age"); ok && age >= 0 && age <= 120 {
		rec.Age = age
	}

	if lat, err := strconv.ParseFloat(get("lat"), 64); err == nil {
		if lng, err := strconv.ParseFloat(get("long"), 64); err == nil {
			if lat != 0 || lng != 0 {
				rec.Location = geom.NewPointFlat(geom.XY, []float64{lng, lat})
			}
		}
	}

	// Derived fields.
	rec.TimePeriod = TimePeriodForHour(rec.Hour)
	rec.AgeGroup = ageGroup(rec.Age)
	if !rec.Date.IsZero() {
		rec.Season = seasonOf(rec.Month)
		rec.IsWeekend = rec.Weekday == time.Saturday || rec.Weekday == time.Sunday
	}
	rec.IsFatal = rec.Severity == SeverityFatal
	rec.IsSevere = rec.Severity == SeverityFatal || rec.Severity == SeverityHospitalized
	rec.HasBikeInfra = infraOK && (infraCode == 1 || infraCode == 2)
	rec.DangerousConditions = (lumOK && lumCode >= 3) ||
		(atmOK && atmCode >= 2 && atmCode <= 5) ||
		(surfOK && (surfCode == 2 || surfCode == 3 || surfCode == 5 || surfCode == 7))

	return rec
}

// validate returns an exclusion reason, or "" when the record is kept.
func validate(rec Record, opts PrepareOptions) string {
	for _, field := range opts.RequiredFields {
		switch field {
		case FieldDate:
			if rec.Date.IsZero() {
				return "missing_date"
			}
		case FieldSeverity:
			if rec.Severity == SeverityUnknown {
				return "missing_severity"
			}
		case FieldDepartment:
			if rec.Department == "" {
				return "missing_department"
			}
		case FieldHour:
			if rec.Hour < 0 {
				return "missing_hour"
			}
		}
	}
	if rec.Year < opts.MinYear || rec.Year > opts.MaxYear {
		return "year_out_of_range"
	}
	return ""
}

// normalizeDepartment zero-pads single-digit metropolitan codes ("1" → "01")
// and leaves Corsican ("2A", "2B") and overseas codes untouched.
func normalizeDepartment(dep string) string {
	dep = strings.ToUpper(strings.TrimSpace(dep))
	if dep == "" {
		return ""
	}
	if len(dep) == 1 {
		return "0" + dep
	}
	return dep
}

// parseHour extracts the hour of day from the BAAC hrmn field, which appears
// as "HH:MM" in the full export and "HHMM" (or "HMM") in annual files.
// Returns -1 when the value cannot be parsed.
func parseHour(hrmn string) int {
	hrmn = strings.TrimSpace(hrmn)
	if hrmn == "" {
		return -1
	}

	var hourPart string
	if i := strings.IndexByte(hrmn, ':'); i >= 0 {
		hourPart = hrmn[:i]
	} else if len(hrmn) >= 3 && len(hrmn) <= 4 {
		hourPart = hrmn[:len(hrmn)-2]
	} else {
		return -1
	}

	h, err := strconv.Atoi(hourPart)
	if err != nil || h < 0 || h > 23 {
		return -1
	}
	return h
}
