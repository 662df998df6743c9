// Package baac loads, cleans, and models the BAAC bicycle-accident dataset
// (ONISR, 2005-2023). The cleaned table is immutable after preparation;
// filtering always produces new views.
package baac

import (
	"time"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Severity is the outcome category of one involved person. Closed set; every
// prepared row carries one of the four valid values (rows where the gravity
// code cannot be decoded are excluded when severity is a required field).
type Severity string

const (
	SeverityUnharmed     Severity = "unharmed"
	SeverityLight        Severity = "light"
	SeverityHospitalized Severity = "hospitalized"
	SeverityFatal        Severity = "fatal"
	SeverityUnknown      Severity = "unknown"
)

// Severities is the closed set of valid outcome categories, ordered by
// increasing severity.
var Severities = []Severity{SeverityUnharmed, SeverityLight, SeverityHospitalized, SeverityFatal}

// SeverityFromCode decodes the BAAC grav code:
// 1 unharmed, 2 killed, 3 hospitalized, 4 minor injury.
func SeverityFromCode(code int) Severity {
	switch code {
	case 1:
		return SeverityUnharmed
	case 2:
		return SeverityFatal
	case 3:
		return SeverityHospitalized
	case 4:
		return SeverityLight
	default:
		return SeverityUnknown
	}
}

// ParseSeverity parses a user-supplied severity name (CLI flags, query params).
func ParseSeverity(s string) (Severity, error) {
	for _, sev := range Severities {
		if string(sev) == s {
			return sev, nil
		}
	}
	return SeverityUnknown, eris.Errorf("baac: unknown severity %q", s)
}

// TimePeriod buckets the accident hour into four periods of day.
type TimePeriod string

const (
	PeriodNight     TimePeriod = "night"     // 00:00-05:59
	PeriodMorning   TimePeriod = "morning"   // 06:00-11:59
	PeriodAfternoon TimePeriod = "afternoon" // 12:00-17:59
	PeriodEvening   TimePeriod = "evening"   // 18:00-23:59
	PeriodUnknown   TimePeriod = "unknown"
)

// TimePeriodForHour buckets an hour of day. Hours outside [0,23] map to
// PeriodUnknown.
func TimePeriodForHour(h int) TimePeriod {
	switch {
	case h >= 0 && h < 6:
		return PeriodNight
	case h >= 6 && h < 12:
		return PeriodMorning
	case h >= 12 && h < 18:
		return PeriodAfternoon
	case h >= 18 && h < 24:
		return PeriodEvening
	default:
		return PeriodUnknown
	}
}

// ageGroup buckets an age in years. Negative means unknown.
func ageGroup(age int) string {
	switch {
	case age < 0:
		return Unknown
	case age <= 12:
		return "0-12"
	case age <= 17:
		return "13-17"
	case age <= 25:
		return "18-25"
	case age <= 35:
		return "26-35"
	case age <= 50:
		return "36-50"
	case age <= 65:
		return "51-65"
	default:
		return "65+"
	}
}

func seasonOf(m time.Month) string {
	switch m {
	case time.December, time.January, time.February:
		return "Winter"
	case time.March, time.April, time.May:
		return "Spring"
	case time.June, time.July, time.August:
		return "Summer"
	default:
		return "Autumn"
	}
}

// Record is one cleaned row: one person involved in one accident.
// AccidentID+PersonID uniquely identify a record.
type Record struct {
	AccidentID string `json:"accident_id"`
	PersonID   string `json:"person_id"`

	Date    time.Time    `json:"date"`
	Year    int          `json:"year"`
	Month   time.Month   `json:"month"`
	Weekday time.Weekday `json:"weekday"`
	Hour    int          `json:"hour"` // -1 when unknown

	Department string      `json:"department"`
	Commune    string      `json:"commune"`
	Location   *geom.Point `json:"-"` // nil when GPS coordinates are absent

	Severity       Severity `json:"severity"`
	Lighting       string   `json:"lighting"`
	Weather        string   `json:"weather"`
	Agglomeration  string   `json:"agglomeration"`
	Intersection   string   `json:"intersection"`
	RoadCategory   string   `json:"road_category"`
	Surface        string   `json:"surface"`
	Infrastructure string   `json:"infrastructure"`
	Situation      string   `json:"situation"`
	CollisionType  string   `json:"collision_type"`
	TripPurpose    string   `json:"trip_purpose"`

	Sex string `json:"sex"`
	Age int    `json:"age"` // -1 when unknown

	// Derived fields.
	TimePeriod          TimePeriod `json:"time_period"`
	AgeGroup            string     `json:"age_group"`
	Season              string     `json:"season"`
	IsWeekend           bool       `json:"is_weekend"`
	IsSevere            bool       `json:"is_severe"` // hospitalized or fatal
	IsFatal             bool       `json:"is_fatal"`
	HasBikeInfra        bool       `json:"has_bike_infra"`
	DangerousConditions bool       `json:"dangerous_conditions"`
}

// Table is an immutable collection of cleaned records. Consumers never mutate
// a Table; filtering builds a new one.
type Table struct {
	records []Record
}

// NewTable wraps records in a Table. The slice is owned by the Table from
// this point on.
func NewTable(records []Record) *Table {
	return &Table{records: records}
}

// Len returns the number of records.
func (t *Table) Len() int {
	return len(t.records)
}

// Records returns the backing slice as a read-only view.
func (t *Table) Records() []Record {
	return t.records
}
