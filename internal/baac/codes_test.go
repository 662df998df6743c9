package baac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEmbeddedCodeTables(t *testing.T) {
	assert.Equal(t, "Daylight", codes.Lighting[1])
	assert.Equal(t, "Snow - hail", codes.Weather[4])
	assert.Equal(t, "Without infrastructure", codes.Infrastructure[0])
	assert.Equal(t, "Not specified", codes.Situation[-1])
	assert.Equal(t, "Roundabout", codes.Intersection[6])
	assert.Equal(t, "Without collision", codes.Collision[7])
}

func TestLabel_UnknownFallback(t *testing.T) {
	assert.Equal(t, "Normal", label(codes.Weather, 1, true))
	assert.Equal(t, Unknown, label(codes.Weather, 42, true))
	assert.Equal(t, Unknown, label(codes.Weather, 1, false))
}

func TestSeverityFromCode(t *testing.T) {
	assert.Equal(t, SeverityUnharmed, SeverityFromCode(1))
	assert.Equal(t, SeverityFatal, SeverityFromCode(2))
	assert.Equal(t, SeverityHospitalized, SeverityFromCode(3))
	assert.Equal(t, SeverityLight, SeverityFromCode(4))
	assert.Equal(t, SeverityUnknown, SeverityFromCode(0))
	assert.Equal(t, SeverityUnknown, SeverityFromCode(7))
}

func TestParseSeverity(t *testing.T) {
	sev, err := ParseSeverity("fatal")
	assert.NoError(t, err)
	assert.Equal(t, SeverityFatal, sev)

	_, err = ParseSeverity("catastrophic")
	assert.Error(t, err)
}

func TestTimePeriodForHour(t *testing.T) {
	assert.Equal(t, PeriodNight, TimePeriodForHour(0))
	assert.Equal(t, PeriodNight, TimePeriodForHour(5))
	assert.Equal(t, PeriodMorning, TimePeriodForHour(6))
	assert.Equal(t, PeriodAfternoon, TimePeriodForHour(12))
	assert.Equal(t, PeriodEvening, TimePeriodForHour(23))
	assert.Equal(t, PeriodUnknown, TimePeriodForHour(-1))
	assert.Equal(t, PeriodUnknown, TimePeriodForHour(24))
}

func TestAgeGroup(t *testing.T) {
	assert.Equal(t, "0-12", ageGroup(0))
	assert.Equal(t, "13-17", ageGroup(17))
	assert.Equal(t, "18-25", ageGroup(18))
	assert.Equal(t, "65+", ageGroup(80))
	assert.Equal(t, Unknown, ageGroup(-1))
}
