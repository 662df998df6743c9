package baac

// MissingReport counts unknown-sentinel values per field across the cleaned
// table. Feeds the data-quality view; nothing here excludes rows.
func MissingReport(t *Table) map[string]int {
	counts := map[string]int{
		"hour":           0,
		"age":            0,
		"gps":            0,
		"lighting":       0,
		"weather":        0,
		"agglomeration":  0,
		"intersection":   0,
		"road_category":  0,
		"surface":        0,
		"infrastructure": 0,
		"situation":      0,
		"collision_type": 0,
		"trip_purpose":   0,
		"sex":            0,
	}

	for _, rec := range t.Records() {
		if rec.Hour < 0 {
			counts["hour"]++
		}
		if rec.Age < 0 {
			counts["age"]++
		}
		if rec.Location == nil {
			counts["gps"]++
		}
		for field, value := range map[string]string{
			"lighting":       rec.Lighting,
			"weather":        rec.Weather,
			"agglomeration":  rec.Agglomeration,
			"intersection":   rec.Intersection,
			"road_category":  rec.RoadCategory,
			"surface":        rec.Surface,
			"infrastructure": rec.Infrastructure,
			"situation":      rec.Situation,
			"collision_type": rec.CollisionType,
			"trip_purpose":   rec.TripPurpose,
			"sex":            rec.Sex,
		} {
			if value == Unknown {
				counts[field]++
			}
		}
	}

	return counts
}
