package query

import (
	"github.com/velodata/baacviz/internal/baac"
)

// Apply returns a new table holding the records matching the criteria. The
// base table is never mutated; a zero-row result is valid, not an error.
func Apply(t *baac.Table, c Criteria) *baac.Table {
	matched := make([]baac.Record, 0, t.Len())
	for _, rec := range t.Records() {
		if c.Matches(rec) {
			matched = append(matched, rec)
		}
	}
	return baac.NewTable(matched)
}
