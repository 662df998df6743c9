package query

import (
	"sync"

	"go.uber.org/zap"

	"github.com/velodata/baacviz/internal/baac"
)

// Memo caches filtered subsets keyed by Criteria.Key(). The base table is
// immutable for the life of the process, so entries are never invalidated.
type Memo struct {
	base *baac.Table

	mu      sync.RWMutex
	entries map[string]*baac.Table
}

// NewMemo creates a memoizing filter over the base table.
func NewMemo(base *baac.Table) *Memo {
	return &Memo{
		base:    base,
		entries: make(map[string]*baac.Table),
	}
}

// Base returns the unfiltered table.
func (m *Memo) Base() *baac.Table {
	return m.base
}

// Filter returns the subset matching the criteria, computing it at most once
// per distinct criteria key.
func (m *Memo) Filter(c Criteria) *baac.Table {
	key := c.Key()

	m.mu.RLock()
	cached, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return cached
	}

	filtered := Apply(m.base, c)

	m.mu.Lock()
	// Another goroutine may have raced us here; both computed the same
	// result, so last write wins.
	m.entries[key] = filtered
	m.mu.Unlock()

	zap.L().Debug("query: memoized filter",
		zap.String("key", key),
		zap.Int("rows", filtered.Len()),
	)
	return filtered
}

// Size returns the number of memoized subsets.
func (m *Memo) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
