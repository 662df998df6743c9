// Package store persists prepared-table snapshots in SQLite so later runs
// can skip the download and preparation stages.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	_ "modernc.org/sqlite"

	"github.com/velodata/baacviz/internal/baac"
)

// ErrNoSnapshot means no snapshot has been saved yet.
var ErrNoSnapshot = eris.New("store: no snapshot")

// Snapshot describes one saved prepared table.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	RowCount  int       `json:"row_count"`
}

// SnapshotStore implements snapshot persistence using modernc.org/sqlite.
type SnapshotStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SnapshotStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close() //nolint:errcheck
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SnapshotStore{db: db}, nil
}

const migration = `
CREATE TABLE IF NOT EXISTS snapshots (
	id         TEXT PRIMARY KEY,
	created_at TEXT NOT NULL,
	row_count  INTEGER NOT NULL,
	report     TEXT NOT NULL,
	records    TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
`

// Migrate creates the schema if needed.
func (s *SnapshotStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, migration)
	return eris.Wrap(err, "sqlite: migrate")
}

// Close closes the database.
func (s *SnapshotStore) Close() error {
	return s.db.Close()
}

// recordRow flattens a baac.Record for JSON storage. The GPS point is split
// into plain floats since geom.Point does not round-trip through JSON.
type recordRow struct {
	baac.Record
	Lng *float64 `json:"lng,omitempty"`
	Lat *float64 `json:"lat,omitempty"`
}

func toRows(t *baac.Table) []recordRow {
	rows := make([]recordRow, 0, t.Len())
	for _, rec := range t.Records() {
		row := recordRow{Record: rec}
		if rec.Location != nil {
			lng, lat := rec.Location.X(), rec.Location.Y()
			row.Lng, row.Lat = &lng, &lat
			row.Record.Location = nil
		}
		rows = append(rows, row)
	}
	return rows
}

func fromRows(rows []recordRow) *baac.Table {
	records := make([]baac.Record, 0, len(rows))
	for _, row := range rows {
		rec := row.Record
		if row.Lng != nil && row.Lat != nil {
			rec.Location = geom.NewPointFlat(geom.XY, []float64{*row.Lng, *row.Lat})
		}
		records = append(records, rec)
	}
	return baac.NewTable(records)
}

// Save persists the prepared table and its exclusion report. Returns the
// snapshot id.
func (s *SnapshotStore) Save(ctx context.Context, t *baac.Table, report *baac.ExclusionReport) (string, error) {
	id := uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339Nano)

	recordsJSON, err := json.Marshal(toRows(t))
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal records")
	}
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: marshal report")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at, row_count, report, records) VALUES (?, ?, ?, ?, ?)`,
		id, now, t.Len(), string(reportJSON), string(recordsJSON),
	)
	if err != nil {
		return "", eris.Wrap(err, "sqlite: insert snapshot")
	}
	return id, nil
}

// LoadLatest returns the most recent snapshot with its table and report.
func (s *SnapshotStore) LoadLatest(ctx context.Context) (*baac.Table, *baac.ExclusionReport, *Snapshot, error) {
	var (
		snap        Snapshot
		createdAt   string
		reportJSON  string
		recordsJSON string
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, row_count, report, records
		 FROM snapshots ORDER BY created_at DESC, id LIMIT 1`,
	).Scan(&snap.ID, &createdAt, &snap.RowCount, &reportJSON, &recordsJSON)
	if err == sql.ErrNoRows {
		return nil, nil, nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, nil, nil, eris.Wrap(err, "sqlite: query snapshot")
	}
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)

	var report baac.ExclusionReport
	if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
		return nil, nil, nil, eris.Wrap(err, "sqlite: unmarshal report")
	}
	var rows []recordRow
	if err := json.Unmarshal([]byte(recordsJSON), &rows); err != nil {
		return nil, nil, nil, eris.Wrap(err, "sqlite: unmarshal records")
	}

	return fromRows(rows), &report, &snap, nil
}

// List returns all snapshots, most recent first.
func (s *SnapshotStore) List(ctx context.Context) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, row_count FROM snapshots ORDER BY created_at DESC, id`,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list snapshots")
	}
	defer rows.Close() //nolint:errcheck

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var createdAt string
		if err := rows.Scan(&snap.ID, &createdAt, &snap.RowCount); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan snapshot")
		}
		snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, snap)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: iterate snapshots")
}
