package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/income-verify/internal/model"
)

// SQLiteStore persists parse runs using modernc.org/sqlite. It satisfies
// pipeline.AuditSink.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at the given path and configures WAL mode.
func NewSQLite(dsn string) (*SQLiteStore, error) {
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
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteStore{db: db}, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS parse_runs (
	id            TEXT PRIMARY KEY,
	path          TEXT NOT NULL,
	kind          TEXT NOT NULL,
	confidence    REAL NOT NULL,
	warning_count INTEGER NOT NULL DEFAULT 0,
	document      TEXT NOT NULL,
	recorded_at   DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_parse_runs_path ON parse_runs(path);
CREATE INDEX IF NOT EXISTS idx_parse_runs_kind ON parse_runs(kind);
CREATE INDEX IF NOT EXISTS idx_parse_runs_recorded_at ON parse_runs(recorded_at);
`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// RecordRun persists an assembled document keyed by its run ID.
func (s *SQLiteStore) RecordRun(ctx context.Context, path string, doc *model.Document) error {
	docJSON, err := json.Marshal(doc)
	if err != nil {
		return eris.Wrap(err, "sqlite: marshal document")
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO parse_runs (id, path, kind, confidence, warning_count, document, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		doc.Metadata.RunID, path, string(doc.Kind), doc.Confidence,
		len(doc.Warnings), string(docJSON), time.Now().UTC(),
	)
	return eris.Wrapf(err, "sqlite: insert run %s", doc.Metadata.RunID)
}

// GetRun returns a persisted run including its full document.
func (s *SQLiteStore) GetRun(ctx context.Context, runID string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, path, kind, confidence, warning_count, document, recorded_at
		 FROM parse_runs WHERE id = ?`,
		runID,
	)
	return scanRun(row)
}

// ListRuns returns persisted runs matching the filter, newest first. The
// documents themselves are omitted from list results.
func (s *SQLiteStore) ListRuns(ctx context.Context, filter RunFilter) ([]Run, error) {
	query := `SELECT id, path, kind, confidence, warning_count, recorded_at
		 FROM parse_runs WHERE 1=1`
	var args []any

	if filter.Kind != "" {
		query += ` AND kind = ?`
		args = append(args, string(filter.Kind))
	}
	if filter.Path != "" {
		query += ` AND path = ?`
		args = append(args, filter.Path)
	}
	if filter.MinConfidence > 0 {
		query += ` AND confidence >= ?`
		args = append(args, filter.MinConfidence)
	}
	query += ` ORDER BY recorded_at DESC`

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += ` LIMIT ?`
	args = append(args, limit)

	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list runs")
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var kind string
		if err := rows.Scan(&r.ID, &r.Path, &kind, &r.Confidence, &r.WarningCount, &r.RecordedAt); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan run")
		}
		r.Kind = model.DocumentKind(kind)
		runs = append(runs, r)
	}
	return runs, eris.Wrap(rows.Err(), "sqlite: list runs iterate")
}

// PruneBefore deletes runs recorded before the cutoff and reports how many
// rows were removed.
func (s *SQLiteStore) PruneBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM parse_runs WHERE recorded_at < ?`,
		cutoff.UTC(),
	)
	if err != nil {
		return 0, eris.Wrap(err, "sqlite: prune runs")
	}
	n, err := res.RowsAffected()
	return int(n), eris.Wrap(err, "sqlite: rows affected")
}

func scanRun(row *sql.Row) (*Run, error) {
	var r Run
	var kind, docJSON string

	err := row.Scan(&r.ID, &r.Path, &kind, &r.Confidence, &r.WarningCount, &docJSON, &r.RecordedAt)
	if err == sql.ErrNoRows {
		return nil, eris.New("run not found")
	}
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: scan run")
	}

	r.Kind = model.DocumentKind(kind)
	r.Document = &model.Document{}
	if err := json.Unmarshal([]byte(docJSON), r.Document); err != nil {
		return nil, eris.Wrap(err, "sqlite: unmarshal document")
	}
	return &r, nil
}
