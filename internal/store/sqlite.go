package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/oficio-cli/internal/model"
)

// SQLiteStore implements Store using modernc.org/sqlite.
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
CREATE TABLE IF NOT EXISTS results (
	id           TEXT PRIMARY KEY,
	tax_id       TEXT NOT NULL,
	document     TEXT NOT NULL,
	rejected     INTEGER NOT NULL DEFAULT 0,
	needs_review INTEGER NOT NULL DEFAULT 0,
	processed_at TEXT NOT NULL,
	payload      TEXT NOT NULL,
	UNIQUE (tax_id, document)
);

CREATE INDEX IF NOT EXISTS idx_results_tax_id ON results(tax_id, processed_at DESC);
CREATE INDEX IF NOT EXISTS idx_results_flags ON results(rejected, needs_review);
`

const sqliteUpsert = `INSERT INTO results (id, tax_id, document, rejected, needs_review, processed_at, payload)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (tax_id, document) DO UPDATE SET
	id = excluded.id,
	rejected = excluded.rejected,
	needs_review = excluded.needs_review,
	processed_at = excluded.processed_at,
	payload = excluded.payload`

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) SaveResult(ctx context.Context, r *model.Result) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	payload, err := encodeResult(r)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, sqliteUpsert,
		r.ID, r.TaxID, r.Document, r.Rejected, r.NeedsReview, formatTime(r.ProcessedAt), string(payload),
	)
	if err != nil {
		return eris.Wrapf(err, "sqlite: save result %s", r.Document)
	}
	return nil
}

func (s *SQLiteStore) GetResult(ctx context.Context, taxID string) (*model.Result, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM results WHERE tax_id = ? ORDER BY processed_at DESC LIMIT 1`,
		taxID,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "sqlite: get result %s", taxID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "sqlite: get result %s", taxID)
	}
	return decodeResult([]byte(payload))
}

func (s *SQLiteStore) ListResults(ctx context.Context, filter ResultFilter) ([]model.Result, error) {
	tail, args := filterClause(filter, func(int) string { return "?" })
	rows, err := s.db.QueryContext(ctx, `SELECT payload FROM results`+tail, args...)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list results")
	}
	defer rows.Close()

	var out []model.Result
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan result")
		}
		r, err := decodeResult([]byte(payload))
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list results iterate")
}
