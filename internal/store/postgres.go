package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/oficio-cli/internal/db"
	"github.com/sells-group/oficio-cli/internal/model"
)

// PostgresStore implements Store using pgxpool.
type PostgresStore struct {
	pool db.Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

var resultUpsert = db.UpsertConfig{
	Table:        "results",
	Columns:      resultColumns,
	ConflictKeys: []string{"tax_id", "document"},
}

const getResultSQL = `SELECT payload FROM results WHERE tax_id = $1 ORDER BY processed_at DESC LIMIT 1`

// NewPostgres creates a PostgresStore with a connection pool.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(10)
	minConns := int32(2)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	upsertSQL, err := db.UpsertSQL(resultUpsert)
	if err != nil {
		return nil, err
	}
	// Prepare the hot statements on each new connection.
	pgxCfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		for name, sql := range map[string]string{"upsert_result": upsertSQL, "get_result": getResultSQL} {
			if _, err := conn.Prepare(ctx, name, sql); err != nil {
				return eris.Wrapf(err, "postgres: prepare %s", name)
			}
		}
		return nil
	}

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}
	return &PostgresStore{pool: pool}, nil
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS results (
	id           TEXT PRIMARY KEY,
	tax_id       TEXT NOT NULL,
	document     TEXT NOT NULL,
	rejected     BOOLEAN NOT NULL DEFAULT false,
	needs_review BOOLEAN NOT NULL DEFAULT false,
	processed_at TIMESTAMPTZ NOT NULL,
	payload      JSONB NOT NULL,
	UNIQUE (tax_id, document)
);

CREATE INDEX IF NOT EXISTS idx_results_tax_id ON results(tax_id, processed_at DESC);
CREATE INDEX IF NOT EXISTS idx_results_flags ON results(rejected, needs_review);
`

func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) SaveResult(ctx context.Context, r *model.Result) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	payload, err := encodeResult(r)
	if err != nil {
		return err
	}
	err = db.Upsert(ctx, s.pool, resultUpsert, []any{
		r.ID, r.TaxID, r.Document, r.Rejected, r.NeedsReview, r.ProcessedAt.UTC(), payload,
	})
	return eris.Wrapf(err, "postgres: save result %s", r.Document)
}

func (s *PostgresStore) GetResult(ctx context.Context, taxID string) (*model.Result, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx, getResultSQL, taxID).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, eris.Wrapf(ErrNotFound, "postgres: get result %s", taxID)
	}
	if err != nil {
		return nil, eris.Wrapf(err, "postgres: get result %s", taxID)
	}
	return decodeResult(payload)
}

func (s *PostgresStore) ListResults(ctx context.Context, filter ResultFilter) ([]model.Result, error) {
	tail, args := filterClause(filter, func(n int) string { return fmt.Sprintf("$%d", n) })
	rows, err := s.pool.Query(ctx, `SELECT payload FROM results`+tail, args...)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: list results")
	}
	defer rows.Close()

	var out []model.Result
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, eris.Wrap(err, "postgres: scan result")
		}
		r, err := decodeResult(payload)
		if err != nil {
			return nil, err
		}
		out = append(out, *r)
	}
	return out, eris.Wrap(rows.Err(), "postgres: list results iterate")
}
