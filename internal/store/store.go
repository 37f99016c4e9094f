// Package store persists per-document results.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"github.com/sells-group/oficio-cli/internal/config"
	"github.com/sells-group/oficio-cli/internal/model"
)

// ErrNotFound is returned when no result exists for a tax id.
var ErrNotFound = errors.New("store: not found")

// ResultFilter specifies criteria for listing results.
type ResultFilter struct {
	TaxID       string `json:"tax_id,omitempty"`
	Rejected    *bool  `json:"rejected,omitempty"`
	NeedsReview *bool  `json:"needs_review,omitempty"`
	Limit       int    `json:"limit,omitempty"`
	Offset      int    `json:"offset,omitempty"`
}

// Store defines the persistence interface for results.
type Store interface {
	// SaveResult inserts r or replaces the row with the same tax id and
	// document.
	SaveResult(ctx context.Context, r *model.Result) error
	// GetResult returns the most recently processed result for taxID.
	GetResult(ctx context.Context, taxID string) (*model.Result, error)
	ListResults(ctx context.Context, filter ResultFilter) ([]model.Result, error)

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}

// Open connects to the backend named by cfg.Driver.
func Open(ctx context.Context, cfg config.StoreConfig) (Store, error) {
	switch cfg.Driver {
	case "sqlite", "":
		s, err := NewSQLite(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := NewPostgres(ctx, cfg.DatabaseURL, nil)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Driver)
	}
}

const (
	defaultLimit = 100
	// timeLayout is fixed-width so text timestamps sort chronologically.
	timeLayout = "2006-01-02T15:04:05.000000000Z"
)

// resultColumns is the column order used by both backends' upserts.
var resultColumns = []string{"id", "tax_id", "document", "rejected", "needs_review", "processed_at", "payload"}

func encodeResult(r *model.Result) ([]byte, error) {
	if r.TaxID == "" || r.Document == "" {
		return nil, eris.New("store: result needs tax id and document")
	}
	b, err := json.Marshal(r)
	if err != nil {
		return nil, eris.Wrap(err, "store: marshal result")
	}
	return b, nil
}

func decodeResult(b []byte) (*model.Result, error) {
	var r model.Result
	if err := json.Unmarshal(b, &r); err != nil {
		return nil, eris.Wrap(err, "store: unmarshal result")
	}
	return &r, nil
}

// filterClause renders the WHERE/ORDER/LIMIT tail of a list query. ph
// returns the placeholder for the n-th (1-based) argument.
func filterClause(f ResultFilter, ph func(n int) string) (string, []any) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(" WHERE 1=1")
	add := func(cond string, v any) {
		args = append(args, v)
		fmt.Fprintf(&sb, " AND %s = %s", cond, ph(len(args)))
	}
	if f.TaxID != "" {
		add("tax_id", f.TaxID)
	}
	if f.Rejected != nil {
		add("rejected", *f.Rejected)
	}
	if f.NeedsReview != nil {
		add("needs_review", *f.NeedsReview)
	}
	sb.WriteString(" ORDER BY processed_at DESC, document")

	limit := f.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	args = append(args, limit)
	fmt.Fprintf(&sb, " LIMIT %s", ph(len(args)))

	if f.Offset > 0 {
		args = append(args, f.Offset)
		fmt.Fprintf(&sb, " OFFSET %s", ph(len(args)))
	}
	return sb.String(), args
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}
