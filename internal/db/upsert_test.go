package db

import (
	"context"
	"errors"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCfg = UpsertConfig{
	Table:        "public.results",
	Columns:      []string{"tax_id", "document", "payload"},
	ConflictKeys: []string{"tax_id", "document"},
}

func TestUpsertSQL(t *testing.T) {
	got, err := UpsertSQL(testCfg)
	require.NoError(t, err)
	assert.Equal(t,
		`INSERT INTO "public"."results" ("tax_id", "document", "payload") VALUES ($1, $2, $3) ON CONFLICT ("tax_id", "document") DO UPDATE SET "payload" = EXCLUDED."payload"`,
		got)
}

func TestUpsertSQL_ExplicitUpdateCols(t *testing.T) {
	cfg := testCfg
	cfg.UpdateCols = []string{}
	got, err := UpsertSQL(cfg)
	require.NoError(t, err)
	assert.Contains(t, got, "DO NOTHING")
}

func TestUpsertSQL_NoColumns(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{Table: "t", ConflictKeys: []string{"id"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no columns specified")
}

func TestUpsertSQL_NoConflictKeys(t *testing.T) {
	_, err := UpsertSQL(UpsertConfig{Table: "t", Columns: []string{"id", "name"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no conflict keys specified")
}

func TestUpsert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`INSERT INTO "public"."results"`).
		WithArgs("52998224725", "a.pdf", "{}").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, Upsert(context.Background(), mock, testCfg, []any{"52998224725", "a.pdf", "{}"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpsert_Errors(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	err = Upsert(context.Background(), mock, testCfg, []any{"only one"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 values for 3 columns")

	mock.ExpectExec(`INSERT INTO`).WillReturnError(errors.New("conn closed"))
	err = Upsert(context.Background(), mock, testCfg, []any{"a", "b", "c"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db: upsert into public.results")
}

func TestSanitizeTable(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"simple", `"simple"`},
		{"public.results", `"public"."results"`},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeTable(tt.input))
		})
	}
}

func TestQuoteAndJoin(t *testing.T) {
	assert.Equal(t, `"id", "name", "value"`, quoteAndJoin([]string{"id", "name", "value"}))
}
