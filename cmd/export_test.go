package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/oficio-cli/internal/export"
	"github.com/sells-group/oficio-cli/internal/model"
	"github.com/sells-group/oficio-cli/internal/store"
)

func TestExportResults_JSONStdout(t *testing.T) {
	st := newTestStore(t)
	seedResults(t, st)

	var buf bytes.Buffer
	rejected := true
	err := exportResults(context.Background(), st, store.ResultFilter{Rejected: &rejected}, "json", "-", &buf)
	require.NoError(t, err)

	var got []model.Result
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "b.pdf", got[0].Document)
}

func TestExportResults_JSONFile(t *testing.T) {
	st := newTestStore(t)
	seedResults(t, st)
	out := filepath.Join(t.TempDir(), "results.json")

	require.NoError(t, exportResults(context.Background(), st, store.ResultFilter{TaxID: "11144477735"}, "json", out, nil))

	b, err := os.ReadFile(out)
	require.NoError(t, err)
	var got []model.Result
	require.NoError(t, json.Unmarshal(b, &got))
	require.Len(t, got, 1)
	assert.Equal(t, "c.pdf", got[0].Document)
}

func TestExportResults_Dir(t *testing.T) {
	st := newTestStore(t)
	seedResults(t, st)
	dir := t.TempDir()

	require.NoError(t, exportResults(context.Background(), st, store.ResultFilter{}, "dir", dir, nil))

	_, err := os.Stat(filepath.Join(dir, "52998224725", "a.json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "11144477735", "c.json"))
	assert.NoError(t, err)
}

func TestExportResults_XLSX(t *testing.T) {
	st := newTestStore(t)
	seedResults(t, st)
	out := filepath.Join(t.TempDir(), "results.xlsx")

	require.NoError(t, exportResults(context.Background(), st, store.ResultFilter{}, "xlsx", out, nil))

	rows, err := export.ReadXLSX(out)
	require.NoError(t, err)
	require.Len(t, rows, 4)
	assert.Equal(t, export.Headers(), rows[0])
}

func TestExportResults_Errors(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	err := exportResults(ctx, st, store.ResultFilter{}, "csv", "x", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")

	err = exportResults(ctx, st, store.ResultFilter{}, "xlsx", "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--out")

	err = exportResults(ctx, st, store.ResultFilter{}, "dir", "", nil)
	require.Error(t, err)
}
