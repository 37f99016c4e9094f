package main

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sells-group/oficio-cli/internal/model"
	"github.com/sells-group/oficio-cli/internal/store"
)

func newTestStore(t *testing.T) store.Store {
	t.Helper()
	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "results.db"))
	require.NoError(t, err)
	require.NoError(t, st.Migrate(context.Background()))
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func seedResults(t *testing.T, st store.Store) {
	t.Helper()
	ctx := context.Background()
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	for i, r := range []model.Result{
		{ID: "r1", TaxID: "52998224725", Document: "a.pdf", IdentityMatched: true, SelectedLetterPages: []int{4, 5}, StatusPage: 8, OrderNumber: "822/2026"},
		{ID: "r2", TaxID: "52998224725", Document: "b.pdf", IdentityMatched: true, Rejected: true, RejectionReason: "falta procuração"},
		{ID: "r3", TaxID: "11144477735", Document: "c.pdf", NeedsReview: true, ReviewReason: model.ReviewNoLetter},
	} {
		r.ProcessedAt = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, st.SaveResult(ctx, &r))
	}
}
