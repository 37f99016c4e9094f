package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/oficio-cli/internal/model"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
}

func TestDiscoverJobs(t *testing.T) {
	base := t.TempDir()
	touch(t, filepath.Join(base, "52998224725", "b.pdf"))
	touch(t, filepath.Join(base, "52998224725", "a.PDF"))
	touch(t, filepath.Join(base, "52998224725", "notes.txt"))
	touch(t, filepath.Join(base, "11144477735", "x.pdf"))
	touch(t, filepath.Join(base, "not-a-cpf", "y.pdf"))
	touch(t, filepath.Join(base, "1234", "z.pdf"))
	touch(t, filepath.Join(base, "stray.pdf"))

	jobs, err := discoverJobs(base)
	require.NoError(t, err)

	assert.Equal(t, []batchJob{
		{TaxID: "11144477735", Path: filepath.Join(base, "11144477735", "x.pdf")},
		{TaxID: "52998224725", Path: filepath.Join(base, "52998224725", "a.PDF")},
		{TaxID: "52998224725", Path: filepath.Join(base, "52998224725", "b.pdf")},
	}, jobs)
}

func TestDiscoverJobs_MissingBase(t *testing.T) {
	_, err := discoverJobs(filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "batch: read")
}

func TestProcessBatch_ContinuesOnFailure(t *testing.T) {
	jobs := []batchJob{
		{TaxID: "52998224725", Path: "ok.pdf"},
		{TaxID: "52998224725", Path: "broken.pdf"},
		{TaxID: "11144477735", Path: "review.pdf"},
		{TaxID: "11144477735", Path: "extract.pdf"},
	}

	process := func(_ context.Context, j batchJob) (*model.Result, error) {
		res := &model.Result{Document: j.Path, TaxID: j.TaxID}
		switch j.Path {
		case "ok.pdf":
			res.IdentityMatched = true
			return res, nil
		case "broken.pdf":
			return nil, errors.New("ocr: not a pdf")
		case "review.pdf":
			res.NeedsReview = true
			res.ReviewReason = model.ReviewTaxIDNotFound
			return res, nil
		default:
			res.IdentityMatched = true
			res.Error = "extract: call model: overloaded"
			return res, nil
		}
	}

	var mu sync.Mutex
	saved := map[string]*model.Result{}
	save := func(_ context.Context, r *model.Result) error {
		mu.Lock()
		defer mu.Unlock()
		saved[r.Document] = r
		return nil
	}

	sum := processBatch(context.Background(), jobs, 2, process, save)

	assert.Equal(t, 4, sum.Total)
	assert.Equal(t, int64(1), sum.Succeeded)
	assert.Equal(t, int64(2), sum.Failed)
	assert.Equal(t, int64(1), sum.NeedsReview)
	assert.Equal(t, int64(sum.Total), sum.Succeeded+sum.Failed+sum.NeedsReview)

	require.Len(t, saved, 4)
	broken := saved["broken.pdf"]
	assert.Equal(t, "ocr: not a pdf", broken.Error)
	assert.Equal(t, "52998224725", broken.TaxID)
	assert.NotEmpty(t, broken.ID)
	assert.False(t, broken.ProcessedAt.IsZero())
}

func TestProcessBatch_SaveErrorDoesNotStop(t *testing.T) {
	jobs := []batchJob{{TaxID: "52998224725", Path: "a.pdf"}, {TaxID: "52998224725", Path: "b.pdf"}}
	var mu sync.Mutex
	calls := 0
	process := func(_ context.Context, j batchJob) (*model.Result, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return &model.Result{Document: j.Path, TaxID: j.TaxID, IdentityMatched: true}, nil
	}
	save := func(context.Context, *model.Result) error { return errors.New("disk full") }

	sum := processBatch(context.Background(), jobs, 0, process, save)
	assert.Equal(t, 2, calls)
	assert.Equal(t, int64(2), sum.Succeeded)
}

func TestProcessBatch_ReviewIsNotSuccess(t *testing.T) {
	jobs := []batchJob{
		{TaxID: "52998224725", Path: "no-letter.pdf"},
		{TaxID: "52998224725", Path: "other-requester.pdf"},
	}
	process := func(_ context.Context, j batchJob) (*model.Result, error) {
		reason := model.ReviewNoLetter
		if j.Path == "other-requester.pdf" {
			reason = model.ReviewTaxIDNotFound
		}
		return &model.Result{Document: j.Path, TaxID: j.TaxID, NeedsReview: true, ReviewReason: reason}, nil
	}

	sum := processBatch(context.Background(), jobs, 2, process, nil)
	assert.Equal(t, int64(0), sum.Succeeded)
	assert.Equal(t, int64(0), sum.Failed)
	assert.Equal(t, int64(2), sum.NeedsReview)
}
