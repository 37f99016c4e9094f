package main

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/oficio-cli/internal/model"
)

var (
	batchLimit     int
	batchNoExtract bool
)

// cpfFolder matches the per-requester folder names of a batch tree.
var cpfFolder = regexp.MustCompile(`^\d{11}$`)

// batchJob is one PDF to process for one tax id.
type batchJob struct {
	TaxID string
	Path  string
}

// batchSummary counts outcomes. Each document lands in exactly one of
// Succeeded, Failed or NeedsReview.
type batchSummary struct {
	Total       int
	Succeeded   int64
	Failed      int64
	NeedsReview int64
}

var batchCmd = &cobra.Command{
	Use:   "batch <base-dir>",
	Short: "Process every <cpf>/*.pdf under a base directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("batch"); err != nil {
			return err
		}
		if !batchNoExtract {
			if err := cfg.Validate("extract"); err != nil {
				return err
			}
		}

		jobs, err := discoverJobs(args[0])
		if err != nil {
			return err
		}
		if batchLimit > 0 && len(jobs) > batchLimit {
			jobs = jobs[:batchLimit]
		}
		if len(jobs) == 0 {
			zap.L().Info("no documents to process", zap.String("base", args[0]))
			return nil
		}

		proc, err := initProcessor(!batchNoExtract)
		if err != nil {
			return err
		}
		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		process := func(ctx context.Context, j batchJob) (*model.Result, error) {
			return proc.Process(ctx, j.Path, j.TaxID)
		}
		sum := processBatch(ctx, jobs, cfg.Batch.MaxConcurrentDocuments, process, st.SaveResult)

		zap.L().Info("batch complete",
			zap.Int("total", sum.Total),
			zap.Int64("succeeded", sum.Succeeded),
			zap.Int64("failed", sum.Failed),
			zap.Int64("needs_review", sum.NeedsReview),
		)
		return nil
	},
}

// discoverJobs lists <base>/<11 digits>/*.pdf. Other folder names are skipped
// with a warning.
func discoverJobs(base string) ([]batchJob, error) {
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil, eris.Wrapf(err, "batch: read %s", base)
	}

	var jobs []batchJob
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if !cpfFolder.MatchString(e.Name()) {
			zap.L().Warn("skipping folder without a CPF name", zap.String("folder", e.Name()))
			continue
		}
		dir := filepath.Join(base, e.Name())
		files, err := os.ReadDir(dir)
		if err != nil {
			return nil, eris.Wrapf(err, "batch: read %s", dir)
		}
		for _, f := range files {
			if f.IsDir() || !strings.EqualFold(filepath.Ext(f.Name()), ".pdf") {
				continue
			}
			jobs = append(jobs, batchJob{TaxID: e.Name(), Path: filepath.Join(dir, f.Name())})
		}
	}

	sort.Slice(jobs, func(i, k int) bool {
		if jobs[i].TaxID != jobs[k].TaxID {
			return jobs[i].TaxID < jobs[k].TaxID
		}
		return jobs[i].Path < jobs[k].Path
	})
	return jobs, nil
}

// processBatch runs process over jobs with bounded concurrency and hands every
// result to save, failures included. A failing document never stops the
// batch.
func processBatch(
	ctx context.Context,
	jobs []batchJob,
	concurrency int,
	process func(context.Context, batchJob) (*model.Result, error),
	save func(context.Context, *model.Result) error,
) batchSummary {
	if concurrency <= 0 {
		concurrency = 1
	}
	var succeeded, failed, review atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, j := range jobs {
		g.Go(func() error {
			log := zap.L().With(zap.String("tax_id", j.TaxID), zap.String("document", j.Path))

			res, err := process(gctx, j)
			if res == nil {
				res = &model.Result{
					ID:          uuid.NewString(),
					Document:    j.Path,
					TaxID:       j.TaxID,
					ProcessedAt: time.Now().UTC(),
				}
				if err != nil {
					res.Error = err.Error()
				}
			}

			switch {
			case err != nil || res.Error != "":
				failed.Add(1)
				log.Error("document failed", zap.String("error", res.Error))
			case res.Succeeded():
				succeeded.Add(1)
			default:
				review.Add(1)
				log.Warn("document needs review", zap.String("reason", res.ReviewReason))
			}

			if save != nil {
				if serr := save(gctx, res); serr != nil {
					log.Error("save result failed", zap.Error(serr))
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	return batchSummary{
		Total:       len(jobs),
		Succeeded:   succeeded.Load(),
		Failed:      failed.Load(),
		NeedsReview: review.Load(),
	}
}

func init() {
	batchCmd.Flags().IntVar(&batchLimit, "limit", 0, "max documents to process (0 = all)")
	batchCmd.Flags().BoolVar(&batchNoExtract, "no-extract", false, "skip Claude field extraction")
	rootCmd.AddCommand(batchCmd)
}
