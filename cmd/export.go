package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/detect"
	"github.com/sells-group/oficio-cli/internal/export"
	"github.com/sells-group/oficio-cli/internal/model"
	"github.com/sells-group/oficio-cli/internal/store"
)

var (
	exportFormat      string
	exportOut         string
	exportTaxID       string
	exportRejected    bool
	exportNeedsReview bool
)

// exportPageSize is the page size used to drain the store.
const exportPageSize = 500

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export stored results as JSON, a JSON tree or an XLSX sheet",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		var filter store.ResultFilter
		filter.TaxID = detect.DigitsOnly(exportTaxID)
		if cmd.Flags().Changed("rejected") {
			filter.Rejected = &exportRejected
		}
		if cmd.Flags().Changed("needs-review") {
			filter.NeedsReview = &exportNeedsReview
		}

		return exportResults(ctx, st, filter, exportFormat, exportOut, cmd.OutOrStdout())
	},
}

// exportResults writes every result matching filter in the given format.
// For "json", out "" or "-" means w.
func exportResults(ctx context.Context, st store.Store, filter store.ResultFilter, format, out string, w io.Writer) error {
	results, err := loadAll(ctx, st, filter)
	if err != nil {
		return err
	}

	switch format {
	case "json":
		if out == "" || out == "-" {
			return export.WriteJSON(w, results)
		}
		return writeJSONFile(out, results)
	case "dir":
		if out == "" {
			return eris.New("export: --out directory is required for dir format")
		}
		paths, err := export.WriteJSONDir(out, results)
		if err != nil {
			return err
		}
		zap.L().Info("exported results", zap.Int("files", len(paths)), zap.String("dir", out))
		return nil
	case "xlsx":
		if out == "" {
			return eris.New("export: --out file is required for xlsx format")
		}
		if err := export.WriteXLSX(out, results); err != nil {
			return err
		}
		zap.L().Info("exported results", zap.Int("rows", len(results)), zap.String("file", out))
		return nil
	default:
		return fmt.Errorf("export: unknown format %q (want json, dir or xlsx)", format)
	}
}

func loadAll(ctx context.Context, st store.Store, filter store.ResultFilter) ([]model.Result, error) {
	filter.Limit = exportPageSize
	filter.Offset = 0

	var all []model.Result
	for {
		page, err := st.ListResults(ctx, filter)
		if err != nil {
			return nil, eris.Wrap(err, "export: list results")
		}
		all = append(all, page...)
		if len(page) < exportPageSize {
			return all, nil
		}
		filter.Offset += exportPageSize
	}
}

func writeJSONFile(path string, results []model.Result) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = eris.Wrapf(cerr, "export: close %s", path)
		}
	}()
	return export.WriteJSON(f, results)
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "output format: json, dir or xlsx")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output file or directory (json defaults to stdout)")
	exportCmd.Flags().StringVar(&exportTaxID, "tax-id", "", "only results for this tax id")
	exportCmd.Flags().BoolVar(&exportRejected, "rejected", false, "filter on rejection status")
	exportCmd.Flags().BoolVar(&exportNeedsReview, "needs-review", false, "filter on review flag")
	rootCmd.AddCommand(exportCmd)
}
