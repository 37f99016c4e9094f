package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/detect"
)

var (
	processPDF       string
	processTaxID     string
	processNoExtract bool
	processExplain   bool
	processSave      bool
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a single PDF for one tax id",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		withExtract := !processNoExtract && !processExplain
		mode := "process"
		if withExtract {
			mode = "extract"
		}
		if err := cfg.Validate(mode); err != nil {
			return err
		}

		proc, err := initProcessor(withExtract)
		if err != nil {
			return err
		}

		if processExplain {
			ex, err := proc.Explain(ctx, processPDF)
			if err != nil {
				return eris.Wrap(err, "explain")
			}
			return writeJSON(cmd.OutOrStdout(), ex)
		}

		res, procErr := proc.Process(ctx, processPDF, detect.DigitsOnly(processTaxID))

		if processSave && res != nil {
			st, err := initStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
			if err := st.SaveResult(ctx, res); err != nil {
				return eris.Wrap(err, "save result")
			}
		}

		if procErr != nil {
			return eris.Wrap(procErr, "process")
		}

		zap.L().Info("document processed",
			zap.String("document", res.Document),
			zap.Bool("identity_matched", res.IdentityMatched),
			zap.Bool("rejected", res.Rejected),
			zap.Int64("duration_ms", res.DurationMs),
		)
		return writeJSON(cmd.OutOrStdout(), res)
	},
}

func init() {
	processCmd.Flags().StringVar(&processPDF, "pdf", "", "path to the court PDF (required)")
	processCmd.Flags().StringVar(&processTaxID, "tax-id", "", "CPF or CNPJ of the requester (required)")
	processCmd.Flags().BoolVar(&processNoExtract, "no-extract", false, "skip Claude field extraction")
	processCmd.Flags().BoolVar(&processExplain, "explain", false, "print page scores, candidates and annex stats instead of a result")
	processCmd.Flags().BoolVar(&processSave, "save", false, "persist the result to the store")
	_ = processCmd.MarkFlagRequired("pdf")
	_ = processCmd.MarkFlagRequired("tax-id")
	rootCmd.AddCommand(processCmd)
}
