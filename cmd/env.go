package main

import (
	"context"
	"encoding/json"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/oficio-cli/internal/budget"
	"github.com/sells-group/oficio-cli/internal/extract"
	"github.com/sells-group/oficio-cli/internal/ocr"
	"github.com/sells-group/oficio-cli/internal/pipeline"
	"github.com/sells-group/oficio-cli/internal/store"
	"github.com/sells-group/oficio-cli/pkg/anthropic"
)

// initStore opens the configured store and applies migrations. Callers
// should defer Close.
func initStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}
	return st, nil
}

// initProcessor wires page extraction, the detection engine, the payload
// assembler and, when withExtract is set, Claude field extraction.
func initProcessor(withExtract bool) (*pipeline.Processor, error) {
	pages, err := ocr.NewExtractor(cfg.OCR)
	if err != nil {
		return nil, err
	}
	engine, err := pipeline.NewEngine(cfg.Detect)
	if err != nil {
		return nil, err
	}

	var fields extract.FieldExtractor
	if withExtract {
		fe, err := extract.NewAnthropicExtractor(anthropic.NewClient(cfg.Anthropic.Key), cfg.Anthropic)
		if err != nil {
			return nil, err
		}
		fields = fe
	}

	return pipeline.NewProcessor(pages, engine, budget.NewAssembler(cfg.Budget), fields, pipeline.OptionsFromConfig(cfg.Detect)), nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
