// Package ocr turns PDF files into ordered page text.
package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/sells-group/oficio-cli/internal/config"
	"github.com/sells-group/oficio-cli/internal/model"
)

// ErrMalformedInput marks a document that cannot be read or has no pages.
var ErrMalformedInput = errors.New("ocr: malformed input")

// Extractor extracts per-page text from a PDF file. Page numbers are
// 1-indexed and returned in document order.
type Extractor interface {
	ExtractPages(ctx context.Context, pdfPath string) ([]model.Page, error)
}

// NewExtractor creates an Extractor based on config.
func NewExtractor(cfg config.OCRConfig) (Extractor, error) {
	switch cfg.Provider {
	case "local", "":
		return NewPdfToText(cfg.PdfToTextPath), nil
	case "mistral":
		if cfg.MistralKey == "" {
			return nil, eris.New("ocr: mistral provider requires mistral_api_key")
		}
		return NewMistralOCR(cfg.MistralKey, cfg.MistralModel), nil
	default:
		return nil, eris.Errorf("ocr: unknown provider %q", cfg.Provider)
	}
}

// OpenDocument reads every page of the PDF at path once. Text is NFC
// normalised so accented keywords compare byte-for-byte. Unreadable and
// zero-page documents return an error wrapping ErrMalformedInput.
func OpenDocument(ctx context.Context, ex Extractor, path string) (*model.Document, error) {
	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return nil, eris.Wrapf(ErrMalformedInput, "ocr: %s is not a pdf", path)
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(errors.Join(ErrMalformedInput, err), "ocr: stat %s", path)
	}
	if info.IsDir() {
		return nil, eris.Wrapf(ErrMalformedInput, "ocr: %s is a directory", path)
	}

	pages, err := ex.ExtractPages(ctx, path)
	if err != nil {
		if ctx.Err() != nil {
			return nil, eris.Wrapf(err, "ocr: extract %s", path)
		}
		return nil, eris.Wrapf(errors.Join(ErrMalformedInput, err), "ocr: extract %s", path)
	}
	if len(pages) == 0 {
		return nil, eris.Wrapf(ErrMalformedInput, "ocr: %s has no pages", path)
	}

	for i := range pages {
		pages[i].Text = norm.NFC.String(pages[i].Text)
	}

	zap.L().Debug("document opened", zap.String("document", path), zap.Int("pages", len(pages)))
	return &model.Document{Path: path, Pages: pages}, nil
}
