package ocr

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/rotisserie/eris"

	"github.com/sells-group/oficio-cli/internal/model"
)

// PdfToText extracts text from PDFs using the pdftotext CLI tool.
type PdfToText struct {
	binPath string
}

// NewPdfToText creates a PdfToText extractor. If binPath is empty, "pdftotext" is used.
func NewPdfToText(binPath string) *PdfToText {
	if binPath == "" {
		binPath = "pdftotext"
	}
	return &PdfToText{binPath: binPath}
}

// ExtractPages runs pdftotext -layout on the PDF and splits stdout on the
// form feed pdftotext writes after every page.
func (p *PdfToText) ExtractPages(ctx context.Context, pdfPath string) ([]model.Page, error) {
	cmd := exec.CommandContext(ctx, p.binPath, "-layout", "-enc", "UTF-8", pdfPath, "-")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, eris.Wrapf(err, "ocr: pdftotext failed for %s: %s", pdfPath, stderr.String())
	}

	return splitPages(stdout.String()), nil
}

func splitPages(out string) []model.Page {
	if out == "" {
		return nil
	}
	parts := strings.Split(out, "\f")
	// pdftotext terminates the last page with a form feed too.
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1]) == "" {
		parts = parts[:len(parts)-1]
	}
	pages := make([]model.Page, len(parts))
	for i, txt := range parts {
		pages[i] = model.Page{Number: i + 1, Text: txt}
	}
	return pages
}
