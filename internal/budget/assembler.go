// Package budget assembles the bounded text payload handed to field
// extraction from a letter, its annex and its status page.
package budget

import (
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/config"
	"github.com/sells-group/oficio-cli/internal/model"
)

// Section labels.
const (
	LabelAnnex      = "ANEXO II"
	LabelProcessing = "PROCESSAMENTO"
	LabelRejection  = "NOTA DE REJEIÇÃO"
)

var rule = strings.Repeat("=", 60)

// Input is everything the assembler needs for one document.
type Input struct {
	LetterPages []model.Page
	AnnexText   string
	StatusText  string
	// StatusLabel names the status block; LabelProcessing when empty.
	StatusLabel string
}

// Assembler enforces the character ceiling on extraction payloads.
type Assembler struct {
	cfg config.BudgetConfig
}

// NewAssembler creates an Assembler with the given thresholds.
func NewAssembler(cfg config.BudgetConfig) *Assembler {
	return &Assembler{cfg: cfg}
}

// Assemble builds the payload. A letter longer than the tier-1 page
// threshold with neither annex nor status is cut to its head and tail pages.
// If the result is still over the ceiling, the letter is rebuilt from the
// tier-2 head and tail of the original pages. Annex and status text are
// never cut.
func (a *Assembler) Assemble(in Input) model.AssembledPayload {
	log := zap.L().With(zap.Int("letter_pages", len(in.LetterPages)))

	letter := in.LetterPages
	tier := model.TierNone

	if len(letter) > a.cfg.Tier1PageThreshold && in.AnnexText == "" && in.StatusText == "" {
		letter = headTail(in.LetterPages, a.cfg.Tier1Head, a.cfg.Tier1Tail)
		tier = model.TierOne
		log.Warn("letter over page threshold without annex or status, keeping head and tail",
			zap.Int("kept_pages", len(letter)),
		)
	}

	text := a.build(letter, in)
	if utf8.RuneCountInString(text) > a.cfg.MaxChars {
		letter = headTail(in.LetterPages, a.cfg.Tier2Head, a.cfg.Tier2Tail)
		tier = model.TierTwo
		text = a.build(letter, in)
		log.Warn("payload over budget, keeping tier-2 head and tail",
			zap.Int("kept_pages", len(letter)),
		)
	}

	chars := utf8.RuneCountInString(text)
	over := chars > a.cfg.MaxChars
	if over {
		log.Warn("payload still over budget after reduction", zap.Int("chars", chars))
	}

	return model.AssembledPayload{
		Text:        text,
		Chars:       chars,
		Tier:        tier,
		LetterPages: model.PageNumbers(letter),
		OverBudget:  over,
	}
}

func (a *Assembler) build(letter []model.Page, in Input) string {
	var sb strings.Builder
	sb.WriteString(model.JoinPages(letter))
	if in.AnnexText != "" {
		writeSection(&sb, LabelAnnex, in.AnnexText)
	}
	if in.StatusText != "" {
		label := in.StatusLabel
		if label == "" {
			label = LabelProcessing
		}
		writeSection(&sb, label, in.StatusText)
	}
	return sb.String()
}

func writeSection(sb *strings.Builder, label, body string) {
	sb.WriteString("\n\n")
	sb.WriteString(rule)
	sb.WriteString("\n=== ")
	sb.WriteString(label)
	sb.WriteString(" ===\n")
	sb.WriteString(rule)
	sb.WriteString("\n\n")
	sb.WriteString(body)
}

// headTail keeps the first head and last tail pages without repeating any
// page when the two ranges overlap.
func headTail(pages []model.Page, head, tail int) []model.Page {
	if head < 0 {
		head = 0
	}
	if tail < 0 {
		tail = 0
	}
	if head+tail >= len(pages) {
		return pages
	}
	out := make([]model.Page, 0, head+tail)
	out = append(out, pages[:head]...)
	out = append(out, pages[len(pages)-tail:]...)
	return out
}
