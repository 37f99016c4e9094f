// Package pipeline runs one court PDF through page extraction, letter
// detection, payload budgeting and optional field extraction.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/budget"
	"github.com/sells-group/oficio-cli/internal/config"
	"github.com/sells-group/oficio-cli/internal/detect"
	"github.com/sells-group/oficio-cli/internal/extract"
	"github.com/sells-group/oficio-cli/internal/model"
	"github.com/sells-group/oficio-cli/internal/ocr"
)

// ErrInvalidTaxID marks a target tax id that is not a CPF or CNPJ, or fails
// check-digit validation in strict mode.
var ErrInvalidTaxID = errors.New("pipeline: invalid tax id")

// Options are the per-document scan windows.
type Options struct {
	// StatusForwardLimit bounds the status page scan after the anchor page.
	StatusForwardLimit int
	// RejectionFallbackPages is how many pages after the letter are checked
	// for a standalone rejection note.
	RejectionFallbackPages int
}

// OptionsFromConfig maps the detect section of the app config.
func OptionsFromConfig(cfg config.DetectConfig) Options {
	return Options{
		StatusForwardLimit:     cfg.StatusForwardLimit,
		RejectionFallbackPages: cfg.RejectionFallbackPages,
	}
}

// NewEngine builds the detection engine from the default keyword set, the
// optional YAML profile and the variant switches in cfg.
func NewEngine(cfg config.DetectConfig) (*detect.Engine, error) {
	dc := detect.DefaultConfig()
	if cfg.ProfilePath != "" {
		var err error
		dc, err = detect.LoadProfile(cfg.ProfilePath, dc)
		if err != nil {
			return nil, err
		}
	}
	dc.StrictTaxID = cfg.StrictTaxID
	dc.TitleOrderNumberFallback = cfg.TitleOrderFallback
	return detect.New(dc)
}

// Processor turns one PDF plus a target tax id into a Result.
type Processor struct {
	pages     ocr.Extractor
	engine    *detect.Engine
	assembler *budget.Assembler
	fields    extract.FieldExtractor
	opts      Options
	now       func() time.Time
}

// NewProcessor wires a Processor. fields may be nil, in which case results
// carry the engine's decisions only.
func NewProcessor(pages ocr.Extractor, engine *detect.Engine, assembler *budget.Assembler, fields extract.FieldExtractor, opts Options) *Processor {
	return &Processor{
		pages:     pages,
		engine:    engine,
		assembler: assembler,
		fields:    fields,
		opts:      opts,
		now:       time.Now,
	}
}

// Process reads the document at path once and locates the letter belonging
// to taxID, its annex and its status page. Not finding a letter is recorded
// on the result, not returned as an error. Malformed documents and invalid
// tax ids return an error together with a result carrying it, so callers can
// persist the failure.
func (p *Processor) Process(ctx context.Context, path, taxID string) (*model.Result, error) {
	start := p.now()
	log := zap.L().With(zap.String("document", path), zap.String("tax_id", taxID))

	res := &model.Result{
		ID:       uuid.NewString(),
		Document: path,
		TaxID:    taxID,
	}
	finish := func(err error) (*model.Result, error) {
		res.DurationMs = p.now().Sub(start).Milliseconds()
		res.ProcessedAt = p.now().UTC()
		if err != nil {
			res.Error = err.Error()
		}
		return res, err
	}

	if err := p.checkTaxID(taxID); err != nil {
		return finish(err)
	}

	doc, err := ocr.OpenDocument(ctx, p.pages, path)
	if err != nil {
		return finish(err)
	}

	a := p.analyze(doc, taxID)
	a.apply(res)

	switch {
	case len(a.candidates) == 0:
		log.Warn("no letter detected", zap.Int("pages", doc.PageCount()))
		return finish(nil)
	case !a.matched:
		log.Warn("tax id not found in any letter", zap.Int("candidates", len(a.candidates)))
		return finish(nil)
	}

	log.Info("letter located",
		zap.Ints("letter_pages", res.SelectedLetterPages),
		zap.Ints("annex_pages", res.AnnexPages),
		zap.Int("status_page", res.StatusPage),
		zap.Bool("rejected", res.Rejected),
		zap.Int("tier", int(res.PayloadTier)),
		zap.Int("chars", res.PayloadChars),
	)

	if p.fields == nil {
		return finish(nil)
	}

	fields, err := p.fields.Extract(ctx, extract.Request{
		Document:         path,
		Payload:          a.payload.Text,
		HasAnnex:         !a.annex.Empty(),
		HasStatus:        a.hasStatus,
		TitleOrderNumber: a.titleOrder,
		Rejected:         res.Rejected,
		RejectionReason:  res.RejectionReason,
	})
	if err != nil {
		// engine decisions stay on the result
		log.Error("field extraction failed", zap.Error(err))
		res.Error = err.Error()
		return finish(nil)
	}
	res.Fields = fields
	return finish(nil)
}

func (p *Processor) checkTaxID(taxID string) error {
	d := detect.DigitsOnly(taxID)
	if d != taxID || (len(d) != 11 && len(d) != 14) {
		return eris.Wrapf(ErrInvalidTaxID, "pipeline: %q is not an 11 or 14 digit tax id", taxID)
	}
	if err := p.engine.CheckTaxID(taxID); err != nil {
		return eris.Wrap(errors.Join(ErrInvalidTaxID, err), "pipeline: check tax id")
	}
	return nil
}

// analysis is everything the engine decided about one document.
type analysis struct {
	candidates []model.LetterCandidate
	letter     model.LetterCandidate
	matched    bool
	annex      model.AnnexMatch
	status     model.StatusResult
	hasStatus  bool
	titleOrder string
	payload    model.AssembledPayload
}

func (p *Processor) analyze(doc *model.Document, taxID string) analysis {
	var a analysis
	a.candidates = p.engine.Segmenter.Segment(doc.Pages)
	if len(a.candidates) == 0 {
		return a
	}

	a.letter, _, a.matched = detect.Select(a.candidates, taxID)
	if !a.matched {
		return a
	}

	a.annex = p.engine.Annex.Locate(doc.Pages)

	anchor := a.letter.LastPage()
	if !a.annex.Empty() {
		anchor = a.annex.LastPage()
	}
	a.status, a.hasStatus = p.engine.Status.Locate(doc.Pages, anchor, p.opts.StatusForwardLimit)

	if !a.hasStatus || a.status.Basis == model.BasisNoRejectionSignal {
		if note, ok := p.engine.Status.FindRejectionNote(doc.Pages, a.letter.LastPage(), p.opts.RejectionFallbackPages); ok {
			if a.hasStatus {
				a.status.Verdict = note.Verdict
				a.status.Basis = note.Basis
				a.status.RejectionReason = note.RejectionReason
			} else {
				a.status, a.hasStatus = note, true
			}
		}
	}

	if p.engine.Config().TitleOrderNumberFallback {
		if n := p.engine.Status.OrderNumberFromTitle(a.letter.Text); p.engine.Status.ValidOrderNumber(n) {
			a.titleOrder = n
		}
	}

	label := budget.LabelProcessing
	if a.status.Rejected() {
		label = budget.LabelRejection
	}
	in := budget.Input{
		LetterPages: a.letter.Pages,
		AnnexText:   a.annex.Text,
		StatusLabel: label,
	}
	if a.hasStatus {
		in.StatusText = a.status.Text
	}
	a.payload = p.assembler.Assemble(in)
	return a
}

func (a analysis) apply(res *model.Result) {
	res.CandidateCount = len(a.candidates)
	switch {
	case len(a.candidates) == 0:
		res.NeedsReview = true
		res.ReviewReason = model.ReviewNoLetter
		return
	case !a.matched:
		res.NeedsReview = true
		res.ReviewReason = model.ReviewTaxIDNotFound
		return
	}

	res.IdentityMatched = true
	res.SelectedLetterPages = a.letter.PageNumbers()
	res.AnnexPages = a.annex.PageNumbers()

	if a.hasStatus {
		res.StatusPage = a.status.Page
		res.Rejected = a.status.Rejected()
		res.RejectionReason = a.status.RejectionReason
		res.VerdictBasis = a.status.Basis
		if a.status.OrderNumber != "" {
			res.OrderNumber = a.status.OrderNumber
			res.OrderNumberSource = model.OrderSourceStatusPage
		}
	}
	if res.OrderNumber == "" && a.titleOrder != "" {
		res.OrderNumber = a.titleOrder
		res.OrderNumberSource = model.OrderSourceLetterTitle
	}

	res.PayloadTier = a.payload.Tier
	res.PayloadChars = a.payload.Chars
}
