package model

import "time"

// Review reasons recorded on results that need a human look.
const (
	ReviewNoLetter      = "no_letter_detected"
	ReviewTaxIDNotFound = "tax_id_not_found"
)

// Order number sources.
const (
	OrderSourceStatusPage  = "status_page"
	OrderSourceLetterTitle = "letter_title"
)

// Result is the per-document record consumed by validation, storage and the
// results API. Its shape does not depend on the field-extraction service.
type Result struct {
	ID       string `json:"id,omitempty"`
	Document string `json:"document"`
	TaxID    string `json:"tax_id"`

	SelectedLetterPages []int        `json:"selected_letter_pages"`
	IdentityMatched     bool         `json:"identity_matched"`
	AnnexPages          []int        `json:"annex_pages"`
	StatusPage          int          `json:"status_page,omitempty"`
	OrderNumber         string       `json:"order_number,omitempty"`
	OrderNumberSource   string       `json:"order_number_source,omitempty"`
	Rejected            bool         `json:"rejected"`
	RejectionReason     string       `json:"rejection_reason,omitempty"`
	VerdictBasis        VerdictBasis `json:"verdict_basis,omitempty"`
	PayloadTier         PayloadTier  `json:"payload_tier"`
	PayloadChars        int          `json:"payload_chars"`

	CandidateCount int    `json:"candidate_count"`
	NeedsReview    bool   `json:"needs_review"`
	ReviewReason   string `json:"review_reason,omitempty"`

	Fields *Fields `json:"fields,omitempty"`
	Error  string  `json:"error,omitempty"`

	DurationMs  int64     `json:"duration_ms"`
	ProcessedAt time.Time `json:"processed_at"`
}

// Succeeded reports whether the document was processed without error and a
// letter matching the tax id was found.
func (r *Result) Succeeded() bool {
	return r.Error == "" && r.IdentityMatched
}
