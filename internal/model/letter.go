package model

// LetterCandidate is a contiguous run of pages believed to form one
// payment-requisition letter.
type LetterCandidate struct {
	FirstPage int    `json:"first_page"`
	Pages     []Page `json:"-"`
	Text      string `json:"-"`
}

// PageNumbers returns the candidate's page numbers.
func (c LetterCandidate) PageNumbers() []int {
	return PageNumbers(c.Pages)
}

// LastPage returns the number of the candidate's final page, or 0 if empty.
func (c LetterCandidate) LastPage() int {
	if len(c.Pages) == 0 {
		return 0
	}
	return c.Pages[len(c.Pages)-1].Number
}

// AnnexMatch is the set of banking annex ("ANEXO II") pages found in a
// document. Pages need not be contiguous.
type AnnexMatch struct {
	Pages []Page `json:"-"`
	Text  string `json:"-"`
}

// Empty reports whether no annex page was found.
func (a AnnexMatch) Empty() bool {
	return len(a.Pages) == 0
}

// PageNumbers returns the annex page numbers.
func (a AnnexMatch) PageNumbers() []int {
	return PageNumbers(a.Pages)
}

// LastPage returns the number of the last annex page, or 0 if empty.
func (a AnnexMatch) LastPage() int {
	if len(a.Pages) == 0 {
		return 0
	}
	return a.Pages[len(a.Pages)-1].Number
}

// Verdict is the acceptance decision read from a status page.
type Verdict string

const (
	VerdictAccepted Verdict = "accepted"
	VerdictRejected Verdict = "rejected"
)

// VerdictBasis names the rule that produced a Verdict.
type VerdictBasis string

const (
	BasisProcessedWithInformation VerdictBasis = "processed_with_information"
	BasisOrderNumber              VerdictBasis = "order_number"
	BasisRejectionKeyword         VerdictBasis = "rejection_keyword"
	BasisNoRejectionSignal        VerdictBasis = "no_rejection_signal"
)

// StatusResult is the processing/status page found after a letter.
type StatusResult struct {
	Page            int          `json:"page"`
	Text            string       `json:"-"`
	Verdict         Verdict      `json:"verdict"`
	Basis           VerdictBasis `json:"basis"`
	OrderNumber     string       `json:"order_number,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
}

// Rejected reports whether the status page rejects the letter.
func (s StatusResult) Rejected() bool {
	return s.Verdict == VerdictRejected
}

// PayloadTier records which truncation tier produced a payload.
type PayloadTier int

const (
	TierNone PayloadTier = 0
	TierOne  PayloadTier = 1
	TierTwo  PayloadTier = 2
)

// AssembledPayload is the bounded text handed to field extraction.
type AssembledPayload struct {
	Text        string      `json:"-"`
	Chars       int         `json:"chars"`
	Tier        PayloadTier `json:"tier"`
	LetterPages []int       `json:"letter_pages"`
	OverBudget  bool        `json:"over_budget"`
}
