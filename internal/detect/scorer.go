package detect

import (
	"regexp"

	"github.com/rotisserie/eris"
)

// MaxScore is the number of independent signal families a page can satisfy.
const MaxScore = 3

// Breakdown is the per-family evaluation of one page.
type Breakdown struct {
	IdentityWeight int  `json:"identity_weight"`
	Identity       bool `json:"identity"`
	CaseNumber     bool `json:"case_number"`
	Addressing     bool `json:"addressing"`
}

// Count returns how many families matched (0..3).
func (b Breakdown) Count() int {
	n := 0
	for _, ok := range []bool{b.Identity, b.CaseNumber, b.Addressing} {
		if ok {
			n++
		}
	}
	return n
}

// Scorer evaluates a page against the letter-identity, case-number and
// addressing signal families. It holds no mutable state.
type Scorer struct {
	titles      []string
	headers     []string
	wards       []string
	context     []string
	salutations []string

	titleWeight   int
	headerWeight  int
	wardWeight    int
	contextWeight int
	minimum       int

	caseNumber *regexp.Regexp
}

// NewScorer builds a Scorer from cfg.
func NewScorer(cfg Config) (*Scorer, error) {
	re, err := regexp.Compile(cfg.CaseNumberPattern)
	if err != nil {
		return nil, eris.Wrap(err, "detect: compile case number pattern")
	}
	return &Scorer{
		titles:        upperAll(cfg.TitlePhrases),
		headers:       upperAll(cfg.HeaderPhrases),
		wards:         upperAll(cfg.WardPhrases),
		context:       upperAll(cfg.ContextPhrases),
		salutations:   upperAll(cfg.Salutations),
		titleWeight:   cfg.TitleWeight,
		headerWeight:  cfg.HeaderWeight,
		wardWeight:    cfg.WardWeight,
		contextWeight: cfg.ContextWeight,
		minimum:       cfg.IdentityMinimum,
		caseNumber:    re,
	}, nil
}

// Score returns the number of signal families the page text satisfies.
func (s *Scorer) Score(text string) int {
	return s.Explain(text).Count()
}

// Explain evaluates every family and reports each outcome.
func (s *Scorer) Explain(text string) Breakdown {
	up := upper(text)

	// Title phrases recur in cross-references, so they only count together
	// with the header, the ward or enough context.
	weight := 0
	if containsAny(up, s.titles) {
		weight += s.titleWeight
	}
	if containsAny(up, s.headers) {
		weight += s.headerWeight
	}
	if containsAny(up, s.wards) {
		weight += s.wardWeight
	}
	if containsAny(up, s.context) {
		weight += s.contextWeight
	}

	return Breakdown{
		IdentityWeight: weight,
		Identity:       weight >= s.minimum,
		CaseNumber:     s.caseNumber.MatchString(text),
		Addressing:     containsAny(up, s.salutations),
	}
}
