package detect

import (
	"regexp"

	"github.com/rotisserie/eris"

	"github.com/sells-group/oficio-cli/internal/model"
)

// AnnexLocator finds banking-details annex pages anywhere in a document.
type AnnexLocator struct {
	markers   []*regexp.Regexp
	fields    []*regexp.Regexp
	creditor  *regexp.Regexp
	minFields int
}

// AnnexStats is the per-document diagnostic breakdown of annex detection.
type AnnexStats struct {
	MarkerPages []int       `json:"marker_pages"`
	FieldHits   map[int]int `json:"field_hits"`
	Qualified   []int       `json:"qualified"`
}

// NewAnnexLocator compiles the annex patterns from cfg.
func NewAnnexLocator(cfg Config) (*AnnexLocator, error) {
	markers, err := compileAll(cfg.AnnexMarkers)
	if err != nil {
		return nil, eris.Wrap(err, "detect: compile annex markers")
	}
	fields, err := compileAll(cfg.AnnexFields)
	if err != nil {
		return nil, eris.Wrap(err, "detect: compile annex fields")
	}
	creditor, err := regexp.Compile(cfg.CreditorPattern)
	if err != nil {
		return nil, eris.Wrap(err, "detect: compile creditor pattern")
	}
	return &AnnexLocator{
		markers:   markers,
		fields:    fields,
		creditor:  creditor,
		minFields: cfg.AnnexMinFields,
	}, nil
}

// IsAnnexPage reports whether a page carries an annex marker corroborated by
// enough field labels or a creditor-number table row.
func (a *AnnexLocator) IsAnnexPage(text string) bool {
	up := upper(text)
	if !a.hasMarker(up) {
		return false
	}
	return a.fieldHits(up) >= a.minFields || a.creditor.MatchString(text)
}

// Locate scans every page independently of letter boundaries and merges all
// qualifying pages into one match. The result is empty when none qualify.
func (a *AnnexLocator) Locate(pages []model.Page) model.AnnexMatch {
	var hits []model.Page
	for _, p := range pages {
		if a.IsAnnexPage(p.Text) {
			hits = append(hits, p)
		}
	}
	if len(hits) == 0 {
		return model.AnnexMatch{}
	}
	return model.AnnexMatch{Pages: hits, Text: model.JoinPages(hits)}
}

// Stats reports, for every page with an annex marker, how many field labels
// matched, and which pages qualified.
func (a *AnnexLocator) Stats(pages []model.Page) AnnexStats {
	st := AnnexStats{FieldHits: map[int]int{}}
	for _, p := range pages {
		up := upper(p.Text)
		if !a.hasMarker(up) {
			continue
		}
		st.MarkerPages = append(st.MarkerPages, p.Number)
		n := a.fieldHits(up)
		st.FieldHits[p.Number] = n
		if n >= a.minFields || a.creditor.MatchString(p.Text) {
			st.Qualified = append(st.Qualified, p.Number)
		}
	}
	return st
}

func (a *AnnexLocator) hasMarker(up string) bool {
	for _, re := range a.markers {
		if re.MatchString(up) {
			return true
		}
	}
	return false
}

func (a *AnnexLocator) fieldHits(up string) int {
	n := 0
	for _, re := range a.fields {
		if re.MatchString(up) {
			n++
		}
	}
	return n
}
