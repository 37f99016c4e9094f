package detect

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/model"
)

type strategyKind int

const (
	strategyLabelRegex strategyKind = iota
	strategyLineScan
)

// orderStrategy is one entry of the ordered order-number extraction list.
type orderStrategy struct {
	kind   strategyKind
	re     *regexp.Regexp
	labels []string
	window int
}

// StatusLocator finds the processing/status page for a letter and classifies
// it as accepted or rejected.
type StatusLocator struct {
	marker        string
	corroborators []string
	processed     []string
	rejection     []string

	strategies []orderStrategy
	titleOrder *regexp.Regexp
	exactOrder *regexp.Regexp
	reason     *regexp.Regexp

	reasonMax int
	yearMin   int
	yearMax   int
}

// NewStatusLocator compiles the status patterns from cfg.
func NewStatusLocator(cfg Config) (*StatusLocator, error) {
	label, err := regexp.Compile(cfg.OrderLabelPattern)
	if err != nil {
		return nil, eris.Wrap(err, "detect: compile order label pattern")
	}
	bare, err := regexp.Compile(cfg.OrderBarePattern)
	if err != nil {
		return nil, eris.Wrap(err, "detect: compile order bare pattern")
	}
	title, err := regexp.Compile(cfg.TitleOrderPattern)
	if err != nil {
		return nil, eris.Wrap(err, "detect: compile title order pattern")
	}
	reason, err := regexp.Compile(cfg.RejectionReasonPattern)
	if err != nil {
		return nil, eris.Wrap(err, "detect: compile rejection reason pattern")
	}

	return &StatusLocator{
		marker:        upper(cfg.StatusMarker),
		corroborators: upperAll(cfg.StatusCorroborators),
		processed:     upperAll(cfg.ProcessedWithInfo),
		rejection:     upperAll(cfg.RejectionKeywords),
		strategies: []orderStrategy{
			{kind: strategyLabelRegex, re: label},
			{kind: strategyLineScan, re: bare, labels: upperAll(cfg.OrderLineLabels), window: cfg.OrderLineWindow},
		},
		titleOrder: title,
		exactOrder: regexp.MustCompile(`^\d{1,6}/(\d{4})$`),
		reason:     reason,
		reasonMax:  cfg.ReasonMaxRunes,
		yearMin:    cfg.OrderYearMin,
		yearMax:    cfg.OrderYearMax,
	}, nil
}

// IsStatusPage reports whether text carries the processing marker together
// with an institutional or order-number phrase.
func (s *StatusLocator) IsStatusPage(text string) bool {
	up := upper(text)
	return strings.Contains(up, s.marker) && containsAny(up, s.corroborators)
}

// OrderNumber tries each extraction strategy in order and returns the first
// hit, or "" when none succeeds.
func (s *StatusLocator) OrderNumber(text string) string {
	for _, st := range s.strategies {
		var got string
		switch st.kind {
		case strategyLabelRegex:
			if m := st.re.FindStringSubmatch(text); len(m) > 1 {
				got = m[1]
			}
		case strategyLineScan:
			got = lineScan(text, st)
		}
		if got != "" {
			return got
		}
	}
	return ""
}

func lineScan(text string, st orderStrategy) string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if !containsAny(upper(line), st.labels) {
			continue
		}
		end := min(i+st.window, len(lines))
		for _, l := range lines[i:end] {
			if m := st.re.FindStringSubmatch(l); len(m) > 1 {
				return m[1]
			}
		}
	}
	return ""
}

// OrderNumberFromTitle extracts the order number from the letter's own title
// line. Legacy documents carry it there and never produced a status page.
func (s *StatusLocator) OrderNumberFromTitle(letterText string) string {
	if m := s.titleOrder.FindStringSubmatch(letterText); len(m) > 1 {
		return m[1]
	}
	return ""
}

// ValidOrderNumber reports whether n is digits/year with a plausible year.
func (s *StatusLocator) ValidOrderNumber(n string) bool {
	m := s.exactOrder.FindStringSubmatch(n)
	if m == nil {
		return false
	}
	year, err := strconv.Atoi(m[1])
	if err != nil {
		return false
	}
	return year >= s.yearMin && year <= s.yearMax
}

// Classify decides the verdict for a status page. Acceptance signals always
// win over rejection keywords.
func (s *StatusLocator) Classify(text string) model.StatusResult {
	up := upper(text)
	res := model.StatusResult{Text: text}

	if containsAny(up, s.processed) {
		res.Verdict = model.VerdictAccepted
		res.Basis = model.BasisProcessedWithInformation
		res.OrderNumber = s.OrderNumber(text)
		return res
	}
	if n := s.OrderNumber(text); n != "" {
		res.Verdict = model.VerdictAccepted
		res.Basis = model.BasisOrderNumber
		res.OrderNumber = n
		return res
	}
	if containsAny(up, s.rejection) {
		res.Verdict = model.VerdictRejected
		res.Basis = model.BasisRejectionKeyword
		res.RejectionReason = s.rejectionReason(text)
		return res
	}
	res.Verdict = model.VerdictAccepted
	res.Basis = model.BasisNoRejectionSignal
	return res
}

func (s *StatusLocator) rejectionReason(text string) string {
	m := s.reason.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	reason := strings.Join(strings.Fields(m[1]), " ")
	return truncateRunes(reason, s.reasonMax)
}

// Locate scans at most limit pages starting at page number anchor and returns
// the first status page, classified. ok is false when none is found.
func (s *StatusLocator) Locate(pages []model.Page, anchor, limit int) (model.StatusResult, bool) {
	if limit <= 0 {
		return model.StatusResult{}, false
	}
	last := anchor + limit - 1
	for _, p := range pages {
		if p.Number < anchor || p.Number > last {
			continue
		}
		if !s.IsStatusPage(p.Text) {
			continue
		}
		res := s.Classify(p.Text)
		res.Page = p.Number
		zap.L().Debug("status page found",
			zap.Int("page", p.Number),
			zap.String("verdict", string(res.Verdict)),
			zap.String("basis", string(res.Basis)),
		)
		return res, true
	}
	return model.StatusResult{}, false
}

// FindRejectionNote looks at the n pages after afterPage for a standalone
// rejection note. It is used when no status page exists.
func (s *StatusLocator) FindRejectionNote(pages []model.Page, afterPage, n int) (model.StatusResult, bool) {
	for _, p := range pages {
		if p.Number <= afterPage || p.Number > afterPage+n {
			continue
		}
		res := s.Classify(p.Text)
		if !res.Rejected() {
			continue
		}
		res.Page = p.Number
		return res, true
	}
	return model.StatusResult{}, false
}
