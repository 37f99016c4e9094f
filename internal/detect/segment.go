package detect

import (
	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/model"
)

type segmentState int

const (
	stateIdle segmentState = iota
	stateInLetter
)

// Segmenter splits a document's pages into letter candidates using a
// start/continue/end state machine driven by the Scorer.
type Segmenter struct {
	scorer         *Scorer
	startThreshold int
	endMarkers     []string
	shortPageRunes int
}

// NewSegmenter builds a Segmenter that scores pages with scorer.
func NewSegmenter(cfg Config, scorer *Scorer) *Segmenter {
	return &Segmenter{
		scorer:         scorer,
		startThreshold: cfg.StartThreshold,
		endMarkers:     upperAll(cfg.EndMarkers),
		shortPageRunes: cfg.ShortPageRunes,
	}
}

// Segment scans pages in order and returns the non-overlapping letter
// candidates found. A page scoring at or above the start threshold always
// opens a new candidate, closing any open one. A short page carrying a
// signature marker closes the open candidate. An open candidate at the end
// of the document is emitted as-is.
func (s *Segmenter) Segment(pages []model.Page) []model.LetterCandidate {
	var (
		out     []model.LetterCandidate
		current []model.Page
		state   = stateIdle
	)

	emit := func() {
		if len(current) == 0 {
			return
		}
		out = append(out, model.LetterCandidate{
			FirstPage: current[0].Number,
			Pages:     current,
			Text:      model.JoinPages(current),
		})
		zap.L().Debug("letter candidate closed",
			zap.Int("first_page", current[0].Number),
			zap.Int("pages", len(current)),
		)
		current = nil
	}

	for _, p := range pages {
		score := s.scorer.Score(p.Text)

		switch {
		case score >= s.startThreshold:
			if state == stateInLetter {
				emit()
			}
			current = []model.Page{p}
			state = stateInLetter
			zap.L().Debug("letter candidate opened",
				zap.Int("page", p.Number),
				zap.Int("score", score),
			)

		case state == stateInLetter:
			current = append(current, p)
			if s.isLetterEnd(p.Text) {
				emit()
				state = stateIdle
			}
		}
	}

	if state == stateInLetter {
		emit()
	}
	return out
}

// isLetterEnd reports whether a page looks like the closing signature page:
// a signature or certification marker on a short page.
func (s *Segmenter) isLetterEnd(text string) bool {
	if runeLen(text) >= s.shortPageRunes {
		return false
	}
	return containsAny(upper(text), s.endMarkers)
}
