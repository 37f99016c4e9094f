package pipeline

import (
	"context"

	"github.com/sells-group/oficio-cli/internal/detect"
	"github.com/sells-group/oficio-cli/internal/model"
	"github.com/sells-group/oficio-cli/internal/ocr"
)

// PageScore is one page's letter score with the families that produced it.
type PageScore struct {
	Page      int              `json:"page"`
	Score     int              `json:"score"`
	Breakdown detect.Breakdown `json:"breakdown"`
}

// Explanation is the diagnostic view of how a document was segmented.
type Explanation struct {
	Document   string              `json:"document"`
	Pages      []PageScore         `json:"pages"`
	Candidates [][]int             `json:"candidates"`
	Annex      detect.AnnexStats   `json:"annex_stats"`
	// FirstStatus is the first status page in the whole document. It is not
	// tied to any candidate; Process anchors its scan after the selected
	// letter and annex.
	FirstStatus *model.StatusResult `json:"first_status_page,omitempty"`
}

// Explain scores every page and reports candidates, annex statistics and the
// first status page without selecting a letter. Only pages scoring above zero
// are listed.
func (p *Processor) Explain(ctx context.Context, path string) (*Explanation, error) {
	doc, err := ocr.OpenDocument(ctx, p.pages, path)
	if err != nil {
		return nil, err
	}

	ex := &Explanation{
		Document: path,
		Annex:    p.engine.Annex.Stats(doc.Pages),
	}
	for _, pg := range doc.Pages {
		b := p.engine.Scorer.Explain(pg.Text)
		if b.Count() == 0 {
			continue
		}
		ex.Pages = append(ex.Pages, PageScore{Page: pg.Number, Score: b.Count(), Breakdown: b})
	}
	for _, c := range p.engine.Segmenter.Segment(doc.Pages) {
		ex.Candidates = append(ex.Candidates, c.PageNumbers())
	}
	if st, ok := p.engine.Status.Locate(doc.Pages, 1, doc.PageCount()); ok {
		ex.FirstStatus = &st
	}
	return ex, nil
}
