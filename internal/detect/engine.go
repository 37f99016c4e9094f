package detect

import "github.com/rotisserie/eris"

// Engine bundles the detectors built from one Config.
type Engine struct {
	Scorer    *Scorer
	Segmenter *Segmenter
	Annex     *AnnexLocator
	Status    *StatusLocator

	cfg Config
}

// New validates cfg and builds every detector from it.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, err
	}
	annex, err := NewAnnexLocator(cfg)
	if err != nil {
		return nil, err
	}
	status, err := NewStatusLocator(cfg)
	if err != nil {
		return nil, err
	}

	return &Engine{
		Scorer:    scorer,
		Segmenter: NewSegmenter(cfg, scorer),
		Annex:     annex,
		Status:    status,
		cfg:       cfg,
	}, nil
}

// Config returns the configuration the engine was built from.
func (e *Engine) Config() Config {
	return e.cfg
}

// CheckTaxID rejects malformed targets when strict validation is enabled.
func (e *Engine) CheckTaxID(taxID string) error {
	if !e.cfg.StrictTaxID {
		return nil
	}
	if !ValidTaxID(taxID) {
		return eris.Errorf("detect: invalid tax id %q", taxID)
	}
	return nil
}
