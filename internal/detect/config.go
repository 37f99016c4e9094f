// Package detect locates payment-requisition letters, their banking annex and
// their processing/status page inside multi-document court PDFs using
// weighted keyword and pattern signals.
package detect

import (
	"os"
	"regexp"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Config is the immutable keyword and threshold data injected into every
// detector. Build one with DefaultConfig and optionally overlay a YAML
// profile with LoadProfile.
type Config struct {
	// Letter identity family (weighted).
	TitlePhrases    []string `yaml:"title_phrases"`
	HeaderPhrases   []string `yaml:"header_phrases"`
	WardPhrases     []string `yaml:"ward_phrases"`
	ContextPhrases  []string `yaml:"context_phrases"`
	TitleWeight     int      `yaml:"title_weight"`
	HeaderWeight    int      `yaml:"header_weight"`
	WardWeight      int      `yaml:"ward_weight"`
	ContextWeight   int      `yaml:"context_weight"`
	IdentityMinimum int      `yaml:"identity_minimum"`

	// Case number and addressing families.
	CaseNumberPattern string   `yaml:"case_number_pattern"`
	Salutations       []string `yaml:"salutations"`

	// Segmentation.
	StartThreshold int      `yaml:"start_threshold"`
	EndMarkers     []string `yaml:"end_markers"`
	ShortPageRunes int      `yaml:"short_page_runes"`

	// Annex.
	AnnexMarkers    []string `yaml:"annex_markers"`
	AnnexFields     []string `yaml:"annex_fields"`
	AnnexMinFields  int      `yaml:"annex_min_fields"`
	CreditorPattern string   `yaml:"creditor_pattern"`

	// Status page.
	StatusMarker           string   `yaml:"status_marker"`
	StatusCorroborators    []string `yaml:"status_corroborators"`
	ProcessedWithInfo      []string `yaml:"processed_with_info"`
	RejectionKeywords      []string `yaml:"rejection_keywords"`
	OrderLabelPattern      string   `yaml:"order_label_pattern"`
	OrderLineLabels        []string `yaml:"order_line_labels"`
	OrderBarePattern       string   `yaml:"order_bare_pattern"`
	OrderLineWindow        int      `yaml:"order_line_window"`
	TitleOrderPattern      string   `yaml:"title_order_pattern"`
	RejectionReasonPattern string   `yaml:"rejection_reason_pattern"`
	ReasonMaxRunes         int      `yaml:"reason_max_runes"`
	OrderYearMin           int      `yaml:"order_year_min"`
	OrderYearMax           int      `yaml:"order_year_max"`

	// Variant switches.
	StrictTaxID              bool `yaml:"strict_tax_id"`
	TitleOrderNumberFallback bool `yaml:"title_order_number_fallback"`
}

// DefaultConfig returns the keyword lists and thresholds tuned on TJSP
// documents.
func DefaultConfig() Config {
	return Config{
		TitlePhrases: []string{
			"OFÍCIO REQUISITÓRIO Nº",
			"OFICIO REQUISITORIO Nº",
			"OFÍCIO REQUISITÓRIO N°",
			"OFICIO REQUISITORIO N°",
			"OFÍCIO REQUISITÓRIO NÚMERO",
			"OFICIO REQUISITORIO NUMERO",
			"OFÍCIO REQUISITÓRIO",
			"OFICIO REQUISITORIO",
		},
		HeaderPhrases: []string{
			"TRIBUNAL DE JUSTIÇA DO ESTADO DE SÃO PAULO",
			"TRIBUNAL DE JUSTICA DO ESTADO DE SAO PAULO",
		},
		WardPhrases: []string{
			"VARA DE FAZENDA PÚBLICA",
			"VARA DA FAZENDA PÚBLICA",
		},
		ContextPhrases: []string{
			"VALOR GLOBAL DA REQUISIÇÃO",
			"REQUERENTE:",
		},
		TitleWeight:     3,
		HeaderWeight:    3,
		WardWeight:      2,
		ContextWeight:   1,
		IdentityMinimum: 5,

		CaseNumberPattern: `\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}`,
		Salutations: []string{
			"AO EXCELENTÍSSIMO SENHOR",
			"AO EXMO. SR.",
			"AO EXMO. SENHOR",
			"AO JUÍZO DA",
			"À EXCELENTÍSSIMA SENHORA",
			"À EXMA. SRA.",
		},

		StartThreshold: 2,
		EndMarkers: []string{
			"ASSINADO ELETRONICAMENTE",
			"ASSINATURA ELETRÔNICA",
			"CERTIFICADO DIGITAL",
			"DOCUMENTO ASSINADO DIGITALMENTE",
			"Dr(a).",
			"Juiz(a) de Direito",
		},
		ShortPageRunes: 500,

		AnnexMarkers: []string{
			`ANEXO\s+II`,
			`ANEXO\s+2`,
			`ANEXO\s+DOIS`,
		},
		AnnexFields: []string{
			`NOME:`,
			`CPF/CNPJ/RNE:`,
			`BANCO:`,
			`AG[ÊE]NCIA:`,
			`CONTA:`,
			`VALOR\s+REQUISITADO:`,
			`TOTAL\s+DESTE\s+REQUERENTE:`,
		},
		AnnexMinFields:  3,
		CreditorPattern: `(?i)CREDOR\s+N[ºO]\.?:\s*\d+`,

		StatusMarker: "PROCESSAMENTO",
		StatusCorroborators: []string{
			"DEPRE",
			"DIRETORIA DE EXECUÇÕES",
			"Nº DE ORDEM",
			"NÚMERO DO PRECATÓRIO",
		},
		ProcessedWithInfo: []string{
			"PROCESSAMENTO COM INFORMAÇÃO",
			"PROCESSAMENTO COM INFORMACAO",
		},
		RejectionKeywords: []string{
			"NOTA DE REJEIÇÃO",
			"REJEIÇÃO",
			"irregularidade(s) passível(eis) de REJEIÇÃO",
		},
		OrderLabelPattern:      `(?i)(?:Nº de Ordem:|Número do Precatório:?)\s*(\d{1,6}/\d{4})`,
		OrderLineLabels:        []string{"Nº de Ordem", "Número do Precatório"},
		OrderBarePattern:       `\b(\d{1,6}/\d{4})\b`,
		OrderLineWindow:        3,
		TitleOrderPattern:      `(?i)OFÍCIO\s+REQUISITÓRIO\s+N[ºO°]\s*(\d{1,6}/\d{4})`,
		RejectionReasonPattern: `(?is)tendo em vista que[,:]?\s*(.+?)(?:\.|São Paulo)`,
		ReasonMaxRunes:         500,
		OrderYearMin:           2000,
		OrderYearMax:           2030,

		StrictTaxID:              false,
		TitleOrderNumberFallback: true,
	}
}

// LoadProfile overlays the YAML keyword profile at path onto base. Keys
// absent from the file keep their base values.
func LoadProfile(path string, base Config) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, eris.Wrapf(err, "detect: read profile %s", path)
	}

	cfg := base
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, eris.Wrapf(err, "detect: parse profile %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, eris.Wrapf(err, "detect: profile %s", path)
	}
	return cfg, nil
}

// Validate checks that required lists are present, thresholds are positive
// and every pattern compiles.
func (c Config) Validate() error {
	var errs []string

	lists := []struct {
		name string
		vals []string
	}{
		{"title_phrases", c.TitlePhrases},
		{"header_phrases", c.HeaderPhrases},
		{"salutations", c.Salutations},
		{"end_markers", c.EndMarkers},
		{"annex_markers", c.AnnexMarkers},
		{"annex_fields", c.AnnexFields},
		{"status_corroborators", c.StatusCorroborators},
		{"rejection_keywords", c.RejectionKeywords},
		{"order_line_labels", c.OrderLineLabels},
	}
	for _, l := range lists {
		if len(l.vals) == 0 {
			errs = append(errs, l.name+" must not be empty")
		}
	}

	ints := []struct {
		name string
		val  int
	}{
		{"identity_minimum", c.IdentityMinimum},
		{"start_threshold", c.StartThreshold},
		{"short_page_runes", c.ShortPageRunes},
		{"annex_min_fields", c.AnnexMinFields},
		{"order_line_window", c.OrderLineWindow},
		{"reason_max_runes", c.ReasonMaxRunes},
	}
	for _, n := range ints {
		if n.val <= 0 {
			errs = append(errs, n.name+" must be positive")
		}
	}
	if c.StatusMarker == "" {
		errs = append(errs, "status_marker must not be empty")
	}

	patterns := []string{
		c.CaseNumberPattern,
		c.CreditorPattern,
		c.OrderLabelPattern,
		c.OrderBarePattern,
		c.TitleOrderPattern,
		c.RejectionReasonPattern,
	}
	patterns = append(patterns, c.AnnexMarkers...)
	patterns = append(patterns, c.AnnexFields...)
	for _, p := range patterns {
		if p == "" {
			errs = append(errs, "empty pattern")
			continue
		}
		if _, err := regexp.Compile(p); err != nil {
			errs = append(errs, "bad pattern "+p+": "+err.Error())
		}
	}

	if len(errs) > 0 {
		return eris.New("detect: invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}
