package detect

import (
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/oficio-cli/internal/model"
)

const (
	letterPage = "TRIBUNAL DE JUSTIÇA DO ESTADO DE SÃO PAULO\nOFÍCIO REQUISITÓRIO Nº 123\nAO JUÍZO DA 1ª VARA\nProcesso: 0035938-67.2018.8.26.0053"
	fillerPage = "Certidão de publicação. Nada mais havendo, encerro o termo."
	signPage   = "São Paulo, 10 de maio de 2023.\nDocumento assinado digitalmente por Dr(a). Maria Souza"
)

func testEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	require.NoError(t, err)
	return e
}

func pagesOf(texts ...string) []model.Page {
	out := make([]model.Page, len(texts))
	for i, txt := range texts {
		out[i] = model.Page{Number: i + 1, Text: txt}
	}
	return out
}

func TestScorer_Score(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name string
		text string
		want int
	}{
		{"full letter page", letterPage, 3},
		{"case number only", "Processo: 0176505-63.2021.8.26.0500", 1},
		{"empty", "", 0},
		{"title alone is not identity", "vide OFÍCIO REQUISITÓRIO anterior", 0},
		{"title plus ward", "ofício requisitório\nVARA DA FAZENDA PÚBLICA", 1},
		{"title plus context only", "OFÍCIO REQUISITÓRIO\nREQUERENTE: FULANO", 0},
		{"salutation lower case", "ao excelentíssimo senhor presidente", 1},
		{"unaccented header and title", "TRIBUNAL DE JUSTICA DO ESTADO DE SAO PAULO\nOFICIO REQUISITORIO", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.Scorer.Score(tt.text))
		})
	}
}

func TestScorer_ScoreIdempotent(t *testing.T) {
	e := testEngine(t)
	for _, txt := range []string{letterPage, fillerPage, signPage, ""} {
		assert.Equal(t, e.Scorer.Score(txt), e.Scorer.Score(txt))
	}
}

func TestScorer_Explain(t *testing.T) {
	e := testEngine(t)
	b := e.Scorer.Explain(letterPage)
	assert.Equal(t, 6, b.IdentityWeight)
	assert.True(t, b.Identity)
	assert.True(t, b.CaseNumber)
	assert.True(t, b.Addressing)
	assert.Equal(t, MaxScore, b.Count())
}

func TestSegmenter_Segment(t *testing.T) {
	e := testEngine(t)
	pages := pagesOf(
		fillerPage, // 1 discarded
		letterPage, // 2 start
		fillerPage, // 3
		signPage,   // 4 end
		fillerPage, // 5 discarded
		letterPage, // 6 start
		fillerPage, // 7
		letterPage, // 8 preempts
		fillerPage, // 9 open at end of document
	)

	got := e.Segmenter.Segment(pages)
	require.Len(t, got, 3)
	assert.Equal(t, []int{2, 3, 4}, got[0].PageNumbers())
	assert.Equal(t, []int{6, 7}, got[1].PageNumbers())
	assert.Equal(t, []int{8, 9}, got[2].PageNumbers())
	assert.Equal(t, 2, got[0].FirstPage)
	assert.True(t, strings.HasPrefix(got[0].Text, letterPage))
	assert.Contains(t, got[0].Text, "--- PÁGINA 3 ---")
}

func TestSegmenter_LongSignaturePageDoesNotEnd(t *testing.T) {
	e := testEngine(t)
	longSign := signPage + strings.Repeat(" texto", 100)
	got := e.Segmenter.Segment(pagesOf(letterPage, longSign, fillerPage))
	require.Len(t, got, 1)
	assert.Equal(t, []int{1, 2, 3}, got[0].PageNumbers())
}

func TestSegmenter_NoStart(t *testing.T) {
	e := testEngine(t)
	assert.Empty(t, e.Segmenter.Segment(pagesOf(fillerPage, signPage, "Processo: 0176505-63.2021.8.26.0500")))
	assert.Empty(t, e.Segmenter.Segment(nil))
}

func TestSegmenter_CandidatesDisjointAndContiguous(t *testing.T) {
	e := testEngine(t)
	rng := rand.New(rand.NewSource(42))
	kinds := []string{letterPage, fillerPage, signPage, "Processo: 0176505-63.2021.8.26.0500"}

	for round := 0; round < 200; round++ {
		n := rng.Intn(40)
		texts := make([]string, n)
		for i := range texts {
			texts[i] = kinds[rng.Intn(len(kinds))]
		}

		seen := map[int]bool{}
		for _, c := range e.Segmenter.Segment(pagesOf(texts...)) {
			nums := c.PageNumbers()
			require.NotEmpty(t, nums)
			assert.Equal(t, c.FirstPage, nums[0])
			for i, p := range nums {
				assert.False(t, seen[p], "page %d in two candidates", p)
				seen[p] = true
				if i > 0 {
					assert.Equal(t, nums[i-1]+1, p)
				}
			}
		}
	}
}

func TestSelect(t *testing.T) {
	first := model.LetterCandidate{FirstPage: 1, Text: "REQUERENTE: JOÃO\nCPF: 111.222.333-44"}
	second := model.LetterCandidate{FirstPage: 5, Text: "REQUERENTE: MARIA\nCPF: 529.982.247-25"}

	got, idx, ok := Select([]model.LetterCandidate{first, second}, "529.982.247-25")
	require.True(t, ok)
	assert.Equal(t, 1, idx)
	assert.Equal(t, 5, got.FirstPage)

	_, _, ok = Select([]model.LetterCandidate{first}, "529.982.247-25")
	assert.False(t, ok)

	_, _, ok = Select(nil, "529.982.247-25")
	assert.False(t, ok)

	_, _, ok = Select([]model.LetterCandidate{first}, "")
	assert.False(t, ok)
}

func TestSelect_DigitsFallback(t *testing.T) {
	c := model.LetterCandidate{FirstPage: 3, Text: "CPF 52998224725"}
	got, idx, ok := Select([]model.LetterCandidate{c}, "529.982.247-25")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 3, got.FirstPage)
}

func TestSelect_FirstMatchWins(t *testing.T) {
	a := model.LetterCandidate{FirstPage: 1, Text: "529.982.247-25"}
	b := model.LetterCandidate{FirstPage: 9, Text: "529.982.247-25"}
	got, idx, ok := Select([]model.LetterCandidate{a, b}, "52998224725")
	require.True(t, ok)
	assert.Equal(t, 0, idx)
	assert.Equal(t, 1, got.FirstPage)
}

func TestTaxIDHelpers(t *testing.T) {
	assert.Equal(t, "52998224725", DigitsOnly("529.982.247-25"))
	assert.Equal(t, "529.982.247-25", FormatTaxID("52998224725"))
	assert.Equal(t, "11.222.333/0001-81", FormatTaxID("11222333000181"))
	assert.Equal(t, "12-3", FormatTaxID("12-3"))

	assert.True(t, ValidTaxID("529.982.247-25"))
	assert.False(t, ValidTaxID("529.982.247-26"))
	assert.False(t, ValidTaxID("111.111.111-11"))
	assert.False(t, ValidTaxID("1234"))
}

func TestEngine_CheckTaxID(t *testing.T) {
	cfg := DefaultConfig()
	e, err := New(cfg)
	require.NoError(t, err)
	assert.NoError(t, e.CheckTaxID("000.000.000-00"))

	cfg.StrictTaxID = true
	strict, err := New(cfg)
	require.NoError(t, err)
	assert.Error(t, strict.CheckTaxID("000.000.000-00"))
	assert.NoError(t, strict.CheckTaxID("529.982.247-25"))
}

func TestAnnexLocator(t *testing.T) {
	e := testEngine(t)
	annexFields := "ANEXO II\nNome: MARIA\nCPF/CNPJ/RNE: 529.982.247-25\nBanco: 001\nAgência: 1234"
	annexCreditor := "Anexo 2\nCredor nº: 15  MARIA  R$ 10.000,00"
	narrative := "conforme o ANEXO II juntado aos autos"

	pages := pagesOf(letterPage, narrative, annexFields, fillerPage, annexCreditor)
	assert.False(t, e.Annex.IsAnnexPage(narrative))
	assert.True(t, e.Annex.IsAnnexPage(annexFields))
	assert.True(t, e.Annex.IsAnnexPage(annexCreditor))

	m := e.Annex.Locate(pages)
	assert.Equal(t, []int{3, 5}, m.PageNumbers())
	assert.Equal(t, 5, m.LastPage())
	assert.Contains(t, m.Text, "--- PÁGINA 5 ---")

	st := e.Annex.Stats(pages)
	assert.Equal(t, []int{2, 3, 5}, st.MarkerPages)
	assert.Equal(t, []int{3, 5}, st.Qualified)
	assert.Equal(t, 4, st.FieldHits[3])
	assert.Equal(t, 0, st.FieldHits[2])

	assert.True(t, e.Annex.Locate(pagesOf(letterPage, narrative)).Empty())
}

func TestStatusLocator_Classify(t *testing.T) {
	e := testEngine(t)

	tests := []struct {
		name   string
		text   string
		want   model.Verdict
		basis  model.VerdictBasis
		order  string
		reason string
	}{
		{
			name:  "order number",
			text:  "PROCESSAMENTO\nDEPRE - Diretoria de Execuções de Precatórios\nNº de Ordem: 822/2026",
			want:  model.VerdictAccepted,
			basis: model.BasisOrderNumber,
			order: "822/2026",
		},
		{
			name:  "processed with information beats rejection",
			text:  "PROCESSAMENTO COM INFORMAÇÃO\nDEPRE\nNOTA DE REJEIÇÃO tendo em vista que falta documento.",
			want:  model.VerdictAccepted,
			basis: model.BasisProcessedWithInformation,
		},
		{
			name:   "rejected with reason",
			text:   "PROCESSAMENTO\nDEPRE\nNOTA DE REJEIÇÃO\nO ofício foi devolvido tendo em vista que não foi juntada\na procuração. São Paulo, 1 de março",
			want:   model.VerdictRejected,
			basis:  model.BasisRejectionKeyword,
			reason: "não foi juntada a procuração",
		},
		{
			name:   "reason cut at city name",
			text:   "REJEIÇÃO tendo em vista que: ausência de cálculo São Paulo, 2 de abril",
			want:   model.VerdictRejected,
			basis:  model.BasisRejectionKeyword,
			reason: "ausência de cálculo",
		},
		{
			name:  "no signal",
			text:  "PROCESSAMENTO\nDIRETORIA DE EXECUÇÕES\nem andamento",
			want:  model.VerdictAccepted,
			basis: model.BasisNoRejectionSignal,
		},
		{
			name:  "order number beats rejection keyword",
			text:  "PROCESSAMENTO\nNúmero do Precatório: 15/2019\nhistórico: REJEIÇÃO anterior sanada",
			want:  model.VerdictAccepted,
			basis: model.BasisOrderNumber,
			order: "15/2019",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := e.Status.Classify(tt.text)
			assert.Equal(t, tt.want, got.Verdict)
			assert.Equal(t, tt.basis, got.Basis)
			assert.Equal(t, tt.order, got.OrderNumber)
			assert.Equal(t, tt.reason, got.RejectionReason)
		})
	}
}

func TestStatusLocator_ReasonTruncated(t *testing.T) {
	e := testEngine(t)
	got := e.Status.Classify("NOTA DE REJEIÇÃO tendo em vista que " + strings.Repeat("á", 600) + ".")
	require.True(t, got.Rejected())
	assert.Equal(t, 500, runeLen(got.RejectionReason))
	assert.True(t, strings.HasSuffix(got.RejectionReason, "..."))
}

func TestStatusLocator_OrderNumberLineScan(t *testing.T) {
	e := testEngine(t)
	text := "PROCESSAMENTO\nNº de Ordem\n(ver abaixo)\n  55/2020  \noutros dados 99/2021"
	assert.Equal(t, "55/2020", e.Status.OrderNumber(text))

	tooFar := "Nº de Ordem\na\nb\n55/2020"
	assert.Equal(t, "", e.Status.OrderNumber(tooFar))
}

func TestStatusLocator_OrderNumberFromTitle(t *testing.T) {
	e := testEngine(t)
	assert.Equal(t, "1234/2015", e.Status.OrderNumberFromTitle("OFÍCIO REQUISITÓRIO Nº 1234/2015\nREQUERENTE: X"))
	assert.Equal(t, "", e.Status.OrderNumberFromTitle(letterPage))
}

func TestStatusLocator_ValidOrderNumber(t *testing.T) {
	e := testEngine(t)
	for n, want := range map[string]bool{
		"822/2026":     true,
		"1/2000":       true,
		"123456/2030":  true,
		"822/1999":     false,
		"822/2031":     false,
		"1234567/2020": false,
		"abc":          false,
	} {
		assert.Equal(t, want, e.Status.ValidOrderNumber(n), n)
	}
}

func TestStatusLocator_Locate(t *testing.T) {
	e := testEngine(t)
	texts := make([]string, 10)
	for i := range texts {
		texts[i] = fillerPage
	}
	texts[7] = "PROCESSAMENTO\nDEPRE\nNº de Ordem: 822/2026"
	pages := pagesOf(texts...)

	_, ok := e.Status.Locate(pages, 3, 5)
	assert.False(t, ok)

	got, ok := e.Status.Locate(pages, 3, 6)
	require.True(t, ok)
	assert.Equal(t, 8, got.Page)
	assert.Equal(t, "822/2026", got.OrderNumber)
	assert.Equal(t, model.VerdictAccepted, got.Verdict)

	_, ok = e.Status.Locate(pages, 9, 100)
	assert.False(t, ok)
	_, ok = e.Status.Locate(pages, 1, 0)
	assert.False(t, ok)

	// bare marker without corroboration is narrative text
	assert.False(t, e.Status.IsStatusPage("o PROCESSAMENTO do feito segue"))
}

func TestStatusLocator_FindRejectionNote(t *testing.T) {
	e := testEngine(t)
	note := "NOTA DE REJEIÇÃO\nDevolvido tendo em vista que faltou a assinatura."
	pages := pagesOf(letterPage, signPage, note, fillerPage)

	got, ok := e.Status.FindRejectionNote(pages, 2, 1)
	require.True(t, ok)
	assert.Equal(t, 3, got.Page)
	assert.Equal(t, "faltou a assinatura", got.RejectionReason)

	_, ok = e.Status.FindRejectionNote(pages, 1, 1)
	assert.False(t, ok)
	_, ok = e.Status.FindRejectionNote(pages, 3, 1)
	assert.False(t, ok)
}

func TestLoadProfile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("salutations:\n  - \"EXCELENTÍSSIMO JUIZ\"\nshort_page_runes: 300\n"), 0o644))

	cfg, err := LoadProfile(path, DefaultConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{"EXCELENTÍSSIMO JUIZ"}, cfg.Salutations)
	assert.Equal(t, 300, cfg.ShortPageRunes)
	assert.Equal(t, DefaultConfig().TitlePhrases, cfg.TitlePhrases)

	e, err := New(cfg)
	require.NoError(t, err)
	assert.True(t, e.Scorer.Explain("excelentíssimo juiz").Addressing)
}

func TestLoadProfile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadProfile(filepath.Join(dir, "missing.yaml"), DefaultConfig())
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("case_number_pattern: \"([\"\n"), 0o644))
	_, err = LoadProfile(bad, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad pattern")

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("end_markers: []\nstart_threshold: 0\n"), 0o644))
	_, err = LoadProfile(empty, DefaultConfig())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_markers must not be empty")
	assert.Contains(t, err.Error(), "start_threshold must be positive")
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "abc", truncateRunes("abc", 5))
	assert.Equal(t, "ab...", truncateRunes("abcdefg", 5))
	assert.Equal(t, "ab", truncateRunes("abcdefg", 2))
}
