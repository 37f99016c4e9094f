package budget

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/oficio-cli/internal/config"
	"github.com/sells-group/oficio-cli/internal/model"
)

func testBudget() config.BudgetConfig {
	return config.BudgetConfig{
		MaxChars:           200_000,
		Tier1PageThreshold: 100,
		Tier1Head:          50,
		Tier1Tail:          50,
		Tier2Head:          30,
		Tier2Tail:          30,
	}
}

func makePages(n, size int) []model.Page {
	pages := make([]model.Page, n)
	for i := range pages {
		pages[i] = model.Page{Number: i + 1, Text: strings.Repeat("x", size)}
	}
	return pages
}

func seq(from, to int) []int {
	var out []int
	for i := from; i <= to; i++ {
		out = append(out, i)
	}
	return out
}

func TestAssemble_SmallLetterUntouched(t *testing.T) {
	a := NewAssembler(testBudget())
	pages := []model.Page{{Number: 4, Text: "oficio"}, {Number: 5, Text: "fim"}}

	got := a.Assemble(Input{LetterPages: pages, AnnexText: "banco", StatusText: "ordem"})

	want := "oficio\n\n--- PÁGINA 5 ---\n\nfim" +
		"\n\n" + strings.Repeat("=", 60) + "\n=== ANEXO II ===\n" + strings.Repeat("=", 60) + "\n\nbanco" +
		"\n\n" + strings.Repeat("=", 60) + "\n=== PROCESSAMENTO ===\n" + strings.Repeat("=", 60) + "\n\nordem"
	assert.Equal(t, want, got.Text)
	assert.Equal(t, model.TierNone, got.Tier)
	assert.Equal(t, []int{4, 5}, got.LetterPages)
	assert.Equal(t, len([]rune(want)), got.Chars)
	assert.False(t, got.OverBudget)
}

func TestAssemble_RejectionLabel(t *testing.T) {
	a := NewAssembler(testBudget())
	got := a.Assemble(Input{LetterPages: makePages(1, 10), StatusText: "nota", StatusLabel: LabelRejection})
	assert.Contains(t, got.Text, "=== NOTA DE REJEIÇÃO ===")
	assert.NotContains(t, got.Text, "=== PROCESSAMENTO ===")
	assert.NotContains(t, got.Text, "=== ANEXO II ===")
}

func TestAssemble_TierOne(t *testing.T) {
	a := NewAssembler(testBudget())
	got := a.Assemble(Input{LetterPages: makePages(120, 100)})

	assert.Equal(t, model.TierOne, got.Tier)
	assert.Equal(t, append(seq(1, 50), seq(71, 120)...), got.LetterPages)
	assert.False(t, got.OverBudget)
}

func TestAssemble_TierOneSkippedWithAnnex(t *testing.T) {
	a := NewAssembler(testBudget())
	got := a.Assemble(Input{LetterPages: makePages(120, 100), AnnexText: "anexo"})

	assert.Equal(t, model.TierNone, got.Tier)
	assert.Len(t, got.LetterPages, 120)
}

func TestAssemble_TierTwoEscalation(t *testing.T) {
	a := NewAssembler(testBudget())
	got := a.Assemble(Input{LetterPages: makePages(150, 3000)})

	assert.Equal(t, model.TierTwo, got.Tier)
	assert.Equal(t, append(seq(1, 30), seq(121, 150)...), got.LetterPages)
	assert.LessOrEqual(t, got.Chars, 200_000)
	assert.False(t, got.OverBudget)
}

func TestAssemble_TierTwoKeepsAnnexAndStatus(t *testing.T) {
	a := NewAssembler(testBudget())
	annex := strings.Repeat("a", 5000)
	status := "PROCESSAMENTO Nº de Ordem: 1/2020"

	got := a.Assemble(Input{LetterPages: makePages(80, 3000), AnnexText: annex, StatusText: status})

	require.Equal(t, model.TierTwo, got.Tier)
	assert.Len(t, got.LetterPages, 60)
	assert.True(t, strings.HasSuffix(got.Text, status))
	assert.Contains(t, got.Text, annex)
}

func TestAssemble_OverBudgetAfterTierTwo(t *testing.T) {
	a := NewAssembler(testBudget())
	got := a.Assemble(Input{LetterPages: makePages(10, 30_000)})

	assert.Equal(t, model.TierTwo, got.Tier)
	assert.Len(t, got.LetterPages, 10)
	assert.True(t, got.OverBudget)
}

func TestAssemble_CountsRunes(t *testing.T) {
	cfg := testBudget()
	cfg.MaxChars = 10
	a := NewAssembler(cfg)

	got := a.Assemble(Input{LetterPages: []model.Page{{Number: 1, Text: "ÇÇÇÇÇÇÇÇÇÇ"}}})
	assert.Equal(t, 10, got.Chars)
	assert.Equal(t, model.TierNone, got.Tier)
}

func TestHeadTail(t *testing.T) {
	pages := makePages(5, 1)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, model.PageNumbers(headTail(pages, 3, 3)))
	assert.Equal(t, []int{1, 5}, model.PageNumbers(headTail(pages, 1, 1)))
	assert.Equal(t, []int{4, 5}, model.PageNumbers(headTail(pages, 0, 2)))
	assert.Empty(t, headTail(nil, 3, 3))
}
