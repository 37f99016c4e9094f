package extract

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/sells-group/oficio-cli/internal/detect"
)

var (
	cnjPattern   = regexp.MustCompile(`^\d{7}-\d{2}\.\d{4}\.\d\.\d{2}\.\d{4}$`)
	orderPattern = regexp.MustCompile(`^(\d{1,6})/(\d{2,4})$`)
	taxPrefix    = regexp.MustCompile(`(?i)^(CPF|CNPJ):\s*`)
)

// normalize cleans model output in place so it can be validated: nested
// annex objects are flattened, amounts parsed from Brazilian notation, order
// numbers and tax ids reformatted.
func normalize(m map[string]any) {
	flattenAnnex(m)

	for _, f := range amountFields {
		if v, ok := m[f]; ok {
			m[f] = parseAmount(v)
		}
	}

	if s, ok := m["processo_origem"].(string); ok {
		m["processo_origem"] = normalizeCaseNumber(s)
	}
	if s, ok := m["requerente_caps"].(string); ok {
		m["requerente_caps"] = cases.Upper(language.BrazilianPortuguese).String(strings.TrimSpace(s))
	}

	switch v := m["numero_ordem"].(type) {
	case string:
		if n := normalizeOrderNumber(v); n != "" {
			m["numero_ordem"] = n
		} else {
			m["numero_ordem"] = nil
		}
	default:
		// absent and non-string values both become an explicit null
		m["numero_ordem"] = nil
	}

	if s, ok := m["credor_cpf_cnpj"].(string); ok {
		m["credor_cpf_cnpj"] = normalizeTaxID(s)
	}

	// Blank strings mean "not found".
	for k, v := range m {
		if s, ok := v.(string); ok && strings.TrimSpace(s) == "" {
			m[k] = nil
		}
	}
}

func flattenAnnex(m map[string]any) {
	nested, ok := m["anexo_ii"].(map[string]any)
	if !ok {
		delete(m, "anexo_ii")
		return
	}
	for _, k := range []string{"banco", "agencia", "conta", "conta_tipo"} {
		if m[k] == nil && nested[k] != nil {
			m[k] = nested[k]
		}
	}
	delete(m, "anexo_ii")
}

// parseAmount accepts numbers and strings like "R$ 1.234.567,89". Negative
// and unparsable values become nil. Results are rounded to cents.
func parseAmount(v any) any {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), "R$", "")
		s = strings.ReplaceAll(s, " ", "")
		switch strings.ToLower(s) {
		case "", "null", "none", "n/a", "-":
			return nil
		}
		if strings.Contains(s, ",") {
			s = strings.ReplaceAll(s, ".", "")
			s = strings.ReplaceAll(s, ",", ".")
		} else if strings.Count(s, ".") > 1 {
			s = dropThousandsDots(s)
		}
		parsed, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	return math.Round(f*100) / 100
}

// dropThousandsDots handles dot-only amounts with several dots. When every
// group after the first has three digits the dots are thousands separators
// ("1.234.567"); otherwise the last dot is the decimal point.
func dropThousandsDots(s string) string {
	groups := strings.Split(s, ".")
	thousands := true
	for _, g := range groups[1:] {
		if len(g) != 3 {
			thousands = false
			break
		}
	}
	if thousands {
		return strings.Join(groups, "")
	}
	i := strings.LastIndex(s, ".")
	return strings.ReplaceAll(s[:i], ".", "") + s[i:]
}

func normalizeCaseNumber(s string) string {
	s = strings.TrimSpace(s)
	s, _, _ = strings.Cut(s, "/")
	if cnjPattern.MatchString(s) {
		return s
	}
	if r := []rune(s); len(r) > 30 {
		s = string(r[:30])
	}
	return s
}

// normalizeOrderNumber expands two-digit years (>= 90 is 19xx) and returns ""
// for anything that is not number/year.
func normalizeOrderNumber(s string) string {
	m := orderPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return ""
	}
	num, year := m[1], m[2]
	switch len(year) {
	case 2:
		if y, _ := strconv.Atoi(year); y >= 90 {
			year = "19" + year
		} else {
			year = "20" + year
		}
	case 3:
		return ""
	}
	return num + "/" + year
}

// normalizeTaxID formats CPF/CNPJ values. Values with the wrong digit count
// are dropped.
func normalizeTaxID(s string) any {
	s = taxPrefix.ReplaceAllString(strings.TrimSpace(s), "")
	d := detect.DigitsOnly(s)
	if len(d) != 11 && len(d) != 14 {
		return nil
	}
	return detect.FormatTaxID(d)
}
