package detect

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/oficio-cli/internal/model"
)

// Select returns the first candidate, in document order, whose text contains
// taxID in its punctuated form or, failing that, as bare digits. The index of
// the match is returned alongside it. ok is false when no candidate matches;
// that is a normal outcome, not an error.
func Select(candidates []model.LetterCandidate, taxID string) (model.LetterCandidate, int, bool) {
	digits := DigitsOnly(taxID)
	if digits == "" {
		return model.LetterCandidate{}, -1, false
	}
	punctuated := FormatTaxID(digits)

	for i, c := range candidates {
		if strings.Contains(c.Text, punctuated) {
			zap.L().Debug("tax id matched (punctuated)", zap.Int("candidate", i), zap.Int("first_page", c.FirstPage))
			return c, i, true
		}
		if strings.Contains(c.Text, digits) {
			zap.L().Debug("tax id matched (digits)", zap.Int("candidate", i), zap.Int("first_page", c.FirstPage))
			return c, i, true
		}
	}
	return model.LetterCandidate{}, -1, false
}

// DigitsOnly strips everything but ASCII digits from s.
func DigitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatTaxID renders an 11-digit CPF as ddd.ddd.ddd-dd and a 14-digit CNPJ
// as dd.ddd.ddd/dddd-dd. Other inputs are returned unchanged.
func FormatTaxID(s string) string {
	d := DigitsOnly(s)
	switch len(d) {
	case 11:
		return fmt.Sprintf("%s.%s.%s-%s", d[0:3], d[3:6], d[6:9], d[9:11])
	case 14:
		return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:14])
	default:
		return s
	}
}

// ValidTaxID reports whether s is a CPF with correct check digits. Sequences
// of one repeated digit are rejected.
func ValidTaxID(s string) bool {
	d := DigitsOnly(s)
	if len(d) != 11 {
		return false
	}
	if strings.Count(d, d[:1]) == len(d) {
		return false
	}
	return cpfCheckDigit(d[:9], 10) == int(d[9]-'0') &&
		cpfCheckDigit(d[:10], 11) == int(d[10]-'0')
}

func cpfCheckDigit(digits string, weight int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		sum += int(digits[i]-'0') * (weight - i)
	}
	rem := (sum * 10) % 11
	if rem == 10 {
		return 0
	}
	return rem
}
