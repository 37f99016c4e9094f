package detect

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// upper folds s to upper case using pt-BR rules. A Caser is stateful, so
// one is built per call.
func upper(s string) string {
	return cases.Upper(language.BrazilianPortuguese).String(s)
}

func upperAll(vals []string) []string {
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = upper(v)
	}
	return out
}

// containsAny reports whether text contains any of needles. Both sides are
// expected to be upper-cased already.
func containsAny(text string, needles []string) bool {
	for _, n := range needles {
		if n != "" && strings.Contains(text, n) {
			return true
		}
	}
	return false
}

func compileAll(patterns []string) ([]*regexp.Regexp, error) {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, err
		}
		out = append(out, re)
	}
	return out, nil
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// truncateRunes caps s at max runes, replacing the tail with "..." when cut.
func truncateRunes(s string, max int) string {
	if runeLen(s) <= max {
		return s
	}
	r := []rune(s)
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}
