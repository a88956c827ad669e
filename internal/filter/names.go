package filter

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds a company name for comparison: combining marks stripped,
// recomposed to NFC, lower-cased, whitespace collapsed.
// Hangul survives the NFD/NFC round trip unchanged.
func Normalize(str string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, err := transform.String(t, str)
	if err != nil {
		result = str
	}
	return strings.Join(strings.Fields(strings.ToLower(result)), " ")
}

// NormalizeAll normalizes names and drops the ones that end up empty.
func NormalizeAll(names []string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		if n = Normalize(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// MatchesAny reports whether name contains any of the wanted names,
// case-insensitively. An empty wanted list matches everything.
func MatchesAny(name string, wanted []string) bool {
	targets := NormalizeAll(wanted)
	if len(targets) == 0 {
		return true
	}
	n := Normalize(name)
	if n == "" {
		return false
	}
	for _, t := range targets {
		if strings.Contains(n, t) {
			return true
		}
	}
	return false
}

// SplitNames turns "삼성전자, LG , " into ["삼성전자", "LG"].
func SplitNames(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
