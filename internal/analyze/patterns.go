package analyze

import (
	"regexp"
	"strings"
)

// fieldPattern pairs a compiled expression with the index of its capture
// group. Patterns for a field are evaluated in priority order with early
// exit on the first match, so the most structured pattern always wins over
// the generic fallback.
type fieldPattern struct {
	re    *regexp.Regexp
	group int
}

func pattern(expr string) fieldPattern {
	return fieldPattern{re: regexp.MustCompile("(?i)" + expr), group: 1}
}

// firstMatch returns the trimmed capture of the first pattern that matches,
// or "" when none do. OCR noise means captures can carry stray separators,
// so results are trimmed of surrounding punctuation.
func firstMatch(text string, patterns []fieldPattern) string {
	for _, p := range patterns {
		m := p.re.FindStringSubmatch(text)
		if m == nil || len(m) <= p.group {
			continue
		}
		value := strings.TrimSpace(m[p.group])
		if value != "" {
			return value
		}
	}
	return ""
}

// firstMatchOr falls back to the sentinel when nothing matched.
func firstMatchOr(text string, patterns []fieldPattern, fallback string) string {
	if v := firstMatch(text, patterns); v != "" {
		return v
	}
	return fallback
}
