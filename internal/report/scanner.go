package report

import (
	"regexp"
	"strings"

	"github.com/rs/zerolog/log"
)

// scanMargin is added to every rule's search window: pasted reports
// drift by a line or two between exports when section headers wrap.
const scanMargin = 2

var (
	countPattern    = regexp.MustCompile(`^[\d,]+$`)
	currencyPattern = regexp.MustCompile(`^₩([\d,]+)`)
)

// FindValue locates the rule's anchor line and scans forward through the
// rule's window for the first line matching the rule's value shape.
// Returns 0 when the anchor or the value is absent; a field missing from
// a pasted report is an expected outcome, not an error.
func FindValue(lines []string, rule ParseRule) int64 {
	anchor := findAnchor(lines, rule)
	if anchor < 0 {
		log.Debug().Str("keyword", rule.Keyword).Msg("Anchor keyword not found")
		return 0
	}

	for i := 1; i <= rule.SearchWindow+scanMargin; i++ {
		idx := anchor + i
		if idx >= len(lines) {
			break
		}
		if token, ok := matchShape(lines[idx], rule.Shape); ok {
			return int64(ExtractNumber(token))
		}
	}

	log.Debug().Str("keyword", rule.Keyword).Int("anchor", anchor).Msg("No value line within window")
	return 0
}

// findAnchor returns the index of the first line satisfying the rule's
// match mode, or -1.
func findAnchor(lines []string, rule ParseRule) int {
	for i, line := range lines {
		switch rule.Match {
		case MatchExact:
			if line == rule.Keyword {
				return i
			}
		case MatchPrefix:
			if strings.HasPrefix(line, rule.Keyword) {
				return i
			}
		case MatchSubstring:
			if strings.Contains(line, rule.Keyword) && !containsAny(line, rule.Exclude) {
				return i
			}
		}
	}
	return -1
}

func containsAny(line string, words []string) bool {
	for _, w := range words {
		if strings.Contains(line, w) {
			return true
		}
	}
	return false
}

// matchShape tests a trimmed line against a value shape and returns the
// captured numeric token. A currency line must have at least one digit
// after the sign, so placeholder rows like "-" or a bare "₩" are skipped.
func matchShape(line string, shape ValueShape) (string, bool) {
	switch shape {
	case ShapeCount:
		if countPattern.MatchString(line) {
			return line, true
		}
	case ShapeCurrency:
		if m := currencyPattern.FindStringSubmatch(line); m != nil {
			return m[1], true
		}
	}
	return "", false
}
