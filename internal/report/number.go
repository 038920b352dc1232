package report

import (
	"strconv"
	"strings"
)

// ExtractNumber parses a locale-formatted numeric token: thousands
// separators and any character outside [0-9.-] are stripped before
// parsing. Returns 0 for empty or malformed input, never an error;
// missing fields resolve to zero throughout the parser.
func ExtractNumber(s string) float64 {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" {
		return 0
	}
	n, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}
	return n
}
