package report

import "strings"

// Record maps field names to extracted values. A fresh record is built
// on every parse; fields that could not be located hold 0.
type Record map[string]int64

// SplitLines breaks raw pasted text into trimmed lines. Empty lines are
// kept as positional placeholders because scan offsets count literal
// line positions in the paste.
func SplitLines(raw string) []string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	lines := strings.Split(raw, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// Parse runs every rule of the set against the pasted text and returns
// the assembled record. Rules share no scan state, so the same anchor
// line may serve multiple fields.
func Parse(raw string, rules RuleSet) Record {
	lines := SplitLines(raw)
	rec := make(Record, len(rules))
	for field, rule := range rules {
		rec[field] = FindValue(lines, rule)
	}
	return rec
}
