package summary

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

const eok = 100_000_000 // 억, the customary hundred-million unit

// FormatNumber renders n with thousands separators.
func FormatNumber(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatWon renders an amount with the currency sign and separators.
func FormatWon(n int64) string {
	return "₩" + FormatNumber(n)
}

// FormatEok renders an amount in 억 with two decimals, the unit every
// summary message uses.
func FormatEok(n int64) string {
	if n == 0 {
		return "0억"
	}
	return fmt.Sprintf("%.2f억", float64(n)/eok)
}

// FormatEokShort renders an amount the way the yearly table cells do:
// one decimal of 억 when at least 1억, otherwise whole 만.
func FormatEokShort(n int64) string {
	if n >= eok {
		return fmt.Sprintf("%.1f억", float64(n)/eok)
	}
	return FormatNumber(int64(math.Round(float64(n)/10_000))) + "만"
}

// ParseTarget parses a target-amount input such as "5억", "5.5억" or
// "55000만". Plain numbers pass through; malformed input parses to 0.
func ParseTarget(s string) int64 {
	s = strings.ReplaceAll(s, ",", "")
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return 0
	}

	switch {
	case strings.Contains(s, "억"):
		n, err := strconv.ParseFloat(strings.ReplaceAll(s, "억", ""), 64)
		if err != nil {
			return 0
		}
		return int64(math.Round(n * eok))
	case strings.Contains(s, "만"):
		n, err := strconv.ParseFloat(strings.ReplaceAll(s, "만", ""), 64)
		if err != nil {
			return 0
		}
		return int64(math.Round(n * 10_000))
	default:
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return int64(n)
	}
}

// FormatPercent renders a rate with the dashboard's one-decimal
// convention.
func FormatPercent(rate float64) string {
	return fmt.Sprintf("%.1f%%", rate)
}
