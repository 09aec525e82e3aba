package fallback

import (
	"fmt"
	"math"
	"regexp"

	"github.com/kjannette/tariff-monitor/internal/models"
)

var percentRegexp = regexp.MustCompile(`^[+-]?\d+(\.\d+)?%$`)

// IsPercent reports whether s is a rendered percentage such as "8.5%" or "-2%".
func IsPercent(s string) bool {
	return percentRegexp.MatchString(s)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// FormatRate renders a non-negative rate with one decimal.
func FormatRate(v float64) string {
	if v < 0 {
		v = 0
	}
	return fmt.Sprintf("%.1f%%", round1(v))
}

// FormatChange renders a signed change with one decimal. Zero has no sign.
func FormatChange(v float64) string {
	r := round1(v)
	switch {
	case r > 0:
		return fmt.Sprintf("+%.1f%%", r)
	case r < 0:
		return fmt.Sprintf("%.1f%%", r)
	default:
		return "0.0%"
	}
}

// TrendFor maps a change to the trend shown next to it, using the same
// rounding as FormatChange so the two always agree.
func TrendFor(change float64) models.Trend {
	r := round1(change)
	switch {
	case r > 0:
		return models.TrendUp
	case r < 0:
		return models.TrendDown
	default:
		return models.TrendStable
	}
}

// HoursAgo renders a relative age for news cards.
func HoursAgo(n int) string {
	if n == 1 {
		return "1 hour ago"
	}
	return fmt.Sprintf("%d hours ago", n)
}
