package fallback

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/kjannette/tariff-monitor/internal/models"
)

type ChartRange int

const (
	// ChartYearToDate covers January through the current month.
	ChartYearToDate ChartRange = iota
	// ChartFullYear always covers all twelve months.
	ChartFullYear
)

func ParseChartRange(s string) (ChartRange, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "ytd":
		return ChartYearToDate, nil
	case "full", "year":
		return ChartFullYear, nil
	}
	return ChartYearToDate, fmt.Errorf("unknown chart range %q, expected ytd|full", s)
}

func (r ChartRange) String() string {
	if r == ChartFullYear {
		return "full"
	}
	return "ytd"
}

var months = [12]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ChartLen is the number of points Chart produces for now.
func ChartLen(r ChartRange, now time.Time) int {
	if r == ChartFullYear {
		return len(months)
	}
	return int(now.Month())
}

// Chart invents one point per month. Values are not derived from any tariff
// record; they only give the trend chart something plausible to draw.
func Chart(rng Rand, r ChartRange, now time.Time) []models.ChartPoint {
	n := ChartLen(r, now)
	out := make([]models.ChartPoint, n)
	for i := range n {
		out[i] = models.ChartPoint{
			Month:  months[i],
			US:     round2(between(rng, 10, 30)),
			China:  round2(between(rng, 8, 33)),
			EU:     round2(between(rng, 4, 14)),
			Mexico: round2(between(rng, 6, 18)),
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
