// Package fallback fabricates tariff, chart and news data for when no
// upstream provider answers. Nothing here does I/O or can fail.
package fallback

import (
	"time"

	"github.com/kjannette/tariff-monitor/internal/models"
)

type fixedTariff struct {
	country, product, rate, change string
	trend                          models.Trend
}

var serverTariffs = []fixedTariff{
	{"United States", "Steel & Aluminum", "25%", "+10%", models.TrendUp},
	{"China", "Technology Products", "15%", "+5%", models.TrendUp},
	{"European Union", "Agricultural Products", "8%", "-2%", models.TrendDown},
	{"Mexico", "Automotive Parts", "12%", "+3%", models.TrendUp},
	{"Canada", "Lumber", "18%", "+8%", models.TrendUp},
}

// Tariffs returns the five-record set served when every source came back empty.
func Tariffs(now time.Time) []models.TariffRecord {
	return buildFixed(serverTariffs, now)
}

func buildFixed(rows []fixedTariff, now time.Time) []models.TariffRecord {
	out := make([]models.TariffRecord, len(rows))
	for i, r := range rows {
		out[i] = models.TariffRecord{
			Country:     r.country,
			Product:     r.product,
			Rate:        r.rate,
			Change:      r.change,
			Trend:       r.trend,
			Source:      models.FallbackSource,
			LastUpdated: now.UTC(),
		}
	}
	return out
}

// SyntheticBounds limits the generated rate and the magnitude of the change.
type SyntheticBounds struct {
	RateMin, RateMax float64
	ChangeMax        float64
	// UpProbability is the chance a generated change is positive.
	UpProbability float64
}

// DefaultBounds matches the spread of published EU member-state duties.
var DefaultBounds = SyntheticBounds{RateMin: 4, RateMax: 16, ChangeMax: 3, UpProbability: 0.4}

// SyntheticTariffs pairs countries[i] with products[i] and invents a rate and
// change for each, tagged with the given provider name. The shorter slice
// decides the record count.
func SyntheticTariffs(rng Rand, source string, countries, products []string, b SyntheticBounds, now time.Time) []models.TariffRecord {
	n := min(len(countries), len(products))
	out := make([]models.TariffRecord, 0, n)
	for i := range n {
		change := between(rng, 0, b.ChangeMax)
		if rng.Float64() >= b.UpProbability {
			change = -change
		}
		out = append(out, models.TariffRecord{
			Country:     countries[i],
			Product:     products[i],
			Rate:        FormatRate(between(rng, b.RateMin, b.RateMax)),
			Change:      FormatChange(change),
			Trend:       TrendFor(change),
			Source:      source,
			LastUpdated: now.UTC(),
		})
	}
	return out
}
