package sources

import (
	"context"

	"github.com/kjannette/tariff-monitor/internal/config"
	"github.com/kjannette/tariff-monitor/internal/httputil"
	"github.com/kjannette/tariff-monitor/internal/models"
)

type taricItem struct {
	ProductDescription string    `json:"product_description"`
	DutyRate           flexFloat `json:"duty_rate"`
	RateChange         flexFloat `json:"rate_change"`
}

// Taric reads duty rates from the European Commission TARIC feed.
type Taric struct {
	base
}

func NewTaric(sc config.SourceConfig, opts Options) *Taric {
	return &Taric{base: newBase(sc.Name, sc.URL, opts)}
}

func (t *Taric) FetchTariffs(ctx context.Context) []models.TariffRecord {
	body, err := t.get(ctx, t.url, httputil.AcceptJSON)
	if err != nil {
		return nil
	}
	items, err := decodeList[taricItem](body)
	if err != nil {
		t.log.Warn().Err(err).Msg("parse failed")
		return nil
	}

	now := t.opts.Now().UTC()
	out := make([]models.TariffRecord, 0, min(len(items), maxRateItems))
	for _, it := range items[:min(len(items), maxRateItems)] {
		out = append(out, models.TariffRecord{
			Country:     "European Union",
			Product:     orDefault(it.ProductDescription, "Various"),
			Rate:        ratePct(it.DutyRate),
			Change:      changePct(it.RateChange),
			Trend:       trendOf(it.RateChange),
			Source:      t.name,
			LastUpdated: now,
		})
	}
	return out
}
