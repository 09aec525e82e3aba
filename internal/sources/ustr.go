package sources

import (
	"context"

	"github.com/kjannette/tariff-monitor/internal/config"
	"github.com/kjannette/tariff-monitor/internal/httputil"
	"github.com/kjannette/tariff-monitor/internal/models"
)

type ustrItem struct {
	Product       string    `json:"product"`
	TariffRate    flexFloat `json:"tariff_rate"`
	ChangePercent flexFloat `json:"change_percent"`
}

// USTR reads tariff rates published by the Office of the US Trade Representative.
type USTR struct {
	base
}

func NewUSTR(sc config.SourceConfig, opts Options) *USTR {
	return &USTR{base: newBase(sc.Name, sc.URL, opts)}
}

func (u *USTR) FetchTariffs(ctx context.Context) []models.TariffRecord {
	body, err := u.get(ctx, u.url, httputil.AcceptJSON)
	if err != nil {
		return nil
	}
	items, err := decodeList[ustrItem](body)
	if err != nil {
		u.log.Warn().Err(err).Msg("parse failed")
		return nil
	}

	now := u.opts.Now().UTC()
	out := make([]models.TariffRecord, 0, min(len(items), maxRateItems))
	for _, it := range items[:min(len(items), maxRateItems)] {
		out = append(out, models.TariffRecord{
			Country:     "United States",
			Product:     orDefault(it.Product, "General"),
			Rate:        ratePct(it.TariffRate),
			Change:      changePct(it.ChangePercent),
			Trend:       trendOf(it.ChangePercent),
			Source:      u.name,
			LastUpdated: now,
		})
	}
	return out
}
