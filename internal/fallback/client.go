package fallback

import (
	"time"

	"github.com/kjannette/tariff-monitor/internal/models"
)

// The client keeps its own copy of fallback data so a dashboard has
// something to draw even when the server cannot be reached at all.

var clientTariffs = serverTariffs[:4]

var clientChart = []models.ChartPoint{
	{Month: "Jan", US: 12.5, China: 8.3, EU: 4.2, Mexico: 6.1},
	{Month: "Feb", US: 13.2, China: 9.1, EU: 4.5, Mexico: 6.3},
	{Month: "Mar", US: 15.8, China: 12.4, EU: 5.1, Mexico: 7.2},
	{Month: "Apr", US: 18.3, China: 15.7, EU: 5.8, Mexico: 8.1},
	{Month: "May", US: 21.2, China: 18.9, EU: 6.2, Mexico: 8.9},
	{Month: "Jun", US: 23.1, China: 22.3, EU: 7.1, Mexico: 9.5},
	{Month: "Jul", US: 24.8, China: 25.1, EU: 7.8, Mexico: 10.2},
	{Month: "Aug", US: 25.5, China: 26.8, EU: 8.3, Mexico: 10.8},
	{Month: "Sep", US: 26.2, China: 28.1, EU: 8.9, Mexico: 11.3},
	{Month: "Oct", US: 25.8, China: 27.5, EU: 9.2, Mexico: 11.1},
	{Month: "Nov", US: 24.9, China: 26.8, EU: 9.0, Mexico: 10.9},
	{Month: "Dec", US: 24.2, China: 25.9, EU: 8.7, Mexico: 10.5},
}

// ClientTariffEnvelope is what the dashboard shows when the tariff endpoint
// is unreachable: four records and a fixed twelve-month chart.
func ClientTariffEnvelope(now time.Time) models.TariffEnvelope {
	return models.TariffEnvelope{
		TariffData: buildFixed(clientTariffs, now),
		ChartData:  append([]models.ChartPoint(nil), clientChart...),
		Meta: models.Meta{
			LastUpdated: now.UTC(),
			Sources:     []string{models.FallbackSource},
			Status:      models.StatusFallback,
		},
	}
}

var clientNews = []models.NewsItem{
	{
		ID:      "fallback-1",
		Title:   "Global Trade Tensions Continue to Shape Markets",
		Summary: "Ongoing trade policy developments affecting international commerce",
		Time:    "2 hours ago",
		Source:  "Trade Monitor",
		URL:     "https://policy.trade.ec.europa.eu/news_en",
	},
	{
		ID:      "fallback-2",
		Title:   "New Tariff Measures Under WTO Review",
		Summary: "World Trade Organization examining recent bilateral tariff implementations",
		Time:    "4 hours ago",
		Source:  "WTO Updates",
		URL:     "https://www.wto.org/english/tratop_e/tariffs_e/tariffs_e.htm",
	},
	{
		ID:      "fallback-3",
		Title:   "US Trade Data Shows Shifting Import Patterns",
		Summary: "Latest commerce department figures reveal changes in trade flows",
		Time:    "6 hours ago",
		Source:  "Trade Analytics",
		URL:     "https://www.trade.gov/data",
	},
}

// ClientNews is the news list the dashboard starts with and falls back to.
func ClientNews() []models.NewsItem {
	return append([]models.NewsItem(nil), clientNews...)
}
