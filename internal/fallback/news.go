package fallback

import (
	"fmt"
	"slices"

	"github.com/kjannette/tariff-monitor/internal/models"
)

type newsTemplate struct {
	title, summary, source, url string
}

var newsCatalog = []newsTemplate{
	{
		"Global Trade Tensions Continue to Shape Markets",
		"Ongoing trade policy developments affecting international commerce and tariff structures worldwide",
		"Trade Monitor",
		"https://policy.trade.ec.europa.eu/news_en",
	},
	{
		"New Tariff Measures Under WTO Review",
		"World Trade Organization examining recent bilateral tariff implementations and their compliance",
		"WTO Updates",
		"https://www.wto.org/english/tratop_e/tariffs_e/tariffs_e.htm",
	},
	{
		"US Trade Data Shows Shifting Import Patterns",
		"Latest commerce department figures reveal changes in international trade flows and tariff impacts",
		"Trade Analytics",
		"https://www.trade.gov/data",
	},
	{
		"EU Weighs Safeguard Duties on Steel Imports",
		"Member states discuss extending quota-based safeguard measures as import volumes rise",
		"European Trade Journal",
		"https://policy.trade.ec.europa.eu/news_en",
	},
	{
		"USMCA Automotive Rules Face Annual Review",
		"Regional value content requirements for vehicles draw scrutiny from all three partners",
		"North America Trade",
		"https://ustr.gov/trade-agreements/free-trade-agreements/united-states-mexico-canada-agreement",
	},
	{
		"Semiconductor Export Controls Reshape Supply Chains",
		"Manufacturers reroute component sourcing as new licensing requirements take effect",
		"Trade Weekly",
		"https://www.trade.gov/data",
	},
}

// NewsCatalogSize is the number of distinct templates News can draw from.
var NewsCatalogSize = len(newsCatalog)

// DefaultNewsCount is how many items a fallback news response carries.
const DefaultNewsCount = 3

// News samples n templates without replacement and stamps each with a
// random age. Items are ordered newest first and carry ids fallback-1..n.
func News(rng Rand, n int) []models.NewsItem {
	n = max(0, min(n, len(newsCatalog)))

	idx := make([]int, len(newsCatalog))
	for i := range idx {
		idx[i] = i
	}
	for i := range n {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	type aged struct {
		tpl   newsTemplate
		hours int
	}
	picked := make([]aged, n)
	for i := range n {
		picked[i] = aged{tpl: newsCatalog[idx[i]], hours: 1 + rng.IntN(12)}
	}
	slices.SortStableFunc(picked, func(a, b aged) int { return a.hours - b.hours })

	out := make([]models.NewsItem, n)
	for i, p := range picked {
		out[i] = models.NewsItem{
			ID:      fmt.Sprintf("fallback-%d", i+1),
			Title:   p.tpl.title,
			Summary: p.tpl.summary,
			Time:    HoursAgo(p.hours),
			Source:  p.tpl.source,
			URL:     p.tpl.url,
		}
	}
	return out
}
