package models

import "time"

type Trend string

const (
	TrendUp     Trend = "up"
	TrendDown   Trend = "down"
	TrendStable Trend = "stable"
)

func (t Trend) Valid() bool {
	switch t {
	case TrendUp, TrendDown, TrendStable:
		return true
	}
	return false
}

type TariffRecord struct {
	Country     string    `json:"country"`
	Product     string    `json:"product"`
	Rate        string    `json:"rate"`   // e.g. "8.5%"
	Change      string    `json:"change"` // e.g. "+1.2%", "-0.8%", "0%"
	Trend       Trend     `json:"trend"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"lastUpdated"`
}

type ChartPoint struct {
	Month  string  `json:"month"`
	US     float64 `json:"us"`
	China  float64 `json:"china"`
	EU     float64 `json:"eu"`
	Mexico float64 `json:"mexico"`
}
