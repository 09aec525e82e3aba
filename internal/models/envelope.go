package models

import "time"

type Status string

const (
	StatusSuccess  Status = "success"
	StatusFallback Status = "fallback"
)

// FallbackSource is the provider name attached to generator output.
const FallbackSource = "Fallback"

// Meta is the provenance block shared by every endpoint response.
type Meta struct {
	LastUpdated time.Time `json:"lastUpdated"`
	Sources     []string  `json:"sources"`
	Status      Status    `json:"status"`
	Error       string    `json:"error,omitempty"`
}

type TariffEnvelope struct {
	TariffData []TariffRecord `json:"tariffData"`
	ChartData  []ChartPoint   `json:"chartData"`
	Meta
}

type NewsEnvelope struct {
	News []NewsItem `json:"news"`
	Meta
}
