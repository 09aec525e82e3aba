package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider names. They double as the registry keys in a sources file.
const (
	SourceEurostat   = "Eurostat"
	SourceEUTaric    = "European Commission"
	SourceUSTR       = "USTR"
	SourceECNews     = "European Commission News"
	SourceWTONews    = "WTO"
	SourceUSCommerce = "US Commerce Department"
)

// SourceConfig points one provider at its upstream.
type SourceConfig struct {
	Name string
	URL  string
	// FallbackURL is tried when URL answers non-2xx. Only Eurostat uses it.
	FallbackURL string
	Enabled     bool
}

type Sources struct {
	Tariff []SourceConfig
	News   []SourceConfig
}

func DefaultSources() *Sources {
	return &Sources{
		Tariff: []SourceConfig{
			{
				Name:        SourceEurostat,
				URL:         "https://ec.europa.eu/eurostat/api/dissemination/sdmx/2.1/dataflow/all/all/latest",
				FallbackURL: "https://ec.europa.eu/eurostat/api/dissemination/sdmx/2.1/codelist/ESTAT/GEO?format=JSON&lang=en",
				Enabled:     true,
			},
			{Name: SourceEUTaric, URL: "https://ec.europa.eu/taxation_customs/api/taric/tariffs", Enabled: true},
			{Name: SourceUSTR, URL: "https://ustr.gov/api/trade-data/tariffs", Enabled: true},
		},
		News: []SourceConfig{
			{Name: SourceECNews, URL: "https://policy.trade.ec.europa.eu/news_en", Enabled: true},
			{Name: SourceWTONews, URL: "https://www.wto.org/english/tratop_e/tariffs_e/tariffs_e.htm", Enabled: true},
			{Name: SourceUSCommerce, URL: "https://www.trade.gov/data", Enabled: true},
		},
	}
}

// LoadSources reads a YAML sources file. Entries override the defaults by
// name; a provider missing from the file keeps its default settings.
func LoadSources(path string) (*Sources, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return ParseSources(data)
}

type sourceOverride struct {
	Name        string `yaml:"name"`
	URL         string `yaml:"url"`
	FallbackURL string `yaml:"fallback_url"`
	Enabled     *bool  `yaml:"enabled"`
}

type sourcesFile struct {
	Tariff []sourceOverride `yaml:"tariff"`
	News   []sourceOverride `yaml:"news"`
}

func ParseSources(data []byte) (*Sources, error) {
	var file sourcesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse sources: %w", err)
	}

	out := DefaultSources()
	if err := merge(out.Tariff, file.Tariff); err != nil {
		return nil, fmt.Errorf("tariff: %w", err)
	}
	if err := merge(out.News, file.News); err != nil {
		return nil, fmt.Errorf("news: %w", err)
	}
	return out, nil
}

func merge(base []SourceConfig, overrides []sourceOverride) error {
	for _, o := range overrides {
		i := indexOf(base, o.Name)
		if i < 0 {
			return fmt.Errorf("unknown source %q", o.Name)
		}
		if o.URL != "" {
			base[i].URL = o.URL
		}
		if o.FallbackURL != "" {
			base[i].FallbackURL = o.FallbackURL
		}
		if o.Enabled != nil {
			base[i].Enabled = *o.Enabled
		}
	}
	return nil
}

func indexOf(list []SourceConfig, name string) int {
	for i, s := range list {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// lookup returns the named source, tariff or news.
func (s *Sources) lookup(name string) (SourceConfig, bool) {
	for _, list := range [][]SourceConfig{s.Tariff, s.News} {
		if i := indexOf(list, name); i >= 0 {
			return list[i], true
		}
	}
	return SourceConfig{}, false
}

func (s *Sources) EnabledTariff() []SourceConfig { return enabled(s.Tariff) }
func (s *Sources) EnabledNews() []SourceConfig   { return enabled(s.News) }

func enabled(list []SourceConfig) []SourceConfig {
	var out []SourceConfig
	for _, s := range list {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
