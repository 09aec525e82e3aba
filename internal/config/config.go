package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/models"
)

var (
	ErrInvalidPort      = errors.New("PORT must be between 1 and 65535")
	ErrInvalidTimeout   = errors.New("SOURCE_TIMEOUT must be positive")
	ErrInvalidNewsLimit = errors.New("NEWS_LIMIT must be between 1 and 5")
	ErrInvalidLogLevel  = errors.New("LOG_LEVEL must be one of: debug, info, warn, error")
	ErrNoSources        = errors.New("at least one tariff or news source must be enabled")
)

type Config struct {
	// Server
	Port            int
	APIKey          string
	CORSAllowOrigin string

	// Logging
	LogLevel  string
	LogPretty bool

	// Sources
	SourceTimeout time.Duration
	SourcesFile   string
	Sources       *Sources

	// Responses
	ChartRange fallback.ChartRange
	NewsLimit  int
	RandSeed   uint64

	// Alerts
	WebhookURL string
	BotName    string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Port:            envInt("PORT", 3001),
		APIKey:          envStr("API_KEY", ""),
		CORSAllowOrigin: envStr("CORS_ALLOW_ORIGIN", "*"),

		LogLevel:  strings.ToLower(envStr("LOG_LEVEL", "info")),
		LogPretty: envBool("LOG_PRETTY", true),

		SourceTimeout: envDuration("SOURCE_TIMEOUT", 8*time.Second),
		SourcesFile:   envStr("SOURCES_FILE", ""),

		NewsLimit: envInt("NEWS_LIMIT", 5),
		RandSeed:  uint64(envInt("RAND_SEED", 0)),

		WebhookURL: envStr("WEBHOOK_URL", ""),
		BotName:    envStr("BOT_NAME", "TariffMonitor"),
	}

	cr, err := fallback.ParseChartRange(envStr("CHART_RANGE", "ytd"))
	if err != nil {
		return nil, fmt.Errorf("CHART_RANGE: %w", err)
	}
	cfg.ChartRange = cr

	cfg.Sources = DefaultSources()
	if cfg.SourcesFile != "" {
		src, err := LoadSources(cfg.SourcesFile)
		if err != nil {
			return nil, fmt.Errorf("load sources file: %w", err)
		}
		cfg.Sources = src
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Port <= 0 || c.Port > 65535 {
		errs = append(errs, ErrInvalidPort)
	}
	if c.SourceTimeout <= 0 {
		errs = append(errs, ErrInvalidTimeout)
	}
	if c.NewsLimit < 1 || c.NewsLimit > models.MaxNewsItems {
		errs = append(errs, ErrInvalidNewsLimit)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, ErrInvalidLogLevel)
	}
	if c.Sources == nil || (len(c.Sources.EnabledTariff()) == 0 && len(c.Sources.EnabledNews()) == 0) {
		errs = append(errs, ErrNoSources)
	}

	if c.APIKey == "" {
		fmt.Println("[WARN] API_KEY not set - endpoints are public")
	}
	if c.WebhookURL == "" {
		fmt.Println("[WARN] WEBHOOK_URL not set - fallback alerts go to the log only")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) Print() {
	fmt.Println("=== Tariff Monitor Configuration ===")
	fmt.Printf("Port: %d\n", c.Port)
	fmt.Printf("CORS Origin: %s\n", c.CORSAllowOrigin)
	fmt.Printf("Auth: %s\n", boolLabel(c.APIKey != "", "API key required", "disabled"))
	fmt.Printf("Log: %s (%s)\n", c.LogLevel, boolLabel(c.LogPretty, "console", "json"))
	fmt.Println("--------------------------------------")
	fmt.Printf("Source timeout: %s\n", c.SourceTimeout)
	fmt.Printf("Chart range: %s\n", c.ChartRange)
	fmt.Printf("News limit: %d\n", c.NewsLimit)
	if c.Sources != nil {
		fmt.Println("Tariff sources:")
		for _, s := range c.Sources.Tariff {
			fmt.Printf("  %-22s %s\n", s.Name, boolLabel(s.Enabled, "enabled", "disabled"))
		}
		fmt.Println("News sources:")
		for _, s := range c.Sources.News {
			fmt.Printf("  %-22s %s\n", s.Name, boolLabel(s.Enabled, "enabled", "disabled"))
		}
	}
	fmt.Printf("Alerts: %s\n", boolLabel(c.WebhookURL != "", "webhook configured", "log only"))
	fmt.Println("======================================")
}

// --- helpers ---

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		// bare numbers are seconds
		if n, err := strconv.Atoi(v); err == nil {
			return time.Duration(n) * time.Second
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		v = strings.ToLower(v)
		return v == "true" || v == "1" || v == "yes"
	}
	return fallback
}

func boolLabel(cond bool, ifTrue, ifFalse string) string {
	if cond {
		return ifTrue
	}
	return ifFalse
}
