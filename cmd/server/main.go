package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kjannette/tariff-monitor/internal/aggregator"
	"github.com/kjannette/tariff-monitor/internal/api"
	"github.com/kjannette/tariff-monitor/internal/config"
	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/logging"
	"github.com/kjannette/tariff-monitor/internal/notifications"
	"github.com/kjannette/tariff-monitor/internal/sources"
)

const banner = `
╔══════════════════════════════════════╗
║       Tariff Monitor API v1.0        ║
║                                      ║
╚══════════════════════════════════════╝
`

func main() {
	fmt.Print(banner)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	cfg.Print()

	log := logging.New(cfg.LogLevel, cfg.LogPretty)

	// Shared randomness for fetchers and the fallback generator
	rng := fallback.NewRand(cfg.RandSeed)

	// Notifications
	notify := notifications.NewSender(cfg.WebhookURL, cfg.BotName, log)
	alerts := notifications.NewAlerter(notify)

	// Sources
	srcOpts := sources.Options{Rand: rng, Logger: log}
	tariffSources := sources.NewTariffSources(cfg.Sources, srcOpts)
	newsSources := sources.NewNewsSources(cfg.Sources, srcOpts)

	aggOpts := aggregator.Options{
		SourceTimeout: cfg.SourceTimeout,
		ChartRange:    cfg.ChartRange,
		NewsLimit:     cfg.NewsLimit,
		Rand:          rng,
		Logger:        log,
		Notifier:      alerts,
	}
	tariffs := aggregator.NewTariffService(tariffSources, aggOpts)
	news := aggregator.NewNewsService(newsSources, aggOpts)

	// Graceful shutdown context
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.NewServer(tariffs, news, cfg.Port, cfg.APIKey, cfg.CORSAllowOrigin, log)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	log.Info().
		Int("tariff_sources", len(tariffSources)).
		Int("news_sources", len(newsSources)).
		Msg("all services started")

	// Wait for shutdown signal
	<-ctx.Done()
	log.Info().Msg("shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	alerts.Wait()
	log.Info().Msg("shutdown complete")
}
