package aggregator

import (
	"context"

	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/logging"
	"github.com/kjannette/tariff-monitor/internal/models"
	"github.com/kjannette/tariff-monitor/internal/sources"
)

type TariffService struct {
	srcs []sources.TariffSource
	opts Options
}

func NewTariffService(srcs []sources.TariffSource, opts Options) *TariffService {
	opts = opts.withDefaults()
	opts.Logger = logging.Component(opts.Logger, "tariff-aggregator")
	return &TariffService{srcs: srcs, opts: opts}
}

// Sources lists the registered provider names in registration order.
func (s *TariffService) Sources() []string { return names(s.srcs) }

// Build queries every source and assembles the tariff envelope. An error
// means the build itself broke (a source panicked or ctx ended); callers
// answer with Fallback instead.
func (s *TariffService) Build(ctx context.Context) (models.TariffEnvelope, error) {
	s.opts.Logger.Info().Int("sources", len(s.srcs)).Msg("fetching tariff data")

	results, err := fanOut(ctx, s.opts, s.srcs,
		sources.TariffSource.Name,
		func(ctx context.Context, src sources.TariffSource) []models.TariffRecord { return src.FetchTariffs(ctx) },
	)
	if err != nil {
		return models.TariffEnvelope{}, err
	}

	var all []models.TariffRecord
	for _, r := range results {
		all = append(all, r...)
	}

	now := s.opts.Now()
	env := models.TariffEnvelope{
		ChartData: fallback.Chart(s.opts.Rand, s.opts.ChartRange, now),
	}
	if len(all) == 0 {
		s.opts.Logger.Warn().Msg("every source came back empty, serving fallback data")
		env.TariffData = fallback.Tariffs(now)
		env.Meta = fallbackMeta(now, nil)
	} else {
		env.TariffData = all
		env.Meta = meta(now, s.Sources(), models.StatusSuccess)
	}

	s.opts.observe(EndpointTariff, env.Status)
	return env, nil
}

// Fallback is the envelope served when Build failed outright.
func (s *TariffService) Fallback(cause error) models.TariffEnvelope {
	now := s.opts.Now()
	s.opts.observe(EndpointTariff, models.StatusFallback)
	return models.TariffEnvelope{
		TariffData: fallback.Tariffs(now),
		ChartData:  fallback.Chart(s.opts.Rand, s.opts.ChartRange, now),
		Meta:       fallbackMeta(now, cause),
	}
}
