package aggregator

import (
	"context"

	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/logging"
	"github.com/kjannette/tariff-monitor/internal/models"
	"github.com/kjannette/tariff-monitor/internal/sources"
)

type NewsService struct {
	srcs []sources.NewsSource
	opts Options
}

func NewNewsService(srcs []sources.NewsSource, opts Options) *NewsService {
	opts = opts.withDefaults()
	opts.Logger = logging.Component(opts.Logger, "news-aggregator")
	return &NewsService{srcs: srcs, opts: opts}
}

func (s *NewsService) Sources() []string { return names(s.srcs) }

// Build queries every news source. Items keep registration order, repeated
// ids are dropped (first one wins) and the list is cut to the news limit.
func (s *NewsService) Build(ctx context.Context) (models.NewsEnvelope, error) {
	s.opts.Logger.Info().Int("sources", len(s.srcs)).Msg("fetching trade news")

	results, err := fanOut(ctx, s.opts, s.srcs,
		sources.NewsSource.Name,
		func(ctx context.Context, src sources.NewsSource) []models.NewsItem { return src.FetchNews(ctx) },
	)
	if err != nil {
		return models.NewsEnvelope{}, err
	}

	var all []models.NewsItem
	seen := make(map[string]struct{})
	for _, items := range results {
		for _, it := range items {
			if _, dup := seen[it.ID]; dup {
				continue
			}
			seen[it.ID] = struct{}{}
			all = append(all, it)
		}
	}

	now := s.opts.Now()
	var env models.NewsEnvelope
	if len(all) == 0 {
		s.opts.Logger.Warn().Msg("every news source came back empty, serving fallback news")
		env.News = fallback.News(s.opts.Rand, s.fallbackCount())
		env.Meta = fallbackMeta(now, nil)
	} else {
		env.News = all[:min(len(all), s.opts.NewsLimit)]
		env.Meta = meta(now, s.Sources(), models.StatusSuccess)
	}

	s.opts.observe(EndpointNews, env.Status)
	return env, nil
}

func (s *NewsService) Fallback(cause error) models.NewsEnvelope {
	s.opts.observe(EndpointNews, models.StatusFallback)
	return models.NewsEnvelope{
		News: fallback.News(s.opts.Rand, s.fallbackCount()),
		Meta: fallbackMeta(s.opts.Now(), cause),
	}
}

func (s *NewsService) fallbackCount() int {
	return min(fallback.DefaultNewsCount, s.opts.NewsLimit)
}
