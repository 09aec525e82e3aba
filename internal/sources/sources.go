// Package sources holds one fetcher per upstream provider. A fetcher makes a
// single attempt against its provider and normalizes whatever comes back.
// It never returns an error: any failure is logged and yields an empty slice.
package sources

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/kjannette/tariff-monitor/internal/config"
	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/httputil"
	"github.com/kjannette/tariff-monitor/internal/models"
)

// maxBody caps how much of an upstream response is read.
const maxBody = 4 << 20

type TariffSource interface {
	Name() string
	FetchTariffs(ctx context.Context) []models.TariffRecord
}

type NewsSource interface {
	Name() string
	FetchNews(ctx context.Context) []models.NewsItem
}

// Options carries what every fetcher shares. Zero values are filled in by
// withDefaults.
type Options struct {
	HTTPClient *http.Client
	Rand       fallback.Rand
	Now        func() time.Time
	Logger     zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 15 * time.Second}
	}
	if o.Rand == nil {
		o.Rand = fallback.NewRand(0)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// StatusError is returned by get for a non-2xx answer.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("upstream returned status %d", e.Code)
}

type base struct {
	name string
	url  string
	opts Options
	log  zerolog.Logger
}

func newBase(name, url string, opts Options) base {
	opts = opts.withDefaults()
	return base{
		name: name,
		url:  url,
		opts: opts,
		log:  opts.Logger.With().Str("source", name).Logger(),
	}
}

func (b *base) Name() string { return b.name }

// get performs one GET and returns the body of a 2xx response. Every call
// logs exactly one line.
func (b *base) get(ctx context.Context, url, accept string) ([]byte, error) {
	start := time.Now()
	resp, err := httputil.Do(ctx, b.opts.HTTPClient, httputil.SingleAttempt, func() (*http.Request, error) {
		return httputil.NewGet(ctx, url, accept)
	})
	if err != nil {
		var hse *httputil.StatusError
		if errors.As(err, &hse) {
			b.log.Warn().Int("status", hse.Code).Str("url", url).Dur("took", time.Since(start)).Msg("fetch rejected")
			return nil, &StatusError{Code: hse.Code}
		}
		b.log.Warn().Err(err).Str("url", url).Dur("took", time.Since(start)).Msg("fetch failed")
		return nil, err
	}
	defer resp.Body.Close()

	if !httputil.OK(resp) {
		err := &StatusError{Code: resp.StatusCode}
		b.log.Warn().Int("status", resp.StatusCode).Str("url", url).Dur("took", time.Since(start)).Msg("fetch rejected")
		return nil, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		b.log.Warn().Err(err).Str("url", url).Msg("read body failed")
		return nil, fmt.Errorf("read body: %w", err)
	}
	b.log.Info().Int("status", resp.StatusCode).Int("bytes", len(body)).Dur("took", time.Since(start)).Msg("fetched")
	return body, nil
}

// NewTariffSources builds the enabled tariff fetchers in configuration order.
func NewTariffSources(cfg *config.Sources, opts Options) []TariffSource {
	var out []TariffSource
	for _, sc := range cfg.EnabledTariff() {
		switch sc.Name {
		case config.SourceEurostat:
			out = append(out, NewEurostat(sc, opts))
		case config.SourceEUTaric:
			out = append(out, NewTaric(sc, opts))
		case config.SourceUSTR:
			out = append(out, NewUSTR(sc, opts))
		}
	}
	return out
}

// NewNewsSources builds the enabled news fetchers in configuration order.
func NewNewsSources(cfg *config.Sources, opts Options) []NewsSource {
	var out []NewsSource
	for _, sc := range cfg.EnabledNews() {
		switch sc.Name {
		case config.SourceECNews:
			out = append(out, NewECNews(sc, opts))
		case config.SourceWTONews:
			out = append(out, NewWTONews(sc, opts))
		case config.SourceUSCommerce:
			out = append(out, NewUSCommerceNews(sc, opts))
		}
	}
	return out
}
