// Package aggregator fans out to every registered source, merges what comes
// back in registration order, and substitutes generated data when nothing did.
package aggregator

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/models"
)

const tracerName = "github.com/kjannette/tariff-monitor/internal/aggregator"

// Endpoint names passed to the Notifier.
const (
	EndpointTariff = "fetch-tariff-data"
	EndpointNews   = "fetch-trade-news"
)

// Notifier hears the status of every built envelope.
type Notifier interface {
	Observe(endpoint string, status models.Status)
}

type Options struct {
	// SourceTimeout bounds each source call. Expiry counts as an empty result.
	SourceTimeout time.Duration
	ChartRange    fallback.ChartRange
	NewsLimit     int
	Rand          fallback.Rand
	Now           func() time.Time
	Logger        zerolog.Logger
	Notifier      Notifier
	Tracer        trace.Tracer
}

func (o Options) withDefaults() Options {
	if o.SourceTimeout <= 0 {
		o.SourceTimeout = 8 * time.Second
	}
	if o.NewsLimit <= 0 || o.NewsLimit > models.MaxNewsItems {
		o.NewsLimit = models.MaxNewsItems
	}
	if o.Rand == nil {
		o.Rand = fallback.NewRand(0)
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Tracer == nil {
		o.Tracer = otel.Tracer(tracerName)
	}
	return o
}

// PanicError is what a panicking source turns into.
type PanicError struct {
	Source string
	Value  any
	Stack  []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("source %s panicked: %v", e.Source, e.Value)
}

// fanOut calls fetch for every source concurrently, each under its own
// deadline, and returns the results slotted by source index.
func fanOut[S any, T any](
	ctx context.Context,
	opts Options,
	srcs []S,
	name func(S) string,
	fetch func(context.Context, S) []T,
) ([][]T, error) {
	results := make([][]T, len(srcs))
	g, gctx := errgroup.WithContext(ctx)

	for i, src := range srcs {
		g.Go(func() (err error) {
			srcName := name(src)
			sctx, span := opts.Tracer.Start(gctx, "source.fetch",
				trace.WithAttributes(attribute.String("source.name", srcName)))
			defer span.End()

			defer func() {
				if r := recover(); r != nil {
					err = &PanicError{Source: srcName, Value: r, Stack: debug.Stack()}
					span.RecordError(err)
					span.SetStatus(codes.Error, "panic")
				}
			}()

			sctx, cancel := context.WithTimeout(sctx, opts.SourceTimeout)
			defer cancel()

			start := time.Now()
			items := fetch(sctx, src)
			results[i] = items

			span.SetAttributes(attribute.Int("source.items", len(items)))
			lvl := zerolog.DebugLevel
			if len(items) == 0 {
				lvl = zerolog.InfoLevel
			}
			opts.Logger.WithLevel(lvl).Str("source", srcName).Int("items", len(items)).Dur("took", time.Since(start)).Msg("source done")
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("request abandoned: %w", err)
	}
	return results, nil
}

func names[S interface{ Name() string }](srcs []S) []string {
	out := make([]string, len(srcs))
	for i, s := range srcs {
		out[i] = s.Name()
	}
	return out
}

func meta(now time.Time, sources []string, status models.Status) models.Meta {
	return models.Meta{LastUpdated: now.UTC(), Sources: sources, Status: status}
}

func fallbackMeta(now time.Time, err error) models.Meta {
	m := meta(now, []string{models.FallbackSource}, models.StatusFallback)
	if err != nil {
		m.Error = err.Error()
	}
	return m
}

func (o Options) observe(endpoint string, status models.Status) {
	if o.Notifier != nil {
		o.Notifier.Observe(endpoint, status)
	}
}
