package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/tariff-monitor/internal/aggregator"
	"github.com/kjannette/tariff-monitor/internal/config"
	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/models"
	"github.com/kjannette/tariff-monitor/internal/notifications"
	"github.com/kjannette/tariff-monitor/internal/sources"
	"github.com/kjannette/tariff-monitor/internal/testutil"
)

// deadServer wires real fetchers at upstreams that refuse connections.
func deadServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	dead := testutil.DeadURL(t)
	cfg := config.DefaultSources()
	for i := range cfg.Tariff {
		cfg.Tariff[i].URL = dead
		cfg.Tariff[i].FallbackURL = dead
	}
	for i := range cfg.News {
		cfg.News[i].URL = dead
	}

	now := testutil.Clock(testutil.FixedNow)
	srcOpts := sources.Options{Rand: fallback.NewRand(1), Now: now, Logger: zerolog.Nop()}
	aggOpts := aggregator.Options{
		SourceTimeout: 2 * time.Second,
		Rand:          fallback.NewRand(2),
		Now:           now,
		Logger:        zerolog.Nop(),
	}
	tariffs := aggregator.NewTariffService(sources.NewTariffSources(cfg, srcOpts), aggOpts)
	news := aggregator.NewNewsService(sources.NewNewsSources(cfg, srcOpts), aggOpts)
	return NewServer(tariffs, news, 0, apiKey, "", zerolog.Nop())
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestTariffData_TotalFailureStill200(t *testing.T) {
	s := deadServer(t, "")
	rr := get(t, s.Handler(), "/functions/v1/fetch-tariff-data")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.Equal(t, "*", rr.Header().Get("Access-Control-Allow-Origin"))

	var env models.TariffEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, models.StatusFallback, env.Status)
	assert.Equal(t, []string{models.FallbackSource}, env.Sources)
	assert.Len(t, env.TariffData, 5)
	assert.NotEmpty(t, env.ChartData)
	for _, r := range env.TariffData {
		assert.True(t, fallback.IsPercent(r.Rate), r.Rate)
		assert.True(t, fallback.IsPercent(r.Change), r.Change)
	}
}

func TestTradeNews_TotalFailureStill200(t *testing.T) {
	s := deadServer(t, "")
	rr := get(t, s.Handler(), "/functions/v1/fetch-trade-news")

	require.Equal(t, http.StatusOK, rr.Code)

	var env models.NewsEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, models.StatusFallback, env.Status)
	assert.Len(t, env.News, fallback.DefaultNewsCount)

	ids := map[string]bool{}
	for _, n := range env.News {
		assert.False(t, ids[n.ID], "duplicate id %s", n.ID)
		ids[n.ID] = true
	}
}

func TestTariffData_ServesLiveData(t *testing.T) {
	up := testutil.NewUpstream(t, http.StatusOK, "application/json",
		`[{"product":"Steel","tariff_rate":25,"change_percent":5}]`)
	cfg := config.DefaultSources()
	cfg.Tariff = []config.SourceConfig{{Name: config.SourceUSTR, URL: up.URL, Enabled: true}}

	opts := aggregator.Options{Now: testutil.Clock(testutil.FixedNow), Rand: fallback.NewRand(3), Logger: zerolog.Nop()}
	tariffs := aggregator.NewTariffService(sources.NewTariffSources(cfg, sources.Options{Logger: zerolog.Nop()}), opts)
	news := aggregator.NewNewsService(nil, opts)
	s := NewServer(tariffs, news, 0, "", "", zerolog.Nop())

	rr := get(t, s.Handler(), "/functions/v1/fetch-tariff-data")
	require.Equal(t, http.StatusOK, rr.Code)

	var env models.TariffEnvelope
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
	assert.Equal(t, models.StatusSuccess, env.Status)
	assert.Equal(t, []string{config.SourceUSTR}, env.Sources)
	require.Len(t, env.TariffData, 1)
	assert.Equal(t, "United States", env.TariffData[0].Country)
	assert.Equal(t, "25%", env.TariffData[0].Rate)
}

type brokenTariffs struct{ panic bool }

func (b brokenTariffs) Build(ctx context.Context) (models.TariffEnvelope, error) {
	if b.panic {
		panic("nil map write")
	}
	return models.TariffEnvelope{}, errors.New("chart generator misconfigured")
}

func (b brokenTariffs) Fallback(cause error) models.TariffEnvelope {
	env := models.TariffEnvelope{
		TariffData: fallback.Tariffs(testutil.FixedNow),
		Meta: models.Meta{
			LastUpdated: testutil.FixedNow,
			Sources:     []string{models.FallbackSource},
			Status:      models.StatusFallback,
		},
	}
	if cause != nil {
		env.Error = cause.Error()
	}
	return env
}

func (b brokenTariffs) Sources() []string { return nil }

func TestTariffData_InternalErrorBecomesFallback(t *testing.T) {
	news := aggregator.NewNewsService(nil, aggregator.Options{Logger: zerolog.Nop()})

	for _, panicking := range []bool{false, true} {
		s := NewServer(brokenTariffs{panic: panicking}, news, 0, "", "", zerolog.Nop())
		rr := get(t, s.Handler(), "/functions/v1/fetch-tariff-data")

		require.Equal(t, http.StatusOK, rr.Code)
		var env models.TariffEnvelope
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &env))
		assert.Equal(t, models.StatusFallback, env.Status)
		assert.NotEmpty(t, env.Error)
		assert.Len(t, env.TariffData, 5)
	}
}

func TestHealth(t *testing.T) {
	s := deadServer(t, "secret")
	rr := get(t, s.Handler(), "/health")

	require.Equal(t, http.StatusOK, rr.Code)
	var body healthResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, []string{config.SourceEurostat, config.SourceEUTaric, config.SourceUSTR}, body.Services.TariffSources)
	assert.Len(t, body.Services.NewsSources, 3)
}

func TestRoutes_RequireKeyAndAllowPreflight(t *testing.T) {
	s := deadServer(t, "secret")

	rr := get(t, s.Handler(), "/functions/v1/fetch-trade-news")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req := httptest.NewRequest(http.MethodOptions, "/functions/v1/fetch-trade-news", nil)
	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Empty(t, rr.Body.String())
	assert.NotEmpty(t, rr.Header().Get(requestIDHeader))
}

func TestTariffData_AbandonedRequestSendsNoAlert(t *testing.T) {
	alerts := notifications.NewAlerter(notifications.NewSender("", "Test", zerolog.Nop()))
	opts := aggregator.Options{Logger: zerolog.Nop(), Notifier: alerts}
	s := NewServer(aggregator.NewTariffService(nil, opts), aggregator.NewNewsService(nil, opts), 0, "", "", zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/functions/v1/fetch-tariff-data", nil).WithContext(ctx)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)
	alerts.Wait()

	assert.Empty(t, rr.Body.String())
	_, seen := alerts.Status(aggregator.EndpointTariff)
	assert.False(t, seen)

	get(t, s.Handler(), "/functions/v1/fetch-tariff-data")
	alerts.Wait()
	st, seen := alerts.Status(aggregator.EndpointTariff)
	require.True(t, seen)
	assert.Equal(t, models.StatusFallback, st)
}
