package dashboard

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kjannette/tariff-monitor/internal/fallback"
	"github.com/kjannette/tariff-monitor/internal/models"
	"github.com/kjannette/tariff-monitor/internal/testutil"
)

type invokerFunc func(ctx context.Context, function string, out any) error

func (f invokerFunc) Invoke(ctx context.Context, function string, out any) error {
	return f(ctx, function, out)
}

func testOpts() Options {
	return Options{Now: testutil.Clock(testutil.FixedNow), Logger: zerolog.Nop()}
}

func TestTariffData_TransportFailureShowsLocalFallback(t *testing.T) {
	store := NewTariffData(NewHTTPInvoker(testutil.DeadURL(t), "anon"), testOpts())

	st := store.Fetch(context.Background())

	assert.False(t, st.Loading)
	assert.NotEmpty(t, st.Error)
	assert.Len(t, st.Data.TariffData, 4)
	assert.Len(t, st.Data.ChartData, 12)
	assert.Equal(t, []string{models.FallbackSource}, st.Data.Sources)
	assert.Equal(t, models.StatusFallback, st.Data.Status)
	assert.Equal(t, st, store.State())
}

func TestTariffData_Success(t *testing.T) {
	want := fallback.ClientTariffEnvelope(testutil.FixedNow)
	want.Sources = []string{"USTR"}
	want.Status = models.StatusSuccess
	body, err := json.Marshal(want)
	require.NoError(t, err)

	up := testutil.NewUpstream(t, http.StatusOK, "application/json", string(body))
	store := NewTariffData(NewHTTPInvoker(up.URL+"/", "anon-key"), testOpts())

	st := store.Fetch(context.Background())

	require.Empty(t, st.Error)
	assert.False(t, st.Loading)
	assert.Equal(t, []string{"USTR"}, st.Data.Sources)
	assert.Equal(t, models.StatusSuccess, st.Data.Status)

	h := up.LastHeader()
	assert.Equal(t, "anon-key", h.Get("apikey"))
	assert.Equal(t, "Bearer anon-key", h.Get("Authorization"))
	assert.Equal(t, "application/json", h.Get("Accept"))
}

func TestHTTPInvoker_PathAndStatus(t *testing.T) {
	for _, status := range []int{http.StatusServiceUnavailable, http.StatusNotFound} {
		var path atomic.Value
		up := testutil.NewUpstreamFunc(t, func(w http.ResponseWriter, r *http.Request) {
			path.Store(r.URL.Path)
			w.WriteHeader(status)
		})

		var out models.NewsEnvelope
		err := NewHTTPInvoker(up.URL, "").Invoke(context.Background(), FunctionTradeNews, &out)

		var se *StatusError
		require.ErrorAs(t, err, &se)
		assert.Equal(t, status, se.Code)
		assert.Equal(t, "/functions/v1/fetch-trade-news", path.Load())
		assert.Equal(t, 1, up.Hits())
		assert.Empty(t, up.LastHeader().Get("apikey"))
	}
}

func TestHTTPInvoker_BadJSON(t *testing.T) {
	up := testutil.NewUpstream(t, http.StatusOK, "application/json", "{not json")
	store := NewTradeNews(NewHTTPInvoker(up.URL, ""), testOpts())

	st := store.Fetch(context.Background())

	assert.Contains(t, st.Error, "decode")
	assert.Equal(t, fallback.ClientNews(), st.Data.News)
}

func TestTradeNews_StartsWithLocalNews(t *testing.T) {
	store := NewTradeNews(invokerFunc(func(ctx context.Context, fn string, out any) error {
		return nil
	}), testOpts())

	st := store.State()
	assert.False(t, st.Loading)
	assert.Empty(t, st.Error)
	assert.Len(t, st.Data.News, 3)
}

func TestStore_DoubleRefetchSettles(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	inv := invokerFunc(func(ctx context.Context, fn string, out any) error {
		if calls.Add(1) == 1 {
			close(started)
			<-ctx.Done()
			return ctx.Err()
		}
		out.(*models.TariffEnvelope).Sources = []string{"second"}
		return nil
	})
	store := NewTariffData(inv, testOpts())

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		store.Refetch(context.Background())
	}()
	<-started

	st := store.Refetch(context.Background())
	wg.Wait()

	assert.False(t, st.Loading)
	final := store.State()
	assert.False(t, final.Loading)
	assert.Empty(t, final.Error, "superseded cancellation must not surface")
	assert.Equal(t, []string{"second"}, final.Data.Sources)
	assert.Equal(t, uint64(2), final.Seq)
}

func TestStore_StaleResponseDiscarded(t *testing.T) {
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})
	inv := invokerFunc(func(ctx context.Context, fn string, out any) error {
		env := out.(*models.TariffEnvelope)
		if calls.Add(1) == 1 {
			close(started)
			<-release
			env.Sources = []string{"stale"}
			return nil
		}
		env.Sources = []string{"fresh"}
		return nil
	})
	store := NewTariffData(inv, testOpts())

	done := make(chan State[models.TariffEnvelope])
	go func() { done <- store.Fetch(context.Background()) }()
	<-started

	fresh := store.Fetch(context.Background())
	require.Equal(t, []string{"fresh"}, fresh.Data.Sources)

	close(release)
	late := <-done

	assert.Equal(t, []string{"fresh"}, late.Data.Sources)
	assert.Equal(t, []string{"fresh"}, store.State().Data.Sources)
	assert.False(t, store.State().Loading)
}

func TestStore_ErrorClearsOnSuccess(t *testing.T) {
	fail := true
	inv := invokerFunc(func(ctx context.Context, fn string, out any) error {
		if fail {
			return errors.New("network down")
		}
		out.(*models.TariffEnvelope).Status = models.StatusSuccess
		return nil
	})
	store := NewTariffData(inv, testOpts())

	st := store.Fetch(context.Background())
	require.Equal(t, "network down", st.Error)

	fail = false
	st = store.Fetch(context.Background())
	assert.Empty(t, st.Error)
	assert.Equal(t, models.StatusSuccess, st.Data.Status)
}

func TestStore_Subscribe(t *testing.T) {
	inv := invokerFunc(func(ctx context.Context, fn string, out any) error { return nil })
	store := NewTariffData(inv, testOpts())

	var seen []bool
	unsubscribe := store.Subscribe(func(st State[models.TariffEnvelope]) {
		seen = append(seen, st.Loading)
	})
	store.Fetch(context.Background())
	assert.Equal(t, []bool{true, false}, seen)

	unsubscribe()
	store.Fetch(context.Background())
	assert.Len(t, seen, 2)
}

func TestStore_SubscribersEndOnLatestState(t *testing.T) {
	inv := invokerFunc(func(ctx context.Context, fn string, out any) error {
		out.(*models.TariffEnvelope).Status = models.StatusSuccess
		return nil
	})
	store := NewTariffData(inv, testOpts())

	var mu sync.Mutex
	var delivered []uint64
	store.Subscribe(func(st State[models.TariffEnvelope]) {
		mu.Lock()
		delivered = append(delivered, st.Seq)
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 25 {
				store.Refetch(context.Background())
			}
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, delivered)
	for i := 1; i < len(delivered); i++ {
		require.GreaterOrEqual(t, delivered[i], delivered[i-1], "delivery went back to an older request")
	}
	final := store.State()
	assert.False(t, final.Loading)
	assert.Equal(t, final.Seq, delivered[len(delivered)-1])
}

func TestPoller_StartStop(t *testing.T) {
	var ticks atomic.Int32
	p := NewPoller(5*time.Millisecond, func(ctx context.Context) { ticks.Add(1) }, zerolog.Nop())

	assert.False(t, p.Running())
	p.Start()
	p.Start()
	assert.True(t, p.Running())

	require.Eventually(t, func() bool { return ticks.Load() >= 2 }, time.Second, time.Millisecond)

	p.Stop()
	assert.False(t, p.Running())
	after := ticks.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, after, ticks.Load())
	p.Stop()
}

func TestRender(t *testing.T) {
	env := fallback.ClientTariffEnvelope(testutil.FixedNow)
	var buf bytes.Buffer
	RenderTariffs(&buf, State[models.TariffEnvelope]{Data: env, Error: "connection refused"})

	out := buf.String()
	assert.Contains(t, out, "| Country")
	assert.Contains(t, out, "status=fallback sources=Fallback")
	assert.Contains(t, out, "error: connection refused")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	// header, separator and four rows share one display width
	width := len([]rune(lines[1]))
	for _, l := range lines[2:6] {
		assert.Equal(t, width, len([]rune(l)), l)
	}

	buf.Reset()
	RenderNews(&buf, State[models.NewsEnvelope]{Data: models.NewsEnvelope{News: fallback.ClientNews()}, Loading: true})
	assert.Contains(t, buf.String(), "(loading)")
}
