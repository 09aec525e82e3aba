package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/kjannette/tariff-monitor/internal/models"
)

// TariffBuilder produces the tariff envelope for one request.
type TariffBuilder interface {
	Build(ctx context.Context) (models.TariffEnvelope, error)
	Fallback(cause error) models.TariffEnvelope
	Sources() []string
}

// NewsBuilder produces the news envelope for one request.
type NewsBuilder interface {
	Build(ctx context.Context) (models.NewsEnvelope, error)
	Fallback(cause error) models.NewsEnvelope
	Sources() []string
}

type Server struct {
	tariffs    TariffBuilder
	news       NewsBuilder
	httpServer *http.Server
	apiKey     string
	log        zerolog.Logger
	now        func() time.Time
}

func NewServer(tariffs TariffBuilder, news NewsBuilder, port int, apiKey, corsOrigin string, log zerolog.Logger) *Server {
	s := &Server{
		tariffs: tariffs,
		news:    news,
		apiKey:  apiKey,
		log:     log.With().Str("component", "api").Logger(),
		now:     time.Now,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /functions/v1/fetch-tariff-data", s.handleTariffData)
	mux.HandleFunc("GET /functions/v1/fetch-trade-news", s.handleTradeNews)

	// Health check (no auth required)
	mux.HandleFunc("GET /health", s.handleHealth)

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      s.requestMiddleware(corsMiddleware(s.authMiddleware(mux), corsOrigin)),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return s
}

func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Start() error {
	s.log.Info().Str("addr", "http://localhost"+s.httpServer.Addr).Msg("REST API server started")
	s.log.Info().Str("url", "http://localhost"+s.httpServer.Addr+"/health").Msg("health check")
	if s.apiKey != "" {
		s.log.Info().Msg("authentication: enabled (Bearer token or apikey header)")
	} else {
		s.log.Info().Msg("authentication: disabled (no API_KEY configured)")
	}
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// --- handlers ---

func (s *Server) handleTariffData(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())
	env, err := buildSafely(r.Context(), s.tariffs.Build)
	if err != nil && r.Context().Err() != nil {
		log.Debug().Err(err).Msg("client went away")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("tariff data build failed, serving fallback")
		env = s.tariffs.Fallback(err)
	}
	writeJSON(w, http.StatusOK, env)
}

func (s *Server) handleTradeNews(w http.ResponseWriter, r *http.Request) {
	log := zerolog.Ctx(r.Context())
	env, err := buildSafely(r.Context(), s.news.Build)
	if err != nil && r.Context().Err() != nil {
		log.Debug().Err(err).Msg("client went away")
		return
	}
	if err != nil {
		log.Error().Err(err).Msg("trade news build failed, serving fallback")
		env = s.news.Fallback(err)
	}
	writeJSON(w, http.StatusOK, env)
}

// buildSafely runs build and turns a panic into an error.
func buildSafely[T any](ctx context.Context, build func(context.Context) (T, error)) (env T, err error) {
	defer func() {
		if v := recover(); v != nil {
			var zero T
			env, err = zero, fmt.Errorf("internal error: %v", v)
		}
	}()
	return build(ctx)
}

// --- middleware ---

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.apiKey == "" || r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		if key := r.Header.Get("apikey"); key != "" && key == s.apiKey {
			next.ServeHTTP(w, r)
			return
		}

		auth := r.Header.Get("Authorization")
		if auth == "" && r.Header.Get("apikey") == "" {
			writeError(w, http.StatusUnauthorized, "missing Authorization header")
			return
		}

		token := strings.TrimPrefix(auth, "Bearer ")
		if token == auth || token != s.apiKey {
			writeError(w, http.StatusUnauthorized, "invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

func corsMiddleware(next http.Handler, allowOrigin string) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", allowOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// --- response helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
