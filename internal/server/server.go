// Package server exposes the debug HTTP surface: health check, a
// last-value snapshot, and a prometheus scrape endpoint. None of this
// participates in the normalization/aggregation core itself.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/aristath/oraclefeed/internal/cache"
)

// Config configures the debug server.
type Config struct {
	Port       int
	DevMode    bool
	Cache      *cache.Cache
	Logger     zerolog.Logger
	ReadyCheck func() bool
}

// Server wraps a chi router exposing the debug surface.
type Server struct {
	router chi.Router
	log    zerolog.Logger
	cfg    Config
}

// New builds the router with the standard middleware stack: panic
// recovery, request IDs, real-IP extraction, structured request logging,
// a request timeout, and CORS, with response compression only outside
// dev mode.
func New(cfg Config) *Server {
	log := cfg.Logger.With().Str("component", "server").Logger()
	s := &Server{router: chi.NewRouter(), log: log, cfg: cfg}

	r := s.router
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.loggingMiddleware)
	r.Use(middleware.Timeout(10 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
	}))
	if !cfg.DevMode {
		r.Use(middleware.Compress(5))
	}

	r.Get("/health", s.handleHealth)
	r.Get("/debug/snapshot", s.handleSnapshot)
	r.Handle("/metrics", promhttp.Handler())

	return s
}

// Router returns the underlying chi router, e.g. for http.ListenAndServe.
func (s *Server) Router() chi.Router {
	return s.router
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ready := true
	if s.cfg.ReadyCheck != nil {
		ready = s.cfg.ReadyCheck()
	}
	status := http.StatusOK
	if !ready {
		status = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"ready": ready})
}

// snapshotEntry is the debug surface's per-symbol view.
type snapshotEntry struct {
	LastAggregated any   `json:"lastAggregated"`
	LastNormalized any   `json:"lastNormalized"`
	UpdatedAt      int64 `json:"updatedAt"`
}

func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot := make(map[string]snapshotEntry)
	if s.cfg.Cache != nil {
		for symbol, entry := range s.cfg.Cache.Snapshot() {
			snapshot[symbol] = snapshotEntry{
				LastAggregated: entry.LastConsensus,
				LastNormalized: entry.LastCanonicalSet,
				UpdatedAt:      entry.LastUpdatedAt.UnixMilli(),
			}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snapshot)
}
