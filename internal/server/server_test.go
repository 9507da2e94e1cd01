package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/oraclefeed/internal/cache"
	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

func TestServer_Health_Ready(t *testing.T) {
	s := New(Config{Logger: zerolog.Nop(), ReadyCheck: func() bool { return true }})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_Health_NotReady(t *testing.T) {
	s := New(Config{Logger: zerolog.Nop(), ReadyCheck: func() bool { return false }})

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Snapshot_ReflectsCache(t *testing.T) {
	c := cache.New()
	c.Update(oraclecore.ConsensusPrice{Symbol: "AAPL", Price: 100}, nil)

	s := New(Config{Logger: zerolog.Nop(), Cache: c})

	req := httptest.NewRequest(http.MethodGet, "/debug/snapshot", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "AAPL")
}

func TestServer_Metrics_Reachable(t *testing.T) {
	s := New(Config{Logger: zerolog.Nop()})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
