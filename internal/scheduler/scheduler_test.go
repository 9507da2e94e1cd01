package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/oraclefeed/internal/cache"
	"github.com/aristath/oraclefeed/internal/ingest"
	"github.com/aristath/oraclefeed/internal/retry"
	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

func testOrchestrator(t *testing.T) (*Orchestrator, *cache.Cache) {
	t.Helper()
	c := cache.New()
	mockA := ingest.NewMockIngestor("mock-alpha", map[string]float64{"AAPL": 100}, 0)
	mockB := ingest.NewMockIngestor("mock-beta", map[string]float64{"AAPL": 100}, 0)
	mockC := ingest.NewMockIngestor("mock-gamma", map[string]float64{"AAPL": 100}, 0)

	orch := New(Config{
		Symbols:     []string{"AAPL"},
		Ingestors:   []ingest.Ingestor{mockA, mockB, mockC},
		Registry:    oraclecore.DefaultRegistry(),
		Engine:      oraclecore.NewEngine(oraclecore.NewWeightRegistry(nil)),
		Cache:       c,
		Options:     oraclecore.Options{MinSources: 3, WindowMillis: 60_000, Method: oraclecore.MethodWeightedMean},
		RetryPolicy: retry.Policy{MaxAttempts: 1, Delay: time.Millisecond, Mode: retry.Fixed},
		Logger:      zerolog.Nop(),
	})
	return orch, c
}

func TestOrchestrator_RunOnce_PopulatesCache(t *testing.T) {
	orch, c := testOrchestrator(t)

	report, err := orch.RunOnce(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)
	assert.Contains(t, report.SucceededSymbols, "AAPL")

	entry, ok := c.Get("AAPL")
	require.True(t, ok)
	assert.InDelta(t, 100.0, entry.LastConsensus.Price, 1e-9)
}

func TestOrchestrator_RunOnce_SkipsWhileInFlight(t *testing.T) {
	orch, _ := testOrchestrator(t)

	orch.mu.Lock()
	orch.inFlight = true
	orch.mu.Unlock()

	report, err := orch.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Nil(t, report)

	orch.mu.Lock()
	orch.inFlight = false
	orch.mu.Unlock()
}

func TestOrchestrator_RunOnce_NeverOverlaps(t *testing.T) {
	orch, _ := testOrchestrator(t)

	var wg sync.WaitGroup
	results := make([]*CycleReport, 5)
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, _ := orch.RunOnce(context.Background())
			results[i] = r
		}(i)
	}
	wg.Wait()

	nonNil := 0
	for _, r := range results {
		if r != nil {
			nonNil++
		}
	}
	assert.GreaterOrEqual(t, nonNil, 1)
}

func TestOrchestrator_Start_SecondStartIsNoOp(t *testing.T) {
	orch, _ := testOrchestrator(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch.Start(ctx)
	time.Sleep(10 * time.Millisecond)
	orch.Start(ctx)

	assert.True(t, orch.running)
	orch.Stop()
}

func TestMarketHours_IsOpen_UnknownExchangeAlwaysOpen(t *testing.T) {
	mh := NewDefaultMarketHours()
	assert.True(t, mh.IsOpen("NOT-A-REAL-EXCHANGE", time.Now()))
}
