package oraclecore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func canonicalAt(symbol string, price float64, age time.Duration, source CanonicalSource, origSource string) CanonicalQuote {
	ts := time.Now().Add(-age).UnixMilli()
	return CanonicalQuote{
		Symbol:            symbol,
		Price:             price,
		OriginalTimestamp: ts,
		Source:            source,
		Audit:             AuditMetadata{OriginalSource: origSource},
	}
}

func TestEngine_Aggregate_WeightedMeanHomogeneousSources(t *testing.T) {
	engine := NewEngine(NewWeightRegistry(nil))
	quotes := []CanonicalQuote{
		canonicalAt("AAPL", 100, time.Second, SourceAlphaVantage, "alpha-1"),
		canonicalAt("AAPL", 102, time.Second, SourceFinnhub, "finnhub-1"),
		canonicalAt("AAPL", 98, time.Second, SourceYahooFinance, "yahoo-1"),
	}

	result, err := engine.Aggregate("AAPL", quotes, DefaultOptions())
	require.NoError(t, err)
	assert.InDelta(t, 100.0, result.Price, 1e-9)
	assert.Equal(t, MethodWeightedMean, result.Method)
	assert.Equal(t, 3, result.Metrics.SourceCount)
	assert.InDelta(t, 4.0, result.Metrics.SpreadPercent, 0.1)
}

func TestEngine_Aggregate_WindowFilter(t *testing.T) {
	engine := NewEngine(NewWeightRegistry(nil))
	quotes := []CanonicalQuote{
		canonicalAt("AAPL", 100, time.Second, SourceAlphaVantage, "alpha-1"),
		canonicalAt("AAPL", 101, time.Second, SourceFinnhub, "finnhub-1"),
		canonicalAt("AAPL", 99, 50*time.Second, SourceYahooFinance, "yahoo-1"),
		canonicalAt("AAPL", 105, 50*time.Second, SourceMock, "mock-1"),
	}

	opts := Options{MinSources: 2, WindowMillis: 30_000, Method: MethodWeightedMean}
	result, err := engine.Aggregate("AAPL", quotes, opts)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Metrics.SourceCount)
}

func TestEngine_Aggregate_InsufficientRecentSources(t *testing.T) {
	engine := NewEngine(NewWeightRegistry(nil))
	quotes := []CanonicalQuote{
		canonicalAt("AAPL", 100, time.Second, SourceAlphaVantage, "alpha-1"),
		canonicalAt("AAPL", 101, time.Second, SourceFinnhub, "finnhub-1"),
		canonicalAt("AAPL", 99, 50*time.Second, SourceYahooFinance, "yahoo-1"),
		canonicalAt("AAPL", 105, 50*time.Second, SourceMock, "mock-1"),
	}

	opts := Options{MinSources: 3, WindowMillis: 30_000, Method: MethodWeightedMean}
	_, err := engine.Aggregate("AAPL", quotes, opts)
	require.Error(t, err)
	assert.True(t, Is(err, KindInsufficientRecentSources))
}

func TestEngine_Aggregate_EmptyQuotesFails(t *testing.T) {
	engine := NewEngine(NewWeightRegistry(nil))
	_, err := engine.Aggregate("AAPL", nil, DefaultOptions())
	require.Error(t, err)
	assert.True(t, Is(err, KindEmptyInput))
}

func TestEngine_Aggregate_MinSourcesZeroFails(t *testing.T) {
	engine := NewEngine(NewWeightRegistry(nil))
	quotes := []CanonicalQuote{canonicalAt("AAPL", 100, time.Second, SourceMock, "mock-1")}
	_, err := engine.Aggregate("AAPL", quotes, Options{MinSources: 0, WindowMillis: 30_000, Method: MethodWeightedMean})
	require.Error(t, err)
	assert.True(t, Is(err, KindValidationFailure))
}

func TestEngine_Aggregate_SymbolMismatch(t *testing.T) {
	engine := NewEngine(NewWeightRegistry(nil))
	quotes := []CanonicalQuote{
		canonicalAt("AAPL", 100, time.Second, SourceAlphaVantage, "a"),
		canonicalAt("MSFT", 101, time.Second, SourceFinnhub, "b"),
		canonicalAt("AAPL", 99, time.Second, SourceYahooFinance, "c"),
	}
	_, err := engine.Aggregate("AAPL", quotes, DefaultOptions())
	require.Error(t, err)
	assert.True(t, Is(err, KindSymbolMismatch))
}

func TestEngine_Aggregate_WindowBoundsOrdering(t *testing.T) {
	engine := NewEngine(NewWeightRegistry(nil))
	quotes := []CanonicalQuote{
		canonicalAt("AAPL", 100, 3*time.Second, SourceAlphaVantage, "a"),
		canonicalAt("AAPL", 101, 1*time.Second, SourceFinnhub, "b"),
		canonicalAt("AAPL", 99, 2*time.Second, SourceYahooFinance, "c"),
	}
	result, err := engine.Aggregate("AAPL", quotes, DefaultOptions())
	require.NoError(t, err)
	assert.LessOrEqual(t, result.WindowStart, result.WindowEnd)
	assert.LessOrEqual(t, result.WindowEnd, result.ComputedAt)
}

func TestEngine_AggregateMany_PartialFailure(t *testing.T) {
	engine := NewEngine(NewWeightRegistry(nil))
	bySymbol := map[string][]CanonicalQuote{
		"AAPL": {
			canonicalAt("AAPL", 100, time.Second, SourceAlphaVantage, "a"),
			canonicalAt("AAPL", 101, time.Second, SourceFinnhub, "b"),
			canonicalAt("AAPL", 99, time.Second, SourceYahooFinance, "c"),
		},
		"MSFT": {
			canonicalAt("MSFT", 200, time.Second, SourceAlphaVantage, "a"),
		},
	}
	results := engine.AggregateMany(bySymbol, DefaultOptions())
	assert.Contains(t, results, "AAPL")
	assert.NotContains(t, results, "MSFT")
}

func TestComputeConfidence_MonotonicInSourceCount(t *testing.T) {
	low := computeConfidence(3, 5, 2)
	high := computeConfidence(6, 5, 2)
	assert.GreaterOrEqual(t, high, low)
}
