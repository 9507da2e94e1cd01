package oraclecore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_Normalize_SymbolCanonicalization(t *testing.T) {
	reg := DefaultRegistry()
	now := time.Now().UnixMilli()

	tests := []struct {
		name   string
		raw    RawQuote
		wantUp string
	}{
		{"alphavantage suffix", RawQuote{Symbol: "AAPL.US", Price: 100, Timestamp: now, Source: "AlphaVantage"}, "AAPL"},
		{"finnhub prefix", RawQuote{Symbol: "US-GOOGL", Price: 100, Timestamp: now, Source: "Finnhub"}, "GOOGL"},
		{"yahoo index marker", RawQuote{Symbol: "^DJI", Price: 100, Timestamp: now, Source: "YahooFinance"}, "DJI"},
		{"mock lowercase padded", RawQuote{Symbol: "  aapl  ", Price: 100, Timestamp: now, Source: "mock"}, "AAPL"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cq, err := reg.Normalize(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUp, cq.Symbol)
		})
	}
}

func TestRegistry_Normalize_NoNormalizerFound(t *testing.T) {
	reg := DefaultRegistry()
	_, err := reg.Normalize(RawQuote{Symbol: "AAPL", Price: 100, Timestamp: time.Now().UnixMilli(), Source: "some-unknown-feed"})
	require.Error(t, err)
	assert.True(t, Is(err, KindNoNormalizerFound))
}

func TestRegistry_NormalizeBatch_PartialFailure(t *testing.T) {
	reg := DefaultRegistry()
	now := time.Now().UnixMilli()

	raws := []RawQuote{
		{Symbol: "AAPL", Price: 100, Timestamp: now, Source: "mock"},
		{Symbol: "", Price: 100, Timestamp: now, Source: "mock"}, // invalid symbol
		{Symbol: "MSFT", Price: -5, Timestamp: now, Source: "mock"}, // invalid price
		{Symbol: "GOOGL", Price: 100, Timestamp: now, Source: "totally-unrecognized"},
	}

	successes, failures := reg.NormalizeBatch(raws)
	assert.Len(t, successes, 1)
	assert.Len(t, failures, 3)
}

func TestNormalize_Idempotent(t *testing.T) {
	reg := DefaultRegistry()
	raw := RawQuote{Symbol: "aapl.us", Price: 100.123456, Timestamp: time.Now().UnixMilli(), Source: "AlphaVantage"}

	first, err := reg.Normalize(raw)
	require.NoError(t, err)

	second, err := reg.Normalize(RawQuote{
		Symbol:    first.Symbol,
		Price:     first.Price,
		Timestamp: first.OriginalTimestamp,
		Source:    "AlphaVantage",
	})
	require.NoError(t, err)

	assert.Equal(t, first.Symbol, second.Symbol)
	assert.Equal(t, first.Price, second.Price)
	assert.Equal(t, first.ISOTimestamp, second.ISOTimestamp)
}

func TestISOTimestamp_RoundTrips(t *testing.T) {
	reg := DefaultRegistry()
	ts := time.Now().UnixMilli()
	cq, err := reg.Normalize(RawQuote{Symbol: "AAPL", Price: 100, Timestamp: ts, Source: "mock"})
	require.NoError(t, err)

	parsed, err := time.Parse("2006-01-02T15:04:05.000Z", cq.ISOTimestamp)
	require.NoError(t, err)
	assert.Equal(t, ts, parsed.UnixMilli())
}
