package ingest

import (
	"context"
	"math/rand"
	"time"

	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

// MockIngestor is a synthetic provider used for local runs and tests: it
// returns a price for each requested symbol jittered around a configured
// base price, tagged with a source name the mock normalizer recognizes.
type MockIngestor struct {
	SourceName string
	BasePrices map[string]float64
	JitterPct  float64
	rng        *rand.Rand
}

// NewMockIngestor builds a mock ingestor. sourceName should contain
// "mock" so the default normalizer registry recognizes it; jitterPct is
// the maximum fractional deviation applied to each base price (e.g. 0.01
// for ±1%).
func NewMockIngestor(sourceName string, basePrices map[string]float64, jitterPct float64) *MockIngestor {
	return &MockIngestor{
		SourceName: sourceName,
		BasePrices: basePrices,
		JitterPct:  jitterPct,
		rng:        rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (m *MockIngestor) Name() string { return m.SourceName }

func (m *MockIngestor) Fetch(ctx context.Context, symbols []string) ([]oraclecore.RawQuote, error) {
	now := time.Now().UnixMilli()
	quotes := make([]oraclecore.RawQuote, 0, len(symbols))
	for _, symbol := range symbols {
		base, ok := m.BasePrices[symbol]
		if !ok {
			continue
		}
		jitter := 1 + (m.rng.Float64()*2-1)*m.JitterPct
		quotes = append(quotes, oraclecore.RawQuote{
			Symbol:    symbol,
			Price:     base * jitter,
			Timestamp: now,
			Source:    m.SourceName,
		})
	}
	return quotes, nil
}
