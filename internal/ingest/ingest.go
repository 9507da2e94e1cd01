// Package ingest defines the ingestor collaborator contract: the uniform
// adapter the scheduler queries for raw quotes, whether the underlying
// provider is pull-based (HTTP) or push-based (a streaming channel).
// Concrete provider clients (Alpha Vantage, Finnhub, Yahoo Finance HTTP
// clients) are external collaborators and out of scope here; only the
// contract and a mock reference implementation live in this package.
package ingest

import (
	"context"

	"github.com/aristath/oraclefeed/pkg/oraclecore"
)

// Ingestor pulls raw quotes for a set of symbols from one provider.
type Ingestor interface {
	Name() string
	Fetch(ctx context.Context, symbols []string) ([]oraclecore.RawQuote, error)
}

// StreamingIngestor additionally exposes a channel of raw quote events.
// Malformed payloads are expected to be dropped with a logged validation
// error by the implementation rather than propagated as channel errors.
type StreamingIngestor interface {
	Ingestor
	Stream(ctx context.Context, symbols []string) (<-chan oraclecore.RawQuote, error)
}
