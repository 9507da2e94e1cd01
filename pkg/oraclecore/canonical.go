package oraclecore

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// CanonicalSource is the closed enum of provider identities the core
// recognizes once a raw quote has been normalized.
type CanonicalSource string

const (
	SourceAlphaVantage CanonicalSource = "alpha_vantage"
	SourceFinnhub      CanonicalSource = "finnhub"
	SourceYahooFinance CanonicalSource = "yahoo_finance"
	SourceMock         CanonicalSource = "mock"
	SourceUnknown      CanonicalSource = "unknown"
)

// AuditMetadata records what the Canonical Record Builder changed while
// normalizing a single raw quote, for provenance and debugging.
type AuditMetadata struct {
	OriginalSource    string
	OriginalSymbol    string
	NormalizedAt      time.Time
	NormalizerVersion string
	WasTransformed    bool
	Transformations   []string
}

// CanonicalQuote is the internal normalized form every aggregator strategy
// consumes. Read-only once emitted by the Canonical Record Builder.
type CanonicalQuote struct {
	Symbol            string
	Price             float64
	ISOTimestamp      string
	OriginalTimestamp int64
	Source            CanonicalSource
	Audit             AuditMetadata
}

// buildCanonical runs the Canonical Record Builder: the field/value
// validation and transformation steps shared by every normalizer variant,
// parameterized only by the variant's symbol-rewrite rule and identity.
func buildCanonical(raw RawQuote, rewriteSymbol func(string) string, source CanonicalSource, version string, now time.Time) (CanonicalQuote, error) {
	if err := raw.Validate(); err != nil {
		return CanonicalQuote{}, err
	}

	originalSymbol := strings.TrimSpace(raw.Symbol)
	newSymbol := strings.ToUpper(strings.TrimSpace(rewriteSymbol(originalSymbol)))

	roundedPrice := roundHalfAwayFromZero(raw.Price, 4)

	isoTimestamp := time.UnixMilli(raw.Timestamp).UTC().Format("2006-01-02T15:04:05.000Z")

	var transformations []string
	if newSymbol != originalSymbol {
		transformations = append(transformations, fmt.Sprintf("symbol: %s -> %s", originalSymbol, newSymbol))
	}
	if roundedPrice != raw.Price {
		transformations = append(transformations, fmt.Sprintf("price: %v -> %v", raw.Price, roundedPrice))
	}

	return CanonicalQuote{
		Symbol:            newSymbol,
		Price:             roundedPrice,
		ISOTimestamp:      isoTimestamp,
		OriginalTimestamp: raw.Timestamp,
		Source:            source,
		Audit: AuditMetadata{
			OriginalSource:    raw.Source,
			OriginalSymbol:    originalSymbol,
			NormalizedAt:      now,
			NormalizerVersion: version,
			WasTransformed:    len(transformations) > 0,
			Transformations:   transformations,
		},
	}, nil
}

// roundHalfAwayFromZero rounds v to the given number of decimal places
// using half-away-from-zero rounding: the scaled magnitude is floored
// after adding 0.5, with the sign handled separately so that negative
// halves also round away from zero.
func roundHalfAwayFromZero(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	if v >= 0 {
		return math.Floor(v*scale+0.5) / scale
	}
	return -math.Floor(-v*scale+0.5) / scale
}
