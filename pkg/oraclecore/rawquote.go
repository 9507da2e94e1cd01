package oraclecore

import (
	"math"
	"strings"
)

// RawQuote is a provider-native price record as handed to the core by an
// ingestor collaborator, before any normalization. Immutable once built.
type RawQuote struct {
	Symbol    string
	Price     float64
	Timestamp int64 // epoch milliseconds
	Source    string
}

// Validate checks the invariants every RawQuote must satisfy before it can
// reach a normalizer: price finite and non-negative, timestamp a plausible
// epoch, symbol and source non-empty once trimmed.
func (r RawQuote) Validate() error {
	if strings.TrimSpace(r.Symbol) == "" {
		return newErr(KindValidationFailure, "symbol is empty")
	}
	if strings.TrimSpace(r.Source) == "" {
		return newErr(KindValidationFailure, "source is empty")
	}
	if math.IsNaN(r.Price) || math.IsInf(r.Price, 0) {
		return newErr(KindValidationFailure, "price %v is not finite", r.Price)
	}
	if r.Price < 0 {
		return newErr(KindValidationFailure, "price %v is negative", r.Price)
	}
	if r.Timestamp <= 0 {
		return newErr(KindValidationFailure, "timestamp %d is not a valid epoch", r.Timestamp)
	}
	return nil
}
