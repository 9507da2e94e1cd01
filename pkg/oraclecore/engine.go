package oraclecore

import (
	"math"
	"strings"
	"time"
)

// ConsensusMetrics carries the dispersion measures computed over the
// surviving quotes for one consensus price.
type ConsensusMetrics struct {
	StandardDeviation float64
	SpreadPercent     float64
	SourceCount       int
	Variance          float64
}

// ConsensusPrice is the Aggregation Engine's output: one fused price for
// one symbol, with provenance and quality metrics attached.
type ConsensusPrice struct {
	Symbol      string
	Price       float64
	Method      Method
	Confidence  float64
	Metrics     ConsensusMetrics
	WindowStart int64
	WindowEnd   int64
	Sources     []string
	ComputedAt  int64
}

// Options configures one aggregation call. Aggregate validates these
// fields as given; it never silently substitutes a default for a zero
// value, since zero is itself meaningful for several fields (MinSources
// = 0 and TrimFraction = 0 are both explicitly tested boundary inputs).
// Callers that want the standard defaults should start from
// DefaultOptions and override only the fields they care about.
type Options struct {
	MinSources            int
	WindowMillis          int64
	Method                Method
	TrimFraction          float64
	SourceWeightOverrides map[string]float64
}

// DefaultOptions returns the standard aggregation defaults.
func DefaultOptions() Options {
	return Options{
		MinSources:   3,
		WindowMillis: 30_000,
		Method:       MethodWeightedMean,
		TrimFraction: 0.20,
	}
}

// Engine is the Aggregation Engine: stateless and pure aside from the
// read-only weight registry it holds. It owns no cache or other mutable
// shared state: updating a last-value cache from a computed
// ConsensusPrice is the caller's responsibility, keeping this package
// free of I/O.
type Engine struct {
	weights *WeightRegistry
	now     func() time.Time
}

// NewEngine builds an aggregation engine over the given source weight
// registry.
func NewEngine(weights *WeightRegistry) *Engine {
	if weights == nil {
		weights = NewWeightRegistry(nil)
	}
	return &Engine{weights: weights, now: time.Now}
}

// Aggregate runs the full engine algorithm: validation, window filtering,
// strategy selection, weight resolution, statistics, confidence scoring,
// and ConsensusPrice assembly.
func (e *Engine) Aggregate(symbol string, quotes []CanonicalQuote, opts Options) (ConsensusPrice, error) {
	now := e.now()

	if err := validateInputs(symbol, quotes, opts); err != nil {
		return ConsensusPrice{}, err
	}

	survivors := windowFilter(quotes, opts.WindowMillis, now)
	if len(survivors) < opts.MinSources {
		return ConsensusPrice{}, newErr(KindInsufficientRecentSources,
			"%d quotes survived the %dms window, need at least %d", len(survivors), opts.WindowMillis, opts.MinSources)
	}

	strategy, err := e.strategyFor(opts)
	if err != nil {
		return ConsensusPrice{}, err
	}

	weights := e.resolveWeights(survivors, opts.SourceWeightOverrides)

	price, err := strategy.Aggregate(survivors, weights)
	if err != nil {
		return ConsensusPrice{}, err
	}

	prices := make([]float64, len(survivors))
	for i, q := range survivors {
		prices[i] = q.Price
	}
	metrics := ConsensusMetrics{
		StandardDeviation: stdDevOf(prices),
		SpreadPercent:     spreadPercent(prices),
		SourceCount:       len(survivors),
		Variance:          varianceOf(prices),
	}

	confidence := computeConfidence(metrics.SourceCount, metrics.SpreadPercent, metrics.StandardDeviation)

	windowStart, windowEnd := windowBounds(survivors)
	sources := distinctSources(survivors)

	return ConsensusPrice{
		Symbol:      symbol,
		Price:       price,
		Method:      strategy.Method(),
		Confidence:  confidence,
		Metrics:     metrics,
		WindowStart: windowStart,
		WindowEnd:   windowEnd,
		Sources:     sources,
		ComputedAt:  now.UnixMilli(),
	}, nil
}

// AggregateMany aggregates every symbol in bysymbol independently.
// Failures are per-symbol: a failing symbol is omitted from the returned
// map and does not prevent other symbols from succeeding. The failures
// themselves are neither logged nor returned.
func (e *Engine) AggregateMany(bySymbol map[string][]CanonicalQuote, opts Options) map[string]ConsensusPrice {
	results := make(map[string]ConsensusPrice, len(bySymbol))
	for symbol, quotes := range bySymbol {
		consensus, err := e.Aggregate(symbol, quotes, opts)
		if err != nil {
			continue
		}
		results[symbol] = consensus
	}
	return results
}

func validateInputs(symbol string, quotes []CanonicalQuote, opts Options) error {
	if strings.TrimSpace(symbol) == "" {
		return newErr(KindValidationFailure, "symbol is empty")
	}
	if len(quotes) == 0 {
		return newErr(KindEmptyInput, "no quotes supplied for %s", symbol)
	}
	if opts.MinSources < 1 {
		return newErr(KindValidationFailure, "minSources must be >= 1, got %d", opts.MinSources)
	}
	if len(quotes) < opts.MinSources {
		return newErr(KindInsufficientSources, "%d quotes supplied for %s, need at least %d", len(quotes), symbol, opts.MinSources)
	}
	for _, q := range quotes {
		if q.Symbol != symbol {
			return newErr(KindSymbolMismatch, "quote symbol %s does not match requested symbol %s", q.Symbol, symbol)
		}
		if q.Price <= 0 || isNonFinite(q.Price) {
			return newErr(KindInvalidPriceValue, "quote price %v for %s is not finite and strictly positive", q.Price, symbol)
		}
	}
	return nil
}

func windowFilter(quotes []CanonicalQuote, windowMillis int64, now time.Time) []CanonicalQuote {
	cutoff := now.UnixMilli() - windowMillis
	survivors := make([]CanonicalQuote, 0, len(quotes))
	for _, q := range quotes {
		if q.OriginalTimestamp >= cutoff {
			survivors = append(survivors, q)
		}
	}
	return survivors
}

func (e *Engine) strategyFor(opts Options) (Aggregator, error) {
	switch opts.Method {
	case MethodWeightedMean:
		return WeightedMeanAggregator{}, nil
	case MethodMedian:
		return MedianAggregator{}, nil
	case MethodTrimmedMean:
		return NewTrimmedMeanAggregator(opts.TrimFraction)
	default:
		return nil, newErr(KindUnknownMethod, "unknown aggregation method %q", opts.Method)
	}
}

func (e *Engine) resolveWeights(quotes []CanonicalQuote, overrides map[string]float64) map[string]float64 {
	resolved := make(map[string]float64)
	seen := make(map[string]bool)
	for _, q := range quotes {
		source := string(q.Source)
		if seen[source] {
			continue
		}
		seen[source] = true
		if overrides != nil {
			if w, ok := overrides[source]; ok {
				resolved[source] = w
				continue
			}
		}
		resolved[source] = e.weights.WeightOf(source)
	}
	return resolved
}

func windowBounds(quotes []CanonicalQuote) (start, end int64) {
	start, end = quotes[0].OriginalTimestamp, quotes[0].OriginalTimestamp
	for _, q := range quotes[1:] {
		if q.OriginalTimestamp < start {
			start = q.OriginalTimestamp
		}
		if q.OriginalTimestamp > end {
			end = q.OriginalTimestamp
		}
	}
	return start, end
}

func distinctSources(quotes []CanonicalQuote) []string {
	seen := make(map[string]bool)
	var sources []string
	for _, q := range quotes {
		if !seen[q.Audit.OriginalSource] {
			seen[q.Audit.OriginalSource] = true
			sources = append(sources, q.Audit.OriginalSource)
		}
	}
	return sources
}

func isNonFinite(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0)
}
