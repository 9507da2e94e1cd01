package oraclecore

import (
	"math"
	"sort"
)

// Method identifies which aggregation law produced a ConsensusPrice.
type Method string

const (
	MethodWeightedMean Method = "weighted-mean"
	MethodMedian       Method = "median"
	MethodTrimmedMean  Method = "trimmed-mean"
)

// Aggregator is the one contract all three aggregation laws satisfy:
// given a non-empty set of canonical quotes sharing a symbol and an
// optional source→weight map, produce a single consensus price.
type Aggregator interface {
	Aggregate(quotes []CanonicalQuote, weights map[string]float64) (float64, error)
	Method() Method
}

func effectiveWeight(source CanonicalSource, weights map[string]float64) float64 {
	if weights == nil {
		return 1.0
	}
	if w, ok := weights[string(source)]; ok {
		return w
	}
	return 1.0
}

// WeightedMeanAggregator returns Σ(price·weight)/Σ(weight) over the input
// quotes, using the supplied source weight map (falling back to 1.0 for
// any source not present in it).
type WeightedMeanAggregator struct{}

func (WeightedMeanAggregator) Method() Method { return MethodWeightedMean }

func (WeightedMeanAggregator) Aggregate(quotes []CanonicalQuote, weights map[string]float64) (float64, error) {
	if len(quotes) == 0 {
		return 0, newErr(KindEmptyInput, "weighted mean requires at least one quote")
	}
	prices := make([]float64, len(quotes))
	ws := make([]float64, len(quotes))
	for i, q := range quotes {
		prices[i] = q.Price
		ws[i] = effectiveWeight(q.Source, weights)
	}
	sumPW, sumW := weightedSum(prices, ws)
	if sumW == 0 {
		return 0, newErr(KindZeroTotalWeight, "total weight across %d quotes is zero", len(quotes))
	}
	return sumPW / sumW, nil
}

// MedianAggregator sorts prices ascending and returns the middle element
// (or the mean of the two central elements for an even count). Weights
// are ignored by contract; a single extreme outlier cannot move the
// median by more than one rank.
type MedianAggregator struct{}

func (MedianAggregator) Method() Method { return MethodMedian }

func (MedianAggregator) Aggregate(quotes []CanonicalQuote, _ map[string]float64) (float64, error) {
	if len(quotes) == 0 {
		return 0, newErr(KindEmptyInput, "median requires at least one quote")
	}
	prices := make([]float64, len(quotes))
	for i, q := range quotes {
		prices[i] = q.Price
	}
	return sortedMedian(prices), nil
}

// TrimmedMeanAggregator drops the top and bottom ⌊n·t⌋ sorted elements
// before applying the weighted mean to the remainder. Falls back to the
// plain weighted mean when fewer than three quotes are supplied.
type TrimmedMeanAggregator struct {
	trimFraction float64
}

// NewTrimmedMeanAggregator constructs a trimmed-mean aggregator bound to
// trimFraction, which must lie in [0, 0.5). Construction outside that
// range fails rather than clamping silently.
func NewTrimmedMeanAggregator(trimFraction float64) (*TrimmedMeanAggregator, error) {
	if math.IsNaN(trimFraction) || trimFraction < 0 || trimFraction >= 0.5 {
		return nil, newErr(KindValidationFailure, "trim fraction %v must be in [0, 0.5)", trimFraction)
	}
	return &TrimmedMeanAggregator{trimFraction: trimFraction}, nil
}

func (t *TrimmedMeanAggregator) Method() Method { return MethodTrimmedMean }

func (t *TrimmedMeanAggregator) Aggregate(quotes []CanonicalQuote, weights map[string]float64) (float64, error) {
	if len(quotes) == 0 {
		return 0, newErr(KindEmptyInput, "trimmed mean requires at least one quote")
	}
	if len(quotes) < 3 {
		return WeightedMeanAggregator{}.Aggregate(quotes, weights)
	}

	type priced struct {
		price  float64
		weight float64
	}
	entries := make([]priced, len(quotes))
	for i, q := range quotes {
		entries[i] = priced{price: q.Price, weight: effectiveWeight(q.Source, weights)}
	}
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].price < entries[j].price })

	n := len(entries)
	k := int(math.Floor(float64(n) * t.trimFraction))
	remainder := entries[k : n-k]

	prices := make([]float64, len(remainder))
	ws := make([]float64, len(remainder))
	for i, e := range remainder {
		prices[i] = e.price
		ws[i] = e.weight
	}
	sumPW, sumW := weightedSum(prices, ws)
	if sumW == 0 {
		return 0, newErr(KindZeroTotalWeight, "total weight across %d quotes is zero", len(remainder))
	}
	return sumPW / sumW, nil
}
