package oraclecore

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// meanOf, varianceOf, stdDevOf wrap gonum's unweighted estimators for the
// cross-source price statistics the aggregation engine and confidence
// model need. Empty input returns 0 rather than NaN so callers don't have
// to special-case it before every call.
func meanOf(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	return stat.Mean(prices, nil)
}

func varianceOf(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	return stat.Variance(prices, nil)
}

func stdDevOf(prices []float64) float64 {
	if len(prices) < 2 {
		return 0
	}
	return stat.StdDev(prices, nil)
}

// sortedMedian returns the median of prices. Odd count returns the middle
// element; even count returns the arithmetic mean of the two central
// elements. gonum's quantile estimators assume a pre-weighted CDF and
// don't expose this tie-stable two-middle-element contract directly, so
// the sort-and-pick is done by hand.
func sortedMedian(prices []float64) float64 {
	n := len(prices)
	sorted := make([]float64, n)
	copy(sorted, prices)
	sort.Float64s(sorted)

	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// weightedSum computes Σ(price·weight) and Σ(weight) for the given
// prices/weights pair, the shared building block behind weighted mean and
// the weighted-mean fallback used by trimmed mean.
func weightedSum(prices, weights []float64) (sumPW, sumW float64) {
	for i, p := range prices {
		sumPW += p * weights[i]
		sumW += weights[i]
	}
	return sumPW, sumW
}

// spreadPercent is 100·(max−min)/mean over prices, or 0 when mean is 0.
func spreadPercent(prices []float64) float64 {
	if len(prices) == 0 {
		return 0
	}
	mean := meanOf(prices)
	if mean == 0 {
		return 0
	}
	min, max := prices[0], prices[0]
	for _, p := range prices[1:] {
		if p < min {
			min = p
		}
		if p > max {
			max = p
		}
	}
	return 100 * (max - min) / mean
}
