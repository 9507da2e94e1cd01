package oraclecore

import "strings"

const defaultWeightKey = "default"

// WeightRegistry is a static, read-only-at-runtime mapping of provider
// identifier to trust weight, with a default fallback entry. The spec
// treats reconfiguration as a process restart, so there is no mutation
// API here beyond construction.
type WeightRegistry struct {
	weights map[string]float64
}

// NewWeightRegistry builds a registry from a source→weight map. A
// "default" entry, if absent, is seeded at 1.0. Negative weights are
// clamped to 0; weights are defined as non-negative trust multipliers.
func NewWeightRegistry(weights map[string]float64) *WeightRegistry {
	normalized := make(map[string]float64, len(weights)+1)
	for source, w := range weights {
		if w < 0 {
			w = 0
		}
		normalized[strings.ToLower(source)] = w
	}
	if _, ok := normalized[defaultWeightKey]; !ok {
		normalized[defaultWeightKey] = 1.0
	}
	return &WeightRegistry{weights: normalized}
}

// WeightOf returns the configured weight for source, or the default entry
// if none is configured.
func (r *WeightRegistry) WeightOf(source string) float64 {
	if w, ok := r.weights[strings.ToLower(source)]; ok {
		return w
	}
	return r.weights[defaultWeightKey]
}
