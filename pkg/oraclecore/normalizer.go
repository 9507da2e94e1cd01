package oraclecore

import (
	"strings"
	"time"
)

// Normalizer is the capability set every source-identified strategy
// carries: a recognition predicate, a symbol rewrite rule, a version tag,
// and the canonical source identity it produces. There is no abstract
// base type: variants are plain values satisfying this interface, and
// the Canonical Record Builder is a free function shared by all of them.
type Normalizer interface {
	Recognize(raw RawQuote) bool
	RewriteSymbol(symbol string) string
	Version() string
	CanonicalSource() CanonicalSource
}

// NormalizeFailure carries a raw record that failed normalization
// alongside the error kind and when the failure was observed.
type NormalizeFailure struct {
	Raw       RawQuote
	Err       *Error
	EmittedAt time.Time
}

// Registry dispatches a raw quote to the first normalizer whose Recognize
// predicate matches. Registration order is the match priority.
type Registry struct {
	variants []Normalizer
	now      func() time.Time
}

// NewRegistry builds a registry over the given variants, tried in order.
func NewRegistry(variants ...Normalizer) *Registry {
	return &Registry{variants: variants, now: time.Now}
}

// DefaultRegistry returns the registry wired with the four variants this
// spec requires: AlphaVantage, Finnhub, YahooFinance, Mock.
func DefaultRegistry() *Registry {
	return NewRegistry(
		AlphaVantageNormalizer{},
		FinnhubNormalizer{},
		YahooFinanceNormalizer{},
		MockNormalizer{},
	)
}

func (reg *Registry) find(raw RawQuote) Normalizer {
	for _, v := range reg.variants {
		if v.Recognize(raw) {
			return v
		}
	}
	return nil
}

// Normalize dispatches raw to the first matching variant and runs the
// Canonical Record Builder. Fails with NoNormalizerFound if no variant's
// Recognize predicate matches, or with whatever kind buildCanonical
// returns for a field-constraint violation.
func (reg *Registry) Normalize(raw RawQuote) (CanonicalQuote, error) {
	variant := reg.find(raw)
	if variant == nil {
		return CanonicalQuote{}, newErr(KindNoNormalizerFound, "no normalizer recognizes source %q", raw.Source)
	}
	return buildCanonical(raw, variant.RewriteSymbol, variant.CanonicalSource(), variant.Version(), reg.now())
}

// NormalizeBatch normalizes every raw quote independently, collecting
// successes and failures separately so one bad record never blocks the
// rest of the batch.
func (reg *Registry) NormalizeBatch(raws []RawQuote) (successes []CanonicalQuote, failures []NormalizeFailure) {
	now := reg.now()
	for _, raw := range raws {
		variant := reg.find(raw)
		if variant == nil {
			failures = append(failures, NormalizeFailure{
				Raw:       raw,
				Err:       newErr(KindNoNormalizerFound, "no normalizer recognizes source %q", raw.Source),
				EmittedAt: now,
			})
			continue
		}
		cq, err := buildCanonical(raw, variant.RewriteSymbol, variant.CanonicalSource(), variant.Version(), now)
		if err != nil {
			coreErr, _ := err.(*Error)
			failures = append(failures, NormalizeFailure{Raw: raw, Err: coreErr, EmittedAt: now})
			continue
		}
		successes = append(successes, cq)
	}
	return successes, failures
}

// NormalizeBatchBySource normalizes raws and groups the successes by
// canonical source, for callers that want to fan out per-provider.
func (reg *Registry) NormalizeBatchBySource(raws []RawQuote) (map[CanonicalSource][]CanonicalQuote, []NormalizeFailure) {
	successes, failures := reg.NormalizeBatch(raws)
	grouped := make(map[CanonicalSource][]CanonicalQuote)
	for _, cq := range successes {
		grouped[cq.Source] = append(grouped[cq.Source], cq)
	}
	return grouped, failures
}

// recognizeBySubstring is the shared recognition predicate: case
// insensitive substring match against a fixed identifier list, after
// stripping whitespace, hyphens, and underscores from the source field.
func recognizeBySubstring(source string, identifiers []string) bool {
	cleaned := stripSeparators(source)
	for _, id := range identifiers {
		if strings.Contains(cleaned, stripSeparators(id)) {
			return true
		}
	}
	return false
}

func stripSeparators(s string) string {
	s = strings.ToLower(s)
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "-", "")
	s = strings.ReplaceAll(s, "_", "")
	return s
}
