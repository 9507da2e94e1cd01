package oraclecore

import "regexp"

var alphaVantageIdentifiers = []string{"alphavantage", "alpha vantage"}

var alphaVantageSuffix = regexp.MustCompile(`(?i)\.(US|NYSE|NASDAQ|LSE|TSX|ASX|HK|LON)$`)

// AlphaVantageNormalizer recognizes Alpha Vantage raw quotes and strips the
// trailing exchange suffix Alpha Vantage appends to symbols.
type AlphaVantageNormalizer struct{}

func (AlphaVantageNormalizer) Recognize(raw RawQuote) bool {
	return recognizeBySubstring(raw.Source, alphaVantageIdentifiers)
}

func (AlphaVantageNormalizer) RewriteSymbol(symbol string) string {
	return alphaVantageSuffix.ReplaceAllString(symbol, "")
}

func (AlphaVantageNormalizer) Version() string {
	return "alphavantage-v1"
}

func (AlphaVantageNormalizer) CanonicalSource() CanonicalSource {
	return SourceAlphaVantage
}
