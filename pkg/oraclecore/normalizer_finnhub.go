package oraclecore

import "regexp"

var finnhubIdentifiers = []string{"finnhub"}

var finnhubPrefix = regexp.MustCompile(`(?i)^(US|CRYPTO|FX|INDICES)-`)

// FinnhubNormalizer recognizes Finnhub raw quotes and strips the leading
// asset-class prefix Finnhub attaches to symbols.
type FinnhubNormalizer struct{}

func (FinnhubNormalizer) Recognize(raw RawQuote) bool {
	return recognizeBySubstring(raw.Source, finnhubIdentifiers)
}

func (FinnhubNormalizer) RewriteSymbol(symbol string) string {
	return finnhubPrefix.ReplaceAllString(symbol, "")
}

func (FinnhubNormalizer) Version() string {
	return "finnhub-v1"
}

func (FinnhubNormalizer) CanonicalSource() CanonicalSource {
	return SourceFinnhub
}
