package oraclecore

import (
	"regexp"
	"strings"
)

var yahooFinanceIdentifiers = []string{"yahoo", "yahoofinance", "yfinance"}

// yahooSuffixes is the fixed set of trailing exchange markers Yahoo
// Finance appends to non-US symbols.
var yahooSuffixes = []string{
	"L", "T", "AX", "HK", "SI", "KS", "TW", "NS", "BO", "TO",
	"V", "F", "DE", "PA", "AS", "BR", "MC", "MI", "SW", "CO",
	"MX", "SA", "JK", "KL",
}

var yahooIndexMarker = regexp.MustCompile(`^\^`)

// YahooFinanceNormalizer recognizes Yahoo Finance raw quotes, strips a
// leading index marker (`^DJI`), and strips a trailing exchange suffix
// from the fixed Yahoo suffix set (`.L`, `.HK`, ...).
type YahooFinanceNormalizer struct{}

func (YahooFinanceNormalizer) Recognize(raw RawQuote) bool {
	return recognizeBySubstring(raw.Source, yahooFinanceIdentifiers)
}

func (YahooFinanceNormalizer) RewriteSymbol(symbol string) string {
	symbol = yahooIndexMarker.ReplaceAllString(symbol, "")

	if idx := strings.LastIndex(symbol, "."); idx >= 0 {
		suffix := strings.ToUpper(symbol[idx+1:])
		for _, candidate := range yahooSuffixes {
			if suffix == candidate {
				return symbol[:idx]
			}
		}
	}
	return symbol
}

func (YahooFinanceNormalizer) Version() string {
	return "yahoofinance-v1"
}

func (YahooFinanceNormalizer) CanonicalSource() CanonicalSource {
	return SourceYahooFinance
}
