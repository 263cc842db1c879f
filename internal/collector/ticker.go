package collector

import (
	"strings"
	"unicode"
)

// Market selects the ticker convention of the user's input.
type Market string

const (
	MarketTW Market = "TW"
	MarketUS Market = "US"
)

// symbolAliases maps common index names to Yahoo tickers.
var symbolAliases = map[string]string{
	"SPX500": "^GSPC",
	"SPX":    "^GSPC",
	"SP500":  "^GSPC",
	"TAIEX":  "^TWII",
	"NDX":    "^NDX",
}

// NormalizeTicker trims and upper-cases raw. In the TW market an all-digit code
// such as "2330" gets the ".TW" suffix.
func NormalizeTicker(raw string, market Market) string {
	ticker := strings.ToUpper(strings.TrimSpace(raw))
	if alias, ok := symbolAliases[ticker]; ok {
		return alias
	}
	if market == MarketTW && ticker != "" && !strings.HasSuffix(ticker, ".TW") && isDigits(ticker) {
		return ticker + ".TW"
	}
	return ticker
}

func isDigits(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
