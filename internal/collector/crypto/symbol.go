package crypto

import (
	"regexp"
	"strings"

	"github.com/newthinker/pairlab/internal/core"
)

// Quote currencies recognized as a symbol suffix, in detection order
var quoteCurrencies = []string{"USDT", "BUSD", "USDC", "BTC", "ETH", "BNB"}

// validCryptoSymbol matches a separator-free exchange symbol
var validCryptoSymbol = regexp.MustCompile(`^[A-Za-z0-9]{2,20}$`)

// stripSeparators drops the "-", "/" and "_" separators users type
func stripSeparators(s string) string {
	return strings.NewReplacer("-", "", "/", "", "_", "").Replace(s)
}

// NormalizeSymbol converts "BTC", "btc-usdt", "BTC/USDT" and the like to
// the exchange form "BTCUSDT", appending defaultQuote when none is present.
func NormalizeSymbol(input string, defaultQuote string) string {
	if input == "" {
		return ""
	}

	// Uppercase and drop separators: "btc-usdt" -> "BTCUSDT"
	s := stripSeparators(strings.ToUpper(input))

	// Already quoted? A base must remain in front of the quote
	for _, quote := range quoteCurrencies {
		if strings.HasSuffix(s, quote) && len(s) > len(quote) {
			return s
		}
	}
	// Bare base asset, append the default quote
	return s + strings.ToUpper(defaultQuote)
}

// ParseSymbol splits a normalized symbol: "BTCUSDT" -> ("BTC", "USDT").
func ParseSymbol(symbol string) (base, quote string) {
	s := strings.ToUpper(symbol)

	// Known quote suffix, leaving a non-empty base
	for _, q := range quoteCurrencies {
		if strings.HasSuffix(s, q) && len(s) > len(q) {
			return strings.TrimSuffix(s, q), q
		}
	}

	// unknown quote, assume a 4-letter stablecoin
	if len(s) > 4 {
		return s[:len(s)-4], s[len(s)-4:]
	}
	return s, ""
}

// InstrumentID joins base and quote with sep: ("BTCUSDT", "-") -> "BTC-USDT".
func InstrumentID(symbol, sep string) string {
	base, quote := ParseSymbol(symbol)
	if quote == "" {
		return base
	}
	return base + sep + quote
}

// ValidateCryptoSymbol rejects symbols that are empty, too long or carry
// characters other than letters, digits and separators.
func ValidateCryptoSymbol(symbol string) error {
	if symbol == "" {
		return core.Errorf(core.ErrInvalidSymbol, "symbol cannot be empty")
	}
	// Bound the raw input before stripping separators
	if len(symbol) > 30 {
		return core.Errorf(core.ErrInvalidSymbol, "symbol too long: %s", symbol)
	}
	// Separators are allowed in the input but not in the symbol itself
	if !validCryptoSymbol.MatchString(stripSeparators(symbol)) {
		return core.Errorf(core.ErrInvalidSymbol, "invalid symbol format: %s", symbol)
	}
	return nil
}
