package backtest

import (
	"strings"

	"github.com/newthinker/pairlab/internal/core"
)

// Pair is an ordered asset pair; the spread is log(A) - log(B).
type Pair struct {
	A string
	B string
}

func (p Pair) String() string {
	return p.A + "-" + p.B
}

// ParsePair reads "BTC-ETH" or "BTC/ETH".
func ParsePair(s string) (Pair, error) {
	parts := strings.FieldsFunc(strings.ToUpper(strings.TrimSpace(s)), func(r rune) bool {
		return r == '-' || r == '/'
	})
	if len(parts) != 2 {
		return Pair{}, core.Errorf(core.ErrInvalidSymbol, "pair %q must look like BTC-ETH", s)
	}
	if parts[0] == parts[1] {
		return Pair{}, core.Errorf(core.ErrInvalidSymbol, "pair %q uses the same asset twice", s)
	}
	return Pair{A: parts[0], B: parts[1]}, nil
}

// AllPairs returns every unordered combination of assets, in input order.
func AllPairs(assets []string) []Pair {
	var pairs []Pair
	for i := 0; i < len(assets); i++ {
		for j := i + 1; j < len(assets); j++ {
			pairs = append(pairs, Pair{A: assets[i], B: assets[j]})
		}
	}
	return pairs
}
