package backtest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/pairlab/internal/core"
)

func TestParsePair(t *testing.T) {
	tests := []struct {
		input   string
		want    Pair
		wantErr bool
	}{
		{"BTC-ETH", Pair{A: "BTC", B: "ETH"}, false},
		{"eth/sol", Pair{A: "ETH", B: "SOL"}, false},
		{" SOL-BTC ", Pair{A: "SOL", B: "BTC"}, false},
		{"BTC", Pair{}, true},
		{"BTC-ETH-SOL", Pair{}, true},
		{"BTC-BTC", Pair{}, true},
		{"", Pair{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePair(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidSymbol)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPair_String(t *testing.T) {
	assert.Equal(t, "BTC-ETH", Pair{A: "BTC", B: "ETH"}.String())
}

func TestAllPairs(t *testing.T) {
	got := AllPairs([]string{"BTC", "ETH", "SOL"})
	assert.Equal(t, []Pair{{"BTC", "ETH"}, {"BTC", "SOL"}, {"ETH", "SOL"}}, got)

	assert.Empty(t, AllPairs([]string{"BTC"}))
}
