package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ValidateSymbol(t *testing.T) {
	tests := []struct {
		name        string
		symbol      string
		expectError bool
		description string
	}{
		{
			name:        "Valid USDT perpetual",
			symbol:      "BTCUSDT",
			expectError: false,
			description: "Standard concatenated symbol should validate",
		},
		{
			name:        "Valid BUSD contract",
			symbol:      "ETHBUSD",
			expectError: false,
			description: "Other supported quote assets should validate",
		},
		{
			name:        "Empty symbol",
			symbol:      "",
			expectError: true,
			description: "Empty symbols are rejected",
		},
		{
			name:        "Lowercase symbol",
			symbol:      "btcusdt",
			expectError: true,
			description: "The exchange expects uppercase symbols",
		},
		{
			name:        "Unsupported quote asset",
			symbol:      "BTCEUR",
			expectError: true,
			description: "Unknown quote suffix is rejected",
		},
		{
			name:        "Quote asset alone",
			symbol:      "USDT",
			expectError: true,
			description: "A bare quote asset has no base asset",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSymbol(tt.symbol)
			if tt.expectError {
				assert.Error(t, err, tt.description)
			} else {
				assert.NoError(t, err, tt.description)
			}
		})
	}
}

func Test_ValidateSymbols(t *testing.T) {
	assert.ErrorIs(t, ValidateSymbols(nil, 10), ErrNoSymbols)
	assert.ErrorIs(t, ValidateSymbols([]string{"BTCUSDT", "ETHUSDT"}, 1), ErrTooManySymbols)
	assert.NoError(t, ValidateSymbols([]string{"BTCUSDT", "ETHUSDT"}, 10))

	err := ValidateSymbols([]string{"BTCUSDT", "bad"}, 10)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "index 1")
}

func Test_ValidateInterval(t *testing.T) {
	for _, valid := range []string{"1m", "15m", "1h", "4h", "1d", "1w", "1M"} {
		assert.NoError(t, ValidateInterval(valid), "interval %s should be accepted", valid)
	}

	for _, invalid := range []string{"", "2m", "1H", "90s", "monthly"} {
		assert.Error(t, ValidateInterval(invalid), "interval %s should be rejected", invalid)
	}
}
