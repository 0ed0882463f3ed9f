package binance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_formatByStep(t *testing.T) {
	tests := []struct {
		name        string
		value       float64
		step        string
		expected    string
		description string
	}{
		{
			name:        "Three fractional digits from tick size",
			value:       1.2301,
			step:        "0.010",
			expected:    "1.230",
			description: "Precision comes from the digit count of the step string, trailing zero included",
		},
		{
			name:        "Rounds half away from zero",
			value:       1.2346,
			step:        "0.010",
			expected:    "1.235",
			description: "Values past the midpoint round up at the final digit",
		},
		{
			name:        "Integer step has zero fractional digits",
			value:       2.7,
			step:        "1",
			expected:    "3",
			description: "A step without a decimal point must not panic and yields a whole number",
		},
		{
			name:        "Rounds down below midpoint with integer step",
			value:       2.4,
			step:        "1",
			expected:    "2",
			description: "Half-away rounding still truncates below the midpoint",
		},
		{
			name:        "Single fractional digit",
			value:       0.05,
			step:        "0.5",
			expected:    "0.1",
			description: "Tie at one fractional digit rounds away from zero",
		},
		{
			name:        "Pads with zeros when value is coarser than step",
			value:       12,
			step:        "0.001",
			expected:    "12.000",
			description: "The rendered field always carries exactly the step's digit count",
		},
		{
			name:        "Negative value keeps sign",
			value:       -0.1234,
			step:        "0.001",
			expected:    "-0.123",
			description: "Reduce-only sells format signed sizes the same way",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := formatByStep(tt.value, tt.step)
			require.NoError(t, err, tt.description)
			assert.Equal(t, tt.expected, got, tt.description)
		})
	}
}

// The tie-break rule is a documented choice, but the digit count is the hard
// contract: the exchange rejects any field whose precision exceeds the filter.
func Test_formatByStep_DigitCount(t *testing.T) {
	got, err := formatByStep(1.2345, "0.010")
	require.NoError(t, err)

	parts := strings.Split(got, ".")
	require.Len(t, parts, 2, "Should render a fractional part")
	assert.Len(t, parts[1], 3, "Tick size 0.010 demands exactly 3 fractional digits")
	assert.Contains(t, []string{"1.234", "1.235"}, got)
}

func Test_formatByStep_Errors(t *testing.T) {
	tests := []struct {
		name string
		step string
	}{
		{name: "Empty step", step: ""},
		{name: "Non-decimal step", step: "abc"},
		{name: "Multiple dots", step: "1.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := formatByStep(1.0, tt.step)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPrecision)
		})
	}
}
