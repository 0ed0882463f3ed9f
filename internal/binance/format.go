package binance

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// formatByStep renders value with exactly as many fractional digits as the
// step reference carries. Order quantities are formatted against the
// instrument's lot size and prices against its tick size; an over-precise
// field is rejected by the exchange, so this runs before signing.
//
// The precision is the fractional digit count of the reference string itself:
// "0.010" has precision 3, "0.5" has precision 1, and a reference without a
// decimal point ("1") has precision 0. The reference must stay a string end
// to end because a float64 round trip drops trailing zeros.
//
// Rounding is half-away-from-zero (decimal.StringFixed). The exchange accepts
// either tie-break as long as the digit count matches the instrument filter;
// half-away-from-zero keeps rendered sizes monotonic in the input.
func formatByStep(value float64, step string) (string, error) {
	if step == "" {
		return "", fmt.Errorf("%w: empty step reference", ErrPrecision)
	}
	if _, err := decimal.NewFromString(step); err != nil {
		return "", fmt.Errorf("%w: step %q is not a decimal", ErrPrecision, step)
	}

	precision := 0
	if dot := strings.Index(step, "."); dot >= 0 {
		precision = len(step) - 1 - dot
	}
	if precision < 0 {
		return "", fmt.Errorf("%w: step %q yields negative precision", ErrPrecision, step)
	}

	return decimal.NewFromFloat(value).StringFixed(int32(precision)), nil
}
