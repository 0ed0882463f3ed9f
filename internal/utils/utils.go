// Package utils provides validation helpers for trading request parameters.
//
// These checks run client-side before a request is built so obviously bad
// input fails fast with a useful message instead of an exchange error code.
package utils

import (
	"errors"
	"fmt"
	"strings"
)

// Error definitions for validation functions
var (
	ErrNoSymbols      = errors.New("zero symbols requested")
	ErrTooManySymbols = errors.New("too many symbols requested")
)

// QuoteAssetSet contains the quote assets contracts may settle in.
// This map is used for O(1) suffix lookup when validating symbols.
var QuoteAssetSet = map[string]bool{
	"USDT": true,
	"USDC": true,
	"BUSD": true,
	"BTC":  true,
}

// intervalSet lists the kline intervals the futures API accepts.
var intervalSet = map[string]bool{
	"1m": true, "3m": true, "5m": true, "15m": true, "30m": true,
	"1h": true, "2h": true, "4h": true, "6h": true, "8h": true, "12h": true,
	"1d": true, "3d": true, "1w": true, "1M": true,
}

// supportedQuotesCache is a pre-computed string of supported quote assets
// to avoid rebuilding it on every validation error.
var supportedQuotesCache = joinKeys(QuoteAssetSet)

// ValidateSymbol validates a contract symbol in the exchange's concatenated
// format (e.g., "BTCUSDT"): uppercase, non-empty, ending in a supported
// quote asset.
func ValidateSymbol(symbol string) error {
	if symbol == "" {
		return errors.New("symbol cannot be empty")
	}

	if symbol != strings.ToUpper(symbol) {
		return fmt.Errorf("symbol must be uppercase: got %q", symbol)
	}

	for quote := range QuoteAssetSet {
		if strings.HasSuffix(symbol, quote) && len(symbol) > len(quote) {
			return nil
		}
	}

	return fmt.Errorf("unsupported quote asset in %q (supported: %s)",
		symbol, supportedQuotesCache)
}

// ValidateSymbols validates a slice of contract symbols and enforces a
// quantity limit.
func ValidateSymbols(symbols []string, maxAllowed int) error {
	if len(symbols) == 0 {
		return ErrNoSymbols
	}

	if maxAllowed > 0 && len(symbols) > maxAllowed {
		return fmt.Errorf("%w: requested %d symbols, maximum allowed %d",
			ErrTooManySymbols, len(symbols), maxAllowed)
	}

	for i, symbol := range symbols {
		if err := ValidateSymbol(symbol); err != nil {
			return fmt.Errorf("invalid symbol at index %d (%q): %w", i, symbol, err)
		}
	}

	return nil
}

// ValidateInterval checks that interval is one the futures API accepts
// (e.g., "1m", "15m", "1h", "1d").
func ValidateInterval(interval string) error {
	if !intervalSet[interval] {
		return fmt.Errorf("unsupported kline interval %q", interval)
	}
	return nil
}

// joinKeys builds a comma-separated string of map keys for error messages.
//
// Note: key order is not guaranteed due to Go's map iteration order being
// unspecified.
func joinKeys(set map[string]bool) string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	return strings.Join(keys, ", ")
}
