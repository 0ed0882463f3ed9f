package binance

import "errors"

// Error kinds surfaced by the futures client. Every failure is wrapped around
// exactly one of these sentinels so callers can classify with errors.Is.
// Nothing is retried or swallowed inside this package.
var (
	// ErrTransport indicates a connection failure or a non-2xx HTTP response.
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse indicates the exchange payload failed to parse or
	// a required field was missing or wrong-typed. The wrapping error names
	// the offending field or array index and the raw value.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrSigning indicates the configured secret cannot be used as an HMAC
	// key. This is a fatal configuration error, not a runtime condition.
	ErrSigning = errors.New("unusable signing secret")

	// ErrPrecision indicates a tick/lot size reference string has no usable
	// fractional digit count and order fields cannot be formatted safely.
	ErrPrecision = errors.New("unusable precision reference")
)
