// Package binance implements a REST client for the Binance USDⓈ-M futures
// API.
//
// The client covers four operations: kline (candlestick) history, account
// snapshots, instrument trading constraints, and order placement. Public
// market-data endpoints are called unsigned; private account and order
// endpoints are signed with HMAC-SHA256 over the exact query string sent to
// the server, with the API key carried in a request header.
//
// Key properties:
//   - One network round trip per operation; no retries, caching or
//     idempotency keys
//   - Exchange numeric strings parsed into typed records with field-level
//     failure diagnostics
//   - Order quantity/price rendered to the instrument's tick/lot precision
//     before signing
//   - Safe for concurrent use: the client holds only immutable credentials
//     and a shared connection-pooling HTTP transport
package binance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/karta134033/trade-utils/internal/model"
)

const (
	klinesPath       = "/fapi/v1/klines"
	accountPath      = "/fapi/v2/account"
	exchangeInfoPath = "/fapi/v1/exchangeInfo"
	orderPath        = "/fapi/v1/order"

	// apiKeyHeader carries the API key on signed requests. The key is never
	// sent as a query parameter.
	apiKeyHeader = "X-MBX-APIKEY"
)

var (
	// defaultClientConfig provides sensible defaults for production use.
	defaultClientConfig = ClientConfig{
		BaseURL: "https://fapi.binance.com",
	}
)

// ClientConfig holds the construction parameters for a futures client.
type ClientConfig struct {
	// BaseURL is the REST API root. Defaults to the production futures API;
	// tests point it at a local server.
	BaseURL string

	// APIKey authenticates signed requests via the X-MBX-APIKEY header.
	APIKey string

	// SecretKey is the HMAC key for request signing. Required for signed
	// operations (GetAccount, PlaceOrder).
	SecretKey string

	// HTTPClient is the underlying transport. Defaults to http.DefaultClient;
	// callers that need bounded latency supply one with a timeout or cancel
	// the request context.
	HTTPClient *http.Client
}

// Client is an immutable futures API client.
//
// All state is fixed at construction, so a single client may be shared freely
// across goroutines; every call builds its own parameter list and performs
// its own HTTP request.
type Client struct {
	config   ClientConfig
	signer   *signer
	validate *validator.Validate
}

// NewClient creates a futures client with the specified configuration.
//
// If no configuration is provided (cfg is nil), default values are used,
// which yields a client capable of unsigned market-data calls only.
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		cfg = &defaultClientConfig
	}

	config := *cfg
	if config.BaseURL == "" {
		config.BaseURL = defaultClientConfig.BaseURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}

	return &Client{
		config:   config,
		signer:   newSigner(config.SecretKey),
		validate: validator.New(),
	}, nil
}

// KlineQuery selects the kline range for GetKlines. StartTime, EndTime and
// Limit are optional: zero values are omitted from the request and the
// exchange applies its own defaults.
type KlineQuery struct {
	Symbol    string
	Interval  string // e.g., "1m", "1h", "1d"
	StartTime int64  // Unix ms, inclusive
	EndTime   int64  // Unix ms, inclusive
	Limit     int
}

// GetKlines fetches candlestick history for a symbol and interval.
//
// The call is unsigned. The returned slice is sorted ascending by close
// timestamp regardless of the order the exchange delivers.
func (c *Client) GetKlines(ctx context.Context, query KlineQuery) ([]model.Kline, error) {
	if query.Symbol == "" || query.Interval == "" {
		return nil, fmt.Errorf("kline query requires symbol and interval")
	}

	params := []param{
		{Key: "symbol", Value: query.Symbol},
		{Key: "interval", Value: query.Interval},
	}
	if query.StartTime > 0 {
		params = append(params, param{Key: "startTime", Value: strconv.FormatInt(query.StartTime, 10)})
	}
	if query.EndTime > 0 {
		params = append(params, param{Key: "endTime", Value: strconv.FormatInt(query.EndTime, 10)})
	}
	if query.Limit > 0 {
		params = append(params, param{Key: "limit", Value: strconv.Itoa(query.Limit)})
	}

	body, err := c.do(ctx, http.MethodGet, klinesPath, params, false)
	if err != nil {
		return nil, err
	}

	return parseKlines(body)
}

// GetAccount fetches a snapshot of the futures account tied to the client's
// credentials: active asset balances and open positions.
//
// The call is signed. Zero-balance assets and zero-size positions are
// excluded; see model.Account.
func (c *Client) GetAccount(ctx context.Context) (model.Account, error) {
	body, err := c.do(ctx, http.MethodGet, accountPath, nil, true)
	if err != nil {
		return model.Account{}, err
	}

	return parseAccount(body, c.validate)
}

// GetInstruments fetches trading constraints for the requested symbols.
//
// The full exchange metadata endpoint is queried unsigned and filtered
// client-side to actively trading perpetual contracts in the requested set.
// Symbols that do not survive the filter are simply absent from the result.
func (c *Client) GetInstruments(ctx context.Context, symbols []string) (map[string]model.InstrumentInfo, error) {
	requested := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		requested[s] = true
	}

	body, err := c.do(ctx, http.MethodGet, exchangeInfoPath, nil, false)
	if err != nil {
		return nil, err
	}

	return parseInstruments(body, requested, c.validate)
}

// PlaceOrder submits an order, rendering its quantity against the
// instrument's lot size and its optional price against the tick size before
// signing. Formatting must precede signing because the formatted strings are
// part of the signed parameter set.
//
// The exchange's acknowledgment (order id, fill state, ...) is returned raw;
// callers interpret it.
func (c *Client) PlaceOrder(ctx context.Context, order model.Order, instrument model.InstrumentInfo) (json.RawMessage, error) {
	quantity, err := formatByStep(order.Quantity, instrument.LotSize)
	if err != nil {
		return nil, fmt.Errorf("order quantity: %w", err)
	}

	params := []param{
		{Key: "symbol", Value: order.Symbol},
		{Key: "side", Value: order.Side.String()},
		{Key: "type", Value: order.Type.String()},
		{Key: "reduceOnly", Value: strconv.FormatBool(order.ReduceOnly)},
		{Key: "quantity", Value: quantity},
	}
	if order.TimeInForce != nil {
		params = append(params, param{Key: "timeInForce", Value: order.TimeInForce.String()})
	}
	if order.Price != nil {
		price, err := formatByStep(*order.Price, instrument.TickSize)
		if err != nil {
			return nil, fmt.Errorf("order price: %w", err)
		}
		params = append(params, param{Key: "price", Value: price})
	}

	body, err := c.do(ctx, http.MethodPost, orderPath, params, true)
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("symbol", order.Symbol).
		Str("side", order.Side.String()).
		Str("quantity", quantity).
		Msg("order submitted")

	return json.RawMessage(body), nil
}

// do performs a single HTTP round trip and returns the response body.
//
// For signed requests the parameter list is extended with timestamp and
// signature, and the API key header is set. A non-2xx status is surfaced as
// a transport error carrying the status code and response body; nothing is
// retried.
func (c *Client) do(ctx context.Context, method, path string, params []param, signed bool) ([]byte, error) {
	if signed {
		if _, err := c.signer.sign(&params); err != nil {
			return nil, err
		}
	}

	url := c.config.BaseURL + path
	if len(params) > 0 {
		url += "?" + encodeParams(params)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %v", ErrTransport, err)
	}
	if signed {
		req.Header.Set(apiKeyHeader, c.config.APIKey)
	}

	log.Debug().Str("method", method).Str("path", path).Bool("signed", signed).Msg("futures API request")

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", ErrTransport, method, path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response body: %v", ErrTransport, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %s %s: status %d: %s", ErrTransport, method, path, resp.StatusCode, body)
	}

	return body, nil
}
