package stream

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"

	"github.com/karta134033/trade-utils/internal/model"
	"github.com/karta134033/trade-utils/internal/utils"
)

var (
	// defaultStreamerConfig provides sensible defaults for futures kline
	// streams.
	defaultStreamerConfig = StreamerConfig{
		BaseURL:    "wss://fstream.binance.com",
		MaxSymbols: 10,
	}
)

// StreamerConfig configures a KlineStreamer.
type StreamerConfig struct {
	// BaseURL is the WebSocket endpoint root of the futures stream API.
	BaseURL string

	// MaxSymbols caps how many symbols one connection may subscribe to.
	MaxSymbols int
}

// KlineStreamer subscribes to continuous kline streams on the futures
// WebSocket feed and emits one model.Kline per completed interval.
//
// The exchange pushes an update for the in-progress kline on every trade;
// only payloads flagged as closed are forwarded, so consumers see exactly one
// kline per symbol per interval.
type KlineStreamer struct {
	config   StreamerConfig
	validate *validator.Validate
}

// combinedMsg is the outer wrapper of the combined-stream endpoint: a stream
// identifier plus the raw event payload.
type combinedMsg struct {
	Stream string          `json:"stream" validate:"required"`
	Data   json.RawMessage `json:"data" validate:"required"`
}

// klineEvent is a kline update event. Prices arrive as numeric strings,
// timestamps as Unix milliseconds.
type klineEvent struct {
	Symbol string `json:"s" validate:"required"`
	Kline  struct {
		OpenTime  int64  `json:"t" validate:"required,gt=0"`
		CloseTime int64  `json:"T" validate:"required,gt=0"`
		Open      string `json:"o" validate:"required,numeric"`
		High      string `json:"h" validate:"required,numeric"`
		Low       string `json:"l" validate:"required,numeric"`
		Close     string `json:"c" validate:"required,numeric"`
		Closed    bool   `json:"x"`
	} `json:"k" validate:"required"`
}

// NewKlineStreamer creates a streamer with the specified configuration.
// If cfg is nil, defaults suitable for production are used.
func NewKlineStreamer(cfg *StreamerConfig) (*KlineStreamer, error) {
	if cfg == nil {
		cfg = &defaultStreamerConfig
	}

	config := *cfg
	if config.BaseURL == "" {
		config.BaseURL = defaultStreamerConfig.BaseURL
	}
	if config.MaxSymbols <= 0 {
		config.MaxSymbols = defaultStreamerConfig.MaxSymbols
	}

	return &KlineStreamer{
		config:   config,
		validate: validator.New(),
	}, nil
}

// SubscribeKlines opens a combined stream for the given symbols and interval
// and returns a channel of closed klines. The channel is closed when the
// connection drops or ctx is cancelled.
func (ks *KlineStreamer) SubscribeKlines(ctx context.Context, symbols []string, interval string) (<-chan model.Kline, error) {
	if err := utils.ValidateSymbols(symbols, ks.config.MaxSymbols); err != nil {
		return nil, err
	}
	if err := utils.ValidateInterval(interval); err != nil {
		return nil, err
	}

	client, err := NewClient(ctx, Config{
		Endpoint: ks.buildStreamURL(symbols, interval),
		Handler:  ks.handleKlineMessage,
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to create kline stream client")
		return nil, err
	}

	return client.KlineChan, nil
}

// buildStreamURL constructs the combined-stream URL:
// wss://.../stream?streams=btcusdt@kline_15m/ethusdt@kline_15m
func (ks *KlineStreamer) buildStreamURL(symbols []string, interval string) string {
	streams := make([]string, 0, len(symbols))
	for _, s := range symbols {
		streams = append(streams, fmt.Sprintf("%s@kline_%s", strings.ToLower(s), interval))
	}
	return fmt.Sprintf("%s/stream?streams=%s", ks.config.BaseURL, strings.Join(streams, "/"))
}

// handleKlineMessage decodes one combined-stream message, validates it, and
// forwards the kline if its interval has completed.
func (ks *KlineStreamer) handleKlineMessage(raw []byte, klineChan chan<- model.Kline) error {
	var m combinedMsg
	if err := json.Unmarshal(raw, &m); err != nil {
		log.Error().Err(err).Msg("invalid combined-stream JSON")
		return err
	}

	var event klineEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		log.Error().Err(err).Msg("invalid kline event JSON")
		return err
	}

	if err := ks.validate.Struct(&event); err != nil {
		log.Warn().Err(err).Str("stream", m.Stream).Msg("kline event validation failed")
		return err
	}

	// In-progress updates are dropped; one kline per symbol per interval.
	if !event.Kline.Closed {
		return nil
	}

	kline, err := toKline(event)
	if err != nil {
		log.Error().Err(err).Str("symbol", event.Symbol).Msg("invalid kline event values")
		return err
	}

	klineChan <- kline
	return nil
}

// toKline converts the event's numeric strings, enforcing the close-after-
// open invariant carried by every kline in this codebase.
func toKline(event klineEvent) (model.Kline, error) {
	k := event.Kline
	if k.CloseTime < k.OpenTime {
		return model.Kline{}, fmt.Errorf("close time %d precedes open time %d", k.CloseTime, k.OpenTime)
	}

	kline := model.Kline{
		OpenTime:  k.OpenTime,
		CloseTime: k.CloseTime,
	}
	fields := []struct {
		raw string
		dst *float64
	}{
		{raw: k.Open, dst: &kline.Open},
		{raw: k.High, dst: &kline.High},
		{raw: k.Low, dst: &kline.Low},
		{raw: k.Close, dst: &kline.Close},
	}
	for _, f := range fields {
		val, err := strconv.ParseFloat(f.raw, 64)
		if err != nil {
			return model.Kline{}, fmt.Errorf("price %q is not numeric", f.raw)
		}
		*f.dst = val
	}

	return kline, nil
}
