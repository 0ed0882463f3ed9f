package stream

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karta134033/trade-utils/internal/model"
)

// klineMessage builds a realistic combined-stream kline payload.
func klineMessage(symbol, interval, open, high, low, closePrice string, openTime, closeTime int64, closed bool) []byte {
	return []byte(fmt.Sprintf(`{
		"stream": "%s@kline_%s",
		"data": {
			"e": "kline", "E": %d, "s": "%s",
			"k": {
				"t": %d, "T": %d, "s": "%s", "i": "%s",
				"o": "%s", "h": "%s", "l": "%s", "c": "%s",
				"v": "100.5", "x": %t
			}
		}
	}`, symbol, interval, closeTime, symbol, openTime, closeTime, symbol, interval,
		open, high, low, closePrice, closed))
}

func Test_NewKlineStreamer(t *testing.T) {
	tests := []struct {
		name   string
		config *StreamerConfig
	}{
		{name: "Nil configuration uses defaults", config: nil},
		{name: "Empty fields use defaults", config: &StreamerConfig{}},
		{
			name:   "Custom configuration",
			config: &StreamerConfig{BaseURL: "wss://testnet.binancefuture.com", MaxSymbols: 3},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			streamer, err := NewKlineStreamer(tt.config)
			require.NoError(t, err)
			require.NotNil(t, streamer)
			assert.NotEmpty(t, streamer.config.BaseURL)
			assert.Positive(t, streamer.config.MaxSymbols)
		})
	}
}

func Test_buildStreamURL(t *testing.T) {
	streamer, err := NewKlineStreamer(nil)
	require.NoError(t, err)

	url := streamer.buildStreamURL([]string{"BTCUSDT", "ETHUSDT"}, "15m")
	assert.Equal(t,
		"wss://fstream.binance.com/stream?streams=btcusdt@kline_15m/ethusdt@kline_15m",
		url)
}

func Test_handleKlineMessage_ClosedKline(t *testing.T) {
	streamer, err := NewKlineStreamer(nil)
	require.NoError(t, err)

	ch := make(chan model.Kline, 1)
	msg := klineMessage("BTCUSDT", "15m", "17165.9", "17198.1", "16888.3", "16977.4",
		1669852800000, 1669853699999, true)

	require.NoError(t, streamer.handleKlineMessage(msg, ch))

	require.Len(t, ch, 1)
	kline := <-ch
	assert.Equal(t, int64(1669852800000), kline.OpenTime)
	assert.Equal(t, int64(1669853699999), kline.CloseTime)
	assert.Equal(t, 17165.9, kline.Open)
	assert.Equal(t, 16977.4, kline.Close)
}

func Test_handleKlineMessage_InProgressDropped(t *testing.T) {
	streamer, err := NewKlineStreamer(nil)
	require.NoError(t, err)

	ch := make(chan model.Kline, 1)
	msg := klineMessage("BTCUSDT", "15m", "17165.9", "17198.1", "16888.3", "16977.4",
		1669852800000, 1669853699999, false)

	require.NoError(t, streamer.handleKlineMessage(msg, ch))
	assert.Empty(t, ch, "In-progress kline updates must not be forwarded")
}

func Test_handleKlineMessage_Malformed(t *testing.T) {
	streamer, err := NewKlineStreamer(nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		msg  []byte
	}{
		{name: "Not JSON", msg: []byte(`garbage`)},
		{name: "Missing data payload", msg: []byte(`{"stream": "btcusdt@kline_15m"}`)},
		{
			name: "Non-numeric price",
			msg: klineMessage("BTCUSDT", "15m", "not-a-price", "17198.1", "16888.3", "16977.4",
				1669852800000, 1669853699999, true),
		},
		{
			name: "Missing open time",
			msg: []byte(`{"stream": "btcusdt@kline_15m",
				"data": {"s": "BTCUSDT", "k": {"T": 2, "o": "1", "h": "1", "l": "1", "c": "1", "x": true}}}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ch := make(chan model.Kline, 1)
			err := streamer.handleKlineMessage(tt.msg, ch)
			assert.Error(t, err)
			assert.Empty(t, ch)
		})
	}
}

func Test_SubscribeKlines_Validation(t *testing.T) {
	streamer, err := NewKlineStreamer(&StreamerConfig{MaxSymbols: 1})
	require.NoError(t, err)

	_, err = streamer.SubscribeKlines(context.Background(), nil, "15m")
	assert.Error(t, err, "Zero symbols should be rejected before dialing")

	_, err = streamer.SubscribeKlines(context.Background(), []string{"BTCUSDT", "ETHUSDT"}, "15m")
	assert.Error(t, err, "Symbol count above the limit should be rejected")

	_, err = streamer.SubscribeKlines(context.Background(), []string{"BTCUSDT"}, "2m")
	assert.Error(t, err, "Unsupported interval should be rejected before dialing")
}
