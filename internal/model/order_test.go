package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_OrderWireFormats(t *testing.T) {
	assert.Equal(t, "BUY", Buy.String())
	assert.Equal(t, "SELL", Sell.String())
	assert.Equal(t, "MARKET", Market.String())
	assert.Equal(t, "GTC", GTC.String())
}

func Test_MarketOrder(t *testing.T) {
	order := MarketOrder("BTCUSDT", Sell, 0.5)

	assert.Equal(t, "BTCUSDT", order.Symbol)
	assert.Equal(t, Sell, order.Side)
	assert.Equal(t, Market, order.Type)
	assert.Equal(t, 0.5, order.Quantity)
	assert.Nil(t, order.Price, "Market orders carry no price")
	assert.Nil(t, order.TimeInForce, "Market orders carry no time-in-force")
	assert.False(t, order.ReduceOnly)
}

func Test_TradeSideValue(t *testing.T) {
	assert.Equal(t, 1.0, LongSide.Value())
	assert.Equal(t, -1.0, ShortSide.Value())
	assert.Equal(t, 0.0, FlatSide.Value())

	// Signed exposure is position size times the side's sign.
	assert.Equal(t, -0.25, 0.25*ShortSide.Value())
}
