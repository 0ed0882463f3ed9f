// Package model defines core data types for the futures trading toolkit.
//
// This package contains the fundamental data structures exchanged between the
// REST client, the kline streamer, and the historical storage layer: candlestick
// (kline) records, account snapshots, orders, and instrument trading constraints.
//
// Klines carry OHLC values as float64, matching the precision the exchange
// itself uses for chart data. Order-sensitive reference values (tick size, lot
// size) are kept in their original decimal-string form because their fractional
// digit count defines the formatting precision the exchange enforces on orders.
package model

// Kline represents a fixed-interval OHLC candlestick from the futures market.
//
// Timestamps are Unix milliseconds as delivered by the exchange. A valid kline
// always satisfies CloseTime >= OpenTime, and any kline sequence returned by
// this codebase is ordered ascending by CloseTime.
type Kline struct {
	OpenTime  int64   `json:"open_time" bson:"open_time"`   // Interval open, Unix ms
	CloseTime int64   `json:"close_time" bson:"close_time"` // Interval close, Unix ms
	Open      float64 `json:"open" bson:"open"`             // Opening price
	High      float64 `json:"high" bson:"high"`             // Highest price in interval
	Low       float64 `json:"low" bson:"low"`               // Lowest price in interval
	Close     float64 `json:"close" bson:"close"`           // Closing price
}

// Asset is a single asset balance inside a futures account snapshot.
type Asset struct {
	Asset            string  // Asset symbol (e.g., "USDT")
	WalletBalance    float64 // Total wallet balance
	AvailableBalance float64 // Balance available for new orders
	UpdateTime       int64   // Last balance update, Unix ms
}

// Position is a single open futures position inside an account snapshot.
//
// PositionAmt is signed: positive for long exposure, negative for short.
type Position struct {
	Symbol           string  // Contract symbol (e.g., "BTCUSDT")
	UnrealizedProfit float64 // Unrealized PnL at snapshot time
	Leverage         uint64  // Configured leverage multiplier
	EntryPrice       float64 // Average entry price
	PositionSide     string  // "BOTH", "LONG" or "SHORT"
	PositionAmt      float64 // Signed position size in base asset
}

// Account is a point-in-time snapshot of a futures account.
//
// The snapshot reflects only active holdings: assets with a zero available
// balance and positions with a zero amount are excluded at parse time. It is
// rebuilt from scratch on every account query and never cached.
type Account struct {
	Assets    []Asset
	Positions []Position
}

// InstrumentInfo holds the trading constraints of a single perpetual contract.
//
// TickSize and LotSize are deliberately kept as the exchange's decimal strings
// (e.g., "0.010") rather than floats: the number of fractional digits in the
// string is the exact precision order prices and quantities must be rendered
// with, and a float64 round trip would lose trailing zeros.
type InstrumentInfo struct {
	Symbol   string  `json:"symbol"`
	TickSize string  `json:"tick_size"` // Minimum price increment, decimal string
	LotSize  string  `json:"lot_size"`  // Minimum quantity increment, decimal string
	MinQty   float64 `json:"min_qty"`   // Minimum order quantity
}
