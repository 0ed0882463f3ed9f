package model

// OrderSide indicates which side of the book an order takes.
type OrderSide int

const (
	// Buy opens or increases long exposure.
	Buy OrderSide = iota

	// Sell opens or increases short exposure.
	Sell
)

// String renders the side in the exchange's expected wire format.
func (s OrderSide) String() string {
	if s == Sell {
		return "SELL"
	}
	return "BUY"
}

// OrderType is the execution type of an order. Only market orders are
// supported today; the type exists so limit and stop variants can be added
// without changing the order wire format.
type OrderType int

const (
	// Market executes immediately at the best available price.
	Market OrderType = iota
)

// String renders the order type in the exchange's expected wire format.
func (t OrderType) String() string {
	return "MARKET"
}

// TimeInForce controls how long an order stays working on the book.
type TimeInForce int

const (
	// GTC (good-till-cancel) keeps the order working until filled or canceled.
	GTC TimeInForce = iota
)

// String renders the time-in-force in the exchange's expected wire format.
func (t TimeInForce) String() string {
	return "GTC"
}

// Order describes a single order submission to the futures exchange.
//
// Orders are transient: callers construct one per submission and the client
// never persists them. Price and TimeInForce are optional; when nil they are
// omitted from the request entirely. ReduceOnly restricts the order to
// decreasing an existing position.
type Order struct {
	Symbol      string
	Side        OrderSide
	Type        OrderType
	Quantity    float64
	Price       *float64
	TimeInForce *TimeInForce
	ReduceOnly  bool
}

// MarketOrder builds a plain market order with no price, no time-in-force and
// the reduce-only flag cleared.
func MarketOrder(symbol string, side OrderSide, quantity float64) Order {
	return Order{
		Symbol:   symbol,
		Side:     side,
		Type:     Market,
		Quantity: quantity,
	}
}

// TradeSide is the direction of an open trade, used by callers that track
// position direction independently of individual orders.
type TradeSide int

const (
	// FlatSide means no open exposure.
	FlatSide TradeSide = iota

	// LongSide means net long exposure.
	LongSide

	// ShortSide means net short exposure.
	ShortSide
)

// Value maps the side to its sign: +1 for long, -1 for short, 0 for flat.
// Multiplying a position size by Value gives signed exposure.
func (s TradeSide) Value() float64 {
	switch s {
	case LongSide:
		return 1
	case ShortSide:
		return -1
	default:
		return 0
	}
}
