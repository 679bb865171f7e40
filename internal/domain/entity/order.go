package entity

import "github.com/shopspring/decimal"

// OrderSide represents the direction of an order.
type OrderSide string

const (
	// OrderSideBuy is a resting bid.
	OrderSideBuy OrderSide = "buy"
	// OrderSideSell is a resting ask.
	OrderSideSell OrderSide = "sell"
)

// Order represents an open (unfilled) limit order on one wallet.
// The model is side-agnostic even though the tracked feature set only
// surfaces sell-side orders.
type Order struct {
	Coin    string          `json:"coin"`
	Wallet  string          `json:"wallet"`
	Side    OrderSide       `json:"side"`
	Price   decimal.Decimal `json:"price"`
	Size    decimal.Decimal `json:"size"`
	OrderID string          `json:"orderId"`
}
