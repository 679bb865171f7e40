package entity

import "github.com/shopspring/decimal"

// Position represents a single open perpetual exposure for one coin on one wallet.
// Size is signed following the exchange convention: positive for long, negative for short.
// Positions with zero size are never constructed; the exchange client filters them out.
type Position struct {
	Coin             string          `json:"coin"`
	Wallet           string          `json:"wallet"`
	Size             decimal.Decimal `json:"size"`
	EntryPrice       decimal.Decimal `json:"entryPrice"`
	UnrealizedPnl    decimal.Decimal `json:"unrealizedPnl"`
	Leverage         decimal.Decimal `json:"leverage"`
	LiquidationPrice decimal.Decimal `json:"liquidationPrice,omitempty"`
}

// IsLong reports whether the position is a long (positive size).
func (p Position) IsLong() bool {
	return p.Size.Sign() > 0
}

// AccountSummary is the normalized result of a single wallet state query:
// the wallet's open positions plus its account equity.
type AccountSummary struct {
	Address   string          `json:"address"`
	Equity    decimal.Decimal `json:"equity"`
	Positions []Position      `json:"positions"`
}
