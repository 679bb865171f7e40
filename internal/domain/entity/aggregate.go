package entity

import "github.com/shopspring/decimal"

// AggregatedPosition is the combined cross-wallet exposure for one coin.
// NetSize is the algebraic sum of the contributing sizes and
// TotalUnrealizedPnl their arithmetic sum. PerWallet preserves the
// registry insertion order of the contributing wallets, never fetch
// completion order, so repeated calls produce identical output.
type AggregatedPosition struct {
	Coin               string          `json:"coin"`
	NetSize            decimal.Decimal `json:"netSize"`
	TotalUnrealizedPnl decimal.Decimal `json:"totalUnrealizedPnl"`
	PerWallet          []Position      `json:"perWallet"`
}

// WalletView holds everything shown for a single tracked wallet.
type WalletView struct {
	Address   string          `json:"address"`
	Equity    decimal.Decimal `json:"equity"`
	Positions []Position      `json:"positions"`
	Orders    []Order         `json:"orders"`
}

// PortfolioView is the cross-wallet aggregation result. FailedWallets
// names the wallets whose fetch failed; a non-empty list marks the view
// as partial but still usable.
type PortfolioView struct {
	Positions     []AggregatedPosition `json:"positions"`
	TotalEquity   decimal.Decimal      `json:"totalEquity"`
	FailedWallets []string             `json:"failedWallets,omitempty"`
}

// Partial reports whether the view is missing data for one or more wallets.
func (v *PortfolioView) Partial() bool {
	return len(v.FailedWallets) > 0
}

// CoinView is the portfolio view narrowed to a single coin, enriched with
// the current mid price when market data is available.
type CoinView struct {
	Position      AggregatedPosition `json:"position"`
	MarkPrice     decimal.Decimal    `json:"markPrice,omitempty"`
	FailedWallets []string           `json:"failedWallets,omitempty"`
}

// OrdersView lists open limit orders across all tracked wallets, with the
// same partial-failure semantics as PortfolioView.
type OrdersView struct {
	Orders        []Order  `json:"orders"`
	FailedWallets []string `json:"failedWallets,omitempty"`
}

// Partial reports whether the view is missing data for one or more wallets.
func (v *OrdersView) Partial() bool {
	return len(v.FailedWallets) > 0
}
