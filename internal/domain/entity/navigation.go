package entity

// View identifies which screen a user session is currently on.
type View string

const (
	// ViewPortfolio is the combined cross-wallet portfolio. It is the
	// initial view of every session.
	ViewPortfolio View = "portfolio"
	// ViewWallet is a single tracked wallet, addressed by its index in
	// the user's tracked wallet set.
	ViewWallet View = "wallet"
	// ViewCoin is the cross-wallet aggregation for one coin.
	ViewCoin View = "coin"
	// ViewOrders is the open limit orders list across all wallets.
	ViewOrders View = "orders"
)

// NavigationState is a snapshot of a user session's current view pointer.
// WalletIndex is meaningful only when ActiveView is ViewWallet, Coin only
// when ActiveView is ViewCoin. Revision increments on every mutation and
// is used to discard fetch results that were issued for an older state.
type NavigationState struct {
	UserID      int64  `json:"userId"`
	ActiveView  View   `json:"activeView"`
	WalletIndex int    `json:"walletIndex,omitempty"`
	Coin        string `json:"coin,omitempty"`
	Revision    uint64 `json:"-"`
}

// ViewResult is a rendered view: the navigation state it was produced for
// plus exactly one populated payload matching State.ActiveView.
type ViewResult struct {
	State     NavigationState `json:"state"`
	Portfolio *PortfolioView  `json:"portfolio,omitempty"`
	Wallet    *WalletView     `json:"wallet,omitempty"`
	Coin      *CoinView       `json:"coinView,omitempty"`
	Orders    *OrdersView     `json:"orders,omitempty"`
}
