package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/washantonfcb10/perpscope/internal/domain/entity"
)

// ExchangeClient issues read-only queries against the exchange for a
// single wallet address. Implementations classify failures as
// entity.KindNetwork (transient) or entity.KindExchange (malformed or
// unexpected response) and must bound every call with a timeout.
type ExchangeClient interface {
	// FetchAccount returns the wallet's open positions (zero-size
	// positions excluded) together with its account equity.
	FetchAccount(ctx context.Context, address string) (*entity.AccountSummary, error)

	// FetchOpenOrders returns the wallet's resting limit orders filtered
	// to the given side. The returned sequence preserves the order
	// reported by the exchange.
	FetchOpenOrders(ctx context.Context, address string, side entity.OrderSide) ([]entity.Order, error)

	// FetchMids returns the current mid price for every listed coin.
	FetchMids(ctx context.Context) (map[string]decimal.Decimal, error)
}

// WalletRegistry keeps the per-user ordered set of tracked wallets.
type WalletRegistry interface {
	Track(userID int64, address string) error
	Untrack(userID int64, address string) error
	// List returns the user's tracked wallets in insertion order. It
	// never fails; an untracked user yields an empty slice.
	List(userID int64) []string
}

// PortfolioAggregator fetches and merges exchange data for a user's
// tracked wallets.
type PortfolioAggregator interface {
	WalletView(ctx context.Context, userID int64, address string) (*entity.WalletView, error)
	PortfolioView(ctx context.Context, userID int64) (*entity.PortfolioView, error)
	CoinView(ctx context.Context, userID int64, coin string) (*entity.CoinView, error)
	OrdersView(ctx context.Context, userID int64) (*entity.OrdersView, error)
}

// MarketDataService serves current mid prices, caching them briefly to
// avoid hammering the exchange on every render.
type MarketDataService interface {
	Mids(ctx context.Context) (map[string]decimal.Decimal, error)
	// MidFor looks up one coin's mid price, case-insensitively.
	MidFor(ctx context.Context, coin string) (decimal.Decimal, bool, error)
}
