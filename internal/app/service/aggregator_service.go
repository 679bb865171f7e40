package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/washantonfcb10/perpscope/internal/app/port"
	"github.com/washantonfcb10/perpscope/internal/domain/entity"
	"github.com/washantonfcb10/perpscope/internal/pkg/utils"
	"github.com/washantonfcb10/perpscope/pkg/metrics"
)

// AggregatorService implements port.PortfolioAggregator. Per-wallet
// fetches run concurrently (bounded by maxConcurrent) and results are
// merged keyed by registry insertion order, so output is deterministic
// regardless of fetch completion order. A failed wallet never discards
// the view: it is reported in FailedWallets unless every wallet failed.
type AggregatorService struct {
	registry      port.WalletRegistry
	exchange      port.ExchangeClient
	marketData    port.MarketDataService
	logger        *zap.Logger
	maxConcurrent int
}

// NewAggregatorService creates a new AggregatorService. marketData may be
// nil; it only enriches the coin view with a mark price.
func NewAggregatorService(
	registry port.WalletRegistry,
	exchange port.ExchangeClient,
	marketData port.MarketDataService,
	maxConcurrent int,
	logger *zap.Logger,
) *AggregatorService {
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &AggregatorService{
		registry:      registry,
		exchange:      exchange,
		marketData:    marketData,
		logger:        logger.Named("AggregatorService"),
		maxConcurrent: maxConcurrent,
	}
}

// WalletView fetches positions, equity and open sell orders for exactly
// one tracked wallet. The positions fetch is checked before the orders
// fetch, so its failure wins when both would fail.
func (s *AggregatorService) WalletView(ctx context.Context, userID int64, address string) (*entity.WalletView, error) {
	addr, err := utils.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}
	if !s.isTracked(userID, addr) {
		return nil, entity.ErrWalletNotTracked
	}

	account, err := s.exchange.FetchAccount(ctx, addr)
	if err != nil {
		s.logger.Error("Failed to fetch account state",
			zap.String("wallet", utils.ShortenAddress(addr)), zap.Error(err))
		return nil, err
	}

	orders, err := s.exchange.FetchOpenOrders(ctx, addr, entity.OrderSideSell)
	if err != nil {
		s.logger.Error("Failed to fetch open orders",
			zap.String("wallet", utils.ShortenAddress(addr)), zap.Error(err))
		return nil, err
	}

	return &entity.WalletView{
		Address:   addr,
		Equity:    account.Equity,
		Positions: account.Positions,
		Orders:    orders,
	}, nil
}

// PortfolioView fetches every tracked wallet and merges same-coin
// positions into combined exposure figures. An empty tracked set yields
// an empty view, not an error.
func (s *AggregatorService) PortfolioView(ctx context.Context, userID int64) (*entity.PortfolioView, error) {
	wallets := s.registry.List(userID)
	if len(wallets) == 0 {
		return &entity.PortfolioView{Positions: []entity.AggregatedPosition{}}, nil
	}

	accounts, failed := s.fetchAccounts(ctx, wallets)
	if len(failed) == len(wallets) {
		return nil, fmt.Errorf("portfolio view for user %d: %w", userID, entity.ErrAllWalletsFailed)
	}

	view := &entity.PortfolioView{
		Positions:     mergePositions(accounts),
		FailedWallets: failed,
	}
	total := decimal.Zero
	for _, acct := range accounts {
		if acct != nil {
			total = total.Add(acct.Equity)
		}
	}
	view.TotalEquity = total

	if view.Partial() {
		metrics.PartialPortfolioViews.Inc()
		s.logger.Warn("Portfolio view is partial",
			zap.Int64("userID", userID),
			zap.Strings("failedWallets", failed))
	}
	return view, nil
}

// CoinView narrows the portfolio view to a single coin. The coin symbol
// match is case-sensitive, mirroring the exchange's symbols.
func (s *AggregatorService) CoinView(ctx context.Context, userID int64, coin string) (*entity.CoinView, error) {
	portfolio, err := s.PortfolioView(ctx, userID)
	if err != nil {
		return nil, err
	}

	for _, agg := range portfolio.Positions {
		if agg.Coin != coin {
			continue
		}
		view := &entity.CoinView{
			Position:      agg,
			FailedWallets: portfolio.FailedWallets,
		}
		if s.marketData != nil {
			mid, found, merr := s.marketData.MidFor(ctx, coin)
			if merr != nil {
				// Mark price is an enrichment, not part of the view contract.
				s.logger.Warn("Failed to fetch mid price for coin view",
					zap.String("coin", coin), zap.Error(merr))
			} else if found {
				view.MarkPrice = mid
			}
		}
		return view, nil
	}
	return nil, fmt.Errorf("coin %s: %w", coin, entity.ErrCoinNotFound)
}

// OrdersView lists open sell-side limit orders across all tracked
// wallets, with the same partial-failure policy as PortfolioView.
func (s *AggregatorService) OrdersView(ctx context.Context, userID int64) (*entity.OrdersView, error) {
	wallets := s.registry.List(userID)
	if len(wallets) == 0 {
		return &entity.OrdersView{Orders: []entity.Order{}}, nil
	}

	results := make([][]entity.Order, len(wallets))
	errs := make([]error, len(wallets))

	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrent)
	for i, addr := range wallets {
		i, addr := i, addr
		eg.Go(func() error {
			orders, err := s.exchange.FetchOpenOrders(childCtx, addr, entity.OrderSideSell)
			results[i] = orders
			errs[i] = err
			return nil
		})
	}
	// Goroutines report failures through errs, never to the group.
	_ = eg.Wait()

	view := &entity.OrdersView{Orders: []entity.Order{}}
	for i, addr := range wallets {
		if errs[i] != nil {
			s.logger.Error("Failed to fetch orders for wallet",
				zap.String("wallet", utils.ShortenAddress(addr)), zap.Error(errs[i]))
			view.FailedWallets = append(view.FailedWallets, addr)
			continue
		}
		view.Orders = append(view.Orders, results[i]...)
	}
	if len(view.FailedWallets) == len(wallets) {
		return nil, fmt.Errorf("orders view for user %d: %w", userID, entity.ErrAllWalletsFailed)
	}
	return view, nil
}

// fetchAccounts fetches account state for every wallet concurrently.
// The returned slice is indexed by registry position; failed wallets are
// nil in accounts and named in failed.
func (s *AggregatorService) fetchAccounts(ctx context.Context, wallets []string) (accounts []*entity.AccountSummary, failed []string) {
	accounts = make([]*entity.AccountSummary, len(wallets))
	errs := make([]error, len(wallets))

	eg, childCtx := errgroup.WithContext(ctx)
	eg.SetLimit(s.maxConcurrent)
	for i, addr := range wallets {
		i, addr := i, addr
		eg.Go(func() error {
			acct, err := s.exchange.FetchAccount(childCtx, addr)
			accounts[i] = acct
			errs[i] = err
			return nil
		})
	}
	_ = eg.Wait()

	for i, addr := range wallets {
		if errs[i] != nil {
			s.logger.Error("Failed to fetch account for wallet",
				zap.String("wallet", utils.ShortenAddress(addr)), zap.Error(errs[i]))
			accounts[i] = nil
			failed = append(failed, addr)
		}
	}
	return accounts, failed
}

// mergePositions groups positions by coin across wallets. accounts must
// be in registry order; the PerWallet sequences then inherit that order.
// Coins are sorted by symbol for stable output.
func mergePositions(accounts []*entity.AccountSummary) []entity.AggregatedPosition {
	byCoin := make(map[string]*entity.AggregatedPosition)
	for _, acct := range accounts {
		if acct == nil {
			continue
		}
		for _, pos := range acct.Positions {
			agg, ok := byCoin[pos.Coin]
			if !ok {
				agg = &entity.AggregatedPosition{Coin: pos.Coin}
				byCoin[pos.Coin] = agg
			}
			agg.NetSize = agg.NetSize.Add(pos.Size)
			agg.TotalUnrealizedPnl = agg.TotalUnrealizedPnl.Add(pos.UnrealizedPnl)
			agg.PerWallet = append(agg.PerWallet, pos)
		}
	}

	merged := make([]entity.AggregatedPosition, 0, len(byCoin))
	for _, agg := range byCoin {
		merged = append(merged, *agg)
	}
	sort.Slice(merged, func(i, j int) bool {
		return merged[i].Coin < merged[j].Coin
	})
	return merged
}

func (s *AggregatorService) isTracked(userID int64, addr string) bool {
	for _, w := range s.registry.List(userID) {
		if w == addr {
			return true
		}
	}
	return false
}

var _ port.PortfolioAggregator = (*AggregatorService)(nil)
