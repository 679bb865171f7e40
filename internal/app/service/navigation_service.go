package service

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/washantonfcb10/perpscope/internal/app/port"
	"github.com/washantonfcb10/perpscope/internal/domain/entity"
)

// navState is the mutable per-user session state. It holds nothing but
// the current view pointer; view content is always fetched fresh from
// the aggregator on render.
type navState struct {
	view        entity.View
	walletIndex int
	coin        string
	revision    uint64
}

// NavigationService tracks which view each user session is on and
// resolves what the aggregator must fetch next. Every mutation bumps the
// state's revision; Render discards fetch results whose revision no
// longer matches, so a stale fetch can never be applied to a state that
// has moved on.
type NavigationService struct {
	mu         sync.Mutex
	sessions   map[int64]*navState
	registry   port.WalletRegistry
	aggregator port.PortfolioAggregator
	logger     *zap.Logger
}

// NewNavigationService creates a new NavigationService.
func NewNavigationService(
	registry port.WalletRegistry,
	aggregator port.PortfolioAggregator,
	logger *zap.Logger,
) *NavigationService {
	return &NavigationService{
		sessions:   make(map[int64]*navState),
		registry:   registry,
		aggregator: aggregator,
		logger:     logger.Named("NavigationService"),
	}
}

// state returns the user's session, creating it on first interaction
// with the initial Portfolio view. Callers must hold s.mu.
func (s *NavigationService) state(userID int64) *navState {
	st, ok := s.sessions[userID]
	if !ok {
		st = &navState{view: entity.ViewPortfolio}
		s.sessions[userID] = st
	}
	return st
}

// Current returns a snapshot of the user's navigation state.
func (s *NavigationService) Current(userID int64) entity.NavigationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshot(userID, s.state(userID))
}

func (s *NavigationService) snapshot(userID int64, st *navState) entity.NavigationState {
	return entity.NavigationState{
		UserID:      userID,
		ActiveView:  st.view,
		WalletIndex: st.walletIndex,
		Coin:        st.coin,
		Revision:    st.revision,
	}
}

// SelectWallet moves to the Wallet view for the given registry index.
// State is unchanged when the index is out of range.
func (s *NavigationService) SelectWallet(userID int64, index int) error {
	count := len(s.registry.List(userID))

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	if index < 0 || index >= count {
		return fmt.Errorf("index %d of %d wallets: %w", index, count, entity.ErrIndexOutOfRange)
	}
	st.view = entity.ViewWallet
	st.walletIndex = index
	st.coin = ""
	st.revision++
	return nil
}

// NextWallet advances to the next tracked wallet. Valid only from the
// Wallet view; at the last wallet it clamps (no-op) rather than wrapping.
func (s *NavigationService) NextWallet(userID int64) error {
	return s.stepWallet(userID, 1)
}

// PreviousWallet moves to the previous tracked wallet. Valid only from
// the Wallet view; at the first wallet it clamps (no-op).
func (s *NavigationService) PreviousWallet(userID int64) error {
	return s.stepWallet(userID, -1)
}

func (s *NavigationService) stepWallet(userID int64, delta int) error {
	count := len(s.registry.List(userID))

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	if st.view != entity.ViewWallet {
		return fmt.Errorf("wallet paging from %s view: %w", st.view, entity.ErrInvalidTransition)
	}
	next := st.walletIndex + delta
	if next < 0 || next >= count {
		// Clamp at the boundary. A no-op leaves the revision alone:
		// nothing about what to fetch has changed.
		return nil
	}
	st.walletIndex = next
	st.revision++
	return nil
}

// ShowPortfolio unconditionally moves to the combined Portfolio view.
func (s *NavigationService) ShowPortfolio(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.view = entity.ViewPortfolio
	st.walletIndex = 0
	st.coin = ""
	st.revision++
}

// ShowOrders unconditionally moves to the Orders view.
func (s *NavigationService) ShowOrders(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.view = entity.ViewOrders
	st.walletIndex = 0
	st.coin = ""
	st.revision++
}

// SelectCoin moves to the Coin view for symbol. The symbol is validated
// against the live aggregation, not a cache: if no tracked wallet
// currently holds a position in it, the transition fails with
// ErrCoinNotFound and state is unchanged.
func (s *NavigationService) SelectCoin(ctx context.Context, userID int64, symbol string) error {
	if _, err := s.aggregator.CoinView(ctx, userID, symbol); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.state(userID)
	st.view = entity.ViewCoin
	st.coin = symbol
	st.revision++
	return nil
}

// Render resolves the user's current view, fetches its content fresh
// from the aggregator, and returns the result tagged with the state it
// was rendered for. If the state moved on while fetching (a newer
// navigation command arrived), the result is discarded and ErrStaleView
// is returned.
func (s *NavigationService) Render(ctx context.Context, userID int64) (*entity.ViewResult, error) {
	s.mu.Lock()
	snap := s.snapshot(userID, s.state(userID))
	s.mu.Unlock()

	result := &entity.ViewResult{State: snap}
	var err error

	switch snap.ActiveView {
	case entity.ViewPortfolio:
		result.Portfolio, err = s.aggregator.PortfolioView(ctx, userID)
	case entity.ViewWallet:
		wallets := s.registry.List(userID)
		if snap.WalletIndex >= len(wallets) {
			return nil, fmt.Errorf("wallet index %d of %d: %w", snap.WalletIndex, len(wallets), entity.ErrIndexOutOfRange)
		}
		result.Wallet, err = s.aggregator.WalletView(ctx, userID, wallets[snap.WalletIndex])
	case entity.ViewCoin:
		result.Coin, err = s.aggregator.CoinView(ctx, userID, snap.Coin)
	case entity.ViewOrders:
		result.Orders, err = s.aggregator.OrdersView(ctx, userID)
	default:
		return nil, fmt.Errorf("unknown view %q: %w", snap.ActiveView, entity.ErrInvalidTransition)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	current := s.state(userID).revision
	s.mu.Unlock()
	if current != snap.Revision {
		s.logger.Debug("Discarding stale view result",
			zap.Int64("userID", userID),
			zap.Uint64("fetchedRevision", snap.Revision),
			zap.Uint64("currentRevision", current))
		return nil, entity.ErrStaleView
	}
	return result, nil
}

// WalletRemoved implements the registry's WalletObserver. Removing the
// selected wallet resets navigation to Portfolio; removing a wallet
// before the selected index shifts the index down so the same wallet
// stays selected. Any removal invalidates in-flight renders.
func (s *NavigationService) WalletRemoved(userID int64, removedIndex int, remaining int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.sessions[userID]
	if !ok {
		return
	}

	if st.view == entity.ViewWallet {
		switch {
		case remaining == 0 || removedIndex == st.walletIndex:
			st.view = entity.ViewPortfolio
			st.walletIndex = 0
			st.coin = ""
			s.logger.Debug("Selected wallet removed, navigation reset to portfolio",
				zap.Int64("userID", userID))
		case removedIndex < st.walletIndex:
			st.walletIndex--
		}
	}
	st.revision++
}

var _ WalletObserver = (*NavigationService)(nil)
