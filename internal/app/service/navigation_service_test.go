package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/washantonfcb10/perpscope/internal/domain/entity"
)

// fakeAggregator returns empty views; onPortfolio lets a test run code
// while the fetch is notionally in flight.
type fakeAggregator struct {
	coins       map[string]bool
	onPortfolio func()
}

func (f *fakeAggregator) WalletView(_ context.Context, _ int64, address string) (*entity.WalletView, error) {
	return &entity.WalletView{Address: address}, nil
}

func (f *fakeAggregator) PortfolioView(context.Context, int64) (*entity.PortfolioView, error) {
	if f.onPortfolio != nil {
		f.onPortfolio()
	}
	return &entity.PortfolioView{Positions: []entity.AggregatedPosition{}}, nil
}

func (f *fakeAggregator) CoinView(_ context.Context, _ int64, coin string) (*entity.CoinView, error) {
	if !f.coins[coin] {
		return nil, fmt.Errorf("coin %s: %w", coin, entity.ErrCoinNotFound)
	}
	return &entity.CoinView{Position: entity.AggregatedPosition{Coin: coin}}, nil
}

func (f *fakeAggregator) OrdersView(context.Context, int64) (*entity.OrdersView, error) {
	return &entity.OrdersView{Orders: []entity.Order{}}, nil
}

func newNavFixture(t *testing.T, wallets ...string) (*NavigationService, *RegistryService, *fakeAggregator) {
	t.Helper()
	reg := newTestRegistry(10)
	for _, w := range wallets {
		if err := reg.Track(1, w); err != nil {
			t.Fatalf("Track(%s) failed: %v", w, err)
		}
	}
	agg := &fakeAggregator{coins: make(map[string]bool)}
	nav := NewNavigationService(reg, agg, zap.NewNop())
	reg.SetObserver(nav)
	return nav, reg, agg
}

func TestNavigationInitialState(t *testing.T) {
	nav, _, _ := newNavFixture(t, walletA)

	st := nav.Current(1)
	if st.ActiveView != entity.ViewPortfolio {
		t.Errorf("initial view = %s, want portfolio", st.ActiveView)
	}
	if st.WalletIndex != 0 || st.Coin != "" {
		t.Errorf("initial state = %+v, want zero index and no coin", st)
	}
}

func TestSelectWallet(t *testing.T) {
	nav, _, _ := newNavFixture(t, walletA, walletB)

	if err := nav.SelectWallet(1, 1); err != nil {
		t.Fatalf("SelectWallet(1) failed: %v", err)
	}
	st := nav.Current(1)
	if st.ActiveView != entity.ViewWallet || st.WalletIndex != 1 {
		t.Errorf("state = %+v, want wallet view index 1", st)
	}
}

func TestSelectWalletOutOfRange(t *testing.T) {
	nav, _, _ := newNavFixture(t, walletA, walletB)

	for _, idx := range []int{-1, 2, 100} {
		if err := nav.SelectWallet(1, idx); !errors.Is(err, entity.ErrIndexOutOfRange) {
			t.Errorf("SelectWallet(%d) = %v, want ErrIndexOutOfRange", idx, err)
		}
	}
	// A rejected transition leaves state untouched.
	if st := nav.Current(1); st.ActiveView != entity.ViewPortfolio {
		t.Errorf("view after rejected selects = %s, want portfolio", st.ActiveView)
	}
}

func TestWalletPaging(t *testing.T) {
	nav, _, _ := newNavFixture(t, walletA, walletB, walletC)

	if err := nav.SelectWallet(1, 0); err != nil {
		t.Fatalf("SelectWallet failed: %v", err)
	}

	if err := nav.NextWallet(1); err != nil {
		t.Fatalf("NextWallet failed: %v", err)
	}
	if st := nav.Current(1); st.WalletIndex != 1 {
		t.Errorf("index after next = %d, want 1", st.WalletIndex)
	}

	if err := nav.PreviousWallet(1); err != nil {
		t.Fatalf("PreviousWallet failed: %v", err)
	}
	if st := nav.Current(1); st.WalletIndex != 0 {
		t.Errorf("index after previous = %d, want 0", st.WalletIndex)
	}
}

func TestWalletPagingClampsAtBoundaries(t *testing.T) {
	nav, _, _ := newNavFixture(t, walletA)

	if err := nav.SelectWallet(1, 0); err != nil {
		t.Fatalf("SelectWallet failed: %v", err)
	}
	revBefore := nav.Current(1).Revision

	// With a single wallet both directions clamp silently.
	if err := nav.NextWallet(1); err != nil {
		t.Errorf("NextWallet at last wallet = %v, want nil (clamp)", err)
	}
	if err := nav.PreviousWallet(1); err != nil {
		t.Errorf("PreviousWallet at first wallet = %v, want nil (clamp)", err)
	}

	st := nav.Current(1)
	if st.WalletIndex != 0 {
		t.Errorf("index after clamped paging = %d, want 0", st.WalletIndex)
	}
	if st.Revision != revBefore {
		t.Errorf("revision after clamped paging = %d, want unchanged %d", st.Revision, revBefore)
	}
}

func TestWalletPagingRequiresWalletView(t *testing.T) {
	nav, _, _ := newNavFixture(t, walletA, walletB)

	if err := nav.NextWallet(1); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Errorf("NextWallet from portfolio view = %v, want ErrInvalidTransition", err)
	}
	nav.ShowOrders(1)
	if err := nav.PreviousWallet(1); !errors.Is(err, entity.ErrInvalidTransition) {
		t.Errorf("PreviousWallet from orders view = %v, want ErrInvalidTransition", err)
	}
}

func TestShowPortfolioAndOrdersAlwaysAllowed(t *testing.T) {
	nav, _, agg := newNavFixture(t, walletA)
	agg.coins["ETH"] = true

	if err := nav.SelectCoin(context.Background(), 1, "ETH"); err != nil {
		t.Fatalf("SelectCoin failed: %v", err)
	}

	nav.ShowOrders(1)
	if st := nav.Current(1); st.ActiveView != entity.ViewOrders {
		t.Errorf("view = %s, want orders", st.ActiveView)
	}

	nav.ShowPortfolio(1)
	st := nav.Current(1)
	if st.ActiveView != entity.ViewPortfolio {
		t.Errorf("view = %s, want portfolio", st.ActiveView)
	}
	if st.Coin != "" {
		t.Errorf("coin after leaving coin view = %q, want cleared", st.Coin)
	}
}

func TestSelectCoin(t *testing.T) {
	nav, _, agg := newNavFixture(t, walletA)
	agg.coins["ETH"] = true

	if err := nav.SelectCoin(context.Background(), 1, "ETH"); err != nil {
		t.Fatalf("SelectCoin failed: %v", err)
	}
	st := nav.Current(1)
	if st.ActiveView != entity.ViewCoin || st.Coin != "ETH" {
		t.Errorf("state = %+v, want coin view ETH", st)
	}
}

func TestSelectCoinNotHeld(t *testing.T) {
	nav, _, _ := newNavFixture(t, walletA)

	if err := nav.SelectCoin(context.Background(), 1, "DOGE"); !errors.Is(err, entity.ErrCoinNotFound) {
		t.Errorf("SelectCoin(unheld) = %v, want ErrCoinNotFound", err)
	}
	if st := nav.Current(1); st.ActiveView != entity.ViewPortfolio {
		t.Errorf("view after rejected coin select = %s, want portfolio", st.ActiveView)
	}
}

func TestRenderCurrentView(t *testing.T) {
	nav, _, _ := newNavFixture(t, walletA, walletB)

	result, err := nav.Render(context.Background(), 1)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if result.Portfolio == nil {
		t.Error("portfolio view result missing Portfolio payload")
	}
	if result.Wallet != nil || result.Coin != nil || result.Orders != nil {
		t.Error("portfolio view result carries extra payloads")
	}

	if err := nav.SelectWallet(1, 1); err != nil {
		t.Fatalf("SelectWallet failed: %v", err)
	}
	result, err = nav.Render(context.Background(), 1)
	if err != nil {
		t.Fatalf("Render(wallet) failed: %v", err)
	}
	if result.Wallet == nil || result.Wallet.Address != walletB {
		t.Errorf("wallet result = %+v, want walletB", result.Wallet)
	}
}

func TestRenderDiscardsStaleResult(t *testing.T) {
	nav, _, agg := newNavFixture(t, walletA)

	// The user issues a new navigation command while the portfolio
	// fetch is in flight; the fetched result must be discarded.
	agg.onPortfolio = func() {
		nav.ShowOrders(1)
	}
	if _, err := nav.Render(context.Background(), 1); !errors.Is(err, entity.ErrStaleView) {
		t.Errorf("Render with concurrent navigation = %v, want ErrStaleView", err)
	}

	// The next render reflects the newer state.
	agg.onPortfolio = nil
	result, err := nav.Render(context.Background(), 1)
	if err != nil {
		t.Fatalf("Render after stale discard failed: %v", err)
	}
	if result.State.ActiveView != entity.ViewOrders || result.Orders == nil {
		t.Errorf("result = %+v, want orders view", result.State)
	}
}

func TestWalletRemovedResetsSelectedWallet(t *testing.T) {
	nav, reg, _ := newNavFixture(t, walletA, walletB)

	if err := nav.SelectWallet(1, 1); err != nil {
		t.Fatalf("SelectWallet failed: %v", err)
	}
	if err := reg.Untrack(1, walletB); err != nil {
		t.Fatalf("Untrack failed: %v", err)
	}

	st := nav.Current(1)
	if st.ActiveView != entity.ViewPortfolio || st.WalletIndex != 0 {
		t.Errorf("state after removing selected wallet = %+v, want portfolio reset", st)
	}
}

func TestWalletRemovedShiftsEarlierIndex(t *testing.T) {
	nav, reg, _ := newNavFixture(t, walletA, walletB, walletC)

	if err := nav.SelectWallet(1, 2); err != nil {
		t.Fatalf("SelectWallet failed: %v", err)
	}
	if err := reg.Untrack(1, walletA); err != nil {
		t.Fatalf("Untrack failed: %v", err)
	}

	st := nav.Current(1)
	if st.ActiveView != entity.ViewWallet || st.WalletIndex != 1 {
		t.Errorf("state = %+v, want wallet view index 1 (same wallet selected)", st)
	}
	// walletC must still be the selected wallet.
	if wallets := reg.List(1); wallets[st.WalletIndex] != walletC {
		t.Errorf("selected wallet = %s, want %s", wallets[st.WalletIndex], walletC)
	}
}

func TestWalletRemovedAfterSelectedKeepsIndex(t *testing.T) {
	nav, reg, _ := newNavFixture(t, walletA, walletB, walletC)

	if err := nav.SelectWallet(1, 0); err != nil {
		t.Fatalf("SelectWallet failed: %v", err)
	}
	if err := reg.Untrack(1, walletC); err != nil {
		t.Fatalf("Untrack failed: %v", err)
	}

	st := nav.Current(1)
	if st.ActiveView != entity.ViewWallet || st.WalletIndex != 0 {
		t.Errorf("state = %+v, want wallet view index 0 unchanged", st)
	}
}

func TestWalletRemovalInvalidatesInFlightRender(t *testing.T) {
	nav, reg, agg := newNavFixture(t, walletA, walletB)

	agg.onPortfolio = func() {
		if err := reg.Untrack(1, walletB); err != nil {
			t.Fatalf("Untrack failed: %v", err)
		}
	}
	if _, err := nav.Render(context.Background(), 1); !errors.Is(err, entity.ErrStaleView) {
		t.Errorf("Render with concurrent removal = %v, want ErrStaleView", err)
	}
}

func TestNavigationSessionsAreIndependent(t *testing.T) {
	nav, reg, _ := newNavFixture(t, walletA, walletB)
	if err := reg.Track(2, walletC); err != nil {
		t.Fatalf("Track for user 2 failed: %v", err)
	}

	if err := nav.SelectWallet(1, 1); err != nil {
		t.Fatalf("SelectWallet failed: %v", err)
	}
	if st := nav.Current(2); st.ActiveView != entity.ViewPortfolio {
		t.Errorf("user 2 view = %s, want untouched portfolio", st.ActiveView)
	}
}
