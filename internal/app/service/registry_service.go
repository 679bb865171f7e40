package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/washantonfcb10/perpscope/internal/app/port"
	"github.com/washantonfcb10/perpscope/internal/domain/entity"
	"github.com/washantonfcb10/perpscope/internal/pkg/utils"
)

// WalletObserver is notified after a wallet is removed from a user's
// tracked set, so navigation can re-point or reset itself.
type WalletObserver interface {
	// WalletRemoved receives the index the wallet occupied before
	// removal and the number of wallets remaining afterwards.
	WalletRemoved(userID int64, removedIndex int, remaining int)
}

// RegistryService implements port.WalletRegistry with an in-memory keyed
// store (user id -> tracked wallet set). Sets preserve insertion order;
// addresses are stored in canonical lowercase form. Entries for
// different users are disjoint, the single mutex only serializes
// mutations of the map itself.
type RegistryService struct {
	mu         sync.RWMutex
	wallets    map[int64][]string
	maxWallets int
	observer   WalletObserver
	logger     *zap.Logger
}

// NewRegistryService creates a new RegistryService. maxWallets caps each
// user's tracked set.
func NewRegistryService(maxWallets int, logger *zap.Logger) *RegistryService {
	if maxWallets <= 0 {
		maxWallets = 1
	}
	return &RegistryService{
		wallets:    make(map[int64][]string),
		maxWallets: maxWallets,
		logger:     logger.Named("RegistryService"),
	}
}

// SetObserver attaches the navigation observer. Called once during
// wiring, before the service handles requests.
func (s *RegistryService) SetObserver(o WalletObserver) {
	s.observer = o
}

// Track validates and appends an address to the user's tracked set.
func (s *RegistryService) Track(userID int64, address string) error {
	addr, err := utils.NormalizeAddress(address)
	if err != nil {
		s.logger.Warn("Rejected malformed wallet address",
			zap.Int64("userID", userID), zap.String("address", address))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tracked := s.wallets[userID]
	for _, w := range tracked {
		if w == addr {
			return entity.ErrDuplicateWallet
		}
	}
	if len(tracked) >= s.maxWallets {
		s.logger.Warn("Tracked wallet limit reached",
			zap.Int64("userID", userID), zap.Int("limit", s.maxWallets))
		return entity.ErrWalletLimitExceeded
	}

	s.wallets[userID] = append(tracked, addr)
	s.logger.Info("Wallet tracked",
		zap.Int64("userID", userID),
		zap.String("wallet", utils.ShortenAddress(addr)),
		zap.Int("trackedCount", len(tracked)+1))
	return nil
}

// Untrack removes an address from the user's tracked set and notifies the
// observer so the user's navigation state can adjust.
func (s *RegistryService) Untrack(userID int64, address string) error {
	addr, err := utils.NormalizeAddress(address)
	if err != nil {
		// A malformed address is trivially not tracked.
		return entity.ErrWalletNotTracked
	}

	s.mu.Lock()
	tracked := s.wallets[userID]
	idx := -1
	for i, w := range tracked {
		if w == addr {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return entity.ErrWalletNotTracked
	}

	tracked = append(tracked[:idx], tracked[idx+1:]...)
	if len(tracked) == 0 {
		// The set is destroyed once the user removes all wallets.
		delete(s.wallets, userID)
	} else {
		s.wallets[userID] = tracked
	}
	remaining := len(tracked)
	s.mu.Unlock()

	s.logger.Info("Wallet untracked",
		zap.Int64("userID", userID),
		zap.String("wallet", utils.ShortenAddress(addr)),
		zap.Int("trackedCount", remaining))

	if s.observer != nil {
		s.observer.WalletRemoved(userID, idx, remaining)
	}
	return nil
}

// List returns a copy of the user's tracked wallets in insertion order.
func (s *RegistryService) List(userID int64) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tracked := s.wallets[userID]
	out := make([]string, len(tracked))
	copy(out, tracked)
	return out
}

var _ port.WalletRegistry = (*RegistryService)(nil)
