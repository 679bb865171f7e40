package service

import (
	"context"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/washantonfcb10/perpscope/internal/app/port"
)

const midsCacheKey = "allMids"

// MarketDataService implements port.MarketDataService with a short-TTL
// cache in front of the exchange's mid-price endpoint. Position and
// order data is always fetched fresh; only market-wide mids are cached,
// since they are shared across users and change continuously anyway.
type MarketDataService struct {
	exchange port.ExchangeClient
	cache    *cache.Cache
	logger   *zap.Logger
}

// NewMarketDataService creates a new MarketDataService with the given
// cache TTL and cleanup interval.
func NewMarketDataService(
	exchange port.ExchangeClient,
	ttl time.Duration,
	cleanup time.Duration,
	logger *zap.Logger,
) *MarketDataService {
	return &MarketDataService{
		exchange: exchange,
		cache:    cache.New(ttl, cleanup),
		logger:   logger.Named("MarketDataService"),
	}
}

// Mids returns the current mid price for every listed coin, serving from
// cache within the TTL.
func (s *MarketDataService) Mids(ctx context.Context) (map[string]decimal.Decimal, error) {
	if cached, found := s.cache.Get(midsCacheKey); found {
		return cached.(map[string]decimal.Decimal), nil
	}

	mids, err := s.exchange.FetchMids(ctx)
	if err != nil {
		s.logger.Error("Failed to fetch mids", zap.Error(err))
		return nil, err
	}
	s.cache.Set(midsCacheKey, mids, cache.DefaultExpiration)
	s.logger.Debug("Cached fresh mids", zap.Int("coinCount", len(mids)))
	return mids, nil
}

// MidFor looks up one coin's mid price, falling back to a
// case-insensitive match when the exact symbol is absent.
func (s *MarketDataService) MidFor(ctx context.Context, coin string) (decimal.Decimal, bool, error) {
	mids, err := s.Mids(ctx)
	if err != nil {
		return decimal.Zero, false, err
	}
	if mid, ok := mids[coin]; ok {
		return mid, true, nil
	}
	for sym, mid := range mids {
		if strings.EqualFold(sym, coin) {
			return mid, true, nil
		}
	}
	return decimal.Zero, false, nil
}

var _ port.MarketDataService = (*MarketDataService)(nil)
