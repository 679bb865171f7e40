package hyperliquid

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/washantonfcb10/perpscope/internal/domain/entity"
)

// decodeAccount parses a clearinghouseState response body into a
// normalized account summary. Positions with zero size are dropped, per
// the data model. Any malformed numeric field fails the whole decode.
func decodeAccount(address string, body []byte) (*entity.AccountSummary, error) {
	var state clearinghouseState
	if err := json.Unmarshal(body, &state); err != nil {
		return nil, fmt.Errorf("malformed clearinghouseState response: %w", err)
	}

	equity := decimal.Zero
	if state.CrossMarginSummary.AccountValue != "" {
		var err error
		equity, err = decimal.NewFromString(state.CrossMarginSummary.AccountValue)
		if err != nil {
			return nil, fmt.Errorf("malformed accountValue %q: %w", state.CrossMarginSummary.AccountValue, err)
		}
	}

	positions := make([]entity.Position, 0, len(state.AssetPositions))
	for _, ap := range state.AssetPositions {
		raw := ap.Position
		size, err := decimal.NewFromString(raw.Szi)
		if err != nil {
			return nil, fmt.Errorf("malformed szi %q for coin %s: %w", raw.Szi, raw.Coin, err)
		}
		if size.IsZero() {
			continue
		}
		entryPx, err := decimal.NewFromString(raw.EntryPx)
		if err != nil {
			return nil, fmt.Errorf("malformed entryPx %q for coin %s: %w", raw.EntryPx, raw.Coin, err)
		}
		pnl, err := decimal.NewFromString(raw.UnrealizedPnl)
		if err != nil {
			return nil, fmt.Errorf("malformed unrealizedPnl %q for coin %s: %w", raw.UnrealizedPnl, raw.Coin, err)
		}

		pos := entity.Position{
			Coin:          raw.Coin,
			Wallet:        address,
			Size:          size,
			EntryPrice:    entryPx,
			UnrealizedPnl: pnl,
			Leverage:      decimal.NewFromInt(int64(raw.Leverage.Value)),
		}
		// liquidationPx is null for positions that cannot be liquidated.
		if raw.LiquidationPx != "" {
			liq, err := decimal.NewFromString(raw.LiquidationPx)
			if err != nil {
				return nil, fmt.Errorf("malformed liquidationPx %q for coin %s: %w", raw.LiquidationPx, raw.Coin, err)
			}
			pos.LiquidationPrice = liq
		}
		positions = append(positions, pos)
	}

	return &entity.AccountSummary{
		Address:   address,
		Equity:    equity,
		Positions: positions,
	}, nil
}

// decodeOrders parses a frontendOpenOrders response body, keeping only
// orders matching side (empty side keeps both). The exchange's reported
// order within the response is preserved.
func decodeOrders(address string, side entity.OrderSide, body []byte) ([]entity.Order, error) {
	var raw []openOrder
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("malformed frontendOpenOrders response: %w", err)
	}

	orders := make([]entity.Order, 0, len(raw))
	for _, o := range raw {
		var oside entity.OrderSide
		switch o.Side {
		case sideWireBuy:
			oside = entity.OrderSideBuy
		case sideWireSell:
			oside = entity.OrderSideSell
		default:
			return nil, fmt.Errorf("unknown order side %q for oid %d", o.Side, o.Oid)
		}
		if side != "" && oside != side {
			continue
		}

		price, err := decimal.NewFromString(o.LimitPx)
		if err != nil {
			return nil, fmt.Errorf("malformed limitPx %q for oid %d: %w", o.LimitPx, o.Oid, err)
		}
		size, err := decimal.NewFromString(o.Sz)
		if err != nil {
			return nil, fmt.Errorf("malformed sz %q for oid %d: %w", o.Sz, o.Oid, err)
		}

		orders = append(orders, entity.Order{
			Coin:    o.Coin,
			Wallet:  address,
			Side:    oside,
			Price:   price,
			Size:    size,
			OrderID: strconv.FormatInt(o.Oid, 10),
		})
	}
	return orders, nil
}

// decodeMids parses an allMids response body. Spot pair entries (keys
// prefixed with "@") are skipped; only perp coin symbols are kept.
func decodeMids(body []byte) (map[string]decimal.Decimal, error) {
	var raw map[string]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("malformed allMids response: %w", err)
	}

	mids := make(map[string]decimal.Decimal, len(raw))
	for coin, px := range raw {
		if strings.HasPrefix(coin, "@") {
			continue
		}
		mid, err := decimal.NewFromString(px)
		if err != nil {
			return nil, fmt.Errorf("malformed mid %q for coin %s: %w", px, coin, err)
		}
		mids[coin] = mid
	}
	return mids, nil
}
