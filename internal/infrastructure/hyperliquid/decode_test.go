package hyperliquid

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/washantonfcb10/perpscope/internal/domain/entity"
)

const testWallet = "0x1111111111111111111111111111111111111111"

func TestDecodeAccount(t *testing.T) {
	body := []byte(`{
		"assetPositions": [
			{
				"type": "oneWay",
				"position": {
					"coin": "ETH",
					"szi": "2.5",
					"entryPx": "3100.4",
					"unrealizedPnl": "125.3341",
					"liquidationPx": "2450.0",
					"leverage": {"type": "cross", "value": 10}
				}
			},
			{
				"type": "oneWay",
				"position": {
					"coin": "BTC",
					"szi": "-0.05",
					"entryPx": "68000",
					"unrealizedPnl": "-12.5",
					"liquidationPx": "",
					"leverage": {"type": "isolated", "value": 3}
				}
			}
		],
		"crossMarginSummary": {"accountValue": "10250.77"}
	}`)

	acct, err := decodeAccount(testWallet, body)
	if err != nil {
		t.Fatalf("decodeAccount failed: %v", err)
	}
	if acct.Address != testWallet {
		t.Errorf("Address = %s, want %s", acct.Address, testWallet)
	}
	if want := decimal.RequireFromString("10250.77"); !acct.Equity.Equal(want) {
		t.Errorf("Equity = %s, want %s", acct.Equity, want)
	}
	if len(acct.Positions) != 2 {
		t.Fatalf("Positions count = %d, want 2", len(acct.Positions))
	}

	eth := acct.Positions[0]
	if eth.Coin != "ETH" || !eth.IsLong() {
		t.Errorf("first position = %+v, want long ETH", eth)
	}
	if want := decimal.RequireFromString("125.3341"); !eth.UnrealizedPnl.Equal(want) {
		t.Errorf("ETH pnl = %s, want %s", eth.UnrealizedPnl, want)
	}
	if !eth.Leverage.Equal(decimal.NewFromInt(10)) {
		t.Errorf("ETH leverage = %s, want 10", eth.Leverage)
	}

	btc := acct.Positions[1]
	if btc.IsLong() {
		t.Errorf("BTC position = %+v, want short", btc)
	}
	if !btc.LiquidationPrice.IsZero() {
		t.Errorf("BTC liquidationPx = %s, want zero for empty field", btc.LiquidationPrice)
	}
}

func TestDecodeAccountSkipsZeroSizePositions(t *testing.T) {
	body := []byte(`{
		"assetPositions": [
			{"type": "oneWay", "position": {"coin": "ETH", "szi": "0.0", "entryPx": "3100", "unrealizedPnl": "0", "leverage": {"type": "cross", "value": 1}}},
			{"type": "oneWay", "position": {"coin": "SOL", "szi": "10", "entryPx": "150", "unrealizedPnl": "5", "leverage": {"type": "cross", "value": 2}}}
		],
		"crossMarginSummary": {"accountValue": "100"}
	}`)

	acct, err := decodeAccount(testWallet, body)
	if err != nil {
		t.Fatalf("decodeAccount failed: %v", err)
	}
	if len(acct.Positions) != 1 || acct.Positions[0].Coin != "SOL" {
		t.Errorf("Positions = %+v, want only SOL", acct.Positions)
	}
}

func TestDecodeAccountEmpty(t *testing.T) {
	acct, err := decodeAccount(testWallet, []byte(`{"assetPositions": [], "crossMarginSummary": {"accountValue": "0.0"}}`))
	if err != nil {
		t.Fatalf("decodeAccount on empty account failed: %v", err)
	}
	if len(acct.Positions) != 0 || !acct.Equity.IsZero() {
		t.Errorf("empty account decoded as %+v", acct)
	}
}

func TestDecodeAccountMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "not json", body: `<html>rate limited</html>`},
		{
			name: "bad szi",
			body: `{"assetPositions": [{"type": "oneWay", "position": {"coin": "ETH", "szi": "abc", "entryPx": "1", "unrealizedPnl": "0", "leverage": {"type": "cross", "value": 1}}}], "crossMarginSummary": {"accountValue": "0"}}`,
		},
		{
			name: "bad entryPx",
			body: `{"assetPositions": [{"type": "oneWay", "position": {"coin": "ETH", "szi": "1", "entryPx": "", "unrealizedPnl": "0", "leverage": {"type": "cross", "value": 1}}}], "crossMarginSummary": {"accountValue": "0"}}`,
		},
		{
			name: "bad accountValue",
			body: `{"assetPositions": [], "crossMarginSummary": {"accountValue": "NaN$"}}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := decodeAccount(testWallet, []byte(tt.body)); err == nil {
				t.Error("decodeAccount accepted malformed body")
			}
		})
	}
}

func TestDecodeOrders(t *testing.T) {
	body := []byte(`[
		{"coin": "ETH", "side": "A", "limitPx": "4100.5", "sz": "1.25", "oid": 91490942},
		{"coin": "ETH", "side": "B", "limitPx": "3800", "sz": "2", "oid": 91490943},
		{"coin": "BTC", "side": "A", "limitPx": "72000", "sz": "0.1", "oid": 91490944}
	]`)

	t.Run("sell side filter", func(t *testing.T) {
		orders, err := decodeOrders(testWallet, entity.OrderSideSell, body)
		if err != nil {
			t.Fatalf("decodeOrders failed: %v", err)
		}
		if len(orders) != 2 {
			t.Fatalf("orders count = %d, want 2", len(orders))
		}
		// Exchange-reported sequence is preserved.
		if orders[0].Coin != "ETH" || orders[1].Coin != "BTC" {
			t.Errorf("order sequence = [%s %s], want [ETH BTC]", orders[0].Coin, orders[1].Coin)
		}
		if orders[0].OrderID != "91490942" {
			t.Errorf("OrderID = %s, want 91490942", orders[0].OrderID)
		}
		if orders[0].Wallet != testWallet {
			t.Errorf("Wallet = %s, want %s", orders[0].Wallet, testWallet)
		}
		if want := decimal.RequireFromString("4100.5"); !orders[0].Price.Equal(want) {
			t.Errorf("Price = %s, want %s", orders[0].Price, want)
		}
	})

	t.Run("buy side filter", func(t *testing.T) {
		orders, err := decodeOrders(testWallet, entity.OrderSideBuy, body)
		if err != nil {
			t.Fatalf("decodeOrders failed: %v", err)
		}
		if len(orders) != 1 || orders[0].Side != entity.OrderSideBuy {
			t.Errorf("orders = %+v, want single buy order", orders)
		}
	})

	t.Run("empty side keeps both", func(t *testing.T) {
		orders, err := decodeOrders(testWallet, "", body)
		if err != nil {
			t.Fatalf("decodeOrders failed: %v", err)
		}
		if len(orders) != 3 {
			t.Errorf("orders count = %d, want 3", len(orders))
		}
	})
}

func TestDecodeOrdersUnknownSide(t *testing.T) {
	body := []byte(`[{"coin": "ETH", "side": "X", "limitPx": "4100", "sz": "1", "oid": 1}]`)
	_, err := decodeOrders(testWallet, entity.OrderSideSell, body)
	if err == nil || !strings.Contains(err.Error(), "unknown order side") {
		t.Errorf("decodeOrders with unknown side = %v, want unknown side error", err)
	}
}

func TestDecodeMids(t *testing.T) {
	body := []byte(`{
		"ETH": "4012.5",
		"BTC": "71250.0",
		"@1": "1.0001",
		"@142": "17.25"
	}`)

	mids, err := decodeMids(body)
	if err != nil {
		t.Fatalf("decodeMids failed: %v", err)
	}
	if len(mids) != 2 {
		t.Errorf("mids count = %d, want 2 (spot pairs skipped)", len(mids))
	}
	if want := decimal.RequireFromString("4012.5"); !mids["ETH"].Equal(want) {
		t.Errorf("mids[ETH] = %s, want %s", mids["ETH"], want)
	}
	if _, ok := mids["@1"]; ok {
		t.Error("spot pair key @1 leaked into mids")
	}
}

func TestDecodeMidsMalformed(t *testing.T) {
	if _, err := decodeMids([]byte(`{"ETH": "not-a-number"}`)); err == nil {
		t.Error("decodeMids accepted malformed price")
	}
	if _, err := decodeMids([]byte(`[]`)); err == nil {
		t.Error("decodeMids accepted non-object body")
	}
}
