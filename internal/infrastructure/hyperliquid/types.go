package hyperliquid

// Wire types mirroring the Hyperliquid info API payloads. The API
// encodes every numeric quantity as a string to avoid precision loss;
// decoding into decimals happens in decode.go.

type infoRequest struct {
	Type string `json:"type"`
	User string `json:"user,omitempty"`
}

type clearinghouseState struct {
	AssetPositions     []assetPosition `json:"assetPositions"`
	CrossMarginSummary marginSummary   `json:"crossMarginSummary"`
}

type assetPosition struct {
	Type     string      `json:"type"`
	Position rawPosition `json:"position"`
}

type rawPosition struct {
	Coin          string   `json:"coin"`
	Szi           string   `json:"szi"` // signed size, positive long / negative short
	EntryPx       string   `json:"entryPx"`
	UnrealizedPnl string   `json:"unrealizedPnl"`
	LiquidationPx string   `json:"liquidationPx"`
	Leverage      leverage `json:"leverage"`
}

type leverage struct {
	Type  string `json:"type"` // "cross" or "isolated"
	Value int    `json:"value"`
}

type marginSummary struct {
	AccountValue string `json:"accountValue"`
}

// openOrder is one entry of the frontendOpenOrders response. Side is
// "B" for a resting bid (buy) and "A" for a resting ask (sell).
type openOrder struct {
	Coin    string `json:"coin"`
	Side    string `json:"side"`
	LimitPx string `json:"limitPx"`
	Sz      string `json:"sz"`
	Oid     int64  `json:"oid"`
}

const (
	sideWireBuy  = "B"
	sideWireSell = "A"
)
