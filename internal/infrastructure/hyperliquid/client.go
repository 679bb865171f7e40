package hyperliquid

import (
	"context"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/washantonfcb10/perpscope/internal/app/port"
	"github.com/washantonfcb10/perpscope/internal/domain/entity"
	"github.com/washantonfcb10/perpscope/internal/pkg/utils"
	"github.com/washantonfcb10/perpscope/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Client implements port.ExchangeClient against the Hyperliquid info
// API. Every query is a POST to the single info endpoint with a typed
// payload. Failures are classified: transport errors, rate-limiter waits
// cut short by the context, and timeouts are entity.KindNetwork; bad
// status codes and undecodable bodies are entity.KindExchange.
type Client struct {
	http    *fasthttp.Client
	baseURL string
	timeout time.Duration
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a new Hyperliquid info API client.
func NewClient(baseURL string, timeout time.Duration, rateLimit float64, burst int, logger *zap.Logger) *Client {
	return &Client{
		http:    &fasthttp.Client{},
		baseURL: baseURL,
		timeout: timeout,
		limiter: rate.NewLimiter(rate.Limit(rateLimit), burst),
		logger:  logger.Named("HyperliquidClient"),
	}
}

// FetchAccount queries clearinghouseState for the wallet and returns its
// open positions and account equity.
func (c *Client) FetchAccount(ctx context.Context, address string) (*entity.AccountSummary, error) {
	const op = "clearinghouseState"
	body, err := c.post(ctx, op, infoRequest{Type: op, User: address}, address)
	if err != nil {
		return nil, err
	}
	account, err := decodeAccount(address, body)
	if err != nil {
		c.logger.Error("Failed to decode account state",
			zap.String("wallet", utils.ShortenAddress(address)), zap.Error(err))
		return nil, entity.NewExchangeError(op, address, err)
	}
	c.logger.Debug("Fetched account state",
		zap.String("wallet", utils.ShortenAddress(address)),
		zap.Int("positionCount", len(account.Positions)))
	return account, nil
}

// FetchOpenOrders queries frontendOpenOrders for the wallet, filtered to
// the given side (empty side keeps both).
func (c *Client) FetchOpenOrders(ctx context.Context, address string, side entity.OrderSide) ([]entity.Order, error) {
	const op = "frontendOpenOrders"
	body, err := c.post(ctx, op, infoRequest{Type: op, User: address}, address)
	if err != nil {
		return nil, err
	}
	orders, err := decodeOrders(address, side, body)
	if err != nil {
		c.logger.Error("Failed to decode open orders",
			zap.String("wallet", utils.ShortenAddress(address)), zap.Error(err))
		return nil, entity.NewExchangeError(op, address, err)
	}
	return orders, nil
}

// FetchMids queries allMids and returns the mid price per coin.
func (c *Client) FetchMids(ctx context.Context) (map[string]decimal.Decimal, error) {
	const op = "allMids"
	body, err := c.post(ctx, op, infoRequest{Type: op}, "")
	if err != nil {
		return nil, err
	}
	mids, err := decodeMids(body)
	if err != nil {
		c.logger.Error("Failed to decode mids", zap.Error(err))
		return nil, entity.NewExchangeError(op, "", err)
	}
	return mids, nil
}

// post executes one rate-limited info API request and returns a copy of
// the response body.
func (c *Client) post(ctx context.Context, op string, payload infoRequest, wallet string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		metrics.ExchangeRequestsTotal.WithLabelValues(op, "network_error").Inc()
		return nil, entity.NewNetworkError(op, wallet, err)
	}

	reqBody, err := json.Marshal(payload)
	if err != nil {
		return nil, entity.NewExchangeError(op, wallet, fmt.Errorf("failed to marshal request: %w", err))
	}

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(c.baseURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(reqBody)

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	timer := prometheus.NewTimer(metrics.ExchangeRequestDuration.WithLabelValues(op))
	defer timer.ObserveDuration()

	if deadline, ok := ctx.Deadline(); ok {
		err = c.http.DoDeadline(req, resp, deadline)
	} else {
		err = c.http.DoTimeout(req, resp, c.timeout)
	}
	if err != nil {
		metrics.ExchangeRequestsTotal.WithLabelValues(op, "network_error").Inc()
		c.logger.Warn("Exchange request failed",
			zap.String("op", op),
			zap.String("wallet", utils.ShortenAddress(wallet)),
			zap.Error(err))
		return nil, entity.NewNetworkError(op, wallet, err)
	}

	if status := resp.StatusCode(); status != fasthttp.StatusOK {
		metrics.ExchangeRequestsTotal.WithLabelValues(op, "exchange_error").Inc()
		c.logger.Warn("Exchange returned unexpected status",
			zap.String("op", op), zap.Int("status", status))
		return nil, entity.NewExchangeError(op, wallet, fmt.Errorf("unexpected status %d", status))
	}

	metrics.ExchangeRequestsTotal.WithLabelValues(op, "ok").Inc()
	// The response buffer is pooled; copy before release.
	return append([]byte(nil), resp.Body()...), nil
}

var _ port.ExchangeClient = (*Client)(nil)
