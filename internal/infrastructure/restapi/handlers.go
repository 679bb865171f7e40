package restapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/washantonfcb10/perpscope/internal/app/port"
	"github.com/washantonfcb10/perpscope/internal/app/service"
	"github.com/washantonfcb10/perpscope/internal/domain/entity"
)

// Handler maps inbound user intents 1:1 onto registry and navigation
// operations. It never formats portfolio content itself; view payloads
// are returned as structured data with an explicit partial-failure
// marker for the client to surface.
type Handler struct {
	registry   port.WalletRegistry
	navigation *service.NavigationService
	markets    port.MarketDataService
	logger     *zap.Logger
}

// NewHandler creates a new Handler.
func NewHandler(
	registry port.WalletRegistry,
	navigation *service.NavigationService,
	markets port.MarketDataService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		registry:   registry,
		navigation: navigation,
		markets:    markets,
		logger:     logger.Named("RestAPI"),
	}
}

type trackWalletRequest struct {
	Address string `json:"address" binding:"required"`
}

type navigateRequest struct {
	Action string `json:"action" binding:"required"`
	Index  *int   `json:"index,omitempty"`
	Coin   string `json:"coin,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// TrackWallet handles POST /users/:userID/wallets.
func (h *Handler) TrackWallet(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req trackWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "address is required"})
		return
	}
	if err := h.registry.Track(userID, req.Address); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"wallets": h.registry.List(userID)})
}

// UntrackWallet handles DELETE /users/:userID/wallets/:address.
func (h *Handler) UntrackWallet(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	if err := h.registry.Untrack(userID, c.Param("address")); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListWallets handles GET /users/:userID/wallets.
func (h *Handler) ListWallets(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"wallets": h.registry.List(userID)})
}

// GetCurrentView handles GET /users/:userID/view: it renders whatever
// view the user's navigation state points at, fetched fresh.
func (h *Handler) GetCurrentView(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	result, err := h.navigation.Render(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// Navigate handles POST /users/:userID/navigation: applies one
// navigation action and renders the resulting view.
func (h *Handler) Navigate(c *gin.Context) {
	userID, ok := h.userID(c)
	if !ok {
		return
	}
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "action is required"})
		return
	}

	var err error
	switch req.Action {
	case "select_wallet":
		if req.Index == nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "index is required for select_wallet"})
			return
		}
		err = h.navigation.SelectWallet(userID, *req.Index)
	case "next":
		err = h.navigation.NextWallet(userID)
	case "previous":
		err = h.navigation.PreviousWallet(userID)
	case "portfolio":
		h.navigation.ShowPortfolio(userID)
	case "orders":
		h.navigation.ShowOrders(userID)
	case "select_coin":
		if req.Coin == "" {
			c.JSON(http.StatusBadRequest, errorResponse{Error: "coin is required for select_coin"})
			return
		}
		err = h.navigation.SelectCoin(c.Request.Context(), userID, req.Coin)
	default:
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unknown action " + req.Action})
		return
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.navigation.Render(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetMarkets handles GET /markets.
func (h *Handler) GetMarkets(c *gin.Context) {
	mids, err := h.markets.Mids(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mids": mids})
}

func (h *Handler) userID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("userID"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid user id"})
		return 0, false
	}
	return id, true
}

// writeError maps domain errors onto HTTP status codes.
func (h *Handler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrInvalidAddress),
		errors.Is(err, entity.ErrIndexOutOfRange),
		errors.Is(err, entity.ErrInvalidTransition):
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrDuplicateWallet):
		c.JSON(http.StatusConflict, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrWalletNotTracked),
		errors.Is(err, entity.ErrCoinNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrWalletLimitExceeded):
		c.JSON(http.StatusUnprocessableEntity, errorResponse{Error: err.Error()})
	case errors.Is(err, entity.ErrStaleView):
		c.JSON(http.StatusConflict, errorResponse{Error: "view changed while rendering, retry"})
	case entity.IsNetworkError(err):
		c.JSON(http.StatusGatewayTimeout, errorResponse{Error: "exchange unreachable, try again later"})
	case entity.IsExchangeError(err), errors.Is(err, entity.ErrAllWalletsFailed):
		c.JSON(http.StatusBadGateway, errorResponse{Error: "exchange data unavailable, try again later"})
	default:
		h.logger.Error("Unhandled error in handler", zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}
