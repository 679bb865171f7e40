package restapi

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// SetupRouter configures and returns the Gin router.
func SetupRouter(h *Handler) *gin.Engine {
	router := gin.Default()
	router.Use(cors.Default())

	router.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := router.Group("/api/v1")
	{
		v1.GET("/markets", h.GetMarkets)

		users := v1.Group("/users/:userID")
		{
			users.POST("/wallets", h.TrackWallet)
			users.DELETE("/wallets/:address", h.UntrackWallet)
			users.GET("/wallets", h.ListWallets)
			users.GET("/view", h.GetCurrentView)
			users.POST("/navigation", h.Navigate)
		}
	}

	return router
}
