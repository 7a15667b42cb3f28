package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/quickbasket/marketplace-ledger/internal/api/handler"
	"github.com/quickbasket/marketplace-ledger/internal/api/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	walletHandler *handler.WalletHandler,
	loyaltyHandler *handler.LoyaltyHandler,
	rewardHandler *handler.RewardHandler,
	transactionHandler *handler.TransactionHandler,
	archiveHandler *handler.ArchiveHandler,
) {
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	// API v1 endpoints
	v1 := r.Group("/api/v1")
	{
		// Per-customer wallet and loyalty operations
		customers := v1.Group("/customers/:customer_id")
		{
			customers.POST("/wallet", walletHandler.Create)
			customers.GET("/wallet", walletHandler.Get)
			customers.POST("/wallet/credit", walletHandler.Credit)
			customers.POST("/wallet/debit", walletHandler.Debit)
			customers.GET("/loyalty", loyaltyHandler.Get)
			customers.POST("/loyalty/redeem", loyaltyHandler.Redeem)
		}

		// Reward catalog
		v1.GET("/rewards", rewardHandler.ListActive)

		// Account transaction logs
		accounts := v1.Group("/accounts")
		{
			accounts.GET("/:id/transactions", transactionHandler.GetByAccountID)
		}

		// Reporting archive
		archive := v1.Group("/archive")
		{
			archive.GET("/transactions", archiveHandler.GetByTimeRange)
			archive.GET("/accounts/:id/transactions", archiveHandler.GetByAccountID)
		}
	}

	// Health check endpoint for monitoring
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
