package api_gateway

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/register-pos/internal/api_gateway/handler"
	"github.com/register-pos/internal/api_gateway/middleware"
)

// setupRouter configures API routes and middleware for the application
func setupRouter(
	logger *slog.Logger,
	r *gin.Engine,
	registerHandler *handler.RegisterHandler,
	salesHandler *handler.SalesHandler,
	transactionHandler *handler.TransactionHandler,
) {
	// CorrelationID runs before Logger so every access log line carries the id
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.CorrelationID())
	r.Use(middleware.Logger(logger))

	v1 := r.Group("/api/v1")
	{
		v1.GET("/catalog", salesHandler.Catalog)

		// Open transaction and drawer
		reg := v1.Group("/register")
		{
			reg.GET("/current", registerHandler.Current)
			reg.POST("/current/items", registerHandler.AddItem)
			reg.POST("/current/close", registerHandler.Close)
			reg.POST("/current/reset", registerHandler.Reset)
			reg.GET("/current/change", registerHandler.Change)
			reg.GET("/balance", registerHandler.Balance)
			reg.POST("/expenses", registerHandler.RecordExpense)
			reg.GET("/movements", registerHandler.Movements)
		}

		v1.GET("/sales/daily", salesHandler.DailySales)

		// Corrections to stored transactions
		transactions := v1.Group("/transactions")
		{
			transactions.GET("/:id", transactionHandler.GetByID)
			transactions.PUT("/:id", transactionHandler.Replace)
			transactions.POST("/:id/edits", transactionHandler.Edit)
			transactions.DELETE("/:id", transactionHandler.Delete)
		}
	}

	// Health check endpoint for monitoring
	r.GET(middleware.HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC()})
	})
}
