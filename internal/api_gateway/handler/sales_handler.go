package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/register/service"
)

// SalesHandler serves the daily sales and the price list
type SalesHandler struct {
	history service.History
	catalog *catalog.Catalog
	logger  *slog.Logger
}

func NewSalesHandler(logger *slog.Logger, history service.History, cat *catalog.Catalog) *SalesHandler {
	return &SalesHandler{
		history: history,
		catalog: cat,
		logger:  logger,
	}
}

func (h *SalesHandler) DailySales(c *gin.Context) {
	sales, err := h.history.DailySales(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapSalesToResponse(sales))
}

func (h *SalesHandler) Catalog(c *gin.Context) {
	RespondOK(c, mapCatalogToResponse(h.catalog))
}
