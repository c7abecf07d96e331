package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/register-pos/internal/platform/locale"
	"github.com/register-pos/internal/register/service"
)

// RegisterHandler handles HTTP requests for the open transaction and the drawer
type RegisterHandler struct {
	accumulator service.Accumulator
	ledger      service.Ledger
	logger      *slog.Logger
}

// NewRegisterHandler creates a new register handler
func NewRegisterHandler(logger *slog.Logger, accumulator service.Accumulator, ledger service.Ledger) *RegisterHandler {
	return &RegisterHandler{
		accumulator: accumulator,
		ledger:      ledger,
		logger:      logger,
	}
}

// Current returns the open transaction
func (h *RegisterHandler) Current(c *gin.Context) {
	current, err := h.accumulator.Current(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapTransactionToResponse(current))
}

// AddItem appends a catalog selection to the open transaction
func (h *RegisterHandler) AddItem(c *gin.Context) {
	var req AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	current, err := h.accumulator.AddItem(c.Request.Context(), req.Selection())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapTransactionToResponse(current))
}

// Close settles the open transaction into the drawer
func (h *RegisterHandler) Close(c *gin.Context) {
	result, err := h.accumulator.Close(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, CloseResponse{
		Closed:  mapTransactionToResponse(result.Transaction),
		Balance: mapBalanceToResponse(result.Balance),
		Current: mapTransactionToResponse(result.Next),
	})
}

// Reset abandons the open transaction
func (h *RegisterHandler) Reset(c *gin.Context) {
	current, err := h.accumulator.Reset(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapTransactionToResponse(current))
}

// Change computes the change due for ?received=N
func (h *RegisterHandler) Change(c *gin.Context) {
	var query ChangeQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid received amount")
		return
	}

	current, err := h.accumulator.Current(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	change := h.accumulator.Change(*query.Received)
	RespondOK(c, ChangeResponse{
		Received:     *query.Received,
		Total:        current.Total,
		Change:       change.Amount,
		Insufficient: change.Insufficient,
	})
}

// Balance returns the drawer, creating it on first use
func (h *RegisterHandler) Balance(c *gin.Context) {
	balance, err := h.ledger.FetchOrInit(c.Request.Context())
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapBalanceToResponse(balance))
}

// RecordExpense pays an amount out of the drawer
func (h *RegisterHandler) RecordExpense(c *gin.Context) {
	var req ExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	balance, err := h.ledger.RecordExpense(c.Request.Context(), *req.Amount)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondWithMessage(c, http.StatusCreated, mapBalanceToResponse(balance), locale.Yen(*req.Amount)+"の支出を記録しました")
}

// Movements lists recent drawer movements, newest first
func (h *RegisterHandler) Movements(c *gin.Context) {
	var query MovementsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		RespondBadRequest(c, "Invalid limit")
		return
	}

	movements, err := h.ledger.Movements(c.Request.Context(), query.Limit)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}

	response := make([]MovementResponse, 0, len(movements))
	for _, m := range movements {
		response = append(response, mapMovementToResponse(m))
	}
	RespondOK(c, response)
}
