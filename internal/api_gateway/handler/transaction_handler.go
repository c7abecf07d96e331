package handler

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/register-pos/internal/register/service"
)

// TransactionHandler handles HTTP requests that correct stored transactions
type TransactionHandler struct {
	editor service.Editor
	logger *slog.Logger
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, editor service.Editor) *TransactionHandler {
	return &TransactionHandler{
		editor: editor,
		logger: logger,
	}
}

// GetByID retrieves one transaction, 404 if it does not exist
func (h *TransactionHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	t, err := h.editor.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapTransactionToResponse(*t))
}

// Replace swaps in a whole item list
func (h *TransactionHandler) Replace(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req ReplaceItemsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.editor.Replace(c.Request.Context(), id, req.Items)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapEditResult(result))
}

// Edit applies editor operations in order
func (h *TransactionHandler) Edit(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	var req EditRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	result, err := h.editor.Apply(c.Request.Context(), id, req.Edits)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapEditResult(result))
}

// Delete removes a transaction and returns the refreshed daily sales
func (h *TransactionHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	sales, err := h.editor.Delete(c.Request.Context(), id)
	if err != nil {
		RespondError(c, h.logger, err)
		return
	}
	RespondOK(c, mapSalesToResponse(sales))
}

func (h *TransactionHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	idParam := c.Param("id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		h.logger.Warn("Invalid transaction ID", "id", idParam, "error", err)
		RespondBadRequest(c, "Invalid transaction ID")
		return uuid.Nil, false
	}
	return id, true
}

func mapEditResult(result *service.EditResult) EditResponse {
	return EditResponse{
		Transaction: mapTransactionToResponse(result.Transaction),
		Sales:       mapSalesToResponse(result.Sales),
	}
}
