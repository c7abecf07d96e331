package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/register-pos/internal/api_gateway/middleware"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/domain/shared"
	"github.com/register-pos/internal/platform/persistence"
	"github.com/register-pos/internal/register/service"
)

// Response is the envelope of every API answer. Exactly one of Data and Error is set.
type Response struct {
	Data          interface{} `json:"data,omitempty"`
	Message       string      `json:"message,omitempty"`
	Error         *ErrorInfo  `json:"error,omitempty"`
	CorrelationID string      `json:"correlation_id,omitempty"`
}

// ErrorInfo carries a stable Code for clients and a Message for the cashier.
// Field names the rejected input of a validation failure.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

func respond(c *gin.Context, status int, r Response) {
	r.CorrelationID = middleware.GetCorrelationID(c)
	c.JSON(status, r)
}

func RespondOK(c *gin.Context, data interface{}) {
	respond(c, http.StatusOK, Response{Data: data})
}

// RespondWithMessage sends data together with a message meant to be shown as is.
func RespondWithMessage(c *gin.Context, status int, data interface{}, message string) {
	respond(c, status, Response{Data: data, Message: message})
}

func RespondWithError(c *gin.Context, status int, code, message string) {
	respond(c, status, Response{Error: &ErrorInfo{Code: code, Message: message}})
}

// RespondBadRequest rejects a request that could not be parsed.
func RespondBadRequest(c *gin.Context, message string) {
	RespondWithError(c, http.StatusBadRequest, "BAD_REQUEST", message)
}

// RespondError maps err onto the error envelope.
// Validation errors are 422, open-row conflicts 409 and a partial close 500 with
// its own code; everything else is reported through the store error classifier.
func RespondError(c *gin.Context, logger *slog.Logger, err error) {
	var validation shared.ValidationError
	if errors.As(err, &validation) {
		respond(c, http.StatusUnprocessableEntity, Response{Error: &ErrorInfo{
			Code:    "VALIDATION_FAILED",
			Message: validation.Error(),
			Field:   validation.Field,
		}})
		return
	}

	var conflict sale.ErrCurrentConflict
	if errors.As(err, &conflict) {
		RespondWithError(c, http.StatusConflict, "CONFLICT", "別のレジで取引が開かれています。画面を更新してください。")
		return
	}

	var partial service.ErrPartialClose
	if errors.As(err, &partial) {
		logger.Error("Partial register close needs reconciliation",
			"transaction_id", partial.TransactionID.String(),
			"total", partial.Total,
			"error", err,
		)
		RespondWithError(c, http.StatusInternalServerError, "PARTIAL_CLOSE", "レジ締めに失敗しました。管理者に連絡してください。")
		return
	}

	class := persistence.Classify(err)
	if class != persistence.ClassNoRows {
		logger.Error("Request failed",
			"class", class.String(),
			"error", err,
			"correlation_id", middleware.GetCorrelationID(c),
		)
	}
	RespondWithError(c, class.HTTPStatus(), class.Code(), class.Message())
}
