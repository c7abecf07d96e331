package api_gateway

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/register-pos/internal/config"
	"github.com/register-pos/internal/data/memory"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/register/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemoryServer(t *testing.T) *Server {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	loc, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	store := memory.NewTransactionStore()
	ledger := service.NewLedgerService(memory.NewBalanceStore(), memory.NewMovementJournal(), logger)
	history := service.NewHistoryService(store, nil, sale.NewDayPolicy(loc, sale.DefaultDateLayout), time.Minute, logger)
	acc := service.NewAccumulatorService(catalog.Default(), store, ledger, history, logger, "register-test")
	editor := service.NewEditorService(store, history, acc, logger)

	cfg := &config.Config{}
	cfg.Server.Port = 8080
	return NewServer(logger, cfg, Services{
		Accumulator: acc,
		Ledger:      ledger,
		History:     history,
		Editor:      editor,
		Catalog:     catalog.Default(),
	})
}

func do(t *testing.T, s *Server, method, path, body string) (int, map[string]json.RawMessage) {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)

	var envelope map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	return w.Code, envelope
}

func TestServer_Health(t *testing.T) {
	s := newMemoryServer(t)
	code, body := do(t, s, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `"ok"`, string(body["status"]))
}

func TestServer_SaleLifecycle(t *testing.T) {
	s := newMemoryServer(t)

	code, _ := do(t, s, http.MethodPost, "/api/v1/register/current/items", `{"category":"ドリンク","sub_item":"ビール"}`)
	require.Equal(t, http.StatusOK, code)
	code, _ = do(t, s, http.MethodPost, "/api/v1/register/current/items", `{"category":"席料","custom_price":1000}`)
	require.Equal(t, http.StatusOK, code)

	code, body := do(t, s, http.MethodGet, "/api/v1/register/current/change?received=2000", "")
	require.Equal(t, http.StatusOK, code)
	assert.JSONEq(t, `{"received":2000,"total":1500,"change":500,"insufficient":false}`, string(body["data"]))

	code, body = do(t, s, http.MethodPost, "/api/v1/register/current/close", "")
	require.Equal(t, http.StatusOK, code)
	var closed struct {
		Balance struct {
			Cash int64 `json:"cash"`
		} `json:"balance"`
		Current struct {
			Total int64 `json:"total"`
		} `json:"current"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &closed))
	assert.Equal(t, int64(1500), closed.Balance.Cash)
	assert.Equal(t, int64(0), closed.Current.Total)

	code, body = do(t, s, http.MethodPost, "/api/v1/register/expenses", `{"amount":1200}`)
	require.Equal(t, http.StatusCreated, code)
	assert.JSONEq(t, `"1,200円の支出を記録しました"`, string(body["message"]))

	code, _ = do(t, s, http.MethodPost, "/api/v1/register/expenses", `{"amount":1000}`)
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, body = do(t, s, http.MethodGet, "/api/v1/sales/daily", "")
	require.Equal(t, http.StatusOK, code)
	var sales struct {
		Days []struct {
			Total int64 `json:"total"`
		} `json:"days"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &sales))
	require.Len(t, sales.Days, 1)
	assert.Equal(t, int64(1500), sales.Days[0].Total)

	code, body = do(t, s, http.MethodGet, "/api/v1/register/movements", "")
	require.Equal(t, http.StatusOK, code)
	var movements []struct {
		Kind string `json:"kind"`
	}
	require.NoError(t, json.Unmarshal(body["data"], &movements))
	assert.Len(t, movements, 2)
}

func TestServer_CloseWithoutItems(t *testing.T) {
	s := newMemoryServer(t)
	code, body := do(t, s, http.MethodPost, "/api/v1/register/current/close", "")
	assert.Equal(t, http.StatusUnprocessableEntity, code)
	assert.Contains(t, string(body["error"]), "VALIDATION_FAILED")
}
