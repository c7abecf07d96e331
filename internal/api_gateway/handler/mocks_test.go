package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/register-pos/internal/api_gateway/middleware"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/register"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/register/service"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockAccumulator struct {
	mock.Mock
}

func (m *MockAccumulator) Load(ctx context.Context) (sale.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).(sale.Transaction), args.Error(1)
}

func (m *MockAccumulator) Current(ctx context.Context) (sale.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).(sale.Transaction), args.Error(1)
}

func (m *MockAccumulator) AddItem(ctx context.Context, sel catalog.Selection) (sale.Transaction, error) {
	args := m.Called(ctx, sel)
	return args.Get(0).(sale.Transaction), args.Error(1)
}

func (m *MockAccumulator) Close(ctx context.Context) (*service.CloseResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CloseResult), args.Error(1)
}

func (m *MockAccumulator) Reset(ctx context.Context) (sale.Transaction, error) {
	args := m.Called(ctx)
	return args.Get(0).(sale.Transaction), args.Error(1)
}

func (m *MockAccumulator) Change(received int64) sale.Change {
	return m.Called(received).Get(0).(sale.Change)
}

func (m *MockAccumulator) ApplyChange(ctx context.Context, event sale.ChangeEvent) bool {
	return m.Called(ctx, event).Bool(0)
}

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) FetchOrInit(ctx context.Context) (*register.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Balance), args.Error(1)
}

func (m *MockLedger) RecordExpense(ctx context.Context, amount int64) (*register.Balance, error) {
	args := m.Called(ctx, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Balance), args.Error(1)
}

func (m *MockLedger) ApplyClose(ctx context.Context, id uuid.UUID, total int64) (*register.Balance, error) {
	args := m.Called(ctx, id, total)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Balance), args.Error(1)
}

func (m *MockLedger) Movements(ctx context.Context, limit int) ([]*register.Movement, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*register.Movement), args.Error(1)
}

type MockHistory struct {
	mock.Mock
}

func (m *MockHistory) DailySales(ctx context.Context) (*sale.Aggregation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Aggregation), args.Error(1)
}

func (m *MockHistory) Invalidate(ctx context.Context) {
	m.Called(ctx)
}

func (m *MockHistory) Refresh(ctx context.Context) (*sale.Aggregation, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Aggregation), args.Error(1)
}

type MockEditor struct {
	mock.Mock
}

func (m *MockEditor) Get(ctx context.Context, id uuid.UUID) (*sale.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Transaction), args.Error(1)
}

func (m *MockEditor) Apply(ctx context.Context, id uuid.UUID, edits []sale.Edit) (*service.EditResult, error) {
	args := m.Called(ctx, id, edits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditResult), args.Error(1)
}

func (m *MockEditor) Replace(ctx context.Context, id uuid.UUID, items []catalog.Item) (*service.EditResult, error) {
	args := m.Called(ctx, id, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditResult), args.Error(1)
}

func (m *MockEditor) Save(ctx context.Context, draft *sale.Draft) (*service.EditResult, error) {
	args := m.Called(ctx, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EditResult), args.Error(1)
}

func (m *MockEditor) Delete(ctx context.Context, id uuid.UUID) (*sale.Aggregation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Aggregation), args.Error(1)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(middleware.CorrelationID())
	return r
}

func performRequest(t *testing.T, r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, ok := body.(string)
		if !ok {
			encoded, err := json.Marshal(body)
			require.NoError(t, err)
			raw = string(encoded)
		}
		reader = bytes.NewBufferString(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// decodeResponse unmarshals the envelope, decoding data into out when given
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, out interface{}) Response {
	var envelope struct {
		Response
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
	if out != nil {
		require.NoError(t, json.Unmarshal(envelope.Data, out))
	}
	return envelope.Response
}
