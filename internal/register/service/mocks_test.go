package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/register"
	"github.com/register-pos/internal/domain/sale"
	"github.com/stretchr/testify/mock"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockTransactionRepository struct {
	mock.Mock
}

func (m *MockTransactionRepository) GetCurrent(ctx context.Context) (*sale.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) ListAll(ctx context.Context) ([]sale.Transaction, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sale.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*sale.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Insert(ctx context.Context, t sale.Transaction) (*sale.Transaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Update(ctx context.Context, t sale.Transaction) (*sale.Transaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) UpdateItems(ctx context.Context, t sale.Transaction) (*sale.Transaction, error) {
	args := m.Called(ctx, t)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) MarkClosed(ctx context.Context, id uuid.UUID) (*sale.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Reopen(ctx context.Context, id uuid.UUID) (*sale.Transaction, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sale.Transaction), args.Error(1)
}

func (m *MockTransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

func (m *MockLedger) ApplyClose(ctx context.Context, transactionID uuid.UUID, total int64) (*register.Balance, error) {
	args := m.Called(ctx, transactionID, total)
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

type MockBalanceRepository struct {
	mock.Mock
}

func (m *MockBalanceRepository) Get(ctx context.Context) (*register.Balance, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Balance), args.Error(1)
}

func (m *MockBalanceRepository) CreateIfAbsent(ctx context.Context, b *register.Balance) (bool, error) {
	args := m.Called(ctx, b)
	return args.Bool(0), args.Error(1)
}

func (m *MockBalanceRepository) Adjust(ctx context.Context, delta int64, at time.Time) (*register.Balance, error) {
	args := m.Called(ctx, delta, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*register.Balance), args.Error(1)
}

type MockMovementJournal struct {
	mock.Mock
}

func (m *MockMovementJournal) Append(ctx context.Context, mv *register.Movement) error {
	args := m.Called(ctx, mv)
	return args.Error(0)
}

func (m *MockMovementJournal) List(ctx context.Context, limit int) ([]*register.Movement, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*register.Movement), args.Error(1)
}

type MockSalesCache struct {
	mock.Mock
}

func (m *MockSalesCache) Get(ctx context.Context, key string) (*sale.Aggregation, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*sale.Aggregation), args.Bool(1), args.Error(2)
}

func (m *MockSalesCache) Set(ctx context.Context, key string, value *sale.Aggregation, ttl time.Duration) error {
	args := m.Called(ctx, key, value, ttl)
	return args.Error(0)
}

func (m *MockSalesCache) Invalidate(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}
