package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/register"
	"github.com/register-pos/internal/domain/shared"
)

// LedgerService implements Ledger on top of atomic store adjustments.
// Every mutation is mirrored into the movement journal on a best-effort basis.
type LedgerService struct {
	balances register.BalanceRepository
	journal  register.MovementJournal
	logger   *slog.Logger
	now      func() time.Time
}

// NewLedgerService creates a new register balance ledger
func NewLedgerService(balances register.BalanceRepository, journal register.MovementJournal, logger *slog.Logger) *LedgerService {
	return &LedgerService{
		balances: balances,
		journal:  journal,
		logger:   logger.With("component", "ledger"),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// FetchOrInit reads the balance. When the singleton is missing it is inserted with
// zero cash, unless a concurrent caller got there first, and read again.
func (s *LedgerService) FetchOrInit(ctx context.Context) (*register.Balance, error) {
	b, err := s.balances.Get(ctx)
	if err == nil {
		return b, nil
	}
	if !errors.Is(err, register.ErrBalanceNotFound) {
		return nil, err
	}

	created, err := s.balances.CreateIfAbsent(ctx, register.NewBalance())
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Info("Register balance initialized")
	}

	return s.balances.Get(ctx)
}

func (s *LedgerService) RecordExpense(ctx context.Context, amount int64) (*register.Balance, error) {
	if amount <= 0 {
		return nil, shared.NewValidationError("amount", "must be greater than 0")
	}

	b, err := s.FetchOrInit(ctx)
	if err != nil {
		return nil, err
	}
	if err := b.CheckExpense(amount); err != nil {
		return nil, err
	}

	updated, err := s.balances.Adjust(ctx, -amount, s.now())
	if err != nil {
		if errors.Is(err, register.ErrInsufficientCash) {
			// The drawer changed between the read and the write
			return nil, shared.NewValidationError("amount", "exceeds cash on hand")
		}
		return nil, err
	}

	s.record(ctx, register.NewMovement(register.MovementKindExpense, amount, updated.Cash))
	s.logger.Info("Expense recorded", "amount", amount, "cash", updated.Cash)
	return updated, nil
}

func (s *LedgerService) ApplyClose(ctx context.Context, transactionID uuid.UUID, total int64) (*register.Balance, error) {
	if err := register.CheckClose(total); err != nil {
		return nil, err
	}

	updated, err := s.balances.Adjust(ctx, total, s.now())
	if errors.Is(err, register.ErrBalanceNotFound) {
		if _, err = s.FetchOrInit(ctx); err != nil {
			return nil, err
		}
		updated, err = s.balances.Adjust(ctx, total, s.now())
	}
	if err != nil {
		return nil, err
	}

	s.record(ctx, register.NewMovement(register.MovementKindClose, total, updated.Cash).ForTransaction(transactionID))
	return updated, nil
}

func (s *LedgerService) Movements(ctx context.Context, limit int) ([]*register.Movement, error) {
	return s.journal.List(ctx, limit)
}

func (s *LedgerService) record(ctx context.Context, m *register.Movement) {
	m.CorrelationID = shared.CorrelationID(ctx)
	if err := s.journal.Append(ctx, m); err != nil {
		s.logger.Warn("Failed to journal cash movement",
			"kind", string(m.Kind),
			"amount", m.Amount,
			"error", err,
		)
	}
}
