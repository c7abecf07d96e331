// Package service implements the register operations behind both the HTTP API and
// the command-line register.
package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/sale"
)

// AccumulatorService implements Accumulator.
// opMu serializes operations so one register behaves like a single cashier;
// stateMu guards the snapshot so change-feed pushes can replace it at any time.
type AccumulatorService struct {
	catalog *catalog.Catalog
	repo    sale.Repository
	ledger  Ledger
	history History
	logger  *slog.Logger
	origin  string

	opMu    sync.Mutex
	stateMu sync.RWMutex
	state   sale.Transaction
	loaded  bool
}

// NewAccumulatorService creates the accumulator for the register identified by origin
func NewAccumulatorService(
	cat *catalog.Catalog,
	repo sale.Repository,
	ledger Ledger,
	history History,
	logger *slog.Logger,
	origin string,
) *AccumulatorService {
	return &AccumulatorService{
		catalog: cat,
		repo:    repo,
		ledger:  ledger,
		history: history,
		logger:  logger.With("component", "accumulator"),
		origin:  origin,
		state:   sale.NewCurrent(),
	}
}

func (s *AccumulatorService) Load(ctx context.Context) (sale.Transaction, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	return s.load(ctx)
}

func (s *AccumulatorService) load(ctx context.Context) (sale.Transaction, error) {
	current, err := s.repo.GetCurrent(ctx)
	if errors.Is(err, sale.ErrNoCurrentTransaction) {
		s.logger.Info("No open transaction, creating one")
		current, err = s.repo.Insert(ctx, sale.NewCurrent())

		var conflict sale.ErrCurrentConflict
		if errors.As(err, &conflict) {
			// Another register opened one first
			current, err = s.repo.GetCurrent(ctx)
		} else if err == nil {
			s.history.Invalidate(ctx)
		}
	}
	if err != nil {
		s.logger.Error("Failed to load open transaction", "error", err)
		s.setState(sale.NewCurrent(), false)
		return s.snapshot(), err
	}

	s.setState(*current, true)
	return current.Clone(), nil
}

func (s *AccumulatorService) Current(ctx context.Context) (sale.Transaction, error) {
	if s.isLoaded() {
		return s.snapshot(), nil
	}
	return s.Load(ctx)
}

// ensureLoaded retries a load that failed earlier. Must be called with opMu held.
func (s *AccumulatorService) ensureLoaded(ctx context.Context) (sale.Transaction, error) {
	if s.isLoaded() {
		return s.snapshot(), nil
	}
	return s.load(ctx)
}

func (s *AccumulatorService) AddItem(ctx context.Context, sel catalog.Selection) (sale.Transaction, error) {
	item, err := s.catalog.Resolve(sel)
	if err != nil {
		return s.snapshot(), err
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	current, err := s.ensureLoaded(ctx)
	if err != nil {
		return current, err
	}
	next := current.WithItem(item)

	var stored *sale.Transaction
	if next.HasID() {
		stored, err = s.repo.Update(ctx, next)
	} else {
		stored, err = s.repo.Insert(ctx, next)
	}
	if err != nil {
		s.logger.Error("Failed to persist item",
			"transaction_id", current.ID.String(),
			"item", item.Name,
			"error", err,
		)
		return current, err
	}

	s.setState(*stored, true)
	s.history.Invalidate(ctx)
	s.logger.Debug("Item added", "transaction_id", stored.ID.String(), "item", item.Name, "total", stored.Total)
	return stored.Clone(), nil
}

// Close marks the open transaction closed, credits its total and starts a fresh one.
// A failed credit is compensated by reopening the row; the in-memory state only
// changes once both steps succeed.
func (s *AccumulatorService) Close(ctx context.Context) (*CloseResult, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	current, err := s.ensureLoaded(ctx)
	if err != nil {
		return nil, err
	}
	if len(current.Items) == 0 || !current.HasID() {
		return nil, sale.ErrEmptyTransaction
	}

	logger := s.logger.With("transaction_id", current.ID.String())

	closed, err := s.repo.MarkClosed(ctx, current.ID)
	if err != nil {
		logger.Error("Failed to mark transaction closed", "error", err)
		return nil, err
	}

	balance, err := s.ledger.ApplyClose(ctx, closed.ID, closed.Total)
	if err != nil {
		logger.Warn("Balance credit failed, reopening transaction", "error", err)
		if _, reopenErr := s.repo.Reopen(ctx, closed.ID); reopenErr != nil {
			partial := ErrPartialClose{
				TransactionID:   closed.ID,
				Total:           closed.Total,
				Cause:           err,
				CompensationErr: reopenErr,
			}
			logger.Error("Register close left store and balance out of step",
				"total", closed.Total,
				"error", err,
				"reopen_error", reopenErr,
			)
			return nil, partial
		}
		return nil, err
	}

	next := sale.NewCurrent()
	s.setState(next, true)
	s.history.Invalidate(ctx)

	logger.Info("Register closed", "total", closed.Total, "cash", balance.Cash)
	return &CloseResult{Transaction: *closed, Balance: balance, Next: next.Clone()}, nil
}

// Reset abandons the open transaction. A stored row is deleted so the next item
// starts a new one.
func (s *AccumulatorService) Reset(ctx context.Context) (sale.Transaction, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	current := s.snapshot()
	if current.HasID() {
		err := s.repo.Delete(ctx, current.ID)
		if err != nil && !errors.Is(err, sale.ErrTransactionNotFound{}) {
			s.logger.Error("Failed to discard open transaction", "transaction_id", current.ID.String(), "error", err)
			return current, err
		}
		s.history.Invalidate(ctx)
	}

	next := sale.NewCurrent()
	s.setState(next, true)
	return next.Clone(), nil
}

func (s *AccumulatorService) Change(received int64) sale.Change {
	return sale.ComputeChange(received, s.snapshot().Total)
}

// ApplyChange applies an event from the change feed. Events this register
// produced itself are already reflected in the snapshot and are ignored.
// The open row counts towards daily sales, so an applied event drops the cached grouping.
func (s *AccumulatorService) ApplyChange(ctx context.Context, event sale.ChangeEvent) bool {
	if event.Origin == s.origin {
		return false
	}
	if !s.apply(event) {
		return false
	}
	s.history.Invalidate(ctx)
	return true
}

// Observe applies a change made in this process outside the accumulator
func (s *AccumulatorService) Observe(event sale.ChangeEvent) {
	s.apply(event)
}

func (s *AccumulatorService) apply(event sale.ChangeEvent) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	if event.LeavesCurrentScope() {
		if s.state.HasID() && s.state.ID != event.Transaction.ID {
			return false
		}
		s.state = sale.NewCurrent()
		s.logger.Info("Open transaction left current scope", "transaction_id", event.Transaction.ID.String(), "type", string(event.Type))
		return true
	}

	s.state = event.Transaction.Clone()
	s.loaded = true
	return true
}

func (s *AccumulatorService) isLoaded() bool {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.loaded
}

func (s *AccumulatorService) snapshot() sale.Transaction {
	s.stateMu.RLock()
	defer s.stateMu.RUnlock()
	return s.state.Clone()
}

func (s *AccumulatorService) setState(t sale.Transaction, loaded bool) {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()
	s.state = t.Clone()
	s.loaded = loaded
}
