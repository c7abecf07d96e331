package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/register-pos/internal/domain/register"
	"github.com/register-pos/internal/domain/sale"
)

// Warmup is the state prepared before the register starts serving
type Warmup struct {
	Current sale.Transaction
	Balance *register.Balance
	Sales   *sale.Aggregation
}

// WarmupService loads the register state on a worker pool at startup
type WarmupService struct {
	accumulator Accumulator
	ledger      Ledger
	history     History
	pool        *ants.Pool
	logger      *slog.Logger
}

type WorkerPoolConfig struct {
	Size int
}

func NewWarmupService(
	accumulator Accumulator,
	ledger Ledger,
	history History,
	config WorkerPoolConfig,
	logger *slog.Logger,
) (*WarmupService, error) {
	pool, err := ants.NewPool(config.Size)
	if err != nil {
		return nil, err
	}

	return &WarmupService{
		accumulator: accumulator,
		ledger:      ledger,
		history:     history,
		pool:        pool,
		logger:      logger.With("component", "warmup"),
	}, nil
}

// Run loads the open transaction, the balance and the daily sales concurrently.
// Every step runs even if another fails; the failures are joined.
func (s *WarmupService) Run(ctx context.Context) (*Warmup, error) {
	var (
		out  Warmup
		mu   sync.Mutex
		errs []error
		wg   sync.WaitGroup
	)

	tasks := map[string]func() error{
		"current transaction": func() error {
			t, err := s.accumulator.Load(ctx)
			mu.Lock()
			out.Current = t
			mu.Unlock()
			return err
		},
		"register balance": func() error {
			b, err := s.ledger.FetchOrInit(ctx)
			mu.Lock()
			out.Balance = b
			mu.Unlock()
			return err
		},
		"daily sales": func() error {
			agg, err := s.history.DailySales(ctx)
			mu.Lock()
			out.Sales = agg
			mu.Unlock()
			return err
		},
	}

	for name, task := range tasks {
		wg.Add(1)
		err := s.pool.Submit(func() {
			defer wg.Done()
			if err := task(); err != nil {
				s.logger.Error("Warm-up step failed", "step", name, "error", err)
				mu.Lock()
				errs = append(errs, fmt.Errorf("%s: %w", name, err))
				mu.Unlock()
			}
		})
		if err != nil {
			wg.Done()
			mu.Lock()
			errs = append(errs, fmt.Errorf("%s: failed to submit: %w", name, err))
			mu.Unlock()
		}
	}

	wg.Wait()

	s.logger.Info("Warm-up finished", "failed_steps", len(errs))
	return &out, errors.Join(errs...)
}

// Shutdown releases the worker pool
func (s *WarmupService) Shutdown() {
	s.logger.Info("Shutting down worker pool", "running_workers", s.pool.Running())
	s.pool.Release()
}

// Running returns the number of running workers in the pool.
func (s *WarmupService) Running() int {
	return s.pool.Running()
}

// Capacity returns the capacity of the worker pool.
func (s *WarmupService) Capacity() int {
	return s.pool.Cap()
}
