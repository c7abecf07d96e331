package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/register-pos/internal/domain/register"
	"github.com/register-pos/internal/platform/persistence"
)

// BalanceRepository implements the register.BalanceRepository interface for PostgreSQL
type BalanceRepository struct {
	querier persistence.Querier
	logger  *slog.Logger
}

// NewBalanceRepository creates a new PostgreSQL register balance repository
func NewBalanceRepository(logger *slog.Logger, db *persistence.PostgresDB) register.BalanceRepository {
	return &BalanceRepository{
		querier: db.Pool(),
		logger:  logger,
	}
}

// Get reads the singleton balance row
func (r *BalanceRepository) Get(ctx context.Context) (*register.Balance, error) {
	query := `
		SELECT id, cash, last_updated, version
		FROM register_balance
		WHERE id = $1
	`

	var b register.Balance
	err := r.querier.QueryRow(ctx, query, register.SingletonID).Scan(
		&b.ID,
		&b.Cash,
		&b.LastUpdated,
		&b.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, register.ErrBalanceNotFound
		}
		r.logger.Error("Failed to get register balance", "error", err)
		return nil, fmt.Errorf("failed to get register balance: %w", err)
	}

	return &b, nil
}

// CreateIfAbsent inserts b unless the singleton already exists. It reports whether a row was inserted.
func (r *BalanceRepository) CreateIfAbsent(ctx context.Context, b *register.Balance) (bool, error) {
	query := `
		INSERT INTO register_balance (id, cash, last_updated, version)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO NOTHING
	`

	result, err := r.querier.Exec(ctx, query, b.ID, b.Cash, b.LastUpdated, b.Version)
	if err != nil {
		r.logger.Error("Failed to create register balance", "error", err)
		return false, fmt.Errorf("failed to create register balance: %w", err)
	}

	return result.RowsAffected() == 1, nil
}

// Adjust adds delta to the cash in a single statement. The guard refuses any
// adjustment that would leave the drawer negative with register.ErrInsufficientCash.
func (r *BalanceRepository) Adjust(ctx context.Context, delta int64, at time.Time) (*register.Balance, error) {
	query := `
		UPDATE register_balance
		SET cash = cash + $1, last_updated = $2, version = version + 1
		WHERE id = $3 AND cash + $1 >= 0
		RETURNING id, cash, last_updated, version
	`

	var b register.Balance
	err := r.querier.QueryRow(ctx, query, delta, at, register.SingletonID).Scan(
		&b.ID,
		&b.Cash,
		&b.LastUpdated,
		&b.Version,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.explainMissedAdjust(ctx, delta)
		}
		r.logger.Error("Failed to adjust register balance", "delta", delta, "error", err)
		return nil, fmt.Errorf("failed to adjust register balance: %w", err)
	}

	return &b, nil
}

// explainMissedAdjust tells a missing row apart from a refused guard
func (r *BalanceRepository) explainMissedAdjust(ctx context.Context, delta int64) error {
	if _, err := r.Get(ctx); err != nil {
		return err
	}
	r.logger.Warn("Register balance adjustment refused", "delta", delta)
	return register.ErrInsufficientCash
}
