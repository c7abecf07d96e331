// Package postgres provides PostgreSQL implementations of the domain repositories.
// Transaction mutations write their change events to the outbox inside the same
// database transaction so the change feed never misses or invents a row change.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/outbox"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/domain/shared"
	"github.com/register-pos/internal/platform/persistence"
)

// TransactionRepository implements the sale.Repository interface for PostgreSQL
type TransactionRepository struct {
	pool   persistence.Pool
	outbox outbox.Repository
	logger *slog.Logger
	origin string // Register instance stamped on change events
}

// NewTransactionRepository creates a new PostgreSQL transaction repository.
// origin identifies this register instance on the change feed.
func NewTransactionRepository(logger *slog.Logger, db *persistence.PostgresDB, outboxRepo outbox.Repository, origin string) sale.Repository {
	return &TransactionRepository{
		pool:   db.Pool(),
		outbox: outboxRepo,
		logger: logger,
		origin: origin,
	}
}

// GetCurrent returns the open transaction or sale.ErrNoCurrentTransaction
func (r *TransactionRepository) GetCurrent(ctx context.Context) (*sale.Transaction, error) {
	query := `
		SELECT id, items, total, created_at, is_closed, is_current
		FROM transactions
		WHERE is_current = true
		LIMIT 1
	`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrNoCurrentTransaction
		}
		r.logger.Error("Failed to get current transaction", "error", err)
		return nil, fmt.Errorf("failed to get current transaction: %w", err)
	}

	return t, nil
}

// ListAll returns every transaction, newest first
func (r *TransactionRepository) ListAll(ctx context.Context) ([]sale.Transaction, error) {
	query := `
		SELECT id, items, total, created_at, is_closed, is_current
		FROM transactions
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error("Failed to list transactions", "error", err)
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	transactions := []sale.Transaction{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			r.logger.Error("Failed to scan transaction", "error", err)
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, *t)
	}

	if err := rows.Err(); err != nil {
		r.logger.Error("Error iterating over transactions", "error", err)
		return nil, fmt.Errorf("error iterating over transactions: %w", err)
	}

	return transactions, nil
}

// GetByID retrieves a transaction by its ID
func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*sale.Transaction, error) {
	query := `
		SELECT id, items, total, created_at, is_closed, is_current
		FROM transactions
		WHERE id = $1
	`

	t, err := scanTransaction(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, sale.ErrTransactionNotFound{ID: id}
		}
		r.logger.Error("Failed to get transaction", "id", id.String(), "error", err)
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}

	return t, nil
}

// Insert stores t and returns the stored row. An id is assigned when t has none.
// A second current row is refused with sale.ErrCurrentConflict.
func (r *TransactionRepository) Insert(ctx context.Context, t sale.Transaction) (*sale.Transaction, error) {
	if !t.HasID() {
		t.ID = uuid.New()
	}
	items, err := encodeItems(t.Items)
	if err != nil {
		return nil, err
	}

	query := `
		INSERT INTO transactions (id, items, total, created_at, is_closed, is_current)
		VALUES ($1, $2, $3, COALESCE($4, now()), $5, $6)
		RETURNING id, items, total, created_at, is_closed, is_current
	`

	var stored *sale.Transaction
	err = persistence.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		stored, err = scanTransaction(tx.QueryRow(ctx, query, t.ID, items, t.Total, t.CreatedAt, t.IsClosed, t.IsCurrent))
		if err != nil {
			if persistence.IsUniqueViolation(err) {
				return sale.ErrCurrentConflict{ID: t.ID}
			}
			r.logger.Error("Failed to insert transaction", "id", t.ID.String(), "error", err)
			return fmt.Errorf("failed to insert transaction: %w", err)
		}
		if stored.IsCurrent {
			return r.recordChange(ctx, tx, shared.EventTypeInsert, *stored)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

// Update writes items, total and both flags by id
func (r *TransactionRepository) Update(ctx context.Context, t sale.Transaction) (*sale.Transaction, error) {
	items, err := encodeItems(t.Items)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE transactions AS t
		SET items = $1, total = $2, is_current = $3, is_closed = $4
		FROM (SELECT id, is_current FROM transactions WHERE id = $5 FOR UPDATE) AS prev
		WHERE t.id = prev.id
		RETURNING t.id, t.items, t.total, t.created_at, t.is_closed, t.is_current, prev.is_current
	`

	return r.mutate(ctx, "update transaction", t.ID, func(tx pgx.Tx) (*sale.Transaction, bool, error) {
		var wasCurrent bool
		stored, err := scanTransaction(tx.QueryRow(ctx, query, items, t.Total, t.IsCurrent, t.IsClosed, t.ID), &wasCurrent)
		if err != nil && persistence.IsUniqueViolation(err) {
			return nil, false, sale.ErrCurrentConflict{ID: t.ID}
		}
		return stored, wasCurrent || (stored != nil && stored.IsCurrent), err
	})
}

// UpdateItems writes only items and total by id, leaving the flags untouched
func (r *TransactionRepository) UpdateItems(ctx context.Context, t sale.Transaction) (*sale.Transaction, error) {
	items, err := encodeItems(t.Items)
	if err != nil {
		return nil, err
	}

	query := `
		UPDATE transactions
		SET items = $1, total = $2
		WHERE id = $3
		RETURNING id, items, total, created_at, is_closed, is_current
	`

	return r.mutate(ctx, "update transaction items", t.ID, func(tx pgx.Tx) (*sale.Transaction, bool, error) {
		stored, err := scanTransaction(tx.QueryRow(ctx, query, items, t.Total, t.ID))
		return stored, stored != nil && stored.IsCurrent, err
	})
}

// MarkClosed flags the row closed and takes it out of the current scope
func (r *TransactionRepository) MarkClosed(ctx context.Context, id uuid.UUID) (*sale.Transaction, error) {
	query := `
		UPDATE transactions AS t
		SET is_closed = true, is_current = false
		FROM (SELECT id, is_current FROM transactions WHERE id = $1 FOR UPDATE) AS prev
		WHERE t.id = prev.id
		RETURNING t.id, t.items, t.total, t.created_at, t.is_closed, t.is_current, prev.is_current
	`

	return r.mutate(ctx, "close transaction", id, func(tx pgx.Tx) (*sale.Transaction, bool, error) {
		var wasCurrent bool
		stored, err := scanTransaction(tx.QueryRow(ctx, query, id), &wasCurrent)
		return stored, wasCurrent, err
	})
}

// Reopen undoes MarkClosed so the row is the open transaction again
func (r *TransactionRepository) Reopen(ctx context.Context, id uuid.UUID) (*sale.Transaction, error) {
	query := `
		UPDATE transactions
		SET is_closed = false, is_current = true
		WHERE id = $1
		RETURNING id, items, total, created_at, is_closed, is_current
	`

	return r.mutate(ctx, "reopen transaction", id, func(tx pgx.Tx) (*sale.Transaction, bool, error) {
		stored, err := scanTransaction(tx.QueryRow(ctx, query, id))
		if err != nil && persistence.IsUniqueViolation(err) {
			return nil, false, sale.ErrCurrentConflict{ID: id}
		}
		return stored, true, err
	})
}

// Delete removes the row. Deleting the open transaction is announced on the change feed.
func (r *TransactionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM transactions
		WHERE id = $1
		RETURNING id, items, total, created_at, is_closed, is_current
	`

	return persistence.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		deleted, err := scanTransaction(tx.QueryRow(ctx, query, id))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return sale.ErrTransactionNotFound{ID: id}
			}
			r.logger.Error("Failed to delete transaction", "id", id.String(), "error", err)
			return fmt.Errorf("failed to delete transaction: %w", err)
		}
		if deleted.IsCurrent {
			return r.recordChange(ctx, tx, shared.EventTypeDelete, *deleted)
		}
		return nil
	})
}

// mutate runs an UPDATE statement in a transaction and records an UPDATE change event
// when the row was or became current. fn reports whether the event is due.
func (r *TransactionRepository) mutate(ctx context.Context, action string, id uuid.UUID, fn func(tx pgx.Tx) (*sale.Transaction, bool, error)) (*sale.Transaction, error) {
	var stored *sale.Transaction
	err := persistence.RunInTx(ctx, r.pool, func(tx pgx.Tx) error {
		t, notify, err := fn(tx)
		if err != nil {
			var conflict sale.ErrCurrentConflict
			if errors.As(err, &conflict) {
				return err
			}
			if errors.Is(err, pgx.ErrNoRows) {
				return sale.ErrTransactionNotFound{ID: id}
			}
			r.logger.Error("Failed to "+action, "id", id.String(), "error", err)
			return fmt.Errorf("failed to %s: %w", action, err)
		}
		stored = t
		if notify {
			return r.recordChange(ctx, tx, shared.EventTypeUpdate, *t)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return stored, nil
}

func (r *TransactionRepository) recordChange(ctx context.Context, tx pgx.Tx, eventType shared.EventType, t sale.Transaction) error {
	message, err := outbox.NewMessage(sale.NewChangeEvent(eventType, t, r.origin))
	if err != nil {
		return fmt.Errorf("failed to encode change event: %w", err)
	}
	return r.outbox.WithTx(tx).Create(ctx, message)
}

// scanTransaction reads the six transaction columns followed by any extra destinations
func scanTransaction(row pgx.Row, extra ...any) (*sale.Transaction, error) {
	var t sale.Transaction
	var items []byte
	dest := append([]any{&t.ID, &items, &t.Total, &t.CreatedAt, &t.IsClosed, &t.IsCurrent}, extra...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}

	t.Items = []catalog.Item{}
	if len(items) > 0 {
		if err := json.Unmarshal(items, &t.Items); err != nil {
			return nil, fmt.Errorf("failed to decode items of transaction %s: %w", t.ID, err)
		}
	}

	return &t, nil
}

func encodeItems(items []catalog.Item) ([]byte, error) {
	if items == nil {
		items = []catalog.Item{}
	}
	encoded, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to encode items: %w", err)
	}
	return encoded, nil
}
