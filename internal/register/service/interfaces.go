package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/register"
	"github.com/register-pos/internal/domain/sale"
)

// Accumulator owns the open transaction of one register
type Accumulator interface {
	// Load fetches the open transaction, creating an empty one when the store has none
	Load(ctx context.Context) (sale.Transaction, error)

	// Current returns a copy of the in-memory transaction, loading it first if needed
	Current(ctx context.Context) (sale.Transaction, error)

	// AddItem resolves the selection, appends it and persists the result
	// Returns a ValidationError for an invalid selection without touching the store
	AddItem(ctx context.Context, sel catalog.Selection) (sale.Transaction, error)

	// Close settles the open transaction into the register balance
	// Returns ErrPartialClose when the store and the balance could not be kept in step
	Close(ctx context.Context) (*CloseResult, error)

	// Reset abandons the open transaction
	Reset(ctx context.Context) (sale.Transaction, error)

	// Change computes the change due for received against the open total
	Change(received int64) sale.Change

	// ApplyChange applies a change-feed event from another register
	ApplyChange(ctx context.Context, event sale.ChangeEvent) bool
}

// Ledger tracks the cash held in the register
type Ledger interface {
	// FetchOrInit returns the balance, creating the empty singleton when absent
	FetchOrInit(ctx context.Context) (*register.Balance, error)

	// RecordExpense pays amount out of the drawer
	// Returns a ValidationError when amount is not positive or exceeds the cash on hand
	RecordExpense(ctx context.Context, amount int64) (*register.Balance, error)

	// ApplyClose credits the total of a closed transaction
	ApplyClose(ctx context.Context, transactionID uuid.UUID, total int64) (*register.Balance, error)

	// Movements lists recent ledger mutations, newest first
	Movements(ctx context.Context, limit int) ([]*register.Movement, error)
}

// History serves the per-day grouping of persisted transactions
type History interface {
	DailySales(ctx context.Context) (*sale.Aggregation, error)

	// Invalidate drops the cached grouping after a mutation
	Invalidate(ctx context.Context)

	// Refresh invalidates and rebuilds
	Refresh(ctx context.Context) (*sale.Aggregation, error)
}

// Editor corrects persisted transactions
type Editor interface {
	Get(ctx context.Context, id uuid.UUID) (*sale.Transaction, error)

	// Apply runs edits against the stored transaction and saves the result
	Apply(ctx context.Context, id uuid.UUID, edits []sale.Edit) (*EditResult, error)

	// Replace swaps in a whole new item list and saves it
	Replace(ctx context.Context, id uuid.UUID, items []catalog.Item) (*EditResult, error)

	// Save persists the items and total of draft
	Save(ctx context.Context, draft *sale.Draft) (*EditResult, error)

	// Delete removes a transaction and returns the refreshed daily sales
	Delete(ctx context.Context, id uuid.UUID) (*sale.Aggregation, error)
}

// ChangeObserver receives row changes made in this process that bypass the accumulator
type ChangeObserver interface {
	Observe(event sale.ChangeEvent)
}

// CloseResult is the outcome of a successful Close
type CloseResult struct {
	Transaction sale.Transaction  `json:"transaction"`
	Balance     *register.Balance `json:"balance"`
	Next        sale.Transaction  `json:"next"`
}

// EditResult is a saved transaction together with the daily sales it affects
type EditResult struct {
	Transaction sale.Transaction  `json:"transaction"`
	Sales       *sale.Aggregation `json:"sales"`
}
