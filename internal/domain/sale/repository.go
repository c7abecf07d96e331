package sale

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/shared"
)

// Repository persists transactions
type Repository interface {
	// GetCurrent returns the single open row, or ErrNoCurrentTransaction
	GetCurrent(ctx context.Context) (*Transaction, error)
	// ListAll returns every row, newest first
	ListAll(ctx context.Context) ([]Transaction, error)
	GetByID(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// Insert stores t, assigning an id when absent, and returns the stored row
	Insert(ctx context.Context, t Transaction) (*Transaction, error)
	// Update writes items, total, is_current and is_closed by id
	Update(ctx context.Context, t Transaction) (*Transaction, error)
	// UpdateItems writes only items and total by id
	UpdateItems(ctx context.Context, t Transaction) (*Transaction, error)
	// MarkClosed flags the row closed and no longer current
	MarkClosed(ctx context.Context, id uuid.UUID) (*Transaction, error)
	// Reopen undoes MarkClosed
	Reopen(ctx context.Context, id uuid.UUID) (*Transaction, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ErrNoCurrentTransaction signals that no open row exists yet
var ErrNoCurrentTransaction = errors.New("no current transaction")

// ErrEmptyTransaction rejects closing a transaction without items
var ErrEmptyTransaction = shared.NewValidationError("items", "transaction has no items")

// ErrTransactionNotFound indicates a missing transaction row
type ErrTransactionNotFound struct {
	ID uuid.UUID
}

func (e ErrTransactionNotFound) Error() string {
	return "transaction not found: " + e.ID.String()
}

// Is matches any ErrTransactionNotFound when the target has no ID
func (e ErrTransactionNotFound) Is(target error) bool {
	t, ok := target.(ErrTransactionNotFound)
	if !ok {
		return false
	}
	return t.ID == uuid.Nil || t.ID == e.ID
}

// ErrCurrentConflict is returned when storing ID as current would create a second open row
type ErrCurrentConflict struct {
	ID uuid.UUID
}

func (e ErrCurrentConflict) Error() string {
	return "transaction " + e.ID.String() + " conflicts with the open transaction"
}
