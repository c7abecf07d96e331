package register

import (
	"context"
	"errors"
	"time"
)

// BalanceRepository persists the singleton balance row
type BalanceRepository interface {
	// Get returns the row or ErrBalanceNotFound
	Get(ctx context.Context) (*Balance, error)
	// CreateIfAbsent inserts b unless a row already exists
	CreateIfAbsent(ctx context.Context, b *Balance) (bool, error)
	// Adjust adds delta atomically. A result below zero is refused with ErrInsufficientCash.
	Adjust(ctx context.Context, delta int64, at time.Time) (*Balance, error)
}

// MovementJournal stores cash movements
type MovementJournal interface {
	Append(ctx context.Context, m *Movement) error
	// List returns up to limit movements, newest first
	List(ctx context.Context, limit int) ([]*Movement, error)
}

var (
	// ErrBalanceNotFound signals the singleton has not been created yet
	ErrBalanceNotFound = errors.New("register balance not found")
	// ErrInsufficientCash is returned when an adjustment would take cash below zero
	ErrInsufficientCash = errors.New("insufficient cash in register")
)
