// Package register holds the cash-on-hand ledger of the register and its movement journal.
package register

import (
	"fmt"
	"time"

	"github.com/register-pos/internal/domain/shared"
)

// SingletonID is the id of the only register balance row
const SingletonID = 1

// Balance is the cash currently in the drawer
type Balance struct {
	ID          int       `json:"id" bson:"id"`
	Cash        int64     `json:"cash" bson:"cash"`
	LastUpdated time.Time `json:"last_updated" bson:"last_updated"`
	Version     int       `json:"version" bson:"version"`
}

// NewBalance returns the initial empty drawer
func NewBalance() *Balance {
	return &Balance{
		ID:          SingletonID,
		Cash:        0,
		LastUpdated: time.Now().UTC(),
		Version:     1,
	}
}

// CheckExpense validates that amount can be paid out of the drawer
func (b *Balance) CheckExpense(amount int64) error {
	if amount <= 0 {
		return shared.NewValidationError("amount", "must be greater than 0")
	}
	if amount > b.Cash {
		return shared.NewValidationError("amount", fmt.Sprintf("expense %d exceeds cash on hand %d", amount, b.Cash))
	}
	return nil
}

// CheckClose validates a register close credit
func CheckClose(total int64) error {
	if total < 0 {
		return shared.NewValidationError("total", "must not be negative")
	}
	return nil
}

// Apply adds delta to the cash and bumps the version
func (b *Balance) Apply(delta int64, at time.Time) {
	b.Cash += delta
	b.LastUpdated = at
	b.Version++
}
