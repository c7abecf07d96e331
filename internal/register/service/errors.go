package service

import (
	"fmt"

	"github.com/google/uuid"
)

// ErrPartialClose reports a transaction that was marked closed in the store while the
// balance credit failed and the reopen that should have undone it failed too.
// The row and the balance disagree until someone reconciles them by hand.
type ErrPartialClose struct {
	TransactionID   uuid.UUID
	Total           int64
	Cause           error
	CompensationErr error
}

func (e ErrPartialClose) Error() string {
	return fmt.Sprintf("transaction %s closed without crediting %d to the register: %v (reopen failed: %v)",
		e.TransactionID, e.Total, e.Cause, e.CompensationErr)
}

func (e ErrPartialClose) Unwrap() error {
	return e.Cause
}
