package register

import (
	"time"

	"github.com/google/uuid"
)

// MovementKind classifies a cash movement
type MovementKind string

const (
	MovementKindClose   MovementKind = "CLOSE"
	MovementKindExpense MovementKind = "EXPENSE"
)

// Movement records one ledger mutation
type Movement struct {
	ID            uuid.UUID    `json:"id" bson:"_id"`
	Kind          MovementKind `json:"kind" bson:"kind"`
	Amount        int64        `json:"amount" bson:"amount"`
	CashAfter     int64        `json:"cash_after" bson:"cash_after"`
	TransactionID *uuid.UUID   `json:"transaction_id,omitempty" bson:"transaction_id,omitempty"`
	CorrelationID string       `json:"correlation_id,omitempty" bson:"correlation_id,omitempty"`
	RecordedAt    time.Time    `json:"recorded_at" bson:"recorded_at"`
}

// NewMovement builds a movement stamped now
func NewMovement(kind MovementKind, amount, cashAfter int64) *Movement {
	return &Movement{
		ID:         uuid.New(),
		Kind:       kind,
		Amount:     amount,
		CashAfter:  cashAfter,
		RecordedAt: time.Now().UTC(),
	}
}

// ForTransaction links the movement to a closed transaction
func (m *Movement) ForTransaction(id uuid.UUID) *Movement {
	if id != uuid.Nil {
		m.TransactionID = &id
	}
	return m
}
