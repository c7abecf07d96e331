package register

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestNewBalance(t *testing.T) {
	b := NewBalance()
	assert.Equal(t, SingletonID, b.ID)
	assert.Zero(t, b.Cash)
	assert.Equal(t, 1, b.Version)
	assert.False(t, b.LastUpdated.IsZero())
}

func TestBalance_CheckExpense(t *testing.T) {
	b := &Balance{ID: SingletonID, Cash: 5000}

	tests := []struct {
		name   string
		amount int64
		ok     bool
	}{
		{"within cash", 3000, true},
		{"exactly cash", 5000, true},
		{"zero", 0, false},
		{"negative", -10, false},
		{"exceeds cash", 5001, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := b.CheckExpense(tt.amount)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, shared.IsValidation(err))
			}
			assert.Equal(t, int64(5000), b.Cash)
		})
	}
}

func TestCheckClose(t *testing.T) {
	assert.NoError(t, CheckClose(0))
	assert.NoError(t, CheckClose(1200))
	assert.True(t, shared.IsValidation(CheckClose(-1)))
}

func TestBalance_Apply(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	b := &Balance{ID: SingletonID, Cash: 2000, Version: 3}

	b.Apply(1500, at)
	assert.Equal(t, int64(3500), b.Cash)
	assert.Equal(t, 4, b.Version)
	assert.Equal(t, at, b.LastUpdated)

	b.Apply(-3500, at)
	assert.Zero(t, b.Cash)
}

func TestNewMovement(t *testing.T) {
	m := NewMovement(MovementKindExpense, 3000, 2000)
	assert.NotEqual(t, uuid.Nil, m.ID)
	assert.Nil(t, m.TransactionID)

	id := uuid.New()
	m = NewMovement(MovementKindClose, 1200, 3200).ForTransaction(id)
	if assert.NotNil(t, m.TransactionID) {
		assert.Equal(t, id, *m.TransactionID)
	}

	m = NewMovement(MovementKindClose, 1, 1).ForTransaction(uuid.Nil)
	assert.Nil(t, m.TransactionID)
}
