// Package sale models register transactions, their daily grouping, change calculation
// and the editor used to correct closed transactions.
package sale

import (
	"time"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/catalog"
)

// Transaction is one register sale. Total always equals the sum of item prices.
type Transaction struct {
	ID        uuid.UUID      `json:"id"`
	Items     []catalog.Item `json:"items"`
	Total     int64          `json:"total"`
	CreatedAt *time.Time     `json:"created_at,omitempty"`
	IsClosed  bool           `json:"is_closed"`
	IsCurrent bool           `json:"is_current"`
}

// NewCurrent returns the empty open transaction a register starts from
func NewCurrent() Transaction {
	return Transaction{
		Items:     []catalog.Item{},
		IsCurrent: true,
	}
}

// HasID reports whether the store has assigned an identifier
func (t Transaction) HasID() bool {
	return t.ID != uuid.Nil
}

// Clone returns a deep copy
func (t Transaction) Clone() Transaction {
	out := t
	out.Items = make([]catalog.Item, len(t.Items))
	copy(out.Items, t.Items)
	if t.CreatedAt != nil {
		created := *t.CreatedAt
		out.CreatedAt = &created
	}
	return out
}

// WithItem returns a copy with item appended and the total advanced by its price
func (t Transaction) WithItem(item catalog.Item) Transaction {
	out := t.Clone()
	out.Items = append(out.Items, item)
	out.Total += item.Price
	return out
}

// Recalculate sets Total from the items
func (t *Transaction) Recalculate() {
	t.Total = Sum(t.Items)
}

// Consistent reports whether Total matches the items
func (t Transaction) Consistent() bool {
	return t.Total == Sum(t.Items)
}

// Sum adds up item prices
func Sum(items []catalog.Item) int64 {
	var total int64
	for _, item := range items {
		total += item.Price
	}
	return total
}
