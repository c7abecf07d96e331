package sale

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/shared"
)

// EditOp names one editor operation
type EditOp string

const (
	EditRename      EditOp = "rename"
	EditSetPrice    EditOp = "set_price"
	EditRemove      EditOp = "remove"
	EditAppendBlank EditOp = "append_blank"
)

// Edit is a serialisable editor operation
type Edit struct {
	Op    EditOp `json:"op"`
	Index int    `json:"index"`
	Name  string `json:"name,omitempty"`
	Price int64  `json:"price,omitempty"`
}

// Draft is an editable copy of a historical transaction.
// Every mutation recomputes the total from scratch.
type Draft struct {
	tx Transaction
}

// NewDraft copies t into a draft
func NewDraft(t Transaction) *Draft {
	d := &Draft{tx: t.Clone()}
	d.tx.Recalculate()
	return d
}

// ID returns the transaction being edited
func (d *Draft) ID() uuid.UUID { return d.tx.ID }

// Transaction returns a copy of the draft state
func (d *Draft) Transaction() Transaction { return d.tx.Clone() }

// Items returns a copy of the draft lines
func (d *Draft) Items() []catalog.Item { return d.tx.Clone().Items }

// Total returns the recomputed total
func (d *Draft) Total() int64 { return d.tx.Total }

func (d *Draft) checkIndex(i int) error {
	if i < 0 || i >= len(d.tx.Items) {
		return shared.NewValidationError("index", fmt.Sprintf("line %d out of range (0..%d)", i, len(d.tx.Items)-1))
	}
	return nil
}

// Rename replaces the name of line i
func (d *Draft) Rename(i int, name string) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.tx.Items[i] = catalog.Item{Name: name, Price: d.tx.Items[i].Price}
	d.tx.Recalculate()
	return nil
}

// SetPrice replaces the price of line i
func (d *Draft) SetPrice(i int, price int64) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	if price < 0 {
		return shared.NewValidationError("price", "must not be negative")
	}
	d.tx.Items[i] = catalog.Item{Name: d.tx.Items[i].Name, Price: price}
	d.tx.Recalculate()
	return nil
}

// Remove deletes line i
func (d *Draft) Remove(i int) error {
	if err := d.checkIndex(i); err != nil {
		return err
	}
	d.tx.Items = append(d.tx.Items[:i:i], d.tx.Items[i+1:]...)
	d.tx.Recalculate()
	return nil
}

// AppendBlank adds an empty line
func (d *Draft) AppendBlank() {
	d.tx.Items = append(d.tx.Items, catalog.Item{Name: "", Price: 0})
	d.tx.Recalculate()
}

// ReplaceItems swaps in a whole new item list
func (d *Draft) ReplaceItems(items []catalog.Item) error {
	for i, item := range items {
		if item.Price < 0 {
			return shared.NewValidationError("price", fmt.Sprintf("line %d must not be negative", i))
		}
	}
	d.tx.Items = make([]catalog.Item, len(items))
	copy(d.tx.Items, items)
	d.tx.Recalculate()
	return nil
}

// Apply runs edits in order and stops at the first rejection.
// Edits applied before the rejection are kept.
func (d *Draft) Apply(edits ...Edit) error {
	for n, e := range edits {
		var err error
		switch e.Op {
		case EditRename:
			err = d.Rename(e.Index, e.Name)
		case EditSetPrice:
			err = d.SetPrice(e.Index, e.Price)
		case EditRemove:
			err = d.Remove(e.Index)
		case EditAppendBlank:
			d.AppendBlank()
		default:
			err = shared.NewValidationError("op", fmt.Sprintf("unknown edit operation %q", e.Op))
		}
		if err != nil {
			return fmt.Errorf("edit %d: %w", n, err)
		}
	}
	return nil
}
