// Package memory provides process-local implementations of the store contracts.
// The command-line register runs on them and service tests use them as fakes.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/sale"
)

// TransactionStore implements sale.Repository in memory.
// seq records insertion order so rows sharing a timestamp list deterministically.
type TransactionStore struct {
	mu      sync.RWMutex
	rows    map[uuid.UUID]sale.Transaction
	seq     map[uuid.UUID]uint64
	nextSeq uint64
	now     func() time.Time
}

func NewTransactionStore() *TransactionStore {
	return &TransactionStore{
		rows: make(map[uuid.UUID]sale.Transaction),
		seq:  make(map[uuid.UUID]uint64),
		now:  time.Now,
	}
}

func (s *TransactionStore) GetCurrent(_ context.Context) (*sale.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, t := range s.rows {
		if t.IsCurrent {
			out := t.Clone()
			return &out, nil
		}
	}
	return nil, sale.ErrNoCurrentTransaction
}

// ListAll returns every row, newest first. Rows without a timestamp sort last;
// equal timestamps put the later insert first.
func (s *TransactionStore) ListAll(_ context.Context) ([]sale.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]sale.Transaction, 0, len(s.rows))
	for _, t := range s.rows {
		out = append(out, t.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].CreatedAt, out[j].CreatedAt
		switch {
		case a == nil && b != nil:
			return false
		case a != nil && b == nil:
			return true
		case a != nil && !a.Equal(*b):
			return a.After(*b)
		}
		return s.seq[out[i].ID] > s.seq[out[j].ID]
	})
	return out, nil
}

func (s *TransactionStore) GetByID(_ context.Context, id uuid.UUID) (*sale.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.rows[id]
	if !ok {
		return nil, sale.ErrTransactionNotFound{ID: id}
	}
	out := t.Clone()
	return &out, nil
}

func (s *TransactionStore) Insert(_ context.Context, t sale.Transaction) (*sale.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := t.Clone()
	if !row.HasID() {
		row.ID = uuid.New()
	}
	if _, exists := s.rows[row.ID]; exists {
		return nil, sale.ErrCurrentConflict{ID: row.ID}
	}
	if row.IsCurrent && s.hasOtherCurrent(row.ID) {
		return nil, sale.ErrCurrentConflict{ID: row.ID}
	}
	if row.CreatedAt == nil {
		now := s.now()
		row.CreatedAt = &now
	}

	s.nextSeq++
	s.rows[row.ID] = row
	s.seq[row.ID] = s.nextSeq
	out := row.Clone()
	return &out, nil
}

func (s *TransactionStore) Update(_ context.Context, t sale.Transaction) (*sale.Transaction, error) {
	return s.modify(t.ID, func(row *sale.Transaction) error {
		if t.IsCurrent && s.hasOtherCurrent(t.ID) {
			return sale.ErrCurrentConflict{ID: t.ID}
		}
		row.Items = t.Clone().Items
		row.Total = t.Total
		row.IsCurrent = t.IsCurrent
		row.IsClosed = t.IsClosed
		return nil
	})
}

func (s *TransactionStore) UpdateItems(_ context.Context, t sale.Transaction) (*sale.Transaction, error) {
	return s.modify(t.ID, func(row *sale.Transaction) error {
		row.Items = t.Clone().Items
		row.Total = t.Total
		return nil
	})
}

func (s *TransactionStore) MarkClosed(_ context.Context, id uuid.UUID) (*sale.Transaction, error) {
	return s.modify(id, func(row *sale.Transaction) error {
		row.IsClosed = true
		row.IsCurrent = false
		return nil
	})
}

func (s *TransactionStore) Reopen(_ context.Context, id uuid.UUID) (*sale.Transaction, error) {
	return s.modify(id, func(row *sale.Transaction) error {
		if s.hasOtherCurrent(id) {
			return sale.ErrCurrentConflict{ID: id}
		}
		row.IsClosed = false
		row.IsCurrent = true
		return nil
	})
}

func (s *TransactionStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[id]; !ok {
		return sale.ErrTransactionNotFound{ID: id}
	}
	delete(s.rows, id)
	delete(s.seq, id)
	return nil
}

func (s *TransactionStore) modify(id uuid.UUID, fn func(row *sale.Transaction) error) (*sale.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, sale.ErrTransactionNotFound{ID: id}
	}
	if err := fn(&row); err != nil {
		return nil, err
	}
	s.rows[id] = row
	out := row.Clone()
	return &out, nil
}

// hasOtherCurrent must be called with mu held
func (s *TransactionStore) hasOtherCurrent(id uuid.UUID) bool {
	for otherID, t := range s.rows {
		if otherID != id && t.IsCurrent {
			return true
		}
	}
	return false
}
