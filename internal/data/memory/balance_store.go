package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/register-pos/internal/domain/register"
)

// BalanceStore implements register.BalanceRepository in memory
type BalanceStore struct {
	mu      sync.Mutex
	balance *register.Balance
}

func NewBalanceStore() *BalanceStore {
	return &BalanceStore{}
}

func (s *BalanceStore) Get(_ context.Context) (*register.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance == nil {
		return nil, register.ErrBalanceNotFound
	}
	out := *s.balance
	return &out, nil
}

func (s *BalanceStore) CreateIfAbsent(_ context.Context, b *register.Balance) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance != nil {
		return false, nil
	}
	stored := *b
	s.balance = &stored
	return true, nil
}

func (s *BalanceStore) Adjust(_ context.Context, delta int64, at time.Time) (*register.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.balance == nil {
		return nil, register.ErrBalanceNotFound
	}
	if s.balance.Cash+delta < 0 {
		return nil, register.ErrInsufficientCash
	}
	s.balance.Apply(delta, at)
	out := *s.balance
	return &out, nil
}

// MovementJournal implements register.MovementJournal in memory
type MovementJournal struct {
	mu        sync.Mutex
	movements []*register.Movement
}

func NewMovementJournal() *MovementJournal {
	return &MovementJournal{}
}

func (j *MovementJournal) Append(_ context.Context, m *register.Movement) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	stored := *m
	j.movements = append(j.movements, &stored)
	return nil
}

// List returns up to limit movements, newest first. A non-positive limit returns all of them.
func (j *MovementJournal) List(_ context.Context, limit int) ([]*register.Movement, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	out := make([]*register.Movement, 0, len(j.movements))
	for i := len(j.movements) - 1; i >= 0; i-- {
		m := *j.movements[i]
		out = append(out, &m)
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].RecordedAt.After(out[b].RecordedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
