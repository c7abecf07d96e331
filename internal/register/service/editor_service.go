package service

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/domain/shared"
)

// EditorService implements Editor
type EditorService struct {
	repo     sale.Repository
	history  History
	observer ChangeObserver
	logger   *slog.Logger
}

// NewEditorService creates the transaction editor. observer is told about edits to
// the open transaction so the local register does not wait for the change feed.
func NewEditorService(repo sale.Repository, history History, observer ChangeObserver, logger *slog.Logger) *EditorService {
	return &EditorService{
		repo:     repo,
		history:  history,
		observer: observer,
		logger:   logger.With("component", "editor"),
	}
}

func (s *EditorService) Get(ctx context.Context, id uuid.UUID) (*sale.Transaction, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *EditorService) Apply(ctx context.Context, id uuid.UUID, edits []sale.Edit) (*EditResult, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := sale.NewDraft(*t)
	if err := draft.Apply(edits...); err != nil {
		return nil, err
	}

	return s.Save(ctx, draft)
}

func (s *EditorService) Replace(ctx context.Context, id uuid.UUID, items []catalog.Item) (*EditResult, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	draft := sale.NewDraft(*t)
	if err := draft.ReplaceItems(items); err != nil {
		return nil, err
	}

	return s.Save(ctx, draft)
}

// Save writes only the items and total of draft, then rebuilds the daily sales
func (s *EditorService) Save(ctx context.Context, draft *sale.Draft) (*EditResult, error) {
	stored, err := s.repo.UpdateItems(ctx, draft.Transaction())
	if err != nil {
		s.logger.Error("Failed to save transaction edit", "transaction_id", draft.ID().String(), "error", err)
		return nil, err
	}
	if stored.IsCurrent && s.observer != nil {
		s.observer.Observe(sale.NewChangeEvent(shared.EventTypeUpdate, *stored, ""))
	}

	sales, err := s.history.Refresh(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction edited", "transaction_id", stored.ID.String(), "total", stored.Total)
	return &EditResult{Transaction: *stored, Sales: sales}, nil
}

func (s *EditorService) Delete(ctx context.Context, id uuid.UUID) (*sale.Aggregation, error) {
	t, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("Failed to delete transaction", "transaction_id", id.String(), "error", err)
		return nil, err
	}
	if t.IsCurrent && s.observer != nil {
		s.observer.Observe(sale.NewChangeEvent(shared.EventTypeDelete, *t, ""))
	}

	s.logger.Info("Transaction deleted", "transaction_id", id.String())
	return s.history.Refresh(ctx)
}
