package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/domain/shared"
	"github.com/register-pos/internal/register/service"
)

const (
	actionAddItem   = "商品を追加"
	actionShowTotal = "合計を表示"
	actionQuit      = "終了"
)

var menu = []string{actionAddItem, actionShowTotal, actionQuit}

// Session runs the menu loop of one register over an Accumulator
type Session struct {
	accumulator service.Accumulator
	catalog     *catalog.Catalog
	prompter    *Prompter
	writer      io.Writer
	logger      *slog.Logger
}

func NewSession(accumulator service.Accumulator, cat *catalog.Catalog, prompter *Prompter, writer io.Writer, logger *slog.Logger) *Session {
	return &Session{
		accumulator: accumulator,
		catalog:     cat,
		prompter:    prompter,
		writer:      writer,
		logger:      logger,
	}
}

// Run loops until the cashier quits or input ends, then prints the final total
func (s *Session) Run(ctx context.Context) error {
	if _, err := s.accumulator.Load(ctx); err != nil {
		return fmt.Errorf("failed to load the open transaction: %w", err)
	}

	for {
		choice, err := s.prompter.Choose(ctx, "操作を選択してください：", menu)
		if errors.Is(err, ErrInputClosed) {
			break
		}
		if err != nil {
			return err
		}

		switch menu[choice] {
		case actionAddItem:
			if err := s.addItem(ctx); err != nil {
				if errors.Is(err, ErrInputClosed) {
					return s.finish(ctx)
				}
				return err
			}
		case actionShowTotal:
			if err := s.showTotal(ctx); err != nil {
				return err
			}
		case actionQuit:
			return s.finish(ctx)
		}
	}
	return s.finish(ctx)
}

func (s *Session) addItem(ctx context.Context) error {
	categories := s.catalog.Categories()
	idx, err := s.prompter.Choose(ctx, "カテゴリを選択してください：", categories)
	if err != nil {
		return err
	}

	sel := catalog.Selection{Category: categories[idx]}
	entry, _ := s.catalog.Entry(sel.Category)

	switch {
	case entry.Kind() == catalog.KindGroup:
		members := entry.Members()
		m, err := s.prompter.Choose(ctx, sel.Category+"を選択してください：", members)
		if err != nil {
			return err
		}
		sel.SubItem = members[m]
	case entry.CustomPrice():
		amount, err := s.prompter.Amount(ctx, "金額を入力してください")
		if err != nil {
			return err
		}
		sel.CustomPrice = amount
	}

	current, err := s.accumulator.AddItem(ctx, sel)
	if err != nil {
		if shared.IsValidation(err) {
			s.prompter.complain(err.Error())
			return nil
		}
		s.logger.Error("Failed to add item", "category", sel.Category, "error", err)
		s.prompter.complain("商品を追加できませんでした")
		return nil
	}

	added := current.Items[len(current.Items)-1]
	_, err = fmt.Fprintln(s.writer, FormatSuccess(fmt.Sprintf("%s: %d円", added.Name, added.Price)))
	return err
}

func (s *Session) showTotal(ctx context.Context) error {
	current, err := s.accumulator.Current(ctx)
	if err != nil {
		return err
	}
	return RenderTransaction(s.writer, current)
}

func (s *Session) finish(ctx context.Context) error {
	current, err := s.accumulator.Current(ctx)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(s.writer, "\n取引を終了します。"); err != nil {
		return err
	}
	_, err = fmt.Fprintln(s.writer, TotalStyle.Render(fmt.Sprintf("最終合計: %d円", current.Total)))
	return err
}

// RenderTransaction prints the items and total of t
func RenderTransaction(w io.Writer, t sale.Transaction) error {
	if _, err := fmt.Fprintln(w, "\n"+TitleStyle.Render("現在の取引内容：")); err != nil {
		return err
	}
	for _, item := range t.Items {
		if _, err := fmt.Fprintf(w, "%s: %d円\n", item.Name, item.Price); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w, TotalStyle.Render(fmt.Sprintf("合計: %d円", t.Total))+"\n")
	return err
}
