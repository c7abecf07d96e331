package main

import (
	"os"
	"time"

	"github.com/register-pos/internal/cli"
	"github.com/register-pos/internal/data/memory"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/register-pos/internal/domain/sale"
	"github.com/register-pos/internal/register/service"
	"github.com/spf13/cobra"
)

func sessionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "session",
		Short: "Start an interactive register session",
		Long:  `Add items from the price list, show the running total and quit with the final total.`,
		RunE:  runSession,
	}
}

func runSession(cmd *cobra.Command, _ []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}

	cat := catalog.Default()
	store := memory.NewTransactionStore()
	ledger := service.NewLedgerService(memory.NewBalanceStore(), memory.NewMovementJournal(), log)
	history := service.NewHistoryService(store, nil, sale.NewDayPolicy(time.Local, sale.DefaultDateLayout), time.Minute, log)
	accumulator := service.NewAccumulatorService(cat, store, ledger, history, log, "cli")

	prompter := cli.NewPrompter(os.Stdin, os.Stdout)
	return cli.NewSession(accumulator, cat, prompter, os.Stdout, log).Run(cmd.Context())
}
