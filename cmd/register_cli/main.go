package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/register-pos/internal/config"
	"github.com/register-pos/internal/logger"
	"github.com/spf13/cobra"
)

var (
	logLevel string
	rootCmd  = &cobra.Command{
		Use:   "register",
		Short: "Point-of-sale register for the front desk",
		Long: `register keeps the open transaction of a shop counter: pick items from the
price list, show the running total and finish the sale.

Running it without a subcommand starts an interactive session.`,
		SilenceUsage: true,
		RunE:         runSession,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "error", "log level written to stderr (debug, info, warn, error)")

	rootCmd.AddCommand(sessionCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(changeCmd())
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	cancel()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newLogger writes JSON logs to stderr so they stay off the prompts
func newLogger() (*slog.Logger, error) {
	cfg, err := config.LoadConfig("register_cli")
	if err != nil {
		return nil, err
	}
	cfg.Logging.Level = logLevel
	return logger.NewLoggerWithWriter(cfg, os.Stderr), nil
}
