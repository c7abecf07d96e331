package main

import (
	"fmt"

	"github.com/register-pos/internal/cli"
	"github.com/spf13/cobra"
)

func changeCmd() *cobra.Command {
	var total, received int64

	cmd := &cobra.Command{
		Use:   "change",
		Short: "Compute the change for a received amount",
		Long:  `Compute the change due when a customer hands over --received yen for a --total yen sale.`,
		RunE: func(c *cobra.Command, _ []string) error {
			if total < 0 {
				return fmt.Errorf("--total must not be negative")
			}
			if received < 0 {
				return fmt.Errorf("--received must not be negative")
			}
			return cli.RenderChange(c.OutOrStdout(), total, received)
		},
	}

	cmd.Flags().Int64Var(&total, "total", 0, "sale total in yen")
	cmd.Flags().Int64Var(&received, "received", 0, "amount handed over in yen")
	_ = cmd.MarkFlagRequired("total")
	_ = cmd.MarkFlagRequired("received")

	return cmd
}
