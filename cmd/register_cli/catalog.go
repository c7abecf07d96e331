package main

import (
	"github.com/register-pos/internal/cli"
	"github.com/register-pos/internal/domain/catalog"
	"github.com/spf13/cobra"
)

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the price list",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cli.RenderCatalog(cmd.OutOrStdout(), catalog.Default())
		},
	}
}
