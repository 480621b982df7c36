package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"logistix/internal/infrastructure/storage/postgres"
)

func newSchemaCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Reference schema",
	}

	var printOnly bool
	apply := &cobra.Command{
		Use:   "apply",
		Short: "Create missing tables, indexes and triggers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if printOnly {
				_, err := fmt.Fprint(cmd.OutOrStdout(), postgres.Schema)
				return err
			}

			pool, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.ApplySchema(cmd.Context(), pool); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "✓ Schema applied")
			return nil
		},
	}
	apply.Flags().BoolVar(&printOnly, "print", false, "Print the DDL instead of executing it")

	cmd.AddCommand(apply)
	return cmd
}
