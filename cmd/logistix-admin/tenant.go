package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"logistix/internal/core/tenant"
)

func newTenantCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tenant",
		Short: "Manage tenants",
	}
	cmd.AddCommand(
		newTenantCreateCmd(opts),
		newTenantListCmd(opts),
		newTenantStatusCmd(opts, "suspend", tenant.StatusSuspended),
		newTenantStatusCmd(opts, "activate", tenant.StatusActive),
	)
	return cmd
}

func newTenantCreateCmd(opts *options) *cobra.Command {
	var in tenant.CreateTenantInput

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := in.Validate(); err != nil {
				return err
			}

			pool, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			t := &tenant.Tenant{
				Slug:        in.Slug,
				DisplayName: strings.TrimSpace(in.DisplayName),
				Status:      tenant.StatusActive,
			}
			if err := tenant.NewPostgresRegistry(pool).Create(cmd.Context(), t); err != nil {
				return fmt.Errorf("register tenant: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "✓ Tenant '%s' created\n", t.Slug)
			fmt.Fprintf(out, "  Tenant ID: %s\n", t.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Slug, "slug", "", "URL-safe tenant identifier (required)")
	cmd.Flags().StringVar(&in.DisplayName, "name", "", "Display name (required)")
	_ = cmd.MarkFlagRequired("slug")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newTenantListCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all tenants",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			tenants, err := tenant.NewPostgresRegistry(pool).ListAll(cmd.Context())
			if err != nil {
				return err
			}
			if len(tenants) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No tenants found")
				return nil
			}
			return printTenants(cmd, tenants)
		},
	}
}

func printTenants(cmd *cobra.Command, tenants []*tenant.Tenant) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TENANT_ID\tSLUG\tNAME\tSTATUS\tCREATED")
	for _, t := range tenants {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", t.ID, t.Slug, t.DisplayName, t.Status, t.CreatedAt.Format("2006-01-02"))
	}
	return w.Flush()
}

func newTenantStatusCmd(opts *options, verb string, status tenant.Status) *cobra.Command {
	return &cobra.Command{
		Use:   verb + " <tenant-id>",
		Short: strings.ToUpper(verb[:1]) + verb[1:] + " a tenant",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pool, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := tenant.NewPostgresRegistry(pool).UpdateStatusByID(cmd.Context(), args[0], status); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Tenant '%s' is now %s\n", args[0], status)
			return nil
		},
	}
}
