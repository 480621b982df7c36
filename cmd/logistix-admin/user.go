package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"logistix/internal/domain/auth"
	"logistix/internal/infrastructure/storage/postgres"
	"logistix/internal/infrastructure/storage/postgres/auth_repo"
)

func newUserCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage tenant users",
	}

	var in auth.CreateUserInput
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a login for a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			pool, err := opts.connect(cmd.Context())
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := auth.NewService(auth_repo.NewUserRepo(postgres.NewTxManager(pool)), nil, auth.DefaultServiceConfig())
			user, err := svc.CreateUser(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ User %s (%s) created with id %s\n", user.Email, user.Role, user.ID)
			return nil
		},
	}
	f := create.Flags()
	f.StringVar(&in.TenantID, "tenant", "", "Tenant ID (required)")
	f.StringVar(&in.Email, "email", "", "Login email (required)")
	f.StringVar(&in.Password, "password", "", "Initial password (required)")
	f.StringVar(&in.FullName, "name", "", "Full name")
	f.StringVar(&in.Role, "role", "viewer", "Role: admin, manager, warehouse, accountant, viewer")
	f.StringSliceVar(&in.WarehouseIDs, "warehouse", nil, "Warehouse IDs for warehouse staff (repeatable)")
	_ = create.MarkFlagRequired("tenant")
	_ = create.MarkFlagRequired("email")
	_ = create.MarkFlagRequired("password")

	cmd.AddCommand(create)
	return cmd
}
