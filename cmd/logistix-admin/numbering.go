package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"logistix/internal/core/id"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/core/tenant"
	"logistix/internal/domain/audit"
	"logistix/internal/domain/numbering"
	"logistix/internal/domain/settings"
	"logistix/internal/infrastructure/storage/postgres"
	"logistix/internal/infrastructure/storage/postgres/logistics_repo"
	"logistix/internal/infrastructure/storage/postgres/numbering_repo"
)

func newNumberingCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "numbering",
		Short: "Inspect templates and manage counters",
	}
	cmd.AddCommand(
		newPreviewCmd(time.Now),
		newTemplatesCmd(opts),
		newSetCounterCmd(opts),
		newNextCmd(opts),
	)
	return cmd
}

func newPreviewCmd(now func() time.Time) *cobra.Command {
	var raw, kind string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render a template without touching counters",
		Example: `  logistix-admin numbering preview --kind invoice \
    --template '{"segments":[{"type":"static","value":"INV"},{"type":"year","digits":4},{"type":"trip_seq","digits":3}],"separator":"-"}'`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			var t corenum.Template
			if err := json.Unmarshal([]byte(raw), &t); err != nil {
				return fmt.Errorf("parse template: %w", err)
			}
			if kind != "" {
				k, err := corenum.ParseKind(kind)
				if err != nil {
					return err
				}
				if err := t.ValidateForSave(k); err != nil {
					return err
				}
			}
			out, err := corenum.Preview(t, now())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		},
	}
	cmd.Flags().StringVar(&raw, "template", "", "Template JSON (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "Also apply the save-time rules of this kind")
	_ = cmd.MarkFlagRequired("template")
	return cmd
}

func newTemplatesCmd(opts *options) *cobra.Command {
	var tenantID string

	cmd := &cobra.Command{
		Use:   "templates",
		Short: "Show the effective template of every kind for a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := requireTenant(cmd, pool, tenantID); err != nil {
				return err
			}

			stored, err := numbering_repo.NewTemplateRepo(postgres.NewTxManager(pool)).ListTenantTemplates(ctx, tenantID)
			if err != nil {
				return err
			}
			return printTemplates(cmd, stored, time.Now())
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID (required)")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}

// printTemplates lists every kind, falling back to the built-in default
// for kinds the tenant never configured.
func printTemplates(cmd *cobra.Command, stored map[corenum.Kind]corenum.Template, now time.Time) error {
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tSOURCE\tEXAMPLE\tTEMPLATE")
	for _, k := range []corenum.Kind{corenum.KindInvoice, corenum.KindTrip} {
		t, ok := stored[k]
		source := "stored"
		if !ok {
			t, source = corenum.DefaultTemplate(k), "default"
		}
		example, err := corenum.Preview(t, now)
		if err != nil {
			example = "invalid: " + err.Error()
		}
		raw, err := json.Marshal(t)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", k, source, example, raw)
	}
	return w.Flush()
}

// requireTenant checks that tenantID names an existing tenant.
func requireTenant(cmd *cobra.Command, pool *postgres.Pool, tenantID string) error {
	if !id.IsValid(tenantID) {
		return fmt.Errorf("tenant must be a UUID, got %q", tenantID)
	}
	if _, err := tenant.NewPostgresRegistry(pool).GetByID(cmd.Context(), tenantID); err != nil {
		return fmt.Errorf("tenant %s: %w", tenantID, err)
	}
	return nil
}

func newSetCounterCmd(opts *options) *cobra.Command {
	var tenantID, kind string
	var value int64

	cmd := &cobra.Command{
		Use:   "set-counter",
		Short: "Set a tenant's global counter, e.g. when migrating from another system",
		Long: `Set the GlobalSeq counter of a tenant and kind. The next generated
number uses value+1. Lowering a counter can produce duplicate numbers.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := corenum.ParseKind(kind)
			if err != nil {
				return err
			}
			if value < 0 {
				return fmt.Errorf("value must not be negative")
			}

			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := requireTenant(cmd, pool, tenantID); err != nil {
				return err
			}

			txm := postgres.NewTxManager(pool)
			counters, release, err := opts.counterStore(ctx, txm)
			if err != nil {
				return err
			}
			defer release()

			key := k.CounterKey(tenantID)
			previous, err := counters.Get(ctx, key)
			if err != nil {
				return err
			}
			if err := counters.Set(ctx, key, value); err != nil {
				return err
			}

			if auditRepo, err := postgres.NewAuditRepo(txm); err == nil {
				audit.Record(ctx, auditRepo, audit.Entry{
					TenantID:   tenantID,
					EntityType: "numbering_counter",
					EntityID:   string(k),
					Action:     audit.ActionCounterSet,
					ActorID:    "logistix-admin",
					Changes:    map[string]any{"from": previous, "to": value, "backend": opts.counterBackend},
				})
			}

			fmt.Fprintf(cmd.OutOrStdout(), "✓ %s counter: %d -> %d (next number uses %d)\n", key, previous, value, value+1)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "invoice or trip (required)")
	cmd.Flags().Int64Var(&value, "value", 0, "Counter value (required)")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}

func newNextCmd(opts *options) *cobra.Command {
	var tenantID, kind, tripID string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Issue the next number of a tenant and kind",
		RunE: func(cmd *cobra.Command, _ []string) error {
			k, err := corenum.ParseKind(kind)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := opts.connect(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()
			if err := requireTenant(cmd, pool, tenantID); err != nil {
				return err
			}

			txm := postgres.NewTxManager(pool)
			counters, release, err := opts.counterStore(ctx, txm)
			if err != nil {
				return err
			}
			defer release()

			templates := settings.NewService(numbering_repo.NewTemplateRepo(txm))
			generator := numbering.NewService(templates, counters, logistics_repo.NewTripRepo(txm))

			number, err := generator.Generate(ctx, corenum.Request{TenantID: tenantID, Kind: k, ScopeID: tripID})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), number)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID (required)")
	cmd.Flags().StringVar(&kind, "kind", "", "invoice or trip (required)")
	cmd.Flags().StringVar(&tripID, "trip", "", "Trip ID, required when the template has a trip_seq segment")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("kind")
	return cmd
}
