package numbering_repo

import (
	"context"
	"encoding/json"
	"fmt"

	corenum "logistix/internal/core/numbering"
	"logistix/internal/infrastructure/storage/postgres"
)

var _ corenum.TemplateStore = (*TemplateRepo)(nil)

// TemplateRepo stores templates as JSONB in numbering_templates.
// A trigger on the table sends NOTIFY numbering_template_changed with
// payload "<tenant_id>:<kind>" after every write.
type TemplateRepo struct {
	db postgres.QuerierProvider
}

// NewTemplateRepo creates a template repository.
func NewTemplateRepo(db postgres.QuerierProvider) *TemplateRepo {
	return &TemplateRepo{db: db}
}

// GetTemplate loads the stored template or returns corenum.ErrConfigurationMissing.
func (r *TemplateRepo) GetTemplate(ctx context.Context, tenantID string, kind corenum.Kind) (corenum.Template, error) {
	const query = `SELECT template FROM numbering_templates WHERE tenant_id = $1 AND kind = $2`

	var raw []byte
	err := r.db.GetQuerier(ctx).QueryRow(ctx, query, tenantID, string(kind)).Scan(&raw)
	if postgres.IsNoRows(err) {
		return corenum.Template{}, corenum.ErrConfigurationMissing
	}
	if err != nil {
		return corenum.Template{}, fmt.Errorf("query %s template: %w", kind, err)
	}

	var t corenum.Template
	if err := json.Unmarshal(raw, &t); err != nil {
		return corenum.Template{}, fmt.Errorf("decode %s template: %w", kind, err)
	}
	return t, nil
}

// SaveTemplate upserts the template for (tenantID, kind).
func (r *TemplateRepo) SaveTemplate(ctx context.Context, tenantID string, kind corenum.Kind, t corenum.Template) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("encode %s template: %w", kind, err)
	}
	const query = `
		INSERT INTO numbering_templates (tenant_id, kind, template, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (tenant_id, kind) DO UPDATE
		SET template = EXCLUDED.template, updated_at = NOW()
	`
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, query, tenantID, string(kind), raw); err != nil {
		return fmt.Errorf("save %s template: %w", kind, err)
	}
	return nil
}

// ListTenantTemplates returns every stored template of a tenant keyed by kind.
func (r *TemplateRepo) ListTenantTemplates(ctx context.Context, tenantID string) (map[corenum.Kind]corenum.Template, error) {
	rows, err := r.db.GetQuerier(ctx).Query(ctx,
		`SELECT kind, template FROM numbering_templates WHERE tenant_id = $1`, tenantID)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	defer rows.Close()

	out := make(map[corenum.Kind]corenum.Template)
	for rows.Next() {
		var (
			kind string
			raw  []byte
		)
		if err := rows.Scan(&kind, &raw); err != nil {
			return nil, fmt.Errorf("scan template: %w", err)
		}
		var t corenum.Template
		if err := json.Unmarshal(raw, &t); err != nil {
			return nil, fmt.Errorf("decode %s template: %w", kind, err)
		}
		out[corenum.Kind(kind)] = t
	}
	return out, rows.Err()
}
