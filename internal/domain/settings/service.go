// Package settings manages per-tenant numbering templates.
//
// It is the single place where a missing template is replaced by the
// built-in default for its kind; callers never see ErrConfigurationMissing.
package settings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"logistix/internal/core/apperror"
	corenum "logistix/internal/core/numbering"
	"logistix/internal/domain/audit"
	"logistix/pkg/logger"
)

// TemplateView is a template together with where it came from.
type TemplateView struct {
	Kind      corenum.Kind     `json:"kind"`
	Template  corenum.Template `json:"template"`
	IsDefault bool             `json:"isDefault"`
	Example   string           `json:"example"`
}

// Service resolves and stores numbering templates.
type Service struct {
	store corenum.TemplateStore
	audit audit.Recorder
	now   func() time.Time
}

// NewService creates a settings service over store.
func NewService(store corenum.TemplateStore) *Service {
	return &Service{store: store, now: time.Now}
}

// WithClock overrides the clock used for previews.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithAudit records template changes.
func (s *Service) WithAudit(r audit.Recorder) *Service {
	s.audit = r
	return s
}

// Resolve returns the active template for tenantID and kind.
func (s *Service) Resolve(ctx context.Context, tenantID string, kind corenum.Kind) (corenum.Template, error) {
	t, _, err := s.resolve(ctx, tenantID, kind)
	return t, err
}

func (s *Service) resolve(ctx context.Context, tenantID string, kind corenum.Kind) (corenum.Template, bool, error) {
	t, err := s.store.GetTemplate(ctx, tenantID, kind)
	if errors.Is(err, corenum.ErrConfigurationMissing) {
		return corenum.DefaultTemplate(kind), true, nil
	}
	if err != nil {
		return corenum.Template{}, false, fmt.Errorf("load %s numbering template: %w", kind, err)
	}
	return t, false, nil
}

// GetTemplate returns the active template with a preview of what it produces.
func (s *Service) GetTemplate(ctx context.Context, tenantID string, kind corenum.Kind) (*TemplateView, error) {
	t, isDefault, err := s.resolve(ctx, tenantID, kind)
	if err != nil {
		return nil, err
	}
	view := &TemplateView{Kind: kind, Template: t, IsDefault: isDefault}
	// A stored template that no longer validates is still shown so it can be fixed.
	if example, err := corenum.Preview(t, s.now()); err == nil {
		view.Example = example
	}
	return view, nil
}

// SaveTemplate validates t with the save-time rules and persists it.
func (s *Service) SaveTemplate(ctx context.Context, tenantID string, kind corenum.Kind, t corenum.Template) (*TemplateView, error) {
	if err := t.ValidateForSave(kind); err != nil {
		return nil, apperror.NewInvalidTemplate(err).WithDetail("kind", string(kind))
	}
	if err := s.store.SaveTemplate(ctx, tenantID, kind, t); err != nil {
		return nil, fmt.Errorf("save %s numbering template: %w", kind, err)
	}

	logger.Info(ctx, "numbering template saved", "kind", kind, "segments", len(t.Segments))
	audit.Record(ctx, s.audit, audit.Entry{
		TenantID:   tenantID,
		EntityType: "numbering_template",
		EntityID:   string(kind),
		Action:     audit.ActionTemplateSaved,
		Changes:    map[string]any{"template": t},
	})

	example, _ := corenum.Preview(t, s.now())
	return &TemplateView{Kind: kind, Template: t, Example: example}, nil
}

// Preview renders t without touching counters.
func (s *Service) Preview(t corenum.Template) (string, error) {
	out, err := corenum.Preview(t, s.now())
	if err != nil {
		return "", apperror.NewInvalidTemplate(err)
	}
	return out, nil
}
