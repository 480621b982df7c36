package domain

import (
	"context"
	"errors"

	"logistix/internal/core/apperror"
	"logistix/internal/core/tenant"
)

// ErrNotFound is returned by repositories when a tenant-scoped row is absent.
var ErrNotFound = errors.New("record not found")

// NormalizeValidationErr keeps structured AppErrors and wraps plain ones as validation errors.
func NormalizeValidationErr(err error) error {
	if err == nil {
		return nil
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewValidation(err.Error())
}

// NormalizeGetErr maps repository lookups onto API errors for entity.
func NormalizeGetErr(err error, entity string, id any) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || apperror.IsNotFound(err) {
		return apperror.NewNotFound(entity, id)
	}
	if apperror.IsAppError(err) {
		return err
	}
	return apperror.NewInternal(err)
}

// RequireTenantID returns the tenant resolved for the request.
func RequireTenantID(ctx context.Context) (string, error) {
	tenantID := tenant.GetTenantID(ctx)
	if tenantID == "" {
		return "", apperror.NewUnauthorized("tenant is not resolved for this request")
	}
	return tenantID, nil
}
