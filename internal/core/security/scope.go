package security

import (
	"context"
	"fmt"
	"slices"

	"logistix/internal/core/apperror"
	appctx "logistix/internal/core/context"
)

// AccessScope defines the boundaries of data visibility for current request.
type AccessScope struct {
	TenantID string
	UserID   string
	Role     Role

	// WarehouseIDs limits warehouse staff to specific warehouses.
	// Only consulted when the role is warehouse-restricted.
	WarehouseIDs []string
}

// NewAccessScope creates AccessScope from the authenticated user in context.
// Without a user the scope is empty and grants nothing.
func NewAccessScope(ctx context.Context) *AccessScope {
	user := appctx.GetUser(ctx)
	if user == nil {
		return &AccessScope{Role: RoleViewer, WarehouseIDs: []string{}}
	}
	role, ok := ParseRole(user.Role)
	if !ok {
		role = RoleViewer
	}
	return &AccessScope{
		TenantID:     user.TenantID,
		UserID:       user.UserID,
		Role:         role,
		WarehouseIDs: user.WarehouseIDs,
	}
}

// IsUnrestricted reports whether the scope sees every warehouse.
func (s *AccessScope) IsUnrestricted() bool {
	return s.UserID != "" && !IsWarehouseRestricted(s.Role)
}

// CanAccessWarehouse checks if user can see records of a warehouse.
func (s *AccessScope) CanAccessWarehouse(warehouseID string) bool {
	if s.IsUnrestricted() {
		return true
	}
	return slices.Contains(s.WarehouseIDs, warehouseID)
}

// RequireWarehouse returns a forbidden error when the warehouse is outside the scope.
func (s *AccessScope) RequireWarehouse(warehouseID string) error {
	if !s.CanAccessWarehouse(warehouseID) {
		return apperror.NewForbidden(
			fmt.Sprintf("no access to warehouse %s", warehouseID),
		).WithDetail("warehouse_id", warehouseID)
	}
	return nil
}

// FilterWarehouseIDs returns intersection of requested and allowed warehouse IDs.
// A nil result with unrestricted scope means "no filter"; an empty non-nil
// result means "nothing visible".
func (s *AccessScope) FilterWarehouseIDs(requested []string) []string {
	if s.IsUnrestricted() {
		return requested
	}

	if len(requested) == 0 {
		return append([]string{}, s.WarehouseIDs...)
	}

	result := []string{}
	for _, id := range requested {
		if slices.Contains(s.WarehouseIDs, id) {
			result = append(result, id)
		}
	}
	return result
}

// --- Context-based scope access ---

type scopeKey struct{}

// WithScope adds AccessScope to context.
func WithScope(ctx context.Context, scope *AccessScope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// GetScope returns AccessScope from context.
func GetScope(ctx context.Context) *AccessScope {
	if v, ok := ctx.Value(scopeKey{}).(*AccessScope); ok {
		return v
	}
	return NewAccessScope(ctx)
}
