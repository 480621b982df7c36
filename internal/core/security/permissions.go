// Package security provides role resolution and data-visibility rules.
package security

import "slices"

// Permission is a "resource:action" string checked by the HTTP layer.
type Permission string

const (
	PermTripRead       Permission = "trip:read"
	PermTripWrite      Permission = "trip:write"
	PermShipmentRead   Permission = "shipment:read"
	PermShipmentWrite  Permission = "shipment:write"
	PermInvoiceRead    Permission = "invoice:read"
	PermInvoiceCreate  Permission = "invoice:create"
	PermInvoiceVoid    Permission = "invoice:void"
	PermNumberingRead  Permission = "numbering:read"
	PermNumberingAdmin Permission = "numbering:manage"
)

// Role is assigned to every user of a tenant.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleManager    Role = "manager"
	RoleWarehouse  Role = "warehouse"
	RoleAccountant Role = "accountant"
	RoleViewer     Role = "viewer"
)

var rolePermissions = map[Role][]Permission{
	RoleManager: {
		PermTripRead, PermTripWrite,
		PermShipmentRead, PermShipmentWrite,
		PermInvoiceRead, PermInvoiceCreate, PermInvoiceVoid,
		PermNumberingRead,
	},
	RoleWarehouse: {
		PermTripRead, PermTripWrite,
		PermShipmentRead, PermShipmentWrite,
	},
	RoleAccountant: {
		PermTripRead, PermShipmentRead,
		PermInvoiceRead, PermInvoiceCreate, PermInvoiceVoid,
		PermNumberingRead,
	},
	RoleViewer: {
		PermTripRead, PermShipmentRead, PermInvoiceRead,
	},
}

// ParseRole validates a role name.
func ParseRole(s string) (Role, bool) {
	r := Role(s)
	if r == RoleAdmin {
		return r, true
	}
	_, ok := rolePermissions[r]
	return r, ok
}

// PermissionsForRole returns the permissions granted to role.
// Admin is not listed: it passes every check.
func PermissionsForRole(role Role) []Permission {
	return slices.Clone(rolePermissions[role])
}

// HasPermission reports whether role grants perm.
func HasPermission(role Role, perm Permission) bool {
	if role == RoleAdmin {
		return true
	}
	return slices.Contains(rolePermissions[role], perm)
}

// IsWarehouseRestricted reports whether the role only sees its own warehouses.
func IsWarehouseRestricted(role Role) bool {
	return role == RoleWarehouse
}
