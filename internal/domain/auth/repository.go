package auth

import "context"

// UserRepository defines user storage operations.
// All lookups are scoped to one tenant.
type UserRepository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, tenantID, userID string) (*User, error)
	GetByEmail(ctx context.Context, tenantID, email string) (*User, error)
	// UpdateLoginState persists failed attempts, lock and last login.
	UpdateLoginState(ctx context.Context, user *User) error
	Exists(ctx context.Context, tenantID, email string) (bool, error)
}
