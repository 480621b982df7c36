// Package auth_repo provides PostgreSQL storage for tenant users.
package auth_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"logistix/internal/core/apperror"
	"logistix/internal/core/id"
	"logistix/internal/domain/auth"
	"logistix/internal/infrastructure/storage/postgres"
)

var userColumns = postgres.ExtractDBColumns[auth.User]()

var _ auth.UserRepository = (*UserRepo)(nil)

// UserRepo implements auth.UserRepository.
type UserRepo struct {
	db postgres.QuerierProvider
}

// NewUserRepo creates a new user repository.
func NewUserRepo(db postgres.QuerierProvider) *UserRepo {
	return &UserRepo{db: db}
}

// Create creates a new user.
func (r *UserRepo) Create(ctx context.Context, user *auth.User) error {
	sql, args, err := postgres.Builder().
		Insert("users").
		SetMap(postgres.InsertMap(user, userColumns)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	if _, err := r.db.GetQuerier(ctx).Exec(ctx, sql, args...); err != nil {
		if postgres.IsUniqueViolation(err, "users_tenant_email_key") {
			return apperror.NewDuplicate("user", "email", user.Email)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByID retrieves user by ID.
func (r *UserRepo) GetByID(ctx context.Context, tenantID, userID string) (*auth.User, error) {
	if !id.IsValid(userID) {
		return nil, apperror.NewNotFound("user", userID)
	}
	return r.getOne(ctx, squirrel.Eq{"tenant_id": tenantID, "id": userID}, userID)
}

// GetByEmail retrieves user by email within a tenant.
func (r *UserRepo) GetByEmail(ctx context.Context, tenantID, email string) (*auth.User, error) {
	return r.getOne(ctx, squirrel.Eq{"tenant_id": tenantID, "email": auth.NormalizeEmail(email)}, email)
}

func (r *UserRepo) getOne(ctx context.Context, where squirrel.Eq, key string) (*auth.User, error) {
	sql, args, err := postgres.Builder().Select(userColumns...).From("users").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	var user auth.User
	if err := pgxscan.Get(ctx, r.db.GetQuerier(ctx), &user, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("user", key)
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &user, nil
}

// UpdateLoginState persists the login bookkeeping fields.
func (r *UserRepo) UpdateLoginState(ctx context.Context, user *auth.User) error {
	query := `
		UPDATE users
		SET last_login_at = $3, failed_login_attempts = $4, locked_until = $5
		WHERE tenant_id = $1 AND id = $2
	`
	_, err := r.db.GetQuerier(ctx).Exec(ctx, query,
		user.TenantID, user.ID, user.LastLoginAt, user.FailedLoginAttempts, user.LockedUntil)
	if err != nil {
		return fmt.Errorf("update login state: %w", err)
	}
	return nil
}

// Exists checks if an email is taken within a tenant.
func (r *UserRepo) Exists(ctx context.Context, tenantID, email string) (bool, error) {
	var exists bool
	err := r.db.GetQuerier(ctx).QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE tenant_id = $1 AND email = $2)`,
		tenantID, auth.NormalizeEmail(email),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check user exists: %w", err)
	}
	return exists, nil
}
