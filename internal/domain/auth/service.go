package auth

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"logistix/internal/core/apperror"
	"logistix/internal/core/security"
	"logistix/pkg/logger"
)

// ServiceConfig holds auth service configuration.
type ServiceConfig struct {
	MaxLoginAttempts  int
	LockDuration      time.Duration
	PasswordMinLength int
	BcryptCost        int
}

// DefaultServiceConfig returns default configuration.
func DefaultServiceConfig() ServiceConfig {
	return ServiceConfig{
		MaxLoginAttempts:  5,
		LockDuration:      15 * time.Minute,
		PasswordMinLength: 8,
		BcryptCost:        bcrypt.DefaultCost,
	}
}

// Service provides login and user provisioning.
type Service struct {
	users  UserRepository
	jwt    *JWTService
	config ServiceConfig
	now    func() time.Time
}

// NewService creates a new auth service.
func NewService(users UserRepository, jwtService *JWTService, config ServiceConfig) *Service {
	return &Service{users: users, jwt: jwtService, config: config, now: time.Now}
}

// Login verifies credentials of a tenant user and issues a session token.
func (s *Service) Login(ctx context.Context, tenantID string, creds Credentials) (*Session, error) {
	if tenantID == "" {
		return nil, apperror.NewValidation("tenant is required")
	}

	user, err := s.users.GetByEmail(ctx, tenantID, NormalizeEmail(creds.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewUnauthorized("invalid credentials")
		}
		return nil, fmt.Errorf("load user: %w", err)
	}

	now := s.now()
	if err := user.CanLogin(now); err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)); err != nil {
		user.RecordFailedLogin(now, s.config.MaxLoginAttempts, s.config.LockDuration)
		if uerr := s.users.UpdateLoginState(ctx, user); uerr != nil {
			logger.Warn(ctx, "failed to record failed login", "user_id", user.ID, "error", uerr)
		}
		return nil, apperror.NewUnauthorized("invalid credentials")
	}

	token, expiresAt, err := s.jwt.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	user.RecordSuccessfulLogin(now)
	if err := s.users.UpdateLoginState(ctx, user); err != nil {
		logger.Warn(ctx, "failed to record login", "user_id", user.ID, "error", err)
	}

	logger.Info(ctx, "user logged in", "user_id", user.ID, "role", user.Role)

	return &Session{
		AccessToken: token,
		ExpiresAt:   expiresAt,
		TokenType:   "Bearer",
		User:        user,
	}, nil
}

// GetUser returns the user behind an authenticated request.
func (s *Service) GetUser(ctx context.Context, tenantID, userID string) (*User, error) {
	return s.users.GetByID(ctx, tenantID, userID)
}

// CreateUser provisions a login with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, in CreateUserInput) (*User, error) {
	if in.TenantID == "" {
		return nil, apperror.NewValidation("tenant is required")
	}
	email := NormalizeEmail(in.Email)
	if email == "" {
		return nil, apperror.NewValidation("email is required").WithDetail("field", "email")
	}
	if len(in.Password) < s.config.PasswordMinLength {
		return nil, apperror.NewValidation(
			fmt.Sprintf("password must be at least %d characters", s.config.PasswordMinLength),
		).WithDetail("field", "password")
	}
	role, ok := security.ParseRole(in.Role)
	if !ok {
		return nil, apperror.NewValidation(fmt.Sprintf("unknown role %q", in.Role)).WithDetail("field", "role")
	}
	if security.IsWarehouseRestricted(role) && len(in.WarehouseIDs) == 0 {
		return nil, apperror.NewValidation("warehouse users need at least one warehouse").WithDetail("field", "warehouse_ids")
	}

	exists, err := s.users.Exists(ctx, in.TenantID, email)
	if err != nil {
		return nil, fmt.Errorf("check email exists: %w", err)
	}
	if exists {
		return nil, apperror.NewDuplicate("user", "email", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := NewUser(in.TenantID, email, string(hash), role)
	user.FullName = in.FullName
	if len(in.WarehouseIDs) > 0 {
		user.WarehouseIDs = in.WarehouseIDs
	}

	if err := s.users.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	logger.Info(ctx, "user created", "user_id", user.ID, "tenant_id", user.TenantID, "role", user.Role)
	return user, nil
}
