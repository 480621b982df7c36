package dto

import (
	"time"

	"logistix/internal/domain/auth"
)

// LoginRequest for user login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// ToCredentials converts to domain credentials.
func (r *LoginRequest) ToCredentials() auth.Credentials {
	return auth.Credentials{
		Email:    r.Email,
		Password: r.Password,
	}
}

// UserResponse is the public view of a user.
type UserResponse struct {
	ID           string     `json:"id"`
	TenantID     string     `json:"tenantId"`
	Email        string     `json:"email"`
	FullName     string     `json:"fullName,omitempty"`
	Role         string     `json:"role"`
	Permissions  []string   `json:"permissions"`
	WarehouseIDs []string   `json:"warehouseIds,omitempty"`
	LastLoginAt  *time.Time `json:"lastLoginAt,omitempty"`
}

// FromUser creates UserResponse from a domain user.
func FromUser(u *auth.User, permissions []string) UserResponse {
	if permissions == nil {
		permissions = []string{}
	}
	return UserResponse{
		ID:           u.ID,
		TenantID:     u.TenantID,
		Email:        u.Email,
		FullName:     u.FullName,
		Role:         u.Role,
		Permissions:  permissions,
		WarehouseIDs: u.WarehouseIDs,
		LastLoginAt:  u.LastLoginAt,
	}
}

// LoginResponse is returned by POST /auth/login.
type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	TokenType   string       `json:"tokenType"`
	ExpiresAt   time.Time    `json:"expiresAt"`
	User        UserResponse `json:"user"`
}
