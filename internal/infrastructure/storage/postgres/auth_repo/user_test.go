package auth_repo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"logistix/internal/core/apperror"
)

func TestUserColumns(t *testing.T) {
	assert.Equal(t, []string{
		"id", "tenant_id", "email", "password_hash", "full_name", "role", "warehouse_ids",
		"is_active", "last_login_at", "failed_login_attempts", "locked_until", "created_at",
	}, userColumns)
}

func TestGetByID_MalformedID(t *testing.T) {
	repo := NewUserRepo(nil)

	_, err := repo.GetByID(context.Background(), "t1", "42")

	assert.True(t, apperror.IsNotFound(err))
}
