package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("connection refused")
	err := fmt.Errorf("generate: %w", NewStorageUnavailable(cause))

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, http.StatusServiceUnavailable, GetHTTPStatus(err))
	assert.True(t, IsCode(err, CodeStorageUnavailable))
}

func TestAppError_Statuses(t *testing.T) {
	tests := []struct {
		err  *AppError
		code string
		want int
	}{
		{NewMissingScope(nil), CodeMissingScope, http.StatusUnprocessableEntity},
		{NewInvalidTemplate(errors.New("bad")), CodeInvalidTemplate, http.StatusBadRequest},
		{NewNotFound("trip", "t1"), CodeNotFound, http.StatusNotFound},
		{NewDuplicate("invoice", "number", "INV-1"), CodeDuplicate, http.StatusConflict},
		{NewInvalidTransition("trip", "delivered", "planned"), CodeInvalidTransition, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.code, tt.err.Code)
		assert.Equal(t, tt.want, tt.err.HTTPStatus)
	}
}

func TestGetHTTPStatus_PlainError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus(errors.New("boom")))
	assert.False(t, IsNotFound(errors.New("boom")))
	assert.True(t, IsNotFound(NewNotFound("trip", 1).WithDetail("tenant_id", "t")))
}
