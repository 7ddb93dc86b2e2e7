package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := Authentication("incorrect credentials")

	assert.True(t, Is(err, ErrUnauthenticated))
	assert.False(t, Is(err, ErrValidation))
}

func TestError_IsThroughWrapping(t *testing.T) {
	err := fmt.Errorf("login: %w", Authentication("incorrect credentials"))

	assert.True(t, Is(err, ErrUnauthenticated))

	var domainErr *Error
	require.True(t, As(err, &domainErr))
	assert.Equal(t, "incorrect credentials", domainErr.Message)
}

func TestError_MessageIncludesCause(t *testing.T) {
	cause := fmt.Errorf("disk full")
	err := Wrap(cause, CodeInternal, "save user")

	assert.Equal(t, "save user: disk full", err.Error())
	assert.ErrorIs(t, err, cause)
}

func TestError_Extensions(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want map[string]any
	}{
		{
			name: "code only",
			err:  Authentication("not logged in"),
			want: map[string]any{"code": "UNAUTHENTICATED"},
		},
		{
			name: "with details",
			err:  ValidationWithDetails("validation failed", map[string]string{"email": "is required"}),
			want: map[string]any{
				"code":    "BAD_USER_INPUT",
				"details": map[string]string{"email": "is required"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Extensions())
		})
	}
}

func TestError_WithDetailsKeepsCode(t *testing.T) {
	err := ErrValidation.WithDetails(map[string]string{"title": "is required"})

	assert.Equal(t, CodeValidation, err.Code)
	assert.Equal(t, map[string]string{"title": "is required"}, err.Details)
	assert.Nil(t, ErrValidation.Details)
}
