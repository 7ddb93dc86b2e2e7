package validation_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

type testBook struct {
	BookID string `json:"bookId" validate:"required"`
	Title  string `json:"title" validate:"required"`
}

type testRequest struct {
	Email    string     `json:"email" validate:"required,email"`
	Password string     `json:"password" validate:"required,max=16"`
	Books    []testBook `json:"savedBooks" validate:"dive"`
}

func TestValidator_Valid(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{
		Email:    "ada@example.com",
		Password: "secret1",
		Books:    []testBook{{BookID: "B1", Title: "T1"}},
	})
	assert.NoError(t, err)
}

func TestValidator_FieldDetails(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{
		Email:    "not-an-email",
		Password: "this password is far too long",
		Books:    []testBook{{BookID: "B1"}},
	})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)
	assert.Equal(t, map[string]string{
		"email":               "must be a valid email address",
		"password":            "must not exceed 16 characters",
		"savedBooks[0].title": "is required",
	}, domainErr.Details)
	assert.Equal(t, "email must be a valid email address", domainErr.Message)
}

func TestValidator_Required(t *testing.T) {
	v := validation.New()

	err := v.Validate(testRequest{Password: "secret1"})
	require.ErrorIs(t, err, domainerrors.ErrValidation)
	assert.Contains(t, err.Error(), "email is required")
}

type secretRequest struct {
	Password string `json:"password" validate:"required,maxbytes=8"`
}

func TestValidator_MaxBytesCountsBytes(t *testing.T) {
	v := validation.New()

	assert.NoError(t, v.Validate(secretRequest{Password: "éééé"}))

	// Five runes, ten bytes.
	err := v.Validate(secretRequest{Password: "ééééé"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"password": "must not exceed 8 bytes"}, domainErr.Details)
}
