package service

import (
	"context"
	"strings"
	"testing"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthService_Register_Success(t *testing.T) {
	env := setupServices(t)

	resp, err := env.auth.Register(context.Background(), RegisterRequest{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "password12345",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.True(t, strings.HasPrefix(resp.User.ID, "user"))
	assert.Equal(t, "ada", resp.User.Username)
	assert.Equal(t, "ada@example.com", resp.User.Email)
	assert.Empty(t, resp.User.PasswordHash, "response must not carry the hash")
	assert.NotNil(t, resp.User.SavedBooks)
	assert.Equal(t, 0, resp.User.BookCount())

	claims, err := env.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.Equal(t, "ada@example.com", claims.Email)

	stored, err := env.store.GetUser(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "password12345", stored.PasswordHash)
	assert.True(t, strings.HasPrefix(stored.PasswordHash, "$argon2id$"))
}

func TestAuthService_Register_InitialBooksDeduplicated(t *testing.T) {
	env := setupServices(t)

	resp, err := env.auth.Register(context.Background(), RegisterRequest{
		Username: "ada",
		Email:    "ada@example.com",
		Password: "password12345",
		SavedBooks: []BookRequest{
			{BookID: "b1", Title: "First"},
			{BookID: "b2", Title: "Other"},
			{BookID: "b1", Title: "Duplicate"},
		},
	})
	require.NoError(t, err)

	require.Equal(t, 2, resp.User.BookCount())
	assert.Equal(t, "First", resp.User.SavedBooks[0].Title)
	assert.Equal(t, "b2", resp.User.SavedBooks[1].BookID)
}

func TestAuthService_Register_Validation(t *testing.T) {
	tests := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{
			name:  "missing username",
			req:   RegisterRequest{Email: "ada@example.com", Password: "pw"},
			field: "username",
		},
		{
			name:  "invalid email",
			req:   RegisterRequest{Username: "ada", Email: "not-an-email", Password: "pw"},
			field: "email",
		},
		{
			name:  "missing password",
			req:   RegisterRequest{Username: "ada", Email: "ada@example.com"},
			field: "password",
		},
		{
			name: "initial book without id",
			req: RegisterRequest{
				Username:   "ada",
				Email:      "ada@example.com",
				Password:   "pw",
				SavedBooks: []BookRequest{{Title: "No ID"}},
			},
			field: "savedBooks[0].bookId",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := setupServices(t)

			_, err := env.auth.Register(context.Background(), tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, domainerrors.ErrValidation)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Contains(t, domainErr.Details, tt.field)
		})
	}
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "pw1"})
	require.NoError(t, err)

	_, err = env.auth.Register(ctx, RegisterRequest{Username: "ada2", Email: "ADA@example.com", Password: "pw2"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"email": "is already in use"}, domainErr.Details)
}

func TestAuthService_Login_Success(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	registered, err := env.auth.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "password12345"})
	require.NoError(t, err)

	resp, err := env.auth.Login(ctx, LoginRequest{Email: "Ada@Example.com", Password: "password12345"})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, registered.User.ID, resp.User.ID)
	assert.Empty(t, resp.User.PasswordHash)

	claims, err := env.tokens.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, claims.UserID)
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.auth.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: "password12345"})
	require.NoError(t, err)

	_, wrongPassword := env.auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: "password12346"})
	_, unknownEmail := env.auth.Login(ctx, LoginRequest{Email: "grace@example.com", Password: "password12345"})
	_, empty := env.auth.Login(ctx, LoginRequest{})

	for _, err := range []error{wrongPassword, unknownEmail, empty} {
		require.Error(t, err)
		assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
		assert.Equal(t, "incorrect credentials", err.Error())
	}
}

func TestAuthService_Register_MultibytePasswordOverLimit(t *testing.T) {
	env := setupServices(t)

	// 513 runes but 1026 bytes.
	password := strings.Repeat("é", auth.MaxPasswordLength/2+1)

	_, err := env.auth.Register(context.Background(), RegisterRequest{
		Username: "ada",
		Email:    "ada@example.com",
		Password: password,
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"password": "must not exceed 1024 bytes"}, domainErr.Details)

	_, err = env.store.GetUserByEmail(context.Background(), "ada@example.com")
	assert.Error(t, err, "no account is created")
}

func TestAuthService_Register_MultibytePasswordAtLimit(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	password := strings.Repeat("é", auth.MaxPasswordLength/2)

	_, err := env.auth.Register(ctx, RegisterRequest{Username: "ada", Email: "ada@example.com", Password: password})
	require.NoError(t, err)

	_, err = env.auth.Login(ctx, LoginRequest{Email: "ada@example.com", Password: password})
	assert.NoError(t, err)
}

func TestDummyHashIsUsable(t *testing.T) {
	hash, err := dummyHash()
	require.NoError(t, err)
	require.NotEmpty(t, hash)

	ok, err := auth.VerifyPassword(hash, "bookshelf-timing-equalizer")
	require.NoError(t, err)
	assert.True(t, ok)
}
