package service

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/store/kv"
	"github.com/listenupapp/bookshelf-server/internal/validation"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	store  *kv.Store
	tokens *auth.TokenService
	auth   *AuthService
	shelf  *ShelfService
}

// setupServices wires both services to an in-memory Badger store.
func setupServices(t *testing.T) *testEnv {
	t.Helper()

	s, err := kv.Open("", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	tokens, err := auth.NewTokenService(auth.FormatPASETO, bytes.Repeat([]byte{7}, auth.KeySize), time.Hour)
	require.NoError(t, err)

	v := validation.New()

	return &testEnv{
		store:  s,
		tokens: tokens,
		auth:   NewAuthService(s, tokens, v, nil),
		shelf:  NewShelfService(s, v, nil),
	}
}

// signIn registers a user and returns a context carrying their identity.
func (e *testEnv) signIn(t *testing.T, username, email string) (context.Context, *AuthResponse) {
	t.Helper()

	resp, err := e.auth.Register(context.Background(), RegisterRequest{
		Username: username,
		Email:    email,
		Password: "password12345",
	})
	require.NoError(t, err)

	claims, err := e.tokens.Verify(resp.Token)
	require.NoError(t, err)

	return auth.WithIdentity(context.Background(), claims.Identity()), resp
}
