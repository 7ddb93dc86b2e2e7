package auth

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentityContext(t *testing.T) {
	_, ok := IdentityFromContext(context.Background())
	assert.False(t, ok)

	want := Identity{UserID: "user-1", Username: "ada", Email: "ada@example.com"}
	got, ok := IdentityFromContext(WithIdentity(context.Background(), want))
	assert.True(t, ok)
	assert.Equal(t, want, got)

	_, ok = IdentityFromContext(WithIdentity(context.Background(), Identity{}))
	assert.False(t, ok, "an identity without a user ID is no identity")
}
