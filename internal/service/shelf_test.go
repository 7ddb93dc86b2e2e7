package service

import (
	"context"
	"testing"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gatsby() BookRequest {
	return BookRequest{
		BookID:  "g1",
		Title:   "Gatsby",
		Authors: []string{"F. Scott Fitzgerald"},
		Link:    "https://books.example.com/g1",
	}
}

func TestShelfService_RequiresIdentity(t *testing.T) {
	env := setupServices(t)
	ctx := context.Background()

	_, err := env.shelf.Me(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	assert.Equal(t, "not logged in", err.Error())

	_, err = env.shelf.SaveBook(ctx, gatsby())
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
	assert.Equal(t, "you need to be logged in", err.Error())

	_, err = env.shelf.RemoveBook(ctx, "g1")
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestShelfService_Me(t *testing.T) {
	env := setupServices(t)
	ctx, registered := env.signIn(t, "ada", "ada@example.com")

	me, err := env.shelf.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, me.ID)
	assert.Equal(t, "ada", me.Username)
	assert.Empty(t, me.PasswordHash)
	assert.Empty(t, me.SavedBooks)
}

func TestShelfService_Me_DeletedAccount(t *testing.T) {
	env := setupServices(t)
	ctx := auth.WithIdentity(context.Background(), auth.Identity{UserID: "user_gone"})

	_, err := env.shelf.Me(ctx)
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)

	_, err = env.shelf.SaveBook(ctx, gatsby())
	assert.ErrorIs(t, err, domainerrors.ErrUnauthenticated)
}

func TestShelfService_SaveBook_Idempotent(t *testing.T) {
	env := setupServices(t)
	ctx, _ := env.signIn(t, "ada", "ada@example.com")

	first, err := env.shelf.SaveBook(ctx, gatsby())
	require.NoError(t, err)
	require.Equal(t, 1, first.BookCount())

	again := gatsby()
	again.Title = "The Great Gatsby"
	second, err := env.shelf.SaveBook(ctx, again)
	require.NoError(t, err)

	assert.Equal(t, first.SavedBooks, second.SavedBooks)
	assert.Equal(t, "Gatsby", second.SavedBooks[0].Title)
	assert.Empty(t, second.PasswordHash)
}

func TestShelfService_SaveBook_Validation(t *testing.T) {
	env := setupServices(t)
	ctx, _ := env.signIn(t, "ada", "ada@example.com")

	_, err := env.shelf.SaveBook(ctx, BookRequest{BookID: "g1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"title": "is required"}, domainErr.Details)
}

func TestShelfService_RemoveBook(t *testing.T) {
	env := setupServices(t)
	ctx, _ := env.signIn(t, "ada", "ada@example.com")

	_, err := env.shelf.SaveBook(ctx, gatsby())
	require.NoError(t, err)
	_, err = env.shelf.SaveBook(ctx, BookRequest{BookID: "m1", Title: "Moby Dick"})
	require.NoError(t, err)

	user, err := env.shelf.RemoveBook(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, []domain.Book{{BookID: "m1", Title: "Moby Dick"}}, user.SavedBooks)

	// Absent id leaves the collection alone.
	user, err = env.shelf.RemoveBook(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, 1, user.BookCount())
}

func TestShelfService_CollectionsAreIsolated(t *testing.T) {
	env := setupServices(t)
	adaCtx, _ := env.signIn(t, "ada", "ada@example.com")
	graceCtx, _ := env.signIn(t, "grace", "grace@example.com")

	_, err := env.shelf.SaveBook(adaCtx, gatsby())
	require.NoError(t, err)

	grace, err := env.shelf.Me(graceCtx)
	require.NoError(t, err)
	assert.Empty(t, grace.SavedBooks)
}
