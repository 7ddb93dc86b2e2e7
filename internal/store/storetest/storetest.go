// Package storetest is a conformance suite run against every
// store.Repository implementation.
package storetest

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Factory returns an empty repository. It should register its own cleanup.
type Factory func(t *testing.T) store.Repository

// Run executes the suite against repositories built by newRepo.
func Run(t *testing.T, newRepo Factory) {
	t.Helper()

	tests := []struct {
		name string
		fn   func(t *testing.T, repo store.Repository)
	}{
		{"CreateAndGet", testCreateAndGet},
		{"CreateDuplicateEmail", testCreateDuplicateEmail},
		{"CreateDuplicateID", testCreateDuplicateID},
		{"GetMissing", testGetMissing},
		{"GetByEmailCaseInsensitive", testGetByEmailCaseInsensitive},
		{"AddSavedBookIdempotent", testAddSavedBookIdempotent},
		{"EmptyAuthorsRoundTrip", testEmptyAuthorsRoundTrip},
		{"RemoveSavedBook", testRemoveSavedBook},
		{"RemoveAbsentBookIsNoop", testRemoveAbsentBookIsNoop},
		{"MutateMissingUser", testMutateMissingUser},
		{"RandomSequenceKeepsSetSemantics", testRandomSequence},
		{"ConcurrentSavesOfDistinctBooks", testConcurrentDistinctSaves},
		{"ConcurrentSavesOfSameBook", testConcurrentSameBookSaves},
		{"UsersAreIsolated", testUsersAreIsolated},
		{"Ping", testPing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newRepo(t))
		})
	}
}

// NewUser returns a user ready to be passed to CreateUser.
func NewUser(id, email string) *domain.User {
	u := &domain.User{
		Record:       domain.Record{ID: id},
		Username:     "user-" + id,
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
	}
	u.InitTimestamps()
	return u
}

// NewBook returns a fully populated book for bookID.
func NewBook(bookID string) domain.Book {
	return domain.Book{
		BookID:      bookID,
		Title:       "Title " + bookID,
		Authors:     []string{"Author " + bookID},
		Description: "About " + bookID,
		Image:       "https://books.example.com/" + bookID + ".jpg",
		Link:        "https://books.example.com/" + bookID,
	}
}

func mustCreate(t *testing.T, repo store.Repository, u *domain.User) {
	t.Helper()
	require.NoError(t, repo.CreateUser(context.Background(), u))
}

func bookIDs(u *domain.User) []string {
	ids := make([]string, 0, len(u.SavedBooks))
	for _, b := range u.SavedBooks {
		ids = append(ids, b.BookID)
	}
	return ids
}

func testCreateAndGet(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	u := NewUser("user_ada", "ada@example.com")
	u.SavedBooks = []domain.Book{NewBook("b1")}
	mustCreate(t, repo, u)

	got, err := repo.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, u.Username, got.Username)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, u.PasswordHash, got.PasswordHash)
	assert.Equal(t, u.SavedBooks, got.SavedBooks)
	assert.WithinDuration(t, u.CreatedAt, got.CreatedAt, time.Millisecond)
}

func testCreateDuplicateEmail(t *testing.T, repo store.Repository) {
	mustCreate(t, repo, NewUser("user_1", "ada@example.com"))

	err := repo.CreateUser(context.Background(), NewUser("user_2", "  ADA@Example.com "))
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func testCreateDuplicateID(t *testing.T, repo store.Repository) {
	mustCreate(t, repo, NewUser("user_1", "ada@example.com"))

	err := repo.CreateUser(context.Background(), NewUser("user_1", "grace@example.com"))
	assert.ErrorIs(t, err, store.ErrUserExists)
}

func testGetMissing(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	_, err := repo.GetUser(ctx, "user_nobody")
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = repo.GetUserByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

func testGetByEmailCaseInsensitive(t *testing.T, repo store.Repository) {
	mustCreate(t, repo, NewUser("user_ada", "Ada@Example.com"))

	got, err := repo.GetUserByEmail(context.Background(), "ada@EXAMPLE.com")
	require.NoError(t, err)
	assert.Equal(t, "user_ada", got.ID)
	assert.Equal(t, "Ada@Example.com", got.Email, "stored email keeps its original spelling")
}

func testAddSavedBookIdempotent(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, NewUser("user_ada", "ada@example.com"))

	first := NewBook("b1")
	got, err := repo.AddSavedBook(ctx, "user_ada", first)
	require.NoError(t, err)
	assert.Equal(t, []domain.Book{first}, got.SavedBooks)

	changed := first
	changed.Title = "Second Title"
	got, err = repo.AddSavedBook(ctx, "user_ada", changed)
	require.NoError(t, err)
	assert.Equal(t, []domain.Book{first}, got.SavedBooks, "re-saving keeps the first fields")

	stored, err := repo.GetUser(ctx, "user_ada")
	require.NoError(t, err)
	assert.Equal(t, 1, stored.BookCount())
	assert.Equal(t, "Title b1", stored.SavedBooks[0].Title)
}

func testEmptyAuthorsRoundTrip(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, NewUser("user_ada", "ada@example.com"))

	book := NewBook("b1")
	book.Authors = []string{}
	_, err := repo.AddSavedBook(ctx, "user_ada", book)
	require.NoError(t, err)

	stored, err := repo.GetUser(ctx, "user_ada")
	require.NoError(t, err)
	require.Len(t, stored.SavedBooks, 1)
	assert.NotNil(t, stored.SavedBooks[0].Authors)
	assert.Empty(t, stored.SavedBooks[0].Authors)
}

func testRemoveSavedBook(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, NewUser("user_ada", "ada@example.com"))

	for _, id := range []string{"b1", "b2", "b3"} {
		_, err := repo.AddSavedBook(ctx, "user_ada", NewBook(id))
		require.NoError(t, err)
	}

	got, err := repo.RemoveSavedBook(ctx, "user_ada", "b2")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1", "b3"}, bookIDs(got))
	assert.Equal(t, NewBook("b3"), got.SavedBooks[1])

	got, err = repo.RemoveSavedBook(ctx, "user_ada", "b1")
	require.NoError(t, err)
	got, err = repo.RemoveSavedBook(ctx, "user_ada", "b3")
	require.NoError(t, err)
	assert.Empty(t, got.SavedBooks)
}

func testRemoveAbsentBookIsNoop(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, NewUser("user_ada", "ada@example.com"))

	_, err := repo.AddSavedBook(ctx, "user_ada", NewBook("b1"))
	require.NoError(t, err)

	got, err := repo.RemoveSavedBook(ctx, "user_ada", "missing")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, bookIDs(got))
}

func testMutateMissingUser(t *testing.T, repo store.Repository) {
	ctx := context.Background()

	_, err := repo.AddSavedBook(ctx, "user_nobody", NewBook("b1"))
	assert.ErrorIs(t, err, store.ErrUserNotFound)

	_, err = repo.RemoveSavedBook(ctx, "user_nobody", "b1")
	assert.ErrorIs(t, err, store.ErrUserNotFound)
}

// testRandomSequence applies random saves and removes over a small key space
// and compares the stored collection with the set a model predicts.
func testRandomSequence(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, NewUser("user_ada", "ada@example.com"))

	rng := rand.New(rand.NewPCG(7, 11))
	model := []string{}

	for i := range 200 {
		id := fmt.Sprintf("b%d", rng.IntN(8))

		var (
			got *domain.User
			err error
		)
		if rng.IntN(3) == 0 {
			got, err = repo.RemoveSavedBook(ctx, "user_ada", id)
			model = slices.DeleteFunc(model, func(m string) bool { return m == id })
		} else {
			got, err = repo.AddSavedBook(ctx, "user_ada", NewBook(id))
			if !slices.Contains(model, id) {
				model = append(model, id)
			}
		}
		require.NoError(t, err, "step %d", i)
		require.Equal(t, model, bookIDs(got), "step %d", i)
	}

	stored, err := repo.GetUser(ctx, "user_ada")
	require.NoError(t, err)
	assert.Equal(t, model, bookIDs(stored))
}

func testConcurrentDistinctSaves(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, NewUser("user_ada", "ada@example.com"))

	const n = 16
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddSavedBook(ctx, "user_ada", NewBook(fmt.Sprintf("b%02d", i)))
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}

	stored, err := repo.GetUser(ctx, "user_ada")
	require.NoError(t, err)
	ids := bookIDs(stored)
	slices.Sort(ids)

	want := make([]string, 0, n)
	for i := range n {
		want = append(want, fmt.Sprintf("b%02d", i))
	}
	assert.Equal(t, want, ids)
}

func testConcurrentSameBookSaves(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, NewUser("user_ada", "ada@example.com"))

	const n = 8
	var wg sync.WaitGroup
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.AddSavedBook(ctx, "user_ada", NewBook("b1"))
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := repo.GetUser(ctx, "user_ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, bookIDs(stored))
}

func testUsersAreIsolated(t *testing.T, repo store.Repository) {
	ctx := context.Background()
	mustCreate(t, repo, NewUser("user_ada", "ada@example.com"))
	mustCreate(t, repo, NewUser("user_grace", "grace@example.com"))

	_, err := repo.AddSavedBook(ctx, "user_ada", NewBook("b1"))
	require.NoError(t, err)

	grace, err := repo.GetUser(ctx, "user_grace")
	require.NoError(t, err)
	assert.Empty(t, grace.SavedBooks)

	_, err = repo.RemoveSavedBook(ctx, "user_grace", "b1")
	require.NoError(t, err)

	ada, err := repo.GetUser(ctx, "user_ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"b1"}, bookIDs(ada))
}

func testPing(t *testing.T, repo store.Repository) {
	assert.NoError(t, repo.Ping(context.Background()))
}
