package domain

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUser_AddBook_Idempotent(t *testing.T) {
	u := &User{}

	first := Book{BookID: "B1", Title: "T1", Authors: []string{"A"}}
	second := Book{BookID: "B1", Title: "Other title"}

	assert.True(t, u.AddBook(first))
	assert.False(t, u.AddBook(second))

	require.Len(t, u.SavedBooks, 1)
	assert.Equal(t, first, u.SavedBooks[0], "first save must be preserved")
	assert.Equal(t, 1, u.BookCount())
}

func TestUser_RemoveBook(t *testing.T) {
	u := &User{SavedBooks: []Book{{BookID: "B1"}, {BookID: "B2"}}}

	assert.True(t, u.RemoveBook("B1"))
	assert.Equal(t, []Book{{BookID: "B2"}}, u.SavedBooks)

	// Absent ID leaves the set unchanged.
	assert.False(t, u.RemoveBook("B1"))
	assert.False(t, u.RemoveBook("missing"))
	assert.Equal(t, 1, u.BookCount())
}

func TestUser_SetSemantics_RandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(42, 7))
	ids := []string{"a", "b", "c", "d", "e"}

	for run := range 200 {
		u := &User{}
		want := map[string]bool{}

		for range 50 {
			bookID := ids[rng.IntN(len(ids))]
			if rng.IntN(2) == 0 {
				u.AddBook(Book{BookID: bookID, Title: fmt.Sprintf("title-%d", run)})
				want[bookID] = true
			} else {
				u.RemoveBook(bookID)
				delete(want, bookID)
			}

			counts := map[string]int{}
			for _, b := range u.SavedBooks {
				counts[b.BookID]++
				require.Equal(t, 1, counts[b.BookID], "duplicate %s in run %d", b.BookID, run)
			}
		}

		got := map[string]bool{}
		for _, b := range u.SavedBooks {
			got[b.BookID] = true
		}
		assert.Equal(t, want, got, "run %d", run)
	}
}

func TestUser_Sanitized(t *testing.T) {
	u := &User{
		Record:       Record{ID: "user-1"},
		Username:     "ada",
		Email:        "ada@example.com",
		PasswordHash: "$argon2id$secret",
		SavedBooks:   []Book{{BookID: "B1"}},
	}

	clean := u.Sanitized()

	assert.Empty(t, clean.PasswordHash)
	assert.Equal(t, "$argon2id$secret", u.PasswordHash, "original untouched")
	assert.Equal(t, u.SavedBooks, clean.SavedBooks)

	clean.SavedBooks[0].Title = "changed"
	assert.Empty(t, u.SavedBooks[0].Title, "slices must not be shared")
}

func TestUser_Sanitized_NilBooksBecomesEmpty(t *testing.T) {
	clean := (&User{}).Sanitized()
	assert.NotNil(t, clean.SavedBooks)
	assert.Equal(t, 0, clean.BookCount())
}

func TestUniqueBooks_FirstWins(t *testing.T) {
	in := []Book{
		{BookID: "B1", Title: "first"},
		{BookID: "B2"},
		{BookID: "B1", Title: "second"},
	}

	out := UniqueBooks(in)

	assert.Equal(t, []Book{{BookID: "B1", Title: "first"}, {BookID: "B2"}}, out)
}
