// Package store defines persistence for users and their saved books.
//
// Two engines implement Repository: package kv (Badger, the default) and
// package sqlite. Both make AddSavedBook and RemoveSavedBook a single atomic
// read-modify-write scoped to one user, so concurrent mutations from the same
// user never lose each other's writes.
package store

import (
	"context"
	"strings"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"golang.org/x/text/cases"
)

// Repository is the persistence boundary used by the services.
type Repository interface {
	// CreateUser stores a new user. Returns ErrEmailExists when another user
	// already has the same normalized email, ErrUserExists on an ID clash.
	CreateUser(ctx context.Context, user *domain.User) error

	// GetUser returns the user with id or ErrUserNotFound.
	GetUser(ctx context.Context, id string) (*domain.User, error)

	// GetUserByEmail looks a user up by normalized email or returns ErrUserNotFound.
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)

	// AddSavedBook appends book to the user's collection unless a book with
	// the same BookID is already there, and returns the resulting user.
	AddSavedBook(ctx context.Context, userID string, book domain.Book) (*domain.User, error)

	// RemoveSavedBook drops the book with bookID from the user's collection,
	// if present, and returns the resulting user.
	RemoveSavedBook(ctx context.Context, userID, bookID string) (*domain.User, error)

	// Ping reports whether the underlying engine is usable.
	Ping(ctx context.Context) error

	Close() error
}

// NormalizeEmail returns the comparison key for an email address.
// Uniqueness and lookups both go through it. A Caser is stateful, so one is
// built per call.
func NormalizeEmail(email string) string {
	return cases.Fold().String(strings.TrimSpace(email))
}
