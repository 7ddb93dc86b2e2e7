package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

// BookRequest is a book as submitted by a client.
type BookRequest struct {
	BookID      string   `json:"bookId" validate:"required"`
	Title       string   `json:"title" validate:"required"`
	Authors     []string `json:"authors"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Link        string   `json:"link"`
}

// Book converts the request into the stored value object.
func (r BookRequest) Book() domain.Book {
	return domain.Book{
		BookID:      r.BookID,
		Title:       r.Title,
		Authors:     r.Authors,
		Description: r.Description,
		Image:       r.Image,
		Link:        r.Link,
	}
}

// ShelfService reads and edits the caller's saved-book collection.
// The caller is always taken from the request context; there is no way to
// address another user's collection.
type ShelfService struct {
	store     store.Repository
	validator *validation.Validator
	logger    *slog.Logger
}

// NewShelfService creates a new shelf service.
func NewShelfService(store store.Repository, validator *validation.Validator, logger *slog.Logger) *ShelfService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &ShelfService{
		store:     store,
		validator: validator,
		logger:    logger,
	}
}

// Me returns the caller's account with its saved books.
func (s *ShelfService) Me(ctx context.Context) (*domain.User, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, domainerrors.Authentication(msgNotLoggedIn)
	}

	user, err := s.store.GetUser(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Token outlived its account.
			return nil, domainerrors.Authentication(msgNotLoggedIn)
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user.Sanitized(), nil
}

// SaveBook adds a book to the caller's collection. Saving a book that is
// already there leaves the first saved copy in place.
func (s *ShelfService) SaveBook(ctx context.Context, req BookRequest) (*domain.User, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, domainerrors.Authentication(msgLoginRequired)
	}

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.AddSavedBook(ctx, identity.UserID, req.Book())
	if err != nil {
		return nil, s.mutationError("save book", err)
	}

	s.logger.Debug("Book saved", "user_id", identity.UserID, "book_id", req.BookID, "books", user.BookCount())

	return user.Sanitized(), nil
}

// RemoveBook removes a book from the caller's collection. Removing a book
// that is not saved succeeds and returns the unchanged collection.
func (s *ShelfService) RemoveBook(ctx context.Context, bookID string) (*domain.User, error) {
	identity, ok := auth.IdentityFromContext(ctx)
	if !ok {
		return nil, domainerrors.Authentication(msgLoginRequired)
	}

	user, err := s.store.RemoveSavedBook(ctx, identity.UserID, bookID)
	if err != nil {
		return nil, s.mutationError("remove book", err)
	}

	s.logger.Debug("Book removed", "user_id", identity.UserID, "book_id", bookID, "books", user.BookCount())

	return user.Sanitized(), nil
}

func (s *ShelfService) mutationError(op string, err error) error {
	if errors.Is(err, store.ErrUserNotFound) {
		return domainerrors.Authentication(msgLoginRequired)
	}
	return fmt.Errorf("%s: %w", op, err)
}
