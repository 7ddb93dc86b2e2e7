// Package service holds the account and saved-book use cases behind the
// GraphQL resolvers.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/id"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

// Messages returned to clients on authentication failures.
const (
	msgIncorrectCredentials = "incorrect credentials"
	msgNotLoggedIn          = "not logged in"
	msgLoginRequired        = "you need to be logged in"
)

// dummyHash is verified against when the email is unknown, so a miss costs
// the same Argon2 work as a wrong password.
var dummyHash = sync.OnceValues(func() (string, error) {
	return auth.HashPassword("bookshelf-timing-equalizer")
})

// AuthService handles account creation and login.
type AuthService struct {
	store     store.Repository
	tokens    *auth.TokenService
	validator *validation.Validator
	logger    *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Repository,
	tokens *auth.TokenService,
	validator *validation.Validator,
	logger *slog.Logger,
) *AuthService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &AuthService{
		store:     store,
		tokens:    tokens,
		validator: validator,
		logger:    logger,
	}
}

// RegisterRequest contains the data for a new account.
type RegisterRequest struct {
	Username   string        `json:"username" validate:"required"`
	Email      string        `json:"email" validate:"required,email"`
	Password   string        `json:"password" validate:"required,maxbytes=1024"`
	SavedBooks []BookRequest `json:"savedBooks" validate:"dive"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse pairs a fresh session token with the sanitized user.
type AuthResponse struct {
	Token string
	User  *domain.User
}

// Register creates a new account and signs the caller in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	switch {
	case errors.Is(err, auth.ErrEmptyPassword):
		return nil, domainerrors.ValidationWithDetails("password is required",
			map[string]string{"password": "is required"})
	case errors.Is(err, auth.ErrPasswordTooLong):
		return nil, domainerrors.ValidationWithDetails("password is too long",
			map[string]string{"password": fmt.Sprintf("must not exceed %d bytes", auth.MaxPasswordLength)})
	case err != nil:
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.NewUserID()
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	books := make([]domain.Book, 0, len(req.SavedBooks))
	for _, b := range req.SavedBooks {
		books = append(books, b.Book())
	}

	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: passwordHash,
		SavedBooks:   domain.UniqueBooks(books),
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			return nil, domainerrors.ValidationWithDetails("email already in use",
				map[string]string{"email": "is already in use"})
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("User registered", "user_id", userID, "books", user.BookCount())

	return s.respond(user)
}

// Login verifies credentials and issues a new token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// Don't leak whether email exists
			hash, hashErr := dummyHash()
			if hashErr != nil {
				s.logger.Error("Timing equalizer hash unavailable", "error", hashErr)
			}
			_, _ = auth.VerifyPassword(hash, req.Password)
			return nil, domainerrors.Authentication(msgIncorrectCredentials)
		}
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	valid, err := auth.VerifyPassword(user.PasswordHash, req.Password)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}
	if !valid {
		s.logger.Debug("Login rejected", "user_id", user.ID)
		return nil, domainerrors.Authentication(msgIncorrectCredentials)
	}

	s.logger.Info("User logged in", "user_id", user.ID)

	return s.respond(user)
}

func (s *AuthService) respond(user *domain.User) (*AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, user.Username, user.Email)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: user.Sanitized()}, nil
}
