package graph

import (
	"context"
	"errors"
	"log/slog"
	"time"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/metrics"
	"github.com/listenupapp/bookshelf-server/internal/service"
)

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	auth    *service.AuthService
	shelf   *service.ShelfService
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewResolver creates the root resolver. metrics and logger may be nil.
func NewResolver(auth *service.AuthService, shelf *service.ShelfService, m *metrics.Metrics, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Resolver{
		auth:    auth,
		shelf:   shelf,
		metrics: m,
		logger:  logger,
	}
}

// Me returns the signed-in user with their saved books.
func (r *Resolver) Me(ctx context.Context) (*UserResolver, error) {
	start := time.Now()
	user, err := r.shelf.Me(ctx)
	if err = r.finish(ctx, "me", start, err); err != nil {
		return nil, err
	}
	return newUserResolver(user), nil
}

// AddUser registers an account and returns a token for it.
func (r *Resolver) AddUser(ctx context.Context, args struct{ Input UserInput }) (*AuthResolver, error) {
	start := time.Now()
	resp, err := r.auth.Register(ctx, args.Input.request())
	if err = r.finish(ctx, "addUser", start, err); err != nil {
		return nil, err
	}
	return &AuthResolver{token: resp.Token, user: resp.User}, nil
}

// Login exchanges credentials for a token.
func (r *Resolver) Login(ctx context.Context, args struct {
	Email    string
	Password string
}) (*AuthResolver, error) {
	start := time.Now()
	resp, err := r.auth.Login(ctx, service.LoginRequest{Email: args.Email, Password: args.Password})
	if err = r.finish(ctx, "login", start, err); err != nil {
		return nil, err
	}
	return &AuthResolver{token: resp.Token, user: resp.User}, nil
}

// SaveBook adds a book to the caller's collection.
func (r *Resolver) SaveBook(ctx context.Context, args struct{ Input BookInput }) (*UserResolver, error) {
	start := time.Now()
	user, err := r.shelf.SaveBook(ctx, args.Input.request())
	if err = r.finish(ctx, "saveBook", start, err); err != nil {
		return nil, err
	}
	return newUserResolver(user), nil
}

// RemoveBook removes a book from the caller's collection.
func (r *Resolver) RemoveBook(ctx context.Context, args struct{ BookID string }) (*UserResolver, error) {
	return r.removeBook(ctx, "removeBook", args.BookID)
}

// DeleteBook is the deprecated name of RemoveBook.
func (r *Resolver) DeleteBook(ctx context.Context, args struct{ BookID string }) (*UserResolver, error) {
	return r.removeBook(ctx, "deleteBook", args.BookID)
}

func (r *Resolver) removeBook(ctx context.Context, op, bookID string) (*UserResolver, error) {
	start := time.Now()
	user, err := r.shelf.RemoveBook(ctx, bookID)
	if err = r.finish(ctx, op, start, err); err != nil {
		return nil, err
	}
	return newUserResolver(user), nil
}

// finish records the call and turns err into what the client may see.
// Typed errors pass through with their extensions; anything else is logged
// and replaced with a generic internal error.
func (r *Resolver) finish(ctx context.Context, op string, start time.Time, err error) error {
	elapsed := time.Since(start)
	if err == nil {
		r.metrics.ObserveOperation(op, metrics.OutcomeOK, elapsed)
		return nil
	}

	var domainErr *domainerrors.Error
	if !errors.As(err, &domainErr) || domainErr.Code == domainerrors.CodeInternal {
		r.logger.ErrorContext(ctx, "resolver failed", "operation", op, "error", err)
		domainErr = domainerrors.Internal("internal server error")
	}

	r.metrics.ObserveOperation(op, string(domainErr.Code), elapsed)
	return domainErr
}
