// Package kv is the Badger-backed user repository.
//
// Each user is one JSON document under "user:<id>" and the email index maps
// "idx:users:email:<normalized email>" to the user ID. Saved-book mutations
// run inside a single read-write transaction; Badger aborts the commit with
// ErrConflict when another transaction wrote the same user in between, and
// the mutation is replayed against the fresh document.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

const (
	userPrefix        = "user:"
	userByEmailPrefix = "idx:users:email:" // For login lookups

	// maxTxnAttempts bounds how often a conflicting transaction is replayed.
	maxTxnAttempts = 32
)

// Store wraps a Badger database instance.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

var _ store.Repository = (*Store)(nil)

// Open opens (or creates) the database at path. An empty path opens an
// in-memory database, which is what the tests use.
func Open(path string, logger *slog.Logger) (*Store, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	if path == "" {
		opts = opts.WithInMemory(true)
	} else {
		opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
		opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	logger.Info("Badger database opened successfully", "path", path, "in_memory", path == "")

	return &Store{db: db, logger: logger}, nil
}

// Close gracefully closes the database connection.
func (s *Store) Close() error {
	s.logger.Info("Closing database connection")
	return s.db.Close()
}

// Ping reports an error once the database has been closed.
func (s *Store) Ping(_ context.Context) error {
	if s.db.IsClosed() {
		return errors.New("badger db is closed")
	}
	return s.db.View(func(*badger.Txn) error { return nil })
}

// CreateUser creates a new user account and its email index entry.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	key := []byte(userPrefix + user.ID)
	emailKey := []byte(userByEmailPrefix + store.NormalizeEmail(user.Email))

	data, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("marshal user: %w", err)
	}

	return s.update(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err == nil {
			return store.ErrUserExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check user exists: %w", err)
		}

		// Check if email is already in use
		if _, err := txn.Get(emailKey); err == nil {
			return store.ErrEmailExists
		} else if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check email exists: %w", err)
		}

		if err := txn.Set(key, data); err != nil {
			return err
		}
		return txn.Set(emailKey, []byte(user.ID))
	})
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(_ context.Context, id string) (*domain.User, error) {
	var user *domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = getUser(txn, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *Store) GetUserByEmail(_ context.Context, email string) (*domain.User, error) {
	emailKey := []byte(userByEmailPrefix + store.NormalizeEmail(email))

	var user *domain.User
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(emailKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return store.ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("lookup user by email: %w", err)
		}

		userID, err := item.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read email index: %w", err)
		}

		user, err = getUser(txn, string(userID))
		return err
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// AddSavedBook adds book to the user's collection unless its BookID is
// already saved, in which case the stored entry is left untouched.
func (s *Store) AddSavedBook(ctx context.Context, userID string, book domain.Book) (*domain.User, error) {
	return s.mutateUser(ctx, userID, func(u *domain.User) bool {
		return u.AddBook(book)
	})
}

// RemoveSavedBook removes the book with bookID from the user's collection.
// Removing a book that is not saved succeeds without writing.
func (s *Store) RemoveSavedBook(ctx context.Context, userID, bookID string) (*domain.User, error) {
	return s.mutateUser(ctx, userID, func(u *domain.User) bool {
		return u.RemoveBook(bookID)
	})
}

// mutateUser applies fn to the stored user inside one transaction and writes
// the document back only if fn reports a change.
func (s *Store) mutateUser(ctx context.Context, userID string, fn func(*domain.User) bool) (*domain.User, error) {
	key := []byte(userPrefix + userID)

	var user *domain.User
	err := s.update(ctx, func(txn *badger.Txn) error {
		u, err := getUser(txn, userID)
		if err != nil {
			return err
		}

		if fn(u) {
			u.Touch()
			data, err := json.Marshal(u)
			if err != nil {
				return fmt.Errorf("marshal user: %w", err)
			}
			if err := txn.Set(key, data); err != nil {
				return err
			}
		}

		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// update runs fn in a read-write transaction, replaying it when the commit
// loses a conflict with a concurrent writer.
func (s *Store) update(ctx context.Context, fn func(txn *badger.Txn) error) error {
	var err error
	for attempt := 1; attempt <= maxTxnAttempts; attempt++ {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		err = s.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		s.logger.Debug("transaction conflict, retrying", "attempt", attempt)
	}
	return fmt.Errorf("transaction retries exhausted: %w", err)
}

func getUser(txn *badger.Txn, id string) (*domain.User, error) {
	item, err := txn.Get([]byte(userPrefix + id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	var user domain.User
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &user)
	}); err != nil {
		return nil, fmt.Errorf("decode user %s: %w", id, err)
	}
	return &user, nil
}
