package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

// userColumns is the ordered list of columns selected in user queries.
// Must match the scan order in scanUser.
const userColumns = `id, created_at, updated_at, username, email, password_hash, saved_books`

// addBookSQL appends the book unless an element with the same bookId exists.
// Zero affected rows means the book was already saved or the user is gone.
const addBookSQL = `
	UPDATE users
	SET saved_books = json_insert(saved_books, '$[#]', json(?)),
	    updated_at = ?
	WHERE id = ?
	  AND NOT EXISTS (
	    SELECT 1 FROM json_each(users.saved_books)
	    WHERE json_extract(value, '$.bookId') = ?
	  )`

// removeBookSQL rebuilds the array without the matching bookId, and only
// touches rows that actually contain it.
const removeBookSQL = `
	UPDATE users
	SET saved_books = (
	      SELECT COALESCE(json_group_array(json(value)), '[]')
	      FROM json_each(users.saved_books)
	      WHERE json_extract(value, '$.bookId') <> ?
	    ),
	    updated_at = ?
	WHERE id = ?
	  AND EXISTS (
	    SELECT 1 FROM json_each(users.saved_books)
	    WHERE json_extract(value, '$.bookId') = ?
	  )`

// scanUser scans a sql.Row (or sql.Rows via its Scan method) into a domain.User.
func scanUser(scanner interface{ Scan(dest ...any) error }) (*domain.User, error) {
	var (
		u          domain.User
		createdAt  string
		updatedAt  string
		passwordH  sql.NullString
		savedBooks string
	)

	err := scanner.Scan(
		&u.ID,
		&createdAt,
		&updatedAt,
		&u.Username,
		&u.Email,
		&passwordH,
		&savedBooks,
	)
	if err != nil {
		return nil, err
	}

	u.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	u.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}

	if passwordH.Valid {
		u.PasswordHash = passwordH.String
	}

	if err := json.Unmarshal([]byte(savedBooks), &u.SavedBooks); err != nil {
		return nil, fmt.Errorf("decode saved books: %w", err)
	}

	return &u, nil
}

// CreateUser inserts a new user.
func (s *Store) CreateUser(ctx context.Context, user *domain.User) error {
	books := user.SavedBooks
	if books == nil {
		books = []domain.Book{}
	}
	booksJSON, err := json.Marshal(books)
	if err != nil {
		return fmt.Errorf("marshal saved books: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO users (id, created_at, updated_at, username, email, email_key, password_hash, saved_books)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		user.ID,
		formatTime(user.CreatedAt),
		formatTime(user.UpdatedAt),
		user.Username,
		user.Email,
		store.NormalizeEmail(user.Email),
		nullString(user.PasswordHash),
		string(booksJSON),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			if strings.Contains(err.Error(), "email_key") {
				return store.ErrEmailExists
			}
			return store.ErrUserExists
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID.
func (s *Store) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return getUser(ctx, s.db, id)
}

// GetUserByEmail retrieves a user by normalized email.
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email_key = ?`,
		store.NormalizeEmail(email))

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// AddSavedBook appends book to the user's collection if its BookID is not
// already present.
func (s *Store) AddSavedBook(ctx context.Context, userID string, book domain.Book) (*domain.User, error) {
	bookJSON, err := json.Marshal(book)
	if err != nil {
		return nil, fmt.Errorf("marshal book: %w", err)
	}

	return s.mutateUser(ctx, userID, addBookSQL,
		string(bookJSON), formatTime(time.Now()), userID, book.BookID)
}

// RemoveSavedBook removes the book with bookID from the user's collection.
func (s *Store) RemoveSavedBook(ctx context.Context, userID, bookID string) (*domain.User, error) {
	return s.mutateUser(ctx, userID, removeBookSQL,
		bookID, formatTime(time.Now()), userID, bookID)
}

// mutateUser runs one UPDATE and reads the row back within the same
// transaction, so the returned user reflects exactly this mutation.
func (s *Store) mutateUser(ctx context.Context, userID, query string, args ...any) (*domain.User, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return nil, fmt.Errorf("update saved books: %w", err)
	}

	u, err := getUser(ctx, tx, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return u, nil
}

type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getUser(ctx context.Context, q querier, id string) (*domain.User, error) {
	row := q.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}
