// Package domain contains the user and saved-book aggregate.
package domain

import "slices"

// User is a registered account and the owner of a saved-book collection.
type User struct {
	Record
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	SavedBooks   []Book `json:"saved_books"`
}

// BookCount returns the number of books in the saved collection.
func (u *User) BookCount() int {
	return len(u.SavedBooks)
}

// HasBook reports whether a book with bookID is saved.
func (u *User) HasBook(bookID string) bool {
	return slices.ContainsFunc(u.SavedBooks, func(b Book) bool {
		return b.BookID == bookID
	})
}

// AddBook inserts book unless one with the same BookID is already saved.
// An existing entry is never overwritten. Reports whether the set changed.
func (u *User) AddBook(book Book) bool {
	if u.HasBook(book.BookID) {
		return false
	}
	u.SavedBooks = append(u.SavedBooks, book)
	return true
}

// RemoveBook deletes every saved entry with bookID. Removing a book that is
// not saved is a no-op. Reports whether the set changed.
func (u *User) RemoveBook(bookID string) bool {
	before := len(u.SavedBooks)
	u.SavedBooks = slices.DeleteFunc(u.SavedBooks, func(b Book) bool {
		return b.BookID == bookID
	})
	return len(u.SavedBooks) != before
}

// Sanitized returns a copy of the user that is safe to hand to clients.
// The password hash is cleared and the book slice is not shared.
func (u *User) Sanitized() *User {
	out := *u
	out.PasswordHash = ""
	out.SavedBooks = slices.Clone(u.SavedBooks)
	if out.SavedBooks == nil {
		out.SavedBooks = []Book{}
	}
	return &out
}
