// Package main prints the users in a Badger database and checks that the
// email index agrees with the user documents. The database is opened
// read-only, so the server must be stopped first.
//
// Usage:
//
//	DB_PATH=~/Bookshelf/data/db go run ./cmd/dbinspect
package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/dgraph-io/badger/v4"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

const (
	userPrefix  = "user:"
	emailPrefix = "idx:users:email:"
)

func main() {
	dbPath := os.Getenv("DB_PATH")
	if dbPath == "" {
		dbPath = os.ExpandEnv("$HOME/Bookshelf/data/db")
	}

	opts := badger.DefaultOptions(dbPath).
		WithReadOnly(true).
		WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	fmt.Println("=== Database Inspection ===")
	fmt.Println()

	users := map[string]domain.User{}
	index := map[string]string{}
	totalBooks := 0
	duplicates := 0

	err = db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			key := string(item.Key())

			val, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}

			switch {
			case strings.HasPrefix(key, emailPrefix):
				index[strings.TrimPrefix(key, emailPrefix)] = string(val)
			case strings.HasPrefix(key, userPrefix):
				var u domain.User
				if err := json.Unmarshal(val, &u); err != nil {
					fmt.Printf("  ! %s: undecodable document: %v\n", key, err)
					continue
				}
				users[u.ID] = u
				totalBooks += u.BookCount()
				if len(domain.UniqueBooks(u.SavedBooks)) != u.BookCount() {
					duplicates++
				}
			}
		}
		return nil
	})
	if err != nil {
		log.Fatalf("Failed to scan database: %v", err)
	}

	for _, u := range users {
		fmt.Printf("User: %s <%s>\n", u.Username, u.Email)
		fmt.Printf("  ID: %s\n", u.ID)
		fmt.Printf("  Saved books: %d\n", u.BookCount())
		for i, b := range u.SavedBooks {
			if i == 5 {
				fmt.Printf("    ... and %d more\n", u.BookCount()-5)
				break
			}
			fmt.Printf("    [%s] %s\n", b.BookID, b.Title)
		}
		fmt.Println()

		if owner, ok := index[store.NormalizeEmail(u.Email)]; !ok || owner != u.ID {
			fmt.Printf("  ! email index does not point at %s\n", u.ID)
		}
	}

	for email, userID := range index {
		if _, ok := users[userID]; !ok {
			fmt.Printf("  ! dangling email index %s -> %s\n", email, userID)
		}
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Users: %d\n", len(users))
	fmt.Printf("Email index entries: %d\n", len(index))
	fmt.Printf("Saved books: %d\n", totalBooks)
	fmt.Printf("Users with duplicate book IDs: %d\n", duplicates)
}
