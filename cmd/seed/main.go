// Package main provides a tool to seed the database with demo accounts.
//
// Each demo user gets a random selection of books from a small built-in
// catalog, saved through the same repository calls the server uses.
//
// Usage:
//
//	DATA_PATH=~/Bookshelf/data go run ./cmd/seed
//	DATA_PATH=~/Bookshelf/data go run ./cmd/seed --store sqlite --users 10
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"path/filepath"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/domain"
	"github.com/listenupapp/bookshelf-server/internal/id"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/store/kv"
	"github.com/listenupapp/bookshelf-server/internal/store/sqlite"
)

var (
	storeDriver = flag.String("store", config.StoreBadger, "Store driver (badger, sqlite)")
	userCount   = flag.Int("users", 3, "Number of demo users to create")
	password    = flag.String("password", "password", "Password for every demo user")
)

var catalog = []domain.Book{
	{BookID: "iXn5U2IzVH0C", Title: "The Great Gatsby", Authors: []string{"F. Scott Fitzgerald"}},
	{BookID: "XV8XAAAAYAAJ", Title: "Moby Dick", Authors: []string{"Herman Melville"}},
	{BookID: "s1gVAAAAYAAJ", Title: "Pride and Prejudice", Authors: []string{"Jane Austen"}},
	{BookID: "kotPYEqx7kMC", Title: "1984", Authors: []string{"George Orwell"}},
	{BookID: "PGR2AwAAQBAJ", Title: "To Kill a Mockingbird", Authors: []string{"Harper Lee"}},
	{BookID: "ZrNzAwAAQBAJ", Title: "Dune", Authors: []string{"Frank Herbert"}},
	{BookID: "hFfhrCWiLSMC", Title: "The Hobbit", Authors: []string{"J. R. R. Tolkien"}},
	{BookID: "uW_zzQEACAAJ", Title: "Notes from a Small Island", Authors: []string{"Bill Bryson"}},
}

func main() {
	flag.Parse()

	dataPath := os.Getenv("DATA_PATH")
	if dataPath == "" {
		dataPath = os.ExpandEnv("$HOME/Bookshelf/data")
	}

	repo, err := open(dataPath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	rng := rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))

	for n := 1; n <= *userCount; n++ {
		email := fmt.Sprintf("demo%d@example.com", n)

		user, err := createUser(ctx, repo, fmt.Sprintf("demo%d", n), email)
		if errors.Is(err, store.ErrEmailExists) {
			fmt.Printf("Skipping %s: already exists\n", email)
			continue
		}
		if err != nil {
			log.Fatalf("Failed to create %s: %v", email, err)
		}

		picks := rng.Perm(len(catalog))[:1+rng.IntN(len(catalog))]
		for _, i := range picks {
			if user, err = repo.AddSavedBook(ctx, user.ID, catalog[i]); err != nil {
				log.Fatalf("Failed to save book for %s: %v", email, err)
			}
		}

		fmt.Printf("Created %s (%s) with %d saved books\n", email, user.ID, user.BookCount())
	}

	fmt.Println("\nSeeding complete!")
}

func open(dataPath string) (store.Repository, error) {
	if err := os.MkdirAll(dataPath, 0o750); err != nil {
		return nil, err
	}

	switch *storeDriver {
	case config.StoreSQLite:
		path := filepath.Join(dataPath, "bookshelf.db")
		fmt.Printf("Opening SQLite database at: %s\n", path)
		return sqlite.Open(path, nil)
	case config.StoreBadger:
		path := filepath.Join(dataPath, "db")
		fmt.Printf("Opening Badger database at: %s\n", path)
		return kv.Open(path, nil)
	default:
		return nil, fmt.Errorf("unknown store driver %q", *storeDriver)
	}
}

func createUser(ctx context.Context, repo store.Repository, username, email string) (*domain.User, error) {
	hash, err := auth.HashPassword(*password)
	if err != nil {
		return nil, err
	}

	userID, err := id.NewUserID()
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Record:       domain.Record{ID: userID},
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		SavedBooks:   []domain.Book{},
	}
	user.InitTimestamps()

	if err := repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
