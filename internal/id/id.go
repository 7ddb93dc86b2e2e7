// Package id generates the opaque identifiers assigned to stored records.
package id

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// UserPrefix is prepended to every user ID.
const UserPrefix = "user"

// Generate creates a prefixed NanoID, e.g. "user-V1StGXR8_Z5jdHi6B-myT".
// NanoIDs are URL-safe and 21 characters long.
func Generate(prefix string) (string, error) {
	nid, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return prefix + "-" + nid, nil
}

// NewUserID returns a fresh user ID.
func NewUserID() (string, error) {
	return Generate(UserPrefix)
}
