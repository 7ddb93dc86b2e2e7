// Package auth provides credential hashing, session tokens and the
// authenticated identity carried through request contexts.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	// KeySize is the length of the server signing secret in bytes.
	KeySize = 32
	// keyHexLength is KeySize hex encoded.
	keyHexLength = KeySize * 2

	keyFileName = "signing.key"
)

// ParseKey decodes a hex-encoded signing secret.
func ParseKey(keyHex string) ([]byte, error) {
	keyHex = strings.TrimSpace(keyHex)
	if len(keyHex) != keyHexLength {
		return nil, fmt.Errorf("invalid signing key length: expected %d hex chars, got %d", keyHexLength, len(keyHex))
	}

	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("invalid signing key format: not valid hex: %w", err)
	}
	return key, nil
}

// LoadOrGenerateKey returns the signing secret stored in <dataPath>/signing.key.
// A new secret is generated and written with owner-only permissions the first
// time. Tokens stay valid across restarts only while this file survives.
func LoadOrGenerateKey(dataPath string) ([]byte, error) {
	keyPath := filepath.Join(dataPath, keyFileName)

	//#nosec G304 -- key path is derived from the configured data path
	if keyBytes, err := os.ReadFile(keyPath); err == nil {
		return ParseKey(string(keyBytes))
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read signing key: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate signing key: %w", err)
	}

	if err := os.MkdirAll(dataPath, 0o700); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	if err := os.WriteFile(keyPath, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save signing key: %w", err)
	}

	return key, nil
}
