package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/argon2"
)

// argon2Params are the cost parameters encoded into every stored hash.
type argon2Params struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// defaultParams follow the RFC 9106 second recommended option.
var defaultParams = argon2Params{
	memory:      64 * 1024,
	iterations:  3,
	parallelism: 4,
	saltLength:  16,
	keyLength:   32,
}

// MaxPasswordLength bounds password size in bytes so hashing cost stays bounded.
const MaxPasswordLength = 1024

var (
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooLong  = errors.New("password exceeds maximum length")
	errInvalidHashShape = errors.New("invalid hash format")
)

// HashPassword derives an Argon2id hash from password with a fresh random salt.
// Salt, parameters and hash are returned together as one opaque string:
//
//	$argon2id$v=19$m=65536,t=3,p=4$<salt>$<hash>
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	if len(password) > MaxPasswordLength {
		return "", ErrPasswordTooLong
	}

	p := defaultParams
	salt := make([]byte, p.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		p.memory,
		p.iterations,
		p.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// VerifyPassword reports whether password matches encodedHash.
// A malformed stored hash or an oversized candidate simply does not match;
// the error return is reserved for failures unrelated to the inputs.
func VerifyPassword(encodedHash, password string) (bool, error) {
	if len(password) > MaxPasswordLength {
		return false, nil
	}

	p, salt, want, err := decodeHash(encodedHash)
	if err != nil {
		//nolint:nilerr // a bad stored hash is reported as a mismatch
		return false, nil
	}

	got := argon2.IDKey([]byte(password), salt, p.iterations, p.memory, p.parallelism, p.keyLength)

	return subtle.ConstantTimeCompare(want, got) == 1, nil
}

// decodeHash splits an encoded hash into its parameters, salt and key.
func decodeHash(encoded string) (p argon2Params, salt, key []byte, err error) {
	parts := strings.Split(encoded, "$")
	if len(parts) != 6 || parts[0] != "" {
		return p, nil, nil, errInvalidHashShape
	}
	if parts[1] != "argon2id" {
		return p, nil, nil, fmt.Errorf("unsupported algorithm: %s", parts[1])
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil {
		return p, nil, nil, fmt.Errorf("invalid version: %w", err)
	}
	if version != argon2.Version {
		return p, nil, nil, fmt.Errorf("incompatible version: %d", version)
	}

	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &p.memory, &p.iterations, &p.parallelism); err != nil {
		return p, nil, nil, fmt.Errorf("invalid parameters: %w", err)
	}

	if salt, err = base64.RawStdEncoding.DecodeString(parts[4]); err != nil {
		return p, nil, nil, fmt.Errorf("invalid salt encoding: %w", err)
	}
	if key, err = base64.RawStdEncoding.DecodeString(parts[5]); err != nil {
		return p, nil, nil, fmt.Errorf("invalid hash encoding: %w", err)
	}
	if len(key) == 0 {
		return p, nil, nil, errInvalidHashShape
	}

	//nolint:gosec // key length is bounded by the decoded string
	p.keyLength = uint32(len(key))
	//nolint:gosec // salt length is bounded by the decoded string
	p.saltLength = uint32(len(salt))

	return p, salt, key, nil
}
