package auth

import (
	"errors"
	"fmt"
	"time"
)

const (
	tokenIssuer   = "bookshelf-server"
	tokenAudience = "bookshelf-client"
)

// Format selects the wire format of session tokens.
type Format string

// Supported token formats.
const (
	FormatPASETO Format = "paseto" // PASETO v4.public, Ed25519 signature
	FormatJWT    Format = "jwt"    // JWT, HS256 signature
)

// Typed verification failures. Verify wraps one of these with detail.
var (
	ErrTokenMalformed = errors.New("malformed token")
	ErrTokenInvalid   = errors.New("invalid token")
	ErrTokenExpired   = errors.New("token expired")
)

// codec signs and checks one token format. decode verifies the signature,
// issuer and audience; expiry is checked by TokenService against its clock.
type codec interface {
	encode(c Claims) (string, error)
	decode(token string) (*Claims, error)
}

// TokenService issues and verifies stateless session tokens.
// Verification needs nothing but the signing secret: no store lookup and no
// revocation list.
type TokenService struct {
	format Format
	codec  codec
	ttl    time.Duration
	now    func() time.Time
}

// Option configures a TokenService.
type Option func(*TokenService)

// WithClock overrides the time source used for issuing and expiry checks.
func WithClock(now func() time.Time) Option {
	return func(s *TokenService) {
		s.now = now
	}
}

// NewTokenService creates a token service signing with key.
// Every token is valid for ttl from the moment it is issued.
func NewTokenService(format Format, key []byte, ttl time.Duration, opts ...Option) (*TokenService, error) {
	if len(key) != KeySize {
		return nil, fmt.Errorf("signing key must be exactly %d bytes, got %d", KeySize, len(key))
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("token lifetime must be positive, got %s", ttl)
	}

	var (
		c   codec
		err error
	)
	switch format {
	case FormatPASETO:
		c, err = newPasetoCodec(key)
	case FormatJWT:
		c = newJWTCodec(key)
	default:
		return nil, fmt.Errorf("unsupported token format %q", format)
	}
	if err != nil {
		return nil, err
	}

	s := &TokenService{
		format: format,
		codec:  c,
		ttl:    ttl,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Issue creates a signed token for the given user.
func (s *TokenService) Issue(userID, username, email string) (string, error) {
	if userID == "" {
		return "", errors.New("token subject cannot be empty")
	}

	// Both formats carry second precision.
	now := s.now().UTC().Truncate(time.Second)

	token, err := s.codec.encode(Claims{
		UserID:    userID,
		Username:  username,
		Email:     email,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.ttl),
	})
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return token, nil
}

// Verify checks the token's signature and expiry and returns its claims.
// Failures wrap ErrTokenMalformed, ErrTokenInvalid or ErrTokenExpired.
func (s *TokenService) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrTokenMalformed
	}

	claims, err := s.codec.decode(token)
	if err != nil {
		return nil, err
	}
	if claims.UserID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrTokenInvalid)
	}
	if claims.ExpiresAt.IsZero() {
		return nil, fmt.Errorf("%w: missing expiry", ErrTokenInvalid)
	}
	if !s.now().Before(claims.ExpiresAt) {
		return nil, fmt.Errorf("%w: expired at %s", ErrTokenExpired, claims.ExpiresAt.Format(time.RFC3339))
	}

	return claims, nil
}

// Format returns the configured token format.
func (s *TokenService) Format() Format {
	return s.format
}

// TTL returns the validity window of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}
