package auth

import (
	"errors"
	"fmt"
	"slices"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// jwtClaims is the JWT payload.
type jwtClaims struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	jwt.RegisteredClaims
}

// jwtCodec signs HS256 JWTs with the server secret.
type jwtCodec struct {
	key []byte
}

func newJWTCodec(key []byte) *jwtCodec {
	return &jwtCodec{key: key}
}

func (c *jwtCodec) encode(claims Claims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwtClaims{
		Username: claims.Username,
		Email:    claims.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   claims.UserID,
			Audience:  jwt.ClaimStrings{tokenAudience},
			IssuedAt:  jwt.NewNumericDate(claims.IssuedAt),
			NotBefore: jwt.NewNumericDate(claims.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(claims.ExpiresAt),
			ID:        uuid.NewString(),
		},
	})
	return token.SignedString(c.key)
}

func (c *jwtCodec) decode(raw string) (*Claims, error) {
	var parsed jwtClaims

	// Time-based claims are checked by TokenService so that its clock is authoritative.
	_, err := jwt.ParseWithClaims(raw, &parsed, func(*jwt.Token) (any, error) {
		return c.key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenMalformed) {
			return nil, fmt.Errorf("%w: %v", ErrTokenMalformed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	if parsed.Issuer != tokenIssuer {
		return nil, fmt.Errorf("%w: unexpected issuer %q", ErrTokenInvalid, parsed.Issuer)
	}
	if !slices.Contains(parsed.Audience, tokenAudience) {
		return nil, fmt.Errorf("%w: unexpected audience", ErrTokenInvalid)
	}

	claims := &Claims{
		UserID:   parsed.Subject,
		Username: parsed.Username,
		Email:    parsed.Email,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time
	}
	return claims, nil
}
