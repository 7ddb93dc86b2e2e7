package auth

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"

	"aidanwoods.dev/go-paseto"
)

const pasetoHeader = "v4.public."

// pasetoCodec signs v4.public tokens. The claims are base64 encoded, not
// encrypted; the Ed25519 key pair is derived from the server secret.
type pasetoCodec struct {
	secret paseto.V4AsymmetricSecretKey
	public paseto.V4AsymmetricPublicKey
}

func newPasetoCodec(key []byte) (*pasetoCodec, error) {
	secret, err := paseto.NewV4AsymmetricSecretKeyFromSeed(hex.EncodeToString(key))
	if err != nil {
		return nil, fmt.Errorf("derive PASETO signing key: %w", err)
	}
	return &pasetoCodec{
		secret: secret,
		public: secret.Public(),
	}, nil
}

func (c *pasetoCodec) encode(claims Claims) (string, error) {
	token := paseto.NewToken()

	token.SetIssuer(tokenIssuer)
	token.SetAudience(tokenAudience)
	token.SetSubject(claims.UserID)
	token.SetIssuedAt(claims.IssuedAt)
	token.SetNotBefore(claims.IssuedAt)
	token.SetExpiration(claims.ExpiresAt)
	token.SetString("username", claims.Username)
	token.SetString("email", claims.Email)

	return token.V4Sign(c.secret, nil), nil
}

func (c *pasetoCodec) decode(raw string) (*Claims, error) {
	if !strings.HasPrefix(raw, pasetoHeader) {
		return nil, fmt.Errorf("%w: not a %s token", ErrTokenMalformed, strings.TrimSuffix(pasetoHeader, "."))
	}

	// Expiry is checked by TokenService so that its clock is authoritative.
	parser := paseto.MakeParser([]paseto.Rule{
		paseto.ForAudience(tokenAudience),
		paseto.IssuedBy(tokenIssuer),
	})

	token, err := parser.ParseV4Public(c.public, raw, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}

	var claims Claims
	if err := json.Unmarshal(token.ClaimsJSON(), &claims); err != nil {
		return nil, fmt.Errorf("%w: parse claims: %v", ErrTokenMalformed, err)
	}
	return &claims, nil
}
