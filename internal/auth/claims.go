package auth

import "time"

// Claims is the verified content of a session token.
// Token claims are signed but readable by anyone holding the token,
// so nothing secret belongs here.
type Claims struct {
	UserID    string    `json:"sub"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	IssuedAt  time.Time `json:"iat"`
	ExpiresAt time.Time `json:"exp"`
}

// Identity returns the authenticated identity described by the claims.
func (c *Claims) Identity() Identity {
	return Identity{
		UserID:   c.UserID,
		Username: c.Username,
		Email:    c.Email,
	}
}

// Identity is the authenticated caller attached to a request context.
type Identity struct {
	UserID   string
	Username string
	Email    string
}
