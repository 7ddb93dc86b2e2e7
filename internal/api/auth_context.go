package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/metrics"
)

// authContext returns a middleware that verifies a Bearer token and stores
// the caller's identity in the request context.
// A missing or bad token never rejects the request: it just continues
// without an identity, and resolvers that need one refuse on their own.
func authContext(tokens *auth.TokenService, m *metrics.Metrics, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			claims, err := tokens.Verify(token)
			if err != nil {
				m.ObserveToken(tokenResult(err))
				logger.Debug("Ignoring bearer token", "error", err, "request_id", r.Header.Get("X-Request-Id"))
				next.ServeHTTP(w, r)
				return
			}

			m.ObserveToken(metrics.TokenValid)
			ctx := auth.WithIdentity(r.Context(), claims.Identity())
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// bearerToken extracts the credential from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func tokenResult(err error) string {
	switch {
	case errors.Is(err, auth.ErrTokenExpired):
		return metrics.TokenExpired
	case errors.Is(err, auth.ErrTokenMalformed):
		return metrics.TokenMalformed
	default:
		return metrics.TokenInvalid
	}
}
