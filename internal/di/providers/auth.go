package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/logger"
)

// SigningKey wraps the token signing secret.
type SigningKey []byte

// ProvideSigningKey takes the key from configuration, or loads or generates
// one in the data directory.
func ProvideSigningKey(i do.Injector) (SigningKey, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Auth.SigningKey != "" {
		key, err := auth.ParseKey(cfg.Auth.SigningKey)
		if err != nil {
			return nil, err
		}
		log.Info("Signing key loaded from configuration")
		return SigningKey(key), nil
	}

	key, err := auth.LoadOrGenerateKey(cfg.Data.BasePath)
	if err != nil {
		return nil, err
	}

	log.Info("Signing key loaded", "path", cfg.Data.BasePath)

	return SigningKey(key), nil
}

// ProvideTokenService provides the session token service.
func ProvideTokenService(i do.Injector) (*auth.TokenService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	key := do.MustInvoke[SigningKey](i)
	log := do.MustInvoke[*logger.Logger](i)

	tokens, err := auth.NewTokenService(auth.Format(cfg.Auth.TokenFormat), key, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, err
	}

	log.Info("Token service ready", "format", tokens.Format(), "ttl", tokens.TTL())

	return tokens, nil
}
