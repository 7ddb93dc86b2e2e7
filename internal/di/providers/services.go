package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/logger"
	"github.com/listenupapp/bookshelf-server/internal/service"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

// ProvideValidator provides the request validator.
func ProvideValidator(_ do.Injector) (*validation.Validator, error) {
	return validation.New(), nil
}

// ProvideAuthService provides the account service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Repository, tokens, v, log.Logger), nil
}

// ProvideShelfService provides the saved-book service.
func ProvideShelfService(i do.Injector) (*service.ShelfService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	v := do.MustInvoke[*validation.Validator](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewShelfService(storeHandle.Repository, v, log.Logger), nil
}
