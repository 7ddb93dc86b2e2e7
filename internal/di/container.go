// Package di provides dependency injection configuration for the Bookshelf server.
package di

import (
	"github.com/graph-gophers/graphql-go"
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/di/providers"
	"github.com/listenupapp/bookshelf-server/internal/logger"
	"github.com/listenupapp/bookshelf-server/internal/metrics"
	"github.com/listenupapp/bookshelf-server/internal/service"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

// NewContainer creates and configures the DI container with all providers.
// args are the command-line arguments, without the program name.
func NewContainer(args []string) *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ConfigProvider(args))
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)
	do.Provide(injector, providers.ProvideValidator)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Auth layer
	do.Provide(injector, providers.ProvideSigningKey)
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideShelfService)

	// Server
	do.Provide(injector, providers.ProvideSchema)
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services, which starts the HTTP server.
// Providers are lazy, so this is where configuration and startup errors
// surface.
func Bootstrap(injector *do.RootScope) (err error) {
	// MustInvoke panics on provider errors; report them as an error instead.
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			panic(r)
		}
	}()

	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[*metrics.Metrics](injector)
	_ = do.MustInvoke[*validation.Validator](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[providers.SigningKey](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.ShelfService](injector)
	_ = do.MustInvoke[*graphql.Schema](injector)
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
