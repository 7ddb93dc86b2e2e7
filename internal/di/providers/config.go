// Package providers contains dependency injection providers for the Bookshelf server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/logger"
)

// ConfigProvider provides the application configuration parsed from args.
func ConfigProvider(args []string) do.Provider[*config.Config] {
	return func(do.Injector) (*config.Config, error) {
		return config.Load(args)
	}
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)

	log := logger.New(logger.Config{
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.Environment == "development",
		Environment: cfg.App.Environment,
	})

	log.Info("Starting Bookshelf Server",
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_path", cfg.Data.BasePath,
		"store", cfg.Store.Driver,
		"token_format", cfg.Auth.TokenFormat,
	)

	return log, nil
}
