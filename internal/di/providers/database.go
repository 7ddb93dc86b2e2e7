package providers

import (
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/logger"
	"github.com/listenupapp/bookshelf-server/internal/store"
	"github.com/listenupapp/bookshelf-server/internal/store/kv"
	"github.com/listenupapp/bookshelf-server/internal/store/sqlite"
)

// StoreHandle wraps the repository with shutdown capability.
type StoreHandle struct {
	store.Repository
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the repository selected by STORE_DRIVER.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	dbPath := cfg.DatabasePath()

	var (
		repo store.Repository
		err  error
	)
	switch cfg.Store.Driver {
	case config.StoreSQLite:
		repo, err = sqlite.Open(dbPath, log.Logger)
	default:
		repo, err = kv.Open(dbPath, log.Logger)
	}
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", cfg.Store.Driver, "path", dbPath)

	return &StoreHandle{Repository: repo}, nil
}
