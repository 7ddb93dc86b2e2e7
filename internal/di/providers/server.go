package providers

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/graph-gophers/graphql-go"
	"github.com/samber/do/v2"

	"github.com/listenupapp/bookshelf-server/internal/api"
	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/config"
	"github.com/listenupapp/bookshelf-server/internal/graph"
	"github.com/listenupapp/bookshelf-server/internal/logger"
	"github.com/listenupapp/bookshelf-server/internal/metrics"
	"github.com/listenupapp/bookshelf-server/internal/service"
)

// ProvideSchema provides the executable GraphQL schema.
func ProvideSchema(i do.Injector) (*graphql.Schema, error) {
	authService := do.MustInvoke[*service.AuthService](i)
	shelfService := do.MustInvoke[*service.ShelfService](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	return graph.NewSchema(graph.NewResolver(authService, shelfService, m, log.Logger))
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	// BoundAddr is the listen address actually bound, useful when PORT is 0.
	BoundAddr net.Addr
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server, already listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokens := do.MustInvoke[*auth.TokenService](i)
	schema := do.MustInvoke[*graphql.Schema](i)
	m := do.MustInvoke[*metrics.Metrics](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(storeHandle.Repository, tokens, schema, m, api.Options{
		CORSOrigins: cfg.Server.CORSOrigins,
		StaticDir:   cfg.Server.StaticDir,
	}, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Bind before returning so a taken port fails bootstrap.
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, err
	}

	// Start in background
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", ln.Addr().String(), "graphql", "/graphql")

	return &HTTPServerHandle{Server: srv, BoundAddr: ln.Addr()}, nil
}
