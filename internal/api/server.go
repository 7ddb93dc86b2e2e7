// Package api provides the HTTP server for the Bookshelf application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/graph-gophers/graphql-go"
	"github.com/graph-gophers/graphql-go/relay"

	"github.com/listenupapp/bookshelf-server/internal/auth"
	"github.com/listenupapp/bookshelf-server/internal/metrics"
	"github.com/listenupapp/bookshelf-server/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options holds the transport settings taken from configuration.
type Options struct {
	// CORSOrigins lists allowed browser origins. Empty means "*".
	CORSOrigins []string
	// StaticDir, when set, serves a built client with index.html fallback.
	StaticDir string
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store   store.Repository
	tokens  *auth.TokenService
	schema  *graphql.Schema
	metrics *metrics.Metrics
	opts    Options
	router  *chi.Mux
	api     huma.API
	logger  *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
// metrics and logger may be nil.
func NewServer(
	store store.Repository,
	tokens *auth.TokenService,
	schema *graphql.Schema,
	m *metrics.Metrics,
	opts Options,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		store:   store,
		tokens:  tokens,
		schema:  schema,
		metrics: m,
		opts:    opts,
		router:  chi.NewRouter(),
		logger:  logger,
	}

	s.setupMiddleware()

	humaConfig := huma.DefaultConfig("Bookshelf API", Version)
	s.api = humachi.New(s.router, humaConfig)

	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metrics.Middleware)

	origins := s.opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}))

	s.router.Use(authContext(s.tokens, s.metrics, s.logger))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.registerHealthRoutes()

	// GraphQL always answers 200 with a data/errors envelope.
	s.router.Method(http.MethodPost, "/graphql", &relay.Handler{Schema: s.schema})

	s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())

	if s.opts.StaticDir != "" {
		s.router.NotFound(spaHandler(s.opts.StaticDir))
	}
}
