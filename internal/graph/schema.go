// Package graph is the GraphQL surface: the schema, its resolvers, and the
// mapping of service errors onto GraphQL errors.
package graph

import (
	"context"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/graph-gophers/graphql-go"
)

//go:embed schema.graphql
var schemaSDL string

// maxQueryDepth bounds selection nesting. The deepest legal query is
// Auth.user.savedBooks.authors.
const maxQueryDepth = 8

// NewSchema parses the schema and binds it to resolver.
func NewSchema(resolver *Resolver) (*graphql.Schema, error) {
	schema, err := graphql.ParseSchema(schemaSDL, resolver,
		graphql.MaxDepth(maxQueryDepth),
		graphql.Logger(panicLogger{logger: resolver.logger}),
	)
	if err != nil {
		return nil, fmt.Errorf("parse graphql schema: %w", err)
	}
	return schema, nil
}

// panicLogger routes resolver panics recovered by the executor to slog.
type panicLogger struct {
	logger *slog.Logger
}

func (l panicLogger) LogPanic(ctx context.Context, value any) {
	l.logger.ErrorContext(ctx, "graphql resolver panic", "panic", value)
}
