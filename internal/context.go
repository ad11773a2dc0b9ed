package internal

import (
	"context"

	"github.com/google/uuid"

	"github.com/dmitrymomot/paperco/pkg/logger"
)

// runIDKey is the context key for storing the run ID.
type runIDKey struct{}

// NewRunID returns a fresh random run identifier.
func NewRunID() string {
	return uuid.NewString()
}

// ContextWithRunID returns a copy of ctx carrying the run ID.
func ContextWithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFromContext returns the run ID stored in ctx.
func RunIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(runIDKey{}).(string)
	return id, ok && id != ""
}

// RunIDExtractor returns a logger extractor that stamps every record logged
// with a run context as run_id.
func RunIDExtractor() logger.ContextExtractor {
	return logger.StringExtractor("run_id", RunIDFromContext)
}
