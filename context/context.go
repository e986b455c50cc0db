// Package context carries request-scoped values (correlation id, logger)
// across the registrar, the modules and the adapters.
package context

import (
	"context"

	"github.com/abhissng/chargehub/adapters/log"
	"github.com/abhissng/chargehub/utils/constant"
	"github.com/abhissng/chargehub/utils/random"
	"github.com/abhissng/chargehub/utils/types"
)

type ctxKey string

const (
	correlationIDKey ctxKey = constant.CorrelationID
	loggerKey        ctxKey = "logger"
)

// WithCorrelationID returns a copy of ctx carrying id.
func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// WithGeneratedCorrelationID stores a fresh UUID unless ctx already carries one.
func WithGeneratedCorrelationID(ctx context.Context) (context.Context, types.CorrelationID) {
	if id, ok := CorrelationID(ctx); ok {
		return ctx, id
	}
	id := random.GenerateUUIDString()
	return WithCorrelationID(ctx, id), types.CorrelationID(id)
}

// CorrelationID retrieves the correlation id stored in ctx.
func CorrelationID(ctx context.Context) (types.CorrelationID, bool) {
	if ctx == nil {
		return "", false
	}
	id, ok := ctx.Value(correlationIDKey).(string)
	if !ok || id == "" {
		return "", false
	}
	return types.CorrelationID(id), true
}

// WithLogger returns a copy of ctx carrying logger.
func WithLogger(ctx context.Context, logger *log.Log) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the logger stored in ctx, or fallback when none is set.
// The returned logger is tagged with the correlation id when one is present.
func Logger(ctx context.Context, fallback *log.Log) *log.Log {
	logger := fallback
	if ctx != nil {
		if l, ok := ctx.Value(loggerKey).(*log.Log); ok && l != nil {
			logger = l
		}
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if id, ok := CorrelationID(ctx); ok {
		return logger.With(log.String(constant.CorrelationID, id.String()))
	}
	return logger
}
