// Package logging defines a minimal structured-logging interface used across
// the project and its zap-backed implementation.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "starting server", "addr", addr, "driver", driver)
type Logger interface {
	// Debug logs a message useful only while diagnosing problems.
	Debug(ctx context.Context, msg string, args ...any)
	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)
	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)
	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)
	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

type ctxFieldsKey struct{}

// ContextWithFields returns a context carrying key–value pairs that every
// Logger call made with it will include (request ids, user ids).
func ContextWithFields(ctx context.Context, args ...any) context.Context {
	prev := fieldsFromContext(ctx)
	merged := make([]any, 0, len(prev)+len(args))
	merged = append(merged, prev...)
	merged = append(merged, args...)
	return context.WithValue(ctx, ctxFieldsKey{}, merged)
}

func fieldsFromContext(ctx context.Context) []any {
	if ctx == nil {
		return nil
	}
	fields, _ := ctx.Value(ctxFieldsKey{}).([]any)
	return fields
}
