package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-cms-autotranslate/pkg/interfaces"
)

type contextKey string

const contextFieldsKey contextKey = "autotranslate.logging.fields"

// ContextWithFields stores logging fields on ctx, merged over any fields
// already present.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}

	existing := ContextFields(ctx)
	merged := make(map[string]any, len(existing)+len(fields))
	maps.Copy(merged, existing)
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns a copy of the fields stored on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}

// FromContext attaches the fields stored on ctx to logger.
func FromContext(ctx context.Context, logger interfaces.Logger) interfaces.Logger {
	return WithFields(Ensure(logger), ContextFields(ctx))
}
