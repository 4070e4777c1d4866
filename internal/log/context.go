package log

import (
	"context"
	"log/slog"
)

type attrsKey struct{}

func attrsFromContext(ctx context.Context) []slog.Attr {
	attrs, _ := ctx.Value(attrsKey{}).([]slog.Attr)
	return attrs
}

// ContextWithAttrs returns a context carrying attrs in addition to any attrs
// already in ctx. Records logged with the returned context (or a descendant)
// through a handler from NewContextLogHandler include them.
func ContextWithAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	if len(attrs) == 0 {
		return ctx
	}
	parent := attrsFromContext(ctx)
	// copy, so sibling contexts never share a backing array
	combined := make([]slog.Attr, 0, len(parent)+len(attrs))
	combined = append(combined, parent...)
	combined = append(combined, attrs...)
	return context.WithValue(ctx, attrsKey{}, combined)
}

// ClearContextAttrs returns a context without the attrs added by ContextWithAttrs.
func ClearContextAttrs(ctx context.Context) context.Context {
	if attrsFromContext(ctx) == nil {
		return ctx
	}
	return context.WithValue(ctx, attrsKey{}, []slog.Attr(nil))
}

type contextLogHandler struct {
	slog.Handler
}

// NewContextLogHandler wraps handler so that attrs stored in the context
// with ContextWithAttrs are added to every record.
func NewContextLogHandler(handler slog.Handler) slog.Handler {
	return &contextLogHandler{Handler: handler}
}

func (h *contextLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if attrs := attrsFromContext(ctx); len(attrs) > 0 {
		r.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, r)
}

func (h *contextLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextLogHandler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h *contextLogHandler) WithGroup(name string) slog.Handler {
	return &contextLogHandler{Handler: h.Handler.WithGroup(name)}
}
