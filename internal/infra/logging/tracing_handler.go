package logging

import (
	"context"
	"log/slog"

	context_ "github.com/mkrupp/homecase-dashboard/internal/infra/context"
)

// TracingHandler wraps another slog.Handler and adds the request trace id,
// client address and signed-in principal from the context to every record.
type TracingHandler struct {
	h slog.Handler
}

var _ slog.Handler = (*TracingHandler)(nil)

// NewTracingHandler creates a new TracingHandler wrapping the given handler.
func NewTracingHandler(h slog.Handler) *TracingHandler {
	return &TracingHandler{h: h}
}

// Handle implements slog.Handler.
func (h *TracingHandler) Handle(ctx context.Context, r slog.Record) error {
	traceID, hasTraceID := context_.TraceIDFromContext(ctx)
	clientAddr, hasClientAddr := context_.ClientAddrFromContext(ctx)
	principal, hasPrincipal := context_.PrincipalFromContext(ctx)

	if hasTraceID || hasClientAddr || hasPrincipal {
		var attrs []any
		if hasTraceID {
			attrs = append(attrs, slog.String("id", traceID))
		}

		if hasClientAddr {
			attrs = append(attrs, slog.String("client", clientAddr))
		}

		if hasPrincipal {
			attrs = append(attrs, slog.String("principal", principal))
		}

		r.AddAttrs(slog.Group("trace", attrs...))
	}

	//nolint:wrapcheck
	return h.h.Handle(ctx, r)
}

// WithAttrs implements slog.Handler.WithAttrs.
func (h *TracingHandler) WithAttrs(attrs []slog.Attr) Handler {
	return NewTracingHandler(h.h.WithAttrs(attrs))
}

// WithGroup implements slog.Handler.WithGroup.
func (h *TracingHandler) WithGroup(name string) Handler {
	return NewTracingHandler(h.h.WithGroup(name))
}

// Enabled implements slog.Handler.Enabled.
func (h *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.h.Enabled(ctx, level)
}
