package context

import (
	"context"
)

const contextKeyClientAddr = contextKey("clientAddr")

// ClientAddrFromContext extracts the address of the calling client from the context.
// Returns the address and true if present, or empty string and false if not present.
func ClientAddrFromContext(ctx context.Context) (string, bool) {
	addr, ok := ctx.Value(contextKeyClientAddr).(string)

	return addr, ok && addr != ""
}

// WithClientAddr creates a new context carrying the client address of the current request.
// Failed logins are reported with this address.
func WithClientAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, contextKeyClientAddr, addr)
}
