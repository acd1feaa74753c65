package http

import (
	"net"
	"net/http"
	"strings"

	context_ "github.com/mkrupp/homecase-dashboard/internal/infra/context"
)

const (
	ForwardedForHeader = "X-Forwarded-For"
	RealIPHeader       = "X-Real-IP"
)

// ClientAddrMiddleware stores the caller's IP address in the request context.
// Proxy headers are only honored when trustProxy is set.
func ClientAddrMiddleware(next http.Handler, trustProxy bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context_.WithClientAddr(r.Context(), ClientAddr(r, trustProxy))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ClientAddr returns the IP address of the client that sent r.
// With trustProxy, the left-most X-Forwarded-For entry or X-Real-IP wins over RemoteAddr.
func ClientAddr(r *http.Request, trustProxy bool) string {
	if trustProxy {
		if fwd := r.Header.Get(ForwardedForHeader); fwd != "" {
			first, _, _ := strings.Cut(fwd, ",")
			if first = strings.TrimSpace(first); first != "" {
				return first
			}
		}

		if realIP := strings.TrimSpace(r.Header.Get(RealIPHeader)); realIP != "" {
			return realIP
		}
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}
