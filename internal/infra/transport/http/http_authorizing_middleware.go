package http

import (
	"net/http"

	context_ "github.com/mkrupp/homecase-dashboard/internal/infra/context"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
)

// Authorizer checks whether a request is authenticated.
// It returns the principal on success and an error otherwise.
type Authorizer interface {
	Authorize(r *http.Request) (string, error)
}

// AuthorizingMiddleware creates middleware that only lets authenticated requests through.
// Rejected requests are passed to reject, or answered with 401 if reject is nil.
// On success, the principal is added to the request context.
func AuthorizingMiddleware(
	next http.Handler,
	authorizer Authorizer,
	reject http.Handler,
	log logging.Logger,
) http.Handler {
	if reject == nil {
		reject = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
		})
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal, err := authorizer.Authorize(r)
		if err != nil {
			log.DebugContext(r.Context(), "request not authorized", "error", err)
			reject.ServeHTTP(w, r)

			return
		}

		next.ServeHTTP(w, r.WithContext(context_.WithPrincipal(r.Context(), principal)))
	})
}
