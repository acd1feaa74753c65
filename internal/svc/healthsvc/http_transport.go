package healthsvc

import (
	"encoding/json"
	"net/http"

	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-dashboard/internal/infra/transport/http"
)

// HTTPTransport serves the health endpoint. It needs no session.
type HTTPTransport struct {
	healthSvc *HealthService
	log       logging.Logger
	mux       *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance.
func NewHTTPTransport(healthSvc *HealthService) *HTTPTransport {
	ht := &HTTPTransport{
		healthSvc: healthSvc,
		log:       logging.GetLogger("svc.healthsvc.http_transport"),
		mux:       http.NewServeMux(),
	}

	ht.Routes(ht.mux)

	return ht
}

// Routes registers the health endpoint on mux:
// - GET /health: {"status":"healthy"}
func (ht *HTTPTransport) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", ht.HandleHealth)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleHealth writes the current status as JSON.
func (ht *HTTPTransport) HandleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")

	if err := json.NewEncoder(w).Encode(ht.healthSvc.Check(r.Context())); err != nil {
		ht.log.ErrorContext(r.Context(), "encode health response failed", "error", err)
	}
}
