package dashboardsvc

import (
	"net/http"

	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-dashboard/internal/infra/transport/http"
	"github.com/mkrupp/homecase-dashboard/internal/infra/web"
)

// HTTPTransport serves the dashboard page and its static assets.
type HTTPTransport struct {
	dashboardSvc *DashboardService
	authorizer   http_.Authorizer
	pages        *web.Renderer
	log          logging.Logger
	mux          *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance.
// Requests without a valid session are sent to the login page.
func NewHTTPTransport(
	dashboardSvc *DashboardService,
	authorizer http_.Authorizer,
	pages *web.Renderer,
) *HTTPTransport {
	ht := &HTTPTransport{
		dashboardSvc: dashboardSvc,
		authorizer:   authorizer,
		pages:        pages,
		log:          logging.GetLogger("svc.dashboardsvc.http_transport"),
		mux:          http.NewServeMux(),
	}

	ht.Routes(ht.mux)

	return ht
}

// Routes registers the dashboard endpoints on mux:
// - GET /{$}: Service list, for signed-in users only
// - GET /static/: Stylesheet and other assets
func (ht *HTTPTransport) Routes(mux *http.ServeMux) {
	toLogin := http.RedirectHandler("/login", http.StatusSeeOther)

	dashboard := http.Handler(http.HandlerFunc(ht.HandleDashboard))
	dashboard = http_.AuthorizingMiddleware(dashboard, ht.authorizer, toLogin, ht.log)

	mux.Handle("GET /{$}", dashboard)
	mux.Handle("GET /static/", http.StripPrefix("/static/", web.StaticHandler()))
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleDashboard renders the service list.
func (ht *HTTPTransport) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	page := ht.dashboardSvc.Page(r.Context())

	w.Header().Set("Cache-Control", "no-store")

	if err := ht.pages.Render(w, web.PageDashboard, http.StatusOK, page); err != nil {
		ht.log.ErrorContext(r.Context(), "render dashboard failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
