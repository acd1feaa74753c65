package iconsvc

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"strconv"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-dashboard/internal/infra/transport/http"
)

// HTTPTransportConfig contains configuration parameters for the icon endpoint.
type HTTPTransportConfig struct {
	// URLWidthParam is the URL parameter for specifying icon resize width.
	URLWidthParam string `env:"URL_WIDTH_PARAM" default:"width"`

	// CacheMaxAge is sent to browsers in the Cache-Control header.
	CacheMaxAge int `env:"CACHE_MAX_AGE" default:"86400"`
}

// HTTPTransport serves icon files to signed-in users.
type HTTPTransport struct {
	iconSvc    IconService
	authorizer http_.Authorizer
	log        logging.Logger
	cfg        HTTPTransportConfig
	mux        *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
// It requires an IconService for reading icons and an Authorizer for authentication.
func NewHTTPTransport(
	iconSvc IconService,
	authorizer http_.Authorizer,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	ht := &HTTPTransport{
		iconSvc:    iconSvc,
		authorizer: authorizer,
		log:        logging.GetLogger("svc.iconsvc.http_transport"),
		cfg:        cfg,
		mux:        http.NewServeMux(),
	}

	ht.Routes(ht.mux)

	return ht
}

// Routes registers the icon endpoint on mux:
// - GET /icons/{name...}: Icon file, optionally resized with ?width=N
// The route is protected by authentication middleware.
func (ht *HTTPTransport) Routes(mux *http.ServeMux) {
	handler := http.Handler(http.HandlerFunc(ht.HandleIcon))
	handler = http_.AuthorizingMiddleware(handler, ht.authorizer, nil, ht.log)

	mux.Handle("GET /icons/{name...}", handler)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleIcon processes icon requests.
// Expects the icon file name as path and an optional width parameter for resizing.
func (ht *HTTPTransport) HandleIcon(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleIcon(w, r)
}

func (ht *HTTPTransport) handleIcon(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "icon request failed", "error", err)
		} else {
			log.DebugContext(ctx, "icon served")
		}
	}(r.Context())

	name := r.PathValue("name")

	var width int

	if widthStr := r.URL.Query().Get(ht.cfg.URLWidthParam); widthStr != "" {
		width, err = strconv.Atoi(widthStr)
		if err != nil || width < 0 {
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

			return fmt.Errorf("%w: %q", domain.ErrInvalidIconWidth, widthStr)
		}
	}

	icon, err := ht.iconSvc.Fetch(r.Context(), name, width)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
		case errors.Is(err, domain.ErrInvalidIconWidth):
			http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)
		default:
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("fetch: %w", err)
	}

	w.Header().Set("Content-Type", icon.MIMEType)
	w.Header().Set("Cache-Control", "private, max-age="+strconv.Itoa(ht.cfg.CacheMaxAge))
	w.Header().Set("X-Content-Type-Options", "nosniff")

	http.ServeContent(w, r, icon.Name, icon.ModTime, icon.Read())

	return nil
}
