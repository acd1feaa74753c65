package authsvc

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
	http_ "github.com/mkrupp/homecase-dashboard/internal/infra/transport/http"
	"github.com/mkrupp/homecase-dashboard/internal/infra/web"
)

// ErrNoPassword is returned when the password is missing from the login form.
var ErrNoPassword = errors.New("no password")

// Messages shown on the login form.
const (
	MessageInvalidPassword = "Invalid password"
	MessageNoPassword      = "Password required"
)

// HTTPTransportConfig contains configuration parameters for the auth endpoints.
type HTTPTransportConfig struct {
	// Title is shown on the login page
	Title string `env:"TITLE" default:"Home Dashboard"`
}

// HTTPTransport handles the login, logout and auth check endpoints.
type HTTPTransport struct {
	authSvc *AuthService
	pages   *web.Renderer
	log     logging.Logger
	cfg     HTTPTransportConfig
	mux     *http.ServeMux
}

var _ http_.HTTPTransport = (*HTTPTransport)(nil)

// NewHTTPTransport creates a new HTTPTransport instance with the given configuration.
func NewHTTPTransport(
	authSvc *AuthService,
	pages *web.Renderer,
	cfg HTTPTransportConfig,
) *HTTPTransport {
	ht := &HTTPTransport{
		authSvc: authSvc,
		pages:   pages,
		log:     logging.GetLogger("svc.authsvc.http_transport"),
		cfg:     cfg,
		mux:     http.NewServeMux(),
	}

	ht.Routes(ht.mux)

	return ht
}

// Routes registers the auth endpoints on mux:
// - GET /login: Login form
// - POST /login: Check password and set the session cookie
// - GET /logout: Drop the session cookie
// - GET /auth/check: 200 if the session cookie is valid, 401 otherwise.
func (ht *HTTPTransport) Routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /login", ht.HandleLoginPage)
	mux.HandleFunc("POST /login", ht.HandleLogin)
	mux.HandleFunc("GET /logout", ht.HandleLogout)
	mux.HandleFunc("GET /auth/check", ht.HandleCheck)
}

// ServeHTTP implements http.Handler.
func (ht *HTTPTransport) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ht.mux.ServeHTTP(w, r)
}

// HandleLoginPage renders the login form, or sends authenticated users to the dashboard.
func (ht *HTTPTransport) HandleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, err := ht.authSvc.Authorize(r); err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)

		return
	}

	ht.renderLogin(w, r, http.StatusOK, "")
}

// HandleLogin processes login form submissions.
// Expects form parameter: password.
func (ht *HTTPTransport) HandleLogin(w http.ResponseWriter, r *http.Request) {
	_ = ht.handleLogin(w, r)
}

func (ht *HTTPTransport) handleLogin(w http.ResponseWriter, r *http.Request) (err error) {
	log := ht.log.With(logging.Group("http", "method", r.Method, "url", r.URL.String()))

	defer func(ctx context.Context) {
		if err != nil {
			log.DebugContext(ctx, "user login failed", "error", err)
		} else {
			log.DebugContext(ctx, "user logged in")
		}
	}(r.Context())

	if err := r.ParseForm(); err != nil {
		http.Error(w, http.StatusText(http.StatusBadRequest), http.StatusBadRequest)

		return fmt.Errorf("parse form: %w", err)
	}

	password := r.PostFormValue("password")
	if password == "" {
		ht.renderLogin(w, r, http.StatusBadRequest, MessageNoPassword)

		return ErrNoPassword
	}

	token, err := ht.authSvc.Login(r.Context(), password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			ht.renderLogin(w, r, http.StatusUnauthorized, MessageInvalidPassword)
		} else {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}

		return fmt.Errorf("login: %w", err)
	}

	http.SetCookie(w, ht.authSvc.SessionCookie(token))
	http.Redirect(w, r, "/", http.StatusSeeOther)

	return nil
}

// HandleLogout drops the session cookie and redirects to the login form.
func (ht *HTTPTransport) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, ht.authSvc.ExpiredSessionCookie())
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

// HandleCheck answers reverse-proxy auth subrequests.
// Responds 200 with the principal if the session cookie is valid, 401 otherwise.
func (ht *HTTPTransport) HandleCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-store")

	principal, err := ht.authSvc.Authorize(r)
	if err != nil {
		http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	if _, err := w.Write([]byte(principal)); err != nil {
		ht.log.ErrorContext(r.Context(), "write auth check response failed", "error", err)
	}
}

func (ht *HTTPTransport) renderLogin(w http.ResponseWriter, r *http.Request, status int, message string) {
	page := web.LoginPage{Title: ht.cfg.Title, Error: message}

	if err := ht.pages.Render(w, web.PageLogin, status, page); err != nil {
		ht.log.ErrorContext(r.Context(), "render login page failed", "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}
