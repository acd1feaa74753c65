package authsvc

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
	context_ "github.com/mkrupp/homecase-dashboard/internal/infra/context"
	"github.com/mkrupp/homecase-dashboard/internal/infra/logging"
)

// Insecure defaults. They let the dashboard start out of the box and must be
// overridden in production.
const (
	DefaultPassword  = "changeme"
	DefaultSecretKey = "change-this-to-a-random-string"
)

var (
	ErrEmptyPassword  = errors.New("empty dashboard password")
	ErrInvalidMaxAge  = errors.New("session max age must be positive")
	ErrMaxAgeFraction = errors.New("session max age must be whole seconds")
)

// AuthConfig contains configuration parameters for the authentication service.
type AuthConfig struct {
	// Password is the shared password for the single dashboard user
	Password string `env:"DASHBOARD_PASSWORD" default:"changeme"`

	// SecretKey is the secret the session token signing key is derived from
	SecretKey string `env:"SECRET_KEY" default:"change-this-to-a-random-string"`

	// MaxAge is how long a session token and its cookie stay valid
	MaxAge time.Duration `env:"SESSION_MAX_AGE" default:"168h"` // 7 days

	// CookieSecure marks the session cookie Secure (HTTPS only)
	CookieSecure bool `env:"COOKIE_SECURE" default:"false"`
}

// Validate implements config.Validator.
func (cfg AuthConfig) Validate() error {
	switch {
	case cfg.Password == "":
		return ErrEmptyPassword
	case cfg.SecretKey == "":
		return ErrEmptySecretKey
	case cfg.MaxAge <= 0:
		return ErrInvalidMaxAge
	case cfg.MaxAge%time.Second != 0:
		return ErrMaxAgeFraction
	}

	return nil
}

// InsecureDefaults returns the names of settings still at their insecure default.
func (cfg AuthConfig) InsecureDefaults() []string {
	var names []string

	if cfg.Password == DefaultPassword {
		names = append(names, "DASHBOARD_PASSWORD")
	}

	if cfg.SecretKey == DefaultSecretKey {
		names = append(names, "SECRET_KEY")
	}

	return names
}

// AuthService checks the dashboard password and manages session tokens.
type AuthService struct {
	Config        AuthConfig
	Authenticator *Authenticator
	Log           logging.Logger

	passwordHash [sha256.Size]byte
}

// NewAuthService creates a new AuthService with the given configuration.
// Returns an error if the configuration is invalid.
func NewAuthService(ctx context.Context, cfg AuthConfig) (*AuthService, error) {
	log := logging.GetLogger("svc.authsvc.auth_service")

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	authenticator, err := NewAuthenticator(cfg.SecretKey)
	if err != nil {
		return nil, fmt.Errorf("new authenticator: %w", err)
	}

	if insecure := cfg.InsecureDefaults(); len(insecure) > 0 {
		log.WarnContext(ctx, "insecure default settings in use, override them in production",
			"settings", insecure)
	}

	return &AuthService{
		Config:        cfg,
		Authenticator: authenticator,
		Log:           log,
		passwordHash:  sha256.Sum256([]byte(cfg.Password)),
	}, nil
}

// Login checks the password and issues a session token for the dashboard user.
// Returns domain.ErrInvalidCredentials if the password is wrong.
func (s *AuthService) Login(ctx context.Context, password string) (_ string, err error) {
	client, _ := context_.ClientAddrFromContext(ctx)
	log := s.Log.With(logging.Group("login", "client", client))

	defer func() {
		switch {
		case errors.Is(err, domain.ErrInvalidCredentials):
			log.WarnContext(ctx, "invalid login attempt")
		case err != nil:
			log.ErrorContext(ctx, "login failed", "error", err)
		default:
			log.InfoContext(ctx, "login successful")
		}
	}()

	// Digests have a fixed length, so the comparison time does not depend on the input.
	hash := sha256.Sum256([]byte(password))
	if !hmac.Equal(hash[:], s.passwordHash[:]) {
		return "", domain.ErrInvalidCredentials
	}

	token, err := s.Authenticator.Issue(domain.PrincipalUser)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}

	return token, nil
}

// Authenticate verifies a session token against the configured max age.
// Returns the principal, or an error wrapping domain.ErrInvalidSessionToken.
func (s *AuthService) Authenticate(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrNoSessionToken
	}

	principal, err := s.Authenticator.Verify(token, s.Config.MaxAge)
	if err != nil {
		s.Log.DebugContext(ctx, "session token rejected", "error", err)

		return "", fmt.Errorf("verify token: %w", err)
	}

	return principal, nil
}

// Authorize implements the transport Authorizer by authenticating the request's session cookie.
func (s *AuthService) Authorize(r *http.Request) (string, error) {
	cookie, err := r.Cookie(domain.SessionCookieName)
	if err != nil {
		return "", domain.ErrNoSessionToken
	}

	return s.Authenticate(r.Context(), cookie.Value)
}
