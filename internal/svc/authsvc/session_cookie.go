package authsvc

import (
	"net/http"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
)

// SessionCookie builds the cookie that carries token back to the browser.
func (s *AuthService) SessionCookie(token string) *http.Cookie {
	//nolint:exhaustruct
	return &http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.Config.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   s.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ExpiredSessionCookie builds a cookie that makes the browser drop the session.
// The token itself stays valid until it ages out.
func (s *AuthService) ExpiredSessionCookie() *http.Cookie {
	//nolint:exhaustruct
	return &http.Cookie{
		Name:     domain.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   s.Config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
}
