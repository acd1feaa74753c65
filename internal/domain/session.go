package domain

import "errors"

// PrincipalUser is the identity embedded in every session token.
// The dashboard has exactly one user, so this is a constant.
const PrincipalUser = "user"

// SessionCookieName is the name of the cookie carrying the session token.
const SessionCookieName = "session"

var (
	// ErrNoSessionToken is returned when a request carries no session cookie.
	ErrNoSessionToken = errors.New("no session token")
	// ErrInvalidSessionToken is returned for any token that fails verification:
	// bad signature, malformed encoding, missing claims or exceeded max age.
	ErrInvalidSessionToken = errors.New("invalid session token")
	// ErrInvalidCredentials is returned when the submitted password is wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")
)
