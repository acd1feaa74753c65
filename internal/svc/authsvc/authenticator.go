package authsvc

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mkrupp/homecase-dashboard/internal/domain"
)

// ErrEmptyPrincipal is returned when issuing a token without a principal.
var ErrEmptyPrincipal = errors.New("empty principal")

// Authenticator issues and verifies session tokens.
//
// A token is an HS256 JWT carrying the principal as subject and the issuance time.
// There is no server-side state: a token is valid for as long as its signature
// checks out and it is younger than the max age passed to Verify.
type Authenticator struct {
	key []byte
	now func() time.Time
}

// NewAuthenticator creates an Authenticator signing with a key derived from secret.
func NewAuthenticator(secret string) (*Authenticator, error) {
	key, err := DeriveSigningKey(secret)
	if err != nil {
		return nil, fmt.Errorf("derive signing key: %w", err)
	}

	return &Authenticator{key: key, now: time.Now}, nil
}

// WithClock returns a copy of the Authenticator that reads the current time from now.
func (a *Authenticator) WithClock(now func() time.Time) *Authenticator {
	return &Authenticator{key: a.key, now: now}
}

// Issue creates a signed token for principal, stamped with the current time.
func (a *Authenticator) Issue(principal string) (string, error) {
	if principal == "" {
		return "", ErrEmptyPrincipal
	}

	//nolint:exhaustruct
	claims := jwt.RegisteredClaims{
		Subject:  principal,
		IssuedAt: jwt.NewNumericDate(a.now()),
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return token, nil
}

// Verify checks the token signature and age and returns the embedded principal.
// A token exactly maxAge old is still valid.
// Every failure wraps domain.ErrInvalidSessionToken.
func (a *Authenticator) Verify(token string, maxAge time.Duration) (string, error) {
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(a.now),
		jwt.WithStrictDecoding(),
	)

	var claims jwt.RegisteredClaims

	if _, err := parser.ParseWithClaims(token, &claims, a.keyFunc); err != nil {
		return "", errors.Join(domain.ErrInvalidSessionToken, err)
	}

	if claims.IssuedAt == nil {
		return "", fmt.Errorf("%w: missing issue time", domain.ErrInvalidSessionToken)
	}

	if age := a.now().Sub(claims.IssuedAt.Time); age > maxAge {
		return "", fmt.Errorf("%w: expired %s ago", domain.ErrInvalidSessionToken, age-maxAge)
	}

	if claims.Subject == "" {
		return "", fmt.Errorf("%w: missing subject", domain.ErrInvalidSessionToken)
	}

	return claims.Subject, nil
}

func (a *Authenticator) keyFunc(*jwt.Token) (any, error) {
	return a.key, nil
}
