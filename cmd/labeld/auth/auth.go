// Package auth identifies users of requests by HS256-signed bearer tokens.
//
// The user id is the "sub" claim of the token.
package auth

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	apierr "github.com/opst/knitlabel/pkg/api/types/errors"
	xe "github.com/opst/knitlabel/pkg/errors"
)

var ErrInvalidToken = errors.New("invalid token")

// key of echo.Context where the user id is stored
const contextKey = "knitlabel.user"

// LoadKey reads a signing key from file. Trailing spaces and newlines are dropped.
func LoadKey(path string) ([]byte, error) {
	k, err := os.ReadFile(path)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	k = bytes.TrimSpace(k)
	if len(k) == 0 {
		return nil, xe.New("signing key is empty: " + path)
	}
	return k, nil
}

type Verifier struct {
	key []byte
	now func() time.Time
}

type Option func(*Verifier)

func WithClock(now func() time.Time) Option {
	return func(v *Verifier) {
		v.now = now
	}
}

func NewVerifier(key []byte, options ...Option) *Verifier {
	v := &Verifier{key: key, now: time.Now}
	for _, o := range options {
		o(v)
	}
	return v
}

// Verify checks the token, and returns its subject.
//
// # Returns
//
// - string: user id
//
// - error: ErrInvalidToken when the token is malformed, expired, badly signed or has no subject.
func (v *Verifier) Verify(token string) (string, error) {
	claims := new(jwt.RegisteredClaims)
	_, err := jwt.ParseWithClaims(
		token, claims,
		func(*jwt.Token) (interface{}, error) { return v.key, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}),
		jwt.WithTimeFunc(v.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return "", errors.Join(ErrInvalidToken, err)
	}
	if sub == "" {
		return "", fmt.Errorf("%w: no subject", ErrInvalidToken)
	}
	return sub, nil
}

// Middleware rejects requests without a valid bearer token with 401,
// and stores the user id for handlers.
func (v *Verifier) Middleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(echo.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			return apierr.NewErrorMessage(401, "unauthorized", apierr.WithAdvice("set bearer token"))
		}
		user, err := v.Verify(token)
		if err != nil {
			return apierr.NewErrorMessage(401, "unauthorized", apierr.WithError(err))
		}
		c.Set(contextKey, user)
		return next(c)
	}
}

// User returns the user id of the request. It is empty if the request is not authorized.
func User(c echo.Context) string {
	u, _ := c.Get(contextKey).(string)
	return u
}

// WithUser stores the user id into the context as Middleware does.
func WithUser(c echo.Context, user string) {
	c.Set(contextKey, user)
}

// Sign issues a token for the user.
func Sign(key []byte, user string, expiresAt time.Time) (string, error) {
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   user,
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	return tok.SignedString(key)
}
