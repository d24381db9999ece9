// Package token reads the claims of a bearer JWT without verifying its
// signature. Verification is the backend's job; the client only needs the
// subject and the expiry to manage its own session.
package token

import (
	"strings"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-hospital-client/internal/utils"
	"github.com/pkg/errors"
)

var (
	ErrMalformed  = errors.New("malformed token")
	ErrMissingExp = errors.New("token missing exp claim")
)

// userIDClaims are tried in order; the backend issues user_id.
var userIDClaims = []string{"user_id", "user", "userId", "sub"}

// Claims are the parts of an access token the client cares about.
type Claims struct {
	UserID    int64     // 0 when the token names no numeric user
	Subject   string    // raw subject claim, if any
	ExpiresAt time.Time // always set; tokens without exp are rejected
	IssuedAt  time.Time
	TokenType string // e.g. "access" for the backend's access tokens
	JTI       string
}

// Decode parses raw without verifying its signature or validating its
// time-based claims. A token that is not a JWT, or that carries no exp,
// is an error.
func Decode(raw string) (*Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrMalformed
	}

	parsed, _, err := jwtlib.NewParser().ParseUnverified(raw, jwtlib.MapClaims{})
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	mapClaims, ok := parsed.Claims.(jwtlib.MapClaims)
	if !ok {
		return nil, errors.Wrap(ErrMalformed, "unexpected claims type")
	}

	exp, err := mapClaims.GetExpirationTime()
	if err != nil {
		return nil, errors.Wrap(ErrMalformed, err.Error())
	}
	if exp == nil {
		return nil, ErrMissingExp
	}

	c := &Claims{ExpiresAt: exp.Time}
	if iat, err := mapClaims.GetIssuedAt(); err == nil && iat != nil {
		c.IssuedAt = iat.Time
	}
	c.Subject, _ = mapClaims.GetSubject()
	c.TokenType, _ = mapClaims["token_type"].(string)
	c.JTI, _ = mapClaims["jti"].(string)

	for _, name := range userIDClaims {
		if id, ok := utils.ToInt64(mapClaims[name]); ok && id > 0 {
			c.UserID = id
			break
		}
	}
	return c, nil
}

// Expired reports whether now is at or past the expiry.
func (c *Claims) Expired(now time.Time) bool {
	return !now.Before(c.ExpiresAt)
}

// Remaining is the lifetime left at now, never negative.
func (c *Claims) Remaining(now time.Time) time.Duration {
	if d := c.ExpiresAt.Sub(now); d > 0 {
		return d
	}
	return 0
}
