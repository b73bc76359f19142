package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// CookieName is the browser cookie carrying the signed session id.
const CookieName = "portfolio_session"

const issuer = "portfolio-site"

// Tokens signs and verifies the session cookie. The cookie only carries the
// session id; identity stays in the Store.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens builds an HS256 signer. now may be nil.
func NewTokens(secret string, ttl time.Duration, now func() time.Time) *Tokens {
	if now == nil {
		now = time.Now
	}
	return &Tokens{secret: []byte(secret), ttl: ttl, now: now}
}

// NewSessionID returns a fresh random browser session id.
func NewSessionID() string {
	return uuid.NewString()
}

// TTL is the cookie lifetime.
func (t *Tokens) TTL() time.Duration {
	return t.ttl
}

// Issue signs a cookie value for sid.
func (t *Tokens) Issue(sid string) (string, error) {
	now := t.now()
	claims := jwt.RegisteredClaims{
		ID:        sid,
		Issuer:    issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.secret)
}

// Parse verifies a cookie value and returns its session id.
func (t *Tokens) Parse(value string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(value, claims,
		func(*jwt.Token) (interface{}, error) { return t.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(t.now),
	)
	if err != nil {
		return "", fmt.Errorf("invalid session cookie: %w", err)
	}
	if !token.Valid || claims.ID == "" {
		return "", errors.New("invalid session cookie")
	}
	if _, err := uuid.Parse(claims.ID); err != nil {
		return "", fmt.Errorf("invalid session id: %w", err)
	}
	return claims.ID, nil
}
