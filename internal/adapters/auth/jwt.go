// Package auth turns the session token issued by the identity service into a
// domain.Principal.
package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"hotel_booking/internal/domain"
)

// CookieName is the session cookie the identity service sets on login.
const CookieName = "auth_token"

type Claims struct {
	UserID string `json:"userId"`
	jwt.RegisteredClaims
}

// Verifier checks HS256 tokens signed with a shared secret.
type Verifier struct {
	secret []byte
	parser *jwt.Parser
}

func NewVerifier(secret string) *Verifier {
	return &Verifier{
		secret: []byte(secret),
		parser: jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})),
	}
}

// Verify returns the principal carried by raw, or domain.ErrUnauthorized.
func (v *Verifier) Verify(raw string) (domain.Principal, error) {
	if len(v.secret) == 0 || raw == "" {
		return "", domain.ErrUnauthorized
	}
	var c Claims
	if _, err := v.parser.ParseWithClaims(raw, &c, func(*jwt.Token) (any, error) { return v.secret, nil }); err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return "", fmt.Errorf("%w: token has no userId", domain.ErrUnauthorized)
	}
	return domain.Principal(c.UserID), nil
}

// FromRequest reads the session cookie, falling back to a bearer token.
// A request without credentials yields the anonymous principal and no error.
func (v *Verifier) FromRequest(r *http.Request) (domain.Principal, error) {
	raw := ""
	if ck, err := r.Cookie(CookieName); err == nil {
		raw = ck.Value
	} else if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		raw = strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if raw == "" {
		return "", nil
	}
	return v.Verify(raw)
}

// Sign issues a token for userID. Used by the seeder and tests; login lives in
// the identity service.
func Sign(secret, userID string, ttl time.Duration) (string, error) {
	now := time.Now().UTC()
	c := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString([]byte(secret))
}
