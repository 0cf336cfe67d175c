package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/puzzlewager/puzzlewager/internal/chain"
	httperrors "github.com/puzzlewager/puzzlewager/pkg/http/errors"
)

// Claims binds a wallet address to a bearer token. The signed-message
// wallet exchange that proves address ownership happens upstream of this
// service; the token is the boundary it hands us.
type Claims struct {
	Address string `json:"addr"`
	jwt.RegisteredClaims
}

// Manager issues and verifies session tokens.
type Manager struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewManager creates a token manager. A zero ttl defaults to 24h.
func NewManager(secret []byte, issuer string, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Manager{secret: secret, issuer: issuer, ttl: ttl}
}

// Issue mints a token for a verified wallet address.
func (m *Manager) Issue(addr chain.Address) (string, error) {
	now := time.Now()
	claims := Claims{
		Address: addr.Hex(),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses a token and returns the wallet address it binds.
func (m *Manager) Verify(token string) (chain.Address, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		return chain.Address{}, fmt.Errorf("parse token: %w", err)
	}
	if !parsed.Valid {
		return chain.Address{}, fmt.Errorf("invalid token")
	}
	return chain.ParseAddress(claims.Address)
}

type addressKey struct{}

// Middleware authenticates the request's bearer token and stores the
// wallet address in the request context.
func (m *Manager) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeUnauthorized, "missing bearer token")
			return
		}
		addr, err := m.Verify(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			httperrors.RespondUnauthorized(w, httperrors.ErrCodeInvalidToken, "invalid bearer token")
			return
		}
		next(w, r.WithContext(context.WithValue(r.Context(), addressKey{}, addr)))
	}
}

// Optional authenticates the bearer token when one is present but lets
// anonymous requests through. Demo puzzle routes accept both.
func (m *Manager) Optional(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if strings.HasPrefix(header, "Bearer ") {
			if addr, err := m.Verify(strings.TrimPrefix(header, "Bearer ")); err == nil {
				r = r.WithContext(context.WithValue(r.Context(), addressKey{}, addr))
			}
		}
		next(w, r)
	}
}

// AddressFromContext returns the authenticated wallet address, if any.
func AddressFromContext(ctx context.Context) (chain.Address, bool) {
	addr, ok := ctx.Value(addressKey{}).(chain.Address)
	return addr, ok
}
