package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-shop-api/internal/domain"
	jwtinfra "github.com/go-shop-api/internal/infrastructure/jwt"
)

type contextKey string

const claimsKey contextKey = "claims"

// Verifier checks an access token against one principal's secret.
type Verifier interface {
	Verify(tokenStr, principal string, kind jwtinfra.Kind) (*jwtinfra.Claims, error)
}

// Auth validates the Bearer access token and injects its claims into the
// context. The token must verify for one of principals.
func Auth(v Verifier, principals ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr, ok := BearerToken(r)
			if !ok {
				writeJSONError(w, http.StatusUnauthorized, "missing or invalid authorization header")
				return
			}
			claims := verifyAny(v, tokenStr, principals)
			if claims == nil {
				writeJSONError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		})
	}
}

// OptionalAuth injects claims when a valid token is present and lets the
// request through untouched otherwise.
func OptionalAuth(v Verifier, principals ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenStr, ok := BearerToken(r); ok {
				if claims := verifyAny(v, tokenStr, principals); claims != nil {
					r = r.WithContext(WithClaims(r.Context(), claims))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func verifyAny(v Verifier, tokenStr string, principals []string) *jwtinfra.Claims {
	for _, p := range principals {
		if claims, err := v.Verify(tokenStr, p, jwtinfra.Access); err == nil {
			return claims
		}
	}
	return nil
}

// BearerToken extracts the token from an "Authorization: Bearer" header.
func BearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, "Bearer ") {
		return "", false
	}
	tok := strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	return tok, tok != ""
}

func WithClaims(ctx context.Context, c *jwtinfra.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// ClaimsFromContext extracts JWT claims from the request context.
func ClaimsFromContext(ctx context.Context) (*jwtinfra.Claims, bool) {
	c, ok := ctx.Value(claimsKey).(*jwtinfra.Claims)
	return c, ok
}

// ActorFromContext returns the caller as a domain.Actor.
func ActorFromContext(ctx context.Context) (domain.Actor, bool) {
	c, ok := ClaimsFromContext(ctx)
	if !ok {
		return domain.Actor{}, false
	}
	return domain.Actor{
		ID:        c.ID,
		Email:     c.Email,
		Principal: c.Principal,
		IsActive:  c.IsActive,
		IsCreator: c.IsCreator,
	}, true
}
