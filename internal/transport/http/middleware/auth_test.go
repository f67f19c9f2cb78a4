package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-shop-api/internal/config"
	"github.com/go-shop-api/internal/domain"
	jwtinfra "github.com/go-shop-api/internal/infrastructure/jwt"
)

func newTestProvider() *jwtinfra.Provider {
	return jwtinfra.NewProvider(config.JWTConfig{
		AccessAdminKey:     "access-admin",
		RefreshAdminKey:    "refresh-admin",
		AccessCustomerKey:  "access-customer",
		RefreshCustomerKey: "refresh-customer",
		AccessTTL:          15 * time.Minute,
		RefreshTTL:         time.Hour,
	})
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func issue(t *testing.T, p *jwtinfra.Provider, c jwtinfra.Claims) jwtinfra.Pair {
	t.Helper()
	pair, err := p.Issue(c)
	require.NoError(t, err)
	return pair
}

func TestAuth_MissingHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	Auth(newTestProvider(), domain.PrincipalCustomer)(http.HandlerFunc(okHandler)).
		ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.JSONEq(t, `{"error":"missing or invalid authorization header","error_code":401}`, rr.Body.String())
}

func TestAuth_BadToken(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	rr := httptest.NewRecorder()
	Auth(newTestProvider(), domain.PrincipalCustomer)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_RefreshTokenRejected(t *testing.T) {
	p := newTestProvider()
	pair := issue(t, p, jwtinfra.Claims{ID: "c1", Principal: domain.PrincipalCustomer})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.RefreshToken)
	rr := httptest.NewRecorder()
	Auth(p, domain.PrincipalCustomer)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_CustomerTokenOnAdminRoute(t *testing.T) {
	p := newTestProvider()
	pair := issue(t, p, jwtinfra.Claims{ID: "c1", Principal: domain.PrincipalCustomer})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rr := httptest.NewRecorder()
	Auth(p, domain.PrincipalAdmin)(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_ValidToken_InjectsClaims(t *testing.T) {
	p := newTestProvider()
	pair := issue(t, p, jwtinfra.Claims{ID: "a1", Email: "boss@shop.test", Principal: domain.PrincipalAdmin, IsCreator: true})

	var got domain.Actor
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rr := httptest.NewRecorder()
	Auth(p, domain.PrincipalCustomer, domain.PrincipalAdmin)(capture).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "a1", got.ID)
	assert.True(t, got.IsAdmin())
	assert.True(t, got.IsCreator)
}

func TestOptionalAuth_PassesThroughWithoutToken(t *testing.T) {
	var present bool
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, present = ClaimsFromContext(r.Context())
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rr := httptest.NewRecorder()
	OptionalAuth(newTestProvider(), domain.PrincipalCustomer)(capture).ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.False(t, present)
}

func TestRequireCreator(t *testing.T) {
	cases := []struct {
		name   string
		claims *jwtinfra.Claims
		want   int
	}{
		{"no claims", nil, http.StatusUnauthorized},
		{"plain admin", &jwtinfra.Claims{Principal: domain.PrincipalAdmin}, http.StatusForbidden},
		{"creator", &jwtinfra.Claims{Principal: domain.PrincipalAdmin, IsCreator: true}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", nil)
			if tc.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tc.claims))
			}
			rr := httptest.NewRecorder()
			RequireCreator(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
			assert.Equal(t, tc.want, rr.Code)
		})
	}
}

func TestRequireActive(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req = req.WithContext(WithClaims(req.Context(), &jwtinfra.Claims{Principal: domain.PrincipalCustomer}))
	rr := httptest.NewRecorder()
	RequireActive(http.HandlerFunc(okHandler)).ServeHTTP(rr, req)
	assert.Equal(t, http.StatusForbidden, rr.Code)
}
