package jwtinfra

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/go-shop-api/internal/config"
	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/pkg/id"
)

// Kind selects which secret family a token is signed with.
type Kind int

const (
	Access Kind = iota
	Refresh
)

// Claims holds the JWT payload fields. IsCreator is only meaningful for
// admins and IsActive only for customers.
type Claims struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Principal string `json:"principal"`
	IsCreator bool   `json:"is_creator,omitempty"`
	IsActive  bool   `json:"is_active,omitempty"`
	jwt.RegisteredClaims
}

// Pair is an access token together with its refresh token.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Provider signs and verifies HS256 JWTs with one secret per principal and kind.
type Provider struct {
	secrets    map[string][2][]byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewProvider(cfg config.JWTConfig) *Provider {
	return &Provider{
		secrets: map[string][2][]byte{
			domain.PrincipalAdmin:    {[]byte(cfg.AccessAdminKey), []byte(cfg.RefreshAdminKey)},
			domain.PrincipalCustomer: {[]byte(cfg.AccessCustomerKey), []byte(cfg.RefreshCustomerKey)},
		},
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        time.Now,
	}
}

// RefreshTTL is the lifetime of refresh tokens, used for the cookie max-age fallback.
func (p *Provider) RefreshTTL() time.Duration { return p.refreshTTL }

// Issue signs a fresh access/refresh pair carrying the same claims.
func (p *Provider) Issue(c Claims) (Pair, error) {
	access, err := p.sign(c, Access, p.accessTTL)
	if err != nil {
		return Pair{}, err
	}
	refresh, err := p.sign(c, Refresh, p.refreshTTL)
	if err != nil {
		return Pair{}, err
	}
	return Pair{AccessToken: access, RefreshToken: refresh}, nil
}

func (p *Provider) sign(c Claims, kind Kind, ttl time.Duration) (string, error) {
	key, err := p.key(c.Principal, kind)
	if err != nil {
		return "", err
	}
	now := p.now()
	c.RegisteredClaims = jwt.RegisteredClaims{
		ID:        id.New(),
		Subject:   c.ID,
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, c)
	return token.SignedString(key)
}

// Verify parses tokenStr with the secret for principal and kind. Any failure
// is reported as domain.ErrUnauthorized.
func (p *Provider) Verify(tokenStr, principal string, kind Kind) (*Claims, error) {
	key, err := p.key(principal, kind)
	if err != nil {
		return nil, err
	}
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (any, error) {
		return key, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(p.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("invalid token: %v: %w", err, domain.ErrUnauthorized)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token claims: %w", domain.ErrUnauthorized)
	}
	if claims.Principal != principal {
		return nil, fmt.Errorf("token issued for %q: %w", claims.Principal, domain.ErrUnauthorized)
	}
	return claims, nil
}

func (p *Provider) key(principal string, kind Kind) ([]byte, error) {
	pair, ok := p.secrets[principal]
	if !ok {
		return nil, errors.New("unknown principal " + principal)
	}
	return pair[kind], nil
}
