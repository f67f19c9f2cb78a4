package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-shop-api/internal/domain"
	jwtinfra "github.com/go-shop-api/internal/infrastructure/jwt"
	"github.com/go-shop-api/internal/infrastructure/smtp"
	pkgtoken "github.com/go-shop-api/internal/pkg/token"
)

// Tokens is what a successful sign-in hands to the transport layer: the
// access token for the body and the refresh token for the cookie.
type Tokens struct {
	AccessToken  string
	RefreshToken string
}

// CustomerSignIn is the outcome of a customer sign-in. Exactly one of
// Tokens and VerificationKey is set: an inactive account gets a fresh OTP.
type CustomerSignIn struct {
	Customer        *domain.Customer
	Tokens          *Tokens
	VerificationKey string
}

type Service interface {
	SignUpAdmin(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, Tokens, error)
	SignInAdmin(ctx context.Context, req domain.SignInRequest) (*domain.Admin, Tokens, error)
	SignOutAdmin(ctx context.Context, refreshToken string) error
	RefreshAdmin(ctx context.Context, refreshToken string) (*domain.Admin, Tokens, error)
	// EnsureCreator creates the creator admin unless an admin with that email exists.
	EnsureCreator(ctx context.Context, req domain.CreateAdminRequest) error

	SignUpCustomer(ctx context.Context, req domain.CreateCustomerRequest) (verificationKey string, err error)
	SignInCustomer(ctx context.Context, req domain.SignInRequest) (*CustomerSignIn, error)
	SignOutCustomer(ctx context.Context, refreshToken string) error
	RefreshCustomer(ctx context.Context, refreshToken string) (*domain.Customer, Tokens, error)
	ResendOTP(ctx context.Context, email string) (verificationKey string, err error)
	VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*domain.Customer, Tokens, error)
	CheckToken(ctx context.Context, accessToken string) (*domain.CustomerProfile, error)
}

type adminStore interface {
	Create(ctx context.Context, a *domain.Admin) error
	GetByEmail(ctx context.Context, email string) (*domain.Admin, error)
	SetRefreshHash(ctx context.Context, adminID string, hash *string) error
}

type customerStore interface {
	Create(ctx context.Context, c *domain.Customer) error
	Get(ctx context.Context, customerID string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	SetRefreshHash(ctx context.Context, customerID string, hash *string) error
}

type otpService interface {
	Issue(ctx context.Context, email string) (string, error)
	Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.Customer, error)
}

type tokenProvider interface {
	Issue(c jwtinfra.Claims) (jwtinfra.Pair, error)
	Verify(tokenStr, principal string, kind jwtinfra.Kind) (*jwtinfra.Claims, error)
}

type ServiceDeps struct {
	Admins    adminStore
	Customers customerStore
	OTP       otpService
	Tokens    tokenProvider
	Mailer    smtp.Mailer
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

type service struct {
	admins    adminStore
	customers customerStore
	otp       otpService
	tokens    tokenProvider
	mailer    smtp.Mailer
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		admins:    deps.Admins,
		customers: deps.Customers,
		otp:       deps.OTP,
		tokens:    deps.Tokens,
		mailer:    deps.Mailer,
		log:       deps.Logger,
		now:       deps.Now,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

var errInvalidCredentials = fmt.Errorf("invalid email or password: %w", domain.ErrUnauthorized)

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(h), nil
}

func passwordMatches(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// issue mints a token pair and persists the hash of its refresh token.
func (s *service) issue(ctx context.Context, claims jwtinfra.Claims, store func(context.Context, string, *string) error) (Tokens, error) {
	pair, err := s.tokens.Issue(claims)
	if err != nil {
		return Tokens{}, fmt.Errorf("sign tokens: %w", err)
	}
	hash, err := pkgtoken.Hash(pair.RefreshToken)
	if err != nil {
		return Tokens{}, err
	}
	if err := store(ctx, claims.ID, &hash); err != nil {
		return Tokens{}, fmt.Errorf("store refresh token: %w", err)
	}
	return Tokens{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken}, nil
}

// checkRefresh verifies the refresh token signature and returns its claims.
func (s *service) checkRefresh(refreshToken, principal string) (*jwtinfra.Claims, error) {
	if refreshToken == "" {
		return nil, fmt.Errorf("refresh token not found: %w", domain.ErrUnauthorized)
	}
	return s.tokens.Verify(refreshToken, principal, jwtinfra.Refresh)
}

func storedRefreshMatches(hash *string, refreshToken string) bool {
	return hash != nil && pkgtoken.Matches(*hash, refreshToken)
}

func isNotFound(err error) bool { return errors.Is(err, domain.ErrNotFound) }
