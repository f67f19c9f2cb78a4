package auth

import (
	"context"
	"fmt"

	"github.com/go-shop-api/internal/domain"
	jwtinfra "github.com/go-shop-api/internal/infrastructure/jwt"
	"github.com/go-shop-api/internal/infrastructure/smtp"
	"github.com/go-shop-api/internal/pkg/id"
	"github.com/go-shop-api/internal/pkg/validate"
)

func customerClaims(c *domain.Customer) jwtinfra.Claims {
	return jwtinfra.Claims{
		ID:        c.CustomerID,
		Email:     c.Email,
		Principal: domain.PrincipalCustomer,
		IsActive:  c.IsActive,
	}
}

// SignUpCustomer registers an inactive customer and sends the first OTP.
func (s *service) SignUpCustomer(ctx context.Context, req domain.CreateCustomerRequest) (string, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return "", err
	}
	if req.Password != req.ConfirmPassword {
		return "", fmt.Errorf("passwords do not match: %w", domain.ErrBadRequest)
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	c := &domain.Customer{
		CustomerID:     id.New(),
		FirstName:      req.FirstName,
		LastName:       req.LastName,
		Email:          req.Email,
		Phone:          req.Phone,
		HashedPassword: hash,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return "", err
	}
	return s.otp.Issue(ctx, c.Email)
}

func (s *service) SignInCustomer(ctx context.Context, req domain.SignInRequest) (*CustomerSignIn, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	c, err := s.customers.GetByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}
	if !passwordMatches(c.HashedPassword, req.Password) {
		return nil, errInvalidCredentials
	}
	if !c.IsActive {
		key, err := s.otp.Issue(ctx, c.Email)
		if err != nil {
			return nil, err
		}
		return &CustomerSignIn{Customer: c, VerificationKey: key}, nil
	}
	tokens, err := s.issue(ctx, customerClaims(c), s.customers.SetRefreshHash)
	if err != nil {
		return nil, err
	}
	return &CustomerSignIn{Customer: c, Tokens: &tokens}, nil
}

// ResendOTP issues a new code for an existing, not yet active customer.
func (s *service) ResendOTP(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)
	if err := validate.Struct(domain.EmailRequest{Email: email}); err != nil {
		return "", err
	}
	c, err := s.customers.GetByEmail(ctx, email)
	if err != nil {
		if isNotFound(err) {
			return "", fmt.Errorf("email %s does not exist: %w", email, domain.ErrNotFound)
		}
		return "", err
	}
	if c.IsActive {
		return "", fmt.Errorf("customer already activated: %w", domain.ErrConflict)
	}
	return s.otp.Issue(ctx, email)
}

// VerifyOTP activates the customer and signs them in.
func (s *service) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*domain.Customer, Tokens, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, Tokens{}, err
	}
	c, err := s.otp.Verify(ctx, req)
	if err != nil {
		return nil, Tokens{}, err
	}
	tokens, err := s.issue(ctx, customerClaims(c), s.customers.SetRefreshHash)
	if err != nil {
		return nil, Tokens{}, err
	}
	err = s.mailer.Send(ctx, c.Email, smtp.TemplateWelcome, map[string]any{
		"FullName": c.FirstName + " " + c.LastName,
	})
	if err != nil {
		s.log.WithError(err).WithField("customer_id", c.CustomerID).Warn("welcome mail not sent")
	}
	return c, tokens, nil
}

func (s *service) loadCustomerForRefresh(ctx context.Context, refreshToken string) (*domain.Customer, error) {
	claims, err := s.checkRefresh(refreshToken, domain.PrincipalCustomer)
	if err != nil {
		return nil, err
	}
	c, err := s.customers.GetByEmail(ctx, claims.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("customer no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !storedRefreshMatches(c.HashedRefreshToken, refreshToken) {
		return nil, fmt.Errorf("refresh token revoked: %w", domain.ErrUnauthorized)
	}
	return c, nil
}

func (s *service) SignOutCustomer(ctx context.Context, refreshToken string) error {
	c, err := s.loadCustomerForRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	return s.customers.SetRefreshHash(ctx, c.CustomerID, nil)
}

func (s *service) RefreshCustomer(ctx context.Context, refreshToken string) (*domain.Customer, Tokens, error) {
	c, err := s.loadCustomerForRefresh(ctx, refreshToken)
	if err != nil {
		return nil, Tokens{}, err
	}
	tokens, err := s.issue(ctx, customerClaims(c), s.customers.SetRefreshHash)
	if err != nil {
		return nil, Tokens{}, err
	}
	return c, tokens, nil
}

// CheckToken validates a customer access token and returns the current profile.
func (s *service) CheckToken(ctx context.Context, accessToken string) (*domain.CustomerProfile, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("access token not found: %w", domain.ErrUnauthorized)
	}
	claims, err := s.tokens.Verify(accessToken, domain.PrincipalCustomer, jwtinfra.Access)
	if err != nil {
		return nil, err
	}
	c, err := s.customers.Get(ctx, claims.ID)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("customer no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	p := c.Profile()
	return &p, nil
}
