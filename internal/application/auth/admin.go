package auth

import (
	"context"
	"fmt"

	"github.com/go-shop-api/internal/domain"
	jwtinfra "github.com/go-shop-api/internal/infrastructure/jwt"
	"github.com/go-shop-api/internal/pkg/id"
	"github.com/go-shop-api/internal/pkg/validate"
)

func adminClaims(a *domain.Admin) jwtinfra.Claims {
	return jwtinfra.Claims{
		ID:        a.AdminID,
		Email:     a.Email,
		Principal: domain.PrincipalAdmin,
		IsCreator: a.IsCreator,
	}
}

// newAdmin validates req and builds the admin row it describes.
func (s *service) newAdmin(req domain.CreateAdminRequest, creator bool) (*domain.Admin, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, err
	}
	hash, err := hashPassword(req.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	return &domain.Admin{
		AdminID:        id.New(),
		FullName:       req.FullName,
		Email:          req.Email,
		Phone:          req.Phone,
		HashedPassword: hash,
		IsActive:       true,
		IsCreator:      creator,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

func (s *service) SignUpAdmin(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, Tokens, error) {
	if req.Password != req.ConfirmPassword {
		return nil, Tokens{}, fmt.Errorf("passwords do not match: %w", domain.ErrBadRequest)
	}
	a, err := s.newAdmin(req, false)
	if err != nil {
		return nil, Tokens{}, err
	}
	if err := s.admins.Create(ctx, a); err != nil {
		return nil, Tokens{}, err
	}
	tokens, err := s.issue(ctx, adminClaims(a), s.admins.SetRefreshHash)
	if err != nil {
		return nil, Tokens{}, err
	}
	return a, tokens, nil
}

func (s *service) EnsureCreator(ctx context.Context, req domain.CreateAdminRequest) error {
	_, err := s.admins.GetByEmail(ctx, normalizeEmail(req.Email))
	if err == nil {
		return nil
	}
	if !isNotFound(err) {
		return err
	}
	a, err := s.newAdmin(req, true)
	if err != nil {
		return err
	}
	if err := s.admins.Create(ctx, a); err != nil {
		return err
	}
	s.log.WithField("admin_id", a.AdminID).Info("creator admin created")
	return nil
}

func (s *service) SignInAdmin(ctx context.Context, req domain.SignInRequest) (*domain.Admin, Tokens, error) {
	req.Email = normalizeEmail(req.Email)
	if err := validate.Struct(req); err != nil {
		return nil, Tokens{}, err
	}
	a, err := s.admins.GetByEmail(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, Tokens{}, errInvalidCredentials
		}
		return nil, Tokens{}, err
	}
	if !passwordMatches(a.HashedPassword, req.Password) {
		return nil, Tokens{}, errInvalidCredentials
	}
	if !a.IsActive {
		return nil, Tokens{}, fmt.Errorf("admin account is disabled: %w", domain.ErrForbidden)
	}
	tokens, err := s.issue(ctx, adminClaims(a), s.admins.SetRefreshHash)
	if err != nil {
		return nil, Tokens{}, err
	}
	return a, tokens, nil
}

func (s *service) loadAdminForRefresh(ctx context.Context, refreshToken string) (*domain.Admin, error) {
	claims, err := s.checkRefresh(refreshToken, domain.PrincipalAdmin)
	if err != nil {
		return nil, err
	}
	a, err := s.admins.GetByEmail(ctx, claims.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("admin no longer exists: %w", domain.ErrUnauthorized)
		}
		return nil, err
	}
	if !storedRefreshMatches(a.HashedRefreshToken, refreshToken) {
		return nil, fmt.Errorf("refresh token revoked: %w", domain.ErrUnauthorized)
	}
	return a, nil
}

func (s *service) SignOutAdmin(ctx context.Context, refreshToken string) error {
	a, err := s.loadAdminForRefresh(ctx, refreshToken)
	if err != nil {
		return err
	}
	return s.admins.SetRefreshHash(ctx, a.AdminID, nil)
}

func (s *service) RefreshAdmin(ctx context.Context, refreshToken string) (*domain.Admin, Tokens, error) {
	a, err := s.loadAdminForRefresh(ctx, refreshToken)
	if err != nil {
		return nil, Tokens{}, err
	}
	if !a.IsActive {
		return nil, Tokens{}, fmt.Errorf("admin account is disabled: %w", domain.ErrForbidden)
	}
	tokens, err := s.issue(ctx, adminClaims(a), s.admins.SetRefreshHash)
	if err != nil {
		return nil, Tokens{}, err
	}
	return a, tokens, nil
}
