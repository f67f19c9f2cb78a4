package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/go-shop-api/internal/config"
	"github.com/go-shop-api/internal/domain"
	jwtinfra "github.com/go-shop-api/internal/infrastructure/jwt"
	"github.com/go-shop-api/internal/pkg/logger"
	pkgtoken "github.com/go-shop-api/internal/pkg/token"
)

// --- mocks ---

type mockAdminStore struct{ mock.Mock }

func (m *mockAdminStore) Create(ctx context.Context, a *domain.Admin) error {
	return m.Called(ctx, a).Error(0)
}
func (m *mockAdminStore) GetByEmail(ctx context.Context, email string) (*domain.Admin, error) {
	args := m.Called(ctx, email)
	if a, _ := args.Get(0).(*domain.Admin); a != nil {
		return a, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAdminStore) SetRefreshHash(ctx context.Context, adminID string, hash *string) error {
	return m.Called(ctx, adminID, hash).Error(0)
}

type mockCustomerStore struct{ mock.Mock }

func (m *mockCustomerStore) Create(ctx context.Context, c *domain.Customer) error {
	return m.Called(ctx, c).Error(0)
}
func (m *mockCustomerStore) Get(ctx context.Context, customerID string) (*domain.Customer, error) {
	args := m.Called(ctx, customerID)
	if c, _ := args.Get(0).(*domain.Customer); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCustomerStore) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	args := m.Called(ctx, email)
	if c, _ := args.Get(0).(*domain.Customer); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCustomerStore) SetRefreshHash(ctx context.Context, customerID string, hash *string) error {
	return m.Called(ctx, customerID, hash).Error(0)
}

type mockOTP struct{ mock.Mock }

func (m *mockOTP) Issue(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}
func (m *mockOTP) Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.Customer, error) {
	args := m.Called(ctx, req)
	if c, _ := args.Get(0).(*domain.Customer); c != nil {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockMailer struct{ mock.Mock }

func (m *mockMailer) Send(ctx context.Context, to, tmpl string, data map[string]any) error {
	return m.Called(ctx, to, tmpl, data).Error(0)
}

// --- helpers ---

type deps struct {
	admins    *mockAdminStore
	customers *mockCustomerStore
	otp       *mockOTP
	mailer    *mockMailer
	tokens    *jwtinfra.Provider
}

func newService() (Service, *deps) {
	d := &deps{
		admins:    &mockAdminStore{},
		customers: &mockCustomerStore{},
		otp:       &mockOTP{},
		mailer:    &mockMailer{},
		tokens: jwtinfra.NewProvider(config.JWTConfig{
			AccessAdminKey:     "aa",
			RefreshAdminKey:    "ra",
			AccessCustomerKey:  "ac",
			RefreshCustomerKey: "rc",
			AccessTTL:          time.Minute,
			RefreshTTL:         time.Hour,
		}),
	}
	svc := NewService(ServiceDeps{
		Admins:    d.admins,
		Customers: d.customers,
		OTP:       d.otp,
		Tokens:    d.tokens,
		Mailer:    d.mailer,
		Logger:    logger.Discard(),
	})
	return svc, d
}

func hashed(t *testing.T, pw string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func activeCustomer(t *testing.T) *domain.Customer {
	return &domain.Customer{
		CustomerID:     "01HCUST",
		FirstName:      "Ann",
		LastName:       "Lee",
		Email:          "ann@example.com",
		HashedPassword: hashed(t, "password123"),
		IsActive:       true,
	}
}

// --- customer sign-up / OTP ---

func TestSignUpCustomer_CreatesInactiveAndIssuesOTP(t *testing.T) {
	svc, d := newService()
	d.customers.On("Create", mock.Anything, mock.MatchedBy(func(c *domain.Customer) bool {
		return c.Email == "ann@example.com" && !c.IsActive && c.HashedPassword != "password123"
	})).Return(nil)
	d.otp.On("Issue", mock.Anything, "ann@example.com").Return("KEY", nil)

	key, err := svc.SignUpCustomer(context.Background(), domain.CreateCustomerRequest{
		FirstName: "Ann", LastName: "Lee", Email: " Ann@Example.com ",
		Password: "password123", ConfirmPassword: "password123",
	})

	require.NoError(t, err)
	assert.Equal(t, "KEY", key)
	d.customers.AssertExpectations(t)
	d.otp.AssertExpectations(t)
}

func signUpRequest() domain.CreateCustomerRequest {
	return domain.CreateCustomerRequest{
		FirstName: "Ann", LastName: "Lee", Email: "ann@example.com",
		Password: "password123", ConfirmPassword: "password123",
	}
}

func TestSignUpCustomer_PasswordMismatch(t *testing.T) {
	svc, d := newService()
	req := signUpRequest()
	req.ConfirmPassword = "password124"

	_, err := svc.SignUpCustomer(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	d.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignUpCustomer_RejectsInvalidRequest(t *testing.T) {
	cases := map[string]func(r *domain.CreateCustomerRequest){
		"empty":          func(r *domain.CreateCustomerRequest) { *r = domain.CreateCustomerRequest{} },
		"bad email":      func(r *domain.CreateCustomerRequest) { r.Email = "not-an-email" },
		"short password": func(r *domain.CreateCustomerRequest) { r.Password, r.ConfirmPassword = "short", "short" },
		"no first name":  func(r *domain.CreateCustomerRequest) { r.FirstName = "" },
		"bad phone":      func(r *domain.CreateCustomerRequest) { r.Phone = "12ab" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			svc, d := newService()
			req := signUpRequest()
			mutate(&req)

			key, err := svc.SignUpCustomer(context.Background(), req)

			assert.ErrorIs(t, err, domain.ErrBadRequest)
			assert.Empty(t, key)
			d.customers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			d.otp.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
		})
	}
}

func TestSignUpCustomer_DuplicateEmail(t *testing.T) {
	svc, d := newService()
	d.customers.On("Create", mock.Anything, mock.Anything).Return(domain.ErrConflict)

	_, err := svc.SignUpCustomer(context.Background(), signUpRequest())
	assert.ErrorIs(t, err, domain.ErrConflict)
	d.otp.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestResendOTP_UnknownEmail(t *testing.T) {
	svc, d := newService()
	d.customers.On("GetByEmail", mock.Anything, "x@example.com").Return(nil, domain.ErrNotFound)

	_, err := svc.ResendOTP(context.Background(), "x@example.com")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	d.otp.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestResendOTP_InvalidEmail(t *testing.T) {
	svc, d := newService()

	_, err := svc.ResendOTP(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	d.customers.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestResendOTP_AlreadyActiveIsConflict(t *testing.T) {
	svc, d := newService()
	d.customers.On("GetByEmail", mock.Anything, "ann@example.com").Return(activeCustomer(t), nil)

	_, err := svc.ResendOTP(context.Background(), "ann@example.com")
	assert.ErrorIs(t, err, domain.ErrConflict)
	d.otp.AssertNotCalled(t, "Issue", mock.Anything, mock.Anything)
}

func TestVerifyOTP_IssuesTokensAndSendsWelcome(t *testing.T) {
	svc, d := newService()
	c := activeCustomer(t)
	req := domain.VerifyOTPRequest{Email: "ann@example.com", OTP: "1234", VerificationKey: "KEY"}
	d.otp.On("Verify", mock.Anything, req).Return(c, nil)
	d.customers.On("SetRefreshHash", mock.Anything, "01HCUST", mock.AnythingOfType("*string")).Return(nil)
	d.mailer.On("Send", mock.Anything, "ann@example.com", "welcome", mock.Anything).Return(errors.New("smtp down"))

	got, tokens, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "ANN@example.com", OTP: "1234", VerificationKey: "KEY"})

	require.NoError(t, err)
	assert.True(t, got.IsActive)
	claims, err := d.tokens.Verify(tokens.AccessToken, domain.PrincipalCustomer, jwtinfra.Access)
	require.NoError(t, err)
	assert.Equal(t, "01HCUST", claims.ID)
	assert.True(t, claims.IsActive)
	d.mailer.AssertExpectations(t)
}

func TestVerifyOTP_PropagatesVerifierError(t *testing.T) {
	svc, d := newService()
	d.otp.On("Verify", mock.Anything, mock.Anything).Return(nil, domain.ErrExpired)

	_, _, err := svc.VerifyOTP(context.Background(), domain.VerifyOTPRequest{Email: "a@b.com", OTP: "1234", VerificationKey: "KEY"})
	assert.ErrorIs(t, err, domain.ErrExpired)
	d.customers.AssertNotCalled(t, "SetRefreshHash", mock.Anything, mock.Anything, mock.Anything)
}

func TestVerifyOTP_RejectsInvalidRequestBeforeVerifier(t *testing.T) {
	cases := map[string]domain.VerifyOTPRequest{
		"bad email":       {Email: "not-an-email", OTP: "1234", VerificationKey: "KEY"},
		"non-numeric otp": {Email: "ann@example.com", OTP: "abc", VerificationKey: "KEY"},
		"missing key":     {Email: "ann@example.com", OTP: "1234"},
		"missing otp":     {Email: "ann@example.com", VerificationKey: "KEY"},
	}
	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			svc, d := newService()

			_, _, err := svc.VerifyOTP(context.Background(), req)

			assert.ErrorIs(t, err, domain.ErrBadRequest)
			d.otp.AssertNotCalled(t, "Verify", mock.Anything, mock.Anything)
		})
	}
}

// --- customer sign-in / refresh ---

func TestSignInCustomer_Active(t *testing.T) {
	svc, d := newService()
	d.customers.On("GetByEmail", mock.Anything, "ann@example.com").Return(activeCustomer(t), nil)
	var stored *string
	d.customers.On("SetRefreshHash", mock.Anything, "01HCUST", mock.Anything).
		Run(func(args mock.Arguments) { stored = args.Get(2).(*string) }).
		Return(nil)

	res, err := svc.SignInCustomer(context.Background(), domain.SignInRequest{Email: "ann@example.com", Password: "password123"})

	require.NoError(t, err)
	require.NotNil(t, res.Tokens)
	assert.Empty(t, res.VerificationKey)
	require.NotNil(t, stored)
	assert.True(t, pkgtoken.Matches(*stored, res.Tokens.RefreshToken))
}

func TestSignInCustomer_InactiveGetsNewOTP(t *testing.T) {
	svc, d := newService()
	c := activeCustomer(t)
	c.IsActive = false
	d.customers.On("GetByEmail", mock.Anything, "ann@example.com").Return(c, nil)
	d.otp.On("Issue", mock.Anything, "ann@example.com").Return("KEY", nil)

	res, err := svc.SignInCustomer(context.Background(), domain.SignInRequest{Email: "ann@example.com", Password: "password123"})

	require.NoError(t, err)
	assert.Nil(t, res.Tokens)
	assert.Equal(t, "KEY", res.VerificationKey)
}

func TestSignIn_RejectsInvalidRequest(t *testing.T) {
	svc, d := newService()

	_, err := svc.SignInCustomer(context.Background(), domain.SignInRequest{Email: "ann", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	_, _, err = svc.SignInAdmin(context.Background(), domain.SignInRequest{Email: "boss@example.com"})
	assert.ErrorIs(t, err, domain.ErrBadRequest)

	d.customers.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
	d.admins.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestSignInCustomer_WrongPassword(t *testing.T) {
	svc, d := newService()
	d.customers.On("GetByEmail", mock.Anything, "ann@example.com").Return(activeCustomer(t), nil)

	_, err := svc.SignInCustomer(context.Background(), domain.SignInRequest{Email: "ann@example.com", Password: "nope"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshCustomer_RotatesHash(t *testing.T) {
	svc, d := newService()
	c := activeCustomer(t)
	pair, err := d.tokens.Issue(customerClaims(c))
	require.NoError(t, err)
	h, err := pkgtoken.Hash(pair.RefreshToken)
	require.NoError(t, err)
	c.HashedRefreshToken = &h
	d.customers.On("GetByEmail", mock.Anything, "ann@example.com").Return(c, nil)
	d.customers.On("SetRefreshHash", mock.Anything, "01HCUST", mock.Anything).Return(nil)

	_, tokens, err := svc.RefreshCustomer(context.Background(), pair.RefreshToken)

	require.NoError(t, err)
	assert.NotEqual(t, pair.RefreshToken, tokens.RefreshToken)
}

func TestRefreshCustomer_RevokedToken(t *testing.T) {
	svc, d := newService()
	c := activeCustomer(t)
	pair, err := d.tokens.Issue(customerClaims(c))
	require.NoError(t, err)
	d.customers.On("GetByEmail", mock.Anything, "ann@example.com").Return(c, nil)

	_, _, err = svc.RefreshCustomer(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestRefreshCustomer_AccessTokenRejected(t *testing.T) {
	svc, d := newService()
	pair, err := d.tokens.Issue(customerClaims(activeCustomer(t)))
	require.NoError(t, err)

	_, _, err = svc.RefreshCustomer(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestSignOutCustomer_ClearsHash(t *testing.T) {
	svc, d := newService()
	c := activeCustomer(t)
	pair, err := d.tokens.Issue(customerClaims(c))
	require.NoError(t, err)
	h, err := pkgtoken.Hash(pair.RefreshToken)
	require.NoError(t, err)
	c.HashedRefreshToken = &h
	d.customers.On("GetByEmail", mock.Anything, "ann@example.com").Return(c, nil)
	d.customers.On("SetRefreshHash", mock.Anything, "01HCUST", (*string)(nil)).Return(nil)

	require.NoError(t, svc.SignOutCustomer(context.Background(), pair.RefreshToken))
	d.customers.AssertExpectations(t)
}

func TestSignOutCustomer_MissingCookie(t *testing.T) {
	svc, _ := newService()
	assert.ErrorIs(t, svc.SignOutCustomer(context.Background(), ""), domain.ErrUnauthorized)
}

func TestCheckToken_ReturnsProfile(t *testing.T) {
	svc, d := newService()
	c := activeCustomer(t)
	pair, err := d.tokens.Issue(customerClaims(c))
	require.NoError(t, err)
	d.customers.On("Get", mock.Anything, "01HCUST").Return(c, nil)

	p, err := svc.CheckToken(context.Background(), pair.AccessToken)

	require.NoError(t, err)
	assert.Equal(t, "Ann", p.FirstName)
	assert.True(t, p.IsActive)
}

// --- admins ---

func TestSignUpAdmin_CreatesActiveNonCreator(t *testing.T) {
	svc, d := newService()
	d.admins.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Admin) bool {
		return a.IsActive && !a.IsCreator && a.Email == "boss@example.com"
	})).Return(nil)
	d.admins.On("SetRefreshHash", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	a, tokens, err := svc.SignUpAdmin(context.Background(), domain.CreateAdminRequest{
		FullName: "Boss", Email: "Boss@example.com", Password: "password123", ConfirmPassword: "password123",
	})

	require.NoError(t, err)
	claims, err := d.tokens.Verify(tokens.AccessToken, domain.PrincipalAdmin, jwtinfra.Access)
	require.NoError(t, err)
	assert.Equal(t, a.AdminID, claims.ID)
	assert.False(t, claims.IsCreator)
}

func TestSignUpAdmin_RejectsInvalidRequest(t *testing.T) {
	svc, d := newService()

	_, _, err := svc.SignUpAdmin(context.Background(), domain.CreateAdminRequest{
		FullName: "Boss", Email: "", Password: "", ConfirmPassword: "",
	})

	assert.ErrorIs(t, err, domain.ErrBadRequest)
	d.admins.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestSignInAdmin_Disabled(t *testing.T) {
	svc, d := newService()
	d.admins.On("GetByEmail", mock.Anything, "boss@example.com").Return(&domain.Admin{
		AdminID: "01HADM", Email: "boss@example.com", HashedPassword: hashed(t, "password123"),
	}, nil)

	_, _, err := svc.SignInAdmin(context.Background(), domain.SignInRequest{Email: "boss@example.com", Password: "password123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEnsureCreator_SkipsExisting(t *testing.T) {
	svc, d := newService()
	d.admins.On("GetByEmail", mock.Anything, "owner@example.com").Return(&domain.Admin{}, nil)

	require.NoError(t, svc.EnsureCreator(context.Background(), creatorRequest()))
	d.admins.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestEnsureCreator_CreatesCreator(t *testing.T) {
	svc, d := newService()
	d.admins.On("GetByEmail", mock.Anything, "owner@example.com").Return(nil, domain.ErrNotFound)
	d.admins.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.Admin) bool { return a.IsCreator })).Return(nil)

	require.NoError(t, svc.EnsureCreator(context.Background(), creatorRequest()))
	d.admins.AssertExpectations(t)
}

func TestEnsureCreator_RejectsWeakSeedPassword(t *testing.T) {
	svc, d := newService()
	d.admins.On("GetByEmail", mock.Anything, "owner@example.com").Return(nil, domain.ErrNotFound)
	req := creatorRequest()
	req.Password, req.ConfirmPassword = "short", "short"

	err := svc.EnsureCreator(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrBadRequest)
	d.admins.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func creatorRequest() domain.CreateAdminRequest {
	return domain.CreateAdminRequest{
		FullName: "Owner", Email: "owner@example.com", Password: "password123", ConfirmPassword: "password123",
	}
}
