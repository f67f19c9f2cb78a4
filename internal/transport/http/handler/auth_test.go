package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/go-shop-api/internal/application/auth"
	"github.com/go-shop-api/internal/domain"
)

// --- mock ---

type mockAuthSvc struct{ mock.Mock }

func (m *mockAuthSvc) adminResult(args mock.Arguments) (*domain.Admin, auth.Tokens, error) {
	a, _ := args.Get(0).(*domain.Admin)
	t, _ := args.Get(1).(auth.Tokens)
	return a, t, args.Error(2)
}

func (m *mockAuthSvc) customerResult(args mock.Arguments) (*domain.Customer, auth.Tokens, error) {
	c, _ := args.Get(0).(*domain.Customer)
	t, _ := args.Get(1).(auth.Tokens)
	return c, t, args.Error(2)
}

func (m *mockAuthSvc) SignUpAdmin(ctx context.Context, req domain.CreateAdminRequest) (*domain.Admin, auth.Tokens, error) {
	return m.adminResult(m.Called(ctx, req))
}
func (m *mockAuthSvc) SignInAdmin(ctx context.Context, req domain.SignInRequest) (*domain.Admin, auth.Tokens, error) {
	return m.adminResult(m.Called(ctx, req))
}
func (m *mockAuthSvc) SignOutAdmin(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}
func (m *mockAuthSvc) RefreshAdmin(ctx context.Context, refreshToken string) (*domain.Admin, auth.Tokens, error) {
	return m.adminResult(m.Called(ctx, refreshToken))
}
func (m *mockAuthSvc) EnsureCreator(ctx context.Context, req domain.CreateAdminRequest) error {
	return m.Called(ctx, req).Error(0)
}
func (m *mockAuthSvc) SignUpCustomer(ctx context.Context, req domain.CreateCustomerRequest) (string, error) {
	args := m.Called(ctx, req)
	return args.String(0), args.Error(1)
}
func (m *mockAuthSvc) SignInCustomer(ctx context.Context, req domain.SignInRequest) (*auth.CustomerSignIn, error) {
	args := m.Called(ctx, req)
	if res, _ := args.Get(0).(*auth.CustomerSignIn); res != nil {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockAuthSvc) SignOutCustomer(ctx context.Context, refreshToken string) error {
	return m.Called(ctx, refreshToken).Error(0)
}
func (m *mockAuthSvc) RefreshCustomer(ctx context.Context, refreshToken string) (*domain.Customer, auth.Tokens, error) {
	return m.customerResult(m.Called(ctx, refreshToken))
}
func (m *mockAuthSvc) ResendOTP(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}
func (m *mockAuthSvc) VerifyOTP(ctx context.Context, req domain.VerifyOTPRequest) (*domain.Customer, auth.Tokens, error) {
	return m.customerResult(m.Called(ctx, req))
}
func (m *mockAuthSvc) CheckToken(ctx context.Context, accessToken string) (*domain.CustomerProfile, error) {
	args := m.Called(ctx, accessToken)
	if p, _ := args.Get(0).(*domain.CustomerProfile); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- helpers ---

func newAuthHandler(svc *mockAuthSvc) *AuthHandler {
	return NewAuthHandler(svc, CookieConfig{MaxAge: 24 * time.Hour})
}

func jsonReq(t *testing.T, method, target string, v any) *http.Request {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return httptest.NewRequest(method, target, bytes.NewReader(body))
}

func refreshCookieOf(rr *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range rr.Result().Cookies() {
		if c.Name == refreshCookie {
			return c
		}
	}
	return nil
}

var testTokens = auth.Tokens{AccessToken: "access", RefreshToken: "refresh"}

// --- tests ---

func TestSignInAdmin_SetsCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	req := domain.SignInRequest{Email: "boss@shop.test", Password: "secret123"}
	svc.On("SignInAdmin", mock.Anything, req).Return(&domain.Admin{AdminID: "a1"}, testTokens, nil)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).SignInAdmin(rr, jsonReq(t, http.MethodPost, "/auth/signin-admin", req))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "a1", resp.ID)
	assert.Equal(t, "access", resp.AccessToken)

	c := refreshCookieOf(rr)
	require.NotNil(t, c)
	assert.Equal(t, "refresh", c.Value)
	assert.True(t, c.HttpOnly)
	assert.Equal(t, 86400, c.MaxAge)
}

func TestSignInAdmin_InvalidBody(t *testing.T) {
	rr := httptest.NewRecorder()
	newAuthHandler(&mockAuthSvc{}).SignInAdmin(rr, httptest.NewRequest(http.MethodPost, "/auth/signin-admin", bytes.NewBufferString("not-json")))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignInAdmin_WrongPassword(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SignInAdmin", mock.Anything, mock.Anything).Return(nil, auth.Tokens{}, domain.ErrUnauthorized)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).SignInAdmin(rr, jsonReq(t, http.MethodPost, "/auth/signin-admin", domain.SignInRequest{Email: "a@b.co", Password: "x"}))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Nil(t, refreshCookieOf(rr))
}

func TestSignUpCustomer_ReturnsVerificationKey(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SignUpCustomer", mock.Anything, mock.Anything).Return("a2V5", nil)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).SignUpCustomer(rr, jsonReq(t, http.MethodPost, "/auth/signup-customer", domain.CreateCustomerRequest{Email: "x@y.co"}))

	require.Equal(t, http.StatusCreated, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "a2V5", resp.VerificationKey)
}

func TestSignUpCustomer_DuplicateIsConflict(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SignUpCustomer", mock.Anything, mock.Anything).Return("", domain.ErrConflict)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).SignUpCustomer(rr, jsonReq(t, http.MethodPost, "/auth/signup-customer", domain.CreateCustomerRequest{Email: "x@y.co"}))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSignInCustomer_InactiveGetsVerificationKey(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SignInCustomer", mock.Anything, mock.Anything).Return(&auth.CustomerSignIn{
		Customer:        &domain.Customer{CustomerID: "c1"},
		VerificationKey: "a2V5",
	}, nil)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).SignInCustomer(rr, jsonReq(t, http.MethodPost, "/auth/signin-customer", domain.SignInRequest{Email: "x@y.co", Password: "p"}))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "a2V5", resp.VerificationKey)
	assert.Empty(t, resp.AccessToken)
	assert.Nil(t, refreshCookieOf(rr))
}

// The OTP endpoints answer every failure with 400, whatever the cause.
func TestVerifyOTP_FailuresAreBadRequest(t *testing.T) {
	for _, err := range []error{domain.ErrNotFound, domain.ErrConflict, domain.ErrExpired, domain.ErrTooManyAttempts, assert.AnError} {
		svc := &mockAuthSvc{}
		svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(nil, auth.Tokens{}, err)

		rr := httptest.NewRecorder()
		newAuthHandler(svc).VerifyOTP(rr, jsonReq(t, http.MethodPost, "/auth/verifyotp", domain.VerifyOTPRequest{Email: "x@y.co", OTP: "1234", VerificationKey: "k"}))

		assert.Equal(t, http.StatusBadRequest, rr.Code, err.Error())
	}
}

func TestVerifyOTP_InternalErrorIsHidden(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(nil, auth.Tokens{}, assert.AnError)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).VerifyOTP(rr, jsonReq(t, http.MethodPost, "/auth/verifyotp", domain.VerifyOTPRequest{}))

	assert.NotContains(t, rr.Body.String(), assert.AnError.Error())
}

func TestVerifyOTP_Success(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("VerifyOTP", mock.Anything, mock.Anything).Return(&domain.Customer{CustomerID: "c1", IsActive: true}, testTokens, nil)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).VerifyOTP(rr, jsonReq(t, http.MethodPost, "/auth/verifyotp", domain.VerifyOTPRequest{Email: "x@y.co", OTP: "1234", VerificationKey: "k"}))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.NotNil(t, resp.User)
	assert.True(t, resp.User.IsActive)
	assert.Equal(t, "access", resp.AccessToken)
	assert.NotNil(t, refreshCookieOf(rr))
}

func TestNewOTP_ActiveAccountIsBadRequest(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("ResendOTP", mock.Anything, "x@y.co").Return("", domain.ErrConflict)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).NewOTP(rr, jsonReq(t, http.MethodPost, "/auth/newotp", domain.EmailRequest{Email: "x@y.co"}))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestSignOutCustomer_ReadsCookieAndClearsIt(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("SignOutCustomer", mock.Anything, "refresh").Return(nil)

	r := httptest.NewRequest(http.MethodPost, "/auth/signout-customer", nil)
	r.AddCookie(&http.Cookie{Name: refreshCookie, Value: "refresh"})
	rr := httptest.NewRecorder()
	newAuthHandler(svc).SignOutCustomer(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	c := refreshCookieOf(rr)
	require.NotNil(t, c)
	assert.Equal(t, "", c.Value)
	assert.Less(t, c.MaxAge, 0)
	svc.AssertExpectations(t)
}

func TestRefreshCustomer_MissingCookie(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("RefreshCustomer", mock.Anything, "").Return(nil, auth.Tokens{}, domain.ErrUnauthorized)

	rr := httptest.NewRecorder()
	newAuthHandler(svc).RefreshCustomer(rr, httptest.NewRequest(http.MethodPost, "/auth/refresh-customer", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestCheckToken(t *testing.T) {
	svc := &mockAuthSvc{}
	svc.On("CheckToken", mock.Anything, "tok").Return(&domain.CustomerProfile{ID: "c1", Email: "x@y.co"}, nil)

	r := httptest.NewRequest(http.MethodGet, "/auth/check-token", nil)
	r.Header.Set("Authorization", "Bearer tok")
	rr := httptest.NewRecorder()
	newAuthHandler(svc).CheckToken(rr, r)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp AuthEnvelope
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	assert.Equal(t, "c1", resp.Customer.ID)
}

func TestCheckToken_MissingHeader(t *testing.T) {
	rr := httptest.NewRecorder()
	newAuthHandler(&mockAuthSvc{}).CheckToken(rr, httptest.NewRequest(http.MethodGet, "/auth/check-token", nil))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
