package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-shop-api/internal/application/auth"
	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/transport/http/middleware"
)

const refreshCookie = "refresh_token"

// CookieConfig controls the refresh-token cookie.
type CookieConfig struct {
	MaxAge time.Duration
	Secure bool
}

// AuthHandler serves the /auth endpoints for admins and customers.
type AuthHandler struct {
	svc    auth.Service
	cookie CookieConfig
}

func NewAuthHandler(svc auth.Service, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{svc: svc, cookie: cookie}
}

func (h *AuthHandler) setRefreshCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(h.cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func refreshFromCookie(r *http.Request) string {
	c, err := r.Cookie(refreshCookie)
	if err != nil {
		return ""
	}
	return c.Value
}

// --- admins ---

func (h *AuthHandler) SignUpAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAdminRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, tokens, err := h.svc.SignUpAdmin(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusCreated, AuthEnvelope{ID: a.AdminID, AccessToken: tokens.AccessToken})
}

func (h *AuthHandler) SignInAdmin(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	a, tokens, err := h.svc.SignInAdmin(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "signed in", ID: a.AdminID, AccessToken: tokens.AccessToken})
}

func (h *AuthHandler) SignOutAdmin(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SignOutAdmin(r.Context(), refreshFromCookie(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "signed out"})
}

func (h *AuthHandler) RefreshAdmin(w http.ResponseWriter, r *http.Request) {
	a, tokens, err := h.svc.RefreshAdmin(r.Context(), refreshFromCookie(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "tokens refreshed", ID: a.AdminID, AccessToken: tokens.AccessToken})
}

// --- customers ---

func (h *AuthHandler) SignUpCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	key, err := h.svc.SignUpCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, AuthEnvelope{Message: "verification code sent to your email", VerificationKey: key})
}

func (h *AuthHandler) SignInCustomer(w http.ResponseWriter, r *http.Request) {
	var req domain.SignInRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	res, err := h.svc.SignInCustomer(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if res.Tokens == nil {
		writeJSON(w, http.StatusOK, AuthEnvelope{
			Message:         "account is not activated, a new verification code was sent",
			VerificationKey: res.VerificationKey,
		})
		return
	}
	h.setRefreshCookie(w, res.Tokens.RefreshToken)
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "signed in", ID: res.Customer.CustomerID, AccessToken: res.Tokens.AccessToken})
}

func (h *AuthHandler) SignOutCustomer(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.SignOutCustomer(r.Context(), refreshFromCookie(r)); err != nil {
		writeServiceError(w, err)
		return
	}
	h.clearRefreshCookie(w)
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "signed out"})
}

func (h *AuthHandler) RefreshCustomer(w http.ResponseWriter, r *http.Request) {
	c, tokens, err := h.svc.RefreshCustomer(r.Context(), refreshFromCookie(r))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	h.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "tokens refreshed", ID: c.CustomerID, AccessToken: tokens.AccessToken})
}

// NewOTP answers every failure with 400.
func (h *AuthHandler) NewOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.EmailRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	key, err := h.svc.ResendOTP(r.Context(), req.Email)
	if err != nil {
		writeError(w, http.StatusBadRequest, otpMessage(err))
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "verification code sent to your email", VerificationKey: key})
}

// VerifyOTP answers every failure with 400.
func (h *AuthHandler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req domain.VerifyOTPRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	c, tokens, err := h.svc.VerifyOTP(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusBadRequest, otpMessage(err))
		return
	}
	h.setRefreshCookie(w, tokens.RefreshToken)
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "account activated", User: c, AccessToken: tokens.AccessToken})
}

// otpMessage keeps domain messages and hides everything else.
func otpMessage(err error) string {
	if statusFor(err) == http.StatusInternalServerError {
		return "could not process the verification code"
	}
	return err.Error()
}

func (h *AuthHandler) CheckToken(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "missing or invalid authorization header")
		return
	}
	profile, err := h.svc.CheckToken(r.Context(), token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, http.StatusUnauthorized, "invalid or expired token")
			return
		}
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, AuthEnvelope{Message: "token is valid", Customer: profile})
}
