package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/go-shop-api/internal/domain"
	"github.com/go-shop-api/internal/infrastructure/smtp"
	"github.com/go-shop-api/internal/pkg/id"
)

// Service issues one-time codes and verifies them against their key.
type Service interface {
	// Issue supersedes every earlier code for email, mails a new one and
	// returns the verification key for it.
	Issue(ctx context.Context, email string) (string, error)
	// Verify consumes the code addressed by the key and activates the
	// customer it was issued for. The returned customer is already active.
	Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.Customer, error)
}

type codeStore interface {
	Replace(ctx context.Context, c *domain.OneTimeCode) error
	Get(ctx context.Context, otpID string) (*domain.OneTimeCode, error)
	CurrentID(ctx context.Context, email string) (string, error)
	IncrementAttempts(ctx context.Context, otpID string) error
	ConsumeAndActivate(ctx context.Context, c *domain.OneTimeCode, customerID string, now time.Time) error
}

type customerFinder interface {
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
}

// Recorder receives issuance and verification outcomes for metrics.
type Recorder interface {
	OTPIssued(err error)
	OTPVerified(outcome string)
}

type nopRecorder struct{}

func (nopRecorder) OTPIssued(error)    {}
func (nopRecorder) OTPVerified(string) {}

type Config struct {
	Length      int
	TTL         time.Duration
	MaxAttempts int
}

type ServiceDeps struct {
	Codes     codeStore
	Customers customerFinder
	Mailer    smtp.Mailer
	Config    Config
	Metrics   Recorder
	Logger    logrus.FieldLogger
	Now       func() time.Time
}

type service struct {
	codes     codeStore
	customers customerFinder
	mailer    smtp.Mailer
	cfg       Config
	metrics   Recorder
	log       logrus.FieldLogger
	now       func() time.Time
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		codes:     deps.Codes,
		customers: deps.Customers,
		mailer:    deps.Mailer,
		cfg:       deps.Config,
		metrics:   deps.Metrics,
		log:       deps.Logger,
		now:       deps.Now,
	}
	if s.cfg.Length == 0 {
		s.cfg.Length = 4
	}
	if s.cfg.TTL == 0 {
		s.cfg.TTL = 2 * time.Minute
	}
	if s.cfg.MaxAttempts == 0 {
		s.cfg.MaxAttempts = 5
	}
	if s.metrics == nil {
		s.metrics = nopRecorder{}
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func (s *service) Issue(ctx context.Context, email string) (key string, err error) {
	defer func() { s.metrics.OTPIssued(err) }()

	code, err := generateCode(s.cfg.Length)
	if err != nil {
		return "", err
	}
	now := s.now().UTC()
	rec := &domain.OneTimeCode{
		OTPID:      id.NewUUID(),
		Email:      email,
		Code:       code,
		Expiration: now.Add(s.cfg.TTL),
	}
	if err := s.codes.Replace(ctx, rec); err != nil {
		return "", fmt.Errorf("store otp: %w", err)
	}

	err = s.mailer.Send(ctx, email, smtp.TemplateOTP, map[string]any{
		"OTP":       code,
		"ExpiresIn": humanize(s.cfg.TTL),
	})
	if err != nil {
		s.log.WithError(err).WithField("email", email).Error("otp dispatch failed")
		return "", fmt.Errorf("error sending OTP: %w", domain.ErrUpstream)
	}
	return EncodeKey(email, rec.OTPID, now), nil
}

func (s *service) Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.Customer, error) {
	c, err := s.verify(ctx, req)
	s.metrics.OTPVerified(Outcome(err))
	return c, err
}

func (s *service) verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.Customer, error) {
	vk, err := DecodeKey(req.VerificationKey)
	if err != nil {
		return nil, err
	}
	if vk.Email != req.Email {
		return nil, fmt.Errorf("no OTP was sent to this email: %w", domain.ErrMismatch)
	}

	rec, err := s.codes.Get(ctx, vk.OTPID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, fmt.Errorf("OTP does not exist: %w", domain.ErrNotFound)
		}
		return nil, err
	}
	// The key is unsigned: its email must name the account the code was
	// issued for, not just agree with the request.
	if !strings.EqualFold(rec.Email, vk.Email) {
		return nil, fmt.Errorf("no OTP was sent to this email: %w", domain.ErrMismatch)
	}
	current, err := s.codes.CurrentID(ctx, rec.Email)
	if err != nil {
		return nil, err
	}
	if current != rec.OTPID {
		return nil, fmt.Errorf("OTP does not exist: %w", domain.ErrNotFound)
	}
	now := s.now().UTC()
	switch {
	case rec.Verified:
		return nil, fmt.Errorf("OTP already used: %w", domain.ErrConflict)
	case rec.Expired(now):
		return nil, fmt.Errorf("OTP has expired: %w", domain.ErrExpired)
	case rec.Attempts >= s.cfg.MaxAttempts:
		return nil, fmt.Errorf("too many wrong attempts, request a new OTP: %w", domain.ErrTooManyAttempts)
	}
	if subtle.ConstantTimeCompare([]byte(rec.Code), []byte(req.OTP)) != 1 {
		if err := s.codes.IncrementAttempts(ctx, rec.OTPID); err != nil {
			s.log.WithError(err).WithField("otp_id", rec.OTPID).Warn("could not record failed otp attempt")
		}
		return nil, fmt.Errorf("OTP does not match: %w", domain.ErrMismatch)
	}

	customer, err := s.customers.GetByEmail(ctx, rec.Email)
	if err != nil {
		return nil, fmt.Errorf("customer for OTP: %w", err)
	}
	if err := s.codes.ConsumeAndActivate(ctx, rec, customer.CustomerID, now); err != nil {
		return nil, err
	}
	customer.IsActive = true
	customer.UpdatedAt = now
	return customer, nil
}

// Outcome classifies a verification result for metrics labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrBadRequest):
		return "malformed"
	case errors.Is(err, domain.ErrMismatch):
		return "mismatch"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, domain.ErrConflict):
		return "used"
	case errors.Is(err, domain.ErrExpired):
		return "expired"
	case errors.Is(err, domain.ErrTooManyAttempts):
		return "locked"
	}
	return "error"
}

// generateCode returns n uniformly random decimal digits.
func generateCode(n int) (string, error) {
	var b strings.Builder
	b.Grow(n)
	ten := big.NewInt(10)
	for range n {
		d, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", fmt.Errorf("generate otp: %w", err)
		}
		b.WriteByte(byte('0' + d.Int64()))
	}
	return b.String(), nil
}

func humanize(d time.Duration) string {
	switch {
	case d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", d/time.Minute)
	}
	return d.String()
}
