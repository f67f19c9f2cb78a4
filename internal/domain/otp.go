package domain

import "time"

// OneTimeCode is a short-lived numeric code proving control of an email.
// PK: otp_id. A per-email pointer item names the live code, so issuing a new
// code supersedes the previous one.
type OneTimeCode struct {
	OTPID      string    `json:"id" dynamodbav:"otp_id"`
	Email      string    `json:"email" dynamodbav:"email"`
	Code       string    `json:"-" dynamodbav:"code"`
	Expiration time.Time `json:"expiration" dynamodbav:"expiration"`
	Verified   bool      `json:"verified" dynamodbav:"verified"`
	Attempts   int       `json:"attempts" dynamodbav:"attempts"`
}

// Expired reports whether the code is past its expiration at now.
func (c *OneTimeCode) Expired(now time.Time) bool {
	return now.After(c.Expiration)
}

type EmailRequest struct {
	Email string `json:"email" validate:"required,email,min=3,max=100"`
}

type VerifyOTPRequest struct {
	Email           string `json:"email" validate:"required,email"`
	OTP             string `json:"otp" validate:"required,numeric"`
	VerificationKey string `json:"verification_key" validate:"required"`
}
