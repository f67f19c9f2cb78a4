package otp

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-shop-api/internal/domain"
)

// keyTimeLayout is ISO-8601 UTC with millisecond precision and a Z suffix.
const keyTimeLayout = "2006-01-02T15:04:05.000Z"

// VerificationKey is the decoded form of the opaque key handed to clients.
// Field order is part of the wire format.
type VerificationKey struct {
	Email     string `json:"email"`
	OTPID     string `json:"otp_id"`
	Timestamp string `json:"timestamp"`
}

// EncodeKey renders the verification key for a freshly issued code.
// The key is not signed; the server-side code is the authenticator.
func EncodeKey(email, otpID string, issuedAt time.Time) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(VerificationKey{
		Email:     email,
		OTPID:     otpID,
		Timestamp: issuedAt.UTC().Format(keyTimeLayout),
	})
	return base64.StdEncoding.EncodeToString(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
}

var keyEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeKey parses a verification key, accepting standard or URL-safe
// alphabets with or without padding.
func DecodeKey(key string) (VerificationKey, error) {
	key = strings.TrimSpace(key)
	var raw []byte
	for _, enc := range keyEncodings {
		b, err := enc.DecodeString(key)
		if err == nil {
			raw = b
			break
		}
	}
	if raw == nil {
		return VerificationKey{}, fmt.Errorf("malformed verification key: %w", domain.ErrBadRequest)
	}
	var vk VerificationKey
	if err := json.Unmarshal(raw, &vk); err != nil {
		return VerificationKey{}, fmt.Errorf("malformed verification key: %w", domain.ErrBadRequest)
	}
	if vk.Email == "" || vk.OTPID == "" {
		return VerificationKey{}, fmt.Errorf("incomplete verification key: %w", domain.ErrBadRequest)
	}
	return vk, nil
}
