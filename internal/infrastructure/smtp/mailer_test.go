package smtp

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-shop-api/internal/config"
)

func newTestMailer(t *testing.T) *mailer {
	t.Helper()
	m, err := NewMailer(&config.Config{
		SMTPHost:  "localhost",
		SMTPPort:  "1025",
		SMTPFrom:  "noreply@example.com",
		BrandName: "Furnibayt",
	})
	require.NoError(t, err)
	return m.(*mailer)
}

func TestSend_RendersOTPTemplate(t *testing.T) {
	m := newTestMailer(t)
	var gotAddr string
	var gotMsg []byte
	m.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr = addr
		gotMsg = msg
		assert.Equal(t, []string{"a@b.com"}, to)
		return nil
	}

	err := m.Send(context.Background(), "a@b.com", TemplateOTP, map[string]any{"OTP": "4821", "ExpiresIn": "2 minutes"})
	require.NoError(t, err)
	assert.Equal(t, "localhost:1025", gotAddr)
	assert.Contains(t, string(gotMsg), "Subject: Furnibayt account verification")
	assert.Contains(t, string(gotMsg), "4821")
}

func TestSend_UnknownTemplate(t *testing.T) {
	m := newTestMailer(t)
	err := m.Send(context.Background(), "a@b.com", "invoice", nil)
	assert.ErrorContains(t, err, "unknown mail template")
}

func TestSend_TransportError(t *testing.T) {
	m := newTestMailer(t)
	m.send = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("connection refused") }

	err := m.Send(context.Background(), "a@b.com", TemplateWelcome, map[string]any{"FullName": "Ann Lee"})
	assert.ErrorContains(t, err, "connection refused")
}
