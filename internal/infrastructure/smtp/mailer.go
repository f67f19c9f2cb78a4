package smtp

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/go-shop-api/internal/config"
)

// Template names understood by Send.
const (
	TemplateOTP     = "otp"
	TemplateWelcome = "welcome"
)

//go:embed templates/*.html
var templateFS embed.FS

var subjects = map[string]string{
	TemplateOTP:     "%s account verification",
	TemplateWelcome: "Welcome to %s",
}

// Mailer sends templated emails.
type Mailer interface {
	Send(ctx context.Context, to, tmpl string, data map[string]any) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
	brand    string
	tmpl     *template.Template
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewMailer(cfg *config.Config) (Mailer, error) {
	t, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("parse mail templates: %w", err)
	}
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
		brand:    cfg.BrandName,
		tmpl:     t,
		send:     smtp.SendMail,
	}, nil
}

func (m *mailer) Send(ctx context.Context, to, tmpl string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := m.render(to, tmpl, data)
	if err != nil {
		return err
	}
	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}
	addr := fmt.Sprintf("%s:%s", m.host, m.port)
	if err := m.send(addr, auth, m.from, []string{to}, msg); err != nil {
		return fmt.Errorf("send %s mail: %w", tmpl, err)
	}
	return nil
}

func (m *mailer) render(to, tmpl string, data map[string]any) ([]byte, error) {
	subject, ok := subjects[tmpl]
	if !ok {
		return nil, fmt.Errorf("unknown mail template %q", tmpl)
	}
	vars := map[string]any{"Brand": m.brand}
	for k, v := range data {
		vars[k] = v
	}
	var body bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&body, tmpl+".html", vars); err != nil {
		return nil, fmt.Errorf("render %s mail: %w", tmpl, err)
	}
	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\nTo: %s\r\nSubject: %s\r\n", m.from, to, fmt.Sprintf(subject, m.brand))
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n")
	msg.Write(body.Bytes())
	return msg.Bytes(), nil
}
