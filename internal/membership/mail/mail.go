package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/url"
	"time"

	"github.com/aussiebroadwan/membership/pkg/slogx"
)

//go:embed templates/*.html
var templateFS embed.FS

var ErrDelivery = errors.New("mail: delivery failed")

// Message is a rendered HTML e-mail.
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Sender delivers a rendered message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Config controls branding and the front-end links embedded in messages.
type Config struct {
	FromName    string
	CompanyName string
	FrontURL    string
	ResetPath   string
	InvitePath  string
}

// Mailer renders the membership templates and hands them to a Sender.
type Mailer struct {
	sender Sender
	cfg    Config
	tmpl   *template.Template
}

func New(sender Sender, cfg Config) (*Mailer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("mail: parse templates: %w", err)
	}
	return &Mailer{sender: sender, cfg: cfg, tmpl: tmpl}, nil
}

type otpData struct {
	Company string
	Code    string
	Ref     string
	Minutes int
}

// SendOTP mails a one-time code together with its reference.
func (m *Mailer) SendOTP(ctx context.Context, to, code, ref string, ttl time.Duration) error {
	return m.send(ctx, to, "Your verification code", "otp.html", otpData{
		Company: m.cfg.CompanyName,
		Code:    code,
		Ref:     ref,
		Minutes: int(ttl.Minutes()),
	})
}

type inviteData struct {
	Company   string
	Link      string
	RoleName  string
	ExpiresAt string
}

// SendInvite mails an invitation link carrying the opaque reference.
func (m *Mailer) SendInvite(ctx context.Context, to, ref, roleName string, expiresAt time.Time) error {
	return m.send(ctx, to, "You have been invited to "+m.cfg.CompanyName, "invite.html", inviteData{
		Company:   m.cfg.CompanyName,
		Link:      m.link(m.cfg.InvitePath, "ref", ref),
		RoleName:  roleName,
		ExpiresAt: expiresAt.UTC().Format(time.RFC1123),
	})
}

type resetData struct {
	Company string
	Link    string
	Hours   int
}

// SendPasswordReset mails a forgot-password link carrying the reset key.
func (m *Mailer) SendPasswordReset(ctx context.Context, to, key string, ttl time.Duration) error {
	return m.send(ctx, to, "Reset your password", "reset.html", resetData{
		Company: m.cfg.CompanyName,
		Link:    m.link(m.cfg.ResetPath, "key", key),
		Hours:   max(int(ttl.Hours()), 1),
	})
}

func (m *Mailer) link(path, param, value string) string {
	u, err := url.Parse(m.cfg.FrontURL)
	if err != nil || m.cfg.FrontURL == "" {
		u = &url.URL{}
	}
	u = u.JoinPath(path)
	q := u.Query()
	q.Set(param, value)
	u.RawQuery = q.Encode()
	return u.String()
}

func (m *Mailer) send(ctx context.Context, to, subject, name string, data any) error {
	log := slogx.FromContext(ctx)

	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return fmt.Errorf("mail: render %s: %w", name, err)
	}

	if err := m.sender.Send(ctx, Message{To: to, Subject: subject, HTML: buf.String()}); err != nil {
		log.Error("mail delivery failed",
			slog.String("template", name),
			slog.Any("error", err),
		)
		return fmt.Errorf("%w: %v", ErrDelivery, err)
	}
	return nil
}
