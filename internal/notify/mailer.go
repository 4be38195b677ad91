package notify

import (
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"os"
)

// Mailer sends a single plain-text email. Implementations report delivery
// failure via the returned error; callers treat delivery as best-effort.
type Mailer interface {
	Send(to, subject, body string) error
}

// SMTPMailer delivers mail through an SMTP relay with PLAIN auth.
type SMTPMailer struct {
	Host     string
	Port     string
	Username string
	Password string
	Sender   string
}

// SMTPFromEnv builds a mailer from EMAIL_* environment variables.
// Missing configuration is allowed; Send then logs and skips delivery.
func SMTPFromEnv() *SMTPMailer {
	port := os.Getenv("EMAIL_PORT")
	if port == "" {
		port = "587"
	}
	return &SMTPMailer{
		Host:     os.Getenv("EMAIL_HOST"),
		Port:     port,
		Username: os.Getenv("EMAIL_USER"),
		Password: os.Getenv("EMAIL_PASS"),
		Sender:   os.Getenv("EMAIL_SENDER"),
	}
}

func (m *SMTPMailer) configured() bool {
	return m.Host != "" && m.Username != "" && m.Password != "" && m.Sender != ""
}

// Send delivers one message. When SMTP is not configured the message is
// logged and dropped without error, so the surrounding flow continues as if
// delivery succeeded.
func (m *SMTPMailer) Send(to, subject, body string) error {
	if !m.configured() {
		slog.Info("email not configured, skipping delivery", "to", to, "subject", subject)
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n",
		m.Sender, to, subject, body)

	addr := net.JoinHostPort(m.Host, m.Port)
	auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
	if err := smtp.SendMail(addr, auth, m.Sender, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
