package services

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/fleetsync/server/internal/config"
	"github.com/fleetsync/server/internal/observability"
)

// SMTPService sends alert emails over an implicit-TLS SMTP connection.
// When credentials are not configured it degrades to logging the message
// instead of attempting delivery.
type SMTPService struct {
	cfg    config.SMTP
	logger *observability.Logger
}

func NewSMTPService(cfg config.SMTP, logger *observability.Logger) *SMTPService {
	if logger == nil {
		logger = observability.GetLogger()
	}
	return &SMTPService{cfg: cfg, logger: logger}
}

// Configured reports whether real delivery is possible.
func (s *SMTPService) Configured() bool {
	return s.cfg.Username != "" && s.cfg.Password != "" && s.cfg.To != ""
}

// Send delivers a plain-text email. Unconfigured services log the
// message and report success so alert bookkeeping still proceeds.
func (s *SMTPService) Send(subject, body string) error {
	if !s.Configured() {
		s.logger.WithField("subject", subject).Info("Email not configured, logging alert instead")
		s.logger.Infof("MOCK EMAIL: %s", body)
		return nil
	}

	addr := net.JoinHostPort(s.cfg.Host, fmt.Sprintf("%d", s.cfg.Port))
	msg := s.buildMessage(subject, body)

	if s.cfg.UseTLS {
		return s.sendTLS(addr, msg)
	}
	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	return smtp.SendMail(addr, auth, s.cfg.From, s.recipients(), msg)
}

// sendTLS handles port 465 style connections where TLS wraps the socket
// before any SMTP traffic, which smtp.SendMail cannot do.
func (s *SMTPService) sendTLS(addr string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{
		ServerName:         s.cfg.Host,
		InsecureSkipVerify: s.cfg.SkipVerify,
	})
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	client, err := smtp.NewClient(conn, s.cfg.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("smtp handshake: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err := client.Mail(s.cfg.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	for _, rcpt := range s.recipients() {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}

func (s *SMTPService) recipients() []string {
	var out []string
	for _, r := range strings.Split(s.cfg.To, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func (s *SMTPService) buildMessage(subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(s.recipients(), ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
