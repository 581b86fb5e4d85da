package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/quotedprintable"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"quantumdaily/internal/config"
	"quantumdaily/internal/ports"
)

const (
	ModeConsole  = "console"
	ModeSMTP     = "smtp"
	ModeSendGrid = "sendgrid"
)

const sendGridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Sender delivers rendered issues over the configured channel.
type Sender struct {
	cfg        config.EmailConfig
	logger     *slog.Logger
	httpClient *http.Client

	// overridable for tests
	sendGridURL string
}

var _ ports.Sender = (*Sender)(nil)

// NewSender builds a sender from configuration.
func NewSender(cfg config.EmailConfig, logger *slog.Logger) *Sender {
	return &Sender{
		cfg:         cfg,
		logger:      logger,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
		sendGridURL: sendGridEndpoint,
	}
}

// Send delivers one message with both plaintext and HTML bodies.
func (s *Sender) Send(ctx context.Context, subject, htmlBody, textBody string) error {
	switch s.cfg.Mode {
	case "", ModeConsole:
		s.logger.Info("email (console mode)",
			"to", s.cfg.To,
			"subject", subject,
			"bytes", len(htmlBody))
		fmt.Println(textBody)
		return nil
	case ModeSMTP:
		return s.sendSMTP(subject, htmlBody, textBody)
	case ModeSendGrid:
		return s.sendSendGrid(ctx, subject, htmlBody, textBody)
	default:
		return fmt.Errorf("unknown email mode %q", s.cfg.Mode)
	}
}

func (s *Sender) sendSMTP(subject, htmlBody, textBody string) error {
	if s.cfg.SMTPHost == "" || s.cfg.From == "" || s.cfg.To == "" {
		return fmt.Errorf("smtp mode requires host, from, and to")
	}

	msg, err := buildMIME(s.cfg.From, s.cfg.To, subject, htmlBody, textBody)
	if err != nil {
		return fmt.Errorf("build message: %w", err)
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	var auth smtp.Auth
	if s.cfg.SMTPUser != "" {
		auth = smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)
	}
	if err := smtp.SendMail(addr, auth, s.cfg.From, []string{s.cfg.To}, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *Sender) sendSendGrid(ctx context.Context, subject, htmlBody, textBody string) error {
	if s.cfg.SendGridAPIKey == "" || s.cfg.From == "" || s.cfg.To == "" {
		return fmt.Errorf("sendgrid mode requires api key, from, and to")
	}

	payload, err := json.Marshal(map[string]any{
		"personalizations": []map[string]any{
			{"to": []map[string]string{{"email": s.cfg.To}}},
		},
		"from":    map[string]string{"email": s.cfg.From},
		"subject": subject,
		"content": []map[string]string{
			{"type": "text/plain", "value": textBody},
			{"type": "text/html", "value": htmlBody},
		},
	})
	if err != nil {
		return fmt.Errorf("marshal sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.sendGridURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.SendGridAPIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sendgrid request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sendgrid error %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}
	return nil
}

// buildMIME assembles a multipart/alternative message with quoted-printable
// text and HTML parts.
func buildMIME(from, to, subject, htmlBody, textBody string) ([]byte, error) {
	const boundary = "quantumdaily-alt-1"

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", textBody},
		{"text/html; charset=utf-8", htmlBody},
	} {
		fmt.Fprintf(&b, "--%s\r\n", boundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", part.contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")

		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return b.Bytes(), nil
}
