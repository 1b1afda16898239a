// Package email delivers notification email through SendGrid.
package email

import (
	"context"
	"fmt"
	"html"
	"strings"

	"alcyxob/fitplanhub/internal/config"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type sender interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// SendGridMailer implements service.Mailer.
type SendGridMailer struct {
	client   sender
	fromName string
	fromAddr string
}

func NewSendGridMailer(cfg config.EmailConfig) *SendGridMailer {
	return &SendGridMailer{
		client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromName: cfg.FromName,
		fromAddr: cfg.FromAddress,
	}
}

// Send delivers a single message. SendGrid answers API-level failures with a
// normal HTTP response, so any status of 400 or above is returned as an error.
func (m *SendGridMailer) Send(ctx context.Context, toName, toEmail, subject, body string) error {
	from := mail.NewEmail(m.fromName, m.fromAddr)
	to := mail.NewEmail(toName, toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, htmlBody(body))

	response, err := m.client.SendWithContext(ctx, message)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", response.StatusCode, strings.TrimSpace(response.Body))
	}
	return nil
}

func htmlBody(text string) string {
	paragraphs := strings.Split(html.EscapeString(text), "\n\n")
	for i, p := range paragraphs {
		paragraphs[i] = "<p>" + strings.ReplaceAll(p, "\n", "<br>") + "</p>"
	}
	return strings.Join(paragraphs, "\n")
}
