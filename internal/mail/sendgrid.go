package mail

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendGridSender delivers through the SendGrid v3 API.
type SendGridSender struct {
	client *sendgrid.Client
}

// NewSendGridSender creates a SendGrid transport.
func NewSendGridSender(apiKey string) *SendGridSender {
	return &SendGridSender{client: sendgrid.NewSendClient(apiKey)}
}

// Send delivers m.
func (s *SendGridSender) Send(ctx context.Context, m Message) error {
	msg := sgmail.NewV3Mail()
	msg.SetFrom(address(m.From))
	msg.Subject = m.Subject

	p := sgmail.NewPersonalization()
	for _, to := range m.To {
		p.AddTos(address(to))
	}
	msg.AddPersonalizations(p)
	if m.ReplyTo != "" {
		msg.SetReplyTo(address(m.ReplyTo))
	}
	msg.AddContent(sgmail.NewContent("text/plain", m.Text), sgmail.NewContent("text/html", m.HTML))

	resp, err := s.client.SendWithContext(ctx, msg)
	if err != nil {
		return fmt.Errorf("mail: sendgrid: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("mail: sendgrid: status %d: %s", resp.StatusCode, resp.Body)
	}
	return nil
}

// address splits "Name <addr>" for the SendGrid payload.
func address(s string) *sgmail.Email {
	if a, err := mail.ParseAddress(s); err == nil {
		return sgmail.NewEmail(a.Name, a.Address)
	}
	return sgmail.NewEmail("", s)
}
