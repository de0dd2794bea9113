package mail

import (
	"context"

	"github.com/starford/folio/internal/models"
)

// Notifier composes the application's emails and hands them to a Sender.
type Notifier struct {
	sender Sender
	from   string
	admin  string
}

// NewNotifier creates a Notifier. admin receives new-message notifications.
func NewNotifier(sender Sender, from, admin string) *Notifier {
	return &Notifier{sender: sender, from: from, admin: admin}
}

// SendPasswordReset mails a reset link to the account owner.
func (n *Notifier) SendPasswordReset(ctx context.Context, u *models.User, link string) error {
	subject, html, text, err := RenderPasswordReset(u, link)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		From:    n.from,
		To:      []string{u.Email},
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
}

// NotifyNewMessage tells the site owner about a contact message. Replies go
// to the sender.
func (n *Notifier) NotifyNewMessage(ctx context.Context, msg *models.Message) error {
	subject, html, text, err := RenderNewMessage(msg)
	if err != nil {
		return err
	}
	return n.sender.Send(ctx, Message{
		From:    n.from,
		To:      []string{n.admin},
		ReplyTo: msg.Email,
		Subject: subject,
		HTML:    html,
		Text:    text,
	})
}
