package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

type SendgridSender struct {
	client   *sendgrid.Client
	fromName string
	fromAddr string
}

func NewSendgridSender(apiKey, fromName, fromAddr string) *SendgridSender {
	return &SendgridSender{
		client:   sendgrid.NewSendClient(apiKey),
		fromName: fromName,
		fromAddr: fromAddr,
	}
}

func (s *SendgridSender) Send(ctx context.Context, msg Message) error {
	from := mail.NewEmail(s.fromName, s.fromAddr)
	to := mail.NewEmail(msg.ToName, msg.ToEmail)

	html := msg.HTML
	if html == "" {
		html = "<p>" + msg.Text + "</p>"
	}

	m := mail.NewSingleEmail(from, msg.Subject, to, msg.Text, html)

	resp, err := s.client.SendWithContext(ctx, m)

	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}

	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}

	return nil
}
