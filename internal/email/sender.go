package email

import (
	"context"
	"log/slog"
)

type Message struct {
	ToName  string
	ToEmail string
	Subject string
	Text    string
	HTML    string
}

type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender stands in when no SendGrid key is configured (local dev,
// tests). The OTP ends up in the logs instead of an inbox.
type LogSender struct {
	log *slog.Logger
}

func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.log.Info("email.send",
		"to", msg.ToEmail,
		"subject", msg.Subject,
		"text", msg.Text,
	)
	return nil
}
