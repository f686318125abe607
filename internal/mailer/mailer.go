// Package mailer is the email boundary. Delivery failures are the caller's
// to log; nothing in this package retries or persists.
package mailer

import (
	"context"

	"finwise/pkg/config"

	"go.uber.org/zap"
	gomail "gopkg.in/gomail.v2"
)

type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers one message. Implementations must be safe for concurrent
// use; jobs send from multiple goroutines.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender sends mail through a plain SMTP relay.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

func NewSMTPSender(cfg *config.SMTPConfig, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		logger: logger,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return err
	}

	s.logger.Debug("Email sent",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
	)
	return nil
}
