// Package mail dispatches generated letter packages over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"

	gomail "github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// OutgoingLetter is one package to be emailed. The attachment is the final
// self-contained byte buffer, so a failed send can be retried without
// re-running render or merge.
type OutgoingLetter struct {
	Recipients  []string
	Subject     string
	Body        string
	Filename    string
	ContentType string
	Attachment  []byte
}

// Sender defines outbound mail dispatch.
type Sender interface {
	SendPackage(ctx context.Context, letter OutgoingLetter) error
}

// Config holds SMTP transport settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPSender sends packages through an SMTP relay.
type SMTPSender struct {
	cfg    Config
	logger *zap.Logger
}

// NewSMTPSender creates an SMTP sender.
func NewSMTPSender(cfg Config, logger *zap.Logger) *SMTPSender {
	return &SMTPSender{cfg: cfg, logger: logger}
}

// SendPackage sends the letter package to all recipients in one message.
func (s *SMTPSender) SendPackage(ctx context.Context, letter OutgoingLetter) error {
	s.logger.Info("Sending letter package",
		zap.Strings("recipients", letter.Recipients),
		zap.String("filename", letter.Filename),
		zap.Int("attachment_size", len(letter.Attachment)))

	msg := gomail.NewMsg()
	if err := msg.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender address: %w", err)
	}
	if err := msg.To(letter.Recipients...); err != nil {
		return fmt.Errorf("invalid recipient address: %w", err)
	}
	msg.Subject(letter.Subject)
	msg.SetBodyString(gomail.TypeTextPlain, letter.Body)

	if err := msg.AttachReader(letter.Filename, bytes.NewReader(letter.Attachment),
		gomail.WithFileContentType(gomail.ContentType(letter.ContentType))); err != nil {
		return fmt.Errorf("failed to attach package: %w", err)
	}

	opts := []gomail.Option{gomail.WithPort(s.cfg.Port)}
	if s.cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(s.cfg.Username),
			gomail.WithPassword(s.cfg.Password))
	}

	client, err := gomail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create SMTP client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		s.logger.Error("Failed to send letter package",
			zap.Strings("recipients", letter.Recipients),
			zap.Error(err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

var _ Sender = (*SMTPSender)(nil)
