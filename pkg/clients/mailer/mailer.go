package mailer

import (
	"context"
	"fmt"
	"net/smtp"

	"github.com/tanush1852/stockwatch/internal/config"
)

// Client sends plain-text mail over SMTP with STARTTLS.
type Client interface {
	Send(ctx context.Context, subject, body string) error
}

// SMTPClient is the net/smtp backed implementation of Client.
type SMTPClient struct {
	cfg config.EmailConfig
}

// NewClient builds an SMTP mailer from the provided configuration values.
func NewClient(cfg config.EmailConfig) *SMTPClient {
	return &SMTPClient{cfg: cfg}
}

// Send delivers one message to the configured recipient. The context is
// accepted for interface symmetry; smtp.SendMail manages its own dial.
func (c *SMTPClient) Send(ctx context.Context, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", c.cfg.From, c.cfg.To, subject, body)
	addr := c.cfg.Host + ":" + c.cfg.Port
	auth := smtp.PlainAuth("", c.cfg.Username, c.cfg.Password, c.cfg.Host)

	if err := smtp.SendMail(addr, auth, c.cfg.From, []string{c.cfg.To}, []byte(msg)); err != nil {
		return fmt.Errorf("send mail via %s: %w", addr, err)
	}
	return nil
}
