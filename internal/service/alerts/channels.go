package alerts

import (
	"context"
	"fmt"

	"github.com/tanush1852/stockwatch/pkg/clients/mailer"
	"github.com/tanush1852/stockwatch/pkg/clients/telegram"
	"github.com/tanush1852/stockwatch/pkg/clients/twilio"
)

// EmailChannel delivers alerts as plain-text mail using the alert subject.
type EmailChannel struct {
	client mailer.Client
}

// NewEmailChannel wraps a mailer client as an alert channel.
func NewEmailChannel(client mailer.Client) *EmailChannel {
	return &EmailChannel{client: client}
}

func (c *EmailChannel) Name() string { return "email" }

func (c *EmailChannel) Send(ctx context.Context, alert Alert) error {
	return c.client.Send(ctx, alert.Subject, alert.Body)
}

// TelegramChannel delivers alerts to the configured Telegram chat.
type TelegramChannel struct {
	client telegram.Client
}

// NewTelegramChannel wraps a Telegram client as an alert channel.
func NewTelegramChannel(client telegram.Client) *TelegramChannel {
	return &TelegramChannel{client: client}
}

func (c *TelegramChannel) Name() string { return "telegram" }

func (c *TelegramChannel) Send(ctx context.Context, alert Alert) error {
	return c.client.SendMessage(ctx, fmt.Sprintf("🚨 %s Alert:\n\n%s", alert.Kind, alert.Body))
}

// WhatsAppChannel delivers alerts over the Twilio WhatsApp transport.
type WhatsAppChannel struct {
	client twilio.Client
}

// NewWhatsAppChannel wraps a Twilio client as an alert channel.
func NewWhatsAppChannel(client twilio.Client) *WhatsAppChannel {
	return &WhatsAppChannel{client: client}
}

func (c *WhatsAppChannel) Name() string { return "whatsapp" }

func (c *WhatsAppChannel) Send(ctx context.Context, alert Alert) error {
	return c.client.SendMessage(ctx, fmt.Sprintf("%s Alert:\n\n%s", alert.Kind, alert.Body))
}
