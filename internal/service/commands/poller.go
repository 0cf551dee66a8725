package commands

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/pkg/clients/telegram"
)

// ChatAPI is the slice of the Telegram client the poller needs.
type ChatAPI interface {
	SendMessage(ctx context.Context, text string) error
	GetUpdates(ctx context.Context, offset int64) ([]telegram.Update, error)
}

// Poller long-polls the bot chat and feeds messages through the command
// service. Messages from other chats are acknowledged but ignored.
type Poller struct {
	client   ChatAPI
	svc      *Service
	chatID   string
	interval time.Duration
	logger   *zap.Logger

	lastUpdateID int64
}

// NewPoller wires a chat poller.
func NewPoller(client ChatAPI, svc *Service, chatID string, interval time.Duration, logger *zap.Logger) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Poller{
		client:   client,
		svc:      svc,
		chatID:   chatID,
		interval: interval,
		logger:   logger,
	}
}

// Run polls until ctx is cancelled. Poll failures are logged and retried on
// the next tick.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("command poller started",
		zap.String("chat_id", p.chatID),
		zap.Duration("interval", p.interval))

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("command poller stopped")
			return
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll drains pending updates once.
func (p *Poller) Poll(ctx context.Context) {
	updates, err := p.client.GetUpdates(ctx, p.lastUpdateID+1)
	if err != nil {
		p.logger.Error("failed to fetch chat updates", zap.Error(err))
		return
	}

	for _, update := range updates {
		if update.UpdateID > p.lastUpdateID {
			p.lastUpdateID = update.UpdateID
		}
		if update.Message == nil || update.Message.Text == "" {
			continue
		}
		if strconv.FormatInt(update.Message.Chat.ID, 10) != p.chatID {
			continue
		}

		reply, err := p.svc.HandleMessage(ctx, update.Message.Text)
		if err != nil {
			if !errors.Is(err, ErrUnsupportedCommand) {
				p.logger.Error("command failed",
					zap.String("text", update.Message.Text),
					zap.Error(err))
			}
			continue
		}

		if err := p.client.SendMessage(ctx, reply); err != nil {
			p.logger.Error("failed to send command reply", zap.Error(err))
		}
	}
}
