package alerts

import (
	"context"

	"go.uber.org/zap"
)

// Alert is one logical notification fanned out to every channel.
type Alert struct {
	Kind    string
	Subject string
	Body    string
}

// Channel is a single delivery transport. Implementations format the alert
// for their medium.
type Channel interface {
	Name() string
	Send(ctx context.Context, alert Alert) error
}

// Dispatcher fans one alert out to all configured channels. Delivery is
// best-effort, at-most-once: a failing channel is logged and never blocks
// the remaining channels or the caller.
type Dispatcher struct {
	channels []Channel
	logger   *zap.Logger
}

// NewDispatcher wires a dispatcher over the given channels.
func NewDispatcher(channels []Channel, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{channels: channels, logger: logger}
}

// Dispatch delivers the alert to every channel in order.
func (d *Dispatcher) Dispatch(ctx context.Context, alert Alert) {
	if len(d.channels) == 0 {
		d.logger.Warn("no alert channels configured", zap.String("kind", alert.Kind))
		return
	}

	for _, ch := range d.channels {
		if err := ch.Send(ctx, alert); err != nil {
			d.logger.Error("channel delivery failed",
				zap.String("channel", ch.Name()),
				zap.String("kind", alert.Kind),
				zap.Error(err))
			continue
		}
		d.logger.Info("alert delivered",
			zap.String("channel", ch.Name()),
			zap.String("kind", alert.Kind))
	}
}
