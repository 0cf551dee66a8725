package reminders

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/service/alerts"
)

const dateLayout = "2006-01-02"

const alertKind = "Reminder"

// Service scans a JSON reminders file for events coming up within the
// configured window and pushes them through the alert pipeline. Dedup keeps
// a daily rescan from repeating the same reminder.
type Service struct {
	path       string
	windowDays int
	dedup      *alerts.Deduplicator
	dispatcher *alerts.Dispatcher
	logger     *zap.Logger
	now        func() time.Time
}

// NewService wires a reminder service instance.
func NewService(path string, windowDays int, dedup *alerts.Deduplicator, dispatcher *alerts.Dispatcher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		path:       path,
		windowDays: windowDays,
		dedup:      dedup,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

// CheckDue reads the reminders file and alerts every event whose date falls
// between today and today + windowDays inclusive.
func (s *Service) CheckDue(ctx context.Context) error {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return fmt.Errorf("read reminders file %s: %w", s.path, err)
	}

	var reminders []models.Reminder
	if err := json.Unmarshal(raw, &reminders); err != nil {
		return fmt.Errorf("parse reminders file %s: %w", s.path, err)
	}

	// Event dates parse as UTC midnights, so "today" must be the calendar
	// day of the local clock expressed the same way. Truncate would round
	// to a UTC day boundary and misplace same-day events in other zones.
	year, month, day := s.now().Date()
	today := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	windowEnd := today.AddDate(0, 0, s.windowDays)

	for _, reminder := range reminders {
		eventDate, err := time.Parse(dateLayout, reminder.Date)
		if err != nil {
			s.logger.Warn("skipping reminder with invalid date",
				zap.String("date", reminder.Date),
				zap.String("event", reminder.Content.Event))
			continue
		}

		if eventDate.Before(today) || eventDate.After(windowEnd) {
			continue
		}

		body := fmt.Sprintf("🎉 Reminder: %s is coming up!\nPrepare these items: %s",
			reminder.Content.Event, strings.Join(reminder.Content.Goods, ", "))
		subject := fmt.Sprintf("Reminder: %s", reminder.Content.Event)

		if !s.dedup.ShouldSend(ctx, alertKind, body) {
			continue
		}
		s.dispatcher.Dispatch(ctx, alerts.Alert{Kind: alertKind, Subject: subject, Body: body})
	}

	return nil
}
