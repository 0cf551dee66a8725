package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/config"
	"github.com/tanush1852/stockwatch/internal/service/monitor"
	"github.com/tanush1852/stockwatch/internal/service/reminders"
)

// Scheduler manages the periodic monitor loop and the daily reminder job.
type Scheduler struct {
	cron        *cron.Cron
	loop        *monitor.Loop
	reminderSvc *reminders.Service
	cfg         config.Config
	logger      *zap.Logger
}

// NewScheduler creates a new scheduler instance. loop and reminderSvc may be
// nil; their jobs are simply not registered.
func NewScheduler(cfg config.Config, loop *monitor.Loop, reminderSvc *reminders.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:        cron.New(),
		loop:        loop,
		reminderSvc: reminderSvc,
		cfg:         cfg,
		logger:      logger,
	}
}

// Start registers and starts the scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if s.loop != nil && len(s.cfg.Monitor.Ledgers) > 0 {
		spec := fmt.Sprintf("@every %s", s.cfg.Monitor.Interval)
		if _, err := s.cron.AddFunc(spec, s.runMonitorCycle); err != nil {
			s.logger.Error("failed to schedule monitor loop", zap.Error(err))
		} else {
			s.logger.Info("monitor loop scheduled",
				zap.Duration("interval", s.cfg.Monitor.Interval),
				zap.Strings("ledgers", s.cfg.Monitor.Ledgers))
		}
	} else {
		s.logger.Warn("monitor loop disabled, no ledgers configured")
	}

	if s.reminderSvc != nil && s.cfg.Reminders.Path != "" {
		if _, err := s.cron.AddFunc(s.cfg.Reminders.CronSchedule, s.runReminderCheck); err != nil {
			s.logger.Error("failed to schedule reminder check", zap.Error(err))
		}
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) runMonitorCycle() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	s.loop.RunOnce(ctx)
}

func (s *Scheduler) runReminderCheck() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := s.reminderSvc.CheckDue(ctx); err != nil {
		s.logger.Error("reminder check failed", zap.Error(err))
	}
}
