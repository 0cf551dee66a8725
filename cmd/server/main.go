package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/config"
	"github.com/tanush1852/stockwatch/internal/repository/mongodb"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
	"github.com/tanush1852/stockwatch/internal/scheduler"
	"github.com/tanush1852/stockwatch/internal/server/handlers"
	"github.com/tanush1852/stockwatch/internal/server/router"
	"github.com/tanush1852/stockwatch/internal/service/alerts"
	commandsvc "github.com/tanush1852/stockwatch/internal/service/commands"
	"github.com/tanush1852/stockwatch/internal/service/monitor"
	remindersvc "github.com/tanush1852/stockwatch/internal/service/reminders"
	salessvc "github.com/tanush1852/stockwatch/internal/service/sales"
	transfersvc "github.com/tanush1852/stockwatch/internal/service/transfer"
	"github.com/tanush1852/stockwatch/pkg/clients/mailer"
	"github.com/tanush1852/stockwatch/pkg/clients/telegram"
	"github.com/tanush1852/stockwatch/pkg/clients/twilio"
	"github.com/tanush1852/stockwatch/pkg/logger"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}

	baseLogger := logger.Must(logger.New())
	defer func() { _ = baseLogger.Sync() }()

	zap.ReplaceGlobals(baseLogger)

	ledgerRepo, err := sheets.NewGoogleLedgerRepository(context.Background(), cfg.Sheets, baseLogger.Named("repo.sheets"))
	if err != nil {
		baseLogger.Fatal("failed to init sheets repository", zap.Error(err))
	}

	intentRepo, err := mongodb.NewIntentRepository(context.Background(), cfg.Mongo.URI, cfg.Mongo.DBName)
	if err != nil {
		baseLogger.Fatal("failed to init mongodb repository", zap.Error(err))
	}
	defer func() {
		if err := intentRepo.Close(context.Background()); err != nil {
			baseLogger.Error("failed to close mongodb connection", zap.Error(err))
		}
	}()

	transferSvc := transfersvc.NewService(ledgerRepo, intentRepo, baseLogger.Named("svc.transfer"))

	recoverCtx, recoverCancel := context.WithTimeout(context.Background(), 2*time.Minute)
	if err := transferSvc.RecoverPending(recoverCtx); err != nil {
		baseLogger.Error("transfer intent recovery incomplete", zap.Error(err))
	}
	recoverCancel()

	var dedupStore alerts.Store
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		dedupStore = alerts.NewRedisStore(rdb, cfg.Monitor.DedupTTL)
		baseLogger.Info("redis alert dedup store enabled", zap.String("addr", cfg.Redis.Addr))
	} else {
		dedupStore = alerts.NewMemoryStore(cfg.Monitor.DedupTTL)
		baseLogger.Warn("redis address missing, alert dedup state will not survive restarts")
	}
	dedup := alerts.NewDeduplicator(dedupStore, baseLogger.Named("svc.alerts"))

	var channels []alerts.Channel
	if cfg.Email.Host != "" && cfg.Email.To != "" {
		channels = append(channels, alerts.NewEmailChannel(mailer.NewClient(cfg.Email)))
		baseLogger.Info("email alert channel enabled")
	}
	if cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		channels = append(channels, alerts.NewTelegramChannel(telegram.NewClient(cfg.Telegram)))
		baseLogger.Info("telegram alert channel enabled")
	}
	if cfg.Twilio.AccountSID != "" && cfg.Twilio.To != "" {
		channels = append(channels, alerts.NewWhatsAppChannel(twilio.NewClient(cfg.Twilio)))
		baseLogger.Info("whatsapp alert channel enabled")
	}
	if len(channels) == 0 {
		baseLogger.Warn("no alert channels configured, notifications disabled")
	}
	dispatcher := alerts.NewDispatcher(channels, baseLogger.Named("svc.alerts"))

	thresholds := monitor.NewThresholdMonitor(ledgerRepo, baseLogger.Named("svc.monitor"))
	expiry := monitor.NewExpiryScanner(ledgerRepo, baseLogger.Named("svc.monitor"))

	var loop *monitor.Loop
	if len(cfg.Monitor.Ledgers) > 0 {
		loop = monitor.NewLoop(ledgerRepo, thresholds, expiry, dedup, dispatcher, cfg.Monitor.Ledgers, baseLogger.Named("svc.monitor"))
	} else {
		baseLogger.Warn("no monitored ledgers configured, periodic scanning disabled")
	}

	salesSvc := salessvc.NewService(ledgerRepo, baseLogger.Named("svc.sales"))

	var reminderSvc *remindersvc.Service
	if cfg.Reminders.Path != "" {
		reminderSvc = remindersvc.NewService(cfg.Reminders.Path, cfg.Reminders.WindowDays, dedup, dispatcher, baseLogger.Named("svc.reminders"))
	}

	transferHandler := handlers.NewTransferHandler(transferSvc, baseLogger.Named("handlers.transfer"))
	scanHandler := handlers.NewScanHandler(thresholds, expiry, loop, baseLogger.Named("handlers.scan"))
	productHandler := handlers.NewProductHandler(salesSvc, baseLogger.Named("handlers.products"))
	engine := router.New(transferHandler, scanHandler, productHandler, baseLogger.Named("router"))

	sched := scheduler.NewScheduler(*cfg, loop, reminderSvc, baseLogger.Named("scheduler"))
	sched.Start()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if cfg.Commands.Ledger != "" && cfg.Telegram.BotToken != "" && cfg.Telegram.ChatID != "" {
		commandSvc := commandsvc.NewService(salesSvc, cfg.Commands.Ledger, baseLogger.Named("svc.commands"))
		poller := commandsvc.NewPoller(
			telegram.NewClient(cfg.Telegram),
			commandSvc,
			cfg.Telegram.ChatID,
			cfg.Commands.PollInterval,
			baseLogger.Named("svc.commands"),
		)
		go poller.Run(ctx)
		baseLogger.Info("telegram command bot enabled", zap.String("ledger", cfg.Commands.Ledger))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		baseLogger.Info("server starting", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			baseLogger.Fatal("http server crashed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	baseLogger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		baseLogger.Error("graceful shutdown failed", zap.Error(err))
	}
}
