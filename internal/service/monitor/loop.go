package monitor

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
	"github.com/tanush1852/stockwatch/internal/service/alerts"
)

// Alert categories emitted by the loop.
const (
	kindExpired    = "Expired Products"
	kindUnderstock = "Understock"
	kindOverstock  = "Overstock"
)

// Loop runs one scan-alert cycle over every watched ledger: a single
// snapshot per ledger feeds both scanners, one alert body per anomaly
// category goes through dedup and out to the channels.
type Loop struct {
	ledger     sheets.Repository
	thresholds *ThresholdMonitor
	expiry     *ExpiryScanner
	dedup      *alerts.Deduplicator
	dispatcher *alerts.Dispatcher
	ledgerRefs []string
	logger     *zap.Logger
	now        func() time.Time

	// mu keeps cycles sequential: the scheduled tick and the manual
	// trigger never overlap.
	mu sync.Mutex
}

// NewLoop wires a monitor loop over the given ledgers.
func NewLoop(
	ledger sheets.Repository,
	thresholds *ThresholdMonitor,
	expiry *ExpiryScanner,
	dedup *alerts.Deduplicator,
	dispatcher *alerts.Dispatcher,
	ledgerRefs []string,
	logger *zap.Logger,
) *Loop {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loop{
		ledger:     ledger,
		thresholds: thresholds,
		expiry:     expiry,
		dedup:      dedup,
		dispatcher: dispatcher,
		ledgerRefs: ledgerRefs,
		logger:     logger,
		now:        time.Now,
	}
}

// RunOnce executes one full cycle across all watched ledgers. Per-ledger
// failures are logged and do not stop the remaining ledgers.
func (l *Loop) RunOnce(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, ref := range l.ledgerRefs {
		if err := l.runLedger(ctx, ref); err != nil {
			l.logger.Error("monitor cycle failed for ledger",
				zap.String("ledger", ref),
				zap.Error(err))
		}
	}
}

func (l *Loop) runLedger(ctx context.Context, ledgerRef string) error {
	rows, err := l.ledger.FetchAll(ctx, ledgerRef)
	if err != nil {
		return fmt.Errorf("fetch snapshot: %w", err)
	}

	expired, err := l.expiry.Apply(ctx, ledgerRef, rows, l.now())
	if err != nil {
		return fmt.Errorf("expiry pass: %w", err)
	}
	anomalies := l.thresholds.Classify(rows)

	if body := formatExpiredBody(expired); body != "" {
		l.send(ctx, kindExpired, "Product Expired Alert", body)
	}
	if body := formatUnderstockBody(anomalies); body != "" {
		l.send(ctx, kindUnderstock, "Understock Alert", body)
	}
	if body := formatOverstockBody(anomalies); body != "" {
		l.send(ctx, kindOverstock, "Overstock Alert", body)
	}

	return nil
}

func (l *Loop) send(ctx context.Context, kind, subject, body string) {
	if !l.dedup.ShouldSend(ctx, kind, body) {
		return
	}
	l.dispatcher.Dispatch(ctx, alerts.Alert{Kind: kind, Subject: subject, Body: body})
}

func formatExpiredBody(items []models.ExpiredItem) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("%s, Stock: %d, Loss: ₹%s",
			item.Product, item.RemainingStock, item.LossValue.StringFixed(2)))
	}
	return "Expired products:\n\n" + strings.Join(lines, "\n")
}

func formatUnderstockBody(anomalies []models.Anomaly) string {
	var lines []string
	for _, a := range anomalies {
		if a.Kind != models.AnomalyUnderstock {
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"Product: %s, Current Stock: %d, Lower Threshold: %d, Deficit: %d units. Please restock to avoid running out.",
			a.Product, a.CurrentStock, a.Threshold, a.Delta))
	}
	if len(lines) == 0 {
		return ""
	}
	return "The following products are understocked and need restocking:\n\n" + strings.Join(lines, "\n")
}

func formatOverstockBody(anomalies []models.Anomaly) string {
	var lines []string
	for _, a := range anomalies {
		if a.Kind != models.AnomalyOverstock {
			continue
		}
		lines = append(lines, fmt.Sprintf(
			"Product: %s, Current Stock: %d, Higher Threshold: %d, Surplus: %d units. Consider reducing stock to avoid excess storage costs.",
			a.Product, a.CurrentStock, a.Threshold, a.Delta))
	}
	if len(lines) == 0 {
		return ""
	}
	return "The following products are overstocked and occupying excess storage:\n\n" + strings.Join(lines, "\n")
}
