package monitor

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
)

// Thresholds applied when a ledger row has blank threshold cells.
const (
	defaultLowThreshold  = 5
	defaultHighThreshold = 100
)

// ThresholdMonitor classifies ledger rows against their stock thresholds.
// It never mutates the ledger.
type ThresholdMonitor struct {
	ledger sheets.Repository
	logger *zap.Logger
}

// NewThresholdMonitor wires a threshold monitor.
func NewThresholdMonitor(ledger sheets.Repository, logger *zap.Logger) *ThresholdMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ThresholdMonitor{ledger: ledger, logger: logger}
}

// Scan fetches a ledger snapshot and classifies it.
func (m *ThresholdMonitor) Scan(ctx context.Context, ledgerRef string) ([]models.Anomaly, error) {
	rows, err := m.ledger.FetchAll(ctx, ledgerRef)
	if err != nil {
		return nil, fmt.Errorf("threshold scan: %w", err)
	}
	return m.Classify(rows), nil
}

// Classify evaluates each row against its thresholds. Understock and
// overstock are mutually exclusive per record; in-range records emit
// nothing.
func (m *ThresholdMonitor) Classify(rows []sheets.Row) []models.Anomaly {
	var anomalies []models.Anomaly

	for _, row := range rows {
		rec := row.Record
		available := rec.Available()

		low := defaultLowThreshold
		if rec.LowThreshold != nil {
			low = *rec.LowThreshold
		}
		high := defaultHighThreshold
		if rec.HighThreshold != nil {
			high = *rec.HighThreshold
		}
		if low >= high {
			m.logger.Warn("inverted thresholds on ledger row",
				zap.String("product", rec.Name),
				zap.Int("low", low),
				zap.Int("high", high))
		}

		switch {
		case available < low:
			anomalies = append(anomalies, models.Anomaly{
				Kind:         models.AnomalyUnderstock,
				Product:      rec.Name,
				CurrentStock: available,
				Threshold:    low,
				Delta:        low - available,
			})
		case available > high:
			anomalies = append(anomalies, models.Anomaly{
				Kind:         models.AnomalyOverstock,
				Product:      rec.Name,
				CurrentStock: available,
				Threshold:    high,
				Delta:        available - high,
			})
		}
	}

	return anomalies
}
