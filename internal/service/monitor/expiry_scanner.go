package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
)

// ExpiryScanner finds expired stock and writes it off. The write-off (stock
// cell zeroed) is part of the scan contract: after it succeeds the record's
// available quantity is zero and repeated scans no longer qualify it.
type ExpiryScanner struct {
	ledger sheets.Repository
	logger *zap.Logger
}

// NewExpiryScanner wires an expiry scanner.
func NewExpiryScanner(ledger sheets.Repository, logger *zap.Logger) *ExpiryScanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExpiryScanner{ledger: ledger, logger: logger}
}

// Scan fetches a ledger snapshot and applies the expiry pass to it.
func (s *ExpiryScanner) Scan(ctx context.Context, ledgerRef string, asOf time.Time) ([]models.ExpiredItem, error) {
	rows, err := s.ledger.FetchAll(ctx, ledgerRef)
	if err != nil {
		return nil, fmt.Errorf("expiry scan: %w", err)
	}
	return s.Apply(ctx, ledgerRef, rows, asOf)
}

// Apply evaluates an already-fetched snapshot. A record is expired when asOf
// has reached its expiry date and it still has available stock. Rows whose
// date cell did not parse carry the zero time and are skipped. A failed
// write-off drops the item from the result so the next scan retries both the
// write and the alert.
func (s *ExpiryScanner) Apply(ctx context.Context, ledgerRef string, rows []sheets.Row, asOf time.Time) ([]models.ExpiredItem, error) {
	var expired []models.ExpiredItem

	for _, row := range rows {
		rec := row.Record
		if rec.Date.IsZero() {
			continue
		}

		available := rec.Available()
		if asOf.Before(rec.ExpiryDate()) || available <= 0 {
			continue
		}

		if err := s.ledger.UpdateCell(ctx, ledgerRef, row.Index, sheets.ColStock, 0); err != nil {
			s.logger.Error("expiry write-off failed",
				zap.String("product", rec.Name),
				zap.Int("row", row.Index),
				zap.Error(err))
			continue
		}

		loss := rec.CostPrice.Mul(decimal.NewFromInt(int64(available)))
		expired = append(expired, models.ExpiredItem{
			Product:        rec.Name,
			RemainingStock: available,
			LossValue:      loss,
		})

		s.logger.Info("expired stock written off",
			zap.String("product", rec.Name),
			zap.Int("remaining_stock", available),
			zap.String("loss", loss.StringFixed(2)))
	}

	return expired, nil
}
