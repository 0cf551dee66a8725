package sales

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
)

// Service records customer sales against a ledger and handles restock
// upserts. Sales quantity and profit accumulate across the record's life.
type Service struct {
	ledger sheets.Repository
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a sales service instance.
func NewService(ledger sheets.Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{ledger: ledger, logger: logger, now: time.Now}
}

// RecordSale debits stock for a purchase and accumulates the sale quantity
// and the profit earned on it.
func (s *Service) RecordSale(ctx context.Context, req models.SaleRequest) (*models.SaleResult, error) {
	if err := validateSale(req); err != nil {
		return nil, err
	}

	rows, err := s.ledger.FetchAll(ctx, req.Ledger)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger: %w", err)
	}

	normalized := models.NormalizeName(req.ProductName)
	row, found := findProduct(rows, normalized)
	if !found {
		return nil, fmt.Errorf("%q: %w", req.ProductName, models.ErrProductNotFound)
	}

	rec := row.Record
	if req.Quantity > rec.Stock {
		return nil, &models.InsufficientStockError{Available: rec.Stock}
	}

	newStock := rec.Stock - req.Quantity
	saleProfit := rec.SellPrice.Sub(rec.CostPrice).Mul(decimal.NewFromInt(int64(req.Quantity)))

	if err := s.ledger.UpdateCell(ctx, req.Ledger, row.Index, sheets.ColStock, newStock); err != nil {
		return nil, fmt.Errorf("debit stock: %w", err)
	}
	if err := s.ledger.UpdateCell(ctx, req.Ledger, row.Index, sheets.ColSalesQuantity, rec.SalesQuantity+req.Quantity); err != nil {
		return nil, fmt.Errorf("accumulate sales quantity: %w", err)
	}
	if err := s.ledger.UpdateCell(ctx, req.Ledger, row.Index, sheets.ColProfit, rec.Profit.Add(saleProfit).String()); err != nil {
		return nil, fmt.Errorf("accumulate profit: %w", err)
	}

	s.logger.Info("sale recorded",
		zap.String("product", normalized),
		zap.Int("quantity", req.Quantity),
		zap.Int("new_stock", newStock),
		zap.String("profit", saleProfit.StringFixed(2)))

	return &models.SaleResult{
		Product:  normalized,
		NewStock: newStock,
		Profit:   saleProfit,
	}, nil
}

// Restock upserts a product record. An existing record gets today's date,
// its stock rebased to available + the added quantity, and any provided
// price or threshold overrides; a missing record is appended.
func (s *Service) Restock(ctx context.Context, req models.RestockRequest) (*models.RestockResult, error) {
	if err := validateRestock(req); err != nil {
		return nil, err
	}

	rows, err := s.ledger.FetchAll(ctx, req.Ledger)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger: %w", err)
	}

	normalized := models.NormalizeName(req.ProductName)
	today := s.now().Format(models.LedgerDateLayout)

	if row, found := findProduct(rows, normalized); found {
		// Stock rebases on what is actually left, folding the cumulative
		// sales back in.
		newStock := row.Record.Available() + req.StockToAdd

		updates := map[int]interface{}{
			sheets.ColDate:  today,
			sheets.ColStock: newStock,
		}
		if req.SellPrice != nil {
			updates[sheets.ColSellPrice] = req.SellPrice.String()
		}
		if req.LowThreshold != nil {
			updates[sheets.ColLowThreshold] = *req.LowThreshold
		}
		if req.HighThreshold != nil {
			updates[sheets.ColHighThreshold] = *req.HighThreshold
		}

		for col, value := range updates {
			if err := s.ledger.UpdateCell(ctx, req.Ledger, row.Index, col, value); err != nil {
				return nil, fmt.Errorf("update restocked record: %w", err)
			}
		}

		s.logger.Info("product restocked",
			zap.String("product", normalized),
			zap.Int("new_stock", newStock))

		return &models.RestockResult{Product: normalized, NewStock: newStock}, nil
	}

	record := models.ProductRecord{
		Name:          normalized,
		Date:          s.now(),
		Stock:         req.StockToAdd,
		SalesQuantity: 0,
		Profit:        decimal.Zero,
		LowThreshold:  req.LowThreshold,
		HighThreshold: req.HighThreshold,
	}
	if req.ExpiryDays != nil {
		record.ExpiryDays = *req.ExpiryDays
	}
	if req.CostPrice != nil {
		record.CostPrice = *req.CostPrice
	}
	if req.SellPrice != nil {
		record.SellPrice = *req.SellPrice
	}

	if err := s.ledger.AppendRow(ctx, req.Ledger, record); err != nil {
		return nil, fmt.Errorf("append new record: %w", err)
	}

	s.logger.Info("new product provisioned",
		zap.String("product", normalized),
		zap.Int("stock", req.StockToAdd))

	return &models.RestockResult{Product: normalized, NewStock: req.StockToAdd, Created: true}, nil
}

// ListProducts returns every record of a ledger in row order.
func (s *Service) ListProducts(ctx context.Context, ledgerRef string) ([]models.ProductRecord, error) {
	rows, err := s.ledger.FetchAll(ctx, ledgerRef)
	if err != nil {
		return nil, fmt.Errorf("fetch ledger: %w", err)
	}

	records := make([]models.ProductRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record)
	}
	return records, nil
}

func validateSale(req models.SaleRequest) error {
	switch {
	case req.Ledger == "":
		return fmt.Errorf("%w: ledger is required", models.ErrValidation)
	case models.NormalizeName(req.ProductName) == "":
		return fmt.Errorf("%w: productName is required", models.ErrValidation)
	case req.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", models.ErrValidation)
	}
	return nil
}

func validateRestock(req models.RestockRequest) error {
	switch {
	case req.Ledger == "":
		return fmt.Errorf("%w: ledger is required", models.ErrValidation)
	case models.NormalizeName(req.ProductName) == "":
		return fmt.Errorf("%w: productName is required", models.ErrValidation)
	case req.StockToAdd <= 0:
		return fmt.Errorf("%w: stockToAdd must be positive", models.ErrValidation)
	}
	return nil
}

func findProduct(rows []sheets.Row, normalized string) (sheets.Row, bool) {
	for _, row := range rows {
		if models.NormalizeName(row.Record.Name) == normalized {
			return row, true
		}
	}
	return sheets.Row{}, false
}
