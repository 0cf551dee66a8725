package sales

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
)

const ledger = "store-ledger"

func intPtr(n int) *int { return &n }

func decPtr(d decimal.Decimal) *decimal.Decimal { return &d }

func seedStore(repo *sheets.InMemoryLedgerRepository) {
	repo.Seed(ledger, []models.ProductRecord{{
		Name:          "rice",
		Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDays:    30,
		Stock:         50,
		CostPrice:     decimal.NewFromInt(500),
		SellPrice:     decimal.NewFromInt(1500),
		SalesQuantity: 5,
		Profit:        decimal.NewFromInt(5000),
		LowThreshold:  intPtr(10),
		HighThreshold: intPtr(200),
	}})
}

func TestRecordSale(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedStore(repo)
	svc := NewService(repo, nil)

	result, err := svc.RecordSale(context.Background(), models.SaleRequest{
		Ledger: ledger, ProductName: "Rice", Quantity: 10,
	})
	if err != nil {
		t.Fatalf("RecordSale: %v", err)
	}

	if result.NewStock != 40 {
		t.Errorf("expected new stock 40, got %d", result.NewStock)
	}
	// (1500 - 500) * 10
	if !result.Profit.Equal(decimal.NewFromInt(10000)) {
		t.Errorf("expected profit 10000, got %s", result.Profit)
	}

	rec := repo.Records(ledger)[0]
	if rec.Stock != 40 {
		t.Errorf("stock not debited: %d", rec.Stock)
	}
	if rec.SalesQuantity != 15 {
		t.Errorf("sales quantity must accumulate (5+10), got %d", rec.SalesQuantity)
	}
	if !rec.Profit.Equal(decimal.NewFromInt(15000)) {
		t.Errorf("profit must accumulate (5000+10000), got %s", rec.Profit)
	}
}

func TestRecordSale_Failures(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedStore(repo)
	svc := NewService(repo, nil)
	ctx := context.Background()

	if _, err := svc.RecordSale(ctx, models.SaleRequest{Ledger: ledger, ProductName: "rice"}); !errors.Is(err, models.ErrValidation) {
		t.Errorf("expected validation error for zero quantity, got %v", err)
	}

	if _, err := svc.RecordSale(ctx, models.SaleRequest{Ledger: ledger, ProductName: "caviar", Quantity: 1}); !errors.Is(err, models.ErrProductNotFound) {
		t.Errorf("expected product not found, got %v", err)
	}

	_, err := svc.RecordSale(ctx, models.SaleRequest{Ledger: ledger, ProductName: "rice", Quantity: 51})
	var insufficient *models.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 50 {
		t.Errorf("expected available 50, got %d", insufficient.Available)
	}
	if got := repo.Records(ledger)[0].Stock; got != 50 {
		t.Errorf("rejected sale mutated stock: %d", got)
	}
}

func TestRestock_ExistingProduct(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedStore(repo)
	svc := NewService(repo, nil)
	svc.now = func() time.Time { return time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC) }

	result, err := svc.Restock(context.Background(), models.RestockRequest{
		Ledger:       ledger,
		ProductName:  "RICE",
		StockToAdd:   30,
		SellPrice:    decPtr(decimal.NewFromInt(1600)),
		LowThreshold: intPtr(20),
	})
	if err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if result.Created {
		t.Error("expected update of existing record, not creation")
	}
	// available (50-5) + 30
	if result.NewStock != 75 {
		t.Errorf("expected new stock 75, got %d", result.NewStock)
	}

	rec := repo.Records(ledger)[0]
	if rec.Stock != 75 {
		t.Errorf("stock not rebased: %d", rec.Stock)
	}
	if !rec.SellPrice.Equal(decimal.NewFromInt(1600)) {
		t.Errorf("sell price not updated: %s", rec.SellPrice)
	}
	if rec.LowThreshold == nil || *rec.LowThreshold != 20 {
		t.Errorf("low threshold not updated: %v", rec.LowThreshold)
	}
	if rec.HighThreshold == nil || *rec.HighThreshold != 200 {
		t.Errorf("untouched threshold changed: %v", rec.HighThreshold)
	}
	if want := time.Date(2025, 4, 2, 0, 0, 0, 0, time.UTC); !rec.Date.Equal(want) {
		t.Errorf("date not stamped: %v", rec.Date)
	}
}

func TestRestock_NewProduct(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	repo.Seed(ledger, nil)
	svc := NewService(repo, nil)

	result, err := svc.Restock(context.Background(), models.RestockRequest{
		Ledger:        ledger,
		ProductName:   " Beans ",
		StockToAdd:    25,
		ExpiryDays:    intPtr(60),
		CostPrice:     decPtr(decimal.NewFromInt(100)),
		SellPrice:     decPtr(decimal.NewFromInt(250)),
		LowThreshold:  intPtr(5),
		HighThreshold: intPtr(80),
	})
	if err != nil {
		t.Fatalf("Restock: %v", err)
	}
	if !result.Created {
		t.Error("expected a created record")
	}

	records := repo.Records(ledger)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	rec := records[0]
	if rec.Name != "beans" || rec.Stock != 25 || rec.ExpiryDays != 60 {
		t.Errorf("unexpected new record: %+v", rec)
	}
	if rec.SalesQuantity != 0 || !rec.Profit.IsZero() {
		t.Errorf("new record must start with zero sales history: %+v", rec)
	}
}

func TestListProducts(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedStore(repo)
	svc := NewService(repo, nil)

	records, err := svc.ListProducts(context.Background(), ledger)
	if err != nil {
		t.Fatalf("ListProducts: %v", err)
	}
	if len(records) != 1 || records[0].Name != "rice" {
		t.Errorf("unexpected listing: %+v", records)
	}
}
