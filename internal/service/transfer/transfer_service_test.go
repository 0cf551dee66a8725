package transfer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
)

const (
	sourceLedger = "warehouse-ledger"
	targetLedger = "store-ledger"
)

// fakeIntentLog is an in-memory IntentLog recording every status change.
type fakeIntentLog struct {
	mu      sync.Mutex
	nextID  int
	intents map[string]*models.TransferIntent
}

func newFakeIntentLog() *fakeIntentLog {
	return &fakeIntentLog{intents: make(map[string]*models.TransferIntent)}
}

func (f *fakeIntentLog) Create(ctx context.Context, intent models.TransferIntent) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("intent-%d", f.nextID)
	intent.ID = id
	intent.Status = models.IntentPending
	f.intents[id] = &intent
	return id, nil
}

func (f *fakeIntentLog) SetStatus(ctx context.Context, id string, status models.IntentStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	intent, ok := f.intents[id]
	if !ok {
		return fmt.Errorf("intent %s not found", id)
	}
	intent.Status = status
	return nil
}

func (f *fakeIntentLog) ListUnfinished(ctx context.Context) ([]models.TransferIntent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.TransferIntent
	for _, intent := range f.intents {
		if intent.Status == models.IntentPending || intent.Status == models.IntentDebited {
			out = append(out, *intent)
		}
	}
	return out, nil
}

func (f *fakeIntentLog) status(id string) models.IntentStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.intents[id].Status
}

func intPtr(n int) *int { return &n }

func seedSource(repo *sheets.InMemoryLedgerRepository, stock int) {
	repo.Seed(sourceLedger, []models.ProductRecord{{
		Name:          "Rice",
		Date:          time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		ExpiryDays:    30,
		Stock:         stock,
		CostPrice:     decimal.NewFromInt(500),
		SellPrice:     decimal.NewFromInt(1500),
		LowThreshold:  intPtr(10),
		HighThreshold: intPtr(200),
	}})
}

func TestTransfer_Validation(t *testing.T) {
	svc := NewService(sheets.NewInMemoryLedgerRepository(), newFakeIntentLog(), nil)

	tests := []struct {
		name string
		req  models.TransferRequest
	}{
		{"missing_product", models.TransferRequest{Quantity: 1, SourceLedger: sourceLedger, TargetLedger: targetLedger}},
		{"zero_quantity", models.TransferRequest{ProductName: "Rice", SourceLedger: sourceLedger, TargetLedger: targetLedger}},
		{"negative_quantity", models.TransferRequest{ProductName: "Rice", Quantity: -3, SourceLedger: sourceLedger, TargetLedger: targetLedger}},
		{"missing_source", models.TransferRequest{ProductName: "Rice", Quantity: 1, TargetLedger: targetLedger}},
		{"missing_target", models.TransferRequest{ProductName: "Rice", Quantity: 1, SourceLedger: sourceLedger}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Transfer(context.Background(), tt.req)
			if !errors.Is(err, models.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestTransfer_ProductNotFound(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	repo.Seed(sourceLedger, nil)
	svc := NewService(repo, newFakeIntentLog(), nil)

	_, err := svc.Transfer(context.Background(), models.TransferRequest{
		ProductName: "Rice", Quantity: 5, SourceLedger: sourceLedger, TargetLedger: targetLedger,
	})
	if !errors.Is(err, models.ErrProductNotFound) {
		t.Errorf("expected product not found, got %v", err)
	}
}

func TestTransfer_InsufficientStock(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedSource(repo, 30)
	svc := NewService(repo, newFakeIntentLog(), nil)

	_, err := svc.Transfer(context.Background(), models.TransferRequest{
		ProductName: "Rice", Quantity: 40, SourceLedger: sourceLedger, TargetLedger: targetLedger,
	})

	var insufficient *models.InsufficientStockError
	if !errors.As(err, &insufficient) {
		t.Fatalf("expected InsufficientStockError, got %v", err)
	}
	if insufficient.Available != 30 {
		t.Errorf("expected available 30, got %d", insufficient.Available)
	}

	// A rejected transfer leaves both ledgers untouched.
	if got := repo.Records(sourceLedger)[0].Stock; got != 30 {
		t.Errorf("source stock changed on rejected transfer: %d", got)
	}
	if rows := repo.Records(targetLedger); len(rows) != 0 {
		t.Errorf("target ledger gained rows on rejected transfer: %+v", rows)
	}
}

func TestTransfer_CreatesTargetRecord(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedSource(repo, 50)
	intents := newFakeIntentLog()
	svc := NewService(repo, intents, nil)
	svc.now = func() time.Time { return time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC) }

	result, err := svc.Transfer(context.Background(), models.TransferRequest{
		ProductName: " Rice ", Quantity: 20, SourceLedger: sourceLedger, TargetLedger: targetLedger,
	})
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	if result.NewSourceStock != 30 {
		t.Errorf("expected new source stock 30, got %d", result.NewSourceStock)
	}

	source := repo.Records(sourceLedger)[0]
	targetRows := repo.Records(targetLedger)
	if len(targetRows) != 1 {
		t.Fatalf("expected 1 target record, got %d", len(targetRows))
	}
	target := targetRows[0]

	// Conservation: units moved, none created or lost.
	if source.Stock+target.Stock != 50 {
		t.Errorf("conservation violated: source %d + target %d != 50", source.Stock, target.Stock)
	}

	if target.Name != "rice" {
		t.Errorf("expected normalized target name, got %q", target.Name)
	}
	if target.Stock != 20 || target.SalesQuantity != 0 || !target.Profit.IsZero() {
		t.Errorf("unexpected new target record: %+v", target)
	}
	if target.ExpiryDays != 30 || !target.CostPrice.Equal(decimal.NewFromInt(500)) {
		t.Errorf("source attributes not copied: %+v", target)
	}
	if target.LowThreshold == nil || *target.LowThreshold != 10 {
		t.Errorf("source low threshold not copied: %v", target.LowThreshold)
	}

	if got := intents.status("intent-1"); got != models.IntentCompleted {
		t.Errorf("expected completed intent, got %s", got)
	}
}

func TestTransfer_IncrementsExistingTargetRecord(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedSource(repo, 50)
	svc := NewService(repo, newFakeIntentLog(), nil)

	for _, qty := range []int{20, 10} {
		if _, err := svc.Transfer(context.Background(), models.TransferRequest{
			ProductName: "Rice", Quantity: qty, SourceLedger: sourceLedger, TargetLedger: targetLedger,
		}); err != nil {
			t.Fatalf("Transfer(%d): %v", qty, err)
		}
	}

	targetRows := repo.Records(targetLedger)
	if len(targetRows) != 1 {
		t.Fatalf("expected the second transfer to increment, not duplicate; got %d rows", len(targetRows))
	}
	if targetRows[0].Stock != 30 {
		t.Errorf("expected target stock 30, got %d", targetRows[0].Stock)
	}
	if got := repo.Records(sourceLedger)[0].Stock; got != 20 {
		t.Errorf("expected source stock 20, got %d", got)
	}
}

func TestTransfer_DefaultsForSparseSourceRecord(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	repo.Seed(sourceLedger, []models.ProductRecord{{Name: "salt", Stock: 10}})
	svc := NewService(repo, newFakeIntentLog(), nil)

	if _, err := svc.Transfer(context.Background(), models.TransferRequest{
		ProductName: "salt", Quantity: 4, SourceLedger: sourceLedger, TargetLedger: targetLedger,
	}); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	target := repo.Records(targetLedger)[0]
	if target.ExpiryDays != defaultExpiryDays {
		t.Errorf("expected default expiry days, got %d", target.ExpiryDays)
	}
	if !target.CostPrice.Equal(defaultCostPrice) || !target.SellPrice.Equal(defaultSellPrice) {
		t.Errorf("expected default prices, got cost=%s sell=%s", target.CostPrice, target.SellPrice)
	}
	if target.LowThreshold == nil || *target.LowThreshold != defaultLowThreshold {
		t.Errorf("expected default low threshold, got %v", target.LowThreshold)
	}
	if target.HighThreshold == nil || *target.HighThreshold != defaultHighThreshold {
		t.Errorf("expected default high threshold, got %v", target.HighThreshold)
	}
}

func TestTransfer_ConcurrentTransfersConserveUnits(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedSource(repo, 100)
	svc := NewService(repo, newFakeIntentLog(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), models.TransferRequest{
				ProductName: "Rice", Quantity: 10, SourceLedger: sourceLedger, TargetLedger: targetLedger,
			})
			if err != nil {
				t.Errorf("Transfer: %v", err)
			}
		}()
	}
	wg.Wait()

	source := repo.Records(sourceLedger)[0]
	target := repo.Records(targetLedger)[0]
	if source.Stock != 0 || target.Stock != 100 {
		t.Errorf("lost decrement under concurrency: source %d, target %d", source.Stock, target.Stock)
	}
}

// slowFetchRepo stalls FetchAll on one ledger so the window between a
// target fetch and the following write stays open long enough for a second
// transfer to slip in.
type slowFetchRepo struct {
	*sheets.InMemoryLedgerRepository
	slowRef string
}

func (r *slowFetchRepo) FetchAll(ctx context.Context, ledgerRef string) ([]sheets.Row, error) {
	if ledgerRef == r.slowRef {
		time.Sleep(50 * time.Millisecond)
	}
	return r.InMemoryLedgerRepository.FetchAll(ctx, ledgerRef)
}

func TestTransfer_ConcurrentSourcesSingleTargetRecord(t *testing.T) {
	mem := sheets.NewInMemoryLedgerRepository()
	for _, ledger := range []string{"warehouse-a", "warehouse-b"} {
		mem.Seed(ledger, []models.ProductRecord{{
			Name:       "Rice",
			Stock:      40,
			ExpiryDays: 30,
			CostPrice:  decimal.NewFromInt(500),
			SellPrice:  decimal.NewFromInt(1500),
		}})
	}
	repo := &slowFetchRepo{InMemoryLedgerRepository: mem, slowRef: targetLedger}
	svc := NewService(repo, newFakeIntentLog(), nil)

	var wg sync.WaitGroup
	for _, ledger := range []string{"warehouse-a", "warehouse-b"} {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()
			_, err := svc.Transfer(context.Background(), models.TransferRequest{
				ProductName: "Rice", Quantity: 10, SourceLedger: source, TargetLedger: targetLedger,
			})
			if err != nil {
				t.Errorf("Transfer from %s: %v", source, err)
			}
		}(ledger)
	}
	wg.Wait()

	target := mem.Records(targetLedger)
	if len(target) != 1 {
		t.Fatalf("target has %d rice rows, want 1", len(target))
	}
	if target[0].Stock != 20 {
		t.Errorf("target stock = %d, want 20", target[0].Stock)
	}
}

func TestRecoverPending(t *testing.T) {
	repo := sheets.NewInMemoryLedgerRepository()
	seedSource(repo, 30) // already debited: 50 - 20
	intents := newFakeIntentLog()
	svc := NewService(repo, intents, nil)

	debitedID, _ := intents.Create(context.Background(), models.TransferIntent{
		Product: "rice", Quantity: 20, SourceLedger: sourceLedger, TargetLedger: targetLedger,
	})
	_ = intents.SetStatus(context.Background(), debitedID, models.IntentDebited)

	pendingID, _ := intents.Create(context.Background(), models.TransferIntent{
		Product: "rice", Quantity: 5, SourceLedger: sourceLedger, TargetLedger: targetLedger,
	})

	if err := svc.RecoverPending(context.Background()); err != nil {
		t.Fatalf("RecoverPending: %v", err)
	}

	if got := intents.status(debitedID); got != models.IntentCompleted {
		t.Errorf("expected debited intent completed, got %s", got)
	}
	if got := intents.status(pendingID); got != models.IntentAbandoned {
		t.Errorf("expected pending intent abandoned, got %s", got)
	}

	targetRows := repo.Records(targetLedger)
	if len(targetRows) != 1 || targetRows[0].Stock != 20 {
		t.Fatalf("expected recovery to credit 20 units to target, got %+v", targetRows)
	}
	// Only the debited intent's units move; the abandoned one never debited.
	if got := repo.Records(sourceLedger)[0].Stock; got != 30 {
		t.Errorf("recovery must not touch the source ledger, got stock %d", got)
	}
}
