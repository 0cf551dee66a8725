package sheets

import (
	"context"
	"fmt"
	"sync"

	"github.com/tanush1852/stockwatch/internal/domain/models"
)

// InMemoryLedgerRepository is an in-memory implementation of Repository,
// keyed by ledger reference. It backs tests and local development without
// Google credentials.
type InMemoryLedgerRepository struct {
	mu      sync.RWMutex
	ledgers map[string][]models.ProductRecord
}

// NewInMemoryLedgerRepository creates an empty in-memory ledger set.
func NewInMemoryLedgerRepository() *InMemoryLedgerRepository {
	return &InMemoryLedgerRepository{
		ledgers: make(map[string][]models.ProductRecord),
	}
}

// Seed replaces the contents of a ledger.
func (r *InMemoryLedgerRepository) Seed(ledgerRef string, records []models.ProductRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[ledgerRef] = append([]models.ProductRecord(nil), records...)
}

// Records returns a copy of the ledger contents in row order.
func (r *InMemoryLedgerRepository) Records(ledgerRef string) []models.ProductRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.ProductRecord(nil), r.ledgers[ledgerRef]...)
}

// FetchAll implements Repository.
func (r *InMemoryLedgerRepository) FetchAll(ctx context.Context, ledgerRef string) ([]Row, error) {
	if _, err := SpreadsheetID(ledgerRef); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	records := r.ledgers[ledgerRef]
	rows := make([]Row, 0, len(records))
	for i, rec := range records {
		rows = append(rows, Row{Index: i + 2, Record: rec})
	}
	return rows, nil
}

// UpdateCell implements Repository. Row indexes follow the sheet convention:
// the first data row is 2.
func (r *InMemoryLedgerRepository) UpdateCell(ctx context.Context, ledgerRef string, row, col int, value interface{}) error {
	if _, err := SpreadsheetID(ledgerRef); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	records := r.ledgers[ledgerRef]
	idx := row - 2
	if idx < 0 || idx >= len(records) {
		return fmt.Errorf("%w: row %d not present in ledger %s", ErrStoreUnavailable, row, ledgerRef)
	}

	if err := applyCell(&records[idx], col, value); err != nil {
		return fmt.Errorf("update cell (%d,%d): %w", row, col, err)
	}
	return nil
}

// AppendRow implements Repository.
func (r *InMemoryLedgerRepository) AppendRow(ctx context.Context, ledgerRef string, record models.ProductRecord) error {
	if _, err := SpreadsheetID(ledgerRef); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.ledgers[ledgerRef] = append(r.ledgers[ledgerRef], record)
	return nil
}
