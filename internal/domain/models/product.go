package models

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// LedgerDateLayout is the date format used by the ledger Date column.
const LedgerDateLayout = "01-02-2006"

// ProductRecord is one SKU's quantity, pricing and threshold state within a
// ledger. SalesQuantity and Profit are cumulative.
type ProductRecord struct {
	Name          string          `json:"name"`
	Date          time.Time       `json:"date"`
	ExpiryDays    int             `json:"expiryDays"`
	Stock         int             `json:"stock"`
	CostPrice     decimal.Decimal `json:"costPrice"`
	SellPrice     decimal.Decimal `json:"sellPrice"`
	SalesQuantity int             `json:"salesQuantity"`
	Profit        decimal.Decimal `json:"profit"`

	// Thresholds are nil when the ledger cells are blank; callers apply
	// their own defaults.
	LowThreshold  *int `json:"lowThreshold,omitempty"`
	HighThreshold *int `json:"highThreshold,omitempty"`
}

// Available is the canonical on-hand quantity: stock minus cumulative sales,
// never negative.
func (p ProductRecord) Available() int {
	available := p.Stock - p.SalesQuantity
	if available < 0 {
		return 0
	}
	return available
}

// ExpiryDate derives the date on which the record's stock expires.
func (p ProductRecord) ExpiryDate() time.Time {
	return p.Date.AddDate(0, 0, p.ExpiryDays)
}

// NormalizeName folds a product name into its ledger identity: trimmed and
// lowercased. All lookups must go through this.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
