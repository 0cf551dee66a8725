package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferRequest moves a quantity of a product between two ledgers.
type TransferRequest struct {
	ProductName  string `json:"productName" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required"`
	SourceLedger string `json:"sourceLedger" binding:"required"`
	TargetLedger string `json:"targetLedger" binding:"required"`
}

// TransferResult reports a completed transfer.
type TransferResult struct {
	NewSourceStock int       `json:"newSourceStock"`
	TransferDate   time.Time `json:"transferDate"`
}

// SaleRequest records a customer purchase against a ledger.
type SaleRequest struct {
	Ledger      string `json:"ledger" binding:"required"`
	ProductName string `json:"productName" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required"`
}

// SaleResult reports the post-sale stock and the profit earned on this sale.
type SaleResult struct {
	Product  string          `json:"product"`
	NewStock int             `json:"newStock"`
	Profit   decimal.Decimal `json:"profit"`
}

// RestockRequest upserts a product record. Optional fields only apply to
// existing records when set; new records require all of them.
type RestockRequest struct {
	Ledger        string           `json:"ledger" binding:"required"`
	ProductName   string           `json:"productName" binding:"required"`
	StockToAdd    int              `json:"stockToAdd" binding:"required"`
	ExpiryDays    *int             `json:"expiryDays,omitempty"`
	CostPrice     *decimal.Decimal `json:"costPrice,omitempty"`
	SellPrice     *decimal.Decimal `json:"sellPrice,omitempty"`
	LowThreshold  *int             `json:"lowThreshold,omitempty"`
	HighThreshold *int             `json:"highThreshold,omitempty"`
}

// RestockResult reports the outcome of a restock upsert.
type RestockResult struct {
	Product  string `json:"product"`
	NewStock int    `json:"newStock"`
	Created  bool   `json:"created"`
}
