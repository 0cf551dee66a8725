package sheets

import (
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tanush1852/stockwatch/internal/domain/models"
)

// Ledger column positions, 1-based as Google Sheets counts them. Row 1 holds
// the headers, data starts at row 2.
const (
	ColProduct       = 1
	ColDate          = 2
	ColExpiryDays    = 3
	ColStock         = 4
	ColCostPrice     = 5
	ColSellPrice     = 6
	ColSalesQuantity = 7
	ColProfit        = 8
	ColLowThreshold  = 9
	ColHighThreshold = 10
)

// decodeRecord converts one raw sheet row into a ProductRecord. Rows with an
// empty product name are reported as not ok and skipped by callers.
// Unparseable numeric cells decode as zero values; an unparseable date stays
// the zero time so expiry logic can skip the record.
func decodeRecord(values []interface{}) (models.ProductRecord, bool) {
	name := cellString(values, ColProduct)
	if name == "" {
		return models.ProductRecord{}, false
	}

	rec := models.ProductRecord{
		Name:          name,
		ExpiryDays:    cellInt(values, ColExpiryDays),
		Stock:         cellInt(values, ColStock),
		CostPrice:     cellDecimal(values, ColCostPrice),
		SellPrice:     cellDecimal(values, ColSellPrice),
		SalesQuantity: cellInt(values, ColSalesQuantity),
		Profit:        cellDecimal(values, ColProfit),
		LowThreshold:  cellIntPtr(values, ColLowThreshold),
		HighThreshold: cellIntPtr(values, ColHighThreshold),
	}

	if date, err := time.Parse(models.LedgerDateLayout, cellString(values, ColDate)); err == nil {
		rec.Date = date
	}

	return rec, true
}

// encodeRecord renders a ProductRecord as the ten-column ledger row.
func encodeRecord(rec models.ProductRecord) []interface{} {
	low, high := 0, 0
	if rec.LowThreshold != nil {
		low = *rec.LowThreshold
	}
	if rec.HighThreshold != nil {
		high = *rec.HighThreshold
	}

	return []interface{}{
		models.NormalizeName(rec.Name),
		rec.Date.Format(models.LedgerDateLayout),
		rec.ExpiryDays,
		rec.Stock,
		rec.CostPrice.String(),
		rec.SellPrice.String(),
		rec.SalesQuantity,
		rec.Profit.String(),
		low,
		high,
	}
}

// applyCell mutates a single field of a record the way an UpdateCell write
// would touch the corresponding sheet column. Shared by the in-memory
// repository so it stays faithful to the remote column layout.
func applyCell(rec *models.ProductRecord, col int, value interface{}) error {
	switch col {
	case ColProduct:
		rec.Name = fmt.Sprint(value)
	case ColDate:
		date, err := time.Parse(models.LedgerDateLayout, fmt.Sprint(value))
		if err != nil {
			return fmt.Errorf("parse date cell: %w", err)
		}
		rec.Date = date
	case ColExpiryDays:
		return applyIntCell(&rec.ExpiryDays, value)
	case ColStock:
		return applyIntCell(&rec.Stock, value)
	case ColCostPrice:
		return applyDecimalCell(&rec.CostPrice, value)
	case ColSellPrice:
		return applyDecimalCell(&rec.SellPrice, value)
	case ColSalesQuantity:
		return applyIntCell(&rec.SalesQuantity, value)
	case ColProfit:
		return applyDecimalCell(&rec.Profit, value)
	case ColLowThreshold:
		var n int
		if err := applyIntCell(&n, value); err != nil {
			return err
		}
		rec.LowThreshold = &n
	case ColHighThreshold:
		var n int
		if err := applyIntCell(&n, value); err != nil {
			return err
		}
		rec.HighThreshold = &n
	default:
		return fmt.Errorf("unknown ledger column %d", col)
	}
	return nil
}

func applyIntCell(dst *int, value interface{}) error {
	n, err := strconv.Atoi(fmt.Sprint(value))
	if err != nil {
		return fmt.Errorf("parse numeric cell: %w", err)
	}
	*dst = n
	return nil
}

func applyDecimalCell(dst *decimal.Decimal, value interface{}) error {
	d, err := decimal.NewFromString(fmt.Sprint(value))
	if err != nil {
		return fmt.Errorf("parse decimal cell: %w", err)
	}
	*dst = d
	return nil
}

func cellString(values []interface{}, col int) string {
	if col > len(values) {
		return ""
	}
	return fmt.Sprint(values[col-1])
}

func cellInt(values []interface{}, col int) int {
	n, err := strconv.Atoi(cellString(values, col))
	if err != nil {
		return 0
	}
	return n
}

func cellIntPtr(values []interface{}, col int) *int {
	str := cellString(values, col)
	if str == "" {
		return nil
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return nil
	}
	return &n
}

func cellDecimal(values []interface{}, col int) decimal.Decimal {
	d, err := decimal.NewFromString(cellString(values, col))
	if err != nil {
		return decimal.Zero
	}
	return d
}

// columnLetter converts a 1-based column number into its A1-notation letter.
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
