package models

import "github.com/shopspring/decimal"

// AnomalyKind classifies a threshold scan finding.
type AnomalyKind string

const (
	AnomalyUnderstock AnomalyKind = "understock"
	AnomalyOverstock  AnomalyKind = "overstock"
)

// Anomaly is a single out-of-threshold classification for one product.
// Delta is the deficit below the low threshold or the surplus above the
// high one, depending on Kind.
type Anomaly struct {
	Kind         AnomalyKind `json:"kind"`
	Product      string      `json:"product"`
	CurrentStock int         `json:"currentStock"`
	Threshold    int         `json:"threshold"`
	Delta        int         `json:"delta"`
}

// ExpiredItem is one expired record found by the expiry scanner. LossValue
// is cost price times the remaining stock written off.
type ExpiredItem struct {
	Product        string          `json:"product"`
	RemainingStock int             `json:"remainingStock"`
	LossValue      decimal.Decimal `json:"lossValue"`
}
