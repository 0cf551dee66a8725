package models

import "time"

// IntentStatus tracks how far a cross-ledger transfer has progressed.
type IntentStatus string

const (
	// IntentPending is recorded before any ledger is touched.
	IntentPending IntentStatus = "pending"
	// IntentDebited means the source decrement was written but the target
	// credit has not been confirmed.
	IntentDebited IntentStatus = "debited"
	// IntentCompleted means both ledger writes finished.
	IntentCompleted IntentStatus = "completed"
	// IntentAbandoned marks a pending intent that never reached the source
	// ledger; no reconciliation is needed.
	IntentAbandoned IntentStatus = "abandoned"
)

// TransferIntent is the durable record of an in-flight cross-ledger stock
// move. A recovery pass uses unfinished intents to complete interrupted
// transfers instead of leaving units lost between ledgers.
type TransferIntent struct {
	ID           string       `bson:"_id,omitempty"`
	Product      string       `bson:"product"`
	Quantity     int          `bson:"quantity"`
	SourceLedger string       `bson:"source_ledger"`
	TargetLedger string       `bson:"target_ledger"`
	Status       IntentStatus `bson:"status"`
	CreatedAt    time.Time    `bson:"created_at"`
	UpdatedAt    time.Time    `bson:"updated_at"`
}
