package transfer

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
)

// Defaults applied when a transfer creates a record in the target ledger and
// the source row lacks the corresponding values.
const (
	defaultExpiryDays    = 20
	defaultLowThreshold  = 10
	defaultHighThreshold = 50
)

var (
	defaultCostPrice = decimal.NewFromInt(500)
	defaultSellPrice = decimal.NewFromInt(1500)
)

// IntentLog is the durable record of in-flight transfers the service writes
// before touching either ledger.
type IntentLog interface {
	Create(ctx context.Context, intent models.TransferIntent) (string, error)
	SetStatus(ctx context.Context, id string, status models.IntentStatus) error
	ListUnfinished(ctx context.Context) ([]models.TransferIntent, error)
}

// Service orchestrates two-ledger stock moves. The source debit and target
// credit are independent remote writes; the intent log plus the recovery
// pass close the window in which units would otherwise vanish between them.
type Service struct {
	ledger  sheets.Repository
	intents IntentLog
	locks   *keyedMutex
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a transfer coordinator.
func NewService(ledger sheets.Repository, intents IntentLog, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		ledger:  ledger,
		intents: intents,
		locks:   newKeyedMutex(),
		logger:  logger,
		now:     time.Now,
	}
}

// Transfer moves req.Quantity units of the named product from the source
// ledger to the target ledger. The full sequence holds the (ledger, product)
// lock for both sides, so concurrent moves of the same product through a
// shared ledger never interleave.
func (s *Service) Transfer(ctx context.Context, req models.TransferRequest) (*models.TransferResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	normalized := models.NormalizeName(req.ProductName)
	sourceKey := req.SourceLedger + "|" + normalized
	targetKey := req.TargetLedger + "|" + normalized
	s.locks.LockPair(sourceKey, targetKey)
	defer s.locks.UnlockPair(sourceKey, targetKey)

	sourceRows, err := s.ledger.FetchAll(ctx, req.SourceLedger)
	if err != nil {
		return nil, fmt.Errorf("fetch source ledger: %w", err)
	}

	sourceRow, found := findProduct(sourceRows, normalized)
	if !found {
		return nil, fmt.Errorf("%q in source ledger: %w", req.ProductName, models.ErrProductNotFound)
	}

	if sourceRow.Record.Stock < req.Quantity {
		return nil, &models.InsufficientStockError{Available: sourceRow.Record.Stock}
	}

	intentID, err := s.intents.Create(ctx, models.TransferIntent{
		Product:      normalized,
		Quantity:     req.Quantity,
		SourceLedger: req.SourceLedger,
		TargetLedger: req.TargetLedger,
	})
	if err != nil {
		return nil, fmt.Errorf("record transfer intent: %w", err)
	}

	newSourceStock := sourceRow.Record.Stock - req.Quantity
	if err := s.ledger.UpdateCell(ctx, req.SourceLedger, sourceRow.Index, sheets.ColStock, newSourceStock); err != nil {
		s.advanceIntent(ctx, intentID, models.IntentAbandoned)
		return nil, fmt.Errorf("debit source ledger: %w", err)
	}
	s.advanceIntent(ctx, intentID, models.IntentDebited)

	transferDate := s.now()
	if err := s.creditTarget(ctx, req.TargetLedger, normalized, req.Quantity, sourceRow.Record, transferDate); err != nil {
		// Units were debited but not credited. The intent stays in the
		// debited state so the recovery pass can finish the credit.
		s.logger.Error("target credit failed after source debit",
			zap.String("intent_id", intentID),
			zap.String("product", normalized),
			zap.Error(err))
		return nil, fmt.Errorf("credit target ledger (intent %s queued for recovery): %w", intentID, err)
	}
	s.advanceIntent(ctx, intentID, models.IntentCompleted)

	s.logger.Info("transfer completed",
		zap.String("product", normalized),
		zap.Int("quantity", req.Quantity),
		zap.Int("new_source_stock", newSourceStock))

	return &models.TransferResult{
		NewSourceStock: newSourceStock,
		TransferDate:   transferDate,
	}, nil
}

// RecoverPending reconciles intents left unfinished by a crash. Debited
// intents get their target credit re-applied; pending intents never touched
// a ledger and are abandoned. Recovery is at-least-once: a crash between the
// credit and the completed mark can repeat the credit on the next pass.
func (s *Service) RecoverPending(ctx context.Context) error {
	unfinished, err := s.intents.ListUnfinished(ctx)
	if err != nil {
		return fmt.Errorf("list unfinished intents: %w", err)
	}

	for _, intent := range unfinished {
		switch intent.Status {
		case models.IntentPending:
			s.advanceIntent(ctx, intent.ID, models.IntentAbandoned)
			s.logger.Info("abandoned pending intent", zap.String("intent_id", intent.ID))
		case models.IntentDebited:
			if err := s.recoverDebited(ctx, intent); err != nil {
				s.logger.Error("failed to recover debited intent",
					zap.String("intent_id", intent.ID),
					zap.Error(err))
				continue
			}
			s.advanceIntent(ctx, intent.ID, models.IntentCompleted)
			s.logger.Warn("recovered interrupted transfer",
				zap.String("intent_id", intent.ID),
				zap.String("product", intent.Product),
				zap.Int("quantity", intent.Quantity))
		}
	}
	return nil
}

func (s *Service) recoverDebited(ctx context.Context, intent models.TransferIntent) error {
	sourceKey := intent.SourceLedger + "|" + intent.Product
	targetKey := intent.TargetLedger + "|" + intent.Product
	s.locks.LockPair(sourceKey, targetKey)
	defer s.locks.UnlockPair(sourceKey, targetKey)

	sourceRows, err := s.ledger.FetchAll(ctx, intent.SourceLedger)
	if err != nil {
		return fmt.Errorf("fetch source ledger: %w", err)
	}

	// The source row supplies pricing for a target append; a missing row
	// still recovers with defaults.
	var sourceRecord models.ProductRecord
	if row, found := findProduct(sourceRows, intent.Product); found {
		sourceRecord = row.Record
	} else {
		sourceRecord = models.ProductRecord{Name: intent.Product}
	}

	return s.creditTarget(ctx, intent.TargetLedger, intent.Product, intent.Quantity, sourceRecord, s.now())
}

// creditTarget increments the product's stock in the target ledger, or
// appends a fresh record when the product is absent there.
func (s *Service) creditTarget(ctx context.Context, targetLedger, normalized string, quantity int, source models.ProductRecord, date time.Time) error {
	targetRows, err := s.ledger.FetchAll(ctx, targetLedger)
	if err != nil {
		return fmt.Errorf("fetch target ledger: %w", err)
	}

	if row, found := findProduct(targetRows, normalized); found {
		newStock := row.Record.Stock + quantity
		if err := s.ledger.UpdateCell(ctx, targetLedger, row.Index, sheets.ColStock, newStock); err != nil {
			return fmt.Errorf("increment target stock: %w", err)
		}
		if err := s.ledger.UpdateCell(ctx, targetLedger, row.Index, sheets.ColDate, date.Format(models.LedgerDateLayout)); err != nil {
			return fmt.Errorf("stamp target date: %w", err)
		}
		return nil
	}

	record := models.ProductRecord{
		Name:          normalized,
		Date:          date,
		ExpiryDays:    source.ExpiryDays,
		Stock:         quantity,
		CostPrice:     source.CostPrice,
		SellPrice:     source.SellPrice,
		SalesQuantity: 0,
		Profit:        decimal.Zero,
		LowThreshold:  source.LowThreshold,
		HighThreshold: source.HighThreshold,
	}
	applyRecordDefaults(&record)

	if err := s.ledger.AppendRow(ctx, targetLedger, record); err != nil {
		return fmt.Errorf("append target record: %w", err)
	}
	return nil
}

// advanceIntent logs rather than fails on intent-log errors: the ledger
// writes are the source of truth, the log only drives recovery.
func (s *Service) advanceIntent(ctx context.Context, id string, status models.IntentStatus) {
	if err := s.intents.SetStatus(ctx, id, status); err != nil {
		s.logger.Error("failed to advance transfer intent",
			zap.String("intent_id", id),
			zap.String("status", string(status)),
			zap.Error(err))
	}
}

func validateRequest(req models.TransferRequest) error {
	switch {
	case models.NormalizeName(req.ProductName) == "":
		return fmt.Errorf("%w: productName is required", models.ErrValidation)
	case req.Quantity <= 0:
		return fmt.Errorf("%w: quantity must be positive", models.ErrValidation)
	case req.SourceLedger == "":
		return fmt.Errorf("%w: sourceLedger is required", models.ErrValidation)
	case req.TargetLedger == "":
		return fmt.Errorf("%w: targetLedger is required", models.ErrValidation)
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

func applyRecordDefaults(rec *models.ProductRecord) {
	if rec.ExpiryDays <= 0 {
		rec.ExpiryDays = defaultExpiryDays
	}
	if rec.CostPrice.IsZero() {
		rec.CostPrice = defaultCostPrice
	}
	if rec.SellPrice.IsZero() {
		rec.SellPrice = defaultSellPrice
	}
	if rec.LowThreshold == nil {
		low := defaultLowThreshold
		rec.LowThreshold = &low
	}
	if rec.HighThreshold == nil {
		high := defaultHighThreshold
		rec.HighThreshold = &high
	}
}
