package sheets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/tanush1852/stockwatch/internal/config"
	"github.com/tanush1852/stockwatch/internal/domain/models"
)

// ErrStoreUnavailable indicates the remote ledger could not be reached,
// including timeouts and auth failures.
var ErrStoreUnavailable = errors.New("ledger store unavailable")

// Row pairs a ProductRecord with its 1-based sheet row index. The index is
// the record's identity for in-place cell updates.
type Row struct {
	Index  int
	Record models.ProductRecord
}

// Repository defines the row-level operations supported against a ledger.
// Each call is an independent remote write; there is no transactional
// guarantee across calls.
type Repository interface {
	FetchAll(ctx context.Context, ledgerRef string) ([]Row, error)
	UpdateCell(ctx context.Context, ledgerRef string, row, col int, value interface{}) error
	AppendRow(ctx context.Context, ledgerRef string, record models.ProductRecord) error
}

const dataRange = "A2:J"

var sheetURLPattern = regexp.MustCompile(`/d/([a-zA-Z0-9-_]+)`)

// SpreadsheetID extracts the spreadsheet id from a ledger reference, which
// may be a full Google Sheets URL or a bare id.
func SpreadsheetID(ledgerRef string) (string, error) {
	ref := strings.TrimSpace(ledgerRef)
	if ref == "" {
		return "", fmt.Errorf("%w: empty ledger reference", models.ErrValidation)
	}
	if m := sheetURLPattern.FindStringSubmatch(ref); m != nil {
		return m[1], nil
	}
	if strings.Contains(ref, "/") {
		return "", fmt.Errorf("%w: unrecognized ledger reference %q", models.ErrValidation, ledgerRef)
	}
	return ref, nil
}

// GoogleLedgerRepository implements Repository using the official Google
// Sheets API. A single authenticated service serves every ledger.
type GoogleLedgerRepository struct {
	service *sheetsapi.Service
	timeout time.Duration
	logger  *zap.Logger
}

// NewGoogleLedgerRepository builds a Google Sheets backed ledger repository.
func NewGoogleLedgerRepository(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*GoogleLedgerRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}

	return &GoogleLedgerRepository{
		service: service,
		timeout: cfg.RequestTimeout,
		logger:  logger,
	}, nil
}

// FetchAll reads the full data range of a ledger and decodes it into ordered
// rows. Rows with a blank product name are dropped.
func (r *GoogleLedgerRepository) FetchAll(ctx context.Context, ledgerRef string) ([]Row, error) {
	spreadsheetID, err := SpreadsheetID(ledgerRef)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	resp, err := r.service.Spreadsheets.Values.Get(spreadsheetID, dataRange).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read ledger %s: %w: %v", spreadsheetID, ErrStoreUnavailable, err)
	}

	rows := make([]Row, 0, len(resp.Values))
	for i, values := range resp.Values {
		record, ok := decodeRecord(values)
		if !ok {
			continue
		}
		rows = append(rows, Row{Index: i + 2, Record: record})
	}

	r.logger.Debug("ledger snapshot fetched",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.Int("rows", len(rows)))

	return rows, nil
}

// UpdateCell writes a single cell of a ledger row.
func (r *GoogleLedgerRepository) UpdateCell(ctx context.Context, ledgerRef string, row, col int, value interface{}) error {
	spreadsheetID, err := SpreadsheetID(ledgerRef)
	if err != nil {
		return err
	}
	if row < 2 || col < 1 || col > ColHighThreshold {
		return fmt.Errorf("%w: cell (%d,%d) outside ledger bounds", models.ErrValidation, row, col)
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cellRange := fmt.Sprintf("%s%d", columnLetter(col), row)
	payload := &sheetsapi.ValueRange{Values: [][]interface{}{{value}}}

	_, err = r.service.Spreadsheets.Values.Update(spreadsheetID, cellRange, payload).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update cell %s in ledger %s: %w: %v", cellRange, spreadsheetID, ErrStoreUnavailable, err)
	}

	r.logger.Debug("ledger cell updated",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("cell", cellRange))

	return nil
}

// AppendRow appends a new product record at the bottom of the ledger.
func (r *GoogleLedgerRepository) AppendRow(ctx context.Context, ledgerRef string, record models.ProductRecord) error {
	spreadsheetID, err := SpreadsheetID(ledgerRef)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	payload := &sheetsapi.ValueRange{Values: [][]interface{}{encodeRecord(record)}}

	_, err = r.service.Spreadsheets.Values.Append(spreadsheetID, "A:J", payload).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row to ledger %s: %w: %v", spreadsheetID, ErrStoreUnavailable, err)
	}

	r.logger.Debug("ledger row appended",
		zap.String("spreadsheet_id", spreadsheetID),
		zap.String("product", record.Name))

	return nil
}
