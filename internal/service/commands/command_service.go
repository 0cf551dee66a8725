package commands

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/service/sales"
)

// ErrUnsupportedCommand indicates the message matched no known command.
var ErrUnsupportedCommand = errors.New("unsupported command")

var (
	buyPattern = regexp.MustCompile(`^buy (.+) (\d+)$`)
	addPattern = regexp.MustCompile(`^add (.+) (\d+)$`)
)

// Service turns inbound chat messages into ledger mutations. Supported
// commands: "buy <product> <qty>" records a sale, "add <product> <qty>"
// restocks or provisions the product, and any message containing "check"
// returns the ledger link.
type Service struct {
	sales  *sales.Service
	ledger string
	logger *zap.Logger
}

// NewService wires a command dispatcher over one ledger.
func NewService(salesSvc *sales.Service, ledger string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sales: salesSvc, ledger: ledger, logger: logger}
}

// HandleMessage parses one chat message and executes it. The returned string
// is the reply to send back; ErrUnsupportedCommand means the message was not
// a command and no reply is due.
func (s *Service) HandleMessage(ctx context.Context, text string) (string, error) {
	trimmed := strings.TrimSpace(text)

	if strings.Contains(strings.ToLower(trimmed), "check") {
		return fmt.Sprintf("📊 Spreadsheet link: %s", s.ledger), nil
	}

	if m := buyPattern.FindStringSubmatch(trimmed); m != nil {
		return s.handleBuy(ctx, m[1], m[2])
	}
	if m := addPattern.FindStringSubmatch(trimmed); m != nil {
		return s.handleAdd(ctx, m[1], m[2])
	}

	return "", ErrUnsupportedCommand
}

func (s *Service) handleBuy(ctx context.Context, product, rawQty string) (string, error) {
	qty, err := strconv.Atoi(rawQty)
	if err != nil {
		return "❌ Invalid product or quantity.", nil
	}

	result, err := s.sales.RecordSale(ctx, models.SaleRequest{
		Ledger:      s.ledger,
		ProductName: product,
		Quantity:    qty,
	})
	if err != nil {
		return s.replyForError(product, err)
	}

	s.logger.Info("chat sale recorded",
		zap.String("product", result.Product),
		zap.Int("quantity", qty))

	return fmt.Sprintf("✅ %s updated! %d units bought. New Stock: %d. Profit: %s",
		result.Product, qty, result.NewStock, result.Profit.StringFixed(2)), nil
}

func (s *Service) handleAdd(ctx context.Context, product, rawQty string) (string, error) {
	qty, err := strconv.Atoi(rawQty)
	if err != nil {
		return "❌ Invalid product or quantity.", nil
	}

	result, err := s.sales.Restock(ctx, models.RestockRequest{
		Ledger:      s.ledger,
		ProductName: product,
		StockToAdd:  qty,
	})
	if err != nil {
		return s.replyForError(product, err)
	}

	s.logger.Info("chat restock recorded",
		zap.String("product", result.Product),
		zap.Int("added", qty),
		zap.Bool("created", result.Created))

	if result.Created {
		return fmt.Sprintf("✅ New product added: %s with %d stock.", result.Product, result.NewStock), nil
	}
	return fmt.Sprintf("✅ Stock updated: %s now has %d.", result.Product, result.NewStock), nil
}

// replyForError maps the service error taxonomy onto chat replies. Only
// unexpected failures propagate; user mistakes become ❌ replies.
func (s *Service) replyForError(product string, err error) (string, error) {
	var insufficient *models.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		return fmt.Sprintf("❌ Cannot buy more than %d units.", insufficient.Available), nil
	case errors.Is(err, models.ErrProductNotFound):
		return fmt.Sprintf("❌ Product '%s' not found.", strings.TrimSpace(product)), nil
	case errors.Is(err, models.ErrValidation):
		return "❌ Invalid product or quantity.", nil
	default:
		return "", err
	}
}
