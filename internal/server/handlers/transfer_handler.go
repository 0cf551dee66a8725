package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/service/transfer"
)

// TransferHandler exposes the cross-ledger stock move.
type TransferHandler struct {
	svc    *transfer.Service
	logger *zap.Logger
}

// NewTransferHandler constructs the HTTP handler adapter.
func NewTransferHandler(svc *transfer.Service, logger *zap.Logger) *TransferHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TransferHandler{svc: svc, logger: logger}
}

// Transfer moves stock between two ledgers.
func (h *TransferHandler) Transfer(c *gin.Context) {
	var req models.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid transfer payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Transfer(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("transfer rejected",
			zap.String("product", req.ProductName),
			zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
