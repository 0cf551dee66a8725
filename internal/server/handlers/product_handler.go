package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/service/sales"
)

// ProductHandler exposes ledger listings, sale recording and restocking.
type ProductHandler struct {
	svc    *sales.Service
	logger *zap.Logger
}

// NewProductHandler constructs the HTTP handler adapter.
func NewProductHandler(svc *sales.Service, logger *zap.Logger) *ProductHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductHandler{svc: svc, logger: logger}
}

// List returns every product record of a ledger.
func (h *ProductHandler) List(c *gin.Context) {
	ledger := c.Query("ledger")
	if ledger == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ledger query parameter is required"})
		return
	}

	records, err := h.svc.ListProducts(c.Request.Context(), ledger)
	if err != nil {
		h.logger.Error("product listing failed", zap.String("ledger", ledger), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}

// RecordSale registers a purchase against a ledger.
func (h *ProductHandler) RecordSale(c *gin.Context) {
	var req models.SaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid sale payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.RecordSale(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("sale rejected", zap.String("product", req.ProductName), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Restock upserts a product record.
func (h *ProductHandler) Restock(c *gin.Context) {
	var req models.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid restock payload", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	result, err := h.svc.Restock(c.Request.Context(), req)
	if err != nil {
		h.logger.Warn("restock rejected", zap.String("product", req.ProductName), zap.Error(err))
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
