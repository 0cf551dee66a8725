package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/repository/sheets"
)

// writeError maps the service error taxonomy onto HTTP responses.
func writeError(c *gin.Context, err error) {
	var insufficient *models.InsufficientStockError
	switch {
	case errors.As(err, &insufficient):
		c.JSON(http.StatusBadRequest, gin.H{
			"error":     "insufficient stock",
			"available": insufficient.Available,
		})
	case errors.Is(err, models.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, sheets.ErrStoreUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "ledger store unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
