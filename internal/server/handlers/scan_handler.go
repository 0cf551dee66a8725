package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/domain/models"
	"github.com/tanush1852/stockwatch/internal/service/monitor"
)

// ScanHandler exposes on-demand ledger scans and the manual monitor trigger.
type ScanHandler struct {
	thresholds *monitor.ThresholdMonitor
	expiry     *monitor.ExpiryScanner
	loop       *monitor.Loop
	now        func() time.Time
	logger     *zap.Logger
}

// NewScanHandler constructs the HTTP handler adapter. loop may be nil when
// no ledgers are watched; the manual trigger then reports a conflict.
func NewScanHandler(thresholds *monitor.ThresholdMonitor, expiry *monitor.ExpiryScanner, loop *monitor.Loop, logger *zap.Logger) *ScanHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ScanHandler{
		thresholds: thresholds,
		expiry:     expiry,
		loop:       loop,
		now:        time.Now,
		logger:     logger,
	}
}

// Thresholds runs a read-only threshold scan of one ledger.
func (h *ScanHandler) Thresholds(c *gin.Context) {
	ledger := c.Query("ledger")
	if ledger == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ledger query parameter is required"})
		return
	}

	anomalies, err := h.thresholds.Scan(c.Request.Context(), ledger)
	if err != nil {
		h.logger.Error("threshold scan failed", zap.String("ledger", ledger), zap.Error(err))
		writeError(c, err)
		return
	}
	if anomalies == nil {
		anomalies = []models.Anomaly{}
	}

	c.JSON(http.StatusOK, anomalies)
}

// Expiry runs an expiry scan of one ledger. Expired records get their stock
// written off as part of the scan.
func (h *ScanHandler) Expiry(c *gin.Context) {
	ledger := c.Query("ledger")
	if ledger == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ledger query parameter is required"})
		return
	}

	expired, err := h.expiry.Scan(c.Request.Context(), ledger, h.now())
	if err != nil {
		h.logger.Error("expiry scan failed", zap.String("ledger", ledger), zap.Error(err))
		writeError(c, err)
		return
	}
	if expired == nil {
		expired = []models.ExpiredItem{}
	}

	c.JSON(http.StatusOK, expired)
}

// RunMonitor triggers one monitor cycle over the watched ledgers.
func (h *ScanHandler) RunMonitor(c *gin.Context) {
	if h.loop == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "no ledgers are being monitored"})
		return
	}

	h.loop.RunOnce(c.Request.Context())
	c.Status(http.StatusAccepted)
}
