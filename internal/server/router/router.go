package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tanush1852/stockwatch/internal/server/handlers"
)

// New wires the Gin engine with required routes and middlewares.
func New(transfer *handlers.TransferHandler, scan *handlers.ScanHandler, products *handlers.ProductHandler, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(zapLoggerMiddleware(logger))

	r.POST("/transfer", transfer.Transfer)

	r.GET("/scan/thresholds", scan.Thresholds)
	r.GET("/scan/expiry", scan.Expiry)
	r.POST("/monitor/run", scan.RunMonitor)

	r.GET("/products", products.List)
	r.POST("/sales", products.RecordSale)
	r.POST("/restock", products.Restock)

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	if logger != nil {
		logger.Info("router initialized")
	}

	return r
}

func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}

	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Info("request completed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("client_ip", c.ClientIP()))
	}
}
