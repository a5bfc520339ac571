package httpapi

import (
	"net/http"

	"chartengine/internal/chart/candle"
	"chartengine/internal/chart/engine"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ChartService answers chart history queries, normally the candle engine.
type ChartService interface {
	History(symbol, timeframeCode string) engine.HistoryResponse
}

// NewRouter builds the thin HTTP layer over the chart query surface.
func NewRouter(svc ChartService, logger *zap.Logger) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	h := &handler{svc: svc, logger: logger}
	router.GET("/api/chart/:symbol/history", h.getChartHistory)

	return router
}

type handler struct {
	svc    ChartService
	logger *zap.Logger
}

// getChartHistory serves GET /api/chart/:symbol/history?timeFrame=15m.
// Unknown or blank parameters degrade to defaults inside the engine.
func (h *handler) getChartHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	timeFrame := c.DefaultQuery("timeFrame", "15m")

	resp := h.svc.History(symbol, timeFrame)

	if invalid := dropInvalidCandles(&resp); invalid > 0 {
		h.logger.Warn("filtered invalid candles from chart response",
			zap.String("symbol", symbol),
			zap.String("timeframe", timeFrame),
			zap.Int("dropped", invalid))
	}

	c.JSON(http.StatusOK, resp)
}

// dropInvalidCandles removes candles with a non-positive bucket time in
// place and returns how many were removed.
func dropInvalidCandles(resp *engine.HistoryResponse) int {
	valid := make([]candle.Candle, 0, len(resp.Candles))
	for _, cd := range resp.Candles {
		if cd.Time > 0 {
			valid = append(valid, cd)
		}
	}
	dropped := len(resp.Candles) - len(valid)
	resp.Candles = valid
	return dropped
}
