package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
	Capabilities() []service.CapabilityInfo
}

type SnapshotStream interface {
	Subscribe() (<-chan market.Snapshot, func())
}

type Handler struct {
	tracer   trace.Tracer
	analyzer Analyzer
	desk     *market.Desk
	stream   SnapshotStream
	upgrader websocket.Upgrader
	log      zerolog.Logger
	now      func() time.Time
}

func New(
	tracer trace.Tracer,
	analyzer Analyzer,
	desk *market.Desk,
	stream SnapshotStream,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		tracer:   tracer,
		analyzer: analyzer,
		desk:     desk,
		stream:   stream,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		log: log.With().Str("component", "http").Logger(),
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CORS builds the middleware for the configured origins. A single "*" allows
// every origin.
func CORS(origins []string) gin.HandlerFunc {
	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	api := r.Group("/api")
	api.GET("/capabilities", h.GetCapabilities)
	api.POST("/analysis/:capability", h.RunAnalysis)
	api.POST("/backtest", h.RunBacktest)
	api.POST("/ml/predict", h.RunMLPrediction)
	api.POST("/community", h.RunCommunityInsight)
	api.POST("/institutions/deep-dive", h.RunInstitutionalDeepDive)
	api.POST("/portfolio/optimize", h.OptimizePortfolio)
	api.POST("/fuzzy", h.RunFuzzyAnalysis)

	api.GET("/market/ribbon", h.GetRibbon)
	api.GET("/market/surfaces/:surface", h.GetSurface)
	api.POST("/market/surfaces/:surface/symbols", h.AddSymbol)
	api.DELETE("/market/surfaces/:surface/symbols/:symbol", h.RemoveSymbol)
	api.GET("/market/anomalies", h.GetAnomalies)
	api.GET("/market/stream", h.Stream)

	api.GET("/portfolio/holdings", h.GetHoldings)
	api.PUT("/portfolio/holdings/:ticker", h.PutHolding)
	api.DELETE("/portfolio/holdings/:ticker", h.DeleteHolding)
	api.GET("/portfolio/history", h.GetHistory)
}

// Health godoc
// @Summary      Health check
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.health")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
