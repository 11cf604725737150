package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/llm"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/normalize"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// AnalysisBody is the request payload shared by every analysis endpoint.
type AnalysisBody struct {
	Ticker string                `json:"ticker"`
	View   string                `json:"view,omitempty"`
	Params domain.AnalysisParams `json:"params"`
}

// GetCapabilities godoc
// @Summary      List analysis capabilities
// @Tags         analysis
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/capabilities [get]
func (h *Handler) GetCapabilities(c *gin.Context) {
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-capabilities")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"capabilities": h.analyzer.Capabilities()})
}

// RunAnalysis godoc
// @Summary      Run one analysis capability for a ticker
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        capability  path  string        true  "Capability (news, fundamental, technical, ...)"
// @Param        body        body  AnalysisBody  true  "Ticker and capability parameters"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Failure      504  {object}  map[string]string
// @Router       /api/analysis/{capability} [post]
func (h *Handler) RunAnalysis(c *gin.Context) {
	capability, err := domain.ParseCapability(c.Param("capability"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.runCapability(c, capability)
}

// RunBacktest godoc
// @Summary      Backtest a strategy over a date range
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body  AnalysisBody  true  "Ticker, strategy, startDate, endDate, initialCapital"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/backtest [post]
func (h *Handler) RunBacktest(c *gin.Context) {
	h.runCapability(c, domain.CapabilityBacktest)
}

// RunMLPrediction godoc
// @Summary      Simulate model training and forecast prices
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body  AnalysisBody  true  "Ticker, modelArchitecture, features, predictionDays"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/ml/predict [post]
func (h *Handler) RunMLPrediction(c *gin.Context) {
	h.runCapability(c, domain.CapabilityMLPrediction)
}

// RunCommunityInsight godoc
// @Summary      Retail and institutional sentiment for a ticker
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body  AnalysisBody  true  "Ticker"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/community [post]
func (h *Handler) RunCommunityInsight(c *gin.Context) {
	h.runCapability(c, domain.CapabilityCommunityInsight)
}

// RunInstitutionalDeepDive godoc
// @Summary      Profile an institution's holdings and moves
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body  AnalysisBody  true  "Institution name in params"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/institutions/deep-dive [post]
func (h *Handler) RunInstitutionalDeepDive(c *gin.Context) {
	h.runCapability(c, domain.CapabilityInstitutionalDeepDive)
}

// OptimizePortfolio godoc
// @Summary      Optimize a portfolio of holdings
// @Description  Uses the book's holdings when the body carries none. At least two holdings are required.
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body  AnalysisBody  false  "Holdings and riskTolerance"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/portfolio/optimize [post]
func (h *Handler) OptimizePortfolio(c *gin.Context) {
	h.runCapability(c, domain.CapabilityPortfolioOptimization)
}

// RunFuzzyAnalysis godoc
// @Summary      Fuzzy correlation of a ticker against peers
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        body  body  AnalysisBody  true  "Ticker and peers"
// @Success      200  {object}  domain.AnalysisResult
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/fuzzy [post]
func (h *Handler) RunFuzzyAnalysis(c *gin.Context) {
	h.runCapability(c, domain.CapabilityFuzzyCorrelation)
}

func (h *Handler) runCapability(c *gin.Context, capability domain.Capability) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-analysis")
	defer span.End()
	span.SetAttributes(attribute.String("capability", string(capability)))

	var body AnalysisBody
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
			return
		}
	}

	req := domain.AnalysisRequest{
		Ticker:     body.Ticker,
		Capability: capability,
		Params:     body.Params,
		View:       body.View,
	}
	if capability == domain.CapabilityPortfolioOptimization && len(req.Params.Holdings) == 0 && h.desk != nil {
		req.Params.Holdings = h.desk.Book().List()
	}

	result, err := h.analyzer.Analyze(ctx, req)
	if err != nil {
		span.RecordError(err)
		h.writeAnalysisError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) writeAnalysisError(c *gin.Context, err error) {
	var failed *llm.RequestFailedError
	var malformed *normalize.MalformedResponseError

	switch {
	case errors.Is(err, service.ErrInvalidRequest),
		errors.Is(err, service.ErrInsufficientHoldings),
		errors.Is(err, service.ErrUnsupportedCapability):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrSuperseded):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusGatewayTimeout, gin.H{"error": err.Error()})
	case errors.As(err, &failed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "provider": failed.Provider})
	case errors.As(err, &malformed):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		h.log.Error().Err(err).Msg("analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
