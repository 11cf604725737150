package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

type addSymbolBody struct {
	Symbol string `json:"symbol"`
}

type holdingBody struct {
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avgCost"`
	CurrentPrice float64 `json:"currentPrice"`
}

// GetRibbon godoc
// @Summary      Regional index ribbon
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/market/ribbon [get]
func (h *Handler) GetRibbon(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-ribbon")
	defer span.End()

	c.JSON(http.StatusOK, gin.H{"indices": h.desk.Ribbon().Snapshot()})
}

// GetSurface godoc
// @Summary      Quotes of one market surface
// @Tags         market
// @Produce      json
// @Param        surface  path  string  true  "Surface (tape, screener, market)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/market/surfaces/{surface} [get]
func (h *Handler) GetSurface(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-surface")
	defer span.End()

	board, ok := h.board(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"surface": board.Name(), "quotes": board.Snapshot()})
}

// AddSymbol godoc
// @Summary      Add a symbol to a surface
// @Description  Adding a symbol that is already present returns the existing quote.
// @Tags         market
// @Accept       json
// @Produce      json
// @Param        surface  path  string         true  "Surface (tape, screener, market)"
// @Param        body     body  addSymbolBody  true  "Symbol"
// @Success      200  {object}  domain.MarketTicker
// @Success      201  {object}  domain.MarketTicker
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/market/surfaces/{surface}/symbols [post]
func (h *Handler) AddSymbol(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.add-symbol")
	defer span.End()

	board, ok := h.board(c)
	if !ok {
		return
	}
	var body addSymbolBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	span.SetAttributes(attribute.String("symbol", body.Symbol))

	ticker, added, err := board.Add(body.Symbol)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}
	c.JSON(status, ticker)
}

// RemoveSymbol godoc
// @Summary      Remove a symbol from a surface
// @Tags         market
// @Param        surface  path  string  true  "Surface (tape, screener, market)"
// @Param        symbol   path  string  true  "Symbol"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/market/surfaces/{surface}/symbols/{symbol} [delete]
func (h *Handler) RemoveSymbol(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.remove-symbol")
	defer span.End()

	board, ok := h.board(c)
	if !ok {
		return
	}
	symbol := domain.NormalizeSymbol(c.Param("symbol"))
	if !board.Remove(symbol) {
		c.JSON(http.StatusNotFound, gin.H{"error": "symbol not on surface: " + symbol})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetAnomalies godoc
// @Summary      Isolation-forest anomaly scores of the screener surface
// @Tags         market
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      503  {object}  map[string]string
// @Router       /api/market/anomalies [get]
func (h *Handler) GetAnomalies(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-anomalies")
	defer span.End()

	scores, err := h.desk.Anomalies()
	if errors.Is(err, market.ErrNotEnoughSamples) {
		c.JSON(http.StatusOK, gin.H{"ready": false, "scores": []domain.AnomalyScore{}})
		return
	}
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ready": true, "scores": scores})
}

// GetHoldings godoc
// @Summary      Portfolio holdings
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/portfolio/holdings [get]
func (h *Handler) GetHoldings(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-holdings")
	defer span.End()

	book := h.desk.Book()
	c.JSON(http.StatusOK, gin.H{"holdings": book.List(), "totalValue": book.TotalValue()})
}

// PutHolding godoc
// @Summary      Create or replace a holding
// @Tags         portfolio
// @Accept       json
// @Produce      json
// @Param        ticker  path  string       true  "Ticker"
// @Param        body    body  holdingBody  true  "Quantity, average cost and current price"
// @Success      200  {object}  domain.Holding
// @Failure      400  {object}  map[string]string
// @Router       /api/portfolio/holdings/{ticker} [put]
func (h *Handler) PutHolding(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.put-holding")
	defer span.End()

	var body holdingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	holding, err := h.desk.Book().Upsert(domain.Holding{
		Ticker:       c.Param("ticker"),
		Quantity:     body.Quantity,
		AvgCost:      body.AvgCost,
		CurrentPrice: body.CurrentPrice,
	})
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, holding)
}

// DeleteHolding godoc
// @Summary      Remove a holding
// @Tags         portfolio
// @Param        ticker  path  string  true  "Ticker"
// @Success      204
// @Failure      404  {object}  map[string]string
// @Router       /api/portfolio/holdings/{ticker} [delete]
func (h *Handler) DeleteHolding(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.delete-holding")
	defer span.End()

	ticker := domain.NormalizeSymbol(c.Param("ticker"))
	if !h.desk.Book().Remove(ticker) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no holding for " + ticker})
		return
	}
	c.Status(http.StatusNoContent)
}

// GetHistory godoc
// @Summary      Portfolio value history with summary statistics
// @Tags         portfolio
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /api/portfolio/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	if !h.requireDesk(c) {
		return
	}
	_, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	history := h.desk.History()
	c.JSON(http.StatusOK, gin.H{"points": history, "summary": market.Summarize(history)})
}

func (h *Handler) requireDesk(c *gin.Context) bool {
	if h.desk == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "market desk unavailable"})
		return false
	}
	return true
}

func (h *Handler) board(c *gin.Context) (*market.Board, bool) {
	surface := strings.ToLower(strings.TrimSpace(c.Param("surface")))
	board, err := h.desk.Board(surface)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "surfaces": market.Surfaces})
		return nil, false
	}
	return board, true
}
