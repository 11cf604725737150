package domain

import "time"

type MarketTicker struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Bid           float64 `json:"bid"`
	Ask           float64 `json:"ask"`
	Volume        int64   `json:"volume"`
}

type Holding struct {
	Ticker       string  `json:"ticker"`
	Quantity     float64 `json:"quantity"`
	AvgCost      float64 `json:"avgCost"`
	CurrentPrice float64 `json:"currentPrice"`
	MarketValue  float64 `json:"marketValue"`
	PnL          float64 `json:"pnl"`
	PnLPercent   float64 `json:"pnlPercent"`
}

// NewHolding derives market value and P&L from quantity, price and cost.
func NewHolding(ticker string, quantity, avgCost, currentPrice float64) Holding {
	h := Holding{
		Ticker:       NormalizeSymbol(ticker),
		Quantity:     quantity,
		AvgCost:      avgCost,
		CurrentPrice: currentPrice,
	}
	return h.Derive()
}

// Derive recomputes the dependent fields; callers never set them directly.
func (h Holding) Derive() Holding {
	h.MarketValue = h.Quantity * h.CurrentPrice
	cost := h.Quantity * h.AvgCost
	h.PnL = h.MarketValue - cost
	h.PnLPercent = 0
	if cost != 0 {
		h.PnLPercent = h.PnL / cost * 100
	}
	return h
}

type PortfolioPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

type HistorySummary struct {
	StartValue      float64 `json:"startValue"`
	EndValue        float64 `json:"endValue"`
	TotalReturnPct  float64 `json:"totalReturnPct"`
	MeanDailyReturn float64 `json:"meanDailyReturn"`
	DailyVolatility float64 `json:"dailyVolatility"`
	MaxDrawdownPct  float64 `json:"maxDrawdownPct"`
}

type AnomalyScore struct {
	Symbol string  `json:"symbol"`
	Score  float64 `json:"score"`
	Flag   bool    `json:"flag"`
}
