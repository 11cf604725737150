package mcp

import (
	"fmt"
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"
)

type analysisRunInput struct {
	Capability        string   `json:"capability" jsonschema:"capability: news, yahoo_finance, fundamental, technical, clustering, chart, quantum, ideas, backtest, ml_prediction, community_insight, institutional_deep_dive, portfolio_optimization, fuzzy_correlation"`
	Ticker            string   `json:"ticker,omitempty" jsonschema:"ticker symbol (e.g. AAPL, SPY)"`
	Strategy          string   `json:"strategy,omitempty" jsonschema:"backtest strategy description"`
	StartDate         string   `json:"startDate,omitempty" jsonschema:"backtest start date YYYY-MM-DD"`
	EndDate           string   `json:"endDate,omitempty" jsonschema:"backtest end date YYYY-MM-DD"`
	ModelArchitecture string   `json:"modelArchitecture,omitempty" jsonschema:"ML model architecture, default LSTM"`
	PredictionDays    int      `json:"predictionDays,omitempty" jsonschema:"ML forecast horizon in days"`
	Institution       string   `json:"institution,omitempty" jsonschema:"institution name for a deep dive"`
	Peers             []string `json:"peers,omitempty" jsonschema:"peer tickers for fuzzy correlation"`
	RiskTolerance     string   `json:"riskTolerance,omitempty" jsonschema:"portfolio risk tolerance"`
}

type analysisRunOutput struct {
	Result *domain.AnalysisResult `json:"result"`
}

type backtestRunInput struct {
	Ticker         string  `json:"ticker" jsonschema:"ticker symbol (e.g. SPY)"`
	Strategy       string  `json:"strategy" jsonschema:"strategy description (e.g. SMA crossover)"`
	StartDate      string  `json:"startDate" jsonschema:"start date YYYY-MM-DD"`
	EndDate        string  `json:"endDate" jsonschema:"end date YYYY-MM-DD"`
	InitialCapital float64 `json:"initialCapital,omitempty" jsonschema:"starting capital, default 10000"`
}

type portfolioOptimizeInput struct {
	Holdings      []domain.Holding `json:"holdings,omitempty" jsonschema:"holdings to optimize; defaults to the portfolio book"`
	RiskTolerance string           `json:"riskTolerance,omitempty" jsonschema:"risk tolerance (e.g. conservative, moderate, aggressive)"`
}

type marketQuotesInput struct {
	Surface string `json:"surface,omitempty" jsonschema:"surface: tape, screener or market (default market)"`
}

type marketQuotesOutput struct {
	Surface string                `json:"surface"`
	Quotes  []domain.MarketTicker `json:"quotes"`
}

type marketAddSymbolInput struct {
	Surface string `json:"surface,omitempty" jsonschema:"surface: tape, screener or market (default market)"`
	Symbol  string `json:"symbol" jsonschema:"ticker symbol to add"`
}

type marketAddSymbolOutput struct {
	Surface string              `json:"surface"`
	Added   bool                `json:"added"`
	Quote   domain.MarketTicker `json:"quote"`
}

type holdingsOutput struct {
	Holdings []domain.Holding `json:"holdings"`
}

type capabilitiesOutput struct {
	Capabilities []service.CapabilityInfo `json:"capabilities"`
}

func normalizeSymbol(symbol string) (string, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if symbol == "" {
		return "", fmt.Errorf("symbol is required")
	}
	if !market.ValidSymbol(symbol) {
		return "", fmt.Errorf("invalid symbol: %s", symbol)
	}
	return symbol, nil
}

func normalizeSurface(surface string) (string, error) {
	surface = strings.ToLower(strings.TrimSpace(surface))
	if surface == "" {
		return market.SurfaceMarket, nil
	}
	for _, s := range market.Surfaces {
		if surface == s {
			return surface, nil
		}
	}
	return "", fmt.Errorf("unsupported surface: %s", surface)
}

func (in analysisRunInput) request() (domain.AnalysisRequest, error) {
	capability, err := domain.ParseCapability(in.Capability)
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	return domain.AnalysisRequest{
		Ticker:     in.Ticker,
		Capability: capability,
		Params: domain.AnalysisParams{
			Strategy:          in.Strategy,
			StartDate:         in.StartDate,
			EndDate:           in.EndDate,
			ModelArchitecture: in.ModelArchitecture,
			PredictionDays:    in.PredictionDays,
			Institution:       in.Institution,
			Peers:             in.Peers,
			RiskTolerance:     in.RiskTolerance,
		},
	}, nil
}
