package domain

import (
	"fmt"
	"strings"
)

type Capability string

const (
	CapabilityNews                  Capability = "news"
	CapabilityYahooFinance          Capability = "yahoo_finance"
	CapabilityFundamental           Capability = "fundamental"
	CapabilityTechnical             Capability = "technical"
	CapabilityClustering            Capability = "clustering"
	CapabilityChart                 Capability = "chart"
	CapabilityQuantum               Capability = "quantum"
	CapabilityIdeas                 Capability = "ideas"
	CapabilityBacktest              Capability = "backtest"
	CapabilityMLPrediction          Capability = "ml_prediction"
	CapabilityCommunityInsight      Capability = "community_insight"
	CapabilityInstitutionalDeepDive Capability = "institutional_deep_dive"
	CapabilityPortfolioOptimization Capability = "portfolio_optimization"
	CapabilityFuzzyCorrelation      Capability = "fuzzy_correlation"
)

var Capabilities = []Capability{
	CapabilityNews,
	CapabilityYahooFinance,
	CapabilityFundamental,
	CapabilityTechnical,
	CapabilityClustering,
	CapabilityChart,
	CapabilityQuantum,
	CapabilityIdeas,
	CapabilityBacktest,
	CapabilityMLPrediction,
	CapabilityCommunityInsight,
	CapabilityInstitutionalDeepDive,
	CapabilityPortfolioOptimization,
	CapabilityFuzzyCorrelation,
}

var capabilityLabels = map[Capability]string{
	CapabilityNews:                  "news",
	CapabilityYahooFinance:          "market snapshot",
	CapabilityFundamental:           "fundamental analysis",
	CapabilityTechnical:             "technical analysis",
	CapabilityClustering:            "clustering analysis",
	CapabilityChart:                 "chart",
	CapabilityQuantum:               "quantum forecast",
	CapabilityIdeas:                 "trade ideas",
	CapabilityBacktest:              "backtest",
	CapabilityMLPrediction:          "ML prediction",
	CapabilityCommunityInsight:      "community insight",
	CapabilityInstitutionalDeepDive: "institutional deep dive",
	CapabilityPortfolioOptimization: "portfolio optimization",
	CapabilityFuzzyCorrelation:      "fuzzy correlation analysis",
}

// Label returns a human-readable name used in error messages and prompts.
func (c Capability) Label() string {
	if label, ok := capabilityLabels[c]; ok {
		return label
	}
	return string(c)
}

func (c Capability) IsValid() bool {
	_, ok := capabilityLabels[c]
	return ok
}

// ParseCapability accepts the wire value case-insensitively.
func ParseCapability(raw string) (Capability, error) {
	c := Capability(strings.ToLower(strings.TrimSpace(raw)))
	if !c.IsValid() {
		return "", fmt.Errorf("unsupported capability: %s", raw)
	}
	return c, nil
}

type Sentiment string

const (
	SentimentBullish Sentiment = "Bullish"
	SentimentBearish Sentiment = "Bearish"
	SentimentNeutral Sentiment = "Neutral"
)

type TradeAction string

const (
	ActionBuy  TradeAction = "Buy"
	ActionSell TradeAction = "Sell"
	ActionHold TradeAction = "Hold"
)

type AnalysisParams struct {
	StartDate         string    `json:"startDate,omitempty"`
	EndDate           string    `json:"endDate,omitempty"`
	Strategy          string    `json:"strategy,omitempty"`
	InitialCapital    float64   `json:"initialCapital,omitempty"`
	ModelArchitecture string    `json:"modelArchitecture,omitempty"`
	Features          []string  `json:"features,omitempty"`
	PredictionDays    int       `json:"predictionDays,omitempty"`
	Holdings          []Holding `json:"holdings,omitempty"`
	Institution       string    `json:"institution,omitempty"`
	Peers             []string  `json:"peers,omitempty"`
	RiskTolerance     string    `json:"riskTolerance,omitempty"`
}

type AnalysisRequest struct {
	Ticker     string         `json:"ticker"`
	Capability Capability     `json:"capability"`
	Params     AnalysisParams `json:"params"`
	// View identifies the surface that issued the request. Requests sharing a
	// view supersede each other.
	View string `json:"view,omitempty"`
}

// NormalizeSymbol trims and upper-cases a ticker symbol.
func NormalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
