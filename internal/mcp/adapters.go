package mcp

import (
	"context"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"
)

// Analyzer runs analysis capabilities.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
	Capabilities() []service.CapabilityInfo
}

// MarketReader exposes the simulated market surfaces and the portfolio book.
// *market.Desk satisfies it.
type MarketReader interface {
	Quotes(surface string) ([]domain.MarketTicker, error)
	AddSymbol(surface, symbol string) (domain.MarketTicker, bool, error)
	Holdings() []domain.Holding
}
