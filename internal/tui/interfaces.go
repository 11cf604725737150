package tui

import (
	"context"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"
)

// MarketSource drives and reads the synthetic market.
type MarketSource interface {
	Advance(at time.Time) market.Snapshot
	Current(at time.Time) market.Snapshot
	History() []domain.PortfolioPoint
}

// Analyzer runs analysis capabilities for the TUI.
type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
	Capabilities() []service.CapabilityInfo
}

const (
	DefaultTickInterval = 2 * time.Second
	analysisView        = "tui"
)

// Services bundles all service dependencies injected into the TUI.
type Services struct {
	Market       MarketSource
	Analyzer     Analyzer
	TickInterval time.Duration
	// View keys the analysis supersede guard. Concurrent sessions sharing
	// one analyzer need distinct views.
	View string
}

func (s Services) view() string {
	if s.View == "" {
		return analysisView
	}
	return s.View
}

func (s Services) tickInterval() time.Duration {
	if s.TickInterval <= 0 {
		return DefaultTickInterval
	}
	return s.TickInterval
}
