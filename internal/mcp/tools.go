package mcp

import (
	"context"
	"fmt"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerTools(server *mcp.Server, analyzer Analyzer, markets MarketReader) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "analysis_run",
		Description: "Run one AI analysis capability for a ticker and return the normalized result",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in analysisRunInput) (*mcp.CallToolResult, analysisRunOutput, error) {
		if analyzer == nil {
			return nil, analysisRunOutput{}, fmt.Errorf("analysis service unavailable")
		}
		req, err := in.request()
		if err != nil {
			return nil, analysisRunOutput{}, err
		}
		if req.Capability == domain.CapabilityPortfolioOptimization && markets != nil {
			req.Params.Holdings = markets.Holdings()
		}
		result, err := analyzer.Analyze(ctx, req)
		if err != nil {
			return nil, analysisRunOutput{}, err
		}
		return nil, analysisRunOutput{Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "backtest_run",
		Description: "Backtest a trading strategy on a ticker over a date range",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in backtestRunInput) (*mcp.CallToolResult, analysisRunOutput, error) {
		if analyzer == nil {
			return nil, analysisRunOutput{}, fmt.Errorf("analysis service unavailable")
		}
		result, err := analyzer.Analyze(ctx, domain.AnalysisRequest{
			Ticker:     in.Ticker,
			Capability: domain.CapabilityBacktest,
			Params: domain.AnalysisParams{
				Strategy:       in.Strategy,
				StartDate:      in.StartDate,
				EndDate:        in.EndDate,
				InitialCapital: in.InitialCapital,
			},
		})
		if err != nil {
			return nil, analysisRunOutput{}, err
		}
		return nil, analysisRunOutput{Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "portfolio_optimize",
		Description: "Optimize a portfolio of at least two holdings; uses the portfolio book when none are given",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in portfolioOptimizeInput) (*mcp.CallToolResult, analysisRunOutput, error) {
		if analyzer == nil {
			return nil, analysisRunOutput{}, fmt.Errorf("analysis service unavailable")
		}
		holdings := in.Holdings
		if len(holdings) == 0 && markets != nil {
			holdings = markets.Holdings()
		}
		result, err := analyzer.Analyze(ctx, domain.AnalysisRequest{
			Capability: domain.CapabilityPortfolioOptimization,
			Params: domain.AnalysisParams{
				Holdings:      holdings,
				RiskTolerance: in.RiskTolerance,
			},
		})
		if err != nil {
			return nil, analysisRunOutput{}, err
		}
		return nil, analysisRunOutput{Result: result}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_quotes",
		Description: "Get the current simulated quotes of one market surface",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketQuotesInput) (*mcp.CallToolResult, marketQuotesOutput, error) {
		if markets == nil {
			return nil, marketQuotesOutput{}, fmt.Errorf("market desk unavailable")
		}
		surface, err := normalizeSurface(in.Surface)
		if err != nil {
			return nil, marketQuotesOutput{}, err
		}
		quotes, err := markets.Quotes(surface)
		if err != nil {
			return nil, marketQuotesOutput{}, err
		}
		return nil, marketQuotesOutput{Surface: surface, Quotes: quotes}, nil
	})

	mcp.AddTool(server, &mcp.Tool{
		Name:        "market_add_symbol",
		Description: "Add a symbol to a market surface; adding an existing symbol is a no-op",
	}, func(ctx context.Context, _ *mcp.CallToolRequest, in marketAddSymbolInput) (*mcp.CallToolResult, marketAddSymbolOutput, error) {
		if markets == nil {
			return nil, marketAddSymbolOutput{}, fmt.Errorf("market desk unavailable")
		}
		surface, err := normalizeSurface(in.Surface)
		if err != nil {
			return nil, marketAddSymbolOutput{}, err
		}
		symbol, err := normalizeSymbol(in.Symbol)
		if err != nil {
			return nil, marketAddSymbolOutput{}, err
		}
		quote, added, err := markets.AddSymbol(surface, symbol)
		if err != nil {
			return nil, marketAddSymbolOutput{}, err
		}
		return nil, marketAddSymbolOutput{Surface: surface, Added: added, Quote: quote}, nil
	})
}
