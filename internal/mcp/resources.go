package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func registerResources(server *mcp.Server, analyzer Analyzer, markets MarketReader) {
	server.AddResource(&mcp.Resource{
		URI:         "market://quotes",
		Name:        "market-quotes",
		Description: "Current quotes of every market surface keyed by surface",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if markets == nil {
			return nil, fmt.Errorf("market desk unavailable")
		}
		all := make(map[string][]domain.MarketTicker, len(market.Surfaces))
		for _, surface := range market.Surfaces {
			quotes, err := markets.Quotes(surface)
			if err != nil {
				return nil, err
			}
			all[surface] = quotes
		}
		return jsonResource(req.Params.URI, all)
	})

	server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: "market://quotes/{surface}",
		Name:        "market-quotes-by-surface",
		Description: "Current quotes of one market surface (tape, screener, market)",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if markets == nil {
			return nil, fmt.Errorf("market desk unavailable")
		}
		parsed, err := url.Parse(req.Params.URI)
		if err != nil || parsed.Scheme != "market" || parsed.Host != "quotes" {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		surface, err := normalizeSurface(strings.Trim(parsed.Path, "/"))
		if err != nil {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		quotes, err := markets.Quotes(surface)
		if err != nil {
			return nil, err
		}
		return jsonResource(req.Params.URI, marketQuotesOutput{Surface: surface, Quotes: quotes})
	})

	server.AddResource(&mcp.Resource{
		URI:         "portfolio://holdings",
		Name:        "portfolio-holdings",
		Description: "Holdings of the portfolio book with derived market value and P&L",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if markets == nil {
			return nil, fmt.Errorf("market desk unavailable")
		}
		return jsonResource(req.Params.URI, holdingsOutput{Holdings: markets.Holdings()})
	})

	server.AddResource(&mcp.Resource{
		URI:         "analysis://capabilities",
		Name:        "analysis-capabilities",
		Description: "Analysis capabilities with their request mode and retrieval flag",
		MIMEType:    "application/json",
	}, func(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
		if analyzer == nil {
			return nil, fmt.Errorf("analysis service unavailable")
		}
		return jsonResource(req.Params.URI, capabilitiesOutput{Capabilities: analyzer.Capabilities()})
	})
}

func jsonResource(uri string, payload any) (*mcp.ReadResourceResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(body),
		}},
	}, nil
}
