package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
)

type stubAnalyzer struct {
	mu   sync.Mutex
	last domain.AnalysisRequest
	err  error
}

func (s *stubAnalyzer) Analyze(_ context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = req
	if s.err != nil {
		return nil, s.err
	}
	return &domain.AnalysisResult{
		RequestID:   "req-1",
		Ticker:      domain.NormalizeSymbol(req.Ticker),
		Capability:  req.Capability,
		Content:     "stub analysis",
		GeneratedAt: time.Unix(0, 0).UTC(),
		Sentiment:   domain.SentimentNeutral,
	}, nil
}

func (s *stubAnalyzer) Capabilities() []service.CapabilityInfo {
	return []service.CapabilityInfo{
		{Capability: domain.CapabilityNews, Label: "news", Mode: "prose", Retrieval: true},
		{Capability: domain.CapabilityBacktest, Label: "backtest", Mode: "structured"},
	}
}

func (s *stubAnalyzer) lastRequest() domain.AnalysisRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

func testServer() (*sdkmcp.Server, *stubAnalyzer, *market.Desk) {
	analyzer := &stubAnalyzer{}
	desk := market.NewDesk(market.NewGenerator(3, nil), nil)
	srv := NewServer(nil, analyzer, desk, ServerConfig{RequestTimeout: time.Second, Log: zerolog.Nop()})
	return srv, analyzer, desk
}

func connectInMemory(ctx context.Context, srv *sdkmcp.Server) (*sdkmcp.ClientSession, context.CancelFunc, error) {
	clientTransport, serverTransport := sdkmcp.NewInMemoryTransports()
	runCtx, cancel := context.WithCancel(ctx)
	go func() { _ = srv.Run(runCtx, serverTransport) }()

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "mcp-test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		cancel()
		return nil, nil, err
	}
	return session, cancel, nil
}

type authRoundTripper struct {
	token string
	base  http.RoundTripper
}

func (t *authRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	if t.token != "" {
		clone.Header.Set("Authorization", "Bearer "+t.token)
	}
	base := t.base
	if base == nil {
		base = http.DefaultTransport
	}
	return base.RoundTrip(clone)
}

func decodeResourceJSON(result *sdkmcp.ReadResourceResult, out any) error {
	if len(result.Contents) == 0 {
		return nil
	}
	return json.Unmarshal([]byte(result.Contents[0].Text), out)
}
