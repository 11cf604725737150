package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/cache"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/llm"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/normalize"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type stubModelClient struct {
	text    string
	sources []domain.SourceCitation
	err     error
	calls   int
	prompts []string
	opts    []llm.Options
	onCall  func(ctx context.Context) error
}

func (s *stubModelClient) Generate(ctx context.Context, prompt string, opts llm.Options) (*llm.Response, error) {
	s.calls++
	s.prompts = append(s.prompts, prompt)
	s.opts = append(s.opts, opts)
	if s.onCall != nil {
		if err := s.onCall(ctx); err != nil {
			return nil, err
		}
	}
	if s.err != nil {
		return nil, s.err
	}
	return &llm.Response{Text: s.text, Sources: s.sources}, nil
}

func newTestService(client ModelClient) *AnalysisService {
	return NewAnalysisService(
		trace.NewNoopTracerProvider().Tracer("test"),
		client,
		nil,
		cache.NewMemoryGenerations(),
		time.Second,
		zerolog.Nop(),
	)
}

const spyBacktestResponse = "```json\n" + `{
  "summary": "The RSI strategy was modestly positive.",
  "strategy": "something else",
  "metrics": {"totalReturn": "8.4%", "sharpeRatio": 1.2, "maxDrawdown": -4.1, "winRate": 62, "tradesCount": -1},
  "equityCurve": [{"date": "2023-01-01", "value": 10000}, {"date": "2023-06-01", "value": 10840}],
  "trades": [
    {"date": "2023-02-10", "type": "buy", "price": 401.2, "quantity": 10, "profit": 0},
    {"date": "2023-03-15", "type": "SELL", "price": 412.9, "quantity": 10, "profit": 117}
  ]
}` + "\n```"

func TestRunBacktestSPY(t *testing.T) {
	client := &stubModelClient{text: spyBacktestResponse}
	svc := newTestService(client)

	res, err := svc.RunBacktest(context.Background(), domain.AnalysisRequest{
		Ticker: "spy",
		Params: domain.AnalysisParams{
			Strategy:  "Buy when RSI < 30",
			StartDate: "2023-01-01",
			EndDate:   "2023-06-01",
		},
	})
	if err != nil {
		t.Fatalf("RunBacktest returned error: %v", err)
	}
	if res.Ticker != "SPY" || res.Capability != domain.CapabilityBacktest {
		t.Fatalf("unexpected identity %s %s", res.Ticker, res.Capability)
	}
	bt := res.Backtest
	if bt == nil {
		t.Fatal("expected backtest block")
	}
	if bt.Metrics.TradesCount < 0 {
		t.Fatalf("tradesCount should be reconciled, got %d", bt.Metrics.TradesCount)
	}
	if bt.Metrics.TradesCount != 2 {
		t.Fatalf("expected tradesCount from trade log, got %d", bt.Metrics.TradesCount)
	}
	if bt.Metrics.TotalReturn != 8.4 {
		t.Fatalf("expected numeric string to be parsed, got %v", bt.Metrics.TotalReturn)
	}
	if len(bt.EquityCurve) < 1 {
		t.Fatal("expected non-empty equity curve")
	}
	for _, tr := range bt.Trades {
		if tr.Type != domain.ActionBuy && tr.Type != domain.ActionSell {
			t.Fatalf("unexpected trade type %q", tr.Type)
		}
	}
	if bt.Strategy != "Buy when RSI < 30" {
		t.Fatalf("strategy should come from the request, got %q", bt.Strategy)
	}
	if res.Sentiment != domain.SentimentBullish {
		t.Fatalf("expected keyword sentiment from summary, got %s", res.Sentiment)
	}
	if res.Community != nil || res.ML != nil {
		t.Fatal("fields of other capabilities must not be set")
	}

	if client.calls != 1 {
		t.Fatalf("expected exactly one model call, got %d", client.calls)
	}
	if client.opts[0].Schema == nil || client.opts[0].EnableRetrieval {
		t.Fatalf("backtest must use an enforced schema without retrieval: %+v", client.opts[0])
	}
	if !strings.Contains(client.prompts[0], "Buy when RSI < 30") {
		t.Fatalf("strategy not substituted into prompt")
	}
}

func TestRunBacktestDropsUnknownTradeSides(t *testing.T) {
	client := &stubModelClient{text: "```json\n" + `{
  "summary": "Setup:\n` + "```" + `\nbuy 100\n` + "```" + `\ndone",
  "metrics": {"tradesCount": -1},
  "equityCurve": [{"date": "2023-01-01", "value": 10000}],
  "trades": [
    {"date": "2023-02-10", "type": "Short", "price": 401.2, "quantity": 10},
    {"date": "2023-02-11", "type": "", "price": 402.0, "quantity": 5},
    {"date": "2023-03-15", "type": "sell", "price": 412.9, "quantity": 10, "profit": 117}
  ]
}` + "\n```"}
	svc := newTestService(client)

	res, err := svc.RunBacktest(context.Background(), domain.AnalysisRequest{
		Ticker: "SPY",
		Params: domain.AnalysisParams{Strategy: "x", StartDate: "2023-01-01", EndDate: "2023-06-01"},
	})
	if err != nil {
		t.Fatalf("RunBacktest returned error: %v", err)
	}
	if !strings.Contains(res.Content, "```\nbuy 100\n```") {
		t.Fatalf("expected summary with its code block intact, got %q", res.Content)
	}
	bt := res.Backtest
	if len(bt.Trades) != 1 || bt.Trades[0].Type != domain.ActionSell || bt.Trades[0].Date != "2023-03-15" {
		t.Fatalf("expected only the sell trade to survive, got %+v", bt.Trades)
	}
	if bt.Metrics.TradesCount != 1 {
		t.Fatalf("expected tradesCount to match the kept trades, got %d", bt.Metrics.TradesCount)
	}
}

func TestRunBacktestValidation(t *testing.T) {
	client := &stubModelClient{text: spyBacktestResponse}
	svc := newTestService(client)

	tests := []domain.AnalysisParams{
		{StartDate: "2023-01-01", EndDate: "2023-06-01"},
		{Strategy: "x", StartDate: "01/01/2023", EndDate: "2023-06-01"},
		{Strategy: "x", StartDate: "2023-06-01", EndDate: "2023-01-01"},
	}
	for _, params := range tests {
		_, err := svc.RunBacktest(context.Background(), domain.AnalysisRequest{Ticker: "SPY", Params: params})
		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("expected invalid request for %+v, got %v", params, err)
		}
	}
	if client.calls != 0 {
		t.Fatalf("invalid requests must not reach the model, got %d calls", client.calls)
	}
}

func TestRunBacktestWithoutEquityCurveIsMalformed(t *testing.T) {
	client := &stubModelClient{text: `{"summary":"no data","metrics":{"tradesCount":0},"equityCurve":[],"trades":[]}`}
	svc := newTestService(client)

	_, err := svc.RunBacktest(context.Background(), domain.AnalysisRequest{
		Ticker: "SPY",
		Params: domain.AnalysisParams{Strategy: "x", StartDate: "2023-01-01", EndDate: "2023-06-01"},
	})
	var malformed *normalize.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected malformed response, got %v", err)
	}
	var capErr *CapabilityError
	if !errors.As(err, &capErr) || capErr.Capability != domain.CapabilityBacktest {
		t.Fatalf("expected backtest capability error, got %v", err)
	}
}

func TestOptimizePortfolioRefusesSingleHolding(t *testing.T) {
	client := &stubModelClient{text: `{}`}
	svc := newTestService(client)

	_, err := svc.OptimizePortfolio(context.Background(), domain.AnalysisRequest{
		Params: domain.AnalysisParams{Holdings: []domain.Holding{domain.NewHolding("AAPL", 10, 150, 170)}},
	})
	if !errors.Is(err, ErrInsufficientHoldings) {
		t.Fatalf("expected ErrInsufficientHoldings, got %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("expected no model call, got %d", client.calls)
	}
}

func TestOptimizePortfolio(t *testing.T) {
	client := &stubModelClient{text: `{
		"summary": "Shift weight toward MSFT.",
		"currentMetrics": {"expectedReturn": 9, "volatility": 18, "sharpeRatio": 0.4},
		"optimizedMetrics": {"expectedReturn": 10, "volatility": 15, "sharpeRatio": 0.6},
		"efficientFrontier": [{"risk": 10, "return": 6}, {"risk": 15, "return": 10}],
		"suggestions": [{"ticker": "MSFT", "action": "buy", "currentWeight": 40, "targetWeight": 55, "reason": "lower beta"}],
		"diversityScore": {"score": 64}
	}`}
	svc := newTestService(client)
	holdings := []domain.Holding{
		domain.NewHolding("aapl", 10, 150, 170),
		domain.NewHolding("msft", 5, 300, 320),
	}

	res, err := svc.OptimizePortfolio(context.Background(), domain.AnalysisRequest{
		Params: domain.AnalysisParams{Holdings: holdings},
	})
	if err != nil {
		t.Fatalf("OptimizePortfolio returned error: %v", err)
	}
	if res.Ticker != "PORTFOLIO" {
		t.Fatalf("expected default ticker, got %q", res.Ticker)
	}
	if res.Portfolio == nil || res.Portfolio.DiversityScore != 64 {
		t.Fatalf("unexpected portfolio block %+v", res.Portfolio)
	}
	if got := res.Portfolio.Suggestions[0].Action; got != domain.ActionBuy {
		t.Fatalf("expected enum to be canonicalised, got %q", got)
	}
	if holdings[0].Ticker != "AAPL" {
		t.Fatalf("caller holdings should be untouched")
	}
}

func TestCommunityInsightCoercesScalarGauges(t *testing.T) {
	client := &stubModelClient{text: `{
		"summary": "Retail is excited.",
		"retailSentiment": {"overall": 72},
		"institutionalSentiment": {},
		"overallSentiment": "bullish",
		"trendingTopics": [{"topic": "AI capex", "mentions": "1,204", "sentiment": "Bullish", "source": "Reddit"}],
		"institutionalActivity": []
	}`}
	svc := newTestService(client)

	res, err := svc.CommunityInsight(context.Background(), domain.AnalysisRequest{Ticker: "NVDA"})
	if err != nil {
		t.Fatalf("CommunityInsight returned error: %v", err)
	}
	ci := res.Community
	if ci.RetailSentiment != 72 || ci.InstitutionalSentiment != 50 {
		t.Fatalf("unexpected gauges retail=%v institutional=%v", ci.RetailSentiment, ci.InstitutionalSentiment)
	}
	if ci.TrendingTopics[0].Mentions != 1204 {
		t.Fatalf("expected mentions 1204, got %d", ci.TrendingTopics[0].Mentions)
	}
	if res.Sentiment != domain.SentimentBullish {
		t.Fatalf("expected explicit sentiment, got %s", res.Sentiment)
	}
	if !client.opts[0].EnableRetrieval || client.opts[0].Schema != nil {
		t.Fatalf("community must use retrieval without an enforced schema")
	}
	if !strings.Contains(client.prompts[0], `"retailSentiment"`) {
		t.Fatalf("expected layout embedded in prompt")
	}
}

func TestTrainAndPredictInjectsArchitecture(t *testing.T) {
	client := &stubModelClient{text: `{"modelArchitecture":"Transformer","accuracy":71,"trend":"Bearish","confidence":"64%","predictions":[]}`}
	svc := newTestService(client)

	res, err := svc.TrainAndPredict(context.Background(), domain.AnalysisRequest{
		Ticker: "TSLA",
		Params: domain.AnalysisParams{ModelArchitecture: "GRU", Features: []string{"Volume"}},
	})
	if err != nil {
		t.Fatalf("TrainAndPredict returned error: %v", err)
	}
	if res.ML.ModelArchitecture != "GRU" {
		t.Fatalf("expected caller architecture, got %q", res.ML.ModelArchitecture)
	}
	if res.Sentiment != domain.SentimentBearish || *res.Score != 64 {
		t.Fatalf("unexpected sentiment/score %s %v", res.Sentiment, *res.Score)
	}
	if !strings.Contains(client.prompts[0], "GRU") || !strings.Contains(client.prompts[0], "7 days") {
		t.Fatalf("prompt missing architecture or default horizon:\n%s", client.prompts[0])
	}
}

func TestInstitutionalDeepDiveRequiresInstitution(t *testing.T) {
	client := &stubModelClient{text: `{}`}
	svc := newTestService(client)

	if _, err := svc.InstitutionalDeepDive(context.Background(), domain.AnalysisRequest{}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}

	res, err := svc.InstitutionalDeepDive(context.Background(), domain.AnalysisRequest{
		Params: domain.AnalysisParams{Institution: "Bridgewater"},
	})
	if err != nil {
		t.Fatalf("InstitutionalDeepDive returned error: %v", err)
	}
	if res.Institutional.Institution != "Bridgewater" || res.Sentiment != domain.SentimentNeutral {
		t.Fatalf("unexpected report %+v", res.Institutional)
	}
}

func TestFuzzyAnalysisKeepsRequestedPeers(t *testing.T) {
	client := &stubModelClient{text: `{"overallScore":"81","memberships":[{"label":"Buy","degree":0.7}],"metrics":[]}`}
	svc := newTestService(client)

	res, err := svc.FuzzyAnalysis(context.Background(), domain.AnalysisRequest{
		Ticker: "amd",
		Params: domain.AnalysisParams{Peers: []string{"nvda", "AMD", " intc "}},
	})
	if err != nil {
		t.Fatalf("FuzzyAnalysis returned error: %v", err)
	}
	if got := strings.Join(res.Fuzzy.Peers, ","); got != "NVDA,INTC" {
		t.Fatalf("unexpected peers %s", got)
	}
	if *res.Score != 81 {
		t.Fatalf("unexpected score %v", *res.Score)
	}
}

func TestAnalyzeProseCapability(t *testing.T) {
	client := &stubModelClient{
		text: "## Headlines\nAnalysts turned bearish after earnings, though some remain positive.",
		sources: []domain.SourceCitation{
			{Title: "X", URL: "#"},
			{Title: "Y", URL: "https://y.com"},
		},
	}
	svc := newTestService(client)

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: " aapl ", Capability: domain.CapabilityNews})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if res.Sentiment != domain.SentimentBearish {
		t.Fatalf("first keyword should win, got %s", res.Sentiment)
	}
	if len(res.Sources) != 1 || res.Sources[0].URL != "https://y.com" {
		t.Fatalf("expected placeholder citation dropped, got %+v", res.Sources)
	}
	if res.RequestID == "" || res.Ticker != "AAPL" {
		t.Fatalf("unexpected identity %+v", res)
	}
	if !client.opts[0].EnableRetrieval || client.opts[0].Schema != nil {
		t.Fatalf("news must use retrieval without schema")
	}
}

func TestAnalyzeTechnical(t *testing.T) {
	client := &stubModelClient{text: "```json\n" + `{
		"summary": "Uptrend intact.",
		"sentiment": "Bullish",
		"score": 68,
		"indicators": {"trend": "Bullish", "rsi": {"value": 61}, "macd": "positive crossover", "movingAverages": "above 50/200", "support": 180, "resistance": "$195"},
		"tradeSetup": {"entry": "185", "stopLoss": "178", "target": "200"},
		"chartData": [{"label": "Mon", "value": 184.2}]
	}` + "\n```"}
	svc := newTestService(client)

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "AAPL", Capability: domain.CapabilityTechnical})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if res.Technical.RSI != 61 || res.Technical.Resistance != 195 {
		t.Fatalf("unexpected indicators %+v", res.Technical)
	}
	if res.TradeSetup.Target != "200" || len(res.ChartData) != 1 {
		t.Fatalf("unexpected setup/chart %+v %+v", res.TradeSetup, res.ChartData)
	}
}

func TestAnalyzeFundamentalMetrics(t *testing.T) {
	client := &stubModelClient{text: `{"summary":"Solid.","sentiment":"neutral","score":55,"metrics":[{"name":"P/E","value":"28.1"},{"name":"","value":"x"}]}`}
	svc := newTestService(client)

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "MSFT", Capability: domain.CapabilityFundamental})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if len(res.Metrics) != 1 || res.Metrics["P/E"] != "28.1" {
		t.Fatalf("unexpected metrics %+v", res.Metrics)
	}
}

func TestAnalyzeChartMakesNoCall(t *testing.T) {
	client := &stubModelClient{}
	svc := newTestService(client)

	res, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "aapl", Capability: domain.CapabilityChart})
	if err != nil {
		t.Fatalf("Analyze returned error: %v", err)
	}
	if client.calls != 0 {
		t.Fatalf("chart must not call the model")
	}
	if !strings.Contains(res.Content, "AAPL") {
		t.Fatalf("unexpected placeholder %q", res.Content)
	}
}

func TestAnalyzeUnsupportedCapability(t *testing.T) {
	svc := newTestService(&stubModelClient{})
	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "AAPL", Capability: "astrology"})
	if !errors.Is(err, ErrUnsupportedCapability) {
		t.Fatalf("expected unsupported capability, got %v", err)
	}
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	svc := newTestService(&stubModelClient{text: "I cannot help with that."})
	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "AAPL", Capability: domain.CapabilityClustering})
	var malformed *normalize.MalformedResponseError
	if !errors.As(err, &malformed) {
		t.Fatalf("expected malformed response, got %v", err)
	}
}

func TestAnalyzeRequestFailedPropagates(t *testing.T) {
	upstream := &llm.RequestFailedError{Provider: "gemini", Status: 429, Detail: "quota"}
	svc := newTestService(&stubModelClient{err: upstream})

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "AAPL", Capability: domain.CapabilityNews})
	var failed *llm.RequestFailedError
	if !errors.As(err, &failed) || failed.Detail != "quota" {
		t.Fatalf("expected request failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "news failed") {
		t.Fatalf("error should name the capability: %v", err)
	}
}

func TestAnalyzeSupersededResponseIsDiscarded(t *testing.T) {
	gens := cache.NewMemoryGenerations()
	client := &stubModelClient{text: "bullish"}
	client.onCall = func(ctx context.Context) error {
		// A newer request for the same view arrives while this one is in flight.
		_, err := gens.Next(ctx, "dashboard")
		return err
	}
	svc := NewAnalysisService(trace.NewNoopTracerProvider().Tracer("test"), client, nil, gens, time.Second, zerolog.Nop())

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "AAPL", Capability: domain.CapabilityNews, View: "dashboard"})
	if !errors.Is(err, ErrSuperseded) {
		t.Fatalf("expected ErrSuperseded, got %v", err)
	}

	client.onCall = nil
	if _, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "AAPL", Capability: domain.CapabilityNews, View: "dashboard"}); err != nil {
		t.Fatalf("latest request should succeed, got %v", err)
	}
}

func TestAnalyzeTimesOut(t *testing.T) {
	client := &stubModelClient{text: "late"}
	client.onCall = func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}
	svc := NewAnalysisService(trace.NewNoopTracerProvider().Tracer("test"), client, nil, nil, 20*time.Millisecond, zerolog.Nop())

	_, err := svc.Analyze(context.Background(), domain.AnalysisRequest{Ticker: "AAPL", Capability: domain.CapabilityQuantum})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestCapabilitiesListsModes(t *testing.T) {
	svc := newTestService(&stubModelClient{})
	infos := svc.Capabilities()
	if len(infos) != len(domain.Capabilities) {
		t.Fatalf("expected %d capabilities, got %d", len(domain.Capabilities), len(infos))
	}
	for _, info := range infos {
		if info.Capability == domain.CapabilityChart && info.Mode != "placeholder" {
			t.Fatalf("chart should be a placeholder, got %s", info.Mode)
		}
	}
}

func TestDetectSentiment(t *testing.T) {
	tests := []struct {
		text string
		want domain.Sentiment
	}{
		{"Outlook is Bullish.", domain.SentimentBullish},
		{"negative momentum but bullish longer term", domain.SentimentBearish},
		{"positive earnings; bearish chart", domain.SentimentBullish},
		{"sideways chop", domain.SentimentNeutral},
		{"", domain.SentimentNeutral},
	}
	for _, tt := range tests {
		if got := DetectSentiment(tt.text); got != tt.want {
			t.Fatalf("DetectSentiment(%q) = %s, want %s", tt.text, got, tt.want)
		}
	}
}
