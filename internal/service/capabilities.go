package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/normalize"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/prompt"
)

const (
	dateLayout = "2006-01-02"

	defaultInitialCapital    = 10000
	defaultModelArchitecture = "LSTM"
	defaultPredictionDays    = 7
	portfolioTicker          = "PORTFOLIO"
	minOptimizeHoldings      = 2
)

var defaultFeatures = []string{"Close Price", "Volume", "RSI", "MACD"}

func (s *AnalysisService) RunBacktest(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.run-backtest")
	defer span.End()
	req.Capability = domain.CapabilityBacktest
	return s.execute(ctx, req, validateBacktest, decodeBacktest)
}

func (s *AnalysisService) TrainAndPredict(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.train-and-predict")
	defer span.End()
	req.Capability = domain.CapabilityMLPrediction
	return s.execute(ctx, req, validateML, decodeML)
}

func (s *AnalysisService) CommunityInsight(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.community-insight")
	defer span.End()
	req.Capability = domain.CapabilityCommunityInsight
	return s.execute(ctx, req, requireTicker, decodeCommunity)
}

func (s *AnalysisService) InstitutionalDeepDive(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.institutional-deep-dive")
	defer span.End()
	req.Capability = domain.CapabilityInstitutionalDeepDive
	return s.execute(ctx, req, validateInstitution, decodeInstitutional)
}

// OptimizePortfolio refuses to contact the model with fewer than two holdings,
// since a correlation-based optimization is ill-posed for a single asset.
func (s *AnalysisService) OptimizePortfolio(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.optimize-portfolio")
	defer span.End()
	req.Capability = domain.CapabilityPortfolioOptimization
	return s.execute(ctx, req, validatePortfolio, decodePortfolio)
}

func (s *AnalysisService) FuzzyAnalysis(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.fuzzy-analysis")
	defer span.End()
	req.Capability = domain.CapabilityFuzzyCorrelation
	return s.execute(ctx, req, validateFuzzy, decodeFuzzy)
}

func validateBacktest(req *domain.AnalysisRequest) error {
	if err := requireTicker(req); err != nil {
		return err
	}
	p := &req.Params
	p.Strategy = strings.TrimSpace(p.Strategy)
	if p.Strategy == "" {
		return invalid("strategy is required")
	}
	start, err := time.Parse(dateLayout, p.StartDate)
	if err != nil {
		return invalid("startDate must be YYYY-MM-DD")
	}
	end, err := time.Parse(dateLayout, p.EndDate)
	if err != nil {
		return invalid("endDate must be YYYY-MM-DD")
	}
	if !start.Before(end) {
		return invalid("startDate must be before endDate")
	}
	if p.InitialCapital < 0 {
		return invalid("initialCapital must be positive")
	}
	if p.InitialCapital == 0 {
		p.InitialCapital = defaultInitialCapital
	}
	return nil
}

func validateML(req *domain.AnalysisRequest) error {
	if err := requireTicker(req); err != nil {
		return err
	}
	p := &req.Params
	p.ModelArchitecture = strings.TrimSpace(p.ModelArchitecture)
	if p.ModelArchitecture == "" {
		p.ModelArchitecture = defaultModelArchitecture
	}
	if len(p.Features) == 0 {
		p.Features = append([]string(nil), defaultFeatures...)
	}
	if p.PredictionDays < 0 {
		return invalid("predictionDays must be positive")
	}
	if p.PredictionDays == 0 {
		p.PredictionDays = defaultPredictionDays
	}
	return nil
}

func validateInstitution(req *domain.AnalysisRequest) error {
	req.Params.Institution = strings.TrimSpace(req.Params.Institution)
	if req.Params.Institution == "" {
		return invalid("institution is required")
	}
	return nil
}

func validatePortfolio(req *domain.AnalysisRequest) error {
	if len(req.Params.Holdings) < minOptimizeHoldings {
		return ErrInsufficientHoldings
	}
	holdings := make([]domain.Holding, 0, len(req.Params.Holdings))
	for i, h := range req.Params.Holdings {
		h.Ticker = domain.NormalizeSymbol(h.Ticker)
		if h.Ticker == "" || h.Quantity <= 0 {
			return invalid("holding %d needs a ticker and a positive quantity", i+1)
		}
		holdings = append(holdings, h.Derive())
	}
	req.Params.Holdings = holdings
	if req.Ticker == "" {
		req.Ticker = portfolioTicker
	}
	return nil
}

func validateFuzzy(req *domain.AnalysisRequest) error {
	if err := requireTicker(req); err != nil {
		return err
	}
	peers := make([]string, 0, len(req.Params.Peers))
	for _, p := range req.Params.Peers {
		if sym := domain.NormalizeSymbol(p); sym != "" && sym != req.Ticker {
			peers = append(peers, sym)
		}
	}
	req.Params.Peers = peers
	return nil
}

type fundamentalPayload struct {
	Summary   string           `json:"summary"`
	Sentiment domain.Sentiment `json:"sentiment"`
	Score     float64          `json:"score"`
	Metrics   []struct {
		Name  string `json:"name"`
		Value string `json:"value"`
	} `json:"metrics"`
}

func decodeFundamental(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p fundamentalPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	result.Content = summaryOr(p.Summary, fmt.Sprintf("Fundamental analysis of %s.", req.Ticker))
	result.Sentiment = parseSentiment(p.Sentiment)
	result.Score = scorePtr(p.Score)
	if len(p.Metrics) > 0 {
		result.Metrics = make(map[string]string, len(p.Metrics))
		for _, m := range p.Metrics {
			if name := strings.TrimSpace(m.Name); name != "" {
				result.Metrics[name] = m.Value
			}
		}
	}
	return nil
}

type technicalPayload struct {
	Summary    string                     `json:"summary"`
	Sentiment  domain.Sentiment           `json:"sentiment"`
	Score      float64                    `json:"score"`
	Indicators domain.TechnicalIndicators `json:"indicators"`
	TradeSetup domain.TradeSetup          `json:"tradeSetup"`
	ChartData  []domain.ChartPoint        `json:"chartData"`
}

func decodeTechnical(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p technicalPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	result.Content = summaryOr(p.Summary, fmt.Sprintf("Technical analysis of %s.", req.Ticker))
	result.Sentiment = parseSentiment(p.Sentiment)
	result.Score = scorePtr(p.Score)
	result.Technical = &p.Indicators
	result.TradeSetup = &p.TradeSetup
	if len(p.ChartData) > 0 {
		result.ChartData = p.ChartData
	}
	return nil
}

type clusteringPayload struct {
	Summary string `json:"summary"`
	domain.ClusteringResult
}

func decodeClustering(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p clusteringPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	result.Content = summaryOr(p.Summary, fmt.Sprintf("Clustering analysis of %s and peers.", req.Ticker))
	result.Sentiment = DetectSentiment(p.Summary)
	result.Clustering = &p.ClusteringResult
	return nil
}

type backtestPayload struct {
	Summary string `json:"summary"`
	domain.BacktestResult
}

func decodeBacktest(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p backtestPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	if len(p.EquityCurve) == 0 {
		return &normalize.MalformedResponseError{Raw: raw, Err: errors.New("backtest has no equity curve")}
	}

	bt := p.BacktestResult
	// The request is authoritative for what was tested.
	bt.Strategy = req.Params.Strategy
	bt.StartDate = req.Params.StartDate
	bt.EndDate = req.Params.EndDate
	// Sides outside Buy/Sell arrive empty from the schema and are dropped.
	trades := bt.Trades[:0]
	for _, tr := range bt.Trades {
		if tr.Type == domain.ActionBuy || tr.Type == domain.ActionSell {
			trades = append(trades, tr)
		}
	}
	bt.Trades = trades
	if bt.Metrics.TradesCount < 0 {
		bt.Metrics.TradesCount = len(bt.Trades)
	}

	result.Content = summaryOr(p.Summary, fmt.Sprintf("Backtest of %q on %s from %s to %s.",
		bt.Strategy, req.Ticker, bt.StartDate, bt.EndDate))
	result.Sentiment = DetectSentiment(p.Summary)
	result.Backtest = &bt
	return nil
}

type mlPayload struct {
	Summary string `json:"summary"`
	domain.MLPredictionResult
}

func decodeML(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p mlPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	ml := p.MLPredictionResult
	// The model does not reliably echo the architecture back.
	ml.ModelArchitecture = req.Params.ModelArchitecture
	ml.Trend = parseSentiment(ml.Trend)

	result.Content = summaryOr(p.Summary, fmt.Sprintf("%s forecast for %s over %d days.",
		ml.ModelArchitecture, req.Ticker, req.Params.PredictionDays))
	result.Sentiment = ml.Trend
	result.Score = scorePtr(ml.Confidence)
	result.ML = &ml
	return nil
}

type communityPayload struct {
	Summary string `json:"summary"`
	domain.CommunityInsight
}

func decodeCommunity(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p communityPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	ci := p.CommunityInsight
	ci.OverallSentiment = parseSentiment(ci.OverallSentiment)

	result.Content = summaryOr(p.Summary, fmt.Sprintf("Community sentiment for %s.", req.Ticker))
	result.Sentiment = ci.OverallSentiment
	result.Score = scorePtr((ci.RetailSentiment + ci.InstitutionalSentiment) / 2)
	result.Community = &ci
	return nil
}

type institutionalPayload struct {
	Summary string `json:"summary"`
	domain.InstitutionalReport
}

func decodeInstitutional(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p institutionalPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	report := p.InstitutionalReport
	if strings.TrimSpace(report.Institution) == "" {
		report.Institution = req.Params.Institution
	}
	report.Outlook = parseSentiment(report.Outlook)

	result.Content = summaryOr(p.Summary, fmt.Sprintf("Institutional deep dive on %s.", report.Institution))
	result.Sentiment = report.Outlook
	result.Institutional = &report
	return nil
}

type portfolioPayload struct {
	Summary string `json:"summary"`
	domain.PortfolioOptimization
}

func decodePortfolio(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p portfolioPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	opt := p.PortfolioOptimization
	result.Content = summaryOr(p.Summary, fmt.Sprintf("Optimization of a %d-holding portfolio.", len(req.Params.Holdings)))
	result.Sentiment = DetectSentiment(p.Summary)
	result.Score = scorePtr(opt.DiversityScore)
	result.Portfolio = &opt
	return nil
}

type fuzzyPayload struct {
	Summary string `json:"summary"`
	domain.FuzzyAnalysis
}

func decodeFuzzy(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error {
	var p fuzzyPayload
	if err := normalize.ParseInto(raw, spec.Schema, &p); err != nil {
		return err
	}
	fz := p.FuzzyAnalysis
	if len(fz.Peers) == 0 && len(req.Params.Peers) > 0 {
		fz.Peers = append([]string(nil), req.Params.Peers...)
	}
	result.Content = summaryOr(p.Summary, fmt.Sprintf("Fuzzy correlation analysis of %s.", req.Ticker))
	result.Sentiment = DetectSentiment(p.Summary)
	result.Score = scorePtr(fz.OverallScore)
	result.Fuzzy = &fz
	return nil
}
