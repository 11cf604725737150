package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/llm"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/normalize"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/prompt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultAnalysisTimeout = 60 * time.Second

	chartPlaceholder = "Interactive chart for %s is rendered by the embedded charting widget."
)

type ModelClient interface {
	Generate(ctx context.Context, prompt string, opts llm.Options) (*llm.Response, error)
}

// GenerationTracker numbers requests per view so late responses can be
// recognised as stale.
type GenerationTracker interface {
	Next(ctx context.Context, view string) (int64, error)
	Current(ctx context.Context, view string) (int64, error)
}

type AnalysisService struct {
	tracer      trace.Tracer
	client      ModelClient
	registry    *prompt.Registry
	generations GenerationTracker
	timeout     time.Duration
	log         zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewAnalysisService(
	tracer trace.Tracer,
	client ModelClient,
	registry *prompt.Registry,
	generations GenerationTracker,
	timeout time.Duration,
	log zerolog.Logger,
) *AnalysisService {
	if registry == nil {
		registry = prompt.NewRegistry()
	}
	if timeout <= 0 {
		timeout = DefaultAnalysisTimeout
	}
	return &AnalysisService{
		tracer:      tracer,
		client:      client,
		registry:    registry,
		generations: generations,
		timeout:     timeout,
		log:         log.With().Str("component", "analysis-service").Logger(),
		now:         func() time.Time { return time.Now().UTC() },
		newID:       uuid.NewString,
	}
}

// Analyze runs req through the orchestrator of its capability.
func (s *AnalysisService) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.analyze")
	defer span.End()
	span.SetAttributes(attribute.String("capability", string(req.Capability)))

	switch req.Capability {
	case domain.CapabilityChart:
		return s.chart(req)
	case domain.CapabilityBacktest:
		return s.RunBacktest(ctx, req)
	case domain.CapabilityMLPrediction:
		return s.TrainAndPredict(ctx, req)
	case domain.CapabilityCommunityInsight:
		return s.CommunityInsight(ctx, req)
	case domain.CapabilityInstitutionalDeepDive:
		return s.InstitutionalDeepDive(ctx, req)
	case domain.CapabilityPortfolioOptimization:
		return s.OptimizePortfolio(ctx, req)
	case domain.CapabilityFuzzyCorrelation:
		return s.FuzzyAnalysis(ctx, req)
	case domain.CapabilityFundamental:
		return s.execute(ctx, req, requireTicker, decodeFundamental)
	case domain.CapabilityTechnical:
		return s.execute(ctx, req, requireTicker, decodeTechnical)
	case domain.CapabilityClustering:
		return s.execute(ctx, req, requireTicker, decodeClustering)
	case domain.CapabilityNews, domain.CapabilityYahooFinance, domain.CapabilityIdeas, domain.CapabilityQuantum:
		return s.execute(ctx, req, requireTicker, decodeProse)
	default:
		return nil, capabilityErr(req.Capability, fmt.Errorf("%w: %q", ErrUnsupportedCapability, req.Capability))
	}
}

func (s *AnalysisService) chart(req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	req.Ticker = domain.NormalizeSymbol(req.Ticker)
	if err := requireTicker(&req); err != nil {
		return nil, capabilityErr(req.Capability, err)
	}
	return &domain.AnalysisResult{
		RequestID:   s.newID(),
		Ticker:      req.Ticker,
		Capability:  domain.CapabilityChart,
		Content:     fmt.Sprintf(chartPlaceholder, req.Ticker),
		GeneratedAt: s.now(),
		Sentiment:   domain.SentimentNeutral,
	}, nil
}

type validateFunc func(req *domain.AnalysisRequest) error

// decodeFunc turns raw model text into the capability-specific fields of
// result. schema is nil for prose capabilities.
type decodeFunc func(raw string, spec prompt.Spec, req domain.AnalysisRequest, result *domain.AnalysisResult) error

func requireTicker(req *domain.AnalysisRequest) error {
	if req.Ticker == "" {
		return invalid("ticker is required")
	}
	return nil
}

// execute is the shared pipeline: validate, build, send, normalize,
// post-process and check the result is still wanted.
func (s *AnalysisService) execute(
	ctx context.Context,
	req domain.AnalysisRequest,
	validate validateFunc,
	decode decodeFunc,
) (*domain.AnalysisResult, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.execute")
	defer span.End()

	req.Ticker = domain.NormalizeSymbol(req.Ticker)
	span.SetAttributes(
		attribute.String("capability", string(req.Capability)),
		attribute.String("ticker", req.Ticker),
	)
	logger := s.log.With().Str("capability", string(req.Capability)).Str("ticker", req.Ticker).Logger()

	spec, ok := s.registry.Spec(req.Capability)
	if !ok {
		return nil, capabilityErr(req.Capability, fmt.Errorf("%w: %q", ErrUnsupportedCapability, req.Capability))
	}
	if err := validate(&req); err != nil {
		return nil, capabilityErr(req.Capability, err)
	}
	if s.client == nil {
		return nil, capabilityErr(req.Capability, fmt.Errorf("analysis service is not fully initialized"))
	}

	generation, err := s.claimGeneration(ctx, req.View)
	if err != nil {
		return nil, capabilityErr(req.Capability, err)
	}

	text, err := s.registry.Build(req)
	if err != nil {
		return nil, capabilityErr(req.Capability, err)
	}

	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	started := time.Now()
	resp, err := s.client.Generate(callCtx, text, llm.Options{
		Schema:          spec.RequestSchema(),
		EnableRetrieval: spec.Retrieval,
	})
	if err != nil {
		span.RecordError(err)
		logger.Warn().Err(err).Dur("elapsed", time.Since(started)).Msg("model request failed")
		return nil, capabilityErr(req.Capability, err)
	}

	result := &domain.AnalysisResult{
		RequestID:   s.newID(),
		Ticker:      req.Ticker,
		Capability:  req.Capability,
		GeneratedAt: s.now(),
	}
	if err := decode(resp.Text, spec, req, result); err != nil {
		span.RecordError(err)
		var malformed *normalize.MalformedResponseError
		if errors.As(err, &malformed) {
			logger.Warn().Err(err).Str("raw", malformed.Snippet()).Msg("model response could not be normalized")
		}
		return nil, capabilityErr(req.Capability, err)
	}
	if sources := normalize.FilterCitations(resp.Sources); len(sources) > 0 {
		result.Sources = sources
	}

	if err := s.checkCurrent(ctx, req.View, generation); err != nil {
		logger.Info().Int64("generation", generation).Msg("discarding superseded analysis")
		return nil, capabilityErr(req.Capability, err)
	}

	logger.Debug().Dur("elapsed", time.Since(started)).Msg("analysis complete")
	return result, nil
}

func (s *AnalysisService) claimGeneration(ctx context.Context, view string) (int64, error) {
	if view == "" || s.generations == nil {
		return 0, nil
	}
	gen, err := s.generations.Next(ctx, view)
	if err != nil {
		return 0, fmt.Errorf("claim request generation: %w", err)
	}
	return gen, nil
}

func (s *AnalysisService) checkCurrent(ctx context.Context, view string, generation int64) error {
	if view == "" || s.generations == nil {
		return nil
	}
	current, err := s.generations.Current(ctx, view)
	if err != nil {
		return fmt.Errorf("read request generation: %w", err)
	}
	if current > generation {
		return ErrSuperseded
	}
	return nil
}

// Capabilities lists every capability with its request mode.
func (s *AnalysisService) Capabilities() []CapabilityInfo {
	out := make([]CapabilityInfo, 0, len(domain.Capabilities))
	for _, c := range domain.Capabilities {
		spec, _ := s.registry.Spec(c)
		out = append(out, CapabilityInfo{
			Capability: c,
			Label:      c.Label(),
			Mode:       spec.Mode.String(),
			Retrieval:  spec.Retrieval,
		})
	}
	return out
}

type CapabilityInfo struct {
	Capability domain.Capability `json:"capability"`
	Label      string            `json:"label"`
	Mode       string            `json:"mode"`
	Retrieval  bool              `json:"retrieval"`
}

func decodeProse(raw string, _ prompt.Spec, _ domain.AnalysisRequest, result *domain.AnalysisResult) error {
	content := strings.TrimSpace(raw)
	if content == "" {
		return &normalize.MalformedResponseError{Raw: raw, Err: errors.New("empty response")}
	}
	result.Content = content
	result.Sentiment = DetectSentiment(content)
	return nil
}

func summaryOr(summary, fallback string) string {
	if s := strings.TrimSpace(summary); s != "" {
		return s
	}
	return fallback
}

func scorePtr(v float64) *float64 { return &v }
