package market

import (
	"errors"
	"math"
	"sort"
	"sync"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"

	goiforest "github.com/narumiruna/go-iforest/pkg/iforest"
	"gonum.org/v1/gonum/stat"
)

var ScreenerFeatureNames = []string{"return_pct", "spread_pct", "volume_delta"}

var ErrNotEnoughSamples = errors.New("not enough tick samples to score anomalies")

type ScreenerOptions struct {
	NumTrees   int
	SampleSize int
	Window     int
	MinSamples int
	Threshold  float64
}

func DefaultScreenerOptions() ScreenerOptions {
	return ScreenerOptions{
		NumTrees:   100,
		SampleSize: 128,
		Window:     60,
		MinSamples: 32,
		Threshold:  0.6,
	}
}

// Override replaces the forest size, sample size and threshold with the given
// values when they are in range.
func (o ScreenerOptions) Override(trees, sampleSize int, threshold float64) ScreenerOptions {
	if trees > 0 {
		o.NumTrees = trees
	}
	if sampleSize > 0 {
		o.SampleSize = sampleSize
	}
	if threshold > 0 && threshold < 1 {
		o.Threshold = threshold
	}
	return o
}

// Screener flags quotes whose latest move is unusual relative to the rolling
// window of recent ticks, using an isolation forest.
type Screener struct {
	opts ScreenerOptions

	mu      sync.Mutex
	last    map[string]domain.MarketTicker
	window  map[string][][]float64
	latest  map[string][]float64
	samples int
}

func NewScreener(opts ScreenerOptions) *Screener {
	def := DefaultScreenerOptions()
	if opts.NumTrees <= 0 {
		opts.NumTrees = def.NumTrees
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = def.SampleSize
	}
	if opts.Window <= 0 {
		opts.Window = def.Window
	}
	if opts.MinSamples <= 0 {
		opts.MinSamples = def.MinSamples
	}
	if opts.Threshold <= 0 || opts.Threshold >= 1 {
		opts.Threshold = def.Threshold
	}
	return &Screener{
		opts:   opts,
		last:   make(map[string]domain.MarketTicker),
		window: make(map[string][][]float64),
		latest: make(map[string][]float64),
	}
}

// Observe records the feature vector of each quote against its previous
// observation.
func (s *Screener) Observe(quotes []domain.MarketTicker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]struct{}, len(quotes))
	for _, q := range quotes {
		seen[q.Symbol] = struct{}{}
		prev, ok := s.last[q.Symbol]
		s.last[q.Symbol] = q
		if !ok || prev.Price <= 0 || q.Price <= 0 {
			continue
		}
		features := []float64{
			(q.Price - prev.Price) / prev.Price * 100,
			(q.Ask - q.Bid) / q.Price * 100,
			float64(q.Volume - prev.Volume),
		}
		w := append(s.window[q.Symbol], features)
		if len(w) > s.opts.Window {
			s.samples -= len(w) - s.opts.Window
			w = w[len(w)-s.opts.Window:]
		}
		s.window[q.Symbol] = w
		s.latest[q.Symbol] = features
		s.samples++
	}
	// Removed symbols stop contributing.
	for sym, w := range s.window {
		if _, ok := seen[sym]; !ok {
			s.samples -= len(w)
			delete(s.window, sym)
			delete(s.latest, sym)
			delete(s.last, sym)
		}
	}
}

// Scores fits a forest on the pooled window and scores every symbol's latest
// move, highest first.
func (s *Screener) Scores() ([]domain.AnomalyScore, error) {
	s.mu.Lock()
	pooled := make([][]float64, 0, s.samples)
	for _, w := range s.window {
		pooled = append(pooled, w...)
	}
	symbols := make([]string, 0, len(s.latest))
	latest := make([][]float64, 0, len(s.latest))
	for sym, f := range s.latest {
		symbols = append(symbols, sym)
		latest = append(latest, f)
	}
	s.mu.Unlock()

	if len(pooled) < s.opts.MinSamples || len(latest) == 0 {
		return nil, ErrNotEnoughSamples
	}

	means, stds := fitNormalizer(pooled)
	sampleSize := s.opts.SampleSize
	if sampleSize > len(pooled) {
		sampleSize = len(pooled)
	}
	forest := goiforest.NewWithOptions(goiforest.Options{
		DetectionType: goiforest.DetectionTypeThreshold,
		Threshold:     s.opts.Threshold,
		NumTrees:      s.opts.NumTrees,
		SampleSize:    sampleSize,
	})
	forest.Fit(normalizeBatch(pooled, means, stds))

	raw := forest.Score(normalizeBatch(latest, means, stds))
	out := make([]domain.AnomalyScore, len(symbols))
	for i, sym := range symbols {
		score := 0.0
		if i < len(raw) {
			score = clampScore(raw[i])
		}
		out[i] = domain.AnomalyScore{Symbol: sym, Score: score, Flag: score >= s.opts.Threshold}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].Symbol < out[j].Symbol
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func clampScore(score float64) float64 {
	if math.IsNaN(score) || math.IsInf(score, 0) || score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func fitNormalizer(samples [][]float64) ([]float64, []float64) {
	featureCount := len(samples[0])
	means := make([]float64, featureCount)
	stds := make([]float64, featureCount)
	col := make([]float64, len(samples))
	for j := 0; j < featureCount; j++ {
		for i := range samples {
			col[i] = samples[i][j]
		}
		means[j], stds[j] = stat.PopMeanStdDev(col, nil)
		if stds[j] == 0 || math.IsNaN(stds[j]) {
			stds[j] = 1
		}
	}
	return means, stds
}

func normalizeBatch(samples [][]float64, means, stds []float64) [][]float64 {
	out := make([][]float64, len(samples))
	for i := range samples {
		row := make([]float64, len(samples[i]))
		for j := range samples[i] {
			row[j] = (samples[i][j] - means[j]) / stds[j]
		}
		out[i] = row
	}
	return out
}
