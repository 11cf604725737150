package job

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

type stubScorer struct {
	mu     sync.Mutex
	rounds [][]domain.AnomalyScore
	err    error
	calls  int
}

func (s *stubScorer) Anomalies() ([]domain.AnomalyScore, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	if len(s.rounds) == 0 {
		return nil, nil
	}
	out := s.rounds[0]
	if len(s.rounds) > 1 {
		s.rounds = s.rounds[1:]
	}
	return out, nil
}

type stubNotifier struct {
	mu   sync.Mutex
	sent [][]domain.AnomalyScore
	err  error
}

func (n *stubNotifier) NotifyAnomalies(_ context.Context, flagged []domain.AnomalyScore) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, flagged)
	return n.err
}

func (n *stubNotifier) batches() [][]domain.AnomalyScore {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([][]domain.AnomalyScore(nil), n.sent...)
}

func TestAnomalyWatcherReportsOnlyNewlyFlagged(t *testing.T) {
	scorer := &stubScorer{rounds: [][]domain.AnomalyScore{
		{{Symbol: "TSLA", Score: 0.8, Flag: true}, {Symbol: "AAPL", Score: 0.3}},
		{{Symbol: "TSLA", Score: 0.82, Flag: true}, {Symbol: "NVDA", Score: 0.7, Flag: true}},
		{{Symbol: "NVDA", Score: 0.4}},
		{{Symbol: "NVDA", Score: 0.9, Flag: true}},
	}}
	notifier := &stubNotifier{}
	w := NewAnomalyWatcher(trace.NewNoopTracerProvider().Tracer("test"), scorer, notifier, nil, 1, zerolog.Nop())

	for i := 0; i < 4; i++ {
		w.evaluate(context.Background())
	}

	got := notifier.batches()
	if len(got) != 3 {
		t.Fatalf("expected 3 notifications, got %d: %+v", len(got), got)
	}
	if got[0][0].Symbol != "TSLA" || got[1][0].Symbol != "NVDA" || got[2][0].Symbol != "NVDA" {
		t.Fatalf("unexpected notifications %+v", got)
	}
	if len(got[1]) != 1 {
		t.Fatalf("TSLA must not be re-reported, got %+v", got[1])
	}
}

func TestAnomalyWatcherSkipsWhenWarmingUp(t *testing.T) {
	scorer := &stubScorer{err: market.ErrNotEnoughSamples}
	notifier := &stubNotifier{}
	w := NewAnomalyWatcher(trace.NewNoopTracerProvider().Tracer("test"), scorer, notifier, nil, 1, zerolog.Nop())

	w.evaluate(context.Background())
	scorer.err = errors.New("fit failed")
	w.evaluate(context.Background())

	if len(notifier.batches()) != 0 {
		t.Fatal("expected no notifications")
	}
}

func TestAnomalyWatcherEvaluatesEveryNthTick(t *testing.T) {
	sched := NewTickScheduler(time.Hour, zerolog.Nop())
	scorer := &stubScorer{rounds: [][]domain.AnomalyScore{{{Symbol: "AMD", Score: 0.9, Flag: true}}}}
	notifier := &stubNotifier{}
	w := NewAnomalyWatcher(trace.NewNoopTracerProvider().Tracer("test"), scorer, notifier, sched, 3, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	eventually(t, func() bool {
		sched.Fire()
		return len(notifier.batches()) > 0
	})

	scorer.mu.Lock()
	calls := scorer.calls
	scorer.mu.Unlock()
	if calls < 1 {
		t.Fatalf("expected scorer to be called, got %d", calls)
	}
}
