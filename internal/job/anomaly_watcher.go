package job

import (
	"context"
	"errors"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const DefaultAnomalyEvery = 15

type AnomalyScorer interface {
	Anomalies() ([]domain.AnomalyScore, error)
}

type AnomalyNotifier interface {
	NotifyAnomalies(ctx context.Context, flagged []domain.AnomalyScore) error
}

// AnomalyWatcher rescores the screener every few ticks and reports symbols
// that have just become anomalous.
type AnomalyWatcher struct {
	tracer   trace.Tracer
	scorer   AnomalyScorer
	notifier AnomalyNotifier
	source   TickSource
	every    int64
	log      zerolog.Logger

	flagged map[string]struct{}
}

func NewAnomalyWatcher(
	tracer trace.Tracer,
	scorer AnomalyScorer,
	notifier AnomalyNotifier,
	source TickSource,
	every int,
	log zerolog.Logger,
) *AnomalyWatcher {
	if every <= 0 {
		every = DefaultAnomalyEvery
	}
	return &AnomalyWatcher{
		tracer:   tracer,
		scorer:   scorer,
		notifier: notifier,
		source:   source,
		every:    int64(every),
		log:      log.With().Str("component", "anomaly-watcher").Logger(),
		flagged:  make(map[string]struct{}),
	}
}

// Start blocks until ctx is cancelled or the tick source closes.
func (w *AnomalyWatcher) Start(ctx context.Context) {
	if w.scorer == nil || w.notifier == nil || w.source == nil {
		w.log.Warn().Msg("anomaly watcher disabled: no scorer, notifier or tick source")
		<-ctx.Done()
		return
	}

	ticks, unsubscribe := w.source.Subscribe(1)
	defer unsubscribe()

	w.log.Info().Int64("every", w.every).Msg("anomaly watcher starting")
	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("anomaly watcher stopped")
			return
		case t, ok := <-ticks:
			if !ok {
				return
			}
			if t.Seq%w.every != 0 {
				continue
			}
			w.evaluate(ctx)
		}
	}
}

func (w *AnomalyWatcher) evaluate(ctx context.Context) {
	ctx, span := w.tracer.Start(ctx, "anomaly-watcher.evaluate")
	defer span.End()

	scores, err := w.scorer.Anomalies()
	if errors.Is(err, market.ErrNotEnoughSamples) {
		return
	}
	if err != nil {
		span.RecordError(err)
		w.log.Warn().Err(err).Msg("anomaly scoring failed")
		return
	}

	fresh := w.newlyFlagged(scores)
	span.SetAttributes(attribute.Int("anomalies.new", len(fresh)))
	if len(fresh) == 0 {
		return
	}

	notifyCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := w.notifier.NotifyAnomalies(notifyCtx, fresh); err != nil {
		span.RecordError(err)
		w.log.Warn().Err(err).Int("count", len(fresh)).Msg("anomaly notification failed")
	}
}

// newlyFlagged returns flagged scores whose symbol was not flagged on the
// previous evaluation, and remembers the current flagged set.
func (w *AnomalyWatcher) newlyFlagged(scores []domain.AnomalyScore) []domain.AnomalyScore {
	current := make(map[string]struct{}, len(scores))
	var fresh []domain.AnomalyScore
	for _, s := range scores {
		if !s.Flag {
			continue
		}
		current[s.Symbol] = struct{}{}
		if _, seen := w.flagged[s.Symbol]; !seen {
			fresh = append(fresh, s)
		}
	}
	w.flagged = current
	return fresh
}
