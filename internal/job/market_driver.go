package job

import (
	"context"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const snapshotBuffer = 4

type MarketAdvancer interface {
	Advance(at time.Time) market.Snapshot
}

type TickSource interface {
	Subscribe(buffer int) (<-chan Tick, func())
}

// MarketDriver advances the desk on every scheduler tick and republishes the
// resulting snapshot to stream subscribers.
type MarketDriver struct {
	tracer    trace.Tracer
	desk      MarketAdvancer
	source    TickSource
	snapshots *Broadcaster[market.Snapshot]
	log       zerolog.Logger
}

func NewMarketDriver(tracer trace.Tracer, desk MarketAdvancer, source TickSource, log zerolog.Logger) *MarketDriver {
	return &MarketDriver{
		tracer:    tracer,
		desk:      desk,
		source:    source,
		snapshots: NewBroadcaster[market.Snapshot](),
		log:       log.With().Str("component", "market-driver").Logger(),
	}
}

// Subscribe returns a stream of snapshots. Slow readers miss snapshots
// rather than stall the market.
func (d *MarketDriver) Subscribe() (<-chan market.Snapshot, func()) {
	return d.snapshots.Subscribe(snapshotBuffer)
}

// Start consumes ticks until ctx is cancelled or the source closes.
func (d *MarketDriver) Start(ctx context.Context) {
	if d.desk == nil || d.source == nil {
		d.log.Warn().Msg("market driver disabled: no desk or tick source")
		<-ctx.Done()
		return
	}

	ticks, unsubscribe := d.source.Subscribe(1)
	defer unsubscribe()
	defer d.snapshots.Close()

	d.log.Info().Msg("market driver starting")
	for {
		select {
		case <-ctx.Done():
			d.log.Info().Msg("market driver stopped")
			return
		case t, ok := <-ticks:
			if !ok {
				return
			}
			d.advance(ctx, t)
		}
	}
}

func (d *MarketDriver) advance(ctx context.Context, t Tick) {
	_, span := d.tracer.Start(ctx, "market-driver.advance")
	defer span.End()
	span.SetAttributes(attribute.Int64("tick.seq", t.Seq))

	snap := d.desk.Advance(t.At)
	if dropped := d.snapshots.Publish(snap); dropped > 0 {
		d.log.Debug().Int64("seq", snap.Seq).Int("dropped", dropped).Msg("slow stream subscribers skipped")
	}
}
