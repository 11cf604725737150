package job

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

const DefaultTickInterval = 2 * time.Second

type Tick struct {
	Seq int64
	At  time.Time
}

// TickScheduler is the single timer behind every market surface. Consumers
// subscribe instead of owning their own tickers.
type TickScheduler struct {
	cron     *cron.Cron
	interval time.Duration
	ticks    *Broadcaster[Tick]
	seq      atomic.Int64
	now      func() time.Time
	log      zerolog.Logger
}

func NewTickScheduler(interval time.Duration, log zerolog.Logger) *TickScheduler {
	if interval <= 0 {
		interval = DefaultTickInterval
	}
	return &TickScheduler{
		cron:     cron.New(),
		interval: interval,
		ticks:    NewBroadcaster[Tick](),
		now:      func() time.Time { return time.Now().UTC() },
		log:      log.With().Str("component", "tick-scheduler").Logger(),
	}
}

func (s *TickScheduler) Interval() time.Duration { return s.interval }

func (s *TickScheduler) Subscribe(buffer int) (<-chan Tick, func()) {
	return s.ticks.Subscribe(buffer)
}

// Fire emits one tick immediately, outside the schedule.
func (s *TickScheduler) Fire() Tick {
	t := Tick{Seq: s.seq.Add(1), At: s.now()}
	if dropped := s.ticks.Publish(t); dropped > 0 {
		s.log.Debug().Int64("seq", t.Seq).Int("dropped", dropped).Msg("slow tick subscribers skipped")
	}
	return t
}

// Start schedules ticks and blocks until ctx is cancelled.
func (s *TickScheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.interval)
	if _, err := s.cron.AddFunc(spec, func() { s.Fire() }); err != nil {
		return fmt.Errorf("schedule ticks %q: %w", spec, err)
	}

	s.cron.Start()
	s.log.Info().Dur("interval", s.interval).Msg("tick scheduler started")

	<-ctx.Done()
	stopped := s.cron.Stop()
	<-stopped.Done()
	s.ticks.Close()
	s.log.Info().Msg("tick scheduler stopped")
	return nil
}
