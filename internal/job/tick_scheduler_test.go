package job

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestBroadcasterDropsForSlowSubscribers(t *testing.T) {
	b := NewBroadcaster[int]()
	fast, unsubFast := b.Subscribe(4)
	_, unsubSlow := b.Subscribe(1)
	defer unsubFast()

	if dropped := b.Publish(1); dropped != 0 {
		t.Fatalf("expected no drops, got %d", dropped)
	}
	if dropped := b.Publish(2); dropped != 1 {
		t.Fatalf("expected slow subscriber to drop, got %d", dropped)
	}
	if got := <-fast; got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}

	unsubSlow()
	unsubSlow()
	if b.Subscribers() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", b.Subscribers())
	}

	b.Close()
	if _, ok := <-fast; !ok {
		t.Fatal("buffered value should survive close")
	}
	if _, ok := <-fast; ok {
		t.Fatal("expected channel closed")
	}
	unsubFast()
}

func TestTickSchedulerFire(t *testing.T) {
	s := NewTickScheduler(time.Second, zerolog.Nop())
	ch, unsub := s.Subscribe(2)
	defer unsub()

	first := s.Fire()
	second := s.Fire()
	if first.Seq != 1 || second.Seq != 2 {
		t.Fatalf("unexpected sequence %d %d", first.Seq, second.Seq)
	}
	if got := <-ch; got.Seq != 1 {
		t.Fatalf("expected first tick, got %d", got.Seq)
	}
}

func TestTickSchedulerStart(t *testing.T) {
	s := NewTickScheduler(time.Second, zerolog.Nop())
	ch, unsub := s.Subscribe(1)
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Start(ctx)
		close(done)
	}()

	select {
	case tick := <-ch:
		if tick.Seq < 1 {
			t.Fatalf("unexpected tick %+v", tick)
		}
	case <-time.After(3 * time.Second):
		t.Fatal("no tick received")
	}
	cancel()
	<-done
}

type stubAdvancer struct {
	mu    sync.Mutex
	calls int
}

func (s *stubAdvancer) Advance(at time.Time) market.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return market.Snapshot{Seq: int64(s.calls), At: at}
}

func (s *stubAdvancer) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestMarketDriverAdvancesOnTicks(t *testing.T) {
	sched := NewTickScheduler(time.Hour, zerolog.Nop())
	desk := &stubAdvancer{}
	driver := NewMarketDriver(trace.NewNoopTracerProvider().Tracer("test"), desk, sched, zerolog.Nop())
	snaps, unsub := driver.Subscribe()
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go driver.Start(ctx)

	eventually(t, func() bool {
		sched.Fire()
		return desk.count() > 0
	})

	select {
	case snap := <-snaps:
		if snap.Seq < 1 {
			t.Fatalf("unexpected snapshot %+v", snap)
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot published")
	}
}

func TestMarketDriverWithRealDesk(t *testing.T) {
	desk := market.NewDesk(market.NewGenerator(1, nil), nil)
	sched := NewTickScheduler(time.Hour, zerolog.Nop())
	driver := NewMarketDriver(trace.NewNoopTracerProvider().Tracer("test"), desk, sched, zerolog.Nop())
	snaps, unsub := driver.Subscribe()
	defer unsub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go driver.Start(ctx)

	var snap market.Snapshot
	eventually(t, func() bool {
		sched.Fire()
		select {
		case snap = <-snaps:
			return true
		default:
			return false
		}
	})
	if len(snap.Surfaces[market.SurfaceMarket]) == 0 {
		t.Fatal("expected market surface in snapshot")
	}
}

func TestMarketDriverDisabled(t *testing.T) {
	driver := NewMarketDriver(trace.NewNoopTracerProvider().Tracer("test"), nil, nil, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		driver.Start(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("driver did not stop")
	}
}
