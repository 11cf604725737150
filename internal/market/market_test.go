package market

import (
	"errors"
	"testing"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 3, 15, 14, 30, 0, 0, time.UTC)

func newTestGenerator(seed uint64) *Generator {
	return NewGenerator(seed, func() time.Time { return fixedNow })
}

func assertQuoteConsistent(t *testing.T, q domain.MarketTicker) {
	t.Helper()
	require.Less(t, q.Bid, q.Price, "bid < price for %s", q.Symbol)
	require.Less(t, q.Price, q.Ask, "price < ask for %s", q.Symbol)
}

func TestTickKeepsQuotesConsistent(t *testing.T) {
	for seed := uint64(1); seed <= 20; seed++ {
		g := newTestGenerator(seed)
		quotes := g.Seed()
		for _, q := range quotes {
			assertQuoteConsistent(t, q)
		}
		for n := 0; n < 200; n++ {
			next := g.Tick(quotes)
			require.Len(t, next, len(quotes))
			for i := range next {
				assertQuoteConsistent(t, next[i])
				require.GreaterOrEqual(t, next[i].Volume, quotes[i].Volume)
				require.Equal(t, quotes[i].Symbol, next[i].Symbol)
			}
			quotes = next
		}
	}
}

func TestTickStaysWithinVolatilityBand(t *testing.T) {
	g := newTestGenerator(7)
	prev := g.Seed()
	next := g.Tick(prev)
	for i := range next {
		bound := prev[i].Price*DefaultVolatility + 0.01
		assert.InDelta(t, prev[i].Price, next[i].Price, bound, next[i].Symbol)
	}
}

func TestPercentChangeFromCumulativeChange(t *testing.T) {
	g := newTestGenerator(3)
	quotes := g.Seed()
	for n := 0; n < 50; n++ {
		quotes = g.Tick(quotes)
	}
	for _, q := range quotes {
		base := q.Price - q.Change
		require.Greater(t, base, 0.0)
		assert.InDelta(t, q.Change/base*100, q.ChangePercent, 0.006, q.Symbol)
	}
}

func TestTickDoesNotMutateInput(t *testing.T) {
	g := newTestGenerator(1)
	prev := g.Seed()
	before := append([]domain.MarketTicker(nil), prev...)
	_ = g.Tick(prev)
	assert.Equal(t, before, prev)
}

func TestSeedHoldingsAreDerived(t *testing.T) {
	g := newTestGenerator(1)
	for _, h := range g.SeedHoldings() {
		assert.InDelta(t, h.Quantity*h.CurrentPrice, h.MarketValue, 1e-9)
		assert.InDelta(t, h.MarketValue-h.Quantity*h.AvgCost, h.PnL, 1e-9)
	}
}

func TestSeedPortfolioHistory(t *testing.T) {
	g := newTestGenerator(11)
	history := g.SeedPortfolioHistory()
	require.Len(t, history, 30)
	assert.Equal(t, 100000.0, history[0].Value)
	assert.Equal(t, fixedNow.Truncate(24*time.Hour), history[len(history)-1].Date)
	for i := 1; i < len(history); i++ {
		require.True(t, history[i].Date.After(history[i-1].Date), "dates must increase")
		ratio := history[i].Value / history[i-1].Value
		require.InDelta(t, 1.003, ratio, 0.0151)
	}
}

func TestBoardAddIsIdempotent(t *testing.T) {
	b := NewBoard(SurfaceMarket, newTestGenerator(1))
	before := len(b.Snapshot())

	first, added, err := b.Add("zzz")
	require.NoError(t, err)
	require.True(t, added)
	assert.Equal(t, "ZZZ", first.Symbol)
	assertQuoteConsistent(t, first)

	second, added, err := b.Add("ZZZ")
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, first, second)

	count := 0
	for _, q := range b.Snapshot() {
		if q.Symbol == "ZZZ" {
			count++
		}
	}
	assert.Equal(t, 1, count)
	assert.Len(t, b.Snapshot(), before+1)
}

func TestBoardRejectsInvalidSymbol(t *testing.T) {
	b := NewBoard(SurfaceTape, newTestGenerator(1))
	_, _, err := b.Add("not a symbol")
	assert.True(t, errors.Is(err, ErrInvalidSymbol))
}

func TestBoardRemove(t *testing.T) {
	b := NewBoard(SurfaceTape, newTestGenerator(1))
	require.True(t, b.Remove("aapl"))
	_, ok := b.Get("AAPL")
	assert.False(t, ok)
	assert.False(t, b.Remove("AAPL"))

	// Removed symbols stay removed across ticks.
	for _, q := range b.Tick() {
		assert.NotEqual(t, "AAPL", q.Symbol)
	}
}

func TestSurfacesAreIndependent(t *testing.T) {
	d := NewDesk(newTestGenerator(5), nil)
	tape, err := d.Board(SurfaceTape)
	require.NoError(t, err)
	mkt, err := d.Board(SurfaceMarket)
	require.NoError(t, err)

	_, _, err = tape.Add("ZZZ")
	require.NoError(t, err)
	_, ok := mkt.Get("ZZZ")
	assert.False(t, ok)

	_, err = d.Board("sidebar")
	assert.True(t, errors.Is(err, ErrUnknownSurface))
}

func TestRibbonUsesRegionalVolatility(t *testing.T) {
	g := newTestGenerator(9)
	r := NewRibbon(g)
	prev := r.Snapshot()
	next := r.Tick()
	for i := range next {
		vol := regionalVolatility[next[i].Region]
		bound := prev[i].Price*vol*(1+-RibbonBias) + 0.01
		assert.InDelta(t, prev[i].Price, next[i].Price, bound, next[i].Symbol)
		assertQuoteConsistent(t, next[i].MarketTicker)
	}
}

func TestPortfolioBook(t *testing.T) {
	book := NewPortfolioBook(nil)
	h, err := book.Upsert(domain.Holding{Ticker: "aapl", Quantity: 10, AvgCost: 100, CurrentPrice: 110, MarketValue: 1})
	require.NoError(t, err)
	assert.Equal(t, 1100.0, h.MarketValue)
	assert.Equal(t, 100.0, h.PnL)
	assert.InDelta(t, 10.0, h.PnLPercent, 1e-9)

	h, err = book.Upsert(domain.Holding{Ticker: "AAPL", Quantity: 5, AvgCost: 90, CurrentPrice: 110})
	require.NoError(t, err)
	assert.Equal(t, 550.0, h.MarketValue)
	require.Len(t, book.List(), 1)

	_, err = book.Upsert(domain.Holding{Ticker: "MSFT", Quantity: 0})
	assert.Error(t, err)

	repriced := book.Reprice([]domain.MarketTicker{{Symbol: "AAPL", Price: 120}})
	assert.Equal(t, 600.0, repriced[0].MarketValue)
	assert.Equal(t, 600.0, book.TotalValue())

	assert.True(t, book.Remove("aapl"))
	assert.False(t, book.Remove("aapl"))
	assert.Empty(t, book.List())
}

func TestSummarize(t *testing.T) {
	day := fixedNow
	history := []domain.PortfolioPoint{
		{Date: day, Value: 100},
		{Date: day.AddDate(0, 0, 1), Value: 110},
		{Date: day.AddDate(0, 0, 2), Value: 99},
		{Date: day.AddDate(0, 0, 3), Value: 120},
	}
	s := Summarize(history)
	assert.Equal(t, 100.0, s.StartValue)
	assert.Equal(t, 120.0, s.EndValue)
	assert.InDelta(t, 20.0, s.TotalReturnPct, 1e-9)
	assert.InDelta(t, 10.0, s.MaxDrawdownPct, 1e-9)
	assert.Greater(t, s.DailyVolatility, 0.0)

	assert.Equal(t, domain.HistorySummary{}, Summarize(nil))
}

func TestScreenerScores(t *testing.T) {
	g := newTestGenerator(2)
	s := NewScreener(ScreenerOptions{NumTrees: 20, SampleSize: 32, MinSamples: 20})

	_, err := s.Scores()
	require.True(t, errors.Is(err, ErrNotEnoughSamples))

	quotes := g.Seed()
	for n := 0; n < 10; n++ {
		s.Observe(quotes)
		quotes = g.Tick(quotes)
	}
	scores, err := s.Scores()
	require.NoError(t, err)
	require.Len(t, scores, len(quotes))
	for i, sc := range scores {
		assert.GreaterOrEqual(t, sc.Score, 0.0)
		assert.LessOrEqual(t, sc.Score, 1.0)
		if i > 0 {
			assert.GreaterOrEqual(t, scores[i-1].Score, sc.Score)
		}
	}

	// Dropping a symbol removes it from the next scoring.
	s.Observe(quotes[1:])
	scores, err = s.Scores()
	require.NoError(t, err)
	for _, sc := range scores {
		assert.NotEqual(t, quotes[0].Symbol, sc.Symbol)
	}
}

func TestDeskAdvance(t *testing.T) {
	d := NewDesk(newTestGenerator(4), nil)
	snap := d.Advance(fixedNow)
	assert.Equal(t, int64(1), snap.Seq)
	assert.Len(t, snap.Surfaces, len(Surfaces))
	assert.NotEmpty(t, snap.Ribbon)
	assert.NotEmpty(t, snap.Holdings)

	mkt := snap.Surfaces[SurfaceMarket]
	prices := map[string]float64{}
	for _, q := range mkt {
		prices[q.Symbol] = q.Price
	}
	for _, h := range snap.Holdings {
		assert.Equal(t, prices[h.Ticker], h.CurrentPrice, h.Ticker)
	}

	cur := d.Current(fixedNow)
	assert.Equal(t, snap.Seq, cur.Seq)
	assert.Equal(t, snap.Surfaces[SurfaceTape], cur.Surfaces[SurfaceTape])
	assert.Len(t, d.History(), 30)
}

func TestDeskAccessors(t *testing.T) {
	d := NewDesk(newTestGenerator(9), nil)

	_, err := d.Quotes("options")
	require.ErrorIs(t, err, ErrUnknownSurface)

	tape, _, err := d.AddSymbol(SurfaceTape, "zzz")
	require.NoError(t, err)
	assert.Equal(t, "ZZZ", tape.Symbol)

	got, ok := d.Lookup("ZZZ")
	require.True(t, ok)
	assert.Equal(t, tape, got)

	mkt, added, err := d.AddSymbol(SurfaceMarket, "ZZZ")
	require.NoError(t, err)
	require.True(t, added)
	got, _ = d.Lookup("ZZZ")
	assert.Equal(t, mkt, got, "market surface wins lookups")

	_, ok = d.Lookup("NOPE")
	assert.False(t, ok)

	quotes, err := d.Quotes(SurfaceMarket)
	require.NoError(t, err)
	assert.Contains(t, quotes, mkt)
	assert.Equal(t, d.Book().List(), d.Holdings())
}

func TestNewSeededDesk(t *testing.T) {
	a := NewSeededDesk(42, DefaultScreenerOptions()).Advance(fixedNow)
	b := NewSeededDesk(42, DefaultScreenerOptions()).Advance(fixedNow)
	assert.Equal(t, a.Surfaces[SurfaceMarket], b.Surfaces[SurfaceMarket])
	assert.NotNil(t, NewSeededDesk(0, DefaultScreenerOptions()).Screener())
}

func TestScreenerOptionsOverride(t *testing.T) {
	def := DefaultScreenerOptions()
	got := def.Override(50, 64, 0.7)
	assert.Equal(t, 50, got.NumTrees)
	assert.Equal(t, 64, got.SampleSize)
	assert.Equal(t, 0.7, got.Threshold)
	assert.Equal(t, def.Window, got.Window)

	assert.Equal(t, def, def.Override(0, -1, 1.5))
}
