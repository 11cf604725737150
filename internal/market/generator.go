// Package market produces the synthetic quote tables, holdings and equity
// history behind every market surface.
package market

import (
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

const (
	// DefaultVolatility scales a tick to at most 0.2% of the current price.
	DefaultVolatility = 0.002
	HalfSpread        = 0.02
	minPrice          = 0.05

	volumeStep     = 1500
	historyPoints  = 30
	startingEquity = 100000.0
	// History draws daily returns from [-1.2%, +1.8%].
	historyReturnLow  = -0.012
	historyReturnSpan = 0.03
)

type seedQuote struct {
	symbol string
	name   string
	price  float64
	change float64
	volume int64
}

var seedTable = []seedQuote{
	{"AAPL", "Apple Inc.", 189.84, 1.23, 52_340_000},
	{"MSFT", "Microsoft Corp.", 415.26, -2.14, 21_870_000},
	{"GOOGL", "Alphabet Inc.", 152.19, 0.87, 24_110_000},
	{"AMZN", "Amazon.com Inc.", 178.35, 2.41, 38_920_000},
	{"NVDA", "NVIDIA Corp.", 875.28, 15.62, 41_660_000},
	{"TSLA", "Tesla Inc.", 175.79, -4.33, 97_450_000},
	{"META", "Meta Platforms Inc.", 502.30, 3.88, 15_230_000},
	{"JPM", "JPMorgan Chase & Co.", 196.62, -0.54, 9_870_000},
	{"SPY", "SPDR S&P 500 ETF", 512.47, 1.05, 68_540_000},
	{"QQQ", "Invesco QQQ Trust", 438.91, 2.17, 39_210_000},
}

var seedHoldings = []struct {
	symbol   string
	quantity float64
	avgCost  float64
}{
	{"AAPL", 50, 150.25},
	{"MSFT", 30, 310.40},
	{"NVDA", 20, 420.00},
	{"TSLA", 15, 240.10},
}

// TickParams shapes one random-walk step. The perturbation is drawn
// uniformly from [-1+Bias, 1+Bias] * Volatility * price.
type TickParams struct {
	Volatility float64
	Bias       float64
}

func DefaultTickParams() TickParams {
	return TickParams{Volatility: DefaultVolatility}
}

// Generator is safe for concurrent use; the random source is guarded.
type Generator struct {
	mu  sync.Mutex
	rng *rand.Rand
	now func() time.Time
}

func NewGenerator(seed uint64, now func() time.Time) *Generator {
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Generator{
		rng: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now: now,
	}
}

func (g *Generator) float() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.Float64()
}

func (g *Generator) intN(n int) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.rng.IntN(n)
}

// Seed returns a fresh copy of the static quote table.
func (g *Generator) Seed() []domain.MarketTicker {
	out := make([]domain.MarketTicker, 0, len(seedTable))
	for _, q := range seedTable {
		out = append(out, quote(q.symbol, q.name, q.price, q.change, q.volume))
	}
	return out
}

// NewTicker seeds a quote for symbol, from the static table when known and
// from a random price otherwise.
func (g *Generator) NewTicker(symbol string) domain.MarketTicker {
	symbol = domain.NormalizeSymbol(symbol)
	for _, q := range seedTable {
		if q.symbol == symbol {
			return quote(q.symbol, q.name, q.price, q.change, q.volume)
		}
	}
	price := round2(20 + g.float()*480)
	volume := int64(100_000 + g.intN(5_000_000))
	return quote(symbol, symbol, price, 0, volume)
}

// Tick advances every quote one step with the default parameters.
func (g *Generator) Tick(prev []domain.MarketTicker) []domain.MarketTicker {
	return g.TickWith(prev, DefaultTickParams())
}

func (g *Generator) TickWith(prev []domain.MarketTicker, p TickParams) []domain.MarketTicker {
	if p.Volatility <= 0 {
		p.Volatility = DefaultVolatility
	}
	next := make([]domain.MarketTicker, len(prev))
	for i, t := range prev {
		next[i] = g.step(t, p)
	}
	return next
}

func (g *Generator) step(t domain.MarketTicker, p TickParams) domain.MarketTicker {
	delta := (g.float()*2 - 1 + p.Bias) * p.Volatility * t.Price
	price := round2(math.Max(minPrice, t.Price+delta))

	change := round2(t.Change + (price - t.Price))
	next := quote(t.Symbol, t.Name, price, change, t.Volume+int64(g.intN(volumeStep)))
	return next
}

// quote derives percent change and spread from price and cumulative change.
// The percent is taken against the implied prior close so rounding never
// compounds across ticks.
func quote(symbol, name string, price, change float64, volume int64) domain.MarketTicker {
	pct := 0.0
	if base := price - change; base > 0 {
		pct = round2(change / base * 100)
	}
	return domain.MarketTicker{
		Symbol:        symbol,
		Name:          name,
		Price:         price,
		Change:        change,
		ChangePercent: pct,
		Bid:           round2(price - HalfSpread),
		Ask:           round2(price + HalfSpread),
		Volume:        volume,
	}
}

// SeedHoldings returns the starting mock portfolio priced at seed quotes.
func (g *Generator) SeedHoldings() []domain.Holding {
	prices := make(map[string]float64, len(seedTable))
	for _, q := range seedTable {
		prices[q.symbol] = q.price
	}
	out := make([]domain.Holding, 0, len(seedHoldings))
	for _, h := range seedHoldings {
		out = append(out, domain.NewHolding(h.symbol, h.quantity, h.avgCost, prices[h.symbol]))
	}
	return out
}

// SeedPortfolioHistory walks equity forward from a fixed start over the
// trailing window with slightly upward-biased daily returns. Dates are
// strictly increasing and end today.
func (g *Generator) SeedPortfolioHistory() []domain.PortfolioPoint {
	today := g.now().UTC().Truncate(24 * time.Hour)
	out := make([]domain.PortfolioPoint, historyPoints)
	value := startingEquity
	for i := 0; i < historyPoints; i++ {
		if i > 0 {
			value *= 1 + historyReturnLow + g.float()*historyReturnSpan
		}
		out[i] = domain.PortfolioPoint{
			Date:  today.AddDate(0, 0, i-historyPoints+1),
			Value: round2(value),
		}
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
