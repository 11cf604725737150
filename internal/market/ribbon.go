package market

import (
	"sync"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

type Region string

const (
	RegionUS   Region = "US"
	RegionEU   Region = "EU"
	RegionAsia Region = "ASIA"

	// RibbonBias tilts index jitter slightly downward.
	RibbonBias = -0.1
)

var regionalVolatility = map[Region]float64{
	RegionUS:   0.003,
	RegionEU:   0.0035,
	RegionAsia: 0.004,
}

var ribbonSeed = []struct {
	region Region
	quote  seedQuote
}{
	{RegionUS, seedQuote{"SPX", "S&P 500", 5123.69, 18.42, 2_450_000_000}},
	{RegionUS, seedQuote{"DJI", "Dow Jones", 38904.04, -57.31, 320_000_000}},
	{RegionUS, seedQuote{"IXIC", "Nasdaq Composite", 16085.11, 61.94, 5_100_000_000}},
	{RegionEU, seedQuote{"UKX", "FTSE 100", 7682.50, -12.35, 650_000_000}},
	{RegionEU, seedQuote{"DAX", "DAX", 17814.51, 45.08, 78_000_000}},
	{RegionEU, seedQuote{"PX1", "CAC 40", 8017.22, 9.71, 64_000_000}},
	{RegionAsia, seedQuote{"N225", "Nikkei 225", 39688.94, 198.17, 1_800_000_000}},
	{RegionAsia, seedQuote{"HSI", "Hang Seng", 16589.44, -131.25, 2_300_000_000}},
	{RegionAsia, seedQuote{"SHCOMP", "Shanghai Composite", 3044.82, 4.76, 31_000_000_000}},
}

type RibbonQuote struct {
	Region Region `json:"region"`
	domain.MarketTicker
}

// Ribbon is the landing-page index strip. Each region jitters with its own
// volatility.
type Ribbon struct {
	gen    *Generator
	mu     sync.RWMutex
	quotes []RibbonQuote
}

func NewRibbon(gen *Generator) *Ribbon {
	quotes := make([]RibbonQuote, 0, len(ribbonSeed))
	for _, s := range ribbonSeed {
		q := s.quote
		quotes = append(quotes, RibbonQuote{Region: s.region, MarketTicker: quote(q.symbol, q.name, q.price, q.change, q.volume)})
	}
	return &Ribbon{gen: gen, quotes: quotes}
}

func (r *Ribbon) Tick() []RibbonQuote {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, q := range r.quotes {
		p := TickParams{Volatility: regionalVolatility[q.Region], Bias: RibbonBias}
		r.quotes[i].MarketTicker = r.gen.step(q.MarketTicker, p)
	}
	return r.snapshotLocked()
}

func (r *Ribbon) Snapshot() []RibbonQuote {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

func (r *Ribbon) snapshotLocked() []RibbonQuote {
	out := make([]RibbonQuote, len(r.quotes))
	copy(out, r.quotes)
	return out
}
