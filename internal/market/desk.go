package market

import (
	"fmt"
	"sync"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

// Snapshot is the state of every surface after one tick.
type Snapshot struct {
	Seq      int64                            `json:"seq"`
	At       time.Time                        `json:"at"`
	Ribbon   []RibbonQuote                    `json:"ribbon"`
	Surfaces map[string][]domain.MarketTicker `json:"surfaces"`
	Holdings []domain.Holding                 `json:"holdings"`
}

// Desk owns the per-surface boards, the ribbon, the portfolio book and the
// screener. It holds no timer of its own; Advance is driven externally.
type Desk struct {
	gen      *Generator
	boards   map[string]*Board
	ribbon   *Ribbon
	book     *PortfolioBook
	screener *Screener

	mu      sync.RWMutex
	history []domain.PortfolioPoint
	seq     int64
}

func NewDesk(gen *Generator, screener *Screener) *Desk {
	boards := make(map[string]*Board, len(Surfaces))
	for _, name := range Surfaces {
		boards[name] = NewBoard(name, gen)
	}
	if screener == nil {
		screener = NewScreener(DefaultScreenerOptions())
	}
	return &Desk{
		gen:      gen,
		boards:   boards,
		ribbon:   NewRibbon(gen),
		book:     NewPortfolioBook(gen.SeedHoldings()),
		screener: screener,
		history:  gen.SeedPortfolioHistory(),
	}
}

// NewSeededDesk builds a desk with its own generator and screener. A zero
// seed is replaced with a time-based one.
func NewSeededDesk(seed uint64, opts ScreenerOptions) *Desk {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return NewDesk(NewGenerator(seed, nil), NewScreener(opts))
}

func (d *Desk) Board(surface string) (*Board, error) {
	b, ok := d.boards[surface]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSurface, surface)
	}
	return b, nil
}

// Quotes returns a copy of one surface's table.
func (d *Desk) Quotes(surface string) ([]domain.MarketTicker, error) {
	b, err := d.Board(surface)
	if err != nil {
		return nil, err
	}
	return b.Snapshot(), nil
}

func (d *Desk) AddSymbol(surface, symbol string) (domain.MarketTicker, bool, error) {
	b, err := d.Board(surface)
	if err != nil {
		return domain.MarketTicker{}, false, err
	}
	return b.Add(symbol)
}

// Lookup finds symbol on the first surface that carries it, in Surfaces
// order reversed so the market board wins.
func (d *Desk) Lookup(symbol string) (domain.MarketTicker, bool) {
	for i := len(Surfaces) - 1; i >= 0; i-- {
		if t, ok := d.boards[Surfaces[i]].Get(symbol); ok {
			return t, true
		}
	}
	return domain.MarketTicker{}, false
}

func (d *Desk) Holdings() []domain.Holding { return d.book.List() }

func (d *Desk) Ribbon() *Ribbon { return d.ribbon }

func (d *Desk) Book() *PortfolioBook { return d.book }

func (d *Desk) Screener() *Screener { return d.screener }

func (d *Desk) Anomalies() ([]domain.AnomalyScore, error) { return d.screener.Scores() }

func (d *Desk) History() []domain.PortfolioPoint {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]domain.PortfolioPoint, len(d.history))
	copy(out, d.history)
	return out
}

// Advance ticks every surface once. The screener learns from the screener
// board and holdings are marked to the market board.
func (d *Desk) Advance(at time.Time) Snapshot {
	surfaces := make(map[string][]domain.MarketTicker, len(d.boards))
	for _, name := range Surfaces {
		surfaces[name] = d.boards[name].Tick()
	}
	d.screener.Observe(surfaces[SurfaceScreener])
	holdings := d.book.Reprice(surfaces[SurfaceMarket])

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.mu.Unlock()

	return Snapshot{
		Seq:      seq,
		At:       at,
		Ribbon:   d.ribbon.Tick(),
		Surfaces: surfaces,
		Holdings: holdings,
	}
}

// Current returns the latest state without advancing it.
func (d *Desk) Current(at time.Time) Snapshot {
	surfaces := make(map[string][]domain.MarketTicker, len(d.boards))
	for name, b := range d.boards {
		surfaces[name] = b.Snapshot()
	}
	d.mu.RLock()
	seq := d.seq
	d.mu.RUnlock()
	return Snapshot{
		Seq:      seq,
		At:       at,
		Ribbon:   d.ribbon.Snapshot(),
		Surfaces: surfaces,
		Holdings: d.book.List(),
	}
}
