package market

import (
	"errors"
	"fmt"
	"regexp"
	"sync"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

const (
	SurfaceTape     = "tape"
	SurfaceScreener = "screener"
	SurfaceMarket   = "market"
)

var Surfaces = []string{SurfaceTape, SurfaceScreener, SurfaceMarket}

var (
	ErrUnknownSurface = errors.New("unknown market surface")
	ErrInvalidSymbol  = errors.New("invalid ticker symbol")
)

var symbolPattern = regexp.MustCompile(`^[A-Z][A-Z0-9.\-]{0,9}$`)

func ValidSymbol(symbol string) bool {
	return symbolPattern.MatchString(symbol)
}

// Board is one surface's private quote table. Surfaces never share a table.
type Board struct {
	name string
	gen  *Generator

	mu      sync.RWMutex
	tickers []domain.MarketTicker
}

func NewBoard(name string, gen *Generator) *Board {
	return &Board{name: name, gen: gen, tickers: gen.Seed()}
}

func (b *Board) Name() string { return b.name }

// Add seeds symbol onto the board. Adding a symbol already present is a
// no-op and reports added=false.
func (b *Board) Add(symbol string) (domain.MarketTicker, bool, error) {
	symbol = domain.NormalizeSymbol(symbol)
	if !ValidSymbol(symbol) {
		return domain.MarketTicker{}, false, fmt.Errorf("%w: %q", ErrInvalidSymbol, symbol)
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for _, t := range b.tickers {
		if t.Symbol == symbol {
			return t, false, nil
		}
	}
	t := b.gen.NewTicker(symbol)
	b.tickers = append(b.tickers, t)
	return t, true, nil
}

func (b *Board) Remove(symbol string) bool {
	symbol = domain.NormalizeSymbol(symbol)

	b.mu.Lock()
	defer b.mu.Unlock()
	for i, t := range b.tickers {
		if t.Symbol == symbol {
			b.tickers = append(b.tickers[:i:i], b.tickers[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Board) Get(symbol string) (domain.MarketTicker, bool) {
	symbol = domain.NormalizeSymbol(symbol)

	b.mu.RLock()
	defer b.mu.RUnlock()
	for _, t := range b.tickers {
		if t.Symbol == symbol {
			return t, true
		}
	}
	return domain.MarketTicker{}, false
}

// Tick replaces the table with the next snapshot and returns a copy of it.
func (b *Board) Tick() []domain.MarketTicker {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tickers = b.gen.Tick(b.tickers)
	return copyTickers(b.tickers)
}

func (b *Board) Snapshot() []domain.MarketTicker {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return copyTickers(b.tickers)
}

func copyTickers(in []domain.MarketTicker) []domain.MarketTicker {
	out := make([]domain.MarketTicker, len(in))
	copy(out, in)
	return out
}
