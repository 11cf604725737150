package market

import (
	"fmt"
	"sort"
	"sync"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

// PortfolioBook holds the mock holdings keyed by ticker.
type PortfolioBook struct {
	mu       sync.RWMutex
	holdings map[string]domain.Holding
}

func NewPortfolioBook(seed []domain.Holding) *PortfolioBook {
	b := &PortfolioBook{holdings: make(map[string]domain.Holding, len(seed))}
	for _, h := range seed {
		b.holdings[h.Ticker] = h.Derive()
	}
	return b
}

// Upsert replaces the whole record for h.Ticker. Derived values are always
// recomputed.
func (b *PortfolioBook) Upsert(h domain.Holding) (domain.Holding, error) {
	h.Ticker = domain.NormalizeSymbol(h.Ticker)
	if !ValidSymbol(h.Ticker) {
		return domain.Holding{}, fmt.Errorf("%w: %q", ErrInvalidSymbol, h.Ticker)
	}
	if h.Quantity <= 0 {
		return domain.Holding{}, fmt.Errorf("quantity must be positive")
	}
	if h.AvgCost < 0 || h.CurrentPrice < 0 {
		return domain.Holding{}, fmt.Errorf("prices must not be negative")
	}
	h = h.Derive()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.holdings[h.Ticker] = h
	return h, nil
}

func (b *PortfolioBook) Remove(ticker string) bool {
	ticker = domain.NormalizeSymbol(ticker)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.holdings[ticker]; !ok {
		return false
	}
	delete(b.holdings, ticker)
	return true
}

// List returns holdings ordered by ticker.
func (b *PortfolioBook) List() []domain.Holding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.Holding, 0, len(b.holdings))
	for _, h := range b.holdings {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Ticker < out[j].Ticker })
	return out
}

// Reprice marks holdings to the given quotes and re-derives their values.
// Holdings without a quote keep their last price.
func (b *PortfolioBook) Reprice(quotes []domain.MarketTicker) []domain.Holding {
	b.mu.Lock()
	for _, q := range quotes {
		h, ok := b.holdings[q.Symbol]
		if !ok {
			continue
		}
		h.CurrentPrice = q.Price
		b.holdings[q.Symbol] = h.Derive()
	}
	b.mu.Unlock()
	return b.List()
}

// TotalValue is the summed market value of every holding.
func (b *PortfolioBook) TotalValue() float64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	total := 0.0
	for _, h := range b.holdings {
		total += h.MarketValue
	}
	return total
}
