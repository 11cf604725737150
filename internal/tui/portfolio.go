package tui

import (
	"fmt"
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// PortfolioModel shows holdings marked to the market board and the value history.
type PortfolioModel struct {
	services Services
	holdings []domain.Holding
	history  []domain.PortfolioPoint
	summary  domain.HistorySummary
	width    int
	height   int
}

func NewPortfolioModel(svc Services) PortfolioModel {
	return PortfolioModel{services: svc}
}

func (m PortfolioModel) Init() tea.Cmd { return nil }

// Update refreshes holdings and history whenever the market moves.
func (m PortfolioModel) Update(msg tea.Msg) (PortfolioModel, tea.Cmd) {
	if snap, ok := msg.(snapshotMsg); ok {
		m.holdings = snap.Holdings
		if m.services.Market != nil {
			m.history = m.services.Market.History()
			m.summary = market.Summarize(m.history)
		}
	}
	return m, nil
}

func (m PortfolioModel) View() string {
	if len(m.holdings) == 0 {
		return SubtextStyle.Render("  No holdings")
	}

	holdingsBox := BorderStyle.Width(m.width - 2).Render(m.renderHoldings())

	allocWidth := m.width/2 - 2
	if allocWidth < 36 {
		allocWidth = 36
	}
	historyWidth := m.width - allocWidth - 4
	if historyWidth < 30 {
		historyWidth = 30
	}
	allocBox := BorderStyle.Width(allocWidth).Render(m.renderAllocation(allocWidth - 22))
	historyBox := BorderStyle.Width(historyWidth).Render(m.renderHistory(historyWidth - 4))

	return lipgloss.JoinVertical(lipgloss.Left,
		holdingsBox,
		lipgloss.JoinHorizontal(lipgloss.Top, allocBox, historyBox),
	)
}

func (m *PortfolioModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Holdings returns the current holdings (for testing).
func (m PortfolioModel) Holdings() []domain.Holding { return m.holdings }

// TotalValue sums the market value of all holdings.
func (m PortfolioModel) TotalValue() float64 {
	total := 0.0
	for _, h := range m.holdings {
		total += h.MarketValue
	}
	return total
}

func (m PortfolioModel) renderHoldings() string {
	lines := []string{
		HeaderStyle.Render("  Holdings"),
		SubtextStyle.Render("  Ticker      Qty     AvgCost       Price         Value  P&L"),
		SubtextStyle.Render("  " + strings.Repeat("─", 70)),
	}
	for _, h := range m.holdings {
		lines = append(lines, "  "+FormatHolding(h))
	}
	lines = append(lines, HeaderStyle.Render(fmt.Sprintf("  Total %s", formatUSD(m.TotalValue()))))
	return strings.Join(lines, "\n")
}

func (m PortfolioModel) renderAllocation(barWidth int) string {
	lines := []string{HeaderStyle.Render("  Allocation")}
	total := m.TotalValue()
	for _, h := range m.holdings {
		weight := 0.0
		if total > 0 {
			weight = h.MarketValue / total
		}
		lines = append(lines, "  "+RenderBarChart(h.Ticker, weight, barWidth))
	}
	return strings.Join(lines, "\n")
}

func (m PortfolioModel) renderHistory(width int) string {
	lines := []string{HeaderStyle.Render(fmt.Sprintf("  Value history (%d days)", len(m.history)))}
	if len(m.history) == 0 {
		return strings.Join(append(lines, SubtextStyle.Render("  No history")), "\n")
	}
	values := make([]float64, len(m.history))
	for i, p := range m.history {
		values[i] = p.Value
	}
	s := m.summary
	lines = append(lines,
		"  "+changeStyle(s.TotalReturnPct).Render(RenderSparkline(values, width)),
		fmt.Sprintf("  %s → %s  %s", formatUSD(s.StartValue), formatUSD(s.EndValue),
			changeStyle(s.TotalReturnPct).Render(fmt.Sprintf("%+.2f%%", s.TotalReturnPct))),
		SubtextStyle.Render(fmt.Sprintf("  daily vol %.2f%%  max drawdown %.2f%%", s.DailyVolatility*100, s.MaxDrawdownPct)),
	)
	return strings.Join(lines, "\n")
}
