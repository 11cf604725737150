package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Market message types.
type marketTickMsg time.Time
type snapshotMsg market.Snapshot

// MarketModel is the Bubble Tea model for the live market screen.
type MarketModel struct {
	services Services
	snapshot market.Snapshot
	surface  int
	paused   bool
	loaded   bool
	width    int
	height   int
}

// NewMarketModel creates a new market model.
func NewMarketModel(svc Services) MarketModel {
	return MarketModel{
		services: svc,
		surface:  len(market.Surfaces) - 1,
	}
}

// Init loads the current snapshot and schedules the first tick.
func (m MarketModel) Init() tea.Cmd {
	return tea.Batch(m.currentCmd(), m.tickCmd())
}

// Update handles incoming messages.
func (m MarketModel) Update(msg tea.Msg) (MarketModel, tea.Cmd) {
	switch msg := msg.(type) {
	case snapshotMsg:
		m.snapshot = market.Snapshot(msg)
		m.loaded = true
		return m, nil

	case marketTickMsg:
		if m.paused {
			return m, m.tickCmd()
		}
		return m, tea.Batch(m.advanceCmd(time.Time(msg)), m.tickCmd())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.CycleSurface):
			m.surface = (m.surface + 1) % len(market.Surfaces)
		case key.Matches(msg, DefaultKeyMap.Pause):
			m.paused = !m.paused
		}
	}

	return m, nil
}

// View renders the market screen.
func (m MarketModel) View() string {
	if m.services.Market == nil {
		return SubtextStyle.Render("Market data not available")
	}
	if !m.loaded {
		return SubtextStyle.Render("Loading market...")
	}

	ribbonBox := BorderStyle.Width(m.width - 2).Render(
		HeaderStyle.Render("  Global Indices") + "\n" + FormatRibbon(m.snapshot.Ribbon))

	tableWidth := m.width*2/3 - 2
	if tableWidth < 60 {
		tableWidth = 60
	}
	heatWidth := m.width - tableWidth - 4
	if heatWidth < 15 {
		heatWidth = 15
	}

	tableBox := BorderStyle.Width(tableWidth).Render(m.renderTable())
	heatBox := BorderStyle.Width(heatWidth).Render(
		HeaderStyle.Render("  Heat Map") + "\n" + RenderHeatMap(m.snapshot.Surfaces[m.Surface()], heatWidth-2))

	status := fmt.Sprintf("  tick #%d  %s", m.snapshot.Seq, m.snapshot.At.Format("15:04:05"))
	if m.paused {
		status += "  [paused]"
	}
	help := SubtextStyle.Render(status + "   s: cycle surface   p: pause")

	return lipgloss.JoinVertical(lipgloss.Left,
		ribbonBox,
		lipgloss.JoinHorizontal(lipgloss.Top, tableBox, heatBox),
		help,
	)
}

// SetSize updates the model dimensions.
func (m *MarketModel) SetSize(w, h int) {
	m.width = w
	m.height = h
}

// Surface returns the surface currently shown.
func (m MarketModel) Surface() string { return market.Surfaces[m.surface] }

// Snapshot returns the latest snapshot (for testing).
func (m MarketModel) Snapshot() market.Snapshot { return m.snapshot }

func (m MarketModel) renderTable() string {
	header := HeaderStyle.Render(fmt.Sprintf("  Quotes: %s", m.Surface()))
	lines := []string{
		header,
		SubtextStyle.Render("  Symbol       Price   Change        Bid / Ask           Volume"),
		SubtextStyle.Render("  " + strings.Repeat("─", 62)),
	}
	tickers := m.snapshot.Surfaces[m.Surface()]
	for _, t := range tickers {
		lines = append(lines, "  "+FormatTicker(t))
	}
	if len(tickers) == 0 {
		lines = append(lines, SubtextStyle.Render("  No symbols on this surface"))
	}
	return strings.Join(lines, "\n")
}

func (m MarketModel) currentCmd() tea.Cmd {
	src := m.services.Market
	return func() tea.Msg {
		if src == nil {
			return nil
		}
		return snapshotMsg(src.Current(time.Now().UTC()))
	}
}

func (m MarketModel) advanceCmd(at time.Time) tea.Cmd {
	src := m.services.Market
	return func() tea.Msg {
		if src == nil {
			return nil
		}
		return snapshotMsg(src.Advance(at.UTC()))
	}
}

func (m MarketModel) tickCmd() tea.Cmd {
	return tea.Tick(m.services.tickInterval(), func(t time.Time) tea.Msg {
		return marketTickMsg(t)
	})
}
