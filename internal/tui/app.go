package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Tab int

const (
	TabMarket Tab = iota
	TabPortfolio
	TabAnalysis

	tabCount = TabAnalysis + 1
)

var tabTitles = [tabCount]string{
	TabMarket:    "Market",
	TabPortfolio: "Portfolio",
	TabAnalysis:  "Analysis",
}

// chromeHeight is the tab bar plus the help footer.
const chromeHeight = 2

// AppModel switches between the dashboard screens. Market snapshots go to
// every screen that renders them; keys go to the visible screen only.
type AppModel struct {
	keys KeyMap
	help help.Model

	active    Tab
	market    MarketModel
	portfolio PortfolioModel
	analysis  AnalysisModel

	width  int
	height int
	closed bool
}

func NewAppModel(svc Services) AppModel {
	h := help.New()
	h.Styles.ShortKey = SubtextStyle.Bold(true)
	h.Styles.ShortDesc = SubtextStyle
	return AppModel{
		keys:      DefaultKeyMap,
		help:      h,
		active:    TabMarket,
		market:    NewMarketModel(svc),
		portfolio: NewPortfolioModel(svc),
		analysis:  NewAnalysisModel(svc),
	}
}

func (m AppModel) Init() tea.Cmd {
	return tea.Batch(m.market.Init(), m.portfolio.Init(), m.analysis.Init())
}

func (m AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		next, quit, handled := m.navigate(msg)
		if quit {
			m.closed = true
			return m, tea.Quit
		}
		if handled {
			m.switchTab(next)
			return m, nil
		}

	case snapshotMsg:
		var marketCmd, portfolioCmd tea.Cmd
		m.market, marketCmd = m.market.Update(msg)
		m.portfolio, portfolioCmd = m.portfolio.Update(msg)
		return m, tea.Batch(marketCmd, portfolioCmd)

	case marketTickMsg:
		var cmd tea.Cmd
		m.market, cmd = m.market.Update(msg)
		return m, cmd

	case analysisResultMsg, analysisErrMsg:
		var cmd tea.Cmd
		m.analysis, cmd = m.analysis.Update(msg)
		return m, cmd
	}

	return m, m.updateActive(msg)
}

// navigate resolves screen and quit keys. While the analysis input has focus
// only tab, shift+tab and ctrl+c escape it.
func (m AppModel) navigate(msg tea.KeyMsg) (next Tab, quit, handled bool) {
	typing := m.active == TabAnalysis
	switch {
	case key.Matches(msg, m.keys.ForceQuit):
		return m.active, true, true
	case key.Matches(msg, m.keys.Tab):
		return (m.active + 1) % tabCount, false, true
	case key.Matches(msg, m.keys.ShiftTab):
		return (m.active + tabCount - 1) % tabCount, false, true
	case typing:
		return m.active, false, false
	case key.Matches(msg, m.keys.Quit):
		return m.active, true, true
	}
	for tab, binding := range m.keys.Jump {
		if key.Matches(msg, binding) {
			return Tab(tab), false, true
		}
	}
	return m.active, false, false
}

func (m *AppModel) updateActive(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch m.active {
	case TabMarket:
		m.market, cmd = m.market.Update(msg)
	case TabPortfolio:
		m.portfolio, cmd = m.portfolio.Update(msg)
	case TabAnalysis:
		m.analysis, cmd = m.analysis.Update(msg)
	}
	return cmd
}

func (m AppModel) View() string {
	if m.closed {
		return "Session closed.\n"
	}

	var screen string
	switch m.active {
	case TabMarket:
		screen = m.market.View()
	case TabPortfolio:
		screen = m.portfolio.View()
	case TabAnalysis:
		screen = m.analysis.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.tabBar(), screen, m.help.View(m.keys))
}

func (m *AppModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.help.Width = w

	screenHeight := max(h-chromeHeight, 0)
	m.market.SetSize(w, screenHeight)
	m.portfolio.SetSize(w, screenHeight)
	m.analysis.SetSize(w, screenHeight)
}

func (m AppModel) ActiveTab() Tab { return m.active }

func (m *AppModel) switchTab(tab Tab) {
	switch {
	case tab == TabAnalysis && m.active != TabAnalysis:
		m.analysis.Focus()
	case tab != TabAnalysis && m.active == TabAnalysis:
		m.analysis.Blur()
	}
	m.active = tab
}

func (m AppModel) tabBar() string {
	labels := make([]string, 0, tabCount)
	for tab, title := range tabTitles {
		label := strings.Join([]string{m.keys.Jump[tab].Help().Key, title}, ":")
		style := InactiveTabStyle
		if Tab(tab) == m.active {
			style = ActiveTabStyle
		}
		labels = append(labels, style.Render(label))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, labels...)
}
