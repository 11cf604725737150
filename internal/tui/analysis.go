package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Analysis message types.
type analysisResultMsg struct{ result *domain.AnalysisResult }
type analysisErrMsg struct{ err error }

type analysisEntry struct {
	Query  string
	Result string
	Time   time.Time
}

// AnalysisModel runs capabilities typed as "<capability> <ticker> [peers...]".
type AnalysisModel struct {
	services Services
	entries  []analysisEntry
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model
	waiting  bool
	err      error
	width    int
	height   int
	ready    bool
}

func NewAnalysisModel(svc Services) AnalysisModel {
	ti := textinput.New()
	ti.Placeholder = "technical AAPL"
	ti.CharLimit = 200
	ti.Width = 60

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(SpinnerColor)

	return AnalysisModel{
		services: svc,
		input:    ti,
		spinner:  sp,
	}
}

func (m AnalysisModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m AnalysisModel) Update(msg tea.Msg) (AnalysisModel, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case analysisResultMsg:
		m.waiting = false
		m.err = nil
		if n := len(m.entries); n > 0 {
			m.entries[n-1].Result = RenderResult(msg.result)
		}
		m.viewport.SetContent(m.renderEntries())
		m.viewport.GotoBottom()
		return m, nil

	case analysisErrMsg:
		m.waiting = false
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyEnter && !m.waiting {
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				break
			}
			req, err := ParseQuery(text)
			if err != nil {
				m.err = err
				return m, nil
			}
			m.entries = append(m.entries, analysisEntry{Query: text, Time: time.Now()})
			m.input.SetValue("")
			m.waiting = true
			m.err = nil
			m.viewport.SetContent(m.renderEntries())
			m.viewport.GotoBottom()
			return m, tea.Batch(m.analyzeCmd(req), m.spinner.Tick)
		}

	case spinner.TickMsg:
		if m.waiting {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	if !m.waiting {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m AnalysisModel) View() string {
	if m.services.Analyzer == nil {
		return lipgloss.JoinVertical(lipgloss.Left,
			"",
			HeaderStyle.Render("  Analysis"),
			"",
			SubtextStyle.Render("  Analysis not available. Set GEMINI_API_KEY or OPENAI_API_KEY to enable."),
		)
	}

	var sections []string
	sections = append(sections, HeaderStyle.Render("  Analysis"))
	sections = append(sections, SubtextStyle.Render("  "+m.capabilityHint()))
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", max(m.width-2, 1))))

	if !m.ready {
		m.initViewport()
	}
	sections = append(sections, m.viewport.View())
	sections = append(sections, SubtextStyle.Render(strings.Repeat("─", max(m.width-2, 1))))

	if m.waiting {
		sections = append(sections, fmt.Sprintf("  %s Analyzing...", m.spinner.View()))
	} else {
		if m.err != nil {
			sections = append(sections, ErrorStyle.Render(fmt.Sprintf("  Error: %v", m.err)))
		}
		sections = append(sections, "  "+m.input.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *AnalysisModel) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.input.Width = w - 6
	m.ready = false
}

func (m *AnalysisModel) Focus() {
	m.input.Focus()
}

func (m *AnalysisModel) Blur() {
	m.input.Blur()
}

// IsWaiting returns whether a request is in flight (for testing).
func (m AnalysisModel) IsWaiting() bool { return m.waiting }

// EntryCount returns the number of queries issued (for testing).
func (m AnalysisModel) EntryCount() int { return len(m.entries) }

// ParseQuery turns "<capability> <ticker> [peers...]" into a request.
// portfolio_optimization needs no ticker and uses the live holdings.
func ParseQuery(text string) (domain.AnalysisRequest, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return domain.AnalysisRequest{}, errors.New("empty query")
	}
	capability, err := domain.ParseCapability(fields[0])
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	req := domain.AnalysisRequest{Capability: capability, View: analysisView}
	switch capability {
	case domain.CapabilityPortfolioOptimization:
		if len(fields) > 1 {
			req.Params.RiskTolerance = fields[1]
		}
		return req, nil
	case domain.CapabilityInstitutionalDeepDive:
		if len(fields) < 2 {
			return req, errors.New("usage: institutional_deep_dive <institution name>")
		}
		req.Params.Institution = strings.Join(fields[1:], " ")
		return req, nil
	}
	if len(fields) < 2 {
		return req, fmt.Errorf("usage: %s <ticker>", capability)
	}
	req.Ticker = domain.NormalizeSymbol(fields[1])
	if capability == domain.CapabilityFuzzyCorrelation || capability == domain.CapabilityClustering {
		req.Params.Peers = fields[2:]
	}
	return req, nil
}

// RenderResult formats the headline figures of a result for the terminal.
func RenderResult(r *domain.AnalysisResult) string {
	if r == nil {
		return ""
	}
	var lines []string
	head := fmt.Sprintf("%s: %s", r.Capability.Label(), r.Ticker)
	if r.Sentiment != "" {
		head += "  " + SentimentStyle(r.Sentiment).Render(string(r.Sentiment))
	}
	if r.Score != nil {
		head += fmt.Sprintf("  score %.0f", *r.Score)
	}
	lines = append(lines, head)

	switch {
	case r.Backtest != nil:
		bm := r.Backtest.Metrics
		lines = append(lines, fmt.Sprintf("return %.2f%%  sharpe %.2f  drawdown %.2f%%  win rate %.1f%%  trades %d",
			bm.TotalReturn, bm.SharpeRatio, bm.MaxDrawdown, bm.WinRate, bm.TradesCount))
	case r.ML != nil:
		lines = append(lines, fmt.Sprintf("%s  accuracy %.1f%%  rmse %.2f  next day %.2f",
			r.ML.ModelArchitecture, r.ML.Accuracy, r.ML.RMSE, r.ML.NextDayPrediction))
	case r.Portfolio != nil:
		cur, opt := r.Portfolio.CurrentMetrics, r.Portfolio.OptimizedMetrics
		lines = append(lines, fmt.Sprintf("sharpe %.2f → %.2f  volatility %.2f%% → %.2f%%",
			cur.SharpeRatio, opt.SharpeRatio, cur.Volatility, opt.Volatility))
		for _, s := range r.Portfolio.Suggestions {
			lines = append(lines, fmt.Sprintf("  %s %s %.1f%% → %.1f%%", s.Action, s.Ticker, s.CurrentWeight, s.TargetWeight))
		}
	case r.TradeSetup != nil:
		lines = append(lines, fmt.Sprintf("entry %s  stop %s  target %s", r.TradeSetup.Entry, r.TradeSetup.StopLoss, r.TradeSetup.Target))
	}

	if r.Content != "" {
		lines = append(lines, strings.Split(r.Content, "\n")...)
	}
	for _, s := range r.Sources {
		lines = append(lines, SubtextStyle.Render(fmt.Sprintf("  [%s] %s", s.Title, s.URL)))
	}
	return strings.Join(lines, "\n")
}

func (m AnalysisModel) capabilityHint() string {
	if m.services.Analyzer == nil {
		return ""
	}
	caps := m.services.Analyzer.Capabilities()
	names := make([]string, 0, len(caps))
	for _, c := range caps {
		names = append(names, string(c.Capability))
	}
	return strings.Join(names, " ")
}

func (m *AnalysisModel) initViewport() {
	vpHeight := m.height - 7
	if vpHeight < 3 {
		vpHeight = 3
	}
	vpWidth := m.width - 2
	if vpWidth < 10 {
		vpWidth = 10
	}
	m.viewport = viewport.New(vpWidth, vpHeight)
	m.viewport.SetContent(m.renderEntries())
	m.ready = true
}

func (m AnalysisModel) renderEntries() string {
	if len(m.entries) == 0 {
		return SubtextStyle.Render("  Type a capability and ticker below, e.g. \"backtest SPY\" or \"fuzzy_correlation AAPL MSFT\".")
	}

	var lines []string
	for _, e := range m.entries {
		lines = append(lines, fmt.Sprintf("  %s  %s %s",
			SubtextStyle.Render(e.Time.Format("15:04")),
			QueryStyle.Render(">"),
			e.Query,
		))
		for _, line := range strings.Split(e.Result, "\n") {
			if line != "" {
				lines = append(lines, "         "+ResultStyle.Render(line))
			}
		}
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}

func (m AnalysisModel) analyzeCmd(req domain.AnalysisRequest) tea.Cmd {
	svc := m.services
	return func() tea.Msg {
		if svc.Analyzer == nil {
			return analysisErrMsg{err: fmt.Errorf("analysis not available")}
		}
		req.View = svc.view()
		if req.Capability == domain.CapabilityPortfolioOptimization && svc.Market != nil {
			req.Params.Holdings = svc.Market.Current(time.Now().UTC()).Holdings
		}
		if req.Capability == domain.CapabilityBacktest {
			fillBacktestDefaults(&req.Params, time.Now().UTC())
		}
		result, err := svc.Analyzer.Analyze(context.Background(), req)
		if errors.Is(err, service.ErrSuperseded) {
			return nil
		}
		if err != nil {
			return analysisErrMsg{err: err}
		}
		return analysisResultMsg{result: result}
	}
}

// fillBacktestDefaults backtests a buy-and-hold strategy over the last year
// when the query names none.
func fillBacktestDefaults(p *domain.AnalysisParams, now time.Time) {
	if p.Strategy == "" {
		p.Strategy = "Buy and hold"
	}
	if p.StartDate == "" || p.EndDate == "" {
		p.EndDate = now.Format("2006-01-02")
		p.StartDate = now.AddDate(-1, 0, 0).Format("2006-01-02")
	}
}
