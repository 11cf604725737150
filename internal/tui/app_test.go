package tui

import (
	"context"
	"strings"
	"testing"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"

	tea "github.com/charmbracelet/bubbletea"
)

// --- stub services ---

type stubAnalyzer struct {
	lastReq domain.AnalysisRequest
	result  *domain.AnalysisResult
	err     error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error) {
	s.lastReq = req
	return s.result, s.err
}

func (s *stubAnalyzer) Capabilities() []service.CapabilityInfo {
	return []service.CapabilityInfo{{Capability: domain.CapabilityTechnical, Label: "technical analysis"}}
}

func testServices() Services {
	return Services{
		Market: market.NewDesk(market.NewGenerator(11, nil), nil),
		Analyzer: &stubAnalyzer{result: &domain.AnalysisResult{
			Ticker:     "AAPL",
			Capability: domain.CapabilityTechnical,
			Content:    "Uptrend intact.",
			Sentiment:  domain.SentimentBullish,
		}},
	}
}

func TestAppModelInitialTab(t *testing.T) {
	m := NewAppModel(testServices())
	if m.ActiveTab() != TabMarket {
		t.Fatalf("expected TabMarket, got %d", m.ActiveTab())
	}
}

func TestAppModelTabSwitchByNumber(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	app := updated.(AppModel)
	if app.ActiveTab() != TabPortfolio {
		t.Fatalf("expected TabPortfolio after pressing 2, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	app = updated.(AppModel)
	if app.ActiveTab() != TabAnalysis {
		t.Fatalf("expected TabAnalysis after pressing 3, got %d", app.ActiveTab())
	}

	// Digits are query text while the analysis input has focus.
	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'1'}})
	app = updated.(AppModel)
	if app.ActiveTab() != TabAnalysis {
		t.Fatalf("expected to stay on TabAnalysis, got %d", app.ActiveTab())
	}
}

func TestAppModelTabSwitchByTab(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	app := updated.(AppModel)
	if app.ActiveTab() != TabPortfolio {
		t.Fatalf("expected TabPortfolio after Tab, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app = updated.(AppModel)
	if app.ActiveTab() != TabMarket {
		t.Fatalf("expected TabMarket after Shift+Tab, got %d", app.ActiveTab())
	}

	updated, _ = app.Update(tea.KeyMsg{Type: tea.KeyShiftTab})
	app = updated.(AppModel)
	if app.ActiveTab() != TabAnalysis {
		t.Fatalf("expected wrap to TabAnalysis, got %d", app.ActiveTab())
	}
}

func TestAppModelQuitOutsideAnalysis(t *testing.T) {
	m := NewAppModel(testServices())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestAppModelSnapshotReachesMarketAndPortfolio(t *testing.T) {
	svc := testServices()
	m := NewAppModel(svc)
	m.SetSize(120, 40)

	snap := svc.Market.Advance(fixedNow)
	updated, _ := m.Update(snapshotMsg(snap))
	app := updated.(AppModel)
	if app.market.Snapshot().Seq != 1 {
		t.Fatalf("expected market to hold tick 1, got %d", app.market.Snapshot().Seq)
	}
	if len(app.portfolio.Holdings()) != len(snap.Holdings) {
		t.Fatalf("expected %d holdings, got %d", len(snap.Holdings), len(app.portfolio.Holdings()))
	}
}

func TestAppModelWindowResize(t *testing.T) {
	m := NewAppModel(testServices())

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
	app := updated.(AppModel)
	if app.width != 100 || app.height != 50 {
		t.Fatalf("expected 100x50, got %dx%d", app.width, app.height)
	}
}

func TestAppModelViewRendersWithoutPanic(t *testing.T) {
	svc := testServices()
	m := NewAppModel(svc)
	m.SetSize(120, 40)
	updated, _ := m.Update(snapshotMsg(svc.Market.Current(fixedNow)))
	m = updated.(AppModel)

	for _, tab := range []Tab{TabMarket, TabPortfolio, TabAnalysis} {
		m.active = tab
		if view := m.View(); view == "" {
			t.Fatalf("expected non-empty view for tab %d", tab)
		}
	}
}

func TestAppModelAnalysisInputKeepsQuitKey(t *testing.T) {
	m := NewAppModel(testServices())
	m.switchTab(TabAnalysis)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	app := updated.(AppModel)
	if app.closed || app.ActiveTab() != TabAnalysis {
		t.Fatal("expected q to be typed into the query, not quit")
	}

	_, cmd := app.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if cmd == nil {
		t.Fatal("expected ctrl+c to quit from the analysis screen")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatal("expected tea.QuitMsg")
	}
}

func TestAppModelViewShowsTabsAndHelp(t *testing.T) {
	m := NewAppModel(testServices())
	m.SetSize(120, 40)

	view := m.View()
	for _, want := range []string{"1:Market", "2:Portfolio", "3:Analysis", "next surface", "quit"} {
		if !strings.Contains(view, want) {
			t.Fatalf("expected view to contain %q", want)
		}
	}
}
