package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
)

func TestFormatTicker(t *testing.T) {
	line := FormatTicker(domain.MarketTicker{Symbol: "AAPL", Price: 1234.25, ChangePercent: 1.25, Bid: 1234.4, Ask: 1234.6, Volume: 2_500_000})
	for _, want := range []string{"AAPL", "$1,234", "+1.25%", "2.5M"} {
		if !strings.Contains(line, want) {
			t.Fatalf("expected %q in %q", want, line)
		}
	}
}

func TestFormatRibbonGroupsByRegion(t *testing.T) {
	out := FormatRibbon([]market.RibbonQuote{
		{Region: market.RegionUS, MarketTicker: domain.MarketTicker{Symbol: "SPX", Price: 5000}},
		{Region: market.RegionUS, MarketTicker: domain.MarketTicker{Symbol: "DJI", Price: 39000}},
		{Region: market.RegionEU, MarketTicker: domain.MarketTicker{Symbol: "DAX", Price: 17000}},
	})
	lines := strings.Split(out, "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 region lines, got %d", len(lines))
	}
	if !strings.HasPrefix(lines[0], "US") || !strings.Contains(lines[0], "DJI 39,000") {
		t.Fatalf("unexpected US line %q", lines[0])
	}
}

func TestRenderSparkline(t *testing.T) {
	if RenderSparkline(nil, 10) != "" {
		t.Fatal("expected empty sparkline for no values")
	}
	got := RenderSparkline([]float64{1, 2, 3, 4, 5}, 3)
	if utf8.RuneCountInString(got) != 3 {
		t.Fatalf("expected 3 runes, got %q", got)
	}
	if []rune(got)[0] != '▁' || []rune(got)[2] != '█' {
		t.Fatalf("expected rising sparkline, got %q", got)
	}
	if flat := RenderSparkline([]float64{7, 7}, 0); flat != "▁▁" {
		t.Fatalf("expected flat sparkline, got %q", flat)
	}
}

func TestRenderBarChartClamps(t *testing.T) {
	if !strings.Contains(RenderBarChart("AAPL", 1.5, 10), "150.0%") {
		t.Fatal("expected raw percentage label")
	}
	if strings.Count(RenderBarChart("AAPL", 0.5, 10), "█") != 5 {
		t.Fatal("expected half-filled bar")
	}
}

func TestAddCommas(t *testing.T) {
	if got := addCommas("1234567"); got != "1,234,567" {
		t.Fatalf("expected 1,234,567, got %s", got)
	}
}
