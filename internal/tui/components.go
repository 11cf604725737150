package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"

	"github.com/charmbracelet/lipgloss"
)

// FormatTicker renders a quote as a single line.
func FormatTicker(t domain.MarketTicker) string {
	return fmt.Sprintf("%-7s %10s  %s  %9s / %-9s  Vol: %s",
		t.Symbol,
		formatUSD(t.Price),
		changeStyle(t.ChangePercent).Render(fmt.Sprintf("%+.2f%%", t.ChangePercent)),
		fmt.Sprintf("%.2f", t.Bid),
		fmt.Sprintf("%.2f", t.Ask),
		formatVolume(float64(t.Volume)),
	)
}

// FormatRibbon renders the index strip as one line per region.
func FormatRibbon(quotes []market.RibbonQuote) string {
	byRegion := make(map[market.Region][]string)
	var order []market.Region
	for _, q := range quotes {
		if _, seen := byRegion[q.Region]; !seen {
			order = append(order, q.Region)
		}
		byRegion[q.Region] = append(byRegion[q.Region], fmt.Sprintf("%s %s %s",
			q.Symbol,
			addCommas(fmt.Sprintf("%.0f", q.Price)),
			changeStyle(q.ChangePercent).Render(fmt.Sprintf("%+.2f%%", q.ChangePercent)),
		))
	}
	lines := make([]string, 0, len(order))
	for _, region := range order {
		lines = append(lines, fmt.Sprintf("%-5s %s", region, strings.Join(byRegion[region], "   ")))
	}
	return strings.Join(lines, "\n")
}

// FormatHolding renders a holding as a single line.
func FormatHolding(h domain.Holding) string {
	return fmt.Sprintf("%-6s %8g  %10s  %10s  %12s  %s",
		h.Ticker,
		h.Quantity,
		formatUSD(h.AvgCost),
		formatUSD(h.CurrentPrice),
		formatUSD(h.MarketValue),
		changeStyle(h.PnLPercent).Render(fmt.Sprintf("%+.2f (%+.2f%%)", h.PnL, h.PnLPercent)),
	)
}

// RenderHeatMap renders a colored grid showing the change of each symbol.
func RenderHeatMap(tickers []domain.MarketTicker, width int) string {
	if len(tickers) == 0 {
		return SubtextStyle.Render("No quotes")
	}

	cellWidth := 8
	cols := width / cellWidth
	if cols < 1 {
		cols = 1
	}

	var rows []string
	var row []string
	for i, t := range tickers {
		bg := HeatNeutral
		if t.ChangePercent > 0 {
			bg = heatColorScale(t.ChangePercent, 3, HeatGreen)
		} else if t.ChangePercent < 0 {
			bg = heatColorScale(-t.ChangePercent, 3, HeatRed)
		}

		cell := lipgloss.NewStyle().
			Background(bg).
			Foreground(lipgloss.Color("#000000")).
			Bold(true).
			Width(cellWidth - 1).
			Align(lipgloss.Center).
			Render(t.Symbol)

		row = append(row, cell)
		if (i+1)%cols == 0 || i == len(tickers)-1 {
			rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, row...))
			row = nil
		}
	}

	return strings.Join(rows, "\n")
}

// RenderBarChart renders an ASCII bar for a weight in [0,1].
func RenderBarChart(label string, weight float64, barWidth int) string {
	if barWidth <= 0 {
		barWidth = 20
	}
	filled := int(math.Round(weight * float64(barWidth)))
	if filled > barWidth {
		filled = barWidth
	}
	if filled < 0 {
		filled = 0
	}
	empty := barWidth - filled

	style := WeightLowStyle
	if weight >= 0.4 {
		style = WeightHighStyle
	} else if weight >= 0.2 {
		style = WeightMidStyle
	}

	bar := style.Render(strings.Repeat("█", filled)) + SubtextStyle.Render(strings.Repeat("░", empty))
	return fmt.Sprintf("%-8s %s %.1f%%", label, bar, weight*100)
}

var sparkBlocks = []rune("▁▂▃▄▅▆▇█")

// RenderSparkline scales values onto block characters, keeping the last
// width points.
func RenderSparkline(values []float64, width int) string {
	if len(values) == 0 {
		return ""
	}
	if width > 0 && len(values) > width {
		values = values[len(values)-width:]
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	var b strings.Builder
	for _, v := range values {
		idx := 0
		if hi > lo {
			idx = int(math.Round((v - lo) / (hi - lo) * float64(len(sparkBlocks)-1)))
		}
		b.WriteRune(sparkBlocks[idx])
	}
	return b.String()
}

// SentimentStyle picks the color for a sentiment label.
func SentimentStyle(s domain.Sentiment) lipgloss.Style {
	switch s {
	case domain.SentimentBullish:
		return BullishStyle
	case domain.SentimentBearish:
		return BearishStyle
	default:
		return NeutralStyle
	}
}

func changeStyle(pct float64) lipgloss.Style {
	switch {
	case pct > 0:
		return PriceUpStyle
	case pct < 0:
		return PriceDownStyle
	default:
		return PriceZeroStyle
	}
}

// heatColorScale produces a color scaled by magnitude.
func heatColorScale(magnitude, maxMagnitude float64, baseColor lipgloss.Color) lipgloss.Color {
	intensity := magnitude / maxMagnitude
	if intensity > 1 {
		intensity = 1
	}
	if intensity < 0.1 {
		return HeatNeutral
	}
	return baseColor
}

func formatUSD(v float64) string {
	if v >= 1000 {
		return "$" + addCommas(fmt.Sprintf("%.0f", v))
	}
	if v >= 1 {
		return fmt.Sprintf("$%.2f", v)
	}
	return fmt.Sprintf("$%.4f", v)
}

func addCommas(s string) string {
	n := len(s)
	if n <= 3 {
		return s
	}
	var result strings.Builder
	for i, ch := range s {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteByte(',')
		}
		result.WriteRune(ch)
	}
	return result.String()
}

func formatVolume(v float64) string {
	switch {
	case v >= 1e12:
		return fmt.Sprintf("%.1fT", v/1e12)
	case v >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
