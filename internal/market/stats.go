package market

import (
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"

	"gonum.org/v1/gonum/stat"
)

// Summarize computes return and risk figures for an equity history.
func Summarize(history []domain.PortfolioPoint) domain.HistorySummary {
	if len(history) == 0 {
		return domain.HistorySummary{}
	}
	first, last := history[0].Value, history[len(history)-1].Value
	summary := domain.HistorySummary{StartValue: first, EndValue: last}
	if first > 0 {
		summary.TotalReturnPct = (last - first) / first * 100
	}

	returns := make([]float64, 0, len(history)-1)
	for i := 1; i < len(history); i++ {
		if prev := history[i-1].Value; prev > 0 {
			returns = append(returns, history[i].Value/prev-1)
		}
	}
	if len(returns) > 1 {
		summary.MeanDailyReturn, summary.DailyVolatility = stat.MeanStdDev(returns, nil)
	} else if len(returns) == 1 {
		summary.MeanDailyReturn = returns[0]
	}

	peak := first
	for _, p := range history {
		if p.Value > peak {
			peak = p.Value
		}
		if peak > 0 {
			if dd := (peak - p.Value) / peak * 100; dd > summary.MaxDrawdownPct {
				summary.MaxDrawdownPct = dd
			}
		}
	}
	return summary
}
