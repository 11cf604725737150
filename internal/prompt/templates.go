package prompt

import (
	"fmt"
	"strings"
	"text/template"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
)

var templateFuncs = template.FuncMap{
	"join": strings.Join,
	"holdings": func(hs []domain.Holding) string {
		lines := make([]string, 0, len(hs))
		for _, h := range hs {
			lines = append(lines, fmt.Sprintf("- %s: %g shares, avg cost %.2f, current price %.2f, market value %.2f",
				h.Ticker, h.Quantity, h.AvgCost, h.CurrentPrice, h.MarketValue))
		}
		return strings.Join(lines, "\n")
	},
	"money": func(v float64) string { return fmt.Sprintf("%.2f", v) },
}

const newsTemplate = `You are a financial news analyst. Search for the latest news about {{.Ticker}} from the past week.
Write a markdown report with these sections:
## Headlines
## Market Impact
## Outlook
State clearly whether the overall tone is bullish, bearish or neutral.`

const yahooFinanceTemplate = `Look up the current Yahoo Finance quote page for {{.Ticker}}.
Summarize in markdown: last price, day range, 52-week range, market cap, P/E ratio, volume versus average,
analyst rating, and the most recent headline. Finish with one sentence on whether the picture is bullish or bearish.`

const fundamentalTemplate = `You are an equity research analyst. Using current public filings and market data, perform a fundamental analysis of {{.Ticker}}.
Cover valuation (P/E, P/S, EV/EBITDA), profitability, balance sheet strength, growth and competitive position.
Rate fundamental strength from 0 to 100.`

const technicalTemplate = `You are a technical analyst. Using the latest daily price action for {{.Ticker}}, assess trend, momentum (RSI, MACD),
moving averages, support and resistance. Propose a trade setup with entry, stop-loss and target prices,
and give the last 10 daily closes as chart data.`

const ideasTemplate = `You are a trading strategist. Based on current market conditions and recent news, propose three actionable trade ideas
related to {{.Ticker}} or its sector. For each idea give the thesis, entry zone, risk and catalyst in markdown.
Say whether your overall bias is bullish or bearish.`

const quantumTemplate = `Act as a quantum-inspired forecasting engine. Model {{.Ticker}} price as a superposition of bullish, bearish and sideways
states over the next 30 days. Describe the probability amplitude of each state, the most likely collapse scenario,
and key decoherence risks, in markdown.`

const clusteringTemplate = `Perform a k-means style clustering of {{.Ticker}} and its closest peers{{if .Params.Peers}} ({{join .Params.Peers ", "}}){{end}}
using return, volatility, valuation and momentum features. Produce 3 to 5 clusters, describe each, and name the cluster containing {{.Ticker}}.`

const backtestTemplate = `Simulate a backtest of the following strategy on {{.Ticker}}.
Strategy: {{.Params.Strategy}}
Period: {{.Params.StartDate}} to {{.Params.EndDate}}
Initial capital: {{money .Params.InitialCapital}}
Use realistic historical prices for the period. Report performance metrics, an equity curve with at least one point per month,
and the individual trades. Every trade type must be Buy or Sell.`

const mlTemplate = `Simulate training a {{.Params.ModelArchitecture}} model to forecast {{.Ticker}} closing prices.
Features: {{join .Params.Features ", "}}
Forecast horizon: {{.Params.PredictionDays}} days.
Report accuracy, RMSE, predicted trend, confidence, the next-day prediction, a series of actual versus predicted prices
and the relative importance of each feature.`

const communityTemplate = `Analyze current community and institutional sentiment for {{.Ticker}} across Reddit, X, StockTwits and recent 13F filings.
Give retail and institutional sentiment gauges from 0 to 100, trending discussion topics with mention counts,
and notable institutional buying or selling.`

const institutionalTemplate = `Produce a deep dive on the institutional investor {{.Params.Institution}}{{if .Ticker}} with particular attention to its position in {{.Ticker}}{{end}}.
Use the most recent 13F filing and public commentary. Describe the strategy, assets under management,
top holdings with weights, recent moves, market outlook and key takeaways.`

const portfolioTemplate = `Apply Modern Portfolio Theory to optimize this portfolio{{if .Params.RiskTolerance}} for a {{.Params.RiskTolerance}} risk tolerance{{end}}:
{{holdings .Params.Holdings}}
Estimate expected return, volatility and Sharpe ratio before and after optimization, sketch the efficient frontier
with 5 to 10 points, suggest rebalancing actions per holding and rate diversification from 0 to 100.`

const fuzzyTemplate = `Run a fuzzy-logic correlation analysis of {{.Ticker}}{{if .Params.Peers}} against {{join .Params.Peers ", "}}{{end}}.
Fuzzify valuation, momentum, volatility and correlation metrics into linguistic labels, give the membership degree of each,
the membership of the stock in Strong Buy, Buy, Hold, Sell and Strong Sell, and an overall score from 0 to 100.`

const layoutInstruction = "\n\nRespond with a single JSON object only, no prose outside it, matching this layout:\n"

func mustTemplate(name, text string) *template.Template {
	return template.Must(template.New(name).Funcs(templateFuncs).Parse(text))
}
