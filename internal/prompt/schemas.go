package prompt

import (
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/schema"
)

func sentimentEnum(description string) *schema.Schema {
	return schema.Enum(description, string(domain.SentimentNeutral),
		string(domain.SentimentBullish), string(domain.SentimentBearish), string(domain.SentimentNeutral))
}

func buySellEnum(description string) *schema.Schema {
	return schema.OpenEnum(description, string(domain.ActionBuy), string(domain.ActionSell))
}

func actionEnum(description string) *schema.Schema {
	return schema.Enum(description, string(domain.ActionHold),
		string(domain.ActionBuy), string(domain.ActionSell), string(domain.ActionHold))
}

func summaryField() schema.Property {
	return schema.Field("summary", schema.String("markdown narrative of the analysis"))
}

func fundamentalSchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("sentiment", sentimentEnum("overall stance")),
		schema.Field("score", schema.Ranged(0, 100, "fundamental strength")),
		schema.Field("metrics", schema.ArrayOf(schema.Object(
			schema.Field("name", schema.String("metric name, e.g. P/E")),
			schema.Field("value", schema.String("display value")),
		))),
	)
}

func technicalSchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("sentiment", sentimentEnum("overall stance")),
		schema.Field("score", schema.Ranged(0, 100, "signal strength")),
		schema.Field("indicators", schema.Object(
			schema.Field("trend", sentimentEnum("prevailing trend")),
			schema.Field("rsi", schema.Ranged(0, 100, "14-day RSI")),
			schema.Field("macd", schema.String("MACD reading")),
			schema.Field("movingAverages", schema.String("50/200-day moving average posture")),
			schema.Field("support", schema.Number("nearest support price")),
			schema.Field("resistance", schema.Number("nearest resistance price")),
		)),
		schema.Field("tradeSetup", schema.Object(
			schema.Field("entry", schema.String("entry price")),
			schema.Field("stopLoss", schema.String("stop-loss price")),
			schema.Field("target", schema.String("target price")),
		)),
		schema.Field("chartData", schema.ArrayOf(schema.Object(
			schema.Field("label", schema.String("period label")),
			schema.Field("value", schema.Number("closing price")),
		))),
	)
}

func communitySchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("retailSentiment", schema.Ranged(0, 100, "retail sentiment gauge")),
		schema.Field("institutionalSentiment", schema.Ranged(0, 100, "institutional sentiment gauge")),
		schema.Field("overallSentiment", sentimentEnum("combined stance")),
		schema.Field("trendingTopics", schema.ArrayOf(schema.Object(
			schema.Field("topic", schema.String("discussion topic")),
			schema.Field("mentions", schema.Integer("mention count")),
			schema.Field("sentiment", sentimentEnum("topic stance")),
			schema.Field("source", schema.String("community source, e.g. Reddit")),
		))),
		schema.Field("institutionalActivity", schema.ArrayOf(schema.Object(
			schema.Field("institution", schema.String("fund name")),
			schema.Field("action", actionEnum("position change")),
			schema.Field("shares", schema.Number("shares traded")),
			schema.Field("date", schema.String("YYYY-MM-DD")),
		))),
	)
}

func institutionalSchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("institution", schema.String("institution name")),
		schema.Field("strategy", schema.String("investment strategy")),
		schema.Field("aum", schema.String("assets under management")),
		schema.Field("topHoldings", schema.ArrayOf(schema.Object(
			schema.Field("ticker", schema.String("symbol")),
			schema.Field("weight", schema.Ranged(0, 100, "portfolio weight percent")),
			schema.Field("changePercent", schema.Number("quarter-over-quarter change percent")),
		))),
		schema.Field("recentMoves", schema.ArrayOf(schema.Object(
			schema.Field("ticker", schema.String("symbol")),
			schema.Field("action", actionEnum("position change")),
			schema.Field("shares", schema.Number("shares traded")),
			schema.Field("date", schema.String("YYYY-MM-DD")),
		))),
		schema.Field("outlook", sentimentEnum("institution market outlook")),
		schema.Field("keyTakeaways", schema.ArrayOf(schema.String("takeaway"))),
	)
}

func clusteringSchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("method", schema.String("clustering method")),
		schema.Field("clusters", schema.ArrayOf(schema.Object(
			schema.Field("name", schema.String("cluster name")),
			schema.Field("description", schema.String("shared traits")),
			schema.Field("members", schema.ArrayOf(schema.String("symbol"))),
			schema.Field("averageReturn", schema.Number("average annual return percent")),
			schema.Field("volatility", schema.Number("annualized volatility percent")),
			schema.Field("riskAssessment", schema.String("risk level")),
		))),
		schema.Field("tickerCluster", schema.String("cluster containing the requested ticker")),
	)
}

func backtestSchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("strategy", schema.String("strategy under test")),
		schema.Field("startDate", schema.String("YYYY-MM-DD")),
		schema.Field("endDate", schema.String("YYYY-MM-DD")),
		schema.Field("metrics", schema.Object(
			schema.Field("totalReturn", schema.Number("total return percent")),
			schema.Field("annualizedReturn", schema.Number("annualized return percent")),
			schema.Field("sharpeRatio", schema.Number("Sharpe ratio")),
			schema.Field("maxDrawdown", schema.Number("maximum drawdown percent")),
			schema.Field("winRate", schema.Ranged(0, 100, "winning trade percent")),
			schema.Field("tradesCount", schema.Integer("number of trades")),
		)),
		schema.Field("equityCurve", schema.ArrayOf(schema.Object(
			schema.Field("date", schema.String("YYYY-MM-DD")),
			schema.Field("value", schema.Number("portfolio value")),
		))),
		schema.Field("trades", schema.ArrayOf(schema.Object(
			schema.Field("date", schema.String("YYYY-MM-DD")),
			schema.Field("type", buySellEnum("trade side")),
			schema.Field("price", schema.Number("fill price")),
			schema.Field("quantity", schema.Number("shares")),
			schema.Field("profit", schema.Number("realized profit")),
		))),
	)
}

func mlSchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("modelArchitecture", schema.String("model architecture")),
		schema.Field("accuracy", schema.Ranged(0, 100, "directional accuracy percent")),
		schema.Field("rmse", schema.Number("root mean squared error")),
		schema.Field("trend", sentimentEnum("predicted direction")),
		schema.Field("confidence", schema.Ranged(0, 100, "confidence percent")),
		schema.Field("nextDayPrediction", schema.Number("next-day closing price")),
		schema.Field("predictions", schema.ArrayOf(schema.Object(
			schema.Field("date", schema.String("YYYY-MM-DD")),
			schema.Field("actual", schema.Number("actual close, 0 for future dates")),
			schema.Field("predicted", schema.Number("predicted close")),
		))),
		schema.Field("featureImportance", schema.ArrayOf(schema.Object(
			schema.Field("feature", schema.String("feature name")),
			schema.Field("importance", schema.Ranged(0, 1, "relative importance")),
		))),
	)
}

func portfolioMetricsSchema(description string) *schema.Schema {
	s := schema.Object(
		schema.Field("expectedReturn", schema.Number("expected annual return percent")),
		schema.Field("volatility", schema.Number("annualized volatility percent")),
		schema.Field("sharpeRatio", schema.Number("Sharpe ratio")),
	)
	return s.Describe(description)
}

func portfolioSchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("currentMetrics", portfolioMetricsSchema("metrics of the current allocation")),
		schema.Field("optimizedMetrics", portfolioMetricsSchema("metrics of the optimized allocation")),
		schema.Field("efficientFrontier", schema.ArrayOf(schema.Object(
			schema.Field("risk", schema.Number("volatility percent")),
			schema.Field("return", schema.Number("expected return percent")),
		))),
		schema.Field("suggestions", schema.ArrayOf(schema.Object(
			schema.Field("ticker", schema.String("symbol")),
			schema.Field("action", actionEnum("rebalancing action")),
			schema.Field("currentWeight", schema.Ranged(0, 100, "current weight percent")),
			schema.Field("targetWeight", schema.Ranged(0, 100, "target weight percent")),
			schema.Field("reason", schema.String("rationale")),
		))),
		schema.Field("diversityScore", schema.Ranged(0, 100, "diversification score")),
	)
}

func fuzzySchema() *schema.Schema {
	return schema.Object(
		summaryField(),
		schema.Field("overallScore", schema.Ranged(0, 100, "aggregate fuzzy score")),
		schema.Field("memberships", schema.ArrayOf(schema.Object(
			schema.Field("label", schema.String("linguistic label, e.g. Strong Buy")),
			schema.Field("degree", schema.Ranged(0, 1, "membership degree")),
		))),
		schema.Field("metrics", schema.ArrayOf(schema.Object(
			schema.Field("metric", schema.String("metric name")),
			schema.Field("value", schema.Number("raw value")),
			schema.Field("membership", schema.Ranged(0, 1, "membership degree")),
			schema.Field("label", schema.String("linguistic label")),
		))),
		schema.Field("peers", schema.ArrayOf(schema.String("peer symbol"))),
	)
}
