package domain

import "time"

type SourceCitation struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type ChartPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

type TradeSetup struct {
	Entry    string `json:"entry"`
	StopLoss string `json:"stopLoss"`
	Target   string `json:"target"`
}

type TechnicalIndicators struct {
	Trend          Sentiment `json:"trend"`
	RSI            float64   `json:"rsi"`
	MACD           string    `json:"macd"`
	MovingAverages string    `json:"movingAverages"`
	Support        float64   `json:"support"`
	Resistance     float64   `json:"resistance"`
}

type Cluster struct {
	Name           string   `json:"name"`
	Description    string   `json:"description"`
	Members        []string `json:"members"`
	AverageReturn  float64  `json:"averageReturn"`
	Volatility     float64  `json:"volatility"`
	RiskAssessment string   `json:"riskAssessment"`
}

type ClusteringResult struct {
	Method        string    `json:"method"`
	Clusters      []Cluster `json:"clusters"`
	TickerCluster string    `json:"tickerCluster"`
}

type BacktestMetrics struct {
	TotalReturn      float64 `json:"totalReturn"`
	AnnualizedReturn float64 `json:"annualizedReturn"`
	SharpeRatio      float64 `json:"sharpeRatio"`
	MaxDrawdown      float64 `json:"maxDrawdown"`
	WinRate          float64 `json:"winRate"`
	TradesCount      int     `json:"tradesCount"`
}

type EquityPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type Trade struct {
	Date     string      `json:"date"`
	Type     TradeAction `json:"type"`
	Price    float64     `json:"price"`
	Quantity float64     `json:"quantity"`
	Profit   float64     `json:"profit"`
}

type BacktestResult struct {
	Strategy    string          `json:"strategy"`
	StartDate   string          `json:"startDate"`
	EndDate     string          `json:"endDate"`
	Metrics     BacktestMetrics `json:"metrics"`
	EquityCurve []EquityPoint   `json:"equityCurve"`
	Trades      []Trade         `json:"trades"`
}

type PredictionPoint struct {
	Date      string  `json:"date"`
	Actual    float64 `json:"actual"`
	Predicted float64 `json:"predicted"`
}

type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

type MLPredictionResult struct {
	ModelArchitecture  string              `json:"modelArchitecture"`
	Accuracy           float64             `json:"accuracy"`
	RMSE               float64             `json:"rmse"`
	Trend              Sentiment           `json:"trend"`
	Confidence         float64             `json:"confidence"`
	NextDayPrediction  float64             `json:"nextDayPrediction"`
	Predictions        []PredictionPoint   `json:"predictions"`
	FeatureImportances []FeatureImportance `json:"featureImportance"`
}

type TrendingTopic struct {
	Topic     string    `json:"topic"`
	Mentions  int       `json:"mentions"`
	Sentiment Sentiment `json:"sentiment"`
	Source    string    `json:"source"`
}

type InstitutionalMove struct {
	Institution string      `json:"institution"`
	Action      TradeAction `json:"action"`
	Shares      float64     `json:"shares"`
	Date        string      `json:"date"`
}

type CommunityInsight struct {
	RetailSentiment        float64             `json:"retailSentiment"`
	InstitutionalSentiment float64             `json:"institutionalSentiment"`
	OverallSentiment       Sentiment           `json:"overallSentiment"`
	TrendingTopics         []TrendingTopic     `json:"trendingTopics"`
	InstitutionalActivity  []InstitutionalMove `json:"institutionalActivity"`
}

type InstitutionHolding struct {
	Ticker        string  `json:"ticker"`
	Weight        float64 `json:"weight"`
	ChangePercent float64 `json:"changePercent"`
}

type InstitutionTrade struct {
	Ticker string      `json:"ticker"`
	Action TradeAction `json:"action"`
	Shares float64     `json:"shares"`
	Date   string      `json:"date"`
}

type InstitutionalReport struct {
	Institution  string               `json:"institution"`
	Strategy     string               `json:"strategy"`
	AUM          string               `json:"aum"`
	TopHoldings  []InstitutionHolding `json:"topHoldings"`
	RecentMoves  []InstitutionTrade   `json:"recentMoves"`
	Outlook      Sentiment            `json:"outlook"`
	KeyTakeaways []string             `json:"keyTakeaways"`
}

type PortfolioMetrics struct {
	ExpectedReturn float64 `json:"expectedReturn"`
	Volatility     float64 `json:"volatility"`
	SharpeRatio    float64 `json:"sharpeRatio"`
}

type FrontierPoint struct {
	Risk   float64 `json:"risk"`
	Return float64 `json:"return"`
}

type RebalanceSuggestion struct {
	Ticker        string      `json:"ticker"`
	Action        TradeAction `json:"action"`
	CurrentWeight float64     `json:"currentWeight"`
	TargetWeight  float64     `json:"targetWeight"`
	Reason        string      `json:"reason"`
}

type PortfolioOptimization struct {
	CurrentMetrics    PortfolioMetrics      `json:"currentMetrics"`
	OptimizedMetrics  PortfolioMetrics      `json:"optimizedMetrics"`
	EfficientFrontier []FrontierPoint       `json:"efficientFrontier"`
	Suggestions       []RebalanceSuggestion `json:"suggestions"`
	DiversityScore    float64               `json:"diversityScore"`
}

type FuzzyMembership struct {
	Label  string  `json:"label"`
	Degree float64 `json:"degree"`
}

type FuzzyMetric struct {
	Metric     string  `json:"metric"`
	Value      float64 `json:"value"`
	Membership float64 `json:"membership"`
	Label      string  `json:"label"`
}

type FuzzyAnalysis struct {
	OverallScore float64           `json:"overallScore"`
	Memberships  []FuzzyMembership `json:"memberships"`
	Metrics      []FuzzyMetric     `json:"metrics"`
	Peers        []string          `json:"peers"`
}

// AnalysisResult is the typed, UI-safe output of one orchestrator call. Only
// the blocks defined by the capability are populated.
type AnalysisResult struct {
	RequestID   string     `json:"requestId"`
	Ticker      string     `json:"ticker"`
	Capability  Capability `json:"capability"`
	Content     string     `json:"content"`
	GeneratedAt time.Time  `json:"generatedAt"`

	Sentiment     Sentiment              `json:"sentiment,omitempty"`
	Score         *float64               `json:"score,omitempty"`
	ChartData     []ChartPoint           `json:"chartData,omitempty"`
	Sources       []SourceCitation       `json:"sources,omitempty"`
	TradeSetup    *TradeSetup            `json:"tradeSetup,omitempty"`
	Metrics       map[string]string      `json:"metrics,omitempty"`
	Technical     *TechnicalIndicators   `json:"technical,omitempty"`
	Clustering    *ClusteringResult      `json:"clustering,omitempty"`
	Backtest      *BacktestResult        `json:"backtest,omitempty"`
	ML            *MLPredictionResult    `json:"ml,omitempty"`
	Community     *CommunityInsight      `json:"community,omitempty"`
	Institutional *InstitutionalReport   `json:"institutional,omitempty"`
	Portfolio     *PortfolioOptimization `json:"portfolio,omitempty"`
	Fuzzy         *FuzzyAnalysis         `json:"fuzzy,omitempty"`
}
