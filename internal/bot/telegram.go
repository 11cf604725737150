package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"

	"github.com/rs/zerolog"
	tele "gopkg.in/telebot.v3"
)

const maxReplyLen = 4000

type Analyzer interface {
	Analyze(ctx context.Context, req domain.AnalysisRequest) (*domain.AnalysisResult, error)
	Capabilities() []service.CapabilityInfo
}

type MarketView interface {
	Lookup(symbol string) (domain.MarketTicker, bool)
	Holdings() []domain.Holding
}

// StartTelegramBot registers the command handlers and starts long polling in
// the background. It returns nil when no token is configured.
func StartTelegramBot(token string, analyzer Analyzer, markets MarketView, log zerolog.Logger) (*AlertDispatcher, error) {
	log = log.With().Str("component", "telegram").Logger()
	if token == "" {
		log.Info().Msg("TELEGRAM_BOT_TOKEN not set, skipping Telegram bot startup")
		return nil, nil
	}
	b, err := tele.NewBot(tele.Settings{
		Token:  token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	})
	if err != nil {
		return nil, fmt.Errorf("create Telegram bot: %w", err)
	}
	alerts := NewAlertDispatcher(b)

	b.Handle("/ping", func(c tele.Context) error {
		return c.Send("pong")
	})

	b.Handle("/quote", func(c tele.Context) error {
		return c.Send(quoteReply(markets, c.Args()))
	})

	b.Handle("/analyze", func(c tele.Context) error {
		_ = c.Notify(tele.Typing)
		return c.Send(analyzeReply(context.Background(), analyzer, c.Args(), log))
	})

	b.Handle("/portfolio", func(c tele.Context) error {
		return c.Send(portfolioReply(markets))
	})

	b.Handle("/capabilities", func(c tele.Context) error {
		return c.Send(capabilitiesReply(analyzer))
	})

	b.Handle("/alerts", func(c tele.Context) error {
		chat := c.Chat()
		if chat == nil {
			return c.Send("Unable to detect chat")
		}

		cmd, err := parseAlertCommand(c.Args())
		if err != nil {
			return c.Send("Usage: /alerts on [min score 0-1] | /alerts off | /alerts status")
		}

		switch cmd.mode {
		case "on":
			if alerts.Subscribe(chat.ID, cmd.floor) {
				return c.Send("Screener anomaly alerts enabled for this chat.")
			}
			return c.Send(alertStatus(alerts.Subscription(chat.ID)))
		case "off":
			if alerts.Unsubscribe(chat.ID) {
				return c.Send("Screener anomaly alerts disabled for this chat.")
			}
			return c.Send("Screener anomaly alerts are already disabled for this chat.")
		default:
			return c.Send(alertStatus(alerts.Subscription(chat.ID)))
		}
	})

	log.Info().Msg("Telegram bot started")
	go b.Start()
	return alerts, nil
}

func quoteReply(markets MarketView, args []string) string {
	if len(args) == 0 {
		return "Usage: /quote AAPL"
	}
	if markets == nil {
		return "Market data unavailable"
	}
	symbol := domain.NormalizeSymbol(args[0])
	t, ok := markets.Lookup(symbol)
	if !ok {
		return fmt.Sprintf("Unknown symbol: %s", symbol)
	}
	return fmt.Sprintf(
		"%s %s\nPrice: $%.2f\nChange: %+.2f (%+.2f%%)\nBid/Ask: %.2f / %.2f\nVolume: %d",
		t.Symbol, t.Name, t.Price, t.Change, t.ChangePercent, t.Bid, t.Ask, t.Volume,
	)
}

func analyzeReply(ctx context.Context, analyzer Analyzer, args []string, log zerolog.Logger) string {
	if analyzer == nil {
		return "Analysis service unavailable"
	}
	req, err := parseAnalyzeArgs(args)
	if err != nil {
		return "Usage: /analyze CAPABILITY TICKER\nExample: /analyze technical AAPL\nSee /capabilities"
	}

	result, err := analyzer.Analyze(ctx, req)
	if err != nil {
		log.Warn().Err(err).Str("capability", string(req.Capability)).Msg("bot analysis failed")
		var ce *service.CapabilityError
		if errors.As(err, &ce) {
			return err.Error()
		}
		return fmt.Sprintf("%s failed: %v", req.Capability.Label(), err)
	}
	return truncate(formatResult(result))
}

func portfolioReply(markets MarketView) string {
	if markets == nil {
		return "Market data unavailable"
	}
	holdings := markets.Holdings()
	if len(holdings) == 0 {
		return "Portfolio is empty."
	}
	lines := make([]string, 0, len(holdings)+2)
	lines = append(lines, "Portfolio:")
	total := 0.0
	for _, h := range holdings {
		total += h.MarketValue
		lines = append(lines, fmt.Sprintf("%s %g @ %.2f = $%.2f (%+.2f%%)", h.Ticker, h.Quantity, h.CurrentPrice, h.MarketValue, h.PnLPercent))
	}
	lines = append(lines, fmt.Sprintf("Total: $%.2f", total))
	return strings.Join(lines, "\n")
}

func capabilitiesReply(analyzer Analyzer) string {
	if analyzer == nil {
		return "Analysis service unavailable"
	}
	lines := []string{"Capabilities:"}
	for _, c := range analyzer.Capabilities() {
		lines = append(lines, fmt.Sprintf("%s (%s)", c.Capability, c.Label))
	}
	return strings.Join(lines, "\n")
}

func parseAnalyzeArgs(args []string) (domain.AnalysisRequest, error) {
	if len(args) < 2 {
		return domain.AnalysisRequest{}, errors.New("capability and ticker are required")
	}
	capability, err := domain.ParseCapability(args[0])
	if err != nil {
		return domain.AnalysisRequest{}, err
	}
	req := domain.AnalysisRequest{
		Ticker:     domain.NormalizeSymbol(args[1]),
		Capability: capability,
		View:       "telegram",
	}
	if capability == domain.CapabilityFuzzyCorrelation && len(args) > 2 {
		req.Params.Peers = args[2:]
	}
	return req, nil
}

func formatResult(r *domain.AnalysisResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %s", r.Capability.Label(), r.Ticker)
	if r.Sentiment != "" {
		fmt.Fprintf(&b, "\nSentiment: %s", r.Sentiment)
	}
	if r.Score != nil {
		fmt.Fprintf(&b, " (score %.0f)", *r.Score)
	}
	if r.Backtest != nil {
		m := r.Backtest.Metrics
		fmt.Fprintf(&b, "\nReturn %.2f%%, Sharpe %.2f, max drawdown %.2f%%, %d trades", m.TotalReturn, m.SharpeRatio, m.MaxDrawdown, m.TradesCount)
	}
	if r.Content != "" {
		b.WriteString("\n\n")
		b.WriteString(r.Content)
	}
	if len(r.Sources) > 0 {
		b.WriteString("\n\nSources:")
		for i, s := range r.Sources {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "\n- %s %s", s.Title, s.URL)
		}
	}
	return b.String()
}

func truncate(reply string) string {
	if len(reply) > maxReplyLen {
		return reply[:maxReplyLen] + "\n\n[truncated]"
	}
	return reply
}
