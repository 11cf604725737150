package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

type Config struct {
	Port string

	LLMProvider   string
	GeminiAPIKey  string
	GeminiModel   string
	GeminiBaseURL string
	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	AnalysisTimeoutSecs int
	MarketTickSecs      int
	MarketSeed          uint64

	ScreenerTrees      int
	ScreenerSampleSize int
	ScreenerThreshold  float64

	RedisURL           string
	TelegramBotToken   string
	CORSAllowedOrigins []string

	MCPTransport          string
	MCPHTTPEnabled        bool
	MCPHTTPBind           string
	MCPHTTPPort           int
	MCPAuthToken          string
	MCPRequestTimeoutSecs int
	MCPRateLimitPerMin    int

	TUISSHAddr        string
	TUIHostKeyPath    string
	TUIAuthorizedKeys string
	TUILogFile        string

	LogLevel  string
	LogPretty bool
}

// Load reads configuration from the environment. Invalid values fall back to
// defaults with a warning. A missing model API key is not fatal here; it
// surfaces on the first analysis request.
func Load() *Config {
	cfg := &Config{
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		RedisURL:         strings.TrimSpace(os.Getenv("REDIS_URL")),
		MCPAuthToken:     os.Getenv("MCP_AUTH_TOKEN"),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiBaseURL:    strings.TrimSpace(os.Getenv("GEMINI_BASE_URL")),
		OpenAIAPIKey:     os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL:    strings.TrimSpace(os.Getenv("OPENAI_BASE_URL")),
	}

	cfg.Port = strings.TrimSpace(os.Getenv("PORT"))
	if cfg.Port == "" {
		cfg.Port = "8080"
	}

	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(os.Getenv("LLM_PROVIDER")))
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = ProviderGemini
	}
	if cfg.LLMProvider != ProviderGemini && cfg.LLMProvider != ProviderOpenAI {
		log.Warn().Str("value", cfg.LLMProvider).Msg("unsupported LLM_PROVIDER, defaulting to gemini")
		cfg.LLMProvider = ProviderGemini
	}

	cfg.GeminiModel = strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if cfg.GeminiModel == "" {
		cfg.GeminiModel = "gemini-2.5-flash"
	}
	cfg.OpenAIModel = strings.TrimSpace(os.Getenv("OPENAI_MODEL"))
	if cfg.OpenAIModel == "" {
		cfg.OpenAIModel = "gpt-4o-mini"
	}

	if cfg.APIKey() == "" {
		log.Warn().Str("provider", cfg.LLMProvider).Msg("model API key not set, analysis requests will fail")
	}
	if cfg.TelegramBotToken == "" {
		log.Warn().Msg("TELEGRAM_BOT_TOKEN not set")
	}
	if cfg.RedisURL == "" {
		log.Warn().Msg("REDIS_URL not set, request generations are kept in memory")
	}

	cfg.AnalysisTimeoutSecs = positiveInt("ANALYSIS_TIMEOUT_SECS", 60)
	cfg.MarketTickSecs = positiveInt("MARKET_TICK_SECS", 2)

	cfg.MarketSeed = 0
	if v := strings.TrimSpace(os.Getenv("MARKET_SEED")); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			cfg.MarketSeed = n
		} else {
			log.Warn().Str("value", v).Msg("invalid MARKET_SEED, using a random seed")
		}
	}

	cfg.ScreenerTrees = positiveInt("SCREENER_IFOREST_TREES", 100)
	cfg.ScreenerSampleSize = positiveInt("SCREENER_IFOREST_SAMPLE_SIZE", 128)
	cfg.ScreenerThreshold = 0.6
	if v := strings.TrimSpace(os.Getenv("SCREENER_ANOMALY_THRESHOLD")); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 && n < 1 {
			cfg.ScreenerThreshold = n
		} else {
			log.Warn().Str("value", v).Msg("invalid SCREENER_ANOMALY_THRESHOLD, using 0.6")
		}
	}

	cfg.CORSAllowedOrigins = parseList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	if len(cfg.CORSAllowedOrigins) == 0 {
		cfg.CORSAllowedOrigins = []string{"*"}
	}

	cfg.MCPTransport = strings.ToLower(strings.TrimSpace(os.Getenv("MCP_TRANSPORT")))
	if cfg.MCPTransport == "" {
		cfg.MCPTransport = "stdio"
	}
	if cfg.MCPTransport != "stdio" && cfg.MCPTransport != "http" {
		log.Warn().Str("value", cfg.MCPTransport).Msg("unsupported MCP_TRANSPORT, defaulting to stdio")
		cfg.MCPTransport = "stdio"
	}

	cfg.MCPHTTPEnabled = strings.EqualFold(strings.TrimSpace(os.Getenv("MCP_HTTP_ENABLED")), "true")

	cfg.MCPHTTPBind = strings.TrimSpace(os.Getenv("MCP_HTTP_BIND"))
	if cfg.MCPHTTPBind == "" {
		cfg.MCPHTTPBind = "127.0.0.1"
	}

	cfg.MCPHTTPPort = positiveInt("MCP_HTTP_PORT", 8090)
	cfg.MCPRequestTimeoutSecs = positiveInt("MCP_REQUEST_TIMEOUT_SECS", 90)
	cfg.MCPRateLimitPerMin = positiveInt("MCP_RATE_LIMIT_PER_MIN", 60)

	cfg.TUISSHAddr = strings.TrimSpace(os.Getenv("TUI_SSH_ADDR"))
	cfg.TUIHostKeyPath = strings.TrimSpace(os.Getenv("TUI_SSH_HOST_KEY"))
	if cfg.TUIHostKeyPath == "" {
		cfg.TUIHostKeyPath = ".ssh/tui_ed25519"
	}
	cfg.TUIAuthorizedKeys = strings.TrimSpace(os.Getenv("TUI_AUTHORIZED_KEYS"))
	cfg.TUILogFile = strings.TrimSpace(os.Getenv("TUI_LOG_FILE"))
	if cfg.TUILogFile == "" {
		cfg.TUILogFile = "tui.log"
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	cfg.LogPretty = strings.EqualFold(strings.TrimSpace(os.Getenv("LOG_PRETTY")), "true")

	return cfg
}

// APIKey returns the credential of the selected provider.
func (c *Config) APIKey() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIAPIKey
	}
	return c.GeminiAPIKey
}

// Model returns the model name of the selected provider.
func (c *Config) Model() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIModel
	}
	return c.GeminiModel
}

// BaseURL returns the endpoint override of the selected provider, if any.
func (c *Config) BaseURL() string {
	if c.LLMProvider == ProviderOpenAI {
		return c.OpenAIBaseURL
	}
	return c.GeminiBaseURL
}

func positiveInt(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		log.Warn().Str("key", key).Str("value", v).Int("default", def).Msg("invalid value, using default")
		return def
	}
	return n
}

func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		v := strings.TrimSpace(part)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
