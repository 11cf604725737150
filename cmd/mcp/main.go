package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/cache"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/config"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/job"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/llm"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	mcpserver "github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/mcp"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/prompt"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/pkg/logger"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/pkg/tracing"

	"github.com/joho/godotenv"
	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

const defaultMCPHTTPMaxBodyBytes int64 = 1 << 20 // 1MiB

var (
	loadEnvFunc          = godotenv.Load
	loadConfigFunc       = config.Load
	initRedisFunc        = cache.InitRedis
	initTracerFunc       = tracing.InitTracer
	newModelClientFunc   = newModelClient
	newMCPServerFunc     = mcpserver.NewServer
	newMCPHandlerFunc    = mcpserver.NewHTTPTransportHandler
	startMarketFunc      = startMarket
	runStdioFunc         = runStdio
	startHTTPServerFunc  = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFn = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify    = ossignal.Notify
	waitForSignalFunc    = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	// stdout carries the stdio protocol.
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Output: os.Stderr})
	logger.SetGlobalLogger(log)

	ctx, cancel := context.WithCancel(log.WithContext(context.Background()))
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	var generations service.GenerationTracker = cache.NewMemoryGenerations()
	if cfg.RedisURL != "" {
		rdb, err := initRedisFunc(ctx, cfg.RedisURL, log)
		if err != nil {
			log.Warn().Err(err).Msg("redis unavailable, keeping request generations in memory")
		} else {
			defer rdb.Close()
			generations = cache.NewRedisGenerations(rdb)
		}
	}

	analysis := service.NewAnalysisService(
		tracer,
		newModelClientFunc(tracer, cfg),
		prompt.NewRegistry(),
		generations,
		time.Duration(cfg.AnalysisTimeoutSecs)*time.Second,
		log,
	)

	desk := market.NewSeededDesk(cfg.MarketSeed, market.DefaultScreenerOptions().
		Override(cfg.ScreenerTrees, cfg.ScreenerSampleSize, cfg.ScreenerThreshold))
	startMarketFunc(ctx, tracer, desk, time.Duration(cfg.MarketTickSecs)*time.Second, log)

	mcpSrv := newMCPServerFunc(tracer, analysis, desk, mcpserver.ServerConfig{
		RequestTimeout: time.Duration(cfg.MCPRequestTimeoutSecs) * time.Second,
		Log:            log,
	})

	transport := strings.ToLower(strings.TrimSpace(cfg.MCPTransport))
	switch transport {
	case "", "stdio":
		if err := runStdioFunc(ctx, mcpSrv); err != nil {
			log.Fatal().Err(err).Msg("mcp stdio server failed")
		}
	case "http":
		if err := runHTTPMode(ctx, cancel, cfg, mcpSrv, log); err != nil {
			log.Fatal().Err(err).Msg("mcp http server failed")
		}
	default:
		log.Fatal().Str("transport", cfg.MCPTransport).Msg("unsupported MCP_TRANSPORT")
	}
}

func newModelClient(tracer trace.Tracer, cfg *config.Config) service.ModelClient {
	return llm.NewClient(tracer, cfg.LLMProvider, cfg.APIKey(), cfg.Model(), cfg.BaseURL())
}

func runStdio(ctx context.Context, server *sdkmcp.Server) error {
	return server.Run(ctx, &sdkmcp.StdioTransport{})
}

// startMarket keeps the desk moving so quotes served over MCP are live.
func startMarket(ctx context.Context, tracer trace.Tracer, desk *market.Desk, interval time.Duration, log zerolog.Logger) {
	scheduler := job.NewTickScheduler(interval, log)
	driver := job.NewMarketDriver(tracer, desk, scheduler, log)
	go driver.Start(ctx)
	go func() {
		if err := scheduler.Start(ctx); err != nil {
			log.Error().Err(err).Msg("tick scheduler failed")
		}
	}()
}

func runHTTPMode(ctx context.Context, cancel context.CancelFunc, cfg *config.Config, mcpSrv *sdkmcp.Server, log zerolog.Logger) error {
	if !cfg.MCPHTTPEnabled {
		return fmt.Errorf("MCP_HTTP_ENABLED must be true when MCP_TRANSPORT=http")
	}
	if strings.TrimSpace(cfg.MCPAuthToken) == "" {
		return fmt.Errorf("MCP_AUTH_TOKEN is required when MCP_TRANSPORT=http")
	}

	handler := newMCPHandlerFunc(mcpSrv, mcpserver.HTTPHandlerConfig{
		AuthToken:       cfg.MCPAuthToken,
		RateLimitPerMin: cfg.MCPRateLimitPerMin,
		MaxBodyBytes:    defaultMCPHTTPMaxBodyBytes,
	})

	addr := net.JoinHostPort(cfg.MCPHTTPBind, fmt.Sprintf("%d", cfg.MCPHTTPPort))
	srv := &http.Server{Addr: addr, Handler: handler}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("mcp http server failed")
		}
	}()
	log.Info().Str("addr", addr).Msg("mcp http server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFn(srv, shutdownCtx); err != nil {
		return fmt.Errorf("mcp server forced to shutdown: %w", err)
	}
	return nil
}
