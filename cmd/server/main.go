package main

import (
	"context"
	"net/http"
	"os"
	ossignal "os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/bot"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/cache"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/config"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/handler"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/job"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/llm"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/prompt"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/pkg/logger"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.opentelemetry.io/otel/trace"

	_ "github.com/gide12/Gemini-Trading-Support-advisor-sub000/docs"
)

var (
	loadEnvFunc            = godotenv.Load
	loadConfigFunc         = config.Load
	initRedisFunc          = cache.InitRedis
	initTracerFunc         = tracing.InitTracer
	newModelClientFunc     = newModelClient
	newAnalysisServiceFunc = service.NewAnalysisService
	newDeskFunc            = newDesk
	startSchedulerFunc     = startScheduler
	startDriverFunc        = func(d *job.MarketDriver, ctx context.Context) { go d.Start(ctx) }
	startWatcherFunc       = func(w *job.AnomalyWatcher, ctx context.Context) { go w.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newHandlerFunc         = handler.New
	newRouterFunc          = gin.Default
	setupSignalNotify      = ossignal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Trading Insight API
// @version         1.0
// @description     AI-backed equity analysis over a simulated market.

// @host      localhost:8080
// @BasePath  /
func main() {
	_ = loadEnvFunc()

	cfg := loadConfigFunc()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
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

	analysis := newAnalysisServiceFunc(
		tracer,
		newModelClientFunc(tracer, cfg),
		prompt.NewRegistry(),
		generations,
		time.Duration(cfg.AnalysisTimeoutSecs)*time.Second,
		log,
	)

	// One scheduler drives the desk; the stream and the watcher follow it.
	desk := newDeskFunc(cfg)
	scheduler := job.NewTickScheduler(time.Duration(cfg.MarketTickSecs)*time.Second, log)
	driver := job.NewMarketDriver(tracer, desk, scheduler, log)

	alerts, err := startTelegramBotFunc(cfg.TelegramBotToken, analysis, desk, log)
	if err != nil {
		log.Error().Err(err).Msg("telegram bot disabled")
	}
	var notifier job.AnomalyNotifier
	if alerts != nil {
		notifier = alerts
	}
	watcher := job.NewAnomalyWatcher(tracer, desk, notifier, scheduler, job.DefaultAnomalyEvery, log)

	startDriverFunc(driver, ctx)
	startWatcherFunc(watcher, ctx)
	startSchedulerFunc(scheduler, ctx)

	h := newHandlerFunc(tracer, analysis, desk, driver, log)

	r := newRouterFunc()
	r.Use(otelgin.Middleware(tracing.DefaultServiceName))
	r.Use(handler.CORS(cfg.CORSAllowedOrigins))

	h.RegisterRoutes(r)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:    httpAddr(cfg.Port),
		Handler: r,
	}

	go func() {
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen failed")
		}
	}()
	log.Info().Str("addr", srv.Addr).Str("provider", cfg.LLMProvider).Msg("server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("shutting down server")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exiting")
}

func httpAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func newModelClient(tracer trace.Tracer, cfg *config.Config) service.ModelClient {
	return llm.NewClient(tracer, cfg.LLMProvider, cfg.APIKey(), cfg.Model(), cfg.BaseURL())
}

func newDesk(cfg *config.Config) *market.Desk {
	return market.NewSeededDesk(cfg.MarketSeed, market.DefaultScreenerOptions().
		Override(cfg.ScreenerTrees, cfg.ScreenerSampleSize, cfg.ScreenerThreshold))
}

func startScheduler(s *job.TickScheduler, ctx context.Context) {
	go func() {
		if err := s.Start(ctx); err != nil {
			zerolog.Ctx(ctx).Error().Err(err).Msg("tick scheduler failed")
		}
	}()
}
