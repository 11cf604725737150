package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	ossignal "os/signal"
	"syscall"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/cache"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/config"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/llm"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/prompt"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/repository"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/tui"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/pkg/logger"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/pkg/tracing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	bm "github.com/charmbracelet/wish/bubbletea"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc           = godotenv.Load
	loadConfigFunc        = config.Load
	openLogFileFunc       = openLogFile
	initRedisFunc         = cache.InitRedis
	initTracerFunc        = tracing.InitTracer
	newModelClientFunc    = newModelClient
	runLocalFunc          = runLocal
	newSSHServerFunc      = newSSHServer
	startSSHServerFunc    = func(srv *ssh.Server) error { return srv.ListenAndServe() }
	shutdownSSHServerFunc = func(srv *ssh.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
	setupSignalNotify     = ossignal.Notify
	waitForSignalFunc     = func(quit <-chan os.Signal) { <-quit }
)

func main() {
	_ = loadEnvFunc()
	cfg := loadConfigFunc()

	// The terminal belongs to the program, so logs go to a file.
	out, closeLog := openLogFileFunc(cfg.TUILogFile)
	defer closeLog()
	log := logger.New(logger.Config{Level: cfg.LogLevel, Output: out})
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
	tick := time.Duration(cfg.MarketTickSecs) * time.Second

	if cfg.TUISSHAddr == "" {
		svc := tui.Services{Market: newDesk(cfg), Analyzer: analysis, TickInterval: tick}
		if err := runLocalFunc(svc); err != nil {
			log.Fatal().Err(err).Msg("tui exited with error")
		}
		return
	}

	var users *repository.SSHUserRepository
	if cfg.TUIAuthorizedKeys != "" {
		users = repository.NewSSHUserRepository(tracer)
		n, err := users.LoadAuthorizedKeysFile(ctx, cfg.TUIAuthorizedKeys)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to load authorized keys")
		}
		log.Info().Int("users", n).Msg("ssh users loaded")
	} else {
		log.Warn().Msg("TUI_AUTHORIZED_KEYS not set, the ssh desk accepts any client")
	}

	srv, err := newSSHServerFunc(cfg, sessionHandler(cfg, analysis, tick), users, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create ssh server")
	}
	go func() {
		if err := startSSHServerFunc(srv); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Error().Err(err).Msg("ssh server failed")
		}
	}()
	log.Info().Str("addr", cfg.TUISSHAddr).Msg("tui ssh server started")

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := shutdownSSHServerFunc(srv, shutdownCtx); err != nil {
		log.Error().Err(err).Msg("ssh server forced to shutdown")
	}
}

// openLogFile falls back to discarding logs when the file cannot be opened.
func openLogFile(path string) (io.Writer, func()) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return io.Discard, func() {}
	}
	return f, func() { _ = f.Close() }
}

func newModelClient(tracer trace.Tracer, cfg *config.Config) service.ModelClient {
	return llm.NewClient(tracer, cfg.LLMProvider, cfg.APIKey(), cfg.Model(), cfg.BaseURL())
}

func newDesk(cfg *config.Config) *market.Desk {
	return market.NewSeededDesk(cfg.MarketSeed, market.DefaultScreenerOptions().
		Override(cfg.ScreenerTrees, cfg.ScreenerSampleSize, cfg.ScreenerThreshold))
}

func runLocal(svc tui.Services) error {
	_, err := tea.NewProgram(tui.NewAppModel(svc), tea.WithAltScreen()).Run()
	return err
}

// Every SSH session gets its own market and its own analysis view; only the
// analyzer is shared.
func sessionServices(cfg *config.Config, analyzer tui.Analyzer, tick time.Duration, user, remote string) tui.Services {
	return tui.Services{
		Market:       newDesk(cfg),
		Analyzer:     analyzer,
		TickInterval: tick,
		View:         fmt.Sprintf("tui:%s@%s", user, remote),
	}
}

func sessionHandler(cfg *config.Config, analyzer tui.Analyzer, tick time.Duration) bm.Handler {
	return func(s ssh.Session) (tea.Model, []tea.ProgramOption) {
		svc := sessionServices(cfg, analyzer, tick, s.User(), s.RemoteAddr().String())
		return tui.NewAppModel(svc), []tea.ProgramOption{tea.WithAltScreen()}
	}
}

func newSSHServer(cfg *config.Config, handler bm.Handler, users *repository.SSHUserRepository, log zerolog.Logger) (*ssh.Server, error) {
	log = log.With().Str("component", "tui-ssh").Logger()
	opts := []ssh.Option{
		wish.WithAddress(cfg.TUISSHAddr),
		wish.WithHostKeyPath(cfg.TUIHostKeyPath),
		wish.WithMiddleware(
			bm.Middleware(handler),
			activeterm.Middleware(),
			sessionLogging(log),
		),
	}
	if users != nil {
		opts = append(opts, wish.WithPublicKeyAuth(publicKeyAuth(users, log)))
	}
	return wish.NewServer(opts...)
}

func publicKeyAuth(users *repository.SSHUserRepository, log zerolog.Logger) ssh.PublicKeyHandler {
	return func(ctx ssh.Context, key ssh.PublicKey) bool {
		user, err := users.Authenticate(ctx, key)
		if err != nil || user == nil {
			log.Warn().Str("remote", ctx.RemoteAddr().String()).Str("user", ctx.User()).Msg("ssh key rejected")
			return false
		}
		if err := users.UpdateLastLogin(ctx, user.ID); err != nil {
			log.Warn().Err(err).Str("user", user.Username).Msg("failed to record login")
		}
		return true
	}
}

func sessionLogging(log zerolog.Logger) wish.Middleware {
	return func(next ssh.Handler) ssh.Handler {
		return func(s ssh.Session) {
			start := time.Now()
			log.Info().Str("user", s.User()).Str("remote", s.RemoteAddr().String()).Msg("session opened")
			next(s)
			log.Info().Str("user", s.User()).Dur("duration", time.Since(start)).Msg("session closed")
		}
	}
}
