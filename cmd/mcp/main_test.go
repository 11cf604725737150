package main

import (
	"context"
	"net/http"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/config"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/llm"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/market"
	mcpserver "github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/mcp"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/service"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

type stubModelClient struct{}

func (stubModelClient) Generate(context.Context, string, llm.Options) (*llm.Response, error) {
	return &llm.Response{Text: "ok"}, nil
}

// swap replaces *target until the test ends.
func swap[T any](t *testing.T, target *T, value T) {
	t.Helper()
	orig := *target
	*target = value
	t.Cleanup(func() { *target = orig })
}

// bootstrap records what main handed to the MCP constructors.
type bootstrap struct {
	serverCfg  mcpserver.ServerConfig
	handlerCfg mcpserver.HTTPHandlerConfig
	marketTick time.Duration
}

func stubMCPDeps(t *testing.T, transport string) *bootstrap {
	t.Helper()
	got := &bootstrap{}

	swap(t, &loadEnvFunc, func(...string) error { return nil })
	swap(t, &loadConfigFunc, func() *config.Config {
		return &config.Config{
			MarketTickSecs:        3,
			AnalysisTimeoutSecs:   1,
			MCPTransport:          transport,
			MCPHTTPEnabled:        true,
			MCPHTTPBind:           "127.0.0.1",
			MCPHTTPPort:           8090,
			MCPAuthToken:          "secret",
			MCPRequestTimeoutSecs: 7,
			MCPRateLimitPerMin:    30,
		}
	})
	swap(t, &initTracerFunc, func(context.Context) (*sdktrace.TracerProvider, trace.Tracer, error) {
		tp := sdktrace.NewTracerProvider()
		return tp, tp.Tracer("test"), nil
	})
	swap(t, &newModelClientFunc, func(trace.Tracer, *config.Config) service.ModelClient { return stubModelClient{} })
	swap(t, &startMarketFunc, func(_ context.Context, _ trace.Tracer, _ *market.Desk, tick time.Duration, _ zerolog.Logger) {
		got.marketTick = tick
	})
	swap(t, &newMCPServerFunc, func(_ trace.Tracer, _ mcpserver.Analyzer, _ mcpserver.MarketReader, cfg mcpserver.ServerConfig) *sdkmcp.Server {
		got.serverCfg = cfg
		return sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test-mcp"}, nil)
	})
	swap(t, &newMCPHandlerFunc, func(_ *sdkmcp.Server, cfg mcpserver.HTTPHandlerConfig) http.Handler {
		got.handlerCfg = cfg
		return http.NotFoundHandler()
	})
	return got
}

func TestMainMCPStdio(t *testing.T) {
	got := stubMCPDeps(t, "stdio")

	ran := false
	swap(t, &runStdioFunc, func(context.Context, *sdkmcp.Server) error {
		ran = true
		return nil
	})

	main()

	if !ran {
		t.Fatal("expected stdio transport to run")
	}
	if got.serverCfg.RequestTimeout != 7*time.Second {
		t.Fatalf("expected 7s request timeout, got %s", got.serverCfg.RequestTimeout)
	}
	if got.marketTick != 3*time.Second {
		t.Fatalf("expected 3s market tick, got %s", got.marketTick)
	}
}

func TestMainMCPHTTP(t *testing.T) {
	got := stubMCPDeps(t, "HTTP")

	listening := make(chan struct{})
	var addr string
	swap(t, &startHTTPServerFunc, func(srv *http.Server) error {
		addr = srv.Addr
		close(listening)
		return http.ErrServerClosed
	})
	swap(t, &setupSignalNotify, func(chan<- os.Signal, ...os.Signal) {})
	swap(t, &waitForSignalFunc, func(<-chan os.Signal) { <-listening })
	swap(t, &shutdownHTTPServerFn, func(*http.Server, context.Context) error { return nil })

	main()

	if addr != "127.0.0.1:8090" {
		t.Fatalf("expected server on 127.0.0.1:8090, got %q", addr)
	}
	if got.handlerCfg.AuthToken != "secret" || got.handlerCfg.RateLimitPerMin != 30 {
		t.Fatalf("unexpected handler config %+v", got.handlerCfg)
	}
	if got.handlerCfg.MaxBodyBytes != defaultMCPHTTPMaxBodyBytes {
		t.Fatalf("expected default body limit, got %d", got.handlerCfg.MaxBodyBytes)
	}
}

func TestRunHTTPModeValidatesConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{
			name: "disabled",
			cfg:  config.Config{MCPAuthToken: "secret"},
			want: "MCP_HTTP_ENABLED",
		},
		{
			name: "missing token",
			cfg:  config.Config{MCPHTTPEnabled: true, MCPHTTPBind: "127.0.0.1", MCPHTTPPort: 8090},
			want: "MCP_AUTH_TOKEN is required",
		},
		{
			name: "blank token",
			cfg:  config.Config{MCPHTTPEnabled: true, MCPAuthToken: "   "},
			want: "MCP_AUTH_TOKEN is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			srv := sdkmcp.NewServer(&sdkmcp.Implementation{Name: "test"}, nil)
			err := runHTTPMode(ctx, cancel, &tt.cfg, srv, zerolog.Nop())
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestStartMarketAdvancesDesk(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	desk := market.NewSeededDesk(3, market.DefaultScreenerOptions())
	startMarket(ctx, trace.NewNoopTracerProvider().Tracer("test"), desk, time.Second, zerolog.Nop())

	deadline := time.After(5 * time.Second)
	for desk.Current(time.Now()).Seq == 0 {
		select {
		case <-deadline:
			t.Fatal("desk did not advance")
		case <-time.After(20 * time.Millisecond):
		}
	}
}
