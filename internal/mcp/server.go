package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

// Analyses routinely take tens of seconds.
const defaultRequestTimeout = 90 * time.Second

type ServerConfig struct {
	RequestTimeout time.Duration
	Log            zerolog.Logger
}

func NewServer(tracer trace.Tracer, analyzer Analyzer, markets MarketReader, cfg ServerConfig) *sdkmcp.Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = defaultRequestTimeout
	}
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("mcp")
	}

	srv := sdkmcp.NewServer(&sdkmcp.Implementation{
		Name:    "trading-insight-mcp",
		Version: "1.0.0",
	}, &sdkmcp.ServerOptions{
		Instructions: "Run AI equity analyses, backtests and portfolio optimizations, and inspect the simulated market surfaces.",
		Logger:       slog.Default(),
	})
	srv.AddReceivingMiddleware(instrument(tracer, cfg.RequestTimeout, cfg.Log.With().Str("component", "mcp").Logger()))

	registerTools(srv, analyzer, markets)
	registerResources(srv, analyzer, markets)
	return srv
}

// NewHTTPTransportHandler serves the streamable HTTP transport behind the
// bearer, rate and body-size gate.
func NewHTTPTransportHandler(server *sdkmcp.Server, cfg HTTPHandlerConfig) http.Handler {
	stream := sdkmcp.NewStreamableHTTPHandler(func(*http.Request) *sdkmcp.Server {
		return server
	}, nil)
	return newHTTPGate(stream, cfg)
}

// instrument bounds every inbound request by timeout and records it as a span.
func instrument(tracer trace.Tracer, timeout time.Duration, log zerolog.Logger) sdkmcp.Middleware {
	return func(next sdkmcp.MethodHandler) sdkmcp.MethodHandler {
		return func(ctx context.Context, method string, req sdkmcp.Request) (sdkmcp.Result, error) {
			ctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			name, attrs := describeRequest(method, req)
			ctx, span := tracer.Start(ctx, name, trace.WithAttributes(attrs...))
			defer span.End()

			started := time.Now()
			result, err := next(ctx, method, req)
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
				log.Warn().Err(err).
					Str("method", method).
					Str("span", name).
					Dur("elapsed", time.Since(started)).
					Msg("mcp request failed")
			}
			return result, err
		}
	}
}

// describeRequest names the span after the tool or resource when there is one.
func describeRequest(method string, req sdkmcp.Request) (string, []attribute.KeyValue) {
	attrs := []attribute.KeyValue{attribute.String("mcp.method", method)}
	switch r := req.(type) {
	case *sdkmcp.CallToolRequest:
		tool := ""
		if r.Params != nil {
			tool = strings.TrimSpace(r.Params.Name)
		}
		if tool == "" {
			return "mcp.tool.call", attrs
		}
		return "mcp.tool." + tool, append(attrs, attribute.String("mcp.tool", tool))
	case *sdkmcp.ReadResourceRequest:
		if r.Params != nil {
			attrs = append(attrs, attribute.String("mcp.resource.uri", r.Params.URI))
		}
		return "mcp.resource.read", attrs
	default:
		return "mcp." + strings.ReplaceAll(method, "/", "."), attrs
	}
}
