package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"

	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com"
	DefaultGeminiModel   = "gemini-2.5-flash"

	providerGemini = "gemini"
	maxErrorBody   = 4096
)

type GeminiClient struct {
	tracer  trace.Tracer
	http    *http.Client
	apiKey  string
	model   string
	baseURL string
}

func NewGeminiClient(tracer trace.Tracer, apiKey, model, baseURL string) *GeminiClient {
	if model == "" {
		model = DefaultGeminiModel
	}
	if baseURL == "" {
		baseURL = DefaultGeminiBaseURL
	}
	return &GeminiClient{
		tracer:  tracer,
		http:    &http.Client{Timeout: 120 * time.Second},
		apiKey:  apiKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *GeminiClient) endpoint() string {
	return fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
}

func (c *GeminiClient) payload(prompt string, opts Options) map[string]any {
	body := map[string]any{
		"contents": []map[string]any{
			{"role": "user", "parts": []map[string]any{{"text": prompt}}},
		},
	}
	if opts.EnableRetrieval {
		body["tools"] = []map[string]any{{"google_search": map[string]any{}}}
	}
	if opts.Schema != nil {
		body["generationConfig"] = map[string]any{
			"responseMimeType": "application/json",
			"responseSchema":   opts.Schema.ToGemini(),
		}
	}
	return body
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "llm.gemini.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", c.model),
		attribute.Bool("retrieval", opts.EnableRetrieval),
		attribute.Bool("structured", opts.Schema != nil),
	)

	if err := validateOptions(providerGemini, c.apiKey, opts); err != nil {
		span.RecordError(err)
		return nil, err
	}

	payload, err := json.Marshal(c.payload(prompt, opts))
	if err != nil {
		return nil, requestFailed(providerGemini, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(payload))
	if err != nil {
		return nil, requestFailed(providerGemini, 0, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("gemini request: %w", ctxErr)
		}
		return nil, requestFailed(providerGemini, 0, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, requestFailed(providerGemini, resp.StatusCode, err)
	}
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		detail := gjson.GetBytes(body, "error.message").String()
		if detail == "" {
			detail = truncate(string(body), maxErrorBody)
		}
		err := &RequestFailedError{Provider: providerGemini, Status: resp.StatusCode, Detail: detail}
		span.RecordError(err)
		return nil, err
	}

	return parseGeminiResponse(body)
}

func parseGeminiResponse(body []byte) (*Response, error) {
	if !gjson.ValidBytes(body) {
		return nil, requestFailed(providerGemini, http.StatusOK, errors.New("response body is not JSON"))
	}
	candidate := gjson.GetBytes(body, "candidates.0")
	if !candidate.Exists() {
		reason := gjson.GetBytes(body, "promptFeedback.blockReason").String()
		if reason != "" {
			return nil, &RequestFailedError{Provider: providerGemini, Status: http.StatusOK, Detail: "prompt blocked: " + reason}
		}
		return nil, requestFailed(providerGemini, http.StatusOK, ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Get("content.parts.#.text").Array() {
		text.WriteString(part.String())
	}
	if text.Len() == 0 {
		return nil, requestFailed(providerGemini, http.StatusOK, ErrEmptyResponse)
	}

	var sources []domain.SourceCitation
	for _, web := range candidate.Get("groundingMetadata.groundingChunks.#.web").Array() {
		sources = append(sources, domain.SourceCitation{
			Title: web.Get("title").String(),
			URL:   web.Get("uri").String(),
		})
	}
	return &Response{Text: text.String(), Sources: sources}, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
