// Package llm owns the single outbound channel to the generative model
// provider.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/domain"
	"github.com/gide12/Gemini-Trading-Support-advisor-sub000/internal/schema"

	"go.opentelemetry.io/otel/trace"
)

var (
	ErrMissingAPIKey       = errors.New("model API key is not configured")
	ErrRetrievalWithSchema = errors.New("retrieval and an enforced schema cannot be combined")
	ErrEmptyResponse       = errors.New("model returned no text")
)

// RequestFailedError carries a transport or provider failure verbatim.
type RequestFailedError struct {
	Provider string
	Status   int
	Detail   string
	Err      error
}

func (e *RequestFailedError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("%s request failed (%d): %s", e.Provider, e.Status, e.Detail)
	}
	return fmt.Sprintf("%s request failed: %s", e.Provider, e.Detail)
}

func (e *RequestFailedError) Unwrap() error { return e.Err }

func requestFailed(provider string, status int, err error) *RequestFailedError {
	return &RequestFailedError{Provider: provider, Status: status, Detail: err.Error(), Err: err}
}

type Options struct {
	// Schema, when set, is enforced by the provider.
	Schema          *schema.Schema
	EnableRetrieval bool
}

type Response struct {
	Text    string
	Sources []domain.SourceCitation
}

// Client sends one prompt per call. Implementations never retry or cache.
type Client interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Response, error)
}

// NewClient builds the client of the named provider. Anything other than
// "openai" selects Gemini.
func NewClient(tracer trace.Tracer, provider, apiKey, model, baseURL string) Client {
	if provider == providerOpenAI {
		return NewOpenAIClient(tracer, apiKey, model, baseURL)
	}
	return NewGeminiClient(tracer, apiKey, model, baseURL)
}

func validateOptions(provider, apiKey string, opts Options) error {
	if apiKey == "" {
		return requestFailed(provider, 0, ErrMissingAPIKey)
	}
	if opts.Schema != nil && opts.EnableRetrieval {
		return ErrRetrievalWithSchema
	}
	return nil
}
