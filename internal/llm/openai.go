package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	DefaultOpenAIModel = "gpt-4o-mini"

	providerOpenAI = "openai"
)

// OpenAIClient talks to OpenAI or any endpoint speaking its chat completions
// API. It has no web search, so retrieval requests return no citations.
type OpenAIClient struct {
	tracer trace.Tracer
	client openai.Client
	apiKey string
	model  string
}

func NewOpenAIClient(tracer trace.Tracer, apiKey, model, baseURL string) *OpenAIClient {
	if model == "" {
		model = DefaultOpenAIModel
	}
	opts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIClient{
		tracer: tracer,
		client: openai.NewClient(opts...),
		apiKey: apiKey,
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string, opts Options) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "llm.openai.generate")
	defer span.End()
	span.SetAttributes(
		attribute.String("model", c.model),
		attribute.Bool("retrieval", opts.EnableRetrieval),
		attribute.Bool("structured", opts.Schema != nil),
	)

	if err := validateOptions(providerOpenAI, c.apiKey, opts); err != nil {
		span.RecordError(err)
		return nil, err
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
	}
	if opts.Schema != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   "analysis",
					Schema: opts.Schema.ToJSONSchema(),
					Strict: openai.Bool(true),
				},
			},
		}
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		span.RecordError(err)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, fmt.Errorf("openai request: %w", ctxErr)
		}
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			return nil, &RequestFailedError{Provider: providerOpenAI, Status: apiErr.StatusCode, Detail: apiErr.Message, Err: err}
		}
		return nil, requestFailed(providerOpenAI, 0, err)
	}
	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return nil, requestFailed(providerOpenAI, 0, ErrEmptyResponse)
	}
	return &Response{Text: completion.Choices[0].Message.Content}, nil
}
