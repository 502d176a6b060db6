package ai

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/amishk599/jobapplicator/internal/model"
	"github.com/amishk599/jobapplicator/internal/retry"
)

const (
	DefaultBaseURL        = "https://api.openai.com/v1"
	DefaultChatModel      = "gpt-4o"
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Client talks to the OpenAI API for embeddings and chat completions.
// Transient failures are retried with retry.OpenAIPolicy.
type Client struct {
	api            *openai.Client
	chatModel      string
	embeddingModel string
	policy         retry.Policy
	logger         *slog.Logger
}

// NewClient creates a client. Empty baseURL or model names fall back to
// the defaults.
func NewClient(baseURL, apiKey, chatModel, embeddingModel string, httpClient *http.Client, logger *slog.Logger) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	if chatModel == "" {
		chatModel = DefaultChatModel
	}
	if embeddingModel == "" {
		embeddingModel = DefaultEmbeddingModel
	}
	return &Client{
		api:            openai.NewClientWithConfig(cfg),
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		policy:         retry.OpenAIPolicy,
		logger:         logger,
	}
}

// Embed returns one vector per text, in input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	resp, err := retry.Do(ctx, c.policy, c.logger, "embeddings", func(ctx context.Context) (openai.EmbeddingResponse, error) {
		resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
			Input: texts,
			Model: openai.EmbeddingModel(c.embeddingModel),
		})
		return resp, apiError(err)
	})
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("create embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, d := range resp.Data {
		idx := d.Index
		if idx < 0 || idx >= len(out) {
			idx = i
		}
		out[idx] = d.Embedding
	}
	return out, nil
}

// Complete sends a system and user message and returns the content of the
// first choice. The response is requested as a JSON object.
func (c *Client) Complete(ctx context.Context, system, user string, temperature, topP float64) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.chatModel,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: float32(temperature),
		TopP:        float32(topP),
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	}

	resp, err := retry.Do(ctx, c.policy, c.logger, "chat completion", func(ctx context.Context) (openai.ChatCompletionResponse, error) {
		resp, err := c.api.CreateChatCompletion(ctx, req)
		return resp, apiError(err)
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}

// apiError converts go-openai status errors into model.HTTPError so the
// retry policy can tell transient failures from permanent ones.
func apiError(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &model.HTTPError{StatusCode: apiErr.HTTPStatusCode, Err: err}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		return &model.HTTPError{StatusCode: reqErr.HTTPStatusCode, Err: err}
	}
	return err
}
