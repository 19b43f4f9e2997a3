package ai

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Embedder is the narrow interface the search and knowledge-base layers
// depend on.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

var ErrDisabled = errors.New("ai features are disabled: no API key configured")

// Client wraps the hosted model endpoints used across the service. A nil
// Client (no API key) keeps the rest of the API serving; callers get
// ErrDisabled from every method.
type Client struct {
	ChatModel  string
	EmbedModel string

	llm *openai.LLM
}

func NewClient(apiKey, chatModel, embedModel string) (*Client, error) {
	if apiKey == "" {
		return nil, ErrDisabled
	}
	if chatModel == "" {
		chatModel = "gpt-4o-mini"
	}
	if embedModel == "" {
		embedModel = "text-embedding-3-small"
	}

	llm, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithModel(chatModel),
		openai.WithEmbeddingModel(embedModel),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create openai client: %w", err)
	}

	return &Client{
		ChatModel:  chatModel,
		EmbedModel: embedModel,
		llm:        llm,
	}, nil
}

// LLM exposes the underlying model for callers that need tool calls or
// message history (the assistant agent).
func (c *Client) LLM() llms.Model {
	if c == nil {
		return nil
	}
	return c.llm
}

func (c *Client) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if c == nil {
		return nil, ErrDisabled
	}

	vectors, err := c.llm.CreateEmbedding(ctx, []string{text})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(vectors) == 0 {
		return nil, errors.New("embedding response was empty")
	}
	return vectors[0], nil
}

// GenerateCompletion runs a single-prompt completion, optionally in JSON
// mode for structured extraction.
func (c *Client) GenerateCompletion(ctx context.Context, prompt string, jsonMode bool) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}

	opts := []llms.CallOption{}
	if jsonMode {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, c.llm, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	return resp, nil
}
