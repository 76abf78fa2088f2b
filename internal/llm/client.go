package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ashwinbm/docquiz/internal/config"
	"github.com/ashwinbm/docquiz/internal/domain"
)

// Client wraps an OpenAI-compatible endpoint for completions and embeddings.
// Works against OpenAI, Ollama, vLLM or any other compatible server.
type Client struct {
	api            openai.Client
	llmModel       string
	embeddingModel string
	timeout        time.Duration
}

// New creates a client from LLM configuration.
func New(cfg config.LLMConfig) *Client {
	opts := []option.RequestOption{}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		api:            openai.NewClient(opts...),
		llmModel:       cfg.LLMModel,
		embeddingModel: cfg.EmbeddingModel,
		timeout:        timeout,
	}
}

// Complete issues a single-shot chat completion. Provider failures and
// timeouts surface as ErrUpstream.
func (c *Client) Complete(ctx context.Context, system, user string, maxTokens int, temperature float64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessageParamUnion{}
	if system != "" {
		messages = append(messages, openai.SystemMessage(system))
	}
	messages = append(messages, openai.UserMessage(user))

	resp, err := c.api.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.llmModel),
		Messages:    messages,
		MaxTokens:   openai.Int(int64(maxTokens)),
		Temperature: openai.Float(temperature),
	})
	if err != nil {
		return "", fmt.Errorf("%w: completion: %v", domain.ErrUpstream, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: completion returned no choices", domain.ErrUpstream)
	}
	return resp.Choices[0].Message.Content, nil
}

// Embed computes one embedding vector per input text, preserving input
// order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.api.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Model: openai.EmbeddingModel(c.embeddingModel),
		Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding: %v", domain.ErrUpstream, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: embedding count mismatch: want=%d got=%d",
			domain.ErrUpstream, len(texts), len(resp.Data))
	}

	vectors := make([][]float32, len(resp.Data))
	for _, d := range resp.Data {
		if int(d.Index) < 0 || int(d.Index) >= len(vectors) {
			return nil, fmt.Errorf("%w: embedding index out of range: %d", domain.ErrUpstream, d.Index)
		}
		vec := make([]float32, len(d.Embedding))
		for i, v := range d.Embedding {
			vec[i] = float32(v)
		}
		vectors[d.Index] = vec
	}
	return vectors, nil
}
