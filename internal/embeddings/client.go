package embeddings

import (
	"context"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"
)

// Config holds embeddings client configuration.
type Config struct {
	APIKey  string
	Model   string // must match the model used at index-build time
	BaseURL string // API base URL override, used by tests
}

// Client wraps the OpenAI embeddings API.
type Client struct {
	api    *openai.Client
	apiKey string
	model  openai.EmbeddingModel
}

// New creates a new embeddings client. A missing API key is not an
// error here: it fails closed on the first Embed call, so ingestion
// and serving can be constructed before credentials are checked.
func New(config Config) (*Client, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("embedding model is required")
	}

	cfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		apiKey: config.APIKey,
		model:  openai.EmbeddingModel(config.Model),
	}, nil
}

// Embed generates an embedding vector for the given text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	resp, err := c.api.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: c.model,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}

	slog.Debug("generated embedding", "chars", len(text), "dims", len(resp.Data[0].Embedding))
	return resp.Data[0].Embedding, nil
}
