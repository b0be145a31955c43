package cmd

import (
	"fmt"

	"github.com/qudus4l/portfolio-chat/internal/config"
	"github.com/qudus4l/portfolio-chat/internal/elasticsearch"
	"github.com/qudus4l/portfolio-chat/internal/embeddings"
	"github.com/qudus4l/portfolio-chat/internal/llm"
	"github.com/qudus4l/portfolio-chat/internal/retrieval"
)

// newESClient builds the chunk index client from loaded config.
func newESClient(cfg config.Config) (*elasticsearch.Client, error) {
	client, err := elasticsearch.New(elasticsearch.Config{
		Addresses: cfg.Elasticsearch.Addresses,
		Index:     cfg.Elasticsearch.Index,
		Username:  cfg.Elasticsearch.Username,
		Password:  cfg.Elasticsearch.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create ES client: %w", err)
	}
	return client, nil
}

// newRetriever wires embeddings and the chunk index into a retriever.
func newRetriever(cfg config.Config) (*retrieval.Retriever, error) {
	esClient, err := newESClient(cfg)
	if err != nil {
		return nil, err
	}
	embedClient, err := embeddings.New(embeddings.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.EmbeddingModel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings client: %w", err)
	}
	return retrieval.New(embedClient, esClient, retrieval.DefaultTopK), nil
}

// newGenerator builds the chat-completion client from loaded config.
func newGenerator(cfg config.Config) (*llm.Client, error) {
	client, err := llm.New(llm.Config{
		APIKey:      cfg.OpenAI.APIKey,
		Model:       cfg.OpenAI.ChatModel,
		Temperature: cfg.OpenAI.Temperature,
		MaxTokens:   cfg.OpenAI.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create completion client: %w", err)
	}
	return client, nil
}
