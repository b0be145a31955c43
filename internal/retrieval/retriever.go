package retrieval

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// DefaultTopK is the number of chunks assembled into answer context.
const DefaultTopK = 5

// Embedder turns a query into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Searcher finds the chunks nearest a query vector.
type Searcher interface {
	KNNSearch(ctx context.Context, queryEmbedding []float32, k int) ([]models.Chunk, error)
}

// Retriever embeds queries and assembles retrieved chunks into a
// context block for the completion prompt.
type Retriever struct {
	embedder Embedder
	searcher Searcher
	topK     int
}

// New creates a retriever. topK <= 0 falls back to DefaultTopK.
func New(embedder Embedder, searcher Searcher, topK int) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{
		embedder: embedder,
		searcher: searcher,
		topK:     topK,
	}
}

// Search returns the chunks most similar to the query.
func (r *Retriever) Search(ctx context.Context, query string, limit int) ([]models.Chunk, error) {
	if limit <= 0 {
		limit = r.topK
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding query: %w", err)
	}

	chunks, err := r.searcher.KNNSearch(ctx, vector, limit)
	if err != nil {
		return nil, fmt.Errorf("searching chunks: %w", err)
	}

	slog.Debug("retrieved chunks", "query_len", len(query), "hits", len(chunks))
	return chunks, nil
}

// Context retrieves the top chunks for query and joins their text into
// a single prompt context block.
func (r *Retriever) Context(ctx context.Context, query string) (string, error) {
	chunks, err := r.Search(ctx, query, r.topK)
	if err != nil {
		return "", err
	}
	if len(chunks) == 0 {
		return "", fmt.Errorf("no chunks retrieved")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Content
	}
	return strings.Join(texts, "\n\n"), nil
}
