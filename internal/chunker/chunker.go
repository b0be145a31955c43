package chunker

import (
	"fmt"

	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Chunker splits documents into fixed-size overlapping windows.
type Chunker struct {
	size    int // window size in runes
	overlap int // runes shared between consecutive chunks
}

// New creates a Chunker. overlap must be smaller than size.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", size)
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("overlap must be in [0, size), got %d with size %d", overlap, size)
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Split chunks a single document. A document no longer than the window
// yields exactly one chunk. For length L, size C, and overlap O the
// chunk count is ceil((L-O)/(C-O)).
func (c *Chunker) Split(doc models.Document) []models.Chunk {
	runes := []rune(doc.Content)
	source := doc.Metadata.Source
	if doc.Metadata.URL != "" {
		source = doc.Metadata.URL
	}
	if doc.Metadata.Section != "" {
		source += "#" + doc.Metadata.Section
	}

	if len(runes) <= c.size {
		return []models.Chunk{{
			ID:       models.ChunkID(source, 0),
			Content:  doc.Content,
			Metadata: doc.Metadata,
			Index:    0,
		}}
	}

	step := c.size - c.overlap
	var chunks []models.Chunk
	for start := 0; start < len(runes)-c.overlap; start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, models.Chunk{
			ID:       models.ChunkID(source, len(chunks)),
			Content:  string(runes[start:end]),
			Metadata: doc.Metadata,
			Index:    len(chunks),
		})
	}
	return chunks
}

// SplitAll chunks every document in order.
func (c *Chunker) SplitAll(docs []models.Document) []models.Chunk {
	var chunks []models.Chunk
	for _, doc := range docs {
		chunks = append(chunks, c.Split(doc)...)
	}
	return chunks
}
