package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// Document is a unit of source text collected during ingestion.
// Documents exist only for the duration of an ingestion run: they are
// chunked, embedded, indexed, and discarded.
type Document struct {
	Content  string   `json:"content"`
	Metadata Metadata `json:"metadata"`
}

// Metadata describes where a document came from.
type Metadata struct {
	Source  string `json:"source"`            // e.g. "portfolio_main_page", "github_profile"
	URL     string `json:"url,omitempty"`     // originating URL, if any
	Section string `json:"section,omitempty"` // main page section id ("about", "skills", ...)
	Type    string `json:"type,omitempty"`    // "project_detail", "work_detail", "general_context", ...
}

// Chunk is a bounded slice of a document's content, the unit stored in
// the similarity index.
type Chunk struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Metadata  Metadata  `json:"metadata"`
	Index     int       `json:"index"` // position within the parent document
	Embedding []float32 `json:"embedding,omitempty"`
	IndexedAt time.Time `json:"indexed_at"`
}

// ChatMessage is a single conversation turn held by the session cache.
type ChatMessage struct {
	Role      string    `json:"role"` // RoleUser or RoleAssistant
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// GenerateDocumentID creates a deterministic ID from a source identifier
// (usually a URL). The ID is the first 16 hex chars of a SHA-256 hash.
func GenerateDocumentID(source string) string {
	hash := sha256.Sum256([]byte(source))
	return hex.EncodeToString(hash[:])[:16]
}

// ChunkID derives a stable chunk ID from the parent document source and
// the chunk's position within it.
func ChunkID(source string, index int) string {
	return fmt.Sprintf("%s-%d", GenerateDocumentID(source), index)
}
