package models

import (
	"strings"
	"testing"
)

func TestGenerateDocumentID_Deterministic(t *testing.T) {
	id1 := GenerateDocumentID("https://example.com/page")
	id2 := GenerateDocumentID("https://example.com/page")

	if id1 != id2 {
		t.Errorf("same input produced different IDs: %q vs %q", id1, id2)
	}
	if len(id1) != 16 {
		t.Errorf("ID length = %d, want 16", len(id1))
	}
}

func TestGenerateDocumentID_DifferentInputs(t *testing.T) {
	id1 := GenerateDocumentID("https://example.com/a")
	id2 := GenerateDocumentID("https://example.com/b")

	if id1 == id2 {
		t.Error("different inputs should produce different IDs")
	}
}

func TestChunkID(t *testing.T) {
	id := ChunkID("https://example.com/page", 3)

	if !strings.HasPrefix(id, GenerateDocumentID("https://example.com/page")) {
		t.Errorf("chunk ID %q should start with the document ID", id)
	}
	if !strings.HasSuffix(id, "-3") {
		t.Errorf("chunk ID %q should end with the chunk index", id)
	}
}
