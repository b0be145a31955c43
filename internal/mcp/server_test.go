package mcp

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/qudus4l/portfolio-chat/internal/llm"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

type fakeRetriever struct {
	chunks  []models.Chunk
	context string
	err     error
	gotK    int
}

func (f *fakeRetriever) Search(ctx context.Context, query string, limit int) ([]models.Chunk, error) {
	f.gotK = limit
	return f.chunks, f.err
}

func (f *fakeRetriever) Context(ctx context.Context, query string) (string, error) {
	return f.context, f.err
}

type fakeGenerator struct {
	answer     string
	err        error
	gotContext string
}

func (f *fakeGenerator) Answer(ctx context.Context, query, contextText string, history []models.ChatMessage) (string, error) {
	f.gotContext = contextText
	return f.answer, f.err
}

func toolRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("tool result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("tool result content type %T", result.Content[0])
	}
	return text.Text
}

func TestServerCreation(t *testing.T) {
	s := NewServer(Config{Name: "portfolio-chat", Version: "1.0.0"}, &fakeRetriever{}, &fakeGenerator{})
	if s == nil || s.mcpServer == nil {
		t.Fatal("NewServer() returned incomplete server")
	}
}

func TestSearchHandler(t *testing.T) {
	retriever := &fakeRetriever{chunks: []models.Chunk{
		{ID: "c1", Content: "Qudus built ThesisPen AI.", Metadata: models.Metadata{Source: "project_detail"}},
	}}
	s := NewServer(Config{Name: "portfolio-chat", Version: "1.0.0"}, retriever, &fakeGenerator{})

	result, err := s.searchHandler(context.Background(), toolRequest(map[string]any{"query": "thesispen"}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if result.IsError {
		t.Fatalf("searchHandler() returned tool error: %s", resultText(t, result))
	}

	text := resultText(t, result)
	if !strings.Contains(text, "ThesisPen AI") {
		t.Errorf("result = %s", text)
	}
	if retriever.gotK != 5 {
		t.Errorf("default limit = %d, want 5", retriever.gotK)
	}
}

func TestSearchHandlerMissingQuery(t *testing.T) {
	s := NewServer(Config{Name: "portfolio-chat", Version: "1.0.0"}, &fakeRetriever{}, &fakeGenerator{})

	result, err := s.searchHandler(context.Background(), toolRequest(map[string]any{}))
	if err != nil {
		t.Fatalf("searchHandler() error = %v", err)
	}
	if !result.IsError {
		t.Error("expected tool error for missing query")
	}
}

func TestAskHandler(t *testing.T) {
	retriever := &fakeRetriever{context: "Qudus works at Curacel."}
	generator := &fakeGenerator{answer: "He is an AI Engineer at Curacel."}
	s := NewServer(Config{Name: "portfolio-chat", Version: "1.0.0"}, retriever, generator)

	result, err := s.askHandler(context.Background(), toolRequest(map[string]any{"query": "where does Qudus work?"}))
	if err != nil {
		t.Fatalf("askHandler() error = %v", err)
	}
	if resultText(t, result) != "He is an AI Engineer at Curacel." {
		t.Errorf("result = %s", resultText(t, result))
	}
	if generator.gotContext != "Qudus works at Curacel." {
		t.Errorf("generator context = %q", generator.gotContext)
	}
}

func TestAskHandlerRetrievalFailureFallsBack(t *testing.T) {
	retriever := &fakeRetriever{err: errors.New("es down")}
	generator := &fakeGenerator{answer: "general answer"}
	s := NewServer(Config{Name: "portfolio-chat", Version: "1.0.0"}, retriever, generator)

	result, err := s.askHandler(context.Background(), toolRequest(map[string]any{"query": "who is Qudus?"}))
	if err != nil {
		t.Fatalf("askHandler() error = %v", err)
	}
	if result.IsError {
		t.Fatal("ask should succeed on retrieval failure via default context")
	}
	if generator.gotContext != llm.DefaultContext {
		t.Errorf("generator context = %q, want default context", generator.gotContext)
	}
}
