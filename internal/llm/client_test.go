package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/qudus4l/portfolio-chat/pkg/models"
)

type completionRequest struct {
	Model       string  `json:"model"`
	Temperature float32 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionServer(t *testing.T, captured *completionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(captured); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"choices": [{"message": {"role": "assistant", "content": "  Qudus works on RAG systems.  "}}]
		}`))
	}))
}

func TestNewRequiresModel(t *testing.T) {
	if _, err := New(Config{APIKey: "key"}); err == nil {
		t.Fatal("expected error for missing model")
	}
}

func TestAnswerMissingKeyFailsBeforeCall(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client, err := New(Config{Model: "gpt-4.1-mini-2025-04-14", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if _, err := client.Answer(context.Background(), "hi", DefaultContext, nil); err == nil {
		t.Fatal("expected error for missing API key")
	}
	if called {
		t.Error("request was sent despite missing API key")
	}
}

func TestAnswer(t *testing.T) {
	var captured completionRequest
	srv := completionServer(t, &captured)
	defer srv.Close()

	client, err := New(Config{
		APIKey:      "test-key",
		Model:       "gpt-4.1-mini-2025-04-14",
		Temperature: 0.7,
		MaxTokens:   500,
		BaseURL:     srv.URL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	history := []models.ChatMessage{
		{Role: models.RoleUser, Content: "who are you?"},
		{Role: models.RoleAssistant, Content: "an assistant for Qudus"},
		{Role: "system", Content: "should be dropped"},
	}

	answer, err := client.Answer(context.Background(), "what does Qudus do?", "Qudus builds chatbots.", history)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if answer != "Qudus works on RAG systems." {
		t.Errorf("answer = %q, want trimmed mock reply", answer)
	}

	if captured.Model != "gpt-4.1-mini-2025-04-14" {
		t.Errorf("model = %q", captured.Model)
	}
	if captured.Temperature != 0.7 {
		t.Errorf("temperature = %v, want 0.7", captured.Temperature)
	}
	if captured.MaxTokens != 500 {
		t.Errorf("max_tokens = %d, want 500", captured.MaxTokens)
	}

	// system + 2 history turns + user query; the injected system-role
	// history entry must be filtered out
	if len(captured.Messages) != 4 {
		t.Fatalf("got %d messages, want 4", len(captured.Messages))
	}
	if captured.Messages[0].Role != "system" {
		t.Errorf("first message role = %q, want system", captured.Messages[0].Role)
	}
	if !strings.Contains(captured.Messages[0].Content, "Qudus builds chatbots.") {
		t.Error("system prompt does not contain the retrieved context")
	}
	if captured.Messages[1].Content != "who are you?" || captured.Messages[2].Content != "an assistant for Qudus" {
		t.Error("history turns not forwarded in order")
	}
	if captured.Messages[3].Role != "user" || captured.Messages[3].Content != "what does Qudus do?" {
		t.Errorf("final message = %+v, want user query", captured.Messages[3])
	}
}

func TestSystemPromptFallback(t *testing.T) {
	prompt := SystemPrompt(DefaultContext)
	if !strings.Contains(prompt, "NHEF") {
		t.Error("default context missing from prompt")
	}
	if !strings.Contains(prompt, "making something up") {
		t.Error("admit-ignorance instruction missing from prompt")
	}
}
