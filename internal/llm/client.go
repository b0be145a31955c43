package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	openai "github.com/sashabaranov/go-openai"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Config holds chat-completion client configuration.
type Config struct {
	APIKey      string
	Model       string
	Temperature float32
	MaxTokens   int
	BaseURL     string // API base URL override, used by tests
}

// Client wraps the OpenAI chat-completions API. Every call is attempted
// exactly once: no retries, no streaming.
type Client struct {
	api    *openai.Client
	apiKey string
	config Config
}

// New creates a new completion client. A missing API key fails closed
// on the first Answer call rather than at construction.
func New(config Config) (*Client, error) {
	if config.Model == "" {
		return nil, fmt.Errorf("chat model is required")
	}

	cfg := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		cfg.BaseURL = config.BaseURL
	}

	return &Client{
		api:    openai.NewClientWithConfig(cfg),
		apiKey: config.APIKey,
		config: config,
	}, nil
}

// DefaultContext is substituted when retrieval fails, so a query is
// still answered from general facts rather than erroring out.
const DefaultContext = `Qudus Abolade is an AI Engineer with expertise in developing production-grade language and vision systems.
He specializes in Retrieval Augmented Generation (RAG), multilingual NLP, and computer vision.
He has worked at Curacel, engineering intelligent systems for healthcare, customer service, and insurance automation.
His technical foundation includes deep expertise in LLMs, computer vision, and full-stack AI development.
He is a 2024 Nigeria Higher Education Foundation (NHEF) Scholar.
He has 2+ years of experience in the field.
His skills include Python, SQL, JavaScript, R, TensorFlow, PyTorch, and more.`

// SystemPrompt builds the persona system message around the retrieved
// context.
func SystemPrompt(contextText string) string {
	return fmt.Sprintf(`You are a helpful assistant for Qudus Abolade, an ML/AI Engineer. Answer questions about Qudus based on the following information:

%s

If the information to answer the question is not in the context provided, use this general information:
- Qudus is an AI Engineer with expertise in developing production-grade language and vision systems
- Specializes in Retrieval Augmented Generation (RAG), multilingual NLP, and computer vision
- Has worked at Curacel, engineering intelligent systems for healthcare, customer service, and insurance automation
- Technical expertise includes LLMs, computer vision, and full-stack AI development
- Is a 2024 Nigeria Higher Education Foundation (NHEF) Scholar
- Has 2+ years of experience in the field

Keep answers concise, professional, and accurate. If you don't know the answer to a question, say you don't have that specific information about Qudus rather than making something up.`, contextText)
}

// Answer generates a reply to query using the given retrieved context
// and prior conversation turns. History entries with roles other than
// user/assistant are dropped.
func (c *Client) Answer(ctx context.Context, query, contextText string, history []models.ChatMessage) (string, error) {
	if c.apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: SystemPrompt(contextText)},
	}
	for _, msg := range history {
		if msg.Role != models.RoleUser && msg.Role != models.RoleAssistant {
			continue
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    msg.Role,
			Content: msg.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: query,
	})

	slog.Debug("requesting completion", "model", c.config.Model, "messages", len(messages))

	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.config.Model,
		Messages:    messages,
		Temperature: c.config.Temperature,
		MaxTokens:   c.config.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response generated")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
