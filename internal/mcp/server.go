package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/qudus4l/portfolio-chat/internal/llm"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Config holds MCP server configuration.
type Config struct {
	Name    string
	Version string
}

// Retriever finds and assembles portfolio chunks for a query.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) ([]models.Chunk, error)
	Context(ctx context.Context, query string) (string, error)
}

// Generator produces an answer from query and context.
type Generator interface {
	Answer(ctx context.Context, query, contextText string, history []models.ChatMessage) (string, error)
}

// Server exposes the portfolio corpus over MCP, so assistants can call
// the same retrieval pipeline the chat API uses.
type Server struct {
	mcpServer *server.MCPServer
	retriever Retriever
	generator Generator
}

// NewServer creates the MCP server with its tools registered.
func NewServer(config Config, retriever Retriever, generator Generator) *Server {
	mcpServer := server.NewMCPServer(
		config.Name,
		config.Version,
		server.WithToolCapabilities(true),
	)

	s := &Server{
		mcpServer: mcpServer,
		retriever: retriever,
		generator: generator,
	}

	searchTool := mcp.NewTool("search_portfolio",
		mcp.WithDescription("Search the indexed portfolio content by query. Returns matching chunks with their source metadata."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Search query string"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of chunks to return (default: 5)"),
		),
	)
	mcpServer.AddTool(searchTool, s.searchHandler)

	askTool := mcp.NewTool("ask_portfolio",
		mcp.WithDescription("Answer a question about Qudus Abolade grounded in the portfolio corpus."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Question to answer"),
		),
	)
	mcpServer.AddTool(askTool, s.askHandler)

	return s
}

// searchHandler handles the search_portfolio tool call.
func (s *Server) searchHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	limit := req.GetInt("limit", 5)

	chunks, err := s.retriever.Search(ctx, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	result, err := json.Marshal(chunks)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal results: %v", err)), nil
	}

	return mcp.NewToolResultText(string(result)), nil
}

// askHandler handles the ask_portfolio tool call.
func (s *Server) askHandler(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query parameter is required"), nil
	}

	contextText, err := s.retriever.Context(ctx, query)
	if err != nil {
		slog.Warn("retrieval failed, using default context", "error", err)
		contextText = llm.DefaultContext
	}

	answer, err := s.generator.Answer(ctx, query, contextText, nil)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("answer generation failed: %v", err)), nil
	}

	return mcp.NewToolResultText(answer), nil
}

// ServeStdio starts the MCP server using stdio transport.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
