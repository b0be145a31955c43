package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/qudus4l/portfolio-chat/internal/llm"
	"github.com/qudus4l/portfolio-chat/internal/session"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Config holds HTTP server configuration.
type Config struct {
	Port            int
	PortfolioDomain string // origin allowed to call the API
}

// Retriever assembles prompt context for a query.
type Retriever interface {
	Context(ctx context.Context, query string) (string, error)
}

// Generator produces the answer from query, context, and history.
type Generator interface {
	Answer(ctx context.Context, query, contextText string, history []models.ChatMessage) (string, error)
}

// Server exposes the chat API.
type Server struct {
	retriever Retriever
	generator Generator
	sessions  *session.Cache // nil disables conversation memory
	config    Config
}

// New creates the API server.
func New(retriever Retriever, generator Generator, sessions *session.Cache, config Config) *Server {
	if config.Port <= 0 {
		config.Port = 8000
	}
	return &Server{
		retriever: retriever,
		generator: generator,
		sessions:  sessions,
		config:    config,
	}
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors(s.allowedOrigins()))

	router.GET("/", s.handleHealth)
	router.POST("/api/chat", s.handleChat)
	router.POST("/api/chat/reset", s.handleReset)

	return router
}

// allowedOrigins lists the origins that may call the API: the
// configured portfolio domain in both schemes plus local dev servers.
func (s *Server) allowedOrigins() []string {
	origins := []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
	}
	domain := strings.TrimSuffix(s.config.PortfolioDomain, "/")
	if domain != "" {
		origins = append(origins, domain)
		if strings.HasPrefix(domain, "http://") {
			origins = append(origins, "https://"+strings.TrimPrefix(domain, "http://"))
		}
	}
	return origins
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "message": "Portfolio Chat API is running"})
}

type chatRequest struct {
	Query string `json:"query"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Query) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter is required"})
		return
	}

	ctx := c.Request.Context()

	contextText, err := s.retriever.Context(ctx, req.Query)
	if err != nil {
		slog.Warn("retrieval failed, using default context", "error", err)
		contextText = llm.DefaultContext
	}

	var history []models.ChatMessage
	fingerprint := session.Fingerprint(c.ClientIP(), c.GetHeader("User-Agent"))
	if s.sessions != nil {
		history = s.sessions.History(fingerprint)
	}

	answer, err := s.generator.Answer(ctx, req.Query, contextText, history)
	if err != nil {
		slog.Error("answer generation failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate answer"})
		return
	}

	if s.sessions != nil {
		s.sessions.Append(fingerprint, models.RoleUser, req.Query)
		s.sessions.Append(fingerprint, models.RoleAssistant, answer)
	}

	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (s *Server) handleReset(c *gin.Context) {
	if s.sessions != nil {
		s.sessions.Reset(session.Fingerprint(c.ClientIP(), c.GetHeader("User-Agent")))
	}
	c.JSON(http.StatusOK, gin.H{"message": "conversation history cleared"})
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.config.Port),
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	slog.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
