package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qudus4l/portfolio-chat/internal/server"
	"github.com/qudus4l/portfolio-chat/internal/session"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the chat API server",
	Long: `Start the HTTP API that answers visitor questions.

Endpoints:
  GET  /                Health check
  POST /api/chat        Answer a question ({"query": "..."})
  POST /api/chat/reset  Forget the caller's conversation

Example:
  portfolio-chat serve`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	retriever, err := newRetriever(cfg)
	if err != nil {
		return err
	}
	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	var sessions *session.Cache
	if cfg.Session.Enabled {
		sessions = session.New(session.Config{
			MaxMessages: cfg.Session.MaxMessages,
			Timeout:     cfg.Session.Timeout,
		})
	}

	srv := server.New(retriever, generator, sessions, server.Config{
		Port:            cfg.Server.Port,
		PortfolioDomain: cfg.Server.PortfolioDomain,
	})

	return srv.Run(ctx)
}
