package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/qudus4l/portfolio-chat/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server",
	Long: `Start the MCP server over stdio.

Exposes two tools:
  - search_portfolio: similarity search over indexed chunks
  - ask_portfolio:    answer a question grounded in the corpus

Example:
  portfolio-chat mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()

	retriever, err := newRetriever(cfg)
	if err != nil {
		return err
	}
	generator, err := newGenerator(cfg)
	if err != nil {
		return err
	}

	srv := mcp.NewServer(mcp.Config{
		Name:    cfg.MCP.Name,
		Version: cfg.MCP.Version,
	}, retriever, generator)

	fmt.Fprintln(cmd.ErrOrStderr(), "Starting MCP server...")

	return srv.ServeStdio()
}
