package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	searchLimit  int
	searchFormat string
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Query the chunk index",
	Long: `Run a similarity search against the indexed portfolio chunks.

Examples:
  # Basic search
  portfolio-chat search "machine learning projects"

  # Limit results
  portfolio-chat search "work experience" --limit 3

  # JSON output for scripting
  portfolio-chat search "skills" --format json`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)

	searchCmd.Flags().IntVar(&searchLimit, "limit", 5, "Maximum number of results")
	searchCmd.Flags().StringVar(&searchFormat, "format", "text", "Output format: text or json")
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	query := args[0]

	retriever, err := newRetriever(GetConfig())
	if err != nil {
		return err
	}

	chunks, err := retriever.Search(ctx, query, searchLimit)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(chunks) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	if searchFormat == "json" {
		output, err := json.MarshalIndent(chunks, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(output))
		return nil
	}

	fmt.Printf("Found %d results:\n\n", len(chunks))
	for i, chunk := range chunks {
		fmt.Printf("─── Result %d ───\n", i+1)
		fmt.Printf("ID:      %s\n", chunk.ID)
		fmt.Printf("Source:  %s\n", chunk.Metadata.Source)
		if chunk.Metadata.URL != "" {
			fmt.Printf("URL:     %s\n", chunk.Metadata.URL)
		}

		content := chunk.Content
		if len(content) > 500 {
			content = content[:500] + "..."
		}
		fmt.Printf("Content:\n%s\n\n", content)
	}

	return nil
}
