package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/qudus4l/portfolio-chat/internal/chunker"
	"github.com/qudus4l/portfolio-chat/internal/embeddings"
	"github.com/qudus4l/portfolio-chat/internal/github"
	"github.com/qudus4l/portfolio-chat/internal/ingestion"
	"github.com/qudus4l/portfolio-chat/internal/loader"
	"github.com/qudus4l/portfolio-chat/internal/scraper"
	"github.com/qudus4l/portfolio-chat/internal/storage"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

var (
	ingestPrefix   string
	ingestSnapshot bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Build the chunk index from all sources",
	Long: `Crawl the portfolio site, load local PDFs and text files, fetch
GitHub and LinkedIn data, then chunk, embed, and index everything.
The existing index is replaced.

Examples:
  # Full ingestion
  portfolio-chat ingest

  # Also capture the raw crawled pages to S3
  portfolio-chat ingest --snapshot

  # Re-index a previous snapshot without crawling
  portfolio-chat ingest --prefix crawls/www.qudus4l.tech/2025-06-01T12-00-00-abc123`,
	RunE: runIngest,
}

func init() {
	rootCmd.AddCommand(ingestCmd)

	ingestCmd.Flags().StringVar(&ingestPrefix, "prefix", "", "re-ingest an existing S3 snapshot instead of crawling")
	ingestCmd.Flags().BoolVar(&ingestSnapshot, "snapshot", false, "write raw crawled pages to S3")
}

// snapshotCrawler crawls while mirroring raw pages to the snapshot
// store.
type snapshotCrawler struct {
	scraper *scraper.Scraper
	store   *storage.Client
}

func (c *snapshotCrawler) Crawl(ctx context.Context) ([]models.Document, error) {
	result, err := c.scraper.CrawlToStorage(ctx, c.store)
	if err != nil {
		return nil, err
	}
	fmt.Printf("Snapshot written: %s (%d pages)\n", result.Prefix, result.PageCount)
	return result.Documents, nil
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := GetConfig()

	esClient, err := newESClient(cfg)
	if err != nil {
		return err
	}
	embedClient, err := embeddings.New(embeddings.Config{
		APIKey: cfg.OpenAI.APIKey,
		Model:  cfg.OpenAI.EmbeddingModel,
	})
	if err != nil {
		return fmt.Errorf("failed to create embeddings client: %w", err)
	}
	ch, err := chunker.New(cfg.Ingestion.ChunkSize, cfg.Ingestion.ChunkOverlap)
	if err != nil {
		return fmt.Errorf("invalid chunking config: %w", err)
	}

	var ghClient *github.Client
	if cfg.Ingestion.GitHubUsername != "" {
		ghClient, err = github.New(github.Config{Username: cfg.Ingestion.GitHubUsername})
		if err != nil {
			return fmt.Errorf("failed to create GitHub client: %w", err)
		}
	}

	var store *storage.Client
	if ingestSnapshot || ingestPrefix != "" {
		if cfg.Storage.Endpoint == "" {
			return fmt.Errorf("storage not configured - check config file")
		}
		store, err = storage.New(storage.Config{
			Endpoint:        cfg.Storage.Endpoint,
			Bucket:          cfg.Storage.Bucket,
			AccessKeyID:     cfg.Storage.AccessKeyID,
			SecretAccessKey: cfg.Storage.SecretAccessKey,
			UseSSL:          cfg.Storage.UseSSL,
		})
		if err != nil {
			return fmt.Errorf("failed to create storage client: %w", err)
		}
	}

	sc := scraper.New(scraper.Config{
		BaseURL:   cfg.Scraper.BaseURL,
		Delay:     cfg.Scraper.Delay,
		Timeout:   cfg.Scraper.Timeout,
		UserAgent: cfg.Scraper.UserAgent,
	})

	var crawler ingestion.Crawler = sc
	if ingestSnapshot {
		if err := store.EnsureBucket(ctx); err != nil {
			return fmt.Errorf("failed to ensure bucket: %w", err)
		}
		crawler = &snapshotCrawler{scraper: sc, store: store}
	}

	engine := ingestion.New(
		crawler,
		loader.New(cfg.Ingestion.DataDir),
		ghClient,
		ch,
		embedClient,
		esClient,
		ingestion.Config{
			FallbackURL: cfg.Scraper.FallbackURL,
			Timeout:     cfg.Scraper.Timeout,
			UserAgent:   cfg.Scraper.UserAgent,
		},
	)

	var result *ingestion.Result
	if ingestPrefix != "" {
		fmt.Printf("Re-ingesting snapshot: %s\n", ingestPrefix)
		result, err = engine.RunFromSnapshot(ctx, store, ingestPrefix)
	} else {
		fmt.Println("Starting ingestion...")
		result, err = engine.Run(ctx)
	}
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Printf("\nIngestion complete:\n")
	fmt.Printf("  Documents collected: %d\n", result.DocsCollected)
	fmt.Printf("  Chunks indexed: %d\n", result.ChunksIndexed)
	fmt.Printf("  Duration: %v\n", result.Duration)

	if len(result.Errors) > 0 {
		fmt.Printf("  Warnings: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("    - %s\n", e)
		}
	}

	return nil
}
