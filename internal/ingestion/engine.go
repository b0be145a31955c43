package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"golang.org/x/net/html"

	"github.com/qudus4l/portfolio-chat/internal/chunker"
	"github.com/qudus4l/portfolio-chat/internal/extractor"
	"github.com/qudus4l/portfolio-chat/internal/github"
	"github.com/qudus4l/portfolio-chat/internal/loader"
	"github.com/qudus4l/portfolio-chat/internal/storage"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Config holds ingestion engine configuration.
type Config struct {
	FallbackURL string        // single page fetched when the crawl fails entirely
	Timeout     time.Duration // fallback fetch timeout
	UserAgent   string
}

// Result holds ingestion execution results.
type Result struct {
	DocsCollected int
	ChunksIndexed int
	Duration      time.Duration
	Errors        []string
}

// Crawler collects documents from the portfolio site.
type Crawler interface {
	Crawl(ctx context.Context) ([]models.Document, error)
}

// Embedder turns chunk text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Indexer is the chunk index being rebuilt.
type Indexer interface {
	CreateIndex(ctx context.Context) error
	DeleteIndex(ctx context.Context) error
	IndexChunk(ctx context.Context, chunk models.Chunk) error
	Refresh(ctx context.Context) error
}

// Engine collects documents from every source, chunks them, embeds
// each chunk, and rebuilds the search index. The old index is dropped
// first so each run is a full refresh.
type Engine struct {
	crawler    Crawler
	loader     *loader.Loader // nil skips local files
	github     *github.Client // nil skips GitHub
	chunker    *chunker.Chunker
	embedder   Embedder
	index      Indexer
	config     Config
	httpClient *http.Client
}

// New creates a new ingestion engine.
func New(
	crawler Crawler,
	fileLoader *loader.Loader,
	githubClient *github.Client,
	ch *chunker.Chunker,
	embedder Embedder,
	index Indexer,
	config Config,
) *Engine {
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	return &Engine{
		crawler:    crawler,
		loader:     fileLoader,
		github:     githubClient,
		chunker:    ch,
		embedder:   embedder,
		index:      index,
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}
}

// Run executes a full ingestion: crawl, load local files, fetch GitHub
// data, then chunk, embed, and index everything.
func (e *Engine) Run(ctx context.Context) (*Result, error) {
	start := time.Now()
	result := &Result{}

	docs := e.collect(ctx, result)
	result.DocsCollected = len(docs)
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents collected from any source")
	}

	slog.Info("collected documents", "count", len(docs))

	if err := e.indexChunks(ctx, e.chunker.SplitAll(docs), result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	slog.Info("ingestion complete",
		"documents", result.DocsCollected,
		"chunks", result.ChunksIndexed,
		"errors", len(result.Errors),
		"duration", result.Duration)
	return result, nil
}

// RunFromSnapshot re-indexes a previously captured crawl snapshot
// without touching the live site. Local files and GitHub are fetched
// fresh.
func (e *Engine) RunFromSnapshot(ctx context.Context, store *storage.Client, prefix string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	docs, err := e.snapshotDocuments(ctx, store, prefix, result)
	if err != nil {
		return nil, err
	}
	docs = append(docs, e.localDocuments(ctx, result)...)
	result.DocsCollected = len(docs)
	if len(docs) == 0 {
		return nil, fmt.Errorf("no documents collected from snapshot %s", prefix)
	}

	if err := e.indexChunks(ctx, e.chunker.SplitAll(docs), result); err != nil {
		return nil, err
	}

	result.Duration = time.Since(start)
	slog.Info("snapshot ingestion complete",
		"prefix", prefix,
		"documents", result.DocsCollected,
		"chunks", result.ChunksIndexed,
		"duration", result.Duration)
	return result, nil
}

// collect gathers documents from the crawler and the secondary
// sources. Source failures degrade the corpus instead of aborting it.
func (e *Engine) collect(ctx context.Context, result *Result) []models.Document {
	var docs []models.Document

	crawled, err := e.crawler.Crawl(ctx)
	if err != nil {
		slog.Warn("crawl failed, trying fallback page", "error", err)
		result.Errors = append(result.Errors, fmt.Sprintf("crawl: %v", err))

		if doc, ferr := e.fallbackDocument(ctx); ferr != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("fallback fetch: %v", ferr))
		} else {
			docs = append(docs, *doc)
		}
	} else {
		docs = append(docs, crawled...)
	}

	return append(docs, e.localDocuments(ctx, result)...)
}

// localDocuments loads PDFs, text files, the LinkedIn profile, and
// GitHub data.
func (e *Engine) localDocuments(ctx context.Context, result *Result) []models.Document {
	var docs []models.Document

	if e.loader != nil {
		docs = append(docs, e.loader.LoadPDFs()...)
		docs = append(docs, e.loader.LoadTextFiles()...)
		docs = append(docs, e.loader.LoadLinkedIn())
	}

	if e.github != nil {
		ghDocs, err := e.github.ProfileDocuments(ctx)
		if err != nil {
			slog.Warn("github fetch failed", "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("github: %v", err))
		} else {
			docs = append(docs, ghDocs...)
		}
	}

	return docs
}

// indexChunks rebuilds the index from scratch and writes every chunk
// that embeds successfully.
func (e *Engine) indexChunks(ctx context.Context, chunks []models.Chunk, result *Result) error {
	if err := e.index.DeleteIndex(ctx); err != nil {
		slog.Debug("index delete skipped", "error", err)
	}
	if err := e.index.CreateIndex(ctx); err != nil {
		return fmt.Errorf("creating index: %w", err)
	}

	for _, chunk := range chunks {
		if ctx.Err() != nil {
			result.Errors = append(result.Errors, "context cancelled")
			break
		}

		vector, err := e.embedder.Embed(ctx, chunk.Content)
		if err != nil {
			slog.Warn("embedding failed, skipping chunk", "chunk", chunk.ID, "error", err)
			result.Errors = append(result.Errors, fmt.Sprintf("embed %s: %v", chunk.ID, err))
			continue
		}
		chunk.Embedding = vector
		chunk.IndexedAt = time.Now().UTC()

		if err := e.index.IndexChunk(ctx, chunk); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("index %s: %v", chunk.ID, err))
			continue
		}
		result.ChunksIndexed++
	}

	if err := e.index.Refresh(ctx); err != nil {
		slog.Debug("index refresh failed", "error", err)
	}
	return nil
}

// fallbackDocument fetches the mirror page and converts it to markdown
// as a single general document.
func (e *Engine) fallbackDocument(ctx context.Context) (*models.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.config.FallbackURL, nil)
	if err != nil {
		return nil, err
	}
	if e.config.UserAgent != "" {
		req.Header.Set("User-Agent", e.config.UserAgent)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fallback page returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		return nil, fmt.Errorf("converting fallback page: %w", err)
	}
	markdown = extractor.CleanText(markdown)
	if markdown == "" {
		return nil, fmt.Errorf("fallback page produced no content")
	}

	doc := models.Document{
		Content: markdown,
		Metadata: models.Metadata{
			Source: "portfolio_fallback",
			URL:    e.config.FallbackURL,
			Type:   "general_context",
		},
	}
	if title := pageTitle(string(body)); title != "" {
		doc.Content = title + "\n\n" + doc.Content
	}
	return &doc, nil
}

// snapshotDocuments replays extraction over the raw pages of a stored
// crawl.
func (e *Engine) snapshotDocuments(ctx context.Context, store *storage.Client, prefix string, result *Result) ([]models.Document, error) {
	meta, err := store.GetMetadata(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot metadata: %w", err)
	}

	fileToURL := make(map[string]string, len(meta.Pages))
	for _, pageURL := range meta.Pages {
		fileToURL[models.GenerateDocumentID(pageURL)+".html"] = pageURL
	}

	files, err := store.ListPages(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing snapshot pages: %w", err)
	}

	ext := extractor.New()
	var docs []models.Document
	for _, filename := range files {
		pageURL, ok := fileToURL[filename]
		if !ok {
			slog.Warn("no URL recorded for snapshot page", "filename", filename)
			continue
		}

		body, err := store.GetPage(ctx, prefix, filename)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("read %s: %v", filename, err))
			continue
		}

		switch {
		case strings.Contains(pageURL, "project-details/"):
			doc, err := ext.DetailPage(pageURL, body, "project_detail")
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("extract %s: %v", pageURL, err))
				continue
			}
			docs = append(docs, *doc)
		case strings.Contains(pageURL, "work-details/"):
			doc, err := ext.DetailPage(pageURL, body, "work_detail")
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("extract %s: %v", pageURL, err))
				continue
			}
			docs = append(docs, *doc)
		default:
			mainDocs, err := ext.MainPage(pageURL, body)
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("extract %s: %v", pageURL, err))
				continue
			}
			docs = append(docs, mainDocs...)
		}
	}

	return docs, nil
}

// pageTitle pulls the <title> text out of raw HTML.
func pageTitle(htmlContent string) string {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var title string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "title" {
			if n.FirstChild != nil {
				title = n.FirstChild.Data
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return strings.TrimSpace(title)
}
