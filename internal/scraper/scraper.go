package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"github.com/qudus4l/portfolio-chat/internal/extractor"
	"github.com/qudus4l/portfolio-chat/internal/storage"
	"github.com/qudus4l/portfolio-chat/pkg/models"
)

// Path substrings that mark crawlable detail pages.
const (
	projectPathMarker = "project-details/"
	workPathMarker    = "work-details/"
)

// Known detail page slugs, used when link discovery on the seed page
// yields no candidates.
var (
	knownProjects = []string{
		"thesispen-ai.html",
		"darth.html",
		"brainifi.html",
		"ai-therapist.html",
		"neural-style-transfer.html",
		"mnist.html",
		"fake-news.html",
		"flower-classifier.html",
		"dog-breed-classifier.html",
	}
	knownWork = []string{
		"auntypelz-ai.html",
		"auto-agentic-ai.html",
		"customer-success-chatbot.html",
		"arabic-ocr.html",
		"med-llm.html",
	}
)

// Config holds crawler configuration.
type Config struct {
	BaseURL   string
	Delay     time.Duration // fixed delay between fetches
	Timeout   time.Duration
	UserAgent string
}

// Scraper crawls the portfolio site: the seed page plus one hop of
// project and work detail pages. Strictly sequential, each URL fetched
// at most once, no retries.
type Scraper struct {
	config    Config
	extractor *extractor.Extractor
}

// New creates a new Scraper with the given configuration.
func New(config Config) *Scraper {
	if config.Timeout == 0 {
		config.Timeout = 10 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "portfolio-chat/1.0"
	}
	return &Scraper{
		config:    config,
		extractor: extractor.New(),
	}
}

// Crawl fetches the seed page, discovers detail pages, and returns the
// extracted documents. A failed detail fetch logs and contributes zero
// documents; a failed seed fetch is an error so the caller can fall back
// to a basic single-page load.
func (s *Scraper) Crawl(ctx context.Context) ([]models.Document, error) {
	return s.crawl(ctx, nil)
}

// pageSink receives the raw body of every successfully fetched page.
type pageSink func(pageURL, body string)

func (s *Scraper) crawl(ctx context.Context, sink pageSink) ([]models.Document, error) {
	base, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %q: %w", s.config.BaseURL, err)
	}

	c := colly.NewCollector(colly.UserAgent(s.config.UserAgent))
	c.Limit(&colly.LimitRule{
		DomainGlob:  "*",
		Delay:       s.config.Delay,
		Parallelism: 1,
	})
	c.SetRequestTimeout(s.config.Timeout)

	var docs []models.Document
	var projectURLs, workURLs []string
	discovered := make(map[string]bool)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			slog.Debug("crawl cancelled", "url", r.URL.String())
			r.Abort()
		}
	})

	c.OnError(func(r *colly.Response, err error) {
		slog.Warn("fetch failed, skipping page", "url", r.Request.URL.String(), "error", err)
	})

	// Link discovery is limited to the seed page: one hop only.
	c.OnHTML("a[href]", func(e *colly.HTMLElement) {
		cur := e.Request.URL.String()
		if strings.Contains(cur, projectPathMarker) || strings.Contains(cur, workPathMarker) {
			return
		}
		link := e.Request.AbsoluteURL(e.Attr("href"))
		if link == "" || discovered[link] {
			return
		}
		linkURL, err := url.Parse(link)
		if err != nil || linkURL.Host != base.Host {
			return
		}
		switch {
		case strings.Contains(link, projectPathMarker):
			discovered[link] = true
			projectURLs = append(projectURLs, link)
		case strings.Contains(link, workPathMarker):
			discovered[link] = true
			workURLs = append(workURLs, link)
		}
	})

	c.OnResponse(func(r *colly.Response) {
		if r.StatusCode >= 400 {
			slog.Debug("skipping page with error status", "url", r.Request.URL.String(), "status", r.StatusCode)
			return
		}

		pageURL := r.Request.URL.String()
		body := string(r.Body)
		if sink != nil {
			sink(pageURL, body)
		}

		switch {
		case strings.Contains(pageURL, projectPathMarker):
			doc, err := s.extractor.DetailPage(pageURL, body, "project_detail")
			if err != nil {
				slog.Warn("failed to extract project page", "url", pageURL, "error", err)
				return
			}
			docs = append(docs, *doc)
		case strings.Contains(pageURL, workPathMarker):
			doc, err := s.extractor.DetailPage(pageURL, body, "work_detail")
			if err != nil {
				slog.Warn("failed to extract work page", "url", pageURL, "error", err)
				return
			}
			docs = append(docs, *doc)
		default:
			mainDocs, err := s.extractor.MainPage(pageURL, body)
			if err != nil {
				slog.Warn("failed to extract main page", "url", pageURL, "error", err)
				return
			}
			docs = append(docs, mainDocs...)
		}
	})

	slog.Debug("starting crawl", "url", s.config.BaseURL)
	if err := c.Visit(s.config.BaseURL); err != nil {
		return nil, fmt.Errorf("failed to fetch seed page %s: %w", s.config.BaseURL, err)
	}
	c.Wait()

	if len(projectURLs) == 0 {
		slog.Info("no project URLs discovered, using known list")
		projectURLs = knownURLs(s.config.BaseURL, "project-details", knownProjects)
	}
	if len(workURLs) == 0 {
		slog.Info("no work URLs discovered, using known list")
		workURLs = knownURLs(s.config.BaseURL, "work-details", knownWork)
	}

	for _, u := range append(projectURLs, workURLs...) {
		if ctx.Err() != nil {
			slog.Info("crawl cancelled by context", "pages_extracted", len(docs))
			return docs, ctx.Err()
		}
		// colly's visited set guarantees each URL is fetched at most once.
		if err := c.Visit(u); err != nil {
			slog.Debug("visit skipped", "url", u, "error", err)
		}
	}
	c.Wait()

	slog.Debug("crawl complete",
		"projects", len(projectURLs), "work", len(workURLs), "documents", len(docs))
	return docs, nil
}

// CrawlResult holds the result of a CrawlToStorage operation.
type CrawlResult struct {
	Documents []models.Document
	Prefix    string // storage prefix where raw pages were written
	PageCount int
}

// CrawlToStorage crawls the site and additionally writes every raw page
// body to the snapshot store under a generated prefix, so a later
// `ingest --prefix` can re-index without re-crawling.
func (s *Scraper) CrawlToStorage(ctx context.Context, store *storage.Client) (*CrawlResult, error) {
	base, err := url.Parse(s.config.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL: %w", err)
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15-04-05")
	shortID := models.GenerateDocumentID(fmt.Sprintf("%s-%d", s.config.BaseURL, time.Now().UnixNano()))[:8]
	prefix := fmt.Sprintf("crawls/%s/%s-%s", base.Host, timestamp, shortID)

	var pageURLs []string
	sink := func(pageURL, body string) {
		filename := models.GenerateDocumentID(pageURL) + ".html"
		if err := store.PutPage(ctx, prefix, filename, body); err != nil {
			slog.Error("failed to write snapshot", "url", pageURL, "error", err)
			return
		}
		pageURLs = append(pageURLs, pageURL)
	}

	docs, err := s.crawl(ctx, sink)
	if err != nil && len(docs) == 0 {
		return nil, err
	}

	meta := storage.CrawlMetadata{
		SourceURL: s.config.BaseURL,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		PageCount: len(pageURLs),
		Pages:     pageURLs,
	}
	if err := store.PutMetadata(ctx, prefix, meta); err != nil {
		return nil, fmt.Errorf("failed to write crawl metadata: %w", err)
	}

	slog.Info("crawl snapshot complete", "prefix", prefix, "pages", len(pageURLs))
	return &CrawlResult{
		Documents: docs,
		Prefix:    prefix,
		PageCount: len(pageURLs),
	}, nil
}

func knownURLs(baseURL, segment string, slugs []string) []string {
	urls := make([]string, 0, len(slugs))
	for _, slug := range slugs {
		urls = append(urls, fmt.Sprintf("%s/%s/%s", strings.TrimSuffix(baseURL, "/"), segment, slug))
	}
	return urls
}
