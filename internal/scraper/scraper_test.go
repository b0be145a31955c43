package scraper

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const seedHTML = `<html>
<head><title>Portfolio</title></head>
<body>
	<section id="hero"><h1>Qudus Abolade</h1><p>ML/AI Engineer.</p></section>
	<a href="/project-details/brainifi.html">BrainiFi</a>
	<a href="/project-details/brainifi.html">BrainiFi again</a>
	<a href="/work-details/arabic-ocr.html">Arabic OCR</a>
	<a href="https://elsewhere.example.com/project-details/external.html">external</a>
</body>
</html>`

const detailHTML = `<html>
<head><title>Detail Page</title></head>
<body><h1>Detail</h1><p>Some detail content.</p></body>
</html>`

// countingServer serves the seed and detail pages and records how many
// times each path was fetched.
func countingServer(t *testing.T, seed string) (*httptest.Server, func(path string) int) {
	t.Helper()
	var mu sync.Mutex
	counts := make(map[string]int)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		counts[r.URL.Path]++
		mu.Unlock()

		w.Header().Set("Content-Type", "text/html")
		if r.URL.Path == "/" {
			w.Write([]byte(seed))
			return
		}
		if strings.Contains(r.URL.Path, "details/") {
			w.Write([]byte(detailHTML))
			return
		}
		http.NotFound(w, r)
	}))

	return server, func(path string) int {
		mu.Lock()
		defer mu.Unlock()
		return counts[path]
	}
}

func TestScraper_CrawlsSeedAndDetailPages(t *testing.T) {
	server, _ := countingServer(t, seedHTML)
	defer server.Close()

	s := New(Config{
		BaseURL: server.URL,
		Delay:   10 * time.Millisecond,
	})

	docs, err := s.Crawl(t.Context())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	sources := make(map[string]int)
	for _, d := range docs {
		sources[d.Metadata.Source]++
	}
	if sources["portfolio_main_page"] == 0 {
		t.Error("expected main page section documents")
	}
	if sources["portfolio_project"] != 1 {
		t.Errorf("project documents = %d, want 1", sources["portfolio_project"])
	}
	if sources["portfolio_work"] != 1 {
		t.Errorf("work documents = %d, want 1", sources["portfolio_work"])
	}
}

func TestScraper_DeduplicatesDiscoveredURLs(t *testing.T) {
	server, count := countingServer(t, seedHTML)
	defer server.Close()

	s := New(Config{
		BaseURL: server.URL,
		Delay:   10 * time.Millisecond,
	})

	if _, err := s.Crawl(t.Context()); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	// The seed links to brainifi.html twice; it must be fetched once.
	if got := count("/project-details/brainifi.html"); got != 1 {
		t.Errorf("brainifi.html fetched %d times, want 1", got)
	}
}

func TestScraper_StaysOnHost(t *testing.T) {
	server, count := countingServer(t, seedHTML)
	defer server.Close()

	s := New(Config{
		BaseURL: server.URL,
		Delay:   10 * time.Millisecond,
	})

	if _, err := s.Crawl(t.Context()); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if got := count("/project-details/external.html"); got != 0 {
		t.Errorf("external host URL fetched %d times, want 0", got)
	}
}

func TestScraper_FallsBackToKnownLists(t *testing.T) {
	// Seed page with no detail links at all.
	bare := `<html><body><section id="hero"><p>Hi.</p></section></body></html>`
	server, count := countingServer(t, bare)
	defer server.Close()

	s := New(Config{
		BaseURL: server.URL,
		Delay:   time.Millisecond,
	})

	if _, err := s.Crawl(t.Context()); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if got := count("/project-details/thesispen-ai.html"); got != 1 {
		t.Errorf("known project URL fetched %d times, want 1", got)
	}
	if got := count("/work-details/med-llm.html"); got != 1 {
		t.Errorf("known work URL fetched %d times, want 1", got)
	}
}

func TestScraper_FailedDetailFetchYieldsNoDocument(t *testing.T) {
	seed := `<html><body>
		<a href="/project-details/missing.html">gone</a>
		<a href="/work-details/arabic-ocr.html">Arabic OCR</a>
	</body></html>`

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		switch {
		case r.URL.Path == "/":
			w.Write([]byte(seed))
		case strings.Contains(r.URL.Path, "work-details/"):
			w.Write([]byte(detailHTML))
		default:
			http.Error(w, "not found", http.StatusNotFound)
		}
	}))
	defer server.Close()

	s := New(Config{
		BaseURL: server.URL,
		Delay:   10 * time.Millisecond,
	})

	docs, err := s.Crawl(t.Context())
	if err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	for _, d := range docs {
		if d.Metadata.Source == "portfolio_project" {
			t.Errorf("failed fetch should contribute zero documents, got %+v", d.Metadata)
		}
	}
}

func TestScraper_SeedFetchFailureIsError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	defer server.Close()

	s := New(Config{
		BaseURL: server.URL,
		Delay:   time.Millisecond,
	})

	if _, err := s.Crawl(t.Context()); err == nil {
		t.Error("Crawl() should error when the seed page cannot be fetched")
	}
}

func TestScraper_SetsUserAgent(t *testing.T) {
	var receivedUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(seedHTML))
	}))
	defer server.Close()

	s := New(Config{
		BaseURL:   server.URL,
		Delay:     time.Millisecond,
		UserAgent: "portfolio-chat/1.0",
	})

	if _, err := s.Crawl(t.Context()); err != nil {
		t.Fatalf("Crawl() error = %v", err)
	}

	if receivedUA != "portfolio-chat/1.0" {
		t.Errorf("User-Agent = %q, want %q", receivedUA, "portfolio-chat/1.0")
	}
}
