package github

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func apiServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/users/qudus4l", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{
			"login": "qudus4l",
			"name": "Qudus Abolade",
			"bio": "ML/AI Engineer",
			"location": "Lagos",
			"public_repos": 2,
			"html_url": "https://github.com/qudus4l"
		}`)
	})
	mux.HandleFunc("/users/qudus4l/repos", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `[
			{"name": "thesispen-ai", "description": "Thesis writing assistant", "language": "Python",
			 "stargazers_count": 12, "forks_count": 3, "html_url": "https://github.com/qudus4l/thesispen-ai"},
			{"name": "brainifi", "description": "Study assistant", "language": "Python",
			 "stargazers_count": 5, "forks_count": 1, "html_url": "https://github.com/qudus4l/brainifi"}
		]`)
	})
	mux.HandleFunc("/repos/qudus4l/thesispen-ai/readme", func(w http.ResponseWriter, r *http.Request) {
		readme := base64.StdEncoding.EncodeToString([]byte("# ThesisPen\nAn AI thesis assistant."))
		fmt.Fprintf(w, `{"name": "README.md", "encoding": "base64", "content": %q}`, readme)
	})
	mux.HandleFunc("/repos/qudus4l/brainifi/readme", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "Not Found"}`, http.StatusNotFound)
	})

	return httptest.NewServer(mux)
}

func TestNew_RequiresUsername(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() should error without a username")
	}
}

func TestClient_ProfileDocuments(t *testing.T) {
	server := apiServer(t)
	defer server.Close()

	c, err := New(Config{Username: "qudus4l", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	docs, err := c.ProfileDocuments(t.Context())
	if err != nil {
		t.Fatalf("ProfileDocuments() error = %v", err)
	}

	// profile + 2 repos + 1 README (brainifi has none)
	if len(docs) != 4 {
		t.Fatalf("got %d documents, want 4", len(docs))
	}

	if docs[0].Metadata.Source != "github_profile" {
		t.Errorf("first document Source = %q, want github_profile", docs[0].Metadata.Source)
	}
	if !strings.Contains(docs[0].Content, "Name: Qudus Abolade") {
		t.Errorf("profile content missing name, got:\n%s", docs[0].Content)
	}
	if !strings.Contains(docs[0].Content, "Public Repositories: 2") {
		t.Errorf("profile content missing repo count, got:\n%s", docs[0].Content)
	}

	var sources []string
	for _, d := range docs {
		sources = append(sources, d.Metadata.Source)
	}
	joined := strings.Join(sources, ",")
	for _, want := range []string{"github_repo_thesispen-ai", "github_readme_thesispen-ai", "github_repo_brainifi"} {
		if !strings.Contains(joined, want) {
			t.Errorf("missing document source %q in %v", want, sources)
		}
	}
}

func TestClient_ProfileDocuments_ReadmeDecoded(t *testing.T) {
	server := apiServer(t)
	defer server.Close()

	c, err := New(Config{Username: "qudus4l", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	docs, err := c.ProfileDocuments(t.Context())
	if err != nil {
		t.Fatalf("ProfileDocuments() error = %v", err)
	}

	var readme string
	for _, d := range docs {
		if d.Metadata.Source == "github_readme_thesispen-ai" {
			readme = d.Content
		}
	}
	if !strings.Contains(readme, "README for thesispen-ai:") {
		t.Errorf("README document should be labelled, got:\n%s", readme)
	}
	if !strings.Contains(readme, "An AI thesis assistant.") {
		t.Errorf("README content should be base64-decoded, got:\n%s", readme)
	}
}

func TestClient_ProfileDocuments_ProfileFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message": "boom"}`, http.StatusInternalServerError)
	}))
	defer server.Close()

	c, err := New(Config{Username: "qudus4l", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	docs, err := c.ProfileDocuments(t.Context())
	if err == nil {
		t.Error("expected an error when the profile fetch fails")
	}
	if len(docs) != 0 {
		t.Errorf("expected no documents, got %d", len(docs))
	}
}
