package config

import "time"

// Config holds all application configuration.
type Config struct {
	Server        Server        `mapstructure:"server"`
	Elasticsearch Elasticsearch `mapstructure:"elasticsearch"`
	OpenAI        OpenAI        `mapstructure:"openai"`
	Scraper       Scraper       `mapstructure:"scraper"`
	Ingestion     Ingestion     `mapstructure:"ingestion"`
	Session       Session       `mapstructure:"session"`
	Storage       Storage       `mapstructure:"storage"`
	MCP           MCP           `mapstructure:"mcp"`
}

// Server holds HTTP server configuration.
type Server struct {
	Port            int    `mapstructure:"port"`
	PortfolioDomain string `mapstructure:"portfolio_domain"` // CORS allow-list seed
}

// Elasticsearch holds ES connection configuration.
type Elasticsearch struct {
	Addresses []string `mapstructure:"addresses"`
	Index     string   `mapstructure:"index"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
}

// OpenAI holds API configuration for embeddings and chat completions.
// The same embedding model must be used at index-build and query time;
// switching models requires a full re-ingest.
type OpenAI struct {
	APIKey         string  `mapstructure:"api_key"`
	ChatModel      string  `mapstructure:"chat_model"`
	EmbeddingModel string  `mapstructure:"embedding_model"`
	Temperature    float32 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
}

// Scraper holds portfolio crawler configuration.
type Scraper struct {
	BaseURL     string        `mapstructure:"base_url"`
	FallbackURL string        `mapstructure:"fallback_url"` // single-page fetch if the full crawl fails
	Delay       time.Duration `mapstructure:"delay"`
	Timeout     time.Duration `mapstructure:"timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// Ingestion holds corpus assembly configuration.
type Ingestion struct {
	DataDir        string `mapstructure:"data_dir"`
	GitHubUsername string `mapstructure:"github_username"`
	ChunkSize      int    `mapstructure:"chunk_size"`
	ChunkOverlap   int    `mapstructure:"chunk_overlap"`
}

// Session holds conversation cache configuration.
type Session struct {
	Enabled     bool          `mapstructure:"enabled"`
	MaxMessages int           `mapstructure:"max_messages"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// Storage holds optional S3/MinIO snapshot configuration. When Endpoint
// is empty, raw-page snapshots are disabled.
type Storage struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
}

// MCP holds MCP server configuration.
type MCP struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

// Defaults returns a Config with sensible default values.
func Defaults() Config {
	return Config{
		Server: Server{
			Port:            8000,
			PortfolioDomain: "http://qudus4l.tech",
		},
		Elasticsearch: Elasticsearch{
			Addresses: []string{"http://localhost:9200"},
			Index:     "portfolio-chunks",
		},
		OpenAI: OpenAI{
			ChatModel:      "gpt-4.1-mini-2025-04-14",
			EmbeddingModel: "text-embedding-3-small",
			Temperature:    0.7,
			MaxTokens:      500,
		},
		Scraper: Scraper{
			BaseURL:     "http://www.qudus4l.tech",
			FallbackURL: "https://qudus4l.github.io",
			Delay:       500 * time.Millisecond,
			Timeout:     10 * time.Second,
			UserAgent:   "portfolio-chat/1.0",
		},
		Ingestion: Ingestion{
			DataDir:        "data",
			GitHubUsername: "qudus4l",
			ChunkSize:      1000,
			ChunkOverlap:   200,
		},
		Session: Session{
			Enabled:     true,
			MaxMessages: 10,
			Timeout:     30 * time.Minute,
		},
		Storage: Storage{
			Bucket: "portfolio-chat",
		},
		MCP: MCP{
			Name:    "portfolio-chat",
			Version: "1.0.0",
		},
	}
}
