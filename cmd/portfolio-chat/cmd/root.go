package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/qudus4l/portfolio-chat/internal/config"
)

var (
	cfgFile string
	verbose bool
	cfg     config.Config
)

// GetConfig returns the loaded configuration.
func GetConfig() config.Config {
	return cfg
}

var rootCmd = &cobra.Command{
	Use:   "portfolio-chat",
	Short: "RAG chatbot backend for the qudus4l.tech portfolio",
	Long: `portfolio-chat crawls the portfolio site and supporting sources
(local PDFs and text files, GitHub, LinkedIn), chunks and embeds the
content into Elasticsearch, and answers visitor questions over a chat
API grounded in that index.

Commands:
  ingest  Build or rebuild the chunk index from all sources
  serve   Start the chat API server
  search  Query the chunk index from the command line
  mcp     Start the MCP server (stdio)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogger() {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})
	slog.SetDefault(slog.New(handler))
}

func initConfig() {
	// .env is optional, real env vars win
	_ = godotenv.Load()

	cfg = config.Defaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./config")
		viper.AddConfigPath("/etc/portfolio-chat")
		viper.AddConfigPath(".")
	}

	// PORTFOLIOCHAT_SERVER_PORT -> server.port
	viper.SetEnvPrefix("PORTFOLIOCHAT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	viper.BindEnv("elasticsearch.addresses", "PORTFOLIOCHAT_ELASTICSEARCH_ADDRESSES")
	viper.BindEnv("elasticsearch.index", "PORTFOLIOCHAT_ELASTICSEARCH_INDEX")
	viper.BindEnv("elasticsearch.username", "PORTFOLIOCHAT_ELASTICSEARCH_USERNAME")
	viper.BindEnv("elasticsearch.password", "PORTFOLIOCHAT_ELASTICSEARCH_PASSWORD")
	viper.BindEnv("scraper.base_url", "PORTFOLIOCHAT_SCRAPER_BASE_URL")
	viper.BindEnv("scraper.fallback_url", "PORTFOLIOCHAT_SCRAPER_FALLBACK_URL")
	viper.BindEnv("ingestion.data_dir", "PORTFOLIOCHAT_INGESTION_DATA_DIR")
	viper.BindEnv("ingestion.github_username", "PORTFOLIOCHAT_INGESTION_GITHUB_USERNAME")
	viper.BindEnv("storage.endpoint", "PORTFOLIOCHAT_STORAGE_ENDPOINT")
	viper.BindEnv("storage.access_key_id", "PORTFOLIOCHAT_STORAGE_ACCESS_KEY_ID")
	viper.BindEnv("storage.secret_access_key", "PORTFOLIOCHAT_STORAGE_SECRET_ACCESS_KEY")

	// Unprefixed names kept for deploy compatibility
	viper.BindEnv("openai.api_key", "OPENAI_API_KEY")
	viper.BindEnv("server.portfolio_domain", "PORTFOLIO_DOMAIN")
	viper.BindEnv("server.port", "PORT")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			slog.Warn("config file error", "error", err)
		}
		// No config file - use defaults + env vars
	}

	if err := viper.Unmarshal(&cfg); err != nil {
		slog.Warn("failed to parse config", "error", err)
	}

	// Addresses as comma-separated string from env
	if addrs := os.Getenv("PORTFOLIOCHAT_ELASTICSEARCH_ADDRESSES"); addrs != "" {
		cfg.Elasticsearch.Addresses = strings.Split(addrs, ",")
	}
}
