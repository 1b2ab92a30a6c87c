package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"athena-kb/internal/chunker"
)

// Config holds all configuration for the application.
type Config struct {
	DocsDir            string
	DBPath             string
	Chunk              chunker.Config
	IngestWorkers      int
	QdrantURL          string // Empty disables the vector store and embeddings
	QdrantCollection   string
	QdrantVectorSize   int
	EmbeddingBaseURL   string
	EmbeddingModelName string
	EmbeddingAPIKey    string
	APIPort            string
	LogLevel           slog.Level
	LogFormat          string // "text" or "json"
}

// VectorsEnabled reports whether chunks are embedded and stored in Qdrant.
func (c *Config) VectorsEnabled() bool {
	return c.QdrantURL != ""
}

// Load reads configuration from environment variables and returns a Config struct.
// If a .env file exists in the current directory or one of its parents, it is
// loaded first. Variables already set take precedence over .env values.
func Load() (*Config, error) {
	loadDotEnv()

	cfg := &Config{
		DocsDir:            getEnv("DOCS_DIR", "./docs"),
		DBPath:             getEnv("DB_PATH", "./data/athena.db"),
		Chunk:              ChunkConfigFromEnv(os.LookupEnv),
		QdrantURL:          getEnv("QDRANT_URL", ""),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "chunks"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		EmbeddingAPIKey:    getEnv("EMBEDDING_API_KEY", ""),
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
	}

	workers, err := getEnvInt("INGEST_WORKERS", runtime.NumCPU())
	if err != nil {
		return nil, err
	}
	if workers <= 0 {
		return nil, fmt.Errorf("INGEST_WORKERS must be greater than 0")
	}
	cfg.IngestWorkers = workers

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("LOG_FORMAT must be text or json, got %q", cfg.LogFormat)
	}

	// The vector size must match the embedding model output. Changing it
	// requires recreating the Qdrant collection.
	if cfg.VectorsEnabled() {
		vectorSizeStr := getEnv("QDRANT_VECTOR_SIZE", "")
		if vectorSizeStr == "" {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE is required when QDRANT_URL is set")
		}
		vectorSize, err := strconv.Atoi(vectorSizeStr)
		if err != nil {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be a valid integer: %w", err)
		}
		if vectorSize <= 0 {
			return nil, fmt.Errorf("QDRANT_VECTOR_SIZE must be greater than 0")
		}
		cfg.QdrantVectorSize = vectorSize
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

// ChunkConfigFromEnv reads CHUNK_SIZE and CHUNK_OVERLAP through lookup.
// Unset, unparsable or negative values fall back to the defaults without an
// error; combinations such as overlap >= size are rejected later by the chunker.
func ChunkConfigFromEnv(lookup func(string) (string, bool)) chunker.Config {
	cfg := chunker.DefaultConfig()
	if n, ok := nonNegativeInt(lookup, "CHUNK_SIZE"); ok {
		cfg.ChunkSize = n
	}
	if n, ok := nonNegativeInt(lookup, "CHUNK_OVERLAP"); ok {
		cfg.ChunkOverlap = n
	}
	return cfg
}

func nonNegativeInt(lookup func(string) (string, bool), key string) (int, bool) {
	raw, ok := lookup(key)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}

// loadDotEnv loads the nearest .env file, searching up to five parent directories.
func loadDotEnv() {
	wd, err := os.Getwd()
	if err != nil {
		return
	}
	dir := wd
	for i := 0; i < 5; i++ {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return
		}
		dir = parent
	}
}

func parseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
	}
	return level, nil
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	raw := getEnv(key, "")
	if raw == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
