package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"athena-kb/internal/chunker"
)

var envVars = []string{
	"DOCS_DIR", "DB_PATH", "CHUNK_SIZE", "CHUNK_OVERLAP", "INGEST_WORKERS",
	"QDRANT_URL", "QDRANT_COLLECTION", "QDRANT_VECTOR_SIZE",
	"EMBEDDING_BASE_URL", "EMBEDDING_MODEL_NAME", "EMBEDDING_API_KEY",
	"API_PORT", "LOG_LEVEL", "LOG_FORMAT",
}

// clearEnv blanks every variable Load reads so the host environment cannot leak in.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envVars {
		t.Setenv(key, "")
		_ = os.Unsetenv(key)
	}
	t.Setenv("DB_PATH", filepath.Join(t.TempDir(), "data", "test.db"))
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		wantErr     bool
		checkConfig func(*testing.T, *Config)
	}{
		{
			name: "defaults",
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.DocsDir != "./docs" {
					t.Errorf("DocsDir = %q, want ./docs", cfg.DocsDir)
				}
				if cfg.Chunk != chunker.DefaultConfig() {
					t.Errorf("Chunk = %+v, want defaults", cfg.Chunk)
				}
				if cfg.IngestWorkers != runtime.NumCPU() {
					t.Errorf("IngestWorkers = %d, want %d", cfg.IngestWorkers, runtime.NumCPU())
				}
				if cfg.VectorsEnabled() {
					t.Error("VectorsEnabled() = true without QDRANT_URL")
				}
				if cfg.QdrantCollection != "chunks" || cfg.APIPort != "9000" {
					t.Errorf("QdrantCollection = %q, APIPort = %q", cfg.QdrantCollection, cfg.APIPort)
				}
				if cfg.LogLevel != slog.LevelInfo || cfg.LogFormat != "text" {
					t.Errorf("LogLevel = %v, LogFormat = %q", cfg.LogLevel, cfg.LogFormat)
				}
				if _, err := os.Stat(filepath.Dir(cfg.DBPath)); err != nil {
					t.Errorf("data directory not created: %v", err)
				}
			},
		},
		{
			name: "qdrant enabled with vector size",
			env: map[string]string{
				"QDRANT_URL":         "http://localhost:6333",
				"QDRANT_VECTOR_SIZE": "768",
				"QDRANT_COLLECTION":  "kb",
			},
			checkConfig: func(t *testing.T, cfg *Config) {
				if !cfg.VectorsEnabled() || cfg.QdrantVectorSize != 768 || cfg.QdrantCollection != "kb" {
					t.Errorf("Qdrant config = %q %d %q", cfg.QdrantURL, cfg.QdrantVectorSize, cfg.QdrantCollection)
				}
			},
		},
		{
			name:    "qdrant without vector size",
			env:     map[string]string{"QDRANT_URL": "http://localhost:6333"},
			wantErr: true,
		},
		{
			name:    "invalid vector size",
			env:     map[string]string{"QDRANT_URL": "http://localhost:6333", "QDRANT_VECTOR_SIZE": "abc"},
			wantErr: true,
		},
		{
			name:    "zero vector size",
			env:     map[string]string{"QDRANT_URL": "http://localhost:6333", "QDRANT_VECTOR_SIZE": "0"},
			wantErr: true,
		},
		{
			name: "chunk settings and workers",
			env:  map[string]string{"CHUNK_SIZE": "256", "CHUNK_OVERLAP": "32", "INGEST_WORKERS": "3"},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.Chunk.ChunkSize != 256 || cfg.Chunk.ChunkOverlap != 32 || cfg.IngestWorkers != 3 {
					t.Errorf("Chunk = %+v, IngestWorkers = %d", cfg.Chunk, cfg.IngestWorkers)
				}
			},
		},
		{
			name:    "invalid workers",
			env:     map[string]string{"INGEST_WORKERS": "many"},
			wantErr: true,
		},
		{
			name:    "zero workers",
			env:     map[string]string{"INGEST_WORKERS": "0"},
			wantErr: true,
		},
		{
			name: "log settings",
			env:  map[string]string{"LOG_LEVEL": "debug", "LOG_FORMAT": "JSON"},
			checkConfig: func(t *testing.T, cfg *Config) {
				if cfg.LogLevel != slog.LevelDebug || cfg.LogFormat != "json" {
					t.Errorf("LogLevel = %v, LogFormat = %q", cfg.LogLevel, cfg.LogFormat)
				}
			},
		},
		{
			name:    "invalid log level",
			env:     map[string]string{"LOG_LEVEL": "loud"},
			wantErr: true,
		},
		{
			name:    "invalid log format",
			env:     map[string]string{"LOG_FORMAT": "xml"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}

			cfg, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Errorf("Load() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("Load() unexpected error: %v", err)
			}
			if tt.checkConfig != nil {
				tt.checkConfig(t, cfg)
			}
		})
	}
}

func TestChunkConfigFromEnv(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want chunker.Config
	}{
		{
			name: "unset uses defaults",
			env:  map[string]string{},
			want: chunker.Config{ChunkSize: 512, ChunkOverlap: 50},
		},
		{
			name: "both set",
			env:  map[string]string{"CHUNK_SIZE": "1000", "CHUNK_OVERLAP": "100"},
			want: chunker.Config{ChunkSize: 1000, ChunkOverlap: 100},
		},
		{
			name: "unparsable falls back",
			env:  map[string]string{"CHUNK_SIZE": "big", "CHUNK_OVERLAP": "1.5"},
			want: chunker.Config{ChunkSize: 512, ChunkOverlap: 50},
		},
		{
			name: "negative falls back",
			env:  map[string]string{"CHUNK_SIZE": "-10", "CHUNK_OVERLAP": "-1"},
			want: chunker.Config{ChunkSize: 512, ChunkOverlap: 50},
		},
		{
			name: "zero is passed through for validation",
			env:  map[string]string{"CHUNK_SIZE": "0", "CHUNK_OVERLAP": "0"},
			want: chunker.Config{ChunkSize: 0, ChunkOverlap: 0},
		},
		{
			name: "overlap above size is passed through for validation",
			env:  map[string]string{"CHUNK_SIZE": "100", "CHUNK_OVERLAP": "200"},
			want: chunker.Config{ChunkSize: 100, ChunkOverlap: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lookup := func(key string) (string, bool) {
				v, ok := tt.env[key]
				return v, ok
			}
			if got := ChunkConfigFromEnv(lookup); got != tt.want {
				t.Errorf("ChunkConfigFromEnv() = %+v, want %+v", got, tt.want)
			}
		})
	}
}
