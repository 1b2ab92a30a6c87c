package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"io"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"athena-kb/internal/chunker"
	"athena-kb/internal/config"
	"athena-kb/internal/contextutil"
	"athena-kb/internal/handlers"
	"athena-kb/internal/http"
	"athena-kb/internal/indexer"
	"athena-kb/internal/llm"
	"athena-kb/internal/parser"
	"athena-kb/internal/service"
	"athena-kb/internal/storage"
	"athena-kb/internal/vectorstore"
)

func main() {
	dir := flag.String("dir", "", "Documents directory (overrides DOCS_DIR)")
	serve := flag.Bool("serve", false, "Run the HTTP API after the initial ingestion")
	jsonOut := flag.Bool("json", false, "Print chunks as JSON lines to stdout without persisting them")
	force := flag.Bool("force", false, "Clear the index before ingesting")
	flag.Parse()

	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dir != "" {
		cfg.DocsDir = *dir
	}

	// Chunks own stdout in -json mode.
	logOut := io.Writer(os.Stdout)
	if *jsonOut {
		logOut = os.Stderr
	}
	logger := newLogger(cfg, logOut)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = contextutil.WithLogger(ctx, logger)

	ingestor := indexer.NewIngestor(
		parser.DefaultRegistry(),
		chunker.NewSemanticChunker(),
		cfg.Chunk,
		indexer.WithWorkers(cfg.IngestWorkers),
	)

	if *jsonOut {
		if err := printChunks(ctx, ingestor, cfg.DocsDir, os.Stdout); err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		return
	}

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	documentRepo := storage.NewDocumentRepo(db)
	chunkRepo := storage.NewChunkRepo(db)

	opts := []indexer.PipelineOption{indexer.WithEmbeddingModel(cfg.EmbeddingModelName)}
	healthChecks := []handlers.HealthCheck{{Name: "database", Check: db.PingContext}}

	if cfg.VectorsEnabled() {
		vectorStore, embedder, err := openVectors(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize vector search: %v", err)
		}
		defer func() {
			_ = vectorStore.Close()
		}()
		opts = append(opts, indexer.WithVectors(embedder, vectorStore, cfg.QdrantCollection))
		healthChecks = append(healthChecks, handlers.HealthCheck{
			Name:  "vector_store",
			Check: collectionCheck(vectorStore, cfg.QdrantCollection),
		})
	} else {
		slog.Info("Vector search disabled, QDRANT_URL not set")
	}

	pipeline := indexer.NewPipeline(ingestor, documentRepo, chunkRepo, opts...)
	svc := service.NewKnowledgeService(pipeline, documentRepo, chunkRepo, cfg.DocsDir)

	if !*serve {
		report, err := svc.Ingest(ctx, service.IngestRequest{Force: *force})
		if err != nil {
			log.Fatalf("Ingestion failed: %v", err)
		}
		if err := json.NewEncoder(os.Stdout).Encode(report); err != nil {
			log.Fatalf("Failed to write report: %v", err)
		}
		if report.Failed > 0 {
			_ = db.Close()
			os.Exit(1)
		}
		return
	}

	router := http.NewRouter(&http.Deps{
		Service:      svc,
		HealthChecks: healthChecks,
	})

	// Start indexing in background after router is ready
	go func() {
		slog.Info("Starting background ingestion", "dir", cfg.DocsDir)
		if _, err := svc.Ingest(ctx, service.IngestRequest{Force: *force}); err != nil {
			slog.Error("Background ingestion failed", "error", err)
		}
	}()

	addr := ":" + cfg.APIPort
	server := &nethttp.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown failed", "error", err)
		}
	}()

	slog.Info("Starting API server", "addr", addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		log.Fatalf("API server failed to start: %v", err)
	}
	slog.Info("API server stopped")
}

// newLogger configures structured logging with the configured level and format.
func newLogger(cfg *config.Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// openVectors connects to Qdrant and checks that the embedding service
// produces vectors of the collection's size.
func openVectors(ctx context.Context, cfg *config.Config) (*vectorstore.QdrantStore, *llm.EmbeddingsClient, error) {
	vectorStore, err := vectorstore.NewQdrantStore(cfg.QdrantURL)
	if err != nil {
		return nil, nil, err
	}

	if err := vectorStore.EnsureCollection(ctx, cfg.QdrantCollection, cfg.QdrantVectorSize); err != nil {
		_ = vectorStore.Close()
		return nil, nil, err
	}
	slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.QdrantVectorSize)

	// Fail fast on a mismatched embedding model.
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.EmbeddingAPIKey, cfg.EmbeddingModelName, cfg.QdrantVectorSize)
	if _, err := embedder.EmbedTexts(ctx, []string{"test"}); err != nil {
		_ = vectorStore.Close()
		return nil, nil, err
	}
	slog.Info("Embedding client validated", "model", cfg.EmbeddingModelName, "vector_size", cfg.QdrantVectorSize)

	return vectorStore, embedder, nil
}

func collectionCheck(store *vectorstore.QdrantStore, collection string) func(context.Context) error {
	return func(ctx context.Context) error {
		exists, err := store.CollectionExists(ctx, collection)
		if err != nil {
			return err
		}
		if !exists {
			return errors.New("collection " + collection + " does not exist")
		}
		return nil
	}
}

// printChunks ingests dir and writes every chunk as one JSON line.
func printChunks(ctx context.Context, ingestor *indexer.Ingestor, dir string, w io.Writer) error {
	report, err := ingestor.IngestDirectory(ctx, dir)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(w)
	for _, c := range report.Chunks {
		if err := enc.Encode(c); err != nil {
			return err
		}
	}

	summary := report.Summary()
	slog.InfoContext(ctx, "Ingestion summary", "summary", summary.String(), "mean_chunk_bytes", summary.Stats.Mean)
	for _, f := range summary.Failures {
		slog.WarnContext(ctx, "File failed", "path", f.Path, "error", f.Error)
	}
	return nil
}
