package indexer

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"athena-kb/internal/chunker"
	"athena-kb/internal/contextutil"
	"athena-kb/internal/document"
	"athena-kb/internal/parser"
)

// Ingestor turns files and directories into chunks. It is safe for concurrent use.
type Ingestor struct {
	registry  *parser.Registry
	assembler chunker.Assembler
	cfg       chunker.Config
	workers   int
	logger    *slog.Logger
}

// Option configures an Ingestor.
type Option func(*Ingestor)

// WithWorkers bounds the number of files processed concurrently. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(i *Ingestor) {
		if n > 0 {
			i.workers = n
		}
	}
}

// WithLogger sets the logger used instead of the one carried by the context.
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingestor) {
		i.logger = logger
	}
}

// NewIngestor creates an ingestor. The config is validated when ingestion starts.
func NewIngestor(registry *parser.Registry, assembler chunker.Assembler, cfg chunker.Config, opts ...Option) *Ingestor {
	i := &Ingestor{
		registry:  registry,
		assembler: assembler,
		cfg:       cfg,
		workers:   runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Config returns the chunking configuration.
func (i *Ingestor) Config() chunker.Config {
	return i.cfg
}

// Supports reports whether path has a registered parser.
func (i *Ingestor) Supports(path string) bool {
	return i.registry.Supports(path)
}

func (i *Ingestor) loggerFor(ctx context.Context) *slog.Logger {
	if i.logger != nil {
		return i.logger
	}
	return contextutil.LoggerFromContext(ctx)
}

// IngestFile parses and chunks a single file. The path is recorded as the
// chunks' source file exactly as given.
func (i *Ingestor) IngestFile(ctx context.Context, path string) ([]document.Chunk, error) {
	chunks, _, err := i.ingest(ctx, path)
	return chunks, err
}

// ingest is IngestFile that also returns the SHA-256 of the file. The file is
// hashed before it is parsed, so an edit racing the parser leaves a hash that
// no longer matches the file and the next run indexes it again.
func (i *Ingestor) ingest(ctx context.Context, path string) ([]document.Chunk, string, error) {
	if err := i.cfg.Validate(); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	p, err := i.registry.ForPath(path)
	if err != nil {
		return nil, "", err
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, "", document.FileReadError(path, err)
	}
	hash := fmt.Sprintf("%x", sha256.Sum256(content))

	doc, err := p.Parse(path)
	if err != nil {
		return nil, "", err
	}

	chunks, err := i.assembler.Assemble(doc, path, i.cfg)
	if err != nil {
		return nil, "", fmt.Errorf("failed to chunk %s: %w", path, err)
	}

	i.loggerFor(ctx).DebugContext(ctx, "ingested file", "path", path, "chunks", len(chunks), "headings", len(doc.Headings))
	return chunks, hash, nil
}

// IngestDirectory ingests every supported file below root on a bounded worker
// pool. A failing file is recorded in the report and does not stop the batch.
// An invalid config or a cancelled context aborts the run.
func (i *Ingestor) IngestDirectory(ctx context.Context, root string) (*Report, error) {
	logger := i.loggerFor(ctx)

	if err := i.cfg.Validate(); err != nil {
		return nil, err
	}

	info, err := os.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", document.ErrDirectoryNotFound, root)
	}

	paths, err := discoverFiles(ctx, logger, root, i.registry.Supports)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}

	logger.InfoContext(ctx, "starting ingestion", "root", root, "files", len(paths), "workers", i.workers)

	results := make([]FileResult, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(i.workers)

	for idx, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			chunks, hash, err := i.ingest(gctx, path)
			switch {
			case err == nil:
			case errors.Is(err, document.ErrInvalidConfig), gctx.Err() != nil:
				return err
			default:
				logger.WarnContext(ctx, "failed to ingest file", "path", path, "error", err)
			}
			results[idx] = FileResult{Path: path, Chunks: chunks, Hash: hash, Err: err}
			return nil
		})
	}

	waitErr := g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if waitErr != nil {
		return nil, waitErr
	}

	report := &Report{Root: root, Files: results, Chunks: []document.Chunk{}}
	for _, r := range results {
		report.Chunks = append(report.Chunks, r.Chunks...)
	}
	report.Stats = ComputeChunkStats(chunkLengths(report.Chunks))

	logger.InfoContext(ctx, "ingestion completed",
		"root", root,
		"files", len(results),
		"failed", len(report.Failed()),
		"chunks", len(report.Chunks),
	)
	return report, nil
}

func chunkLengths(chunks []document.Chunk) []int {
	lengths := make([]int, len(chunks))
	for i, c := range chunks {
		lengths[i] = len(c.Content)
	}
	return lengths
}
