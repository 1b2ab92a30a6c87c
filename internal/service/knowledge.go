package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks athena-kb/internal/service Index
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_knowledge_service.go -package=mocks athena-kb/internal/service KnowledgeService

import (
	"context"
	"errors"
	"sync"

	"athena-kb/internal/contextutil"
	"athena-kb/internal/document"
	"athena-kb/internal/indexer"
	"athena-kb/internal/storage"
)

const (
	// DefaultSearchLimit is used when a search request does not set K.
	DefaultSearchLimit = 5
	// MaxSearchLimit bounds K for a single search.
	MaxSearchLimit = 50
)

// Index is the persistence pipeline as seen by the service layer.
type Index interface {
	// IndexDirectory ingests and persists every supported file below root.
	IndexDirectory(ctx context.Context, root string) (*indexer.IndexReport, error)
	// ClearAll removes every document, chunk and vector point.
	ClearAll(ctx context.Context) error
	// Stats reports statistics for the persisted index.
	Stats(ctx context.Context) (*indexer.IndexStats, error)
	// Search returns the k chunks most similar to query.
	Search(ctx context.Context, query string, k int, source string) ([]indexer.SearchHit, error)
}

// IngestRequest asks for the documents directory to be indexed.
type IngestRequest struct {
	// Force clears the existing index before ingesting.
	Force bool
}

// SearchRequest represents a similarity search in the domain layer.
type SearchRequest struct {
	Query  string
	K      int
	Source string
}

// KnowledgeService exposes the knowledge base to transports.
type KnowledgeService interface {
	// Ingest indexes the configured documents directory. Only one run is active at a time.
	Ingest(ctx context.Context, req IngestRequest) (*indexer.IndexReport, error)
	// Documents lists indexed documents ordered by path.
	Documents(ctx context.Context) ([]*storage.DocumentRecord, error)
	// Chunks returns the stored chunks of one source file.
	Chunks(ctx context.Context, source string) ([]document.Chunk, error)
	// Stats reports statistics for the persisted index.
	Stats(ctx context.Context) (*indexer.IndexStats, error)
	// Search runs a similarity search over stored chunks.
	Search(ctx context.Context, req SearchRequest) ([]indexer.SearchHit, error)
}

// knowledgeService implements KnowledgeService.
type knowledgeService struct {
	index     Index
	documents storage.DocumentStore
	chunks    storage.ChunkStore
	docsDir   string
	ingestMu  sync.Mutex
}

// NewKnowledgeService creates a new KnowledgeService that ingests docsDir.
func NewKnowledgeService(index Index, documents storage.DocumentStore, chunks storage.ChunkStore, docsDir string) KnowledgeService {
	return &knowledgeService{
		index:     index,
		documents: documents,
		chunks:    chunks,
		docsDir:   docsDir,
	}
}

// Ingest indexes the documents directory.
func (s *knowledgeService) Ingest(ctx context.Context, req IngestRequest) (*indexer.IndexReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !s.ingestMu.TryLock() {
		logger.WarnContext(ctx, "ingestion rejected, another run is active")
		return nil, ErrIngestInProgress
	}
	defer s.ingestMu.Unlock()

	if req.Force {
		if err := s.index.ClearAll(ctx); err != nil {
			logger.ErrorContext(ctx, "failed to clear index", "error", err)
			return nil, WrapError(err, "failed to clear index")
		}
		logger.InfoContext(ctx, "cleared existing index")
	}

	report, err := s.index.IndexDirectory(ctx, s.docsDir)
	if err != nil {
		logger.ErrorContext(ctx, "ingestion failed", "dir", s.docsDir, "error", err)
		return nil, WrapError(err, "ingestion failed")
	}

	logger.InfoContext(ctx, "ingestion processed successfully",
		"dir", s.docsDir,
		"indexed", report.Indexed,
		"unchanged", report.Unchanged,
		"failed", report.Failed,
	)
	return report, nil
}

// Documents lists indexed documents.
func (s *knowledgeService) Documents(ctx context.Context) ([]*storage.DocumentRecord, error) {
	docs, err := s.documents.List(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to list documents")
	}
	return docs, nil
}

// Chunks returns the chunks of source in index order.
func (s *knowledgeService) Chunks(ctx context.Context, source string) ([]document.Chunk, error) {
	if source == "" {
		return nil, &ValidationError{Field: "source", Message: "cannot be empty"}
	}

	records, err := s.chunks.ListBySource(ctx, source)
	if err != nil {
		return nil, WrapError(err, "failed to list chunks")
	}
	if len(records) == 0 {
		_, err := s.documents.GetByPath(ctx, source)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, WrapError(ErrNotFound, "document "+source)
		}
		if err != nil {
			return nil, WrapError(err, "failed to look up document")
		}
	}

	chunks := make([]document.Chunk, len(records))
	for i, r := range records {
		chunks[i] = r.Chunk()
	}
	return chunks, nil
}

// Stats reports statistics for the persisted index.
func (s *knowledgeService) Stats(ctx context.Context) (*indexer.IndexStats, error) {
	stats, err := s.index.Stats(ctx)
	if err != nil {
		return nil, WrapError(err, "failed to compute stats")
	}
	return stats, nil
}

// Search validates req and runs a similarity search.
func (s *knowledgeService) Search(ctx context.Context, req SearchRequest) ([]indexer.SearchHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if req.Query == "" {
		return nil, &ValidationError{Field: "q", Message: "cannot be empty"}
	}
	if req.K == 0 {
		req.K = DefaultSearchLimit
	}
	if req.K < 0 || req.K > MaxSearchLimit {
		return nil, &ValidationError{Field: "k", Message: "must be between 1 and 50"}
	}

	hits, err := s.index.Search(ctx, req.Query, req.K, req.Source)
	if err != nil {
		logger.ErrorContext(ctx, "search failed", "error", err)
		return nil, WrapError(err, "search failed")
	}

	logger.InfoContext(ctx, "search processed successfully", "query_length", len(req.Query), "k", req.K, "hits", len(hits))
	return hits, nil
}
