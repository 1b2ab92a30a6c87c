package indexer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"athena-kb/internal/contextutil"
	"athena-kb/internal/document"
	"athena-kb/internal/parser"
	"athena-kb/internal/storage"
	"athena-kb/internal/vectorstore"
)

// ErrVectorsDisabled is returned by operations that need embeddings when the
// pipeline was built without a vector store.
var ErrVectorsDisabled = errors.New("vector search is not configured")

// Embedder turns texts into vectors, one per input in order.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// collectionInspector is implemented by vector stores that can report point counts.
type collectionInspector interface {
	GetCollectionInfo(ctx context.Context, collection string) (*vectorstore.CollectionInfo, error)
}

// FileStatus is the outcome of indexing one file.
type FileStatus string

const (
	StatusIndexed   FileStatus = "indexed"
	StatusUnchanged FileStatus = "unchanged"
	StatusFailed    FileStatus = "failed"
)

// IndexedFile reports what happened to one file.
type IndexedFile struct {
	Path   string     `json:"path"`
	Status FileStatus `json:"status"`
	Chunks int        `json:"chunks"`
	Error  string     `json:"error,omitempty"`
}

// IndexReport summarises a persisted directory run.
type IndexReport struct {
	Root      string        `json:"root"`
	Indexed   int           `json:"indexed"`
	Unchanged int           `json:"unchanged"`
	Failed    int           `json:"failed"`
	Files     []IndexedFile `json:"files"`
	Chunks    ChunkStats    `json:"chunks"`
}

// Pipeline persists ingested chunks into SQLite and, when configured, their
// embeddings into the vector store. Writes happen from the calling goroutine only.
type Pipeline struct {
	ingestor       *Ingestor
	documents      storage.DocumentStore
	chunks         storage.ChunkStore
	embedder       Embedder
	vectorStore    vectorstore.VectorStore
	collection     string
	embeddingModel string
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithVectors enables embedding chunks into collection.
func WithVectors(embedder Embedder, store vectorstore.VectorStore, collection string) PipelineOption {
	return func(p *Pipeline) {
		p.embedder = embedder
		p.vectorStore = store
		p.collection = collection
	}
}

// WithEmbeddingModel records the embedding model name in the index version.
func WithEmbeddingModel(name string) PipelineOption {
	return func(p *Pipeline) {
		p.embeddingModel = name
	}
}

// NewPipeline creates a new indexing pipeline.
func NewPipeline(ingestor *Ingestor, documents storage.DocumentStore, chunks storage.ChunkStore, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		ingestor:  ingestor,
		documents: documents,
		chunks:    chunks,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// VectorsEnabled reports whether chunks are embedded.
func (p *Pipeline) VectorsEnabled() bool {
	return p.embedder != nil && p.vectorStore != nil
}

// IndexFile ingests and persists a single file.
func (p *Pipeline) IndexFile(ctx context.Context, path string) (IndexedFile, error) {
	chunks, hash, err := p.ingestor.ingest(ctx, path)
	if err != nil {
		return IndexedFile{Path: path, Status: StatusFailed, Error: err.Error()}, err
	}
	return p.persist(ctx, path, chunks, hash)
}

// IndexDirectory ingests root in parallel, then persists every successful
// file in path order. Per-file failures are reported, not returned.
func (p *Pipeline) IndexDirectory(ctx context.Context, root string) (*IndexReport, error) {
	logger := contextutil.LoggerFromContext(ctx)

	report, err := p.ingestor.IngestDirectory(ctx, root)
	if err != nil {
		return nil, err
	}

	out := &IndexReport{
		Root:   root,
		Files:  make([]IndexedFile, 0, len(report.Files)),
		Chunks: report.Stats,
	}

	for _, file := range report.Files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result := IndexedFile{Path: file.Path, Status: StatusFailed}
		if file.Err != nil {
			result.Error = file.Err.Error()
		} else {
			result, err = p.persist(ctx, file.Path, file.Chunks, file.Hash)
			if err != nil {
				logger.ErrorContext(ctx, "failed to persist file", "path", file.Path, "error", err)
			}
		}

		switch result.Status {
		case StatusIndexed:
			out.Indexed++
		case StatusUnchanged:
			out.Unchanged++
		default:
			out.Failed++
		}
		out.Files = append(out.Files, result)
	}

	logger.InfoContext(ctx, "indexing completed",
		"root", root,
		"indexed", out.Indexed,
		"unchanged", out.Unchanged,
		"failed", out.Failed,
	)
	return out, nil
}

// indexVersion identifies the settings chunks are currently built with.
func (p *Pipeline) indexVersion() string {
	return IndexVersion(p.ingestor.Config(), p.embeddingModel)
}

// persist stores the chunks of path unless both the file hash and the index
// version match the stored document. The hash is written last so an
// interrupted run is retried next time.
func (p *Pipeline) persist(ctx context.Context, path string, chunks []document.Chunk, hash string) (IndexedFile, error) {
	logger := contextutil.LoggerFromContext(ctx)
	result := IndexedFile{Path: path, Status: StatusFailed}

	fail := func(err error) (IndexedFile, error) {
		result.Error = err.Error()
		return result, err
	}

	version := p.indexVersion()

	existing, err := p.documents.GetByPath(ctx, path)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return fail(fmt.Errorf("failed to check existing document: %w", err))
	}
	if existing != nil && existing.Hash == hash && existing.IndexVersion == version {
		logger.DebugContext(ctx, "skipping unchanged file", "path", path, "hash", hash)
		result.Status = StatusUnchanged
		result.Chunks = existing.ChunkCount
		return result, nil
	}

	doc := &storage.DocumentRecord{
		Path:   path,
		Format: parser.Extension(path),
	}
	if err := p.documents.Upsert(ctx, doc); err != nil {
		return fail(fmt.Errorf("failed to upsert document: %w", err))
	}

	var oldIDs []string
	if p.VectorsEnabled() && existing != nil {
		oldIDs, err = p.chunks.ListIDsByDocument(ctx, doc.ID)
		if err != nil {
			return fail(fmt.Errorf("failed to list old chunk IDs: %w", err))
		}
	}

	records := make([]*storage.ChunkRecord, len(chunks))
	for i, c := range chunks {
		records[i] = storage.NewChunkRecord(doc.ID, c)
	}
	if err := p.chunks.ReplaceByDocument(ctx, doc.ID, records); err != nil {
		return fail(fmt.Errorf("failed to store chunks: %w", err))
	}

	if p.VectorsEnabled() {
		if err := p.syncVectors(ctx, logger, doc.ID, oldIDs, chunks); err != nil {
			return fail(err)
		}
	}

	doc.Hash = hash
	doc.IndexVersion = version
	doc.ChunkCount = len(chunks)
	if err := p.documents.Upsert(ctx, doc); err != nil {
		return fail(fmt.Errorf("failed to update document: %w", err))
	}

	logger.InfoContext(ctx, "indexed document", "path", path, "chunks", len(chunks))
	result.Status = StatusIndexed
	result.Chunks = len(chunks)
	return result, nil
}

// syncVectors deletes points that no longer exist and upserts embeddings of chunks.
func (p *Pipeline) syncVectors(ctx context.Context, logger *slog.Logger, documentID string, oldIDs []string, chunks []document.Chunk) error {
	current := make(map[string]struct{}, len(chunks))
	for _, c := range chunks {
		current[c.ID] = struct{}{}
	}
	var stale []string
	for _, id := range oldIDs {
		if _, ok := current[id]; !ok {
			stale = append(stale, id)
		}
	}
	if len(stale) > 0 {
		if err := p.vectorStore.Delete(ctx, p.collection, stale); err != nil {
			logger.WarnContext(ctx, "failed to delete stale vectors", "document_id", documentID, "count", len(stale), "error", err)
		}
	}

	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}
	embeddings, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(chunks), len(embeddings))
	}

	points := make([]vectorstore.Point, len(chunks))
	for i, c := range chunks {
		meta := map[string]any{
			"document_id": documentID,
			"source_file": c.SourceFile,
			"chunk_index": c.ChunkIndex,
		}
		if c.HeadingContext != nil {
			meta["heading_context"] = *c.HeadingContext
		}
		if c.PageNumber != nil {
			meta["page_number"] = *c.PageNumber
		}
		points[i] = vectorstore.Point{ID: c.ID, Vec: embeddings[i], Meta: meta}
	}

	if err := p.vectorStore.Upsert(ctx, p.collection, points); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return nil
}

// ClearAll removes every document, chunk and vector point.
func (p *Pipeline) ClearAll(ctx context.Context) error {
	logger := contextutil.LoggerFromContext(ctx)

	if p.VectorsEnabled() {
		ids, err := p.chunks.ListIDs(ctx)
		if err != nil {
			return fmt.Errorf("failed to list chunk IDs: %w", err)
		}
		if err := p.vectorStore.Delete(ctx, p.collection, ids); err != nil {
			return fmt.Errorf("failed to delete vectors: %w", err)
		}
	}

	if err := p.documents.DeleteAll(ctx); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}

	logger.InfoContext(ctx, "index cleared")
	return nil
}

// SearchHit is a stored chunk with its relevance scores. Score is the sum of
// VectorScore and LexicalScore.
type SearchHit struct {
	Chunk        document.Chunk `json:"chunk"`
	Score        float32        `json:"score"`
	VectorScore  float32        `json:"vector_score"`
	LexicalScore float32        `json:"lexical_score"`
}

// Search embeds query and returns the k most relevant stored chunks, optionally
// restricted to one source file. Vector candidates are reranked by query term
// overlap. Points without a stored chunk are skipped.
func (p *Pipeline) Search(ctx context.Context, query string, k int, source string) ([]SearchHit, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if !p.VectorsEnabled() {
		return nil, ErrVectorsDisabled
	}

	vectors, err := p.embedder.EmbedTexts(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedding count mismatch: expected 1, got %d", len(vectors))
	}

	var filters map[string]any
	if source != "" {
		filters = map[string]any{"source_file": source}
	}

	results, err := p.vectorStore.Search(ctx, p.collection, vectors[0], k*searchOversample, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to search vectors: %w", err)
	}

	hits := make([]SearchHit, 0, len(results))
	for _, r := range results {
		record, err := p.chunks.GetByID(ctx, r.PointID)
		if errors.Is(err, storage.ErrNotFound) {
			logger.WarnContext(ctx, "vector point without stored chunk", "point_id", r.PointID)
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to load chunk %s: %w", r.PointID, err)
		}
		hits = append(hits, SearchHit{Chunk: record.Chunk(), VectorScore: r.Score})
	}
	return rerank(query, hits, k), nil
}
