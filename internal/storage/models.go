package storage

import (
	"time"

	"athena-kb/internal/document"
)

// DocumentRecord is an ingested source file.
type DocumentRecord struct {
	ID           string    `json:"id"`            // UUID
	Path         string    `json:"path"`          // Source path as given to the ingestor
	Format       string    `json:"format"`        // Parser extension, e.g. "md" or "pdf"
	Hash         string    `json:"hash"`          // SHA256 hex string of file content
	IndexVersion string    `json:"index_version"` // Chunking and embedding settings the chunks were built with
	ChunkCount   int       `json:"chunk_count"`
	IndexedAt    time.Time `json:"indexed_at"`
}

// ChunkRecord is a persisted chunk. Its ID doubles as the vector point ID.
type ChunkRecord struct {
	ID             string
	DocumentID     string
	SourceFile     string
	ChunkIndex     int
	Content        string
	HeadingContext *string
	PageNumber     *int
}

// NewChunkRecord converts a chunk into a record owned by documentID.
func NewChunkRecord(documentID string, c document.Chunk) *ChunkRecord {
	return &ChunkRecord{
		ID:             c.ID,
		DocumentID:     documentID,
		SourceFile:     c.SourceFile,
		ChunkIndex:     c.ChunkIndex,
		Content:        c.Content,
		HeadingContext: c.HeadingContext,
		PageNumber:     c.PageNumber,
	}
}

// Chunk converts the record back to its public form.
func (r *ChunkRecord) Chunk() document.Chunk {
	return document.Chunk{
		ID:             r.ID,
		Content:        r.Content,
		SourceFile:     r.SourceFile,
		ChunkIndex:     r.ChunkIndex,
		HeadingContext: r.HeadingContext,
		PageNumber:     r.PageNumber,
	}
}
