package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks athena-kb/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DocumentStore defines the interface for document storage operations.
type DocumentStore interface {
	// GetByPath gets a document by its source path.
	// Returns nil and ErrNotFound if not found.
	GetByPath(ctx context.Context, path string) (*DocumentRecord, error)
	// Upsert inserts a new document or updates the one with the same path.
	// doc.ID is filled in on return.
	Upsert(ctx context.Context, doc *DocumentRecord) error
	// List returns all documents ordered by path.
	List(ctx context.Context) ([]*DocumentRecord, error)
	// DeleteAll removes every document and, through the foreign key, every chunk.
	DeleteAll(ctx context.Context) error
}

// DocumentRepo implements DocumentStore on SQLite.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// GetByPath gets a document by its source path.
func (r *DocumentRepo) GetByPath(ctx context.Context, path string) (*DocumentRecord, error) {
	var doc DocumentRecord
	err := r.db.QueryRowContext(ctx,
		"SELECT id, path, format, hash, index_version, chunk_count, indexed_at FROM documents WHERE path = ?",
		path,
	).Scan(&doc.ID, &doc.Path, &doc.Format, &doc.Hash, &doc.IndexVersion, &doc.ChunkCount, &doc.IndexedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}

	return &doc, nil
}

// Upsert inserts a new document or updates an existing one.
// An existing document keeps its ID; a new one gets a random UUID unless doc.ID is set.
func (r *DocumentRepo) Upsert(ctx context.Context, doc *DocumentRecord) error {
	existing, err := r.GetByPath(ctx, doc.Path)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to check existing document: %w", err)
	}

	switch {
	case existing != nil:
		doc.ID = existing.ID
	case doc.ID == "":
		doc.ID = uuid.New().String()
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO documents (id, path, format, hash, index_version, chunk_count, indexed_at)
		 VALUES (?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		 ON CONFLICT (path) DO UPDATE SET
		 format = excluded.format, hash = excluded.hash, index_version = excluded.index_version,
		 chunk_count = excluded.chunk_count, indexed_at = CURRENT_TIMESTAMP`,
		doc.ID, doc.Path, doc.Format, doc.Hash, doc.IndexVersion, doc.ChunkCount,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert document: %w", err)
	}

	return nil
}

// List returns all documents ordered by path.
func (r *DocumentRepo) List(ctx context.Context) ([]*DocumentRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, path, format, hash, index_version, chunk_count, indexed_at FROM documents ORDER BY path",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	docs := []*DocumentRecord{}
	for rows.Next() {
		var doc DocumentRecord
		if err := rows.Scan(&doc.ID, &doc.Path, &doc.Format, &doc.Hash, &doc.IndexVersion, &doc.ChunkCount, &doc.IndexedAt); err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, &doc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return docs, nil
}

// DeleteAll removes every document and its chunks.
func (r *DocumentRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("failed to delete documents: %w", err)
	}
	return nil
}
