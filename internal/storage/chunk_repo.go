package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_chunk_store.go -package=mocks athena-kb/internal/storage ChunkStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ChunkStore defines the interface for chunk storage operations.
type ChunkStore interface {
	// ReplaceByDocument atomically swaps the chunks of a document for chunks.
	ReplaceByDocument(ctx context.Context, documentID string, chunks []*ChunkRecord) error
	// ListIDsByDocument returns the chunk IDs of a document, ordered by chunk_index.
	ListIDsByDocument(ctx context.Context, documentID string) ([]string, error)
	// ListBySource returns the chunks of a source file, ordered by chunk_index.
	ListBySource(ctx context.Context, sourceFile string) ([]*ChunkRecord, error)
	// ListIDs returns every chunk ID.
	ListIDs(ctx context.Context) ([]string, error)
	// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*ChunkRecord, error)
	// ContentLengths returns the byte length of every stored chunk.
	ContentLengths(ctx context.Context) ([]int, error)
}

// ChunkRepo implements ChunkStore on SQLite.
type ChunkRepo struct {
	db *sql.DB
}

// NewChunkRepo creates a new ChunkRepo.
func NewChunkRepo(db *sql.DB) *ChunkRepo {
	return &ChunkRepo{db: db}
}

const chunkColumns = "id, document_id, source_file, chunk_index, content, heading_context, page_number"

// ReplaceByDocument deletes the old chunks of documentID and inserts chunks in one transaction.
func (r *ChunkRepo) ReplaceByDocument(ctx context.Context, documentID string, chunks []*ChunkRecord) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", documentID); err != nil {
		return fmt.Errorf("failed to delete chunks by document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		"INSERT INTO chunks ("+chunkColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return fmt.Errorf("failed to prepare chunk insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, c := range chunks {
		if c.DocumentID != documentID {
			err = fmt.Errorf("chunk %s belongs to document %q, not %q", c.ID, c.DocumentID, documentID)
			return err
		}
		if _, err = stmt.ExecContext(ctx,
			c.ID, c.DocumentID, c.SourceFile, c.ChunkIndex, c.Content,
			nullString(c.HeadingContext), nullInt(c.PageNumber),
		); err != nil {
			return fmt.Errorf("failed to insert chunk: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}
	return nil
}

// ListIDsByDocument returns all chunk IDs for a document, ordered by chunk_index.
// Returns an empty slice if no chunks exist (not an error).
func (r *ChunkRepo) ListIDsByDocument(ctx context.Context, documentID string) ([]string, error) {
	return r.queryIDs(ctx,
		"SELECT id FROM chunks WHERE document_id = ? ORDER BY chunk_index",
		documentID,
	)
}

// ListIDs returns every chunk ID.
func (r *ChunkRepo) ListIDs(ctx context.Context) ([]string, error) {
	return r.queryIDs(ctx, "SELECT id FROM chunks ORDER BY document_id, chunk_index")
}

func (r *ChunkRepo) queryIDs(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk IDs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan chunk ID: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return ids, nil
}

// ListBySource returns the chunks of a source file, ordered by chunk_index.
func (r *ChunkRepo) ListBySource(ctx context.Context, sourceFile string) ([]*ChunkRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+chunkColumns+" FROM chunks WHERE source_file = ? ORDER BY chunk_index",
		sourceFile,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	chunks := []*ChunkRecord{}
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return chunks, nil
}

// GetByID gets a chunk by its ID. Returns ErrNotFound if not found.
func (r *ChunkRepo) GetByID(ctx context.Context, id string) (*ChunkRecord, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+chunkColumns+" FROM chunks WHERE id = ?", id)
	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return chunk, nil
}

// ContentLengths returns the byte length of every stored chunk.
func (r *ChunkRepo) ContentLengths(ctx context.Context) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT length(CAST(content AS BLOB)) FROM chunks")
	if err != nil {
		return nil, fmt.Errorf("failed to query chunk lengths: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	lengths := []int{}
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("failed to scan chunk length: %w", err)
		}
		lengths = append(lengths, n)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return lengths, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChunk(row rowScanner) (*ChunkRecord, error) {
	var (
		chunk   ChunkRecord
		heading sql.NullString
		page    sql.NullInt64
	)
	err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.SourceFile, &chunk.ChunkIndex, &chunk.Content, &heading, &page)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan chunk: %w", err)
	}

	if heading.Valid {
		chunk.HeadingContext = &heading.String
	}
	if page.Valid {
		n := int(page.Int64)
		chunk.PageNumber = &n
	}
	return &chunk, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt(n *int) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*n), Valid: true}
}
