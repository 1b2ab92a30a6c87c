package vectorstore

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_store.go -package=mocks athena-kb/internal/vectorstore VectorStore

import "context"

// Point is a chunk embedding with its payload.
type Point struct {
	ID   string
	Vec  []float32
	Meta map[string]any
}

// SearchResult is one hit of a similarity search.
type SearchResult struct {
	PointID string
	Score   float32
	Meta    map[string]any
}

// VectorStore defines the interface for vector storage operations.
type VectorStore interface {
	// Upsert inserts or updates points in the collection.
	Upsert(ctx context.Context, collection string, points []Point) error

	// Search returns the k nearest points. Each filter is an exact payload match.
	Search(ctx context.Context, collection string, query []float32, k int, filters map[string]any) ([]SearchResult, error)

	// Delete removes points by their IDs.
	Delete(ctx context.Context, collection string, ids []string) error
}
