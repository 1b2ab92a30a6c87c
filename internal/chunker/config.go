package chunker

import (
	"athena-kb/internal/document"
)

const (
	// DefaultChunkSize is the target maximum chunk length in bytes.
	DefaultChunkSize = 512
	// DefaultChunkOverlap is the number of bytes shared by consecutive chunks.
	DefaultChunkOverlap = 50
)

// Config controls chunk sizing.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
}

// DefaultConfig returns the default chunk size and overlap.
func DefaultConfig() Config {
	return Config{
		ChunkSize:    DefaultChunkSize,
		ChunkOverlap: DefaultChunkOverlap,
	}
}

// Validate checks 0 <= ChunkOverlap < ChunkSize.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return &document.ConfigError{Field: "chunk_size", Message: "must be greater than 0"}
	}
	if c.ChunkOverlap < 0 {
		return &document.ConfigError{Field: "chunk_overlap", Message: "must not be negative"}
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return &document.ConfigError{Field: "chunk_overlap", Message: "must be less than chunk_size"}
	}
	return nil
}

// searchRadius is how far the boundary search may move a cut away from its target.
func (c Config) searchRadius() int {
	radius := c.ChunkSize / 10
	if radius < minSearchRadius {
		radius = minSearchRadius
	}
	return radius
}
