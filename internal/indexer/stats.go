package indexer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"sort"

	"athena-kb/internal/chunker"
)

// ChunkerVersion identifies the chunking algorithm. Bump it when cut
// selection changes so stored indexes can be told apart.
const ChunkerVersion = "v2.0"

// ChunkStats summarises chunk lengths in bytes.
type ChunkStats struct {
	Count int     `json:"count"`
	Min   int     `json:"min"`
	Max   int     `json:"max"`
	Mean  float64 `json:"mean"`
	P95   int     `json:"p95"`
}

// IndexStats describes the persisted index.
type IndexStats struct {
	Documents      int        `json:"documents"`
	Chunks         ChunkStats `json:"chunks"`
	VectorPoints   *int       `json:"vector_points,omitempty"`
	ChunkerVersion string     `json:"chunker_version"`
	IndexVersion   string     `json:"index_version"`
}

// ComputeChunkStats computes count, min, max, mean (two decimals) and the
// nearest-rank 95th percentile of lengths.
func ComputeChunkStats(lengths []int) ChunkStats {
	if len(lengths) == 0 {
		return ChunkStats{}
	}

	sorted := make([]int, len(lengths))
	copy(sorted, lengths)
	sort.Ints(sorted)

	sum := 0
	for _, n := range sorted {
		sum += n
	}
	mean := float64(sum) / float64(len(sorted))

	rank := int(math.Ceil(float64(len(sorted))*0.95)) - 1
	rank = max(0, min(rank, len(sorted)-1))

	return ChunkStats{
		Count: len(sorted),
		Min:   sorted[0],
		Max:   sorted[len(sorted)-1],
		Mean:  math.Round(mean*100) / 100,
		P95:   sorted[rank],
	}
}

// IndexVersion hashes everything that changes chunk boundaries or vectors:
// the chunker version, the chunking parameters and the embedding model.
func IndexVersion(cfg chunker.Config, embeddingModel string) string {
	input := fmt.Sprintf("%s|chunkSize=%d|chunkOverlap=%d|%s",
		ChunkerVersion, cfg.ChunkSize, cfg.ChunkOverlap, embeddingModel)
	hash := sha256.Sum256([]byte(input))
	return hex.EncodeToString(hash[:])[:16]
}

// Stats reports document and chunk statistics for the persisted index.
func (p *Pipeline) Stats(ctx context.Context) (*IndexStats, error) {
	docs, err := p.documents.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}

	lengths, err := p.chunks.ContentLengths(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chunk lengths: %w", err)
	}

	stats := &IndexStats{
		Documents:      len(docs),
		Chunks:         ComputeChunkStats(lengths),
		ChunkerVersion: ChunkerVersion,
		IndexVersion:   p.indexVersion(),
	}

	if inspector, ok := p.vectorStore.(collectionInspector); ok && p.VectorsEnabled() {
		info, err := inspector.GetCollectionInfo(ctx, p.collection)
		if err != nil {
			return nil, fmt.Errorf("failed to read vector collection: %w", err)
		}
		stats.VectorPoints = &info.PointsCount
	}

	return stats, nil
}
