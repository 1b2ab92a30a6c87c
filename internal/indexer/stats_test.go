package indexer

import (
	"testing"

	"athena-kb/internal/chunker"
)

func TestComputeChunkStats(t *testing.T) {
	tests := []struct {
		name    string
		lengths []int
		want    ChunkStats
	}{
		{
			name:    "empty",
			lengths: nil,
			want:    ChunkStats{},
		},
		{
			name:    "single",
			lengths: []int{42},
			want:    ChunkStats{Count: 1, Min: 42, Max: 42, Mean: 42, P95: 42},
		},
		{
			name:    "unsorted input",
			lengths: []int{300, 100, 200},
			want:    ChunkStats{Count: 3, Min: 100, Max: 300, Mean: 200, P95: 300},
		},
		{
			name:    "mean rounded to two decimals",
			lengths: []int{1, 1, 2},
			want:    ChunkStats{Count: 3, Min: 1, Max: 2, Mean: 1.33, P95: 2},
		},
		{
			name:    "nearest rank percentile",
			lengths: []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18, 19, 20},
			want:    ChunkStats{Count: 20, Min: 1, Max: 20, Mean: 10.5, P95: 19},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ComputeChunkStats(tt.lengths); got != tt.want {
				t.Errorf("ComputeChunkStats() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeChunkStats_DoesNotReorderInput(t *testing.T) {
	lengths := []int{3, 1, 2}
	ComputeChunkStats(lengths)
	if lengths[0] != 3 || lengths[1] != 1 || lengths[2] != 2 {
		t.Errorf("input modified: %v", lengths)
	}
}

func TestIndexVersion(t *testing.T) {
	base := IndexVersion(chunker.DefaultConfig(), "model-a")

	if len(base) != 16 {
		t.Errorf("IndexVersion() length = %d, want 16", len(base))
	}
	if again := IndexVersion(chunker.DefaultConfig(), "model-a"); again != base {
		t.Errorf("IndexVersion() not deterministic: %q != %q", again, base)
	}

	variants := map[string]string{
		"chunk size": IndexVersion(chunker.Config{ChunkSize: 1024, ChunkOverlap: 50}, "model-a"),
		"overlap":    IndexVersion(chunker.Config{ChunkSize: 512, ChunkOverlap: 0}, "model-a"),
		"model":      IndexVersion(chunker.DefaultConfig(), "model-b"),
	}
	for name, v := range variants {
		if v == base {
			t.Errorf("changing %s did not change IndexVersion", name)
		}
	}
}
