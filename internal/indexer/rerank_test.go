package indexer

import (
	"math"
	"strings"
	"testing"

	"athena-kb/internal/document"
)

func TestTermScore(t *testing.T) {
	tests := []struct {
		name    string
		query   string
		content string
		heading string
		want    func(float32) bool
	}{
		{
			name:    "matching body is positive and bounded",
			query:   "Project updates",
			content: "The project timeline lists recent updates for the project. These updates cover scope.",
			want:    func(s float32) bool { return s > 0 && s <= maxTermScore },
		},
		{
			name:    "heading bonus only",
			query:   "database",
			content: "General context without the keyword.",
			heading: "Architecture > Database Layer",
			want:    func(s float32) bool { return math.Abs(float64(s-headingTermBonus)) < 1e-4 },
		},
		{
			name:    "stopword query",
			query:   "the and of",
			content: "the and of",
			want:    func(s float32) bool { return s == 0 },
		},
		{
			name:    "long chunk dilutes but stays positive",
			query:   "project",
			content: "project" + strings.Repeat(" filler", 200),
			want:    func(s float32) bool { return s > 0 && s < headingTermBonus },
		},
		{
			name:    "empty content",
			query:   "project",
			content: "",
			heading: "Project",
			want:    func(s float32) bool { return s == 0 },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := termScore(queryTerms(tt.query), tt.content, tt.heading)
			if !tt.want(got) {
				t.Errorf("termScore(%q) = %f", tt.query, got)
			}
		})
	}
}

func TestTerms(t *testing.T) {
	got := terms("Go's chunker, v2.0!")
	want := []string{"go", "s", "chunker", "v2", "0"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("terms() = %q, want %q", got, want)
	}
}

func TestRerank(t *testing.T) {
	heading := "Setup"
	hits := []SearchHit{
		{Chunk: document.Chunk{ID: "a", Content: "unrelated prose about nothing"}, VectorScore: 0.80},
		{Chunk: document.Chunk{ID: "b", Content: "install the setup script", HeadingContext: &heading}, VectorScore: 0.75},
		{Chunk: document.Chunk{ID: "c", Content: "more unrelated prose"}, VectorScore: 0.70},
	}

	got := rerank("setup", hits, 2)

	if len(got) != 2 {
		t.Fatalf("len(rerank()) = %d, want 2", len(got))
	}
	if got[0].Chunk.ID != "b" || got[1].Chunk.ID != "a" {
		t.Errorf("rerank() order = %s, %s, want b, a", got[0].Chunk.ID, got[1].Chunk.ID)
	}
	if got[0].LexicalScore <= 0 || got[0].Score != got[0].VectorScore+got[0].LexicalScore {
		t.Errorf("rerank() top hit scores = %+v", got[0])
	}
	if got[1].LexicalScore != 0 || got[1].Score != 0.80 {
		t.Errorf("rerank() second hit scores = %+v", got[1])
	}
}
