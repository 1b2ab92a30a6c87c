package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestFindCut(t *testing.T) {
	tests := []struct {
		name    string
		content string
		target  int
		radius  int
		want    int
	}{
		{
			name:    "paragraph break beats sentence and word",
			content: "abc\n\ndef ghi. jkl",
			target:  6,
			radius:  4,
			want:    5,
		},
		{
			name:    "equidistant paragraphs prefer the earlier one",
			content: "aa\n\nbb\n\ncc",
			target:  6,
			radius:  4,
			want:    4,
		},
		{
			name:    "sentence end followed by space",
			content: "One. Two three. Four",
			target:  10,
			radius:  6,
			want:    15,
		},
		{
			name:    "sentence end at window edge",
			content: "Hello world.Next",
			target:  10,
			radius:  2,
			want:    12,
		},
		{
			name:    "punctuation inside a token is not a sentence end",
			content: "version 3.14 released",
			target:  10,
			radius:  3,
			want:    8,
		},
		{
			name:    "nearest word boundary",
			content: "alpha beta gamma delta",
			target:  13,
			radius:  4,
			want:    11,
		},
		{
			name:    "hard cut on ascii",
			content: "abcdefghij",
			target:  5,
			radius:  2,
			want:    5,
		},
		{
			name:    "hard cut moves off a continuation byte",
			content: "ééééé",
			target:  5,
			radius:  2,
			want:    4,
		},
		{
			name:    "target at start",
			content: "abc def",
			target:  0,
			radius:  4,
			want:    0,
		},
		{
			name:    "target past end",
			content: "abc def",
			target:  100,
			radius:  4,
			want:    7,
		},
		{
			name:    "question and exclamation marks",
			content: "Why? Because! Yes",
			target:  12,
			radius:  3,
			want:    13,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FindCut(tt.content, tt.target, tt.radius)
			if got != tt.want {
				t.Errorf("FindCut(%q, %d, %d) = %d, want %d", tt.content, tt.target, tt.radius, got, tt.want)
			}
		})
	}
}

func TestFindCut_AlwaysRuneBoundary(t *testing.T) {
	contents := []string{
		"日本語のテキスト。次の文です。",
		"Grüße aus Köln! Schöne Straße; große Bäume.",
		"emoji 🙂🙂🙂 between words 🚀.\n\nNext 段落 here.",
		strings.Repeat("ü", 40),
		"mixed\n\n日本\n\nü. a",
	}

	for _, content := range contents {
		for radius := 0; radius <= 6; radius++ {
			for target := 0; target <= len(content)+2; target++ {
				got := FindCut(content, target, radius)
				if got < 0 || got > len(content) {
					t.Fatalf("FindCut(%q, %d, %d) = %d, out of range", content, target, radius, got)
				}
				if got < len(content) && !utf8.RuneStart(content[got]) {
					t.Fatalf("FindCut(%q, %d, %d) = %d, inside a rune", content, target, radius, got)
				}
			}
		}
	}
}

func TestNearestRuneBoundary(t *testing.T) {
	content := "aé日" // a=0, é=1..2, 日=3..5
	tests := []struct {
		pos  int
		want int
	}{
		{pos: -3, want: 0},
		{pos: 0, want: 0},
		{pos: 2, want: 1},
		{pos: 4, want: 3},
		{pos: 5, want: 6},
		{pos: 6, want: 6},
		{pos: 9, want: 6},
	}

	for _, tt := range tests {
		if got := nearestRuneBoundary(content, tt.pos); got != tt.want {
			t.Errorf("nearestRuneBoundary(%q, %d) = %d, want %d", content, tt.pos, got, tt.want)
		}
	}
}
