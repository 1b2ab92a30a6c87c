package parser

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"athena-kb/internal/document"
)

func TestTextParser_Parse(t *testing.T) {
	tests := []struct {
		name    string
		data    []byte
		want    string
		wantErr error
	}{
		{
			name: "plain text",
			data: []byte("First line.\nSecond line."),
			want: "First line.\nSecond line.",
		},
		{
			name: "windows line endings",
			data: []byte("one\r\ntwo\r\n\r\nthree\r\n"),
			want: "one\ntwo\n\nthree",
		},
		{
			name: "trailing whitespace trimmed",
			data: []byte("text   \n\n\t\n"),
			want: "text",
		},
		{
			name: "empty file",
			data: []byte{},
			want: "",
		},
		{
			name:    "invalid utf-8",
			data:    []byte{0xc3, 0x28},
			wantErr: document.ErrFileRead,
		},
	}

	dir := t.TempDir()
	parser := NewTextParser()
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, string(rune('a'+i))+".txt")
			if err := os.WriteFile(path, tt.data, 0o644); err != nil {
				t.Fatalf("failed to write fixture: %v", err)
			}

			doc, err := parser.Parse(path)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Parse() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if doc.Content != tt.want {
				t.Errorf("Content = %q, want %q", doc.Content, tt.want)
			}
			if len(doc.Headings) != 0 {
				t.Errorf("Headings = %+v, want none", doc.Headings)
			}
		})
	}
}

func TestTextParser_MissingFile(t *testing.T) {
	_, err := NewTextParser().Parse(filepath.Join(t.TempDir(), "nope.txt"))
	if !errors.Is(err, document.ErrFileRead) {
		t.Errorf("Parse() error = %v, want ErrFileRead", err)
	}
}
