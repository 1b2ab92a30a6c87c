package parser

import (
	"errors"
	"reflect"
	"testing"

	"athena-kb/internal/document"
)

func TestRegistry_ForPath(t *testing.T) {
	registry := DefaultRegistry()

	tests := []struct {
		path    string
		want    Parser
		wantErr bool
	}{
		{path: "docs/guide.md", want: &MarkdownParser{}},
		{path: "docs/GUIDE.MD", want: &MarkdownParser{}},
		{path: "notes.markdown", want: &MarkdownParser{}},
		{path: "readme.txt", want: &TextParser{}},
		{path: "log.text", want: &TextParser{}},
		{path: "paper.pdf", want: &PDFParser{}},
		{path: "image.png", wantErr: true},
		{path: "Makefile", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := registry.ForPath(tt.path)
			if tt.wantErr {
				if !errors.Is(err, document.ErrUnsupportedFileType) {
					t.Errorf("ForPath() error = %v, want ErrUnsupportedFileType", err)
				}
				if registry.Supports(tt.path) {
					t.Errorf("Supports(%q) = true, want false", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("ForPath() error = %v", err)
			}
			if reflect.TypeOf(got) != reflect.TypeOf(tt.want) {
				t.Errorf("ForPath() = %T, want %T", got, tt.want)
			}
		})
	}
}

func TestRegistry_Extensions(t *testing.T) {
	got := DefaultRegistry().Extensions()
	want := []string{"markdown", "md", "pdf", "text", "txt"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Extensions() = %v, want %v", got, want)
	}

	if exts := NewRegistry().Extensions(); len(exts) != 0 {
		t.Errorf("empty registry Extensions() = %v", exts)
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"a/b/c.MD":     "md",
		"file.tar.gz":  "gz",
		"noext":        "",
		".hidden":      "hidden",
		"dir.d/readme": "",
	}
	for path, want := range tests {
		if got := Extension(path); got != want {
			t.Errorf("Extension(%q) = %q, want %q", path, got, want)
		}
	}
}
