// Package parser turns files on disk into document.ParsedDocument values.
package parser

import (
	"path/filepath"
	"sort"
	"strings"

	"athena-kb/internal/document"
)

// Parser converts a single file into flat content plus heading metadata.
type Parser interface {
	// Parse reads the file at path. Read failures wrap document.ErrFileRead and
	// malformed content wraps document.ErrParseFailure.
	Parse(path string) (document.ParsedDocument, error)
	// SupportedExtensions lists lower-case extensions without the leading dot.
	SupportedExtensions() []string
}

// Registry selects a Parser by file extension.
type Registry struct {
	byExt map[string]Parser
}

// NewRegistry creates a registry from parsers. Later parsers win when two claim
// the same extension.
func NewRegistry(parsers ...Parser) *Registry {
	r := &Registry{byExt: make(map[string]Parser)}
	for _, p := range parsers {
		r.Register(p)
	}
	return r
}

// DefaultRegistry returns a registry with the markdown, text and PDF parsers.
func DefaultRegistry() *Registry {
	return NewRegistry(NewMarkdownParser(), NewTextParser(), NewPDFParser())
}

// Register adds p for each of its extensions.
func (r *Registry) Register(p Parser) {
	for _, ext := range p.SupportedExtensions() {
		r.byExt[strings.ToLower(ext)] = p
	}
}

// ForPath returns the parser responsible for path.
func (r *Registry) ForPath(path string) (Parser, error) {
	p, ok := r.byExt[Extension(path)]
	if !ok {
		return nil, document.UnsupportedError(path)
	}
	return p, nil
}

// Supports reports whether some parser handles path.
func (r *Registry) Supports(path string) bool {
	_, ok := r.byExt[Extension(path)]
	return ok
}

// Extensions returns every registered extension, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// Extension returns the lower-cased extension of path without the dot.
func Extension(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
