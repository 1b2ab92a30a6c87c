package parser

import (
	"os"
	"strings"
	"unicode/utf8"

	"athena-kb/internal/document"
)

// TextParser reads plain text files. They carry no headings.
type TextParser struct{}

// NewTextParser creates a new TextParser.
func NewTextParser() *TextParser {
	return &TextParser{}
}

// SupportedExtensions implements Parser.
func (p *TextParser) SupportedExtensions() []string {
	return []string{"txt", "text"}
}

// Parse implements Parser. Line endings are normalised to "\n".
func (p *TextParser) Parse(path string) (document.ParsedDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return document.ParsedDocument{}, document.FileReadError(path, err)
	}
	if !utf8.Valid(data) {
		return document.ParsedDocument{}, document.FileReadError(path, errInvalidUTF8)
	}

	content := strings.ReplaceAll(string(data), "\r\n", "\n")
	return document.ParsedDocument{
		Content: strings.TrimRight(content, " \t\r\n"),
	}, nil
}
