package parser

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"

	"athena-kb/internal/document"
)

// PDFParser extracts text page by page. Pages are separated by a blank line
// and their start offsets are recorded so chunks can report a page number.
type PDFParser struct{}

// NewPDFParser creates a new PDFParser.
func NewPDFParser() *PDFParser {
	return &PDFParser{}
}

// SupportedExtensions implements Parser.
func (p *PDFParser) SupportedExtensions() []string {
	return []string{"pdf"}
}

// Parse implements Parser.
func (p *PDFParser) Parse(path string) (doc document.ParsedDocument, err error) {
	f, err := os.Open(path)
	if err != nil {
		return document.ParsedDocument{}, document.FileReadError(path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	info, err := f.Stat()
	if err != nil {
		return document.ParsedDocument{}, document.FileReadError(path, err)
	}
	if info.Size() == 0 {
		return document.ParsedDocument{}, document.ParseError(path, errors.New("empty PDF content"))
	}

	// The reader panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			doc = document.ParsedDocument{}
			err = document.ParseError(path, fmt.Errorf("corrupt PDF: %v", r))
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return document.ParsedDocument{}, document.ParseError(path, err)
	}

	pages := make([]pageText, 0, r.NumPage())
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return document.ParsedDocument{}, document.ParseError(path, fmt.Errorf("page %d: %w", i, err))
		}
		pages = append(pages, pageText{number: i, text: text})
	}

	return joinPages(pages), nil
}

type pageText struct {
	number int
	text   string
}

// joinPages concatenates non-empty pages with a blank line between them.
func joinPages(pages []pageText) document.ParsedDocument {
	var b strings.Builder
	var infos []document.PageInfo
	for _, p := range pages {
		text := strings.TrimSpace(strings.ToValidUTF8(strings.ReplaceAll(p.text, "\r\n", "\n"), ""))
		if text == "" {
			continue
		}
		if b.Len() > 0 {
			b.WriteString("\n\n")
		}
		infos = append(infos, document.PageInfo{Number: p.number, CharOffset: b.Len()})
		b.WriteString(text)
	}
	return document.ParsedDocument{
		Content: b.String(),
		Pages:   infos,
	}
}
