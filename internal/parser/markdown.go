package parser

import (
	"errors"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"

	"athena-kb/internal/document"
)

var errInvalidUTF8 = errors.New("content is not valid UTF-8")

// MarkdownParser flattens markdown into plain text using goldmark's AST.
// Headings are recorded with the byte offset of their text in the output.
type MarkdownParser struct {
	md goldmark.Markdown
}

// NewMarkdownParser creates a parser with GitHub flavoured extensions enabled.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
		),
	}
}

// SupportedExtensions implements Parser.
func (p *MarkdownParser) SupportedExtensions() []string {
	return []string{"md", "markdown"}
}

// Parse implements Parser.
func (p *MarkdownParser) Parse(path string) (document.ParsedDocument, error) {
	source, err := os.ReadFile(path)
	if err != nil {
		return document.ParsedDocument{}, document.FileReadError(path, err)
	}
	if !utf8.Valid(source) {
		return document.ParsedDocument{}, document.FileReadError(path, errInvalidUTF8)
	}
	return p.ParseBytes(source), nil
}

// ParseBytes flattens markdown source held in memory.
func (p *MarkdownParser) ParseBytes(source []byte) document.ParsedDocument {
	root := p.md.Parser().Parse(text.NewReader(source))

	f := &flattener{source: source}
	_ = ast.Walk(root, f.visit)

	content := strings.TrimRight(f.out.String(), " \t\r\n")
	headings := f.headings[:0]
	for _, h := range f.headings {
		if h.CharOffset <= len(content) {
			headings = append(headings, h)
		}
	}

	return document.ParsedDocument{
		Content:  content,
		Headings: headings,
	}
}

// flattener accumulates plain text and heading offsets during an AST walk.
type flattener struct {
	source   []byte
	out      strings.Builder
	headings []document.HeadingInfo
}

func (f *flattener) visit(n ast.Node, entering bool) (ast.WalkStatus, error) {
	if !entering {
		switch n.(type) {
		case *ast.List, *ast.ListItem, *ast.Paragraph, *ast.TextBlock:
			f.endLine()
		}
		return ast.WalkContinue, nil
	}

	switch node := n.(type) {
	case *ast.Heading:
		f.blankLine()
		headingText := strings.TrimSpace(f.inlineText(node))
		f.headings = append(f.headings, document.HeadingInfo{
			Level:      node.Level,
			Text:       headingText,
			CharOffset: f.out.Len(),
		})
		f.out.WriteString(headingText)
		f.out.WriteByte('\n')
		return ast.WalkSkipChildren, nil

	case *ast.Paragraph, *ast.TextBlock:
		if inListItem(node) {
			if node.PreviousSibling() != nil {
				f.endLine()
			}
		} else {
			f.blankLine()
		}
		f.out.WriteString(f.inlineText(node))
		return ast.WalkSkipChildren, nil

	case *ast.FencedCodeBlock, *ast.CodeBlock:
		if inListItem(node) {
			f.endLine()
		} else {
			f.blankLine()
		}
		lines := node.Lines()
		for i := 0; i < lines.Len(); i++ {
			line := lines.At(i)
			f.out.Write(line.Value(f.source))
		}
		f.endLine()
		return ast.WalkSkipChildren, nil

	case *ast.List:
		if inListItem(node) {
			f.endLine()
		} else {
			f.blankLine()
		}

	case *ast.ListItem:
		f.endLine()
		f.out.WriteString(strings.Repeat("  ", listDepth(node)-1))
		f.out.WriteString("- ")

	case *extast.Table:
		f.blankLine()
		for row := node.FirstChild(); row != nil; row = row.NextSibling() {
			f.tableRow(row)
		}
		return ast.WalkSkipChildren, nil

	case *ast.HTMLBlock, *ast.ThematicBreak:
		return ast.WalkSkipChildren, nil
	}

	return ast.WalkContinue, nil
}

// blankLine separates the next block from existing output by one empty line.
func (f *flattener) blankLine() {
	if f.out.Len() == 0 {
		return
	}
	f.trimTrailingSpace()
	s := f.out.String()
	switch {
	case strings.HasSuffix(s, "\n\n"):
	case strings.HasSuffix(s, "\n"):
		f.out.WriteByte('\n')
	default:
		f.out.WriteString("\n\n")
	}
}

// endLine terminates the current line if it is not already terminated.
func (f *flattener) endLine() {
	if f.out.Len() == 0 {
		return
	}
	f.trimTrailingSpace()
	if !strings.HasSuffix(f.out.String(), "\n") {
		f.out.WriteByte('\n')
	}
}

func (f *flattener) trimTrailingSpace() {
	s := f.out.String()
	trimmed := strings.TrimRight(s, " \t")
	if len(trimmed) != len(s) {
		f.out.Reset()
		f.out.WriteString(trimmed)
	}
}

func (f *flattener) tableRow(row ast.Node) {
	cells := make([]string, 0, row.ChildCount())
	for cell := row.FirstChild(); cell != nil; cell = cell.NextSibling() {
		cells = append(cells, strings.TrimSpace(f.inlineText(cell)))
	}
	f.out.WriteString(strings.Join(cells, " | "))
	f.out.WriteByte('\n')
}

// inlineText renders the inline children of n as plain text.
// Inline code keeps its backticks and line breaks become spaces.
func (f *flattener) inlineText(n ast.Node) string {
	var b strings.Builder
	f.writeInline(&b, n)
	return b.String()
}

func (f *flattener) writeInline(b *strings.Builder, n ast.Node) {
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		switch node := c.(type) {
		case *ast.Text:
			b.Write(node.Segment.Value(f.source))
			if node.SoftLineBreak() || node.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(node.Value)
		case *ast.CodeSpan:
			b.WriteByte('`')
			f.writeInline(b, node)
			b.WriteByte('`')
		case *ast.AutoLink:
			b.Write(node.Label(f.source))
		case *ast.RawHTML:
		case *extast.TaskCheckBox:
			if node.IsChecked {
				b.WriteString("[x] ")
			} else {
				b.WriteString("[ ] ")
			}
		default:
			f.writeInline(b, node)
		}
	}
}

func inListItem(n ast.Node) bool {
	_, ok := n.Parent().(*ast.ListItem)
	return ok
}

// listDepth counts the lists enclosing a list item, starting at 1.
func listDepth(n ast.Node) int {
	depth := 0
	for p := n.Parent(); p != nil; p = p.Parent() {
		if _, ok := p.(*ast.List); ok {
			depth++
		}
	}
	return max(depth, 1)
}
