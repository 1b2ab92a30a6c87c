package chunker

import (
	"strconv"

	"github.com/google/uuid"

	"athena-kb/internal/document"
)

// chunkNamespace scopes chunk IDs so they never collide with other UUIDv5 users.
var chunkNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("athena-kb/chunk"))

// Assembler splits a parsed document into chunks.
type Assembler interface {
	Assemble(doc document.ParsedDocument, sourceFile string, cfg Config) ([]document.Chunk, error)
}

// SemanticChunker splits text at paragraph, sentence, or word boundaries and
// labels every chunk with the heading path active at its start.
type SemanticChunker struct{}

// NewSemanticChunker creates a new SemanticChunker.
func NewSemanticChunker() *SemanticChunker {
	return &SemanticChunker{}
}

// Assemble implements Assembler.
func (c *SemanticChunker) Assemble(doc document.ParsedDocument, sourceFile string, cfg Config) ([]document.Chunk, error) {
	return Assemble(doc, sourceFile, cfg)
}

// Assemble runs a sliding window over doc.Content. Each window ends at the best
// boundary near start+ChunkSize and the next window starts ChunkOverlap bytes
// before that end. The config is validated before any work is done.
func Assemble(doc document.ParsedDocument, sourceFile string, cfg Config) ([]document.Chunk, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	chunks := []document.Chunk{}
	if doc.Content == "" {
		return chunks, nil
	}

	headings := NewHeadingIndex(doc.Headings)
	pages := pageIndex{pages: doc.Pages}

	for _, s := range splitSpans(doc.Content, cfg) {
		chunk := document.Chunk{
			ID:         ChunkID(sourceFile, len(chunks)),
			Content:    doc.Content[s.start:s.end],
			SourceFile: sourceFile,
			ChunkIndex: len(chunks),
		}
		if heading, ok := headings.ContextAt(s.start); ok {
			chunk.HeadingContext = &heading
		}
		if page, ok := pages.pageAt(s.start); ok {
			chunk.PageNumber = &page
		}
		chunks = append(chunks, chunk)
	}

	return chunks, nil
}

// span is a half-open byte range [start, end) of the content.
type span struct {
	start, end int
}

// splitSpans computes chunk ranges for content. cfg must be valid.
func splitSpans(content string, cfg Config) []span {
	var spans []span
	radius := cfg.searchRadius()

	// Each end must pass the previous end, otherwise a chunk could sit
	// entirely inside its predecessor.
	start, prevEnd := 0, 0
	for start < len(content) {
		end := len(content)
		if targetEnd := start + cfg.ChunkSize; targetEnd < len(content) {
			end = FindCut(content, targetEnd, radius)
			if end <= max(start, prevEnd) {
				end = nextRuneBoundary(content, targetEnd)
			}
		}

		spans = append(spans, span{start: start, end: end})
		if end == len(content) {
			break
		}
		start, prevEnd = nextStart(content, start, end, cfg.ChunkOverlap), end
	}

	return spans
}

// nextStart steps back overlap bytes from end while always moving past start.
func nextStart(content string, start, end, overlap int) int {
	next := end - overlap
	if next <= start {
		next = start + 1
	}
	return min(nextRuneBoundary(content, next), end)
}

// ChunkID derives a stable UUID from the source file and chunk index.
func ChunkID(sourceFile string, chunkIndex int) string {
	return uuid.NewSHA1(chunkNamespace, []byte(sourceFile+"#"+strconv.Itoa(chunkIndex))).String()
}
