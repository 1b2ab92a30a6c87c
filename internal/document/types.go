package document

// HeadingInfo describes a heading found while parsing a document.
type HeadingInfo struct {
	Level      int    // Heading depth, 1-6
	Text       string // Plain text, inline code rendered with backticks
	CharOffset int    // Byte offset of the heading text within ParsedDocument.Content
}

// PageInfo marks where a page of a paginated source begins in the flattened content.
type PageInfo struct {
	Number     int // 1-based page number in the source
	CharOffset int // Byte offset of the first character of the page
}

// ParsedDocument is the flattened readable text of a source file plus its structure.
// Headings and Pages are sorted ascending by CharOffset.
type ParsedDocument struct {
	Content  string
	Headings []HeadingInfo
	Pages    []PageInfo
}

// Chunk is a contiguous slice of a document's content, ready for embedding.
// The JSON field set is the contract consumed by storage and embedding systems.
type Chunk struct {
	ID             string  `json:"id"`
	Content        string  `json:"content"`
	SourceFile     string  `json:"source_file"`
	ChunkIndex     int     `json:"chunk_index"`
	HeadingContext *string `json:"heading_context"`
	PageNumber     *int    `json:"page_number"`
}
