package chunker

import (
	"sort"
	"strings"

	"athena-kb/internal/document"
)

const breadcrumbSeparator = " > "

// HeadingIndex answers which heading path is active at a given content offset.
type HeadingIndex struct {
	headings []document.HeadingInfo
}

// NewHeadingIndex builds an index over headings, which must be sorted by CharOffset.
func NewHeadingIndex(headings []document.HeadingInfo) *HeadingIndex {
	return &HeadingIndex{headings: headings}
}

// ContextAt returns the breadcrumb active at offset, e.g. "Top Level > Second Level".
// A heading starting exactly at offset is active. Returns false before the first heading.
func (h *HeadingIndex) ContextAt(offset int) (string, bool) {
	// First heading strictly after offset; the one before it is active.
	i := sort.Search(len(h.headings), func(i int) bool {
		return h.headings[i].CharOffset > offset
	}) - 1
	if i < 0 {
		return "", false
	}

	// Ancestor chain by decreasing level, nearest first.
	chain := []string{h.headings[i].Text}
	level := h.headings[i].Level
	for j := i - 1; j >= 0 && level > 1; j-- {
		if h.headings[j].Level < level {
			chain = append(chain, h.headings[j].Text)
			level = h.headings[j].Level
		}
	}

	// Reverse to document order.
	for l, r := 0, len(chain)-1; l < r; l, r = l+1, r-1 {
		chain[l], chain[r] = chain[r], chain[l]
	}
	return strings.Join(chain, breadcrumbSeparator), true
}

// pageIndex answers which page is active at a given content offset.
type pageIndex struct {
	pages []document.PageInfo
}

func (p pageIndex) pageAt(offset int) (int, bool) {
	i := sort.Search(len(p.pages), func(i int) bool {
		return p.pages[i].CharOffset > offset
	}) - 1
	if i < 0 {
		return 0, false
	}
	return p.pages[i].Number, true
}
