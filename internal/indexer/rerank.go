package indexer

import (
	"sort"
	"strings"
	"unicode"
)

const (
	// searchOversample widens the vector query so lexical reranking has
	// candidates beyond the first k.
	searchOversample = 2

	termDensityScale = float32(10)
	maxTermScore     = float32(0.4)
	headingTermBonus = float32(0.1)
)

var stopwords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {}, "be": {}, "but": {}, "by": {},
	"for": {}, "from": {}, "has": {}, "have": {}, "in": {}, "is": {}, "it": {}, "of": {}, "on": {},
	"or": {}, "the": {}, "to": {}, "was": {}, "were": {}, "with": {},
}

// termScore rates how often the query's content words occur in a chunk,
// normalized by chunk length, plus a bonus per query word found in the
// heading context. The result is in [0, maxTermScore].
func termScore(queryTerms []string, content, heading string) float32 {
	if len(queryTerms) == 0 {
		return 0
	}

	words := terms(content)
	if len(words) == 0 {
		return 0
	}
	freq := make(map[string]int, len(words))
	for _, w := range words {
		freq[w]++
	}

	var matches int
	for _, q := range queryTerms {
		matches += freq[q]
	}
	score := float32(matches) / float32(len(words)+1) * termDensityScale

	if heading != "" {
		inHeading := make(map[string]struct{})
		for _, w := range terms(heading) {
			inHeading[w] = struct{}{}
		}
		for _, q := range queryTerms {
			if _, ok := inHeading[q]; ok {
				score += headingTermBonus
			}
		}
	}

	return min(score, maxTermScore)
}

// terms lowercases text and splits it on anything that is not a letter or digit.
func terms(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// queryTerms returns the terms of query with stopwords removed.
func queryTerms(query string) []string {
	var out []string
	for _, t := range terms(query) {
		if _, stop := stopwords[t]; !stop {
			out = append(out, t)
		}
	}
	return out
}

// rerank adds a lexical score to every hit, orders hits by the blended score
// and keeps at most k. Equal scores keep their vector order.
func rerank(query string, hits []SearchHit, k int) []SearchHit {
	qt := queryTerms(query)
	for i := range hits {
		h := &hits[i]
		heading := ""
		if h.Chunk.HeadingContext != nil {
			heading = *h.Chunk.HeadingContext
		}
		h.LexicalScore = termScore(qt, h.Chunk.Content, heading)
		h.Score = h.VectorScore + h.LexicalScore
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
