package chunker

import (
	"strings"
	"unicode/utf8"
)

// minSearchRadius keeps the boundary search useful for very small chunk sizes.
const minSearchRadius = 4

// FindCut returns the best offset near target at which to end a chunk.
// It searches [target-radius, target+radius] (clamped to content) and prefers,
// in order, paragraph breaks, sentence ends, and whitespace; otherwise it cuts
// at target. Within a kind the candidate closest to target wins and ties go to
// the candidate at or before target. The result is always a rune boundary.
func FindCut(content string, target, radius int) int {
	if target <= 0 {
		return 0
	}
	if target >= len(content) {
		return len(content)
	}
	if radius < 0 {
		radius = 0
	}

	lo := max(0, target-radius)
	hi := min(len(content), target+radius)

	finders := []func(content string, lo, hi int, best *candidate){
		paragraphCuts,
		sentenceCuts,
		wordCuts,
	}
	for _, find := range finders {
		best := candidate{target: target, offset: -1}
		find(content, lo, hi, &best)
		if best.offset >= 0 {
			return best.offset
		}
	}

	return nearestRuneBoundary(content, target)
}

// candidate tracks the best cut seen so far for one boundary kind.
type candidate struct {
	target int
	offset int
}

// consider offers a raw cut position. Positions that are not rune boundaries are
// moved to the nearest one first.
func (c *candidate) consider(content string, pos int) {
	pos = nearestRuneBoundary(content, pos)
	if c.offset < 0 || closer(pos, c.offset, c.target) {
		c.offset = pos
	}
}

// closer reports whether a beats b as a cut for target.
func closer(a, b, target int) bool {
	da, db := abs(a-target), abs(b-target)
	if da != db {
		return da < db
	}
	return a <= target && b > target
}

// paragraphCuts offers the position after every "\n\n" lying within [lo, hi].
func paragraphCuts(content string, lo, hi int, best *candidate) {
	window := content[lo:hi]
	for i := 0; ; {
		j := strings.Index(window[i:], "\n\n")
		if j < 0 {
			return
		}
		best.consider(content, lo+i+j+2)
		i += j + 1
	}
}

// sentenceCuts offers the position after '.', '?', '!' or ';' when followed by
// whitespace or by the end of the window.
func sentenceCuts(content string, lo, hi int, best *candidate) {
	for i := lo; i < hi; i++ {
		switch content[i] {
		case '.', '?', '!', ';':
			if i+1 == hi || isSpace(content[i+1]) {
				best.consider(content, i+1)
			}
		}
	}
}

// wordCuts offers the position after each whitespace run.
func wordCuts(content string, lo, hi int, best *candidate) {
	for i := lo + 1; i <= hi; i++ {
		if !isSpace(content[i-1]) {
			continue
		}
		if i == hi || !isSpace(content[i]) {
			best.consider(content, i)
		}
	}
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

// isRuneBoundary reports whether pos does not fall inside a multi-byte rune.
func isRuneBoundary(content string, pos int) bool {
	if pos <= 0 || pos >= len(content) {
		return true
	}
	return utf8.RuneStart(content[pos])
}

// nearestRuneBoundary moves pos outward to the closest rune boundary,
// preferring the earlier one on ties.
func nearestRuneBoundary(content string, pos int) int {
	pos = max(0, min(len(content), pos))
	for d := 0; d <= utf8.UTFMax; d++ {
		if pos-d >= 0 && isRuneBoundary(content, pos-d) {
			return pos - d
		}
		if pos+d <= len(content) && isRuneBoundary(content, pos+d) {
			return pos + d
		}
	}
	return nextRuneBoundary(content, pos)
}

// nextRuneBoundary returns the first rune boundary at or after pos.
func nextRuneBoundary(content string, pos int) int {
	if pos >= len(content) {
		return len(content)
	}
	for pos < len(content) && !isRuneBoundary(content, pos) {
		pos++
	}
	return pos
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
