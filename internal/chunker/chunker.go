// Package chunker splits extracted document text into overlapping,
// sentence-aware chunks (spec.md §4, Chunker row).
package chunker

import (
	"strings"
	"unicode"

	"github.com/driftmind/driftmind/internal/chunker/cjk"
)

// SentenceAwareChunker implements interfaces.Chunker by walking the text in
// windows of ChunkSize runes and backing off to the nearest paragraph,
// sentence or word boundary within a small search window, the way a human
// splitting a document by hand would prefer not to cut mid-word.
type SentenceAwareChunker struct{}

// New creates a SentenceAwareChunker.
func New() *SentenceAwareChunker {
	return &SentenceAwareChunker{}
}

// Chunk splits text into overlapping chunks of approximately chunkSize
// characters with chunkOverlap characters of repeated context between
// consecutive chunks. Whitespace-only chunks are dropped.
func (c *SentenceAwareChunker) Chunk(text string, chunkSize, chunkOverlap int) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if chunkSize <= 0 {
		chunkSize = 300
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		chunkOverlap = 0
	}

	runes := []rune(text)
	if len(runes) <= chunkSize {
		return []string{strings.TrimSpace(string(runes))}
	}

	var chunks []string
	position := 0
	lastStart := -1

	for position < len(runes) {
		end := position + chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		if end < len(runes) {
			end = findBreakPoint(runes, position, end, chunkSize)
		}

		piece := strings.TrimSpace(string(runes[position:end]))
		if piece != "" && !isMostlyWhitespace(piece) {
			chunks = append(chunks, piece)
			lastStart = position
		}

		if end == len(runes) {
			break
		}

		next := end - chunkOverlap
		if next <= lastStart {
			next = lastStart + 1
		}
		position = next
	}

	return chunks
}

// findBreakPoint looks backwards from targetEnd, within 20% of chunkSize, for
// a paragraph break, then a sentence end (., !, ?, CJK 。！？), then a word
// boundary, falling back to targetEnd if nothing better is found.
func findBreakPoint(runes []rune, start, targetEnd, chunkSize int) int {
	searchStart := targetEnd - chunkSize/5
	if searchStart < start {
		searchStart = start
	}

	if pos := lastIndexOf(runes, searchStart, targetEnd, "\n\n"); pos != -1 {
		return pos + 2
	}
	if pos := lastIndexOf(runes, searchStart, targetEnd, "\n"); pos != -1 {
		return pos + 1
	}
	if pos := lastSentenceEnd(runes, searchStart, targetEnd); pos != -1 {
		return pos
	}
	if pos := lastIndexOf(runes, searchStart, targetEnd, " "); pos != -1 {
		return pos + 1
	}
	for i := targetEnd - 1; i >= searchStart; i-- {
		if unicode.IsSpace(runes[i]) {
			return i + 1
		}
	}
	return targetEnd
}

func lastIndexOf(runes []rune, start, end int, substr string) int {
	window := string(runes[start:end])
	idx := strings.LastIndex(window, substr)
	if idx == -1 {
		return -1
	}
	return start + len([]rune(window[:idx]))
}

// sentenceEndRunes covers Latin and CJK sentence terminators; CJK
// segmentation otherwise needs a dictionary-based tokenizer (cjk.Split) only
// for term extraction, not for these single-rune boundaries.
var sentenceEndRunes = map[rune]bool{
	'.':      true,
	'!':      true,
	'?':      true,
	'。': true, // 。 ideographic full stop
	'！': true, // ！ fullwidth exclamation mark
	'？': true, // ？ fullwidth question mark
	'…': true, // … horizontal ellipsis
}

func lastSentenceEnd(runes []rune, start, end int) int {
	for i := end - 1; i >= start; i-- {
		if !sentenceEndRunes[runes[i]] {
			continue
		}
		if i+1 >= len(runes) {
			return i + 1
		}
		next := runes[i+1]
		if unicode.IsSpace(next) || cjk.IsCJK(next) {
			return i + 1
		}
	}
	return -1
}

func isMostlyWhitespace(s string) bool {
	total, space := 0, 0
	for _, r := range s {
		total++
		if unicode.IsSpace(r) || unicode.IsPunct(r) {
			space++
		}
	}
	if total == 0 {
		return true
	}
	return float64(space)/float64(total) > 0.9
}
