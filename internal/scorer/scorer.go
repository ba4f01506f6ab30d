// Package scorer implements the Relevance Scorer (spec.md §4.3): a pure
// function combining lexical term overlap with an optional vector score.
package scorer

import (
	"strings"
	"unicode"

	"github.com/driftmind/driftmind/internal/chunker/cjk"
)

// TermScorer implements interfaces.RelevanceScorer.
type TermScorer struct{}

// New creates a TermScorer.
func New() *TermScorer {
	return &TermScorer{}
}

// Score implements spec.md §4.3: textRelevance from exact/partial/synonym
// term overlap, blended 0.7/0.3 with vectorScore when present.
func (s *TermScorer) Score(content, query string, vectorScore *float64) float64 {
	queryTerms := extractTerms(query)
	if len(queryTerms) == 0 {
		if vectorScore != nil {
			return clamp01(*vectorScore)
		}
		return 0
	}

	contentTerms := extractTerms(content)
	contentSet := make(map[string]bool, len(contentTerms))
	for _, t := range contentTerms {
		contentSet[t] = true
	}
	lowerContent := strings.ToLower(content)

	var exact, partial, synonym int
	for _, q := range queryTerms {
		switch {
		case contentSet[q]:
			exact++
		case strings.Contains(lowerContent, q):
			partial++
		default:
			matched := false
			for c := range contentSet {
				if synonymMatch(q, c) {
					matched = true
					break
				}
			}
			if matched {
				synonym++
			}
		}
	}

	textRelevance := (2*float64(exact) + float64(partial) + 1.5*float64(synonym)) / (2 * float64(len(queryTerms)))
	if textRelevance > 1 {
		textRelevance = 1
	}

	if vectorScore != nil {
		return 0.7*clamp01(*vectorScore) + 0.3*textRelevance
	}
	return textRelevance
}

// extractTerms lowercases, splits on whitespace/punctuation (using the CJK
// segmenter for any CJK content), and drops stop-words and terms of length
// <= 2 (spec.md §4.3 step 1).
func extractTerms(text string) []string {
	lower := strings.ToLower(text)

	var fields []string
	if cjk.ContainsCJK(lower) {
		fields = cjk.Split(lower)
	} else {
		fields = strings.FieldsFunc(lower, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
	}

	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimFunc(f, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len([]rune(f)) <= 2 {
			continue
		}
		if isStopWord(f) {
			continue
		}
		terms = append(terms, f)
	}
	return terms
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
