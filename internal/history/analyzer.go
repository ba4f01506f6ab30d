// Package history implements the History Analyzer (spec.md §4.4): the
// follow-up predicate, keyword and document-reference extraction, and
// semantic related-topic detection over chat history.
package history

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/driftmind/driftmind/internal/scorer"
	"github.com/driftmind/driftmind/internal/types"
)

// Analyzer implements interfaces.HistoryAnalyzer.
type Analyzer struct{}

// New creates an Analyzer.
func New() *Analyzer {
	return &Analyzer{}
}

// IsFollowUp implements spec.md §4.4's follow-up predicate.
func (a *Analyzer) IsFollowUp(query string) bool {
	trimmed := strings.TrimSpace(query)
	if len([]rune(trimmed)) < 10 {
		return true
	}

	words := splitWords(trimmed)
	if len(words) <= 2 {
		return true
	}

	if len(words) > 0 && questionWords[strings.ToLower(words[0])] && len([]rune(trimmed)) > 20 {
		return false
	}

	lower := strings.ToLower(trimmed)
	for _, phrase := range followUpPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// ExtractKeywords implements spec.md §4.4's weighted keyword extraction over
// the last <= 3 messages.
func (a *Analyzer) ExtractKeywords(history []types.ChatHistoryEntry) []string {
	n := len(history)
	if n == 0 {
		return nil
	}
	if n > 3 {
		history = history[n-3:]
		n = 3
	}

	weight := make(map[string]float64)
	for i, entry := range history {
		// i-th most-recent message (0 = most recent) weighted 0.7^(3-i-1).
		mostRecentIndex := n - 1 - i
		w := math.Pow(0.7, float64(3-mostRecentIndex-1))
		for _, word := range splitWords(entry.Content) {
			lw := strings.ToLower(word)
			if len([]rune(lw)) <= 3 {
				continue
			}
			if scorer.IsStopWord(lw) || followUpWords[lw] {
				continue
			}
			weight[lw] += w
		}
	}

	keywords := make([]string, 0, len(weight))
	for kw := range weight {
		keywords = append(keywords, kw)
	}
	sort.Slice(keywords, func(i, j int) bool {
		if weight[keywords[i]] != weight[keywords[j]] {
			return weight[keywords[i]] > weight[keywords[j]]
		}
		return keywords[i] < keywords[j]
	})

	if len(keywords) > 8 {
		keywords = keywords[:8]
	}
	return keywords
}

// sourcesMarker matches a line introducing a "Sources" section in an
// assistant message (spec.md §4.4's "canonical sources marker").
var sourcesMarker = regexp.MustCompile(`(?im)^\s*(sources|quellen)\s*:?\s*$`)

// documentFileName matches a filename with one of the recognized document
// extensions.
var documentFileName = regexp.MustCompile(`(?i)\w[\w\-. ]*\.(pdf|docx|doc|txt|md)`)

// ExtractDocumentReferences implements spec.md §4.4's document-reference
// extraction from the last <= 3 assistant messages.
func (a *Analyzer) ExtractDocumentReferences(history []types.ChatHistoryEntry) []string {
	var assistantMsgs []string
	for _, entry := range history {
		if entry.Role == types.RoleAssistant {
			assistantMsgs = append(assistantMsgs, entry.Content)
		}
	}
	if len(assistantMsgs) > 3 {
		assistantMsgs = assistantMsgs[len(assistantMsgs)-3:]
	}

	seen := make(map[string]bool)
	var refs []string
	for _, msg := range assistantMsgs {
		if !sourcesMarker.MatchString(msg) {
			continue
		}
		for _, match := range documentFileName.FindAllString(msg, -1) {
			match = strings.TrimSpace(match)
			if match == "" || len(match) > 100 {
				continue
			}
			if seen[match] {
				continue
			}
			seen[match] = true
			refs = append(refs, match)
			if len(refs) >= 5 {
				return refs
			}
		}
	}
	return refs
}

// IsRelatedTopic implements spec.md §4.4's related-topic detection: semantic
// similarity >= 0.75 to any of the last 3 user turns, or >= 0.65 when both
// start with the same question word. Shared action words are not compared.
func (a *Analyzer) IsRelatedTopic(ctx context.Context, query string, history []types.ChatHistoryEntry, embed func(string) ([]float32, error)) (bool, error) {
	userTurns := lastUserTurns(history, 3)
	if len(userTurns) == 0 {
		return false, nil
	}

	queryVec, err := embed(query)
	if err != nil {
		return false, err
	}
	queryStructure := sharedStructureKey(query)

	for _, turn := range userTurns {
		turnVec, err := embed(turn)
		if err != nil {
			return false, err
		}
		sim := CosineSimilarity(queryVec, turnVec)
		if sim >= 0.75 {
			return true, nil
		}
		if sim >= 0.65 && queryStructure != "" && queryStructure == sharedStructureKey(turn) {
			return true, nil
		}
	}
	return false, nil
}

// CosineSimilarity computes cosine similarity over equal-length vectors;
// returns 0 if either magnitude is 0 (spec.md §4.4).
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, magA, magB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

func lastUserTurns(history []types.ChatHistoryEntry, max int) []string {
	var turns []string
	for i := len(history) - 1; i >= 0 && len(turns) < max; i-- {
		if history[i].Role == types.RoleUser {
			turns = append(turns, history[i].Content)
		}
	}
	return turns
}

// sharedStructureKey returns the query's leading question word (lowercased),
// used as a coarse structural-similarity signal, or "" when the first word is
// not a question word; action words are not recognized.
func sharedStructureKey(text string) string {
	words := splitWords(text)
	if len(words) == 0 {
		return ""
	}
	first := strings.ToLower(words[0])
	if questionWords[first] {
		return first
	}
	return ""
}

// splitWords tokenizes on anything that isn't a letter or digit.
func splitWords(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}
