package scorer

// stopWords is the combined German + English closed list used to drop
// non-meaningful terms before scoring (spec.md §4.3 step 1, Glossary).
var stopWords = buildSet(
	// English
	"the", "and", "for", "are", "but", "not", "you", "your", "with", "that",
	"this", "from", "have", "has", "had", "was", "were", "will", "would",
	"can", "could", "should", "about", "into", "than", "then", "them",
	"they", "their", "what", "which", "who", "whom", "when", "where", "why",
	"how", "all", "any", "both", "each", "few", "more", "most", "other",
	"some", "such", "only", "own", "same", "s", "t", "just", "don", "now",
	"does", "did", "doing", "its", "itself", "our", "ours", "out", "over",
	"under", "again", "further", "once", "here", "there", "these", "those",
	"being", "been", "because", "while", "above", "below", "between",
	"into", "through", "during", "before", "after", "very", "not",
	// German
	"der", "die", "das", "den", "dem", "des", "und", "oder", "aber",
	"nicht", "ist", "sind", "war", "waren", "sein", "seine", "ihre",
	"ihrer", "ihren", "mit", "von", "vom", "zum", "zur", "für", "auf",
	"auch", "noch", "nur", "schon", "wenn", "wie", "was", "wer", "wo",
	"wann", "warum", "weshalb", "welche", "welcher", "welches", "kann",
	"können", "sollte", "sollten", "wird", "werden", "wurde", "wurden",
	"haben", "hatte", "hatten", "uns", "euch", "ich", "du", "er", "sie",
	"es", "wir", "ihr", "dieser", "diese", "dieses", "ein", "eine",
	"einer", "eines", "einem", "einen", "im", "in", "an", "am", "bei",
	"bis", "durch", "gegen", "ohne", "um", "über", "unter", "zwischen",
)

func buildSet(words ...string) map[string]bool {
	set := make(map[string]bool, len(words))
	for _, w := range words {
		set[w] = true
	}
	return set
}

// isStopWord reports whether term (already lowercased) is in the stop-word
// list. Terms of length <= 2 are dropped unconditionally by the caller.
func isStopWord(term string) bool {
	return stopWords[term]
}

// IsStopWord exposes the combined German+English stop-word list to other
// packages (internal/history's keyword extraction shares the same list per
// spec.md §4.4) so the two term-extraction routines never drift apart.
func IsStopWord(term string) bool {
	return stopWords[term]
}
